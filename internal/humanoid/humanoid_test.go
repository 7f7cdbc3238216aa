package humanoid

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

func TestPath_EndsExactlyOnTarget(t *testing.T) {
	h := New(DefaultConfig(7), zap.NewNop())
	start := geometry.Position{X: 10, Y: 10}
	end := geometry.Position{X: 310, Y: 190}

	path := h.Path(start, end, 30)

	require.Len(t, path, 30)
	assert.Equal(t, end, path[len(path)-1])
	for _, p := range path {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
	}
}

func TestPath_DeterministicForSeed(t *testing.T) {
	start := geometry.Position{X: 0, Y: 0}
	end := geometry.Position{X: 200, Y: 0}

	a := New(DefaultConfig(42), zap.NewNop()).Path(start, end, 20)
	b := New(DefaultConfig(42), zap.NewNop()).Path(start, end, 20)
	c := New(DefaultConfig(43), zap.NewNop()).Path(start, end, 20)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestPath_StaysNearTheLine(t *testing.T) {
	cfg := DefaultConfig(3)
	h := New(cfg, zap.NewNop())
	start := geometry.Position{X: 0, Y: 100}
	end := geometry.Position{X: 400, Y: 100}

	for _, p := range h.Path(start, end, 50) {
		assert.InDelta(t, 100, p.Y, 400*cfg.CurveStrength*4+10, "the path bends but does not wander off")
		assert.GreaterOrEqual(t, p.X, -10.0)
		assert.LessOrEqual(t, p.X, 410.0)
	}
}

func TestPath_ShortMoveJumps(t *testing.T) {
	h := New(DefaultConfig(1), zap.NewNop())
	end := geometry.Position{X: 0.5, Y: 0}

	assert.Equal(t, []geometry.Position{end}, h.Path(geometry.Origin, end, 10))
}

func TestLinear(t *testing.T) {
	path := Linear(geometry.Origin, geometry.Position{X: 100, Y: 50}, 4)

	assert.Equal(t, []geometry.Position{
		{X: 25, Y: 12.5},
		{X: 50, Y: 25},
		{X: 75, Y: 37.5},
		{X: 100, Y: 50},
	}, path)
}

func TestMovementTime_GrowsWithDistance(t *testing.T) {
	cfg := DefaultConfig(5)
	h := New(cfg, zap.NewNop())

	near := h.MovementTime(10)
	far := h.MovementTime(2000)

	assert.Greater(t, far, near)
	assert.GreaterOrEqual(t, near, time.Duration(cfg.FittsA*0.85)*time.Millisecond)
	assert.GreaterOrEqual(t, h.StepsFor(500, 16*time.Millisecond), 2)
	assert.Equal(t, 2, h.StepsFor(500, 0))
}
