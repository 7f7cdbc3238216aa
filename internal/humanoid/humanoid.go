// Filename: internal/humanoid/humanoid.go
// Package humanoid generates pointer paths that look like a person moved the
// mouse: a curved Bezier track, eased timing, slow Perlin drift and a little
// Gaussian tremor. Paths are deterministic for a given seed.
package humanoid

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/aquilax/go-perlin"
	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// Config tunes how human a path looks.
type Config struct {
	Seed int64
	// GaussianStrength is the standard deviation of per-point tremor, in pixels.
	GaussianStrength float64
	// PerlinAmplitude bounds the slow drift, in pixels.
	PerlinAmplitude float64
	// CurveStrength scales how far control points stray from the straight line.
	CurveStrength float64
	// FittsA and FittsB are the Fitts's law intercept and slope, in milliseconds.
	FittsA float64
	FittsB float64
}

// DefaultConfig is a calm, accurate user.
func DefaultConfig(seed int64) Config {
	return Config{
		Seed:             seed,
		GaussianStrength: 0.4,
		PerlinAmplitude:  1.5,
		CurveStrength:    0.15,
		FittsA:           120,
		FittsB:           140,
	}
}

// Humanoid is safe for concurrent use.
type Humanoid struct {
	cfg    Config
	logger *zap.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	noiseX *perlin.Perlin
	noiseY *perlin.Perlin
}

// New creates a path generator.
func New(cfg Config, logger *zap.Logger) *Humanoid {
	// Standard Perlin parameters
	alpha, beta, n := 2.0, 2.0, int32(3)
	return &Humanoid{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "humanoid")),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		noiseX: perlin.NewPerlin(alpha, beta, n, cfg.Seed),
		noiseY: perlin.NewPerlin(alpha, beta, n, cfg.Seed+1), // Offset seed for Y noise
	}
}

// computeEaseInOutCubic provides a smooth acceleration and deceleration profile.
func computeEaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// MovementTime estimates how long a person takes to cover distance, by Fitts's law.
func (h *Humanoid) MovementTime(distance float64) time.Duration {
	const targetWidth = 30.0

	id := math.Log2(1.0 + distance/targetWidth)
	mt := h.cfg.FittsA + h.cfg.FittsB*id

	h.mu.Lock()
	// +/- 15%
	mt += mt * (h.rng.Float64()*0.3 - 0.15)
	h.mu.Unlock()

	return time.Duration(mt) * time.Millisecond
}

// StepsFor is how many frames a move of distance spans at the given frame interval.
func (h *Humanoid) StepsFor(distance float64, frameInterval time.Duration) int {
	if frameInterval <= 0 {
		return 2
	}
	return max(2, int(h.MovementTime(distance)/frameInterval))
}

func distance(a, b geometry.Position) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func lerp(a, b geometry.Position, t float64) geometry.Position {
	return geometry.Position{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// Path returns steps points from just after start to exactly end.
func (h *Humanoid) Path(start, end geometry.Position, steps int) []geometry.Position {
	if steps < 1 {
		steps = 1
	}
	dist := distance(start, end)
	if dist < 1.0 || steps == 1 {
		return []geometry.Position{end}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Control points sit at a third and two thirds of the way, pushed off the
	// line along its normal.
	normal := geometry.Position{X: -(end.Y - start.Y) / dist, Y: (end.X - start.X) / dist}
	bend := func() geometry.Position {
		k := h.rng.NormFloat64() * dist * h.cfg.CurveStrength
		return geometry.Position{X: normal.X * k, Y: normal.Y * k}
	}
	p0, p3 := start, end
	p1 := lerp(start, end, 1.0/3.0).Add(bend())
	p2 := lerp(start, end, 2.0/3.0).Add(bend())

	path := make([]geometry.Position, 0, steps)
	for i := 1; i <= steps; i++ {
		t := computeEaseInOutCubic(float64(i) / float64(steps))
		omt := 1.0 - t
		point := geometry.Position{
			X: omt*omt*omt*p0.X + 3*omt*omt*t*p1.X + 3*omt*t*t*p2.X + t*t*t*p3.X,
			Y: omt*omt*omt*p0.Y + 3*omt*omt*t*p1.Y + 3*omt*t*t*p2.Y + t*t*t*p3.Y,
		}
		if i == steps {
			path = append(path, end)
			break
		}
		path = append(path, h.perturb(point, float64(i)/float64(steps)))
	}
	return path
}

// perturb adds drift and tremor. Callers hold h.mu.
func (h *Humanoid) perturb(point geometry.Position, progress float64) geometry.Position {
	const perlinFrequency = 0.8
	drift := geometry.Position{
		X: h.noiseX.Noise1D(progress*perlinFrequency) * h.cfg.PerlinAmplitude,
		Y: h.noiseY.Noise1D(progress*perlinFrequency) * h.cfg.PerlinAmplitude,
	}
	// Strength varies slightly around the configured value.
	strength := h.cfg.GaussianStrength * (0.5 + h.rng.Float64())
	tremor := geometry.Position{X: h.rng.NormFloat64() * strength, Y: h.rng.NormFloat64() * strength}
	return point.Add(drift).Add(tremor)
}

// Linear is the robotic counterpart of Path: evenly spaced points on a
// straight line, ending exactly at end.
func Linear(start, end geometry.Position, steps int) []geometry.Position {
	if steps < 1 {
		steps = 1
	}
	path := make([]geometry.Position, 0, steps)
	for i := 1; i <= steps; i++ {
		path = append(path, lerp(start, end, float64(i)/float64(steps)))
	}
	path[len(path)-1] = end
	return path
}
