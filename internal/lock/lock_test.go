package lock

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/dropzone/internal/invariant"
)

func TestClaimAndRelease(t *testing.T) {
	m := NewManager(zap.NewNop())
	assert.False(t, m.IsClaimed())

	l, err := m.Claim("mouse", nil)
	require.NoError(t, err)
	assert.Equal(t, "mouse", l.Owner())
	assert.True(t, m.IsClaimed())
	assert.True(t, m.IsActive(l))

	require.NoError(t, m.Release())
	assert.False(t, m.IsClaimed())
	assert.False(t, m.IsActive(l), "a released lock is stale")
}

func TestClaim_Twice(t *testing.T) {
	m := NewManager(zap.NewNop())
	_, err := m.Claim("mouse", nil)
	require.NoError(t, err)

	_, err = m.Claim("keyboard", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.True(t, invariant.Is(err))
}

func TestRelease_Unclaimed(t *testing.T) {
	m := NewManager(zap.NewNop())
	err := m.Release()
	assert.ErrorIs(t, err, ErrNotClaimed)
	assert.True(t, invariant.Is(err))
}

func TestReleaseIfActive(t *testing.T) {
	m := NewManager(zap.NewNop())
	first, err := m.Claim("mouse", nil)
	require.NoError(t, err)
	require.True(t, m.ReleaseIfActive(first))

	second, err := m.Claim("keyboard", nil)
	require.NoError(t, err)

	assert.False(t, m.ReleaseIfActive(first), "stale locks cannot release a newer claim")
	assert.True(t, m.IsActive(second))
	assert.False(t, m.ReleaseIfActive(nil))
}

func TestTryAbandon(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewManager(zap.New(core))

	assert.False(t, m.TryAbandon(), "nothing to abandon")

	calls := 0
	var l *Lock
	var err error
	l, err = m.Claim("mouse", func() {
		calls++
		// The holder may try to clean up after itself.
		assert.False(t, m.IsActive(l))
		assert.False(t, m.ReleaseIfActive(l))
	})
	require.NoError(t, err)

	assert.True(t, m.TryAbandon())
	assert.Equal(t, 1, calls)
	assert.False(t, m.IsClaimed())
	assert.Equal(t, 1, logs.FilterMessage("Abandoning drag lock.").Len())
}

func TestClaim_Concurrent(t *testing.T) {
	m := NewManager(zap.NewNop())
	var wins, rejections atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Claim("sensor", nil)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrAlreadyClaimed):
				rejections.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(31), rejections.Load())
}
