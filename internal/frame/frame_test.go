package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoop_StepRunsQueuedCallbacksInOrder(t *testing.T) {
	loop := NewLoop()
	var order []int
	loop.Request(func() { order = append(order, 1) })
	loop.Request(func() { order = append(order, 2) })

	assert.Equal(t, 2, loop.Pending())
	assert.Equal(t, 2, loop.Step())
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 0, loop.Step())
}

func TestLoop_CancelAndReentrancy(t *testing.T) {
	loop := NewLoop()
	ran := 0
	cancel := loop.Request(func() { ran++ })
	cancel()
	cancel()
	assert.Equal(t, 0, loop.Step())

	loop.Request(func() {
		ran++
		loop.Request(func() { ran += 10 })
	})
	assert.Equal(t, 1, loop.Step())
	assert.Equal(t, 1, ran, "callbacks requested during a step wait for the next one")
	assert.Equal(t, 1, loop.Drain(5))
	assert.Equal(t, 11, ran)
}

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)
	clock.Advance(360 * time.Millisecond)
	assert.Equal(t, start.Add(360*time.Millisecond), clock.Now())
}
