// Package frame provides the animation-frame loop and clock the engine
// schedules deferred work on.
package frame

import (
	"sync"
	"time"
)

// Scheduler runs callbacks on the next frame. The returned function cancels
// the callback if it has not run yet.
type Scheduler interface {
	Request(fn func()) (cancel func())
}

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type entry struct {
	id uint64
	fn func()
}

// Loop is a cooperative frame loop: callbacks queue up until the owner calls
// Step, and callbacks requested while a step runs wait for the next one.
type Loop struct {
	mu      sync.Mutex
	seq     uint64
	pending []entry
}

func NewLoop() *Loop {
	return &Loop{}
}

func (l *Loop) Request(fn func()) func() {
	l.mu.Lock()
	l.seq++
	id := l.seq
	l.pending = append(l.pending, entry{id: id, fn: fn})
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, e := range l.pending {
			if e.id == id {
				l.pending = append(l.pending[:i], l.pending[i+1:]...)
				return
			}
		}
	}
}

// Step runs every callback queued before the call and returns how many ran.
func (l *Loop) Step() int {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, e := range batch {
		e.fn()
	}
	return len(batch)
}

// Pending is the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Drain steps until nothing is queued or limit steps have run, and reports
// the number of steps taken.
func (l *Loop) Drain(limit int) int {
	steps := 0
	for steps < limit && l.Pending() > 0 {
		l.Step()
		steps++
	}
	return steps
}
