package autoscroll

import (
	"sync"

	"github.com/xkilldash9x/dropzone/internal/frame"
)

// throttled coalesces calls into one per frame. A call made while another is
// pending replaces its argument. A callback whose frame was already taken by
// the loop still sees a stop, through the generation.
type throttled[T any] struct {
	mu     sync.Mutex
	sched  frame.Scheduler
	fn     func(T)
	arg    T
	cancel func()
	gen    uint64
}

func newThrottled[T any](sched frame.Scheduler, fn func(T)) *throttled[T] {
	return &throttled[T]{sched: sched, fn: fn}
}

func (t *throttled[T]) call(arg T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.arg = arg
	if t.cancel != nil {
		return
	}
	gen := t.gen
	t.cancel = t.sched.Request(func() { t.run(gen) })
}

func (t *throttled[T]) run(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	arg := t.arg
	t.cancel = nil
	t.mu.Unlock()
	t.fn(arg)
}

func (t *throttled[T]) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
