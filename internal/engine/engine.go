// Package engine is the drag and drop façade. It owns the single drag state,
// turns sensor actions into intents and keeps the registry, the auto scroller
// and the responders in step with every transition.
package engine

import (
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/autoscroll"
	"github.com/xkilldash9x/dropzone/internal/config"
	"github.com/xkilldash9x/dropzone/internal/frame"
	"github.com/xkilldash9x/dropzone/internal/invariant"
	"github.com/xkilldash9x/dropzone/internal/lock"
	"github.com/xkilldash9x/dropzone/internal/registry"
	"github.com/xkilldash9x/dropzone/internal/session"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// -- Collaborator contracts --

// Environment is the page the drag happens on.
type Environment interface {
	// Viewport reports the visible page area and its current and max scroll.
	Viewport() schemas.Viewport
	// ScrollWindow scrolls the page by change. It must not call back into the engine.
	ScrollWindow(change geometry.Position)
}

// Responders are told about the drag lifecycle. They run after the engine
// has released its lock, so they may call back into it.
type Responders struct {
	OnDragStart  func(schemas.DragStart)
	OnDragUpdate func(schemas.DragUpdate)
	OnDragEnd    func(schemas.DropResult)
}

// Listener receives every new state.
type Listener func(session.State)

// Options configures an Engine. Registry, Environment and Scheduler are required.
type Options struct {
	Config      *config.Config
	Logger      *zap.Logger
	Registry    *registry.Registry
	Environment Environment
	Scheduler   frame.Scheduler
	Clock       frame.Clock
	Responders  Responders
}

// Engine is safe to call from several goroutines; calls are serialized.
type Engine struct {
	mu         sync.Mutex
	cfg        *config.Config
	logger     *zap.Logger
	registry   *registry.Registry
	env        Environment
	sched      frame.Scheduler
	responders Responders

	reducer *session.Reducer
	locks   *lock.Manager
	fluid   *autoscroll.Fluid
	jump    *autoscroll.Jump

	state      session.State
	sensorLock *lock.Lock
	marshal    *marshal
	publisher  *publisher
	lastUpdate *schemas.DragUpdate

	listeners    map[int]Listener
	nextListener int

	// deferred runs once the lock is released.
	deferred []func()
}

// New wires an engine to its collaborators.
func New(opts Options) (*Engine, error) {
	if opts.Registry == nil {
		return nil, errors.New("engine requires a registry")
	}
	if opts.Environment == nil {
		return nil, errors.New("engine requires an environment")
	}
	if opts.Scheduler == nil {
		return nil, errors.New("engine requires a frame scheduler")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = frame.SystemClock{}
	}

	e := &Engine{
		cfg:        cfg,
		logger:     logger.With(zap.String("component", "engine")),
		registry:   opts.Registry,
		env:        opts.Environment,
		sched:      opts.Scheduler,
		responders: opts.Responders,
		reducer:    session.NewReducer(cfg.Engine, cfg.Drop),
		locks:      lock.NewManager(logger),
		state:      session.Idle(),
		listeners:  make(map[int]Listener),
	}
	target := scrollTarget{e: e}
	e.fluid = autoscroll.NewFluid(cfg.AutoScroll, clock, opts.Scheduler, target, logger)
	e.jump = autoscroll.NewJump(target, e.jumpMove)
	e.marshal = newMarshal(e)
	e.publisher = newPublisher(e)
	return e, nil
}

// -- Locking --

// do runs fn with the engine locked and then runs whatever fn deferred.
func (e *Engine) do(fn func() error) error {
	e.mu.Lock()
	err := fn()
	deferred := e.deferred
	e.deferred = nil
	e.mu.Unlock()

	for _, f := range deferred {
		f()
	}
	return err
}

// later queues fn until the lock is released. Callers hold the lock.
func (e *Engine) later(fn func()) {
	e.deferred = append(e.deferred, fn)
}

// -- State --

// State returns the current drag state.
func (e *Engine) State() session.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// DraggableSnapshot describes how id should be drawn right now.
func (e *Engine) DraggableSnapshot(id schemas.DraggableID) session.DraggableSnapshot {
	return e.State().DraggableSnapshot(id)
}

// DroppableSnapshot describes how id should be drawn right now.
func (e *Engine) DroppableSnapshot(id schemas.DroppableID) session.DroppableSnapshot {
	return e.State().DroppableSnapshot(id)
}

// Subscribe registers fn for state changes and returns a function that removes it.
func (e *Engine) Subscribe(fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// -- Dispatch --

// dispatch applies one intent. Callers hold the lock.
func (e *Engine) dispatch(in session.Intent) error {
	previous := e.state
	next, err := e.reducer.Reduce(previous, in)
	if err != nil {
		return e.fail(session.Name(in), err)
	}
	e.state = next
	e.logger.Debug("Applied intent.",
		zap.String("intent", session.Name(in)),
		zap.String("from", string(previous.Phase)),
		zap.String("to", string(next.Phase)))
	e.afterTransition(previous, next)
	return nil
}

// fail aborts the drag after a broken contract. Callers hold the lock.
func (e *Engine) fail(op string, err error) error {
	if !invariant.Is(err) {
		return err
	}
	e.logger.Error("Aborting drag after an invariant violation.",
		zap.String("op", op),
		zap.String("phase", string(e.state.Phase)),
		zap.Error(err))
	previous := e.state
	e.state = session.State{Phase: session.PhaseIdle, ShouldFlush: true}
	e.afterTransition(previous, e.state)
	return err
}

func (e *Engine) afterTransition(previous, next session.State) {
	e.notify(next)
	e.announce(previous, next)

	if previous.IsDragging() && !next.IsDragging() {
		e.stopDragging()
	}
	if next.Phase == session.PhaseIdle {
		e.releaseSensor()
	}
	if next.Phase == session.PhaseDragging {
		e.autoScroll(next.Drag)
	}
}

func (e *Engine) notify(s session.State) {
	if len(e.listeners) == 0 {
		return
	}
	ids := make([]int, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fn := e.listeners[id]
		e.later(func() { fn(s) })
	}
}

// stopDragging tears down everything that only lives while the item is held.
func (e *Engine) stopDragging() {
	e.fluid.Stop()
	e.publisher.stop()
	e.marshal.stop()
	e.registry.EndDrag()
}

func (e *Engine) releaseSensor() {
	if e.sensorLock == nil {
		return
	}
	e.locks.ReleaseIfActive(e.sensorLock)
	e.sensorLock = nil
}

// -- Auto scrolling --

func (e *Engine) autoScroll(d *session.Drag) {
	if d.MovementMode == schemas.FluidMode {
		e.fluid.Scroll(fluidInput(d))
		return
	}
	if d.ScrollJumpRequest == nil {
		return
	}
	in := autoscroll.JumpInput{
		Request:               *d.ScrollJumpRequest,
		Impact:                d.Impact,
		Droppables:            d.Dimensions.Droppables,
		Viewport:              d.Viewport,
		IsWindowScrollAllowed: d.IsWindowScrollAllowed,
		ClientSelection:       d.Current.Client.Selection,
	}
	e.later(func() {
		if err := e.jump.Scroll(in); err != nil {
			_ = e.do(func() error { return e.fail("jump scroll", err) })
		}
	})
}

func fluidInput(d *session.Drag) autoscroll.Input {
	return autoscroll.Input{
		Center:                d.Current.Page.BorderBoxCenter,
		DraggableID:           d.Critical.Draggable.ID,
		Dimensions:            d.Dimensions,
		Viewport:              d.Viewport,
		Impact:                d.Impact,
		IsWindowScrollAllowed: d.IsWindowScrollAllowed,
	}
}

// jumpMove moves a keyboard drag by whatever a jump scroll could not absorb.
func (e *Engine) jumpMove(clientSelection geometry.Position) {
	_ = e.do(func() error {
		if !e.state.IsDragging() {
			return nil
		}
		return e.dispatch(session.Move{Client: clientSelection})
	})
}

// scrollTarget carries out scrolls requested from the frame loop, outside of
// the engine lock.
type scrollTarget struct {
	e *Engine
}

func (t scrollTarget) ScrollWindow(change geometry.Position) {
	t.e.env.ScrollWindow(change)
	_ = t.e.WindowScrolled(t.e.env.Viewport().Scroll.Current)
}

func (t scrollTarget) ScrollDroppable(id schemas.DroppableID, change geometry.Position) {
	entry, ok := t.e.registry.FindDroppable(id)
	if !ok {
		t.e.logger.Warn("Cannot scroll a droppable that is no longer registered.", zap.String("droppable_id", string(id)))
		return
	}
	// The owner reports the new scroll through the watcher handed out at lift.
	entry.Callbacks.Scroll(change)
}

// -- Environment events --

// WindowScrolled reports that the page scrolled to newScroll.
func (e *Engine) WindowScrolled(newScroll geometry.Position) error {
	return e.do(func() error {
		switch e.state.Phase {
		case session.PhaseDragging, session.PhaseCollecting:
			return e.dispatch(session.MoveByWindowScroll{NewScroll: newScroll})
		}
		return nil
	})
}

// ViewportMaxScrollChanged reports that the page can now scroll further, or less far.
func (e *Engine) ViewportMaxScrollChanged(maxScroll geometry.Position) error {
	return e.do(func() error {
		if !e.state.IsDragging() {
			return nil
		}
		return e.dispatch(session.UpdateViewportMaxScroll{MaxScroll: maxScroll})
	})
}

// SetDroppableEnabled toggles whether a droppable accepts the current drag.
func (e *Engine) SetDroppableEnabled(id schemas.DroppableID, enabled bool) error {
	return e.do(func() error {
		if !e.state.IsDragging() {
			return nil
		}
		return e.dispatch(session.UpdateDroppableIsEnabled{ID: id, IsEnabled: enabled})
	})
}

// SetDroppableCombineEnabled toggles combining for a droppable during the current drag.
func (e *Engine) SetDroppableCombineEnabled(id schemas.DroppableID, enabled bool) error {
	return e.do(func() error {
		if !e.state.IsDragging() {
			return nil
		}
		return e.dispatch(session.UpdateDroppableIsCombineEnabled{ID: id, IsCombineEnabled: enabled})
	})
}

// DropAnimationFinished tells the engine the dropped item has arrived home.
func (e *Engine) DropAnimationFinished() error {
	return e.do(func() error {
		return e.dispatch(session.DropAnimationFinished{})
	})
}

// Abandon takes the lock away from whichever sensor holds it and abandons the
// drag in progress without a result.
func (e *Engine) Abandon() {
	e.locks.TryAbandon()
	_ = e.do(func() error {
		if e.state.Phase == session.PhaseIdle {
			return nil
		}
		e.logger.Info("Flushing abandoned drag.", zap.String("phase", string(e.state.Phase)))
		return e.dispatch(session.Flush{})
	})
}
