package engine

import (
	"errors"

	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/impact"
	"github.com/xkilldash9x/dropzone/internal/lock"
	"github.com/xkilldash9x/dropzone/internal/session"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

var (
	// ErrLockUnavailable is returned by TryGetLock while another sensor holds the lock.
	ErrLockUnavailable = errors.New("another sensor holds the drag lock")
	// ErrCannotStartDrag is returned by TryGetLock when the draggable cannot be lifted right now.
	ErrCannotStartDrag = errors.New("draggable cannot start a drag")
	// ErrInactive is returned by sensor actions once their lock is gone.
	ErrInactive = errors.New("sensor action is no longer active")
)

// TryGetLock claims the drag lock for id. forceStop is called if the lock is
// later abandoned; it may be nil.
func (e *Engine) TryGetLock(id schemas.DraggableID, forceStop func()) (*PreDragActions, error) {
	var actions *PreDragActions
	err := e.do(func() error {
		if e.locks.IsClaimed() {
			return ErrLockUnavailable
		}
		if !e.canStartDrag(id) {
			return ErrCannotStartDrag
		}
		l, err := e.locks.Claim(string(id), forceStop)
		if err != nil {
			return err
		}
		actions = &PreDragActions{e: e, lock: l, id: id}
		return nil
	})
	return actions, err
}

func (e *Engine) canStartDrag(id schemas.DraggableID) bool {
	entry, ok := e.registry.FindDraggable(id)
	if !ok || !entry.Options.IsEnabled {
		return false
	}
	switch e.state.Phase {
	case session.PhaseIdle:
		return true
	case session.PhaseDropAnimating:
		// Only a cancel animation may be cut short.
		return e.state.Dropping.Completed.Result.Reason == schemas.ReasonCancel
	}
	return false
}

// -- Pre drag --

// PreDragActions is what a sensor may do between claiming the lock and lifting.
type PreDragActions struct {
	e      *Engine
	lock   *lock.Lock
	id     schemas.DraggableID
	lifted bool
}

// IsActive reports whether the lock is still held and no lift has happened yet.
func (p *PreDragActions) IsActive() bool {
	return !p.lifted && p.e.locks.IsActive(p.lock)
}

// FluidLift starts a pointer driven drag at clientSelection.
func (p *PreDragActions) FluidLift(clientSelection geometry.Position) (*FluidDragActions, error) {
	if err := p.lift(schemas.FluidMode, &clientSelection); err != nil {
		return nil, err
	}
	return &FluidDragActions{dragActions{e: p.e, lock: p.lock}}, nil
}

// SnapLift starts a keyboard driven drag from the item's center.
func (p *PreDragActions) SnapLift() (*SnapDragActions, error) {
	if err := p.lift(schemas.SnapMode, nil); err != nil {
		return nil, err
	}
	return &SnapDragActions{dragActions{e: p.e, lock: p.lock}}, nil
}

// Abort gives the lock back without dragging.
func (p *PreDragActions) Abort() {
	if !p.IsActive() {
		return
	}
	p.lifted = true
	p.e.locks.ReleaseIfActive(p.lock)
}

func (p *PreDragActions) lift(mode schemas.MovementMode, clientSelection *geometry.Position) error {
	e := p.e
	return e.do(func() error {
		if !p.IsActive() {
			e.logger.Warn("Cannot lift: the sensor no longer holds the lock.", zap.String("draggable_id", string(p.id)))
			return ErrInactive
		}
		p.lifted = true

		// Finish a cancel animation that is still running.
		if e.state.Phase == session.PhaseDropAnimating {
			if err := e.dispatch(session.DropAnimationFinished{}); err != nil {
				return err
			}
		}

		collected, err := e.marshal.collect(p.id)
		if err != nil {
			e.stopDragging()
			e.locks.ReleaseIfActive(p.lock)
			return e.fail("lift", err)
		}
		selection := collected.dimensions.Draggables[p.id].Client.BorderBox.Center()
		if clientSelection != nil {
			selection = *clientSelection
		}

		e.sensorLock = p.lock
		e.publisher.start(collected.critical.Draggable.Type)
		if err := e.dispatch(session.Lift{
			Critical:        collected.critical,
			ClientSelection: selection,
			MovementMode:    mode,
			Dimensions:      collected.dimensions,
			Viewport:        collected.viewport,
		}); err != nil {
			e.stopDragging()
			return err
		}
		e.fluid.Start(fluidInput(e.state.Drag))
		return nil
	})
}

// -- Dragging --

type dragActions struct {
	e    *Engine
	lock *lock.Lock
}

// IsActive reports whether the sensor may still act on the drag.
func (a dragActions) IsActive() bool {
	return a.e.locks.IsActive(a.lock)
}

func (a dragActions) act(in session.Intent) error {
	return a.e.do(func() error {
		if !a.e.locks.IsActive(a.lock) {
			a.e.logger.Warn("Ignoring sensor action: the sensor no longer holds the lock.", zap.String("intent", session.Name(in)))
			return ErrInactive
		}
		return a.e.dispatch(in)
	})
}

// Drop ends the drag where the item is.
func (a dragActions) Drop() error {
	return a.finish(schemas.ReasonDrop)
}

// Cancel ends the drag and sends the item home.
func (a dragActions) Cancel() error {
	return a.finish(schemas.ReasonCancel)
}

// finish drops and hands the lock back; the drop may still be animating.
func (a dragActions) finish(reason schemas.DropReason) error {
	return a.e.do(func() error {
		if !a.e.locks.IsActive(a.lock) {
			return ErrInactive
		}
		err := a.e.dispatch(session.Drop{Reason: reason})
		a.e.locks.ReleaseIfActive(a.lock)
		if a.e.sensorLock == a.lock {
			a.e.sensorLock = nil
		}
		return err
	})
}

// FluidDragActions drive a pointer drag.
type FluidDragActions struct {
	dragActions
}

// Move reports the pointer at clientSelection.
func (a *FluidDragActions) Move(clientSelection geometry.Position) error {
	return a.act(session.Move{Client: clientSelection})
}

// SnapDragActions drive a keyboard drag.
type SnapDragActions struct {
	dragActions
}

func (a *SnapDragActions) MoveUp() error {
	return a.act(session.MoveInDirection{Direction: impact.MoveUp})
}

func (a *SnapDragActions) MoveDown() error {
	return a.act(session.MoveInDirection{Direction: impact.MoveDown})
}

func (a *SnapDragActions) MoveLeft() error {
	return a.act(session.MoveInDirection{Direction: impact.MoveLeft})
}

func (a *SnapDragActions) MoveRight() error {
	return a.act(session.MoveInDirection{Direction: impact.MoveRight})
}
