// Package session holds the drag state machine. State values are treated as
// immutable: Reduce never modifies its input and always hands back a new value.
package session

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// Phase is the lifecycle stage of a drag.
type Phase string

const (
	PhaseIdle          Phase = "IDLE"
	PhaseCollecting    Phase = "COLLECTING"
	PhaseDragging      Phase = "DRAGGING"
	PhaseDropPending   Phase = "DROP_PENDING"
	PhaseDropAnimating Phase = "DROP_ANIMATING"
)

// Drag is everything known about a drag between lift and drop.
type Drag struct {
	Critical      schemas.Critical
	MovementMode  schemas.MovementMode
	Dimensions    schemas.DimensionMap
	Initial       schemas.DragPositions
	Current       schemas.DragPositions
	Impact        schemas.DragImpact
	OnLiftImpact  schemas.DragImpact
	Viewport      schemas.Viewport
	AfterCritical schemas.AfterCritical

	IsWindowScrollAllowed bool
	// ScrollJumpRequest is a keyboard move waiting for a scroll before it can land.
	ScrollJumpRequest  *geometry.Position
	ForceShouldAnimate *bool
}

// DropPending is a drop requested while a collection was in flight.
type DropPending struct {
	Reason schemas.DropReason
	// IsWaiting is cleared once the collection has been published.
	IsWaiting bool
}

// DropAnimation is a drop whose item is still travelling home.
type DropAnimation struct {
	Completed schemas.CompletedDrag
	// Duration is in seconds.
	Duration            float64
	NewHomeClientOffset geometry.Position
	Dimensions          schemas.DimensionMap
}

// State is the complete drag state. Which fields are set depends on Phase:
// Drag for Collecting, Dragging and DropPending; Pending for DropPending;
// Dropping for DropAnimating; Completed (optionally) for Idle.
type State struct {
	Phase       Phase
	Drag        *Drag
	Pending     *DropPending
	Dropping    *DropAnimation
	Completed   *schemas.CompletedDrag
	ShouldFlush bool
}

// Idle is the starting state.
func Idle() State {
	return State{Phase: PhaseIdle}
}

// IsDragging reports whether a drag is in progress (lifted and not yet dropping).
func (s State) IsDragging() bool {
	switch s.Phase {
	case PhaseCollecting, PhaseDragging, PhaseDropPending:
		return true
	}
	return false
}

func (s State) isMovementAllowed() bool {
	return s.Phase == PhaseDragging || s.Phase == PhaseCollecting
}

func (s State) withDrag(phase Phase, d Drag) State {
	out := State{Phase: phase, Drag: &d}
	if phase == PhaseDropPending && s.Pending != nil {
		pending := *s.Pending
		out.Pending = &pending
	}
	return out
}
