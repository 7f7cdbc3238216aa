package autoscroll

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/invariant"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// JumpInput is the part of a drag the jump scroller looks at.
type JumpInput struct {
	Request               geometry.Position
	Impact                schemas.DragImpact
	Droppables            schemas.DroppableDimensionMap
	Viewport              schemas.Viewport
	IsWindowScrollAllowed bool
	ClientSelection       geometry.Position
}

// Jump applies a keyboard scroll request in one go: the destination scrolls
// as far as it can, then the window, and whatever is left moves the item.
type Jump struct {
	target Target
	move   func(clientSelection geometry.Position)
}

// NewJump creates a jump scroller. move receives the new client selection
// when scrolling alone cannot absorb the request.
func NewJump(target Target, move func(clientSelection geometry.Position)) *Jump {
	return &Jump{target: target, move: move}
}

// Scroll applies in.Request. It must only be called while over a droppable.
func (j *Jump) Scroll(in JumpInput) error {
	const op = "autoscroll.Jump"
	destinationID, ok := in.Impact.DraggingOver()
	if !ok {
		return invariant.New(op, "cannot perform a jump scroll when there is no destination")
	}
	destination, ok := in.Droppables[destinationID]
	if !ok {
		return invariant.New(op, "droppable %q is missing from the dimension map", destinationID)
	}

	rest, ok := j.scrollDroppable(destination, in.Request)
	if !ok {
		return nil
	}
	rest, ok = j.scrollWindow(in.IsWindowScrollAllowed, in.Viewport, rest)
	if !ok {
		return nil
	}
	j.move(in.ClientSelection.Add(rest))
	return nil
}

// scrollDroppable returns the remainder it could not absorb, if any.
func (j *Jump) scrollDroppable(droppable schemas.DroppableDimension, change geometry.Position) (geometry.Position, bool) {
	if !CanScrollDroppable(droppable, change) {
		return change, true
	}
	o, ok := DroppableOverlap(droppable, change)
	if !ok {
		j.target.ScrollDroppable(droppable.Descriptor.ID, change)
		return geometry.Origin, false
	}
	possible := change.Subtract(o)
	j.target.ScrollDroppable(droppable.Descriptor.ID, possible)
	return change.Subtract(possible), true
}

func (j *Jump) scrollWindow(allowed bool, viewport schemas.Viewport, change geometry.Position) (geometry.Position, bool) {
	if !allowed || !CanScrollWindow(viewport, change) {
		return change, true
	}
	o, ok := WindowOverlap(viewport, change)
	if !ok {
		j.target.ScrollWindow(change)
		return geometry.Origin, false
	}
	possible := change.Subtract(o)
	j.target.ScrollWindow(possible)
	return change.Subtract(possible), true
}
