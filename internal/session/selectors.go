package session

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// DraggableSnapshot is what a renderer needs to draw one draggable.
type DraggableSnapshot struct {
	ID              schemas.DraggableID
	IsDragging      bool
	IsDropAnimating bool
	// Offset is the transform to apply to the item in its current layout.
	Offset geometry.Position
	// ShiftFromOrigin is where the item shows relative to where it sat at lift,
	// independent of how the list reflows around the dragged item.
	ShiftFromOrigin  geometry.Position
	ShouldAnimate    bool
	CombineTargetFor schemas.DraggableID
	CombineWith      schemas.DraggableID
	DraggingOver     schemas.DroppableID
	Mode             schemas.MovementMode
	// DropDuration is set while the item travels home, in seconds.
	DropDuration float64
}

// DroppableSnapshot is what a renderer needs to draw one droppable.
type DroppableSnapshot struct {
	ID                      schemas.DroppableID
	IsDraggingOver          bool
	DraggingOverWith        schemas.DraggableID
	DraggingFromThisWith    schemas.DraggableID
	ShouldRenderPlaceholder bool
}

// view is the part of a state the selectors read, shared by in-flight and
// dropping drags.
type view struct {
	critical      schemas.Critical
	impact        schemas.DragImpact
	afterCritical schemas.AfterCritical
	over          schemas.DroppableID
	isOver        bool
}

func (s State) view() (view, bool) {
	switch {
	case s.Drag != nil && s.IsDragging():
		v := view{
			critical:      s.Drag.Critical,
			impact:        s.Drag.Impact,
			afterCritical: s.Drag.AfterCritical,
		}
		v.over, v.isOver = s.Drag.Impact.DraggingOver()
		return v, true
	case s.Phase == PhaseDropAnimating && s.Dropping != nil:
		completed := s.Dropping.Completed
		v := view{
			critical:      completed.Critical,
			impact:        completed.Impact,
			afterCritical: completed.AfterCritical,
		}
		if dest := completed.Result.Destination; dest != nil {
			v.over, v.isOver = dest.DroppableID, true
		}
		if combine := completed.Result.Combine; combine != nil {
			v.over, v.isOver = combine.DroppableID, true
		}
		return v, true
	}
	return view{}, false
}

// DraggableSnapshot describes id in s.
func (s State) DraggableSnapshot(id schemas.DraggableID) DraggableSnapshot {
	snap := DraggableSnapshot{ID: id}
	v, ok := s.view()
	if !ok {
		return snap
	}

	if id == v.critical.Draggable.ID {
		return s.draggingSnapshot(snap, v)
	}

	if combine, ok := v.impact.CombineTarget(); ok && combine.DraggableID == id {
		snap.CombineTargetFor = v.critical.Draggable.ID
	}

	displacement, isVisible := v.impact.Displaced.Visible[id]
	isAfterCritical := v.afterCritical.DidStartAfterCritical(id)
	isAfterCriticalInVirtualList := v.afterCritical.InVirtualList && isAfterCritical

	switch {
	case isVisible && !isAfterCriticalInVirtualList:
		snap.Offset = v.impact.DisplacedBy.Point
		snap.ShouldAnimate = displacement.ShouldAnimate
	case !isVisible && isAfterCriticalInVirtualList && !v.impact.Displaced.Invisible[id]:
		snap.Offset = v.afterCritical.DisplacedBy.Point.Negate()
		snap.ShouldAnimate = true
	default:
		snap.ShouldAnimate = true
		if isVisible {
			snap.ShouldAnimate = displacement.ShouldAnimate
		}
	}

	isDisplaced := v.impact.Displaced.IsDisplaced(id)
	switch {
	case isAfterCritical && !isDisplaced:
		snap.ShiftFromOrigin = v.afterCritical.DisplacedBy.Point.Negate()
	case !isAfterCritical && isDisplaced:
		snap.ShiftFromOrigin = v.impact.DisplacedBy.Point
	}
	return snap
}

func (s State) draggingSnapshot(snap DraggableSnapshot, v view) DraggableSnapshot {
	if v.isOver {
		snap.DraggingOver = v.over
	}
	if combine, ok := v.impact.CombineTarget(); ok {
		snap.CombineWith = combine.DraggableID
	}

	if s.Phase == PhaseDropAnimating {
		snap.IsDropAnimating = true
		snap.Offset = s.Dropping.NewHomeClientOffset
		snap.ShiftFromOrigin = snap.Offset
		snap.ShouldAnimate = true
		snap.Mode = s.Dropping.Completed.Result.Mode
		snap.DropDuration = s.Dropping.Duration
		return snap
	}

	d := s.Drag
	snap.IsDragging = true
	snap.Offset = d.Current.Client.Offset
	snap.ShiftFromOrigin = snap.Offset
	snap.Mode = d.MovementMode
	snap.ShouldAnimate = d.MovementMode == schemas.SnapMode
	if d.ForceShouldAnimate != nil {
		snap.ShouldAnimate = *d.ForceShouldAnimate
	}
	return snap
}

// DroppableSnapshot describes id in s.
func (s State) DroppableSnapshot(id schemas.DroppableID) DroppableSnapshot {
	snap := DroppableSnapshot{ID: id}
	v, ok := s.view()
	if !ok {
		return snap
	}
	dragging := v.critical.Draggable.ID
	isHome := v.critical.Droppable.ID == id

	snap.IsDraggingOver = v.isOver && v.over == id
	if snap.IsDraggingOver {
		snap.DraggingOverWith = dragging
	}
	if isHome {
		snap.DraggingFromThisWith = dragging
	}
	snap.ShouldRenderPlaceholder = isHome || snap.IsDraggingOver
	return snap
}
