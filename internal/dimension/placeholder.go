package dimension

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/invariant"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// IsHomeOf reports whether droppable is the draggable's original container.
func IsHomeOf(draggable schemas.DraggableDimension, droppable schemas.DroppableDimension) bool {
	return draggable.Descriptor.DroppableID == droppable.Descriptor.ID
}

// requiredGrowth is how much a foreign droppable must grow so the placeholder
// fits. Nil means it already has room.
func requiredGrowth(droppable schemas.DroppableDimension, placeholderSize geometry.Position, draggables schemas.DraggableDimensionMap) *geometry.Position {
	axis := droppable.Axis
	if droppable.Descriptor.Mode == schemas.ModeVirtual {
		growth := axis.Patch(axis.Main(placeholderSize), 0)
		return &growth
	}

	available := axis.Size(droppable.Subject.Page.ContentBox)
	used := 0.0
	for _, d := range DraggablesInside(droppable.Descriptor.ID, draggables) {
		used += axis.Size(d.Client.MarginBox)
	}
	needed := used + axis.Main(placeholderSize) - available
	if needed <= 0 {
		return nil
	}
	growth := axis.Patch(needed, 0)
	return &growth
}

// AddPlaceholder grows a foreign droppable (and its frame's max scroll) to
// make room for the dragged item.
func AddPlaceholder(droppable schemas.DroppableDimension, draggable schemas.DraggableDimension, draggables schemas.DraggableDimensionMap) (schemas.DroppableDimension, error) {
	const op = "dimension.AddPlaceholder"
	if IsHomeOf(draggable, droppable) {
		return droppable, invariant.New(op, "should not add placeholder space to home list %q", droppable.Descriptor.ID)
	}
	if droppable.Subject.WithPlaceholder != nil {
		return droppable, invariant.New(op, "droppable %q already has placeholder space", droppable.Descriptor.ID)
	}

	axis := droppable.Axis
	placeholderSize := axis.Patch(axis.Main(draggable.DisplaceBy), 0)
	growth := requiredGrowth(droppable, placeholderSize, draggables)

	added := &schemas.PlaceholderInSubject{
		PlaceholderSize: placeholderSize,
		IncreasedBy:     growth,
	}

	if droppable.Frame == nil {
		droppable.Subject = Subject(droppable.Subject.Page, added, axis, nil)
		return droppable, nil
	}

	oldMax := droppable.Frame.Scroll.Max
	added.OldFrameMaxScroll = &oldMax

	frame := *droppable.Frame
	if growth != nil {
		frame.Scroll.Max = frame.Scroll.Max.Add(*growth)
	}
	droppable.Frame = &frame
	droppable.Subject = Subject(droppable.Subject.Page, added, axis, &frame)
	return droppable, nil
}

// RemovePlaceholder undoes AddPlaceholder.
func RemovePlaceholder(droppable schemas.DroppableDimension) (schemas.DroppableDimension, error) {
	const op = "dimension.RemovePlaceholder"
	added := droppable.Subject.WithPlaceholder
	if added == nil {
		return droppable, invariant.New(op, "droppable %q has no placeholder space to remove", droppable.Descriptor.ID)
	}

	if droppable.Frame == nil {
		droppable.Subject = Subject(droppable.Subject.Page, nil, droppable.Axis, nil)
		return droppable, nil
	}
	if added.OldFrameMaxScroll == nil {
		return droppable, invariant.New(op, "droppable %q lost its original max scroll", droppable.Descriptor.ID)
	}

	frame := *droppable.Frame
	frame.Scroll.Max = *added.OldFrameMaxScroll
	droppable.Frame = &frame
	droppable.Subject = Subject(droppable.Subject.Page, nil, droppable.Axis, &frame)
	return droppable, nil
}
