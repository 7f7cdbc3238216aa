// Package dimensiontest builds dimension fixtures for tests.
package dimensiontest

import (
	"strconv"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/dimension"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// DefaultType is the type every fixture uses unless overridden.
const DefaultType schemas.TypeID = "DEFAULT"

// Draggable builds a draggable with no margin whose border box is rect and
// whose page box equals its client box.
func Draggable(id string, index int, droppableID string, rect geometry.Rect) schemas.DraggableDimension {
	descriptor := schemas.DraggableDescriptor{
		ID:          schemas.DraggableID(id),
		Index:       index,
		DroppableID: schemas.DroppableID(droppableID),
		Type:        DefaultType,
	}
	box := geometry.CreateBox(rect, geometry.Spacing{}, geometry.Spacing{}, geometry.Spacing{})
	return dimension.NewDraggable(descriptor, box, geometry.Origin)
}

// Column builds count draggables of the given size stacked vertically from top.
func Column(droppableID string, prefix string, count int, left, top, width, height float64) []schemas.DraggableDimension {
	out := make([]schemas.DraggableDimension, 0, count)
	for i := 0; i < count; i++ {
		y := top + float64(i)*height
		out = append(out, Draggable(prefix+strconv.Itoa(i), i, droppableID, geometry.RectFromXYWH(left, y, width, height)))
	}
	return out
}

// Row builds count draggables laid out horizontally from left.
func Row(droppableID string, prefix string, count int, left, top, width, height float64) []schemas.DraggableDimension {
	out := make([]schemas.DraggableDimension, 0, count)
	for i := 0; i < count; i++ {
		x := left + float64(i)*width
		out = append(out, Draggable(prefix+strconv.Itoa(i), i, droppableID, geometry.RectFromXYWH(x, top, width, height)))
	}
	return out
}

// DroppableOption tweaks a droppable fixture.
type DroppableOption func(*dimension.DroppableArgs)

func Horizontal() DroppableOption {
	return func(a *dimension.DroppableArgs) { a.Direction = geometry.Horizontal }
}

func CombineEnabled() DroppableOption {
	return func(a *dimension.DroppableArgs) { a.IsCombineEnabled = true }
}

func Disabled() DroppableOption {
	return func(a *dimension.DroppableArgs) { a.IsEnabled = false }
}

func Virtual() DroppableOption {
	return func(a *dimension.DroppableArgs) { a.Descriptor.Mode = schemas.ModeVirtual }
}

func FixedOnPage() DroppableOption {
	return func(a *dimension.DroppableArgs) { a.IsFixedOnPage = true }
}

// Scrollable gives the droppable a clipping scroll frame equal to frame whose
// content is contentHeight tall (or wide, for horizontal lists).
func Scrollable(frame geometry.Rect, contentWidth, contentHeight float64) DroppableOption {
	return func(a *dimension.DroppableArgs) {
		box := geometry.CreateBox(frame, geometry.Spacing{}, geometry.Spacing{}, geometry.Spacing{})
		a.Closest = &dimension.Closest{
			Client:            box,
			Page:              box,
			ScrollSize:        schemas.ScrollSize{ScrollWidth: contentWidth, ScrollHeight: contentHeight},
			ShouldClipSubject: true,
		}
	}
}

// Droppable builds an enabled, vertical, standard droppable.
func Droppable(id string, rect geometry.Rect, opts ...DroppableOption) schemas.DroppableDimension {
	box := geometry.CreateBox(rect, geometry.Spacing{}, geometry.Spacing{}, geometry.Spacing{})
	args := dimension.DroppableArgs{
		Descriptor: schemas.DroppableDescriptor{ID: schemas.DroppableID(id), Type: DefaultType, Mode: schemas.ModeStandard},
		IsEnabled:  true,
		Direction:  geometry.Vertical,
		Client:     box,
		Page:       box,
	}
	for _, opt := range opts {
		opt(&args)
	}
	return dimension.NewDroppable(args)
}

// Map collects fixtures into a dimension map.
func Map(droppables []schemas.DroppableDimension, draggables ...[]schemas.DraggableDimension) schemas.DimensionMap {
	m := schemas.DimensionMap{
		Draggables: schemas.DraggableDimensionMap{},
		Droppables: schemas.DroppableDimensionMap{},
	}
	for _, d := range droppables {
		m.Droppables[d.Descriptor.ID] = d
	}
	for _, group := range draggables {
		for _, d := range group {
			m.Draggables[d.Descriptor.ID] = d
		}
	}
	return m
}

// Viewport is an unscrolled viewport of the given size with no scroll room.
func Viewport(width, height float64) schemas.Viewport {
	return dimension.NewViewport(width, height, geometry.Origin, geometry.Origin)
}
