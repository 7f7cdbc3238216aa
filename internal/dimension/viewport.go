package dimension

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// NewViewport builds a viewport of the given size scrolled to scroll.
func NewViewport(width, height float64, scroll, maxScroll geometry.Position) schemas.Viewport {
	return schemas.Viewport{
		Frame: geometry.RectFromXYWH(scroll.X, scroll.Y, width, height),
		Scroll: schemas.ScrollDetails{
			Initial: scroll,
			Current: scroll,
			Max:     maxScroll,
		},
	}
}

// ScrollViewport moves the viewport to newScroll.
func ScrollViewport(viewport schemas.Viewport, newScroll geometry.Position) schemas.Viewport {
	diff := newScroll.Subtract(viewport.Scroll.Initial)
	return schemas.Viewport{
		Frame: geometry.RectFromXYWH(newScroll.X, newScroll.Y, viewport.Frame.Width(), viewport.Frame.Height()),
		Scroll: schemas.ScrollDetails{
			Initial: viewport.Scroll.Initial,
			Current: newScroll,
			Max:     viewport.Scroll.Max,
			Diff: schemas.ScrollDifference{
				Value:        diff,
				Displacement: diff.Negate(),
			},
		},
	}
}

// OffsetDraggable shifts a draggable measured mid-drag back into the
// coordinates used at lift.
func OffsetDraggable(draggable schemas.DraggableDimension, offset, initialWindowScroll geometry.Position) schemas.DraggableDimension {
	client := draggable.Client.Offset(offset)
	draggable.Client = client
	draggable.Page = client.WithScroll(initialWindowScroll)
	draggable.Placeholder.Client = client
	return draggable
}

// NewDraggable builds a draggable dimension from its client box.
func NewDraggable(descriptor schemas.DraggableDescriptor, client geometry.BoxModel, windowScroll geometry.Position) schemas.DraggableDimension {
	margin := client.MarginBox
	return schemas.DraggableDimension{
		Descriptor: descriptor,
		Placeholder: schemas.Placeholder{
			Client:  client,
			TagName: "div",
			Display: "block",
		},
		Client:     client,
		Page:       client.WithScroll(windowScroll),
		DisplaceBy: geometry.Position{X: margin.Width(), Y: margin.Height()},
	}
}

// DisplacedBy is the displacement a draggable causes along an axis.
func DisplacedBy(axis geometry.Axis, displaceBy geometry.Position) schemas.DisplacedBy {
	value := axis.Main(displaceBy)
	return schemas.DisplacedBy{Value: value, Point: axis.Patch(value, 0)}
}
