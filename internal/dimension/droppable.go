// Package dimension builds and transforms the measured geometry of droppables,
// draggables and the viewport. Every function returns a new value.
package dimension

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/invariant"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// Closest describes the nearest scroll container of a droppable.
type Closest struct {
	Client            geometry.BoxModel
	Page              geometry.BoxModel
	ScrollSize        schemas.ScrollSize
	Scroll            geometry.Position
	ShouldClipSubject bool
}

// DroppableArgs is everything a collaborator measures for a droppable.
type DroppableArgs struct {
	Descriptor       schemas.DroppableDescriptor
	IsEnabled        bool
	IsCombineEnabled bool
	IsFixedOnPage    bool
	Direction        geometry.Direction
	Client           geometry.BoxModel
	Page             geometry.BoxModel
	Closest          *Closest
}

// NewDroppable assembles a droppable dimension, including its frame and
// initial subject.
func NewDroppable(args DroppableArgs) schemas.DroppableDimension {
	axis := geometry.AxisFor(args.Direction)

	var frame *schemas.Scrollable
	if c := args.Closest; c != nil {
		maxScroll := MaxScroll(c.ScrollSize, c.Client.PaddingBox.Width(), c.Client.PaddingBox.Height())
		frame = &schemas.Scrollable{
			PageMarginBox:     c.Page.MarginBox,
			FrameClient:       c.Client,
			ScrollSize:        c.ScrollSize,
			ShouldClipSubject: c.ShouldClipSubject,
			Scroll: schemas.ScrollDetails{
				Initial: c.Scroll,
				Current: c.Scroll,
				Max:     maxScroll,
			},
		}
	}

	return schemas.DroppableDimension{
		Descriptor:       args.Descriptor,
		Axis:             axis,
		IsEnabled:        args.IsEnabled,
		IsCombineEnabled: args.IsCombineEnabled,
		IsFixedOnPage:    args.IsFixedOnPage,
		Client:           args.Client,
		Page:             args.Page,
		Frame:            frame,
		Subject:          Subject(args.Page, nil, axis, frame),
	}
}

// MaxScroll is how far a container of the given visible size can scroll.
func MaxScroll(size schemas.ScrollSize, width, height float64) geometry.Position {
	return geometry.Position{
		X: max(0, size.ScrollWidth-width),
		Y: max(0, size.ScrollHeight-height),
	}
}

// Subject recomputes the active collision rectangle: the page margin box,
// shifted by the frame scroll, grown for a placeholder, and clipped to the
// frame.
func Subject(page geometry.BoxModel, withPlaceholder *schemas.PlaceholderInSubject, axis geometry.Axis, frame *schemas.Scrollable) schemas.DroppableSubject {
	displacement := geometry.Origin
	if frame != nil {
		displacement = frame.Scroll.Diff.Displacement
	}
	scrolled := geometry.Offset(page.MarginBox, displacement)

	increased := scrolled
	if withPlaceholder != nil && withPlaceholder.IncreasedBy != nil {
		growth := axis.Main(*withPlaceholder.IncreasedBy)
		increased = axis.WithEnd(scrolled, axis.End(scrolled)+growth)
	}

	subject := schemas.DroppableSubject{Page: page, WithPlaceholder: withPlaceholder}
	if frame != nil && frame.ShouldClipSubject {
		if clipped, ok := geometry.Clip(frame.PageMarginBox, increased); ok {
			subject.Active = &clipped
		}
		return subject
	}
	subject.Active = &increased
	return subject
}

// ScrollDroppable moves the droppable's frame to newScroll.
func ScrollDroppable(droppable schemas.DroppableDimension, newScroll geometry.Position) (schemas.DroppableDimension, error) {
	if droppable.Frame == nil {
		return droppable, invariant.New("dimension.ScrollDroppable", "droppable %q has no scroll frame", droppable.Descriptor.ID)
	}
	frame := *droppable.Frame
	diff := newScroll.Subtract(frame.Scroll.Initial)
	frame.Scroll = schemas.ScrollDetails{
		Initial: frame.Scroll.Initial,
		Current: newScroll,
		Max:     frame.Scroll.Max,
		Diff: schemas.ScrollDifference{
			Value:        diff,
			Displacement: diff.Negate(),
		},
	}

	droppable.Frame = &frame
	droppable.Subject = Subject(droppable.Subject.Page, droppable.Subject.WithPlaceholder, droppable.Axis, &frame)
	return droppable, nil
}

// WithDroppableScroll converts a page rect into the droppable's scrolled
// coordinate space.
func WithDroppableScroll(droppable schemas.DroppableDimension, area geometry.Rect) geometry.Rect {
	if droppable.Frame == nil {
		return area
	}
	return geometry.Offset(area, droppable.Frame.Scroll.Diff.Value)
}

// WithDroppableDisplacement shifts a point by the droppable's scroll displacement.
func WithDroppableDisplacement(droppable schemas.DroppableDimension, point geometry.Position) geometry.Position {
	if droppable.Frame == nil {
		return point
	}
	return point.Add(droppable.Frame.Scroll.Diff.Displacement)
}
