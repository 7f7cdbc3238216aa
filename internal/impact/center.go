package impact

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/dimension"
	"github.com/xkilldash9x/dropzone/internal/visibility"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// -- Placement --

func crossAxisCenter(axis geometry.Axis, moveRelativeTo geometry.Rect, isMoving geometry.BoxModel) float64 {
	return axis.CrossStart(moveRelativeTo) + axis.SpacingCrossStart(isMoving.Margin) + axis.CrossSize(isMoving.BorderBox)/2
}

func goBefore(axis geometry.Axis, moveRelativeTo, isMoving geometry.BoxModel) geometry.Position {
	main := axis.Start(moveRelativeTo.MarginBox) - (axis.SpacingEnd(isMoving.Margin) + axis.Size(isMoving.BorderBox)/2)
	return axis.Patch(main, crossAxisCenter(axis, moveRelativeTo.MarginBox, isMoving))
}

func goAfter(axis geometry.Axis, moveRelativeTo, isMoving geometry.BoxModel) geometry.Position {
	main := axis.End(moveRelativeTo.MarginBox) + axis.SpacingStart(isMoving.Margin) + axis.Size(isMoving.BorderBox)/2
	return axis.Patch(main, crossAxisCenter(axis, moveRelativeTo.MarginBox, isMoving))
}

func goIntoStart(axis geometry.Axis, moveInto, isMoving geometry.BoxModel) geometry.Position {
	main := axis.Start(moveInto.ContentBox) + axis.SpacingStart(isMoving.Margin) + axis.Size(isMoving.BorderBox)/2
	return axis.Patch(main, crossAxisCenter(axis, moveInto.ContentBox, isMoving))
}

// -- Centers --

// PageBorderBoxCenter is where the dragged item's border box center should
// sit, in page coordinates, to honour impact.
func PageBorderBoxCenter(impact schemas.DragImpact, draggable schemas.DraggableDimension, droppable schemas.DroppableDimension, draggables schemas.DraggableDimensionMap, afterCritical schemas.AfterCritical) (geometry.Position, error) {
	var (
		raw geometry.Position
		err error
	)
	if impact.At != nil && impact.At.Type == schemas.AtCombine {
		raw, err = whenCombining(impact, draggables, afterCritical)
	} else {
		raw, err = whenReordering(impact, draggable, droppable, draggables, afterCritical)
	}
	if err != nil {
		return geometry.Position{}, err
	}
	return dimension.WithDroppableDisplacement(droppable, raw), nil
}

func whenCombining(impact schemas.DragImpact, draggables schemas.DraggableDimensionMap, afterCritical schemas.AfterCritical) (geometry.Position, error) {
	combineID := impact.At.Combine.DraggableID
	target, err := getDraggable("impact.PageBorderBoxCenter", combineID, draggables)
	if err != nil {
		return geometry.Position{}, err
	}
	center := target.Page.BorderBox.Center()
	isDisplaced := impact.Displaced.IsDisplaced(combineID)

	if afterCritical.DidStartAfterCritical(combineID) {
		if isDisplaced {
			return center, nil
		}
		return center.Subtract(afterCritical.DisplacedBy.Point), nil
	}
	if isDisplaced {
		return center.Add(impact.DisplacedBy.Point), nil
	}
	return center, nil
}

func whenReordering(impact schemas.DragImpact, draggable schemas.DraggableDimension, droppable schemas.DroppableDimension, draggables schemas.DraggableDimensionMap, afterCritical schemas.AfterCritical) (geometry.Position, error) {
	axis := droppable.Axis
	original := draggable.Page.BorderBox.Center()
	if impact.At == nil {
		return original, nil
	}

	insideDestination := dimension.DraggablesInside(droppable.Descriptor.ID, draggables)
	if len(insideDestination) == 0 {
		return goIntoStart(axis, droppable.Page, draggable.Page), nil
	}

	if len(impact.Displaced.All) > 0 {
		closestAfter, err := getDraggable("impact.PageBorderBoxCenter", impact.Displaced.All[0], draggables)
		if err != nil {
			return geometry.Position{}, err
		}
		if afterCritical.DidStartAfterCritical(closestAfter.Descriptor.ID) {
			// Displaced items that started after the dragged item are still at rest.
			return goBefore(axis, closestAfter.Page, draggable.Page), nil
		}
		return goBefore(axis, closestAfter.Page.Offset(impact.DisplacedBy.Point), draggable.Page), nil
	}

	last := insideDestination[len(insideDestination)-1]
	if last.Descriptor.ID == draggable.Descriptor.ID {
		return original, nil
	}
	if afterCritical.DidStartAfterCritical(last.Descriptor.ID) {
		shifted := last.Page.Offset(afterCritical.DisplacedBy.Point.Negate())
		return goAfter(axis, shifted, draggable.Page), nil
	}
	return goAfter(axis, last.Page, draggable.Page), nil
}

// ClientFromPageBorderBoxCenter converts a page center into the client
// selection that puts the dragged item there.
func ClientFromPageBorderBoxCenter(pageBorderBoxCenter geometry.Position, draggable schemas.DraggableDimension, viewport schemas.Viewport) geometry.Position {
	offset := viewport.Scroll.Diff.Displacement.Add(pageBorderBoxCenter).Subtract(draggable.Page.BorderBox.Center())
	return draggable.Client.BorderBox.Center().Add(offset)
}

// ClientBorderBoxCenter is the client center the dragged item should settle at
// for impact.
func ClientBorderBoxCenter(impact schemas.DragImpact, draggable schemas.DraggableDimension, droppable schemas.DroppableDimension, draggables schemas.DraggableDimensionMap, viewport schemas.Viewport, afterCritical schemas.AfterCritical) (geometry.Position, error) {
	pageCenter, err := PageBorderBoxCenter(impact, draggable, droppable, draggables, afterCritical)
	if err != nil {
		return geometry.Position{}, err
	}
	return ClientFromPageBorderBoxCenter(pageCenter, draggable, viewport), nil
}

type newLocationArgs struct {
	draggable                 schemas.DraggableDimension
	destination               schemas.DroppableDimension
	newPageBorderBoxCenter    geometry.Position
	viewport                  schemas.Viewport
	withDroppableDisplacement bool
	onlyOnMainAxis            bool
}

func isTotallyVisibleInNewLocation(args newLocationArgs) bool {
	changeNeeded := args.newPageBorderBoxCenter.Subtract(args.draggable.Page.BorderBox.Center())
	visArgs := visibility.Args{
		Target:                    geometry.Offset(args.draggable.Page.BorderBox, changeNeeded),
		Destination:               args.destination,
		Viewport:                  args.viewport.Frame,
		WithDroppableDisplacement: args.withDroppableDisplacement,
	}
	if args.onlyOnMainAxis {
		return visibility.IsTotallyVisibleOnAxis(visArgs)
	}
	return visibility.IsTotallyVisible(visArgs)
}
