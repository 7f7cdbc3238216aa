// Package impact works out what the dragged item is over and how every other
// item has to move to make room for it.
//
// All functions are pure and deterministic: lists are walked in index or id
// order so identical inputs always yield deeply equal impacts.
package impact

import (
	"sort"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/dimension"
	"github.com/xkilldash9x/dropzone/internal/invariant"
	"github.com/xkilldash9x/dropzone/internal/visibility"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// DefaultCombineThresholdDivisor trims a quarter of a sibling from each end to
// form its combine band.
const DefaultCombineThresholdDivisor = 4.0

// Calculator holds the tunables of the impact algorithms. The zero value uses
// the defaults.
type Calculator struct {
	CombineThresholdDivisor float64
}

func (c Calculator) divisor() float64 {
	if c.CombineThresholdDivisor <= 0 {
		return DefaultCombineThresholdDivisor
	}
	return c.CombineThresholdDivisor
}

// DragArgs are the inputs of the pointer path.
type DragArgs struct {
	// PageOffset is how far the pointer has moved since lift, in page space.
	PageOffset    geometry.Position
	DraggableID   schemas.DraggableID
	Dimensions    schemas.DimensionMap
	Previous      schemas.DragImpact
	Viewport      schemas.Viewport
	AfterCritical schemas.AfterCritical
}

// GetDragImpact resolves the droppable under the dragged item and returns
// either a combine or a reorder impact.
func (c Calculator) GetDragImpact(args DragArgs) (schemas.DragImpact, error) {
	draggable, err := getDraggable("impact.GetDragImpact", args.DraggableID, args.Dimensions.Draggables)
	if err != nil {
		return schemas.DragImpact{}, err
	}

	pageBorderBox := geometry.Offset(draggable.Page.BorderBox, args.PageOffset)
	destinationID, ok := getDroppableOver(pageBorderBox, draggable, args.Dimensions.Droppables)
	if !ok {
		return schemas.NoImpact(), nil
	}
	destination := args.Dimensions.Droppables[destinationID]

	insideDestination := dimension.DraggablesInside(destinationID, args.Dimensions.Draggables)
	withDroppableScroll := dimension.WithDroppableScroll(destination, pageBorderBox)

	if combined, ok := c.getCombineImpact(withDroppableScroll, draggable, args.Previous, destination, insideDestination, args.AfterCritical); ok {
		return combined, nil
	}
	return getReorderImpact(withDroppableScroll, draggable, destination, insideDestination, args.Previous.Displaced, args.Viewport, args.AfterCritical), nil
}

// -- Target resolution --

func sortedDroppables(droppables schemas.DroppableDimensionMap) []schemas.DroppableDimension {
	list := make([]schemas.DroppableDimension, 0, len(droppables))
	for _, d := range droppables {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Descriptor.ID < list[j].Descriptor.ID })
	return list
}

// keepClosest keeps the candidates sharing the smallest score. Input order is preserved.
func keepClosest(candidates []schemas.DroppableDimension, score func(schemas.DroppableDimension) float64) []schemas.DroppableDimension {
	var (
		best []schemas.DroppableDimension
		min  float64
	)
	for i, d := range candidates {
		s := score(d)
		switch {
		case i == 0 || s < min:
			min = s
			best = []schemas.DroppableDimension{d}
		case s == min:
			best = append(best, d)
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// getDroppableOver picks the droppable the dragged box is over. When several
// active areas overlap it, the order of preference is: the one containing the
// box center, the closest cross-axis center, the closest main-axis start edge,
// the closest corner, and finally the lowest id.
func getDroppableOver(pageBorderBox geometry.Rect, draggable schemas.DraggableDimension, droppables schemas.DroppableDimensionMap) (schemas.DroppableID, bool) {
	var candidates []schemas.DroppableDimension
	for _, d := range sortedDroppables(droppables) {
		if !d.IsEnabled || d.Subject.Active == nil || d.Descriptor.Type != draggable.Descriptor.Type {
			continue
		}
		if geometry.IsPartiallyVisibleThroughFrame(*d.Subject.Active, pageBorderBox) {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	if len(candidates) == 1 {
		return candidates[0].Descriptor.ID, true
	}

	center := pageBorderBox.Center()

	var contains []schemas.DroppableDimension
	for _, d := range candidates {
		if geometry.IsPositionInFrame(*d.Subject.Active, center) {
			contains = append(contains, d)
		}
	}
	if len(contains) == 1 {
		return contains[0].Descriptor.ID, true
	}
	if len(contains) > 1 {
		candidates = contains
	}

	tieBreaks := []func(schemas.DroppableDimension) float64{
		func(d schemas.DroppableDimension) float64 {
			return abs(d.Axis.Cross(d.Subject.Active.Center()) - d.Axis.Cross(center))
		},
		func(d schemas.DroppableDimension) float64 {
			return abs(d.Axis.Start(*d.Subject.Active) - d.Axis.Main(center))
		},
		func(d schemas.DroppableDimension) float64 {
			return geometry.Closest(center, geometry.Corners(*d.Subject.Active))
		},
	}
	for _, score := range tieBreaks {
		candidates = keepClosest(candidates, score)
		if len(candidates) == 1 {
			break
		}
	}
	return candidates[0].Descriptor.ID, true
}

// -- Combining --

func (c Calculator) getCombineImpact(
	targetRect geometry.Rect,
	draggable schemas.DraggableDimension,
	previous schemas.DragImpact,
	destination schemas.DroppableDimension,
	insideDestination []schemas.DraggableDimension,
	afterCritical schemas.AfterCritical,
) (schemas.DragImpact, bool) {
	if !destination.IsCombineEnabled {
		return schemas.DragImpact{}, false
	}

	axis := destination.Axis
	displacedBy := dimension.DisplacedBy(axis, draggable.DisplaceBy)
	displacement := displacedBy.Value
	targetStart := axis.Start(targetRect)
	targetEnd := axis.End(targetRect)

	for _, child := range insideDestination {
		id := child.Descriptor.ID
		if id == draggable.Descriptor.ID {
			continue
		}
		childRect := child.Page.BorderBox
		threshold := axis.Size(childRect) / c.divisor()
		start, end := axis.Start(childRect), axis.End(childRect)
		isDisplaced := previous.Displaced.IsDisplaced(id)

		var hit bool
		switch {
		case afterCritical.DidStartAfterCritical(id) && isDisplaced:
			// Still in its original spot; moving forward onto it.
			hit = geometry.IsWithin(start+threshold, end-threshold)(targetEnd)
		case afterCritical.DidStartAfterCritical(id):
			// Shifted backwards; moving backwards onto it.
			hit = geometry.IsWithin(start-displacement+threshold, end-displacement-threshold)(targetStart)
		case isDisplaced:
			// Shifted forwards; moving forward onto it.
			hit = geometry.IsWithin(start+displacement+threshold, end+displacement-threshold)(targetEnd)
		default:
			// Resting; moving backwards onto it.
			hit = geometry.IsWithin(start+threshold, end-threshold)(targetStart)
		}
		if !hit {
			continue
		}

		return schemas.DragImpact{
			DisplacedBy: displacedBy,
			Displaced:   previous.Displaced,
			At: &schemas.ImpactLocation{
				Type: schemas.AtCombine,
				Combine: schemas.Combine{
					DraggableID: id,
					DroppableID: destination.Descriptor.ID,
				},
			},
		}, true
	}
	return schemas.DragImpact{}, false
}

// -- Reordering --

func getReorderImpact(
	targetRect geometry.Rect,
	draggable schemas.DraggableDimension,
	destination schemas.DroppableDimension,
	insideDestination []schemas.DraggableDimension,
	last schemas.DisplacementGroups,
	viewport schemas.Viewport,
	afterCritical schemas.AfterCritical,
) schemas.DragImpact {
	axis := destination.Axis
	displacedBy := dimension.DisplacedBy(axis, draggable.DisplaceBy)
	displacement := displacedBy.Value
	targetStart := axis.Start(targetRect)
	targetEnd := axis.End(targetRect)

	var closest *schemas.DraggableDimension
	for i := range insideDestination {
		child := insideDestination[i]
		id := child.Descriptor.ID
		if id == draggable.Descriptor.ID {
			continue
		}
		childCenter := axis.Main(child.Page.BorderBox.Center())
		isDisplaced := last.IsDisplaced(id)

		var found bool
		switch {
		case afterCritical.DidStartAfterCritical(id) && isDisplaced:
			found = targetEnd <= childCenter
		case afterCritical.DidStartAfterCritical(id):
			found = targetStart < childCenter-displacement
		case isDisplaced:
			found = targetEnd <= childCenter+displacement
		default:
			found = targetStart < childCenter
		}
		if found {
			closest = &child
			break
		}
	}

	index := atIndex(draggable, closest, dimension.IsHomeOf(draggable, destination))
	return calculateReorderImpact(reorderArgs{
		draggable:         draggable,
		insideDestination: insideDestination,
		destination:       destination,
		viewport:          viewport,
		displacedBy:       displacedBy,
		last:              last,
		index:             index,
	})
}

// atIndex turns the first sibling not yet passed into a destination index.
func atIndex(draggable schemas.DraggableDimension, closest *schemas.DraggableDimension, inHomeList bool) *int {
	if closest == nil {
		return nil
	}
	index := closest.Descriptor.Index
	if inHomeList && index > draggable.Descriptor.Index {
		index--
	}
	return &index
}

type reorderArgs struct {
	draggable          schemas.DraggableDimension
	insideDestination  []schemas.DraggableDimension
	destination        schemas.DroppableDimension
	viewport           schemas.Viewport
	displacedBy        schemas.DisplacedBy
	last               schemas.DisplacementGroups
	index              *int
	forceShouldAnimate *bool
}

// calculateReorderImpact displaces every sibling from index to the end of the
// destination. A nil index means the end of the list.
func calculateReorderImpact(args reorderArgs) schemas.DragImpact {
	if args.index == nil {
		return goAtEnd(args)
	}

	sliceFrom := -1
	for i, item := range args.insideDestination {
		if item.Descriptor.Index == *args.index {
			sliceFrom = i
			break
		}
	}
	if sliceFrom == -1 {
		return goAtEnd(args)
	}

	withoutDragging := dimension.Without(args.draggable.Descriptor.ID, args.insideDestination)
	var impacted []schemas.DraggableDimension
	if sliceFrom < len(withoutDragging) {
		impacted = withoutDragging[sliceFrom:]
	}

	last := args.last
	displaced := visibility.GetDisplacementGroups(visibility.GroupsArgs{
		AfterDragging:      impacted,
		Destination:        args.destination,
		DisplacedBy:        args.displacedBy,
		Viewport:           args.viewport.Frame,
		Last:               &last,
		ForceShouldAnimate: args.forceShouldAnimate,
	})

	return schemas.DragImpact{
		Displaced:   displaced,
		DisplacedBy: args.displacedBy,
		At: &schemas.ImpactLocation{
			Type: schemas.AtReorder,
			Destination: schemas.DraggableLocation{
				DroppableID: args.destination.Descriptor.ID,
				Index:       *args.index,
			},
		},
	}
}

func goAtEnd(args reorderArgs) schemas.DragImpact {
	return schemas.DragImpact{
		Displaced:   schemas.EmptyGroups(),
		DisplacedBy: args.displacedBy,
		At: &schemas.ImpactLocation{
			Type: schemas.AtReorder,
			Destination: schemas.DraggableLocation{
				DroppableID: args.destination.Descriptor.ID,
				Index:       indexOfLastItem(args.insideDestination, dimension.IsHomeOf(args.draggable, args.destination)),
			},
		},
	}
}

func indexOfLastItem(inside []schemas.DraggableDimension, inHomeList bool) int {
	if len(inside) == 0 {
		return 0
	}
	last := inside[len(inside)-1].Descriptor.Index
	if inHomeList {
		return last
	}
	return last + 1
}

// -- Lift --

// GetLiftEffect captures the state of the home list at lift: every sibling
// after the dragged item is treated as already displaced, without animation.
func GetLiftEffect(draggable schemas.DraggableDimension, home schemas.DroppableDimension, draggables schemas.DraggableDimensionMap, viewport schemas.Viewport) (schemas.DragImpact, schemas.AfterCritical, error) {
	displacedBy := dimension.DisplacedBy(home.Axis, draggable.DisplaceBy)
	insideHome := dimension.DraggablesInside(home.Descriptor.ID, draggables)

	rawIndex := -1
	for i, d := range insideHome {
		if d.Descriptor.ID == draggable.Descriptor.ID {
			rawIndex = i
			break
		}
	}
	if rawIndex == -1 {
		return schemas.DragImpact{}, schemas.AfterCritical{}, invariant.New("impact.GetLiftEffect",
			"draggable %q is not inside its home list %q", draggable.Descriptor.ID, home.Descriptor.ID)
	}

	afterDragging := insideHome[rawIndex+1:]
	effected := make(map[schemas.DraggableID]bool, len(afterDragging))
	for _, d := range afterDragging {
		effected[d.Descriptor.ID] = true
	}
	afterCritical := schemas.AfterCritical{
		InVirtualList: home.Descriptor.Mode == schemas.ModeVirtual,
		DisplacedBy:   displacedBy,
		Effected:      effected,
	}

	noAnimation := false
	impact := schemas.DragImpact{
		Displaced: visibility.GetDisplacementGroups(visibility.GroupsArgs{
			AfterDragging:      afterDragging,
			Destination:        home,
			DisplacedBy:        displacedBy,
			Viewport:           viewport.Frame,
			ForceShouldAnimate: &noAnimation,
		}),
		DisplacedBy: displacedBy,
		At: &schemas.ImpactLocation{
			Type: schemas.AtReorder,
			Destination: schemas.DraggableLocation{
				DroppableID: draggable.Descriptor.DroppableID,
				Index:       draggable.Descriptor.Index,
			},
		},
	}
	return impact, afterCritical, nil
}

// -- Lookups --

func getDraggable(op string, id schemas.DraggableID, draggables schemas.DraggableDimensionMap) (schemas.DraggableDimension, error) {
	d, ok := draggables[id]
	if !ok {
		return schemas.DraggableDimension{}, invariant.New(op, "draggable %q is missing from the dimension map", id)
	}
	return d, nil
}

func getDroppable(op string, id schemas.DroppableID, droppables schemas.DroppableDimensionMap) (schemas.DroppableDimension, error) {
	d, ok := droppables[id]
	if !ok {
		return schemas.DroppableDimension{}, invariant.New(op, "droppable %q is missing from the dimension map", id)
	}
	return d, nil
}
