package impact

import (
	"sort"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/dimension"
	"github.com/xkilldash9x/dropzone/internal/invariant"
	"github.com/xkilldash9x/dropzone/internal/visibility"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// KeyboardMove is a discrete movement request.
type KeyboardMove string

const (
	MoveUp    KeyboardMove = "MOVE_UP"
	MoveDown  KeyboardMove = "MOVE_DOWN"
	MoveLeft  KeyboardMove = "MOVE_LEFT"
	MoveRight KeyboardMove = "MOVE_RIGHT"
)

func (m KeyboardMove) isForward() bool {
	return m == MoveDown || m == MoveRight
}

func (m KeyboardMove) isOnMainAxis(axis geometry.Axis) bool {
	if axis.IsVertical() {
		return m == MoveUp || m == MoveDown
	}
	return m == MoveLeft || m == MoveRight
}

// MoveArgs are the inputs of a keyboard move.
type MoveArgs struct {
	Direction                   KeyboardMove
	DraggableID                 schemas.DraggableID
	Dimensions                  schemas.DimensionMap
	Viewport                    schemas.Viewport
	Previous                    schemas.DragImpact
	PreviousPageBorderBoxCenter geometry.Position
	PreviousClientSelection     geometry.Position
	AfterCritical               schemas.AfterCritical
}

// MoveResult is the outcome of a keyboard move.
type MoveResult struct {
	ClientSelection geometry.Position
	Impact          schemas.DragImpact
	// ScrollJumpRequest is set when the new location is not visible yet and a
	// scroll of this size has to happen before the item can be shown there.
	ScrollJumpRequest *geometry.Position
}

// MoveInDirection works out where a keyboard move takes the dragged item.
// A nil result means the move is not possible and nothing should change.
func (c Calculator) MoveInDirection(args MoveArgs) (*MoveResult, error) {
	const op = "impact.MoveInDirection"
	draggable, err := getDraggable(op, args.DraggableID, args.Dimensions.Draggables)
	if err != nil {
		return nil, err
	}

	overID, isActuallyOver := args.Previous.DraggingOver()
	if !isActuallyOver {
		overID = draggable.Descriptor.DroppableID
	}
	isOver, err := getDroppable(op, overID, args.Dimensions.Droppables)
	if err != nil {
		return nil, err
	}

	if args.Direction.isOnMainAxis(isOver.Axis) {
		if !isActuallyOver {
			return nil, nil
		}
		return c.moveToNextPlace(args, draggable, isOver)
	}
	return moveCrossAxis(args, draggable, isOver)
}

// -- Main axis --

func (c Calculator) moveToNextPlace(args MoveArgs, draggable schemas.DraggableDimension, destination schemas.DroppableDimension) (*MoveResult, error) {
	if !destination.IsEnabled {
		return nil, nil
	}
	isMovingForward := args.Direction.isForward()
	draggables := args.Dimensions.Draggables
	insideDestination := dimension.DraggablesInside(destination.Descriptor.ID, draggables)

	impact, err := moveToNextCombine(isMovingForward, draggable, destination, insideDestination, args.Previous)
	if err != nil {
		return nil, err
	}
	if impact == nil {
		impact, err = moveToNextIndex(isMovingForward, draggable, destination, insideDestination, draggables, args)
		if err != nil {
			return nil, err
		}
	}
	if impact == nil {
		return nil, nil
	}

	pageCenter, err := PageBorderBoxCenter(*impact, draggable, destination, draggables, args.AfterCritical)
	if err != nil {
		return nil, err
	}

	visible := isTotallyVisibleInNewLocation(newLocationArgs{
		draggable:              draggable,
		destination:            destination,
		newPageBorderBoxCenter: pageCenter,
		viewport:               args.Viewport,
		onlyOnMainAxis:         true,
	})
	if visible {
		return &MoveResult{
			ClientSelection: ClientFromPageBorderBoxCenter(pageCenter, draggable, args.Viewport),
			Impact:          *impact,
		}, nil
	}

	// Not visible yet: keep the item where it is and ask for a scroll that
	// brings the new spot into view.
	distance := pageCenter.Subtract(args.PreviousPageBorderBoxCenter)
	cautious := visibility.SpeculativelyIncrease(*impact, destination, args.Viewport, draggables, distance)
	return &MoveResult{
		ClientSelection:   args.PreviousClientSelection,
		Impact:            cautious,
		ScrollJumpRequest: &distance,
	}, nil
}

func combineWith(id schemas.DraggableID, destination schemas.DroppableDimension, previous schemas.DragImpact) *schemas.DragImpact {
	return &schemas.DragImpact{
		Displaced:   previous.Displaced,
		DisplacedBy: previous.DisplacedBy,
		At: &schemas.ImpactLocation{
			Type: schemas.AtCombine,
			Combine: schemas.Combine{
				DraggableID: id,
				DroppableID: destination.Descriptor.ID,
			},
		},
	}
}

// moveToNextCombine steps from a reorder position onto the neighbouring
// sibling, when the destination allows combining.
func moveToNextCombine(isMovingForward bool, draggable schemas.DraggableDimension, destination schemas.DroppableDimension, insideDestination []schemas.DraggableDimension, previous schemas.DragImpact) (*schemas.DragImpact, error) {
	if !destination.IsCombineEnabled {
		return nil, nil
	}
	if _, ok := previous.Destination(); !ok {
		return nil, nil
	}

	withoutDragging := dimension.Without(draggable.Descriptor.ID, insideDestination)
	var closestID schemas.DraggableID
	hasClosest := len(previous.Displaced.All) > 0
	if hasClosest {
		closestID = previous.Displaced.All[0]
	}

	if isMovingForward {
		if !hasClosest {
			return nil, nil
		}
		return combineWith(closestID, destination, previous), nil
	}

	if !hasClosest {
		if len(withoutDragging) == 0 {
			return nil, nil
		}
		return combineWith(withoutDragging[len(withoutDragging)-1].Descriptor.ID, destination, previous), nil
	}

	indexOfClosest := -1
	for i, d := range withoutDragging {
		if d.Descriptor.ID == closestID {
			indexOfClosest = i
			break
		}
	}
	if indexOfClosest == -1 {
		return nil, invariant.New("impact.moveToNextCombine", "displaced draggable %q is not inside %q", closestID, destination.Descriptor.ID)
	}
	proposed := indexOfClosest - 1
	if proposed < 0 {
		return nil, nil
	}
	return combineWith(withoutDragging[proposed].Descriptor.ID, destination, previous), nil
}

func moveToNextIndex(isMovingForward bool, draggable schemas.DraggableDimension, destination schemas.DroppableDimension, insideDestination []schemas.DraggableDimension, draggables schemas.DraggableDimensionMap, args MoveArgs) (*schemas.DragImpact, error) {
	const op = "impact.moveToNextIndex"
	wasAt := args.Previous.At
	if wasAt == nil {
		return nil, invariant.New(op, "cannot move in a direction without a previous impact location")
	}

	var proposed int
	if wasAt.Type == schemas.AtReorder {
		if len(insideDestination) == 0 {
			return nil, nil
		}
		proposed = wasAt.Destination.Index - 1
		if isMovingForward {
			proposed = wasAt.Destination.Index + 1
		}
		firstIndex := insideDestination[0].Descriptor.Index
		lastIndex := insideDestination[len(insideDestination)-1].Descriptor.Index
		upper := lastIndex + 1
		if dimension.IsHomeOf(draggable, destination) {
			upper = lastIndex
		}
		if proposed < firstIndex || proposed > upper {
			return nil, nil
		}
	} else {
		combineID := wasAt.Combine.DraggableID
		target, err := getDraggable(op, combineID, draggables)
		if err != nil {
			return nil, err
		}
		targetIndex := target.Descriptor.Index
		switch {
		case args.AfterCritical.DidStartAfterCritical(combineID) && isMovingForward:
			proposed = targetIndex
		case args.AfterCritical.DidStartAfterCritical(combineID):
			proposed = targetIndex - 1
		case isMovingForward:
			proposed = targetIndex + 1
		default:
			proposed = targetIndex
		}
		if proposed < 0 {
			return nil, nil
		}
	}

	impact := calculateReorderImpact(reorderArgs{
		draggable:         draggable,
		insideDestination: insideDestination,
		destination:       destination,
		viewport:          args.Viewport,
		displacedBy:       args.Previous.DisplacedBy,
		last:              args.Previous.Displaced,
		index:             &proposed,
	})
	return &impact, nil
}

// -- Cross axis --

func moveCrossAxis(args MoveArgs, draggable schemas.DraggableDimension, isOver schemas.DroppableDimension) (*MoveResult, error) {
	prevCenter := args.PreviousPageBorderBoxCenter
	draggables := args.Dimensions.Draggables

	destination, ok := getBestCrossAxisDroppable(args.Direction.isForward(), prevCenter, isOver, args.Dimensions.Droppables, args.Viewport)
	if !ok {
		return nil, nil
	}
	insideDestination := dimension.DraggablesInside(destination.Descriptor.ID, draggables)
	moveRelativeTo := getClosestDraggable(prevCenter, args.Viewport, destination, insideDestination, args.AfterCritical)

	impact, err := moveToNewDroppable(prevCenter, moveRelativeTo, draggable, draggables, destination, insideDestination, args.Viewport, args.AfterCritical)
	if err != nil || impact == nil {
		return nil, err
	}

	pageCenter, err := PageBorderBoxCenter(*impact, draggable, destination, draggables, args.AfterCritical)
	if err != nil {
		return nil, err
	}
	return &MoveResult{
		ClientSelection: ClientFromPageBorderBoxCenter(pageCenter, draggable, args.Viewport),
		Impact:          *impact,
	}, nil
}

// getBestCrossAxisDroppable finds the nearest list beside source in the
// direction of travel.
func getBestCrossAxisDroppable(isMovingForward bool, pageBorderBoxCenter geometry.Position, source schemas.DroppableDimension, droppables schemas.DroppableDimensionMap, viewport schemas.Viewport) (schemas.DroppableDimension, bool) {
	if source.Subject.Active == nil {
		return schemas.DroppableDimension{}, false
	}
	active := *source.Subject.Active
	axis := source.Axis
	isBetweenSourceClipped := geometry.IsWithin(axis.Start(active), axis.End(active))

	var candidates []schemas.DroppableDimension
	for _, d := range sortedDroppables(droppables) {
		if d.Descriptor.ID == source.Descriptor.ID || !d.IsEnabled || d.Subject.Active == nil {
			continue
		}
		if d.Descriptor.Type != source.Descriptor.Type {
			continue
		}
		target := *d.Subject.Active
		if !geometry.IsPartiallyVisibleThroughFrame(viewport.Frame, target) {
			continue
		}
		if isMovingForward {
			if !(axis.CrossEnd(active) < axis.CrossEnd(target)) {
				continue
			}
		} else if !(axis.CrossStart(target) < axis.CrossStart(active)) {
			continue
		}
		isBetweenDestinationClipped := geometry.IsWithin(axis.Start(target), axis.End(target))
		if isBetweenSourceClipped(axis.Start(target)) || isBetweenSourceClipped(axis.End(target)) ||
			isBetweenDestinationClipped(axis.Start(active)) || isBetweenDestinationClipped(axis.End(active)) {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return schemas.DroppableDimension{}, false
	}

	crossStart := func(d schemas.DroppableDimension) float64 { return axis.CrossStart(*d.Subject.Active) }
	mainStart := func(d schemas.DroppableDimension) float64 { return axis.Start(*d.Subject.Active) }

	sort.SliceStable(candidates, func(i, j int) bool {
		if isMovingForward {
			return crossStart(candidates[i]) < crossStart(candidates[j])
		}
		return crossStart(candidates[i]) > crossStart(candidates[j])
	})
	first := crossStart(candidates[0])
	var closestColumn []schemas.DroppableDimension
	for _, d := range candidates {
		if crossStart(d) == first {
			closestColumn = append(closestColumn, d)
		}
	}
	if len(closestColumn) == 1 {
		return closestColumn[0], true
	}

	var contains []schemas.DroppableDimension
	for _, d := range closestColumn {
		if geometry.IsWithin(axis.Start(*d.Subject.Active), axis.End(*d.Subject.Active))(axis.Main(pageBorderBoxCenter)) {
			contains = append(contains, d)
		}
	}
	if len(contains) == 1 {
		return contains[0], true
	}
	if len(contains) > 1 {
		sort.SliceStable(contains, func(i, j int) bool { return mainStart(contains[i]) < mainStart(contains[j]) })
		return contains[0], true
	}

	sort.SliceStable(closestColumn, func(i, j int) bool {
		a := geometry.Closest(pageBorderBoxCenter, geometry.Corners(*closestColumn[i].Subject.Active))
		b := geometry.Closest(pageBorderBoxCenter, geometry.Corners(*closestColumn[j].Subject.Active))
		if a != b {
			return a < b
		}
		return mainStart(closestColumn[i]) < mainStart(closestColumn[j])
	})
	return closestColumn[0], true
}

// currentPageBox is where a draggable visually sits once the lift effect has
// pulled up the siblings that started after the dragged item.
func currentPageBox(d schemas.DraggableDimension, afterCritical schemas.AfterCritical) geometry.BoxModel {
	if afterCritical.DidStartAfterCritical(d.Descriptor.ID) {
		return d.Page.Offset(afterCritical.DisplacedBy.Point.Negate())
	}
	return d.Page
}

// getClosestDraggable returns the totally visible sibling nearest to center,
// or nil when there is none.
func getClosestDraggable(pageBorderBoxCenter geometry.Position, viewport schemas.Viewport, destination schemas.DroppableDimension, insideDestination []schemas.DraggableDimension, afterCritical schemas.AfterCritical) *schemas.DraggableDimension {
	type scored struct {
		draggable schemas.DraggableDimension
		distance  float64
	}
	var candidates []scored
	for _, d := range insideDestination {
		current := currentPageBox(d, afterCritical)
		visible := visibility.IsTotallyVisible(visibility.Args{
			Target:                    current.BorderBox,
			Destination:               destination,
			Viewport:                  viewport.Frame,
			WithDroppableDisplacement: true,
		})
		if !visible {
			continue
		}
		center := dimension.WithDroppableDisplacement(destination, current.BorderBox.Center())
		candidates = append(candidates, scored{draggable: d, distance: geometry.Distance(pageBorderBoxCenter, center)})
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].draggable.Descriptor.Index < candidates[j].draggable.Descriptor.Index
	})
	return &candidates[0].draggable
}

func moveToNewDroppable(
	previousPageBorderBoxCenter geometry.Position,
	moveRelativeTo *schemas.DraggableDimension,
	draggable schemas.DraggableDimension,
	draggables schemas.DraggableDimensionMap,
	destination schemas.DroppableDimension,
	insideDestination []schemas.DraggableDimension,
	viewport schemas.Viewport,
	afterCritical schemas.AfterCritical,
) (*schemas.DragImpact, error) {
	if moveRelativeTo == nil {
		// Items exist but none are visible enough to move next to.
		if len(insideDestination) > 0 {
			return nil, nil
		}

		proposed := schemas.DragImpact{
			Displaced:   schemas.EmptyGroups(),
			DisplacedBy: dimension.DisplacedBy(destination.Axis, draggable.DisplaceBy),
			At: &schemas.ImpactLocation{
				Type:        schemas.AtReorder,
				Destination: schemas.DraggableLocation{DroppableID: destination.Descriptor.ID, Index: 0},
			},
		}
		pageCenter, err := PageBorderBoxCenter(proposed, draggable, destination, draggables, afterCritical)
		if err != nil {
			return nil, err
		}

		withPlaceholder := destination
		if !dimension.IsHomeOf(draggable, destination) && destination.Subject.WithPlaceholder == nil {
			withPlaceholder, err = dimension.AddPlaceholder(destination, draggable, draggables)
			if err != nil {
				return nil, err
			}
		}
		visible := isTotallyVisibleInNewLocation(newLocationArgs{
			draggable:              draggable,
			destination:            withPlaceholder,
			newPageBorderBoxCenter: pageCenter,
			viewport:               viewport,
			onlyOnMainAxis:         true,
		})
		if !visible {
			return nil, nil
		}
		return &proposed, nil
	}

	axis := destination.Axis
	targetCenter := currentPageBox(*moveRelativeTo, afterCritical).BorderBox.Center()
	isGoingBeforeTarget := axis.Main(previousPageBorderBoxCenter) <= axis.Main(targetCenter)

	relativeIndex := moveRelativeTo.Descriptor.Index
	proposedIndex := relativeIndex + 1
	if moveRelativeTo.Descriptor.ID == draggable.Descriptor.ID || isGoingBeforeTarget {
		proposedIndex = relativeIndex
	}
	if dimension.IsHomeOf(draggable, destination) && relativeIndex > draggable.Descriptor.Index {
		// Indexes in the home list are counted with the dragged item removed.
		proposedIndex--
	}

	impact := calculateReorderImpact(reorderArgs{
		draggable:         draggable,
		insideDestination: insideDestination,
		destination:       destination,
		viewport:          viewport,
		displacedBy:       dimension.DisplacedBy(axis, draggable.DisplaceBy),
		last:              schemas.EmptyGroups(),
		index:             &proposedIndex,
	})
	return &impact, nil
}
