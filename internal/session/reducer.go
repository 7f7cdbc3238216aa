package session

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/config"
	"github.com/xkilldash9x/dropzone/internal/dimension"
	"github.com/xkilldash9x/dropzone/internal/impact"
	"github.com/xkilldash9x/dropzone/internal/invariant"
	"github.com/xkilldash9x/dropzone/internal/visibility"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// Reducer applies intents to states. It is stateless apart from its tunables
// and safe to share.
type Reducer struct {
	calc                impact.Calculator
	dropCfg             config.DropConfig
	windowScrollAllowed bool
}

// NewReducer builds a reducer from the engine and drop configuration.
func NewReducer(engine config.EngineConfig, drop config.DropConfig) *Reducer {
	return &Reducer{
		calc:                impact.Calculator{CombineThresholdDivisor: engine.CombineThresholdDivisor},
		dropCfg:             drop,
		windowScrollAllowed: engine.WindowScrollAllowed,
	}
}

// Calculator exposes the impact calculator the reducer uses.
func (r *Reducer) Calculator() impact.Calculator {
	return r.calc
}

// Reduce returns the state that results from applying in to s. An intent that
// is not legal in the current phase yields an invariant violation and the
// input state.
func (r *Reducer) Reduce(s State, in Intent) (State, error) {
	switch in := in.(type) {
	case Flush:
		return State{Phase: PhaseIdle, ShouldFlush: true}, nil
	case Lift:
		return r.lift(s, in)
	case CollectionStarting:
		return r.collectionStarting(s)
	case PublishWhileDragging:
		return r.publishWhileDragging(s, in)
	case Move:
		return r.move(s, in)
	case MoveInDirection:
		return r.moveInDirection(s, in)
	case MoveByWindowScroll:
		return r.moveByWindowScroll(s, in)
	case UpdateViewportMaxScroll:
		return r.updateViewportMaxScroll(s, in)
	case UpdateDroppableScroll:
		return r.updateDroppableScroll(s, in)
	case UpdateDroppableIsEnabled:
		return r.updateDroppableIsEnabled(s, in)
	case UpdateDroppableIsCombineEnabled:
		return r.updateDroppableIsCombineEnabled(s, in)
	case Drop:
		return r.dropIntent(s, in)
	case DropAnimationFinished:
		if s.Phase != PhaseDropAnimating {
			return s, illegal(s, in)
		}
		completed := s.Dropping.Completed
		return State{Phase: PhaseIdle, Completed: &completed}, nil
	default:
		return s, invariant.New("session.Reduce", "unknown intent %T", in)
	}
}

func illegal(s State, in Intent) error {
	return invariant.New("session.Reduce", "%s is not allowed in phase %s", Name(in), s.Phase)
}

// -- Lift --

func (r *Reducer) lift(s State, in Lift) (State, error) {
	const op = "session.Lift"
	if s.Phase != PhaseIdle {
		return s, illegal(s, in)
	}

	dims := in.Dimensions
	draggable, ok := dims.Draggables[in.Critical.Draggable.ID]
	if !ok {
		return s, invariant.New(op, "dragged draggable %q was not collected", in.Critical.Draggable.ID)
	}
	home, ok := dims.Droppables[in.Critical.Droppable.ID]
	if !ok {
		return s, invariant.New(op, "home droppable %q was not collected", in.Critical.Droppable.ID)
	}

	viewport := in.Viewport
	client := schemas.Positions{
		Selection:       in.ClientSelection,
		BorderBoxCenter: draggable.Client.BorderBox.Center(),
		Offset:          geometry.Origin,
	}
	initial := schemas.DragPositions{
		Client: client,
		Page: schemas.Positions{
			Selection:       client.Selection.Add(viewport.Scroll.Initial),
			BorderBoxCenter: client.BorderBoxCenter.Add(viewport.Scroll.Initial),
			Offset:          client.Offset.Add(viewport.Scroll.Diff.Value),
		},
	}

	isWindowScrollAllowed := r.windowScrollAllowed
	for _, d := range dims.Droppables {
		if d.IsFixedOnPage {
			isWindowScrollAllowed = false
			break
		}
	}

	liftImpact, afterCritical, err := impact.GetLiftEffect(draggable, home, dims.Draggables, viewport)
	if err != nil {
		return s, err
	}

	return State{
		Phase: PhaseDragging,
		Drag: &Drag{
			Critical:              in.Critical,
			MovementMode:          in.MovementMode,
			Dimensions:            dims,
			Initial:               initial,
			Current:               initial,
			Impact:                liftImpact,
			OnLiftImpact:          liftImpact,
			Viewport:              viewport,
			AfterCritical:         afterCritical,
			IsWindowScrollAllowed: isWindowScrollAllowed,
		},
	}, nil
}

// -- Shared updates --

type updateArgs struct {
	clientSelection   *geometry.Position
	dimensions        *schemas.DimensionMap
	viewport          *schemas.Viewport
	impact            *schemas.DragImpact
	scrollJumpRequest *geometry.Position
}

// update recomputes positions and, outside of a collection, the impact.
func (r *Reducer) update(s State, args updateArgs) (State, error) {
	d := *s.Drag

	viewport := d.Viewport
	if args.viewport != nil {
		viewport = *args.viewport
	}
	dims := d.Dimensions
	if args.dimensions != nil {
		dims = *args.dimensions
	}
	clientSelection := d.Current.Client.Selection
	if args.clientSelection != nil {
		clientSelection = *args.clientSelection
	}

	offset := clientSelection.Subtract(d.Initial.Client.Selection)
	client := schemas.Positions{
		Selection:       clientSelection,
		BorderBoxCenter: d.Initial.Client.BorderBoxCenter.Add(offset),
		Offset:          offset,
	}
	current := schemas.DragPositions{
		Client: client,
		Page: schemas.Positions{
			Selection:       client.Selection.Add(viewport.Scroll.Current),
			BorderBoxCenter: client.BorderBoxCenter.Add(viewport.Scroll.Current),
			Offset:          client.Offset.Add(viewport.Scroll.Diff.Value),
		},
	}

	if s.Phase == PhaseCollecting {
		d.Current = current
		d.Dimensions = dims
		d.Viewport = viewport
		return s.withDrag(s.Phase, d), nil
	}

	draggable, ok := dims.Draggables[d.Critical.Draggable.ID]
	if !ok {
		return s, invariant.New("session.update", "dragged draggable %q is missing", d.Critical.Draggable.ID)
	}

	var newImpact schemas.DragImpact
	if args.impact != nil {
		newImpact = *args.impact
	} else {
		var err error
		newImpact, err = r.calc.GetDragImpact(impact.DragArgs{
			PageOffset:    current.Page.Offset,
			DraggableID:   d.Critical.Draggable.ID,
			Dimensions:    dims,
			Previous:      d.Impact,
			Viewport:      viewport,
			AfterCritical: d.AfterCritical,
		})
		if err != nil {
			return s, err
		}
	}

	droppables, err := impact.RecomputePlaceholders(draggable, dims.Draggables, dims.Droppables, d.Impact, newImpact)
	if err != nil {
		return s, err
	}

	d.Current = current
	d.Dimensions = schemas.DimensionMap{Draggables: dims.Draggables, Droppables: droppables}
	d.Impact = newImpact
	d.Viewport = viewport
	d.ScrollJumpRequest = args.scrollJumpRequest
	d.ForceShouldAnimate = nil
	if args.scrollJumpRequest != nil {
		noAnimation := false
		d.ForceShouldAnimate = &noAnimation
	}
	return s.withDrag(s.Phase, d), nil
}

// refreshSnap keeps a keyboard drag glued to its slot after something under
// it changed, such as a scroll.
func (r *Reducer) refreshSnap(s State, dims *schemas.DimensionMap, viewport *schemas.Viewport) (State, error) {
	const op = "session.refreshSnap"
	d := s.Drag
	if dims == nil {
		dims = &d.Dimensions
	}
	if viewport == nil {
		viewport = &d.Viewport
	}

	draggable, ok := dims.Draggables[d.Critical.Draggable.ID]
	if !ok {
		return s, invariant.New(op, "dragged draggable %q is missing", d.Critical.Draggable.ID)
	}
	overID, ok := d.Impact.DraggingOver()
	if !ok {
		return s, invariant.New(op, "a snapping drag must always be over a droppable")
	}
	destination, ok := dims.Droppables[overID]
	if !ok {
		return s, invariant.New(op, "droppable %q is missing", overID)
	}

	newImpact := visibility.Recompute(d.Impact, destination, *viewport, dims.Draggables, nil)
	clientCenter, err := impact.ClientBorderBoxCenter(newImpact, draggable, destination, dims.Draggables, *viewport, d.AfterCritical)
	if err != nil {
		return s, err
	}
	return r.update(s, updateArgs{
		clientSelection: &clientCenter,
		dimensions:      dims,
		viewport:        viewport,
		impact:          &newImpact,
	})
}

func removeScrollJumpRequest(s State) State {
	if s.Drag == nil || s.Drag.ScrollJumpRequest == nil {
		return s
	}
	d := *s.Drag
	d.ScrollJumpRequest = nil
	return s.withDrag(s.Phase, d)
}

// postDroppableChange re-runs the drag after one droppable changed.
func (r *Reducer) postDroppableChange(s State, updated schemas.DroppableDimension, isEnabledChanging bool) (State, error) {
	droppables := make(schemas.DroppableDimensionMap, len(s.Drag.Dimensions.Droppables))
	for id, d := range s.Drag.Dimensions.Droppables {
		droppables[id] = d
	}
	droppables[updated.Descriptor.ID] = updated
	dims := schemas.DimensionMap{Draggables: s.Drag.Dimensions.Draggables, Droppables: droppables}

	if s.Drag.MovementMode != schemas.SnapMode || isEnabledChanging {
		return r.update(s, updateArgs{dimensions: &dims})
	}
	return r.refreshSnap(s, &dims, nil)
}

// -- Collection --

func (r *Reducer) collectionStarting(s State) (State, error) {
	if s.Phase == PhaseCollecting {
		return s, nil
	}
	if s.Phase != PhaseDragging {
		return s, illegal(s, CollectionStarting{})
	}
	return s.withDrag(PhaseCollecting, *s.Drag), nil
}

func (r *Reducer) publishWhileDragging(s State, in PublishWhileDragging) (State, error) {
	const op = "session.PublishWhileDragging"
	if s.Phase != PhaseCollecting && s.Phase != PhaseDropPending {
		return s, illegal(s, in)
	}
	d := *s.Drag
	published := in.Published

	droppables := make(schemas.DroppableDimensionMap, len(d.Dimensions.Droppables))
	for id, existing := range d.Dimensions.Droppables {
		droppables[id] = existing
	}
	for _, m := range published.Modified {
		existing, ok := droppables[m.DroppableID]
		if !ok {
			return s, invariant.New(op, "modified droppable %q is unknown", m.DroppableID)
		}
		scrolled, err := dimension.ScrollDroppable(existing, m.Scroll)
		if err != nil {
			return s, invariant.Wrap(op, err, "cannot apply scroll to %q", m.DroppableID)
		}
		droppables[m.DroppableID] = scrolled
	}

	draggables := make(schemas.DraggableDimensionMap, len(d.Dimensions.Draggables)+len(published.Additions))
	for id, existing := range d.Dimensions.Draggables {
		draggables[id] = existing
	}
	windowScrollChange := d.Viewport.Scroll.Diff.Value
	for _, added := range published.Additions {
		change := windowScrollChange
		if parent, ok := droppables[added.Descriptor.DroppableID]; ok && parent.Frame != nil {
			change = change.Add(parent.Frame.Scroll.Diff.Value)
		}
		draggables[added.Descriptor.ID] = dimension.OffsetDraggable(added, change, d.Viewport.Scroll.Initial)
	}
	for _, id := range published.Removals {
		if id == d.Critical.Draggable.ID {
			return s, invariant.New(op, "the dragged draggable %q cannot be removed mid-drag", id)
		}
		delete(draggables, id)
	}
	dims := schemas.DimensionMap{Draggables: draggables, Droppables: droppables}

	draggable, ok := draggables[d.Critical.Draggable.ID]
	if !ok {
		return s, invariant.New(op, "dragged draggable %q is missing", d.Critical.Draggable.ID)
	}
	home, ok := droppables[d.Critical.Droppable.ID]
	if !ok {
		return s, invariant.New(op, "home droppable %q is missing", d.Critical.Droppable.ID)
	}
	// Only the lift impact is refreshed; the lift baseline stays as captured.
	onLiftImpact, _, err := impact.GetLiftEffect(draggable, home, draggables, d.Viewport)
	if err != nil {
		return s, err
	}

	previous := onLiftImpact
	if wasOverID, ok := d.Impact.DraggingOver(); ok {
		if wasOver, ok := droppables[wasOverID]; ok && wasOver.IsCombineEnabled {
			previous = d.Impact
		}
	}

	newImpact, err := r.calc.GetDragImpact(impact.DragArgs{
		PageOffset:    d.Current.Page.Offset,
		DraggableID:   d.Critical.Draggable.ID,
		Dimensions:    dims,
		Previous:      previous,
		Viewport:      d.Viewport,
		AfterCritical: d.AfterCritical,
	})
	if err != nil {
		return s, err
	}

	noAnimation := false
	d.Dimensions = dims
	d.Impact = newImpact
	d.OnLiftImpact = onLiftImpact
	d.ForceShouldAnimate = &noAnimation

	if s.Phase == PhaseCollecting {
		return State{Phase: PhaseDragging, Drag: &d}, nil
	}
	return State{
		Phase:   PhaseDropPending,
		Drag:    &d,
		Pending: &DropPending{Reason: s.Pending.Reason, IsWaiting: false},
	}, nil
}

// -- Movement --

func (r *Reducer) move(s State, in Move) (State, error) {
	if !s.isMovementAllowed() {
		return s, illegal(s, in)
	}
	if in.Client.IsEqual(s.Drag.Current.Client.Selection) {
		return s, nil
	}
	args := updateArgs{clientSelection: &in.Client}
	if s.Drag.MovementMode == schemas.SnapMode {
		args.impact = &s.Drag.Impact
	}
	return r.update(s, args)
}

func (r *Reducer) moveInDirection(s State, in MoveInDirection) (State, error) {
	if s.Phase == PhaseCollecting || s.Phase == PhaseDropPending {
		return s, nil
	}
	if s.Phase != PhaseDragging {
		return s, illegal(s, in)
	}
	d := s.Drag
	result, err := r.calc.MoveInDirection(impact.MoveArgs{
		Direction:                   in.Direction,
		DraggableID:                 d.Critical.Draggable.ID,
		Dimensions:                  d.Dimensions,
		Viewport:                    d.Viewport,
		Previous:                    d.Impact,
		PreviousPageBorderBoxCenter: d.Current.Page.BorderBoxCenter,
		PreviousClientSelection:     d.Current.Client.Selection,
		AfterCritical:               d.AfterCritical,
	})
	if err != nil {
		return s, err
	}
	if result == nil {
		return s, nil
	}
	return r.update(s, updateArgs{
		clientSelection:   &result.ClientSelection,
		impact:            &result.Impact,
		scrollJumpRequest: result.ScrollJumpRequest,
	})
}

func (r *Reducer) moveByWindowScroll(s State, in MoveByWindowScroll) (State, error) {
	if s.Phase == PhaseDropPending || s.Phase == PhaseDropAnimating {
		return s, nil
	}
	if !s.isMovementAllowed() {
		return s, illegal(s, in)
	}
	if !s.Drag.IsWindowScrollAllowed {
		return s, invariant.New("session.MoveByWindowScroll", "window scrolling is not allowed for this drag")
	}
	if in.NewScroll.IsEqual(s.Drag.Viewport.Scroll.Current) {
		return removeScrollJumpRequest(s), nil
	}
	viewport := dimension.ScrollViewport(s.Drag.Viewport, in.NewScroll)
	if s.Drag.MovementMode == schemas.SnapMode {
		return r.refreshSnap(s, nil, &viewport)
	}
	return r.update(s, updateArgs{viewport: &viewport})
}

func (r *Reducer) updateViewportMaxScroll(s State, in UpdateViewportMaxScroll) (State, error) {
	if !s.isMovementAllowed() {
		return s, nil
	}
	if in.MaxScroll.IsEqual(s.Drag.Viewport.Scroll.Max) {
		return s, nil
	}
	d := *s.Drag
	d.Viewport.Scroll.Max = in.MaxScroll
	return s.withDrag(s.Phase, d), nil
}

// -- Droppable changes --

func (r *Reducer) updateDroppableScroll(s State, in UpdateDroppableScroll) (State, error) {
	if s.Phase == PhaseCollecting || s.Phase == PhaseDropPending {
		return removeScrollJumpRequest(s), nil
	}
	if s.Phase != PhaseDragging {
		return s, illegal(s, in)
	}
	target, ok := s.Drag.Dimensions.Droppables[in.ID]
	if !ok {
		return s, nil
	}
	scrolled, err := dimension.ScrollDroppable(target, in.NewScroll)
	if err != nil {
		return s, err
	}
	return r.postDroppableChange(s, scrolled, false)
}

func (r *Reducer) updateDroppableIsEnabled(s State, in UpdateDroppableIsEnabled) (State, error) {
	if s.Phase == PhaseDropPending {
		return s, nil
	}
	if !s.isMovementAllowed() {
		return s, illegal(s, in)
	}
	target, ok := s.Drag.Dimensions.Droppables[in.ID]
	if !ok {
		return s, invariant.New("session.UpdateDroppableIsEnabled", "cannot find droppable %q to toggle", in.ID)
	}
	if target.IsEnabled == in.IsEnabled {
		return s, nil
	}
	target.IsEnabled = in.IsEnabled
	return r.postDroppableChange(s, target, true)
}

func (r *Reducer) updateDroppableIsCombineEnabled(s State, in UpdateDroppableIsCombineEnabled) (State, error) {
	if s.Phase == PhaseDropPending {
		return s, nil
	}
	if !s.isMovementAllowed() {
		return s, illegal(s, in)
	}
	target, ok := s.Drag.Dimensions.Droppables[in.ID]
	if !ok {
		return s, invariant.New("session.UpdateDroppableIsCombineEnabled", "cannot find droppable %q to toggle", in.ID)
	}
	if target.IsCombineEnabled == in.IsCombineEnabled {
		return s, nil
	}
	target.IsCombineEnabled = in.IsCombineEnabled
	return r.postDroppableChange(s, target, false)
}

// -- Lookups --

func lookupDraggable(op string, id schemas.DraggableID, draggables schemas.DraggableDimensionMap) (schemas.DraggableDimension, error) {
	d, ok := draggables[id]
	if !ok {
		return schemas.DraggableDimension{}, invariant.New(op, "draggable %q is missing", id)
	}
	return d, nil
}

func lookupDroppable(op string, id schemas.DroppableID, droppables schemas.DroppableDimensionMap) (schemas.DroppableDimension, error) {
	d, ok := droppables[id]
	if !ok {
		return schemas.DroppableDimension{}, invariant.New(op, "droppable %q is missing", id)
	}
	return d, nil
}

func clientBorderBoxCenter(in schemas.DragImpact, draggable schemas.DraggableDimension, droppable schemas.DroppableDimension, d *Drag) (geometry.Position, error) {
	return impact.ClientBorderBoxCenter(in, draggable, droppable, d.Dimensions.Draggables, d.Viewport, d.AfterCritical)
}
