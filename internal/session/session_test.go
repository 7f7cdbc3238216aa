package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/config"
	"github.com/xkilldash9x/dropzone/internal/dimension"
	"github.com/xkilldash9x/dropzone/internal/dimension/dimensiontest"
	"github.com/xkilldash9x/dropzone/internal/impact"
	"github.com/xkilldash9x/dropzone/internal/invariant"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// -- Fixtures --

func newReducer() *Reducer {
	cfg := config.Default()
	return NewReducer(cfg.Engine, cfg.Drop)
}

// column is one list of three 50px tall items.
func column(opts ...dimensiontest.DroppableOption) schemas.DimensionMap {
	dimension.ResetCache()
	return dimensiontest.Map(
		[]schemas.DroppableDimension{dimensiontest.Droppable("home", geometry.RectFromXYWH(0, 0, 100, 500), opts...)},
		dimensiontest.Column("home", "a", 3, 0, 0, 100, 50),
	)
}

func liftIntent(dims schemas.DimensionMap, id string, mode schemas.MovementMode, viewport schemas.Viewport) Lift {
	draggable := dims.Draggables[schemas.DraggableID(id)]
	home := dims.Droppables[draggable.Descriptor.DroppableID]
	return Lift{
		Critical:        schemas.Critical{Draggable: draggable.Descriptor, Droppable: home.Descriptor},
		ClientSelection: draggable.Client.BorderBox.Center(),
		MovementMode:    mode,
		Dimensions:      dims,
		Viewport:        viewport,
	}
}

// reduceAll applies intents in order and fails the test on the first error.
func reduceAll(t *testing.T, r *Reducer, s State, intents ...Intent) State {
	t.Helper()
	for _, in := range intents {
		next, err := r.Reduce(s, in)
		require.NoError(t, err, "intent %s in phase %s", Name(in), s.Phase)
		s = next
	}
	return s
}

func lifted(t *testing.T, r *Reducer, mode schemas.MovementMode) State {
	t.Helper()
	viewport := dimensiontest.Viewport(1000, 1000)
	return reduceAll(t, r, Idle(), liftIntent(column(), "a0", mode, viewport))
}

// -- Drop duration --

func TestDropDuration(t *testing.T) {
	cfg := config.Default().Drop

	tests := []struct {
		name     string
		distance float64
		reason   schemas.DropReason
		expected float64
	}{
		{"no distance", 0, schemas.ReasonDrop, 0.33},
		{"half way", 750, schemas.ReasonDrop, 0.44},
		{"at the cap", 1500, schemas.ReasonDrop, 0.55},
		{"past the cap", 4000, schemas.ReasonDrop, 0.55},
		{"cancel at the cap", 1500, schemas.ReasonCancel, 0.33},
		{"cancel with no distance", 0, schemas.ReasonCancel, 0.198},
		{"between samples", 50, schemas.ReasonDrop, 0.33 + 0.22/30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DropDuration(cfg, tt.distance, tt.reason), 1e-9)
		})
	}
}

func TestDropDuration_BoundedAndMonotonic(t *testing.T) {
	cfg := config.Default().Drop
	previous := 0.0
	for distance := 0.0; distance <= 2000; distance += 25 {
		d := DropDuration(cfg, distance, schemas.ReasonDrop)
		assert.GreaterOrEqual(t, d, cfg.MinDuration)
		assert.LessOrEqual(t, d, cfg.MaxDuration)
		assert.GreaterOrEqual(t, d, previous, "duration shrank at %v px", distance)
		previous = d
	}
}

func TestDropDuration_CancelIsScaledDrop(t *testing.T) {
	cfg := config.Default().Drop
	for distance := 0.0; distance <= 2000; distance += 10 {
		drop := DropDuration(cfg, distance, schemas.ReasonDrop)
		cancel := DropDuration(cfg, distance, schemas.ReasonCancel)
		assert.InDelta(t, drop*cfg.CancelMultiplier, cancel, 1e-12, "at %v px", distance)
	}
	assert.Less(t, DropDuration(cfg, 50, schemas.ReasonDrop), DropDuration(cfg, 100, schemas.ReasonDrop))
}

// -- Lift --

func TestLift(t *testing.T) {
	r := newReducer()
	s := lifted(t, r, schemas.FluidMode)

	assert.Equal(t, PhaseDragging, s.Phase)
	require.NotNil(t, s.Drag)
	assert.Equal(t, geometry.Position{X: 50, Y: 25}, s.Drag.Initial.Client.Selection)
	assert.Equal(t, s.Drag.Initial, s.Drag.Current)
	assert.True(t, s.Drag.IsWindowScrollAllowed)

	dest, ok := s.Drag.Impact.Destination()
	require.True(t, ok)
	assert.Equal(t, schemas.DraggableLocation{DroppableID: "home", Index: 0}, dest)
	assert.Equal(t, []schemas.DraggableID{"a1", "a2"}, s.Drag.Impact.Displaced.All)
	assert.Equal(t, s.Drag.Impact, s.Drag.OnLiftImpact)
}

func TestLift_FixedDroppableDisablesWindowScroll(t *testing.T) {
	r := newReducer()
	dims := column(dimensiontest.FixedOnPage())
	s := reduceAll(t, r, Idle(), liftIntent(dims, "a0", schemas.FluidMode, dimensiontest.Viewport(1000, 1000)))

	assert.False(t, s.Drag.IsWindowScrollAllowed)
}

func TestLift_MissingDraggable(t *testing.T) {
	r := newReducer()
	in := liftIntent(column(), "a0", schemas.FluidMode, dimensiontest.Viewport(1000, 1000))
	in.Critical.Draggable.ID = "ghost"

	_, err := r.Reduce(Idle(), in)
	assert.True(t, invariant.Is(err))
}

// -- Phase rules --

func TestReduce_IllegalIntents(t *testing.T) {
	r := newReducer()
	dragging := lifted(t, r, schemas.FluidMode)
	viewport := dimensiontest.Viewport(1000, 1000)
	pending := reduceAll(t, r, lifted(t, r, schemas.SnapMode), CollectionStarting{}, Drop{Reason: schemas.ReasonDrop})
	require.Equal(t, PhaseDropPending, pending.Phase)

	tests := []struct {
		name   string
		state  State
		intent Intent
	}{
		{"move while idle", Idle(), Move{Client: geometry.Position{X: 1, Y: 1}}},
		{"drop while idle", Idle(), Drop{Reason: schemas.ReasonDrop}},
		{"collection while idle", Idle(), CollectionStarting{}},
		{"publish while dragging", dragging, PublishWhileDragging{}},
		{"animation finished while dragging", dragging, DropAnimationFinished{}},
		{"lift while dragging", dragging, liftIntent(column(), "a1", schemas.FluidMode, viewport)},
		{"move while drop pending", pending, Move{Client: geometry.Position{X: 1, Y: 1}}},
		{"keyboard move while drop pending", pending, MoveInDirection{Direction: impact.MoveDown}},
		{"keyboard move while idle", Idle(), MoveInDirection{Direction: impact.MoveUp}},
		{"toggle unknown droppable", dragging, UpdateDroppableIsEnabled{ID: "nope", IsEnabled: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := r.Reduce(tt.state, tt.intent)
			require.Error(t, err)
			assert.True(t, invariant.Is(err))
			assert.Equal(t, tt.state.Phase, next.Phase)
		})
	}
}

func TestReduce_FlushIsAlwaysLegal(t *testing.T) {
	r := newReducer()
	for _, s := range []State{Idle(), lifted(t, r, schemas.FluidMode)} {
		next, err := r.Reduce(s, Flush{})
		require.NoError(t, err)
		assert.Equal(t, PhaseIdle, next.Phase)
		assert.True(t, next.ShouldFlush)
		assert.Nil(t, next.Drag)
	}
}

func TestReduce_IgnoredIntents(t *testing.T) {
	r := newReducer()
	collecting := reduceAll(t, r, lifted(t, r, schemas.SnapMode), CollectionStarting{})

	next, err := r.Reduce(collecting, MoveInDirection{Direction: impact.MoveDown})
	require.NoError(t, err)
	assert.Equal(t, collecting, next)

	next, err = r.Reduce(collecting, CollectionStarting{})
	require.NoError(t, err)
	assert.Equal(t, collecting, next)

	next, err = r.Reduce(Idle(), UpdateViewportMaxScroll{MaxScroll: geometry.Position{Y: 10}})
	require.NoError(t, err)
	assert.Equal(t, Idle(), next)
}

// -- Fluid drags --

func TestFluidDrag_ReorderAndDrop(t *testing.T) {
	// -- Setup --
	r := newReducer()
	s := lifted(t, r, schemas.FluidMode)

	// -- Execution --
	s = reduceAll(t, r, s, Move{Client: geometry.Position{X: 50, Y: 125}})

	// -- Assertions --
	dest, ok := s.Drag.Impact.Destination()
	require.True(t, ok)
	assert.Equal(t, 2, dest.Index)
	assert.Empty(t, s.Drag.Impact.Displaced.All)
	assert.Equal(t, geometry.Position{Y: 100}, s.Drag.Current.Client.Offset)

	// The item already sits in its new slot, so the drop completes at once.
	s = reduceAll(t, r, s, Drop{Reason: schemas.ReasonDrop})
	assert.Equal(t, PhaseIdle, s.Phase)
	require.NotNil(t, s.Completed)
	result := s.Completed.Result
	assert.Equal(t, schemas.DraggableID("a0"), result.DraggableID)
	assert.Equal(t, schemas.DraggableLocation{DroppableID: "home", Index: 0}, result.Source)
	require.NotNil(t, result.Destination)
	assert.Equal(t, schemas.DraggableLocation{DroppableID: "home", Index: 2}, *result.Destination)
	assert.Equal(t, schemas.ReasonDrop, result.Reason)
	assert.Equal(t, schemas.FluidMode, result.Mode)
}

func TestFluidDrag_SameSelectionIsNoop(t *testing.T) {
	r := newReducer()
	s := lifted(t, r, schemas.FluidMode)

	next, err := r.Reduce(s, Move{Client: s.Drag.Current.Client.Selection})
	require.NoError(t, err)
	assert.Equal(t, s, next)
}

func TestCancel_AnimatesHome(t *testing.T) {
	r := newReducer()
	s := lifted(t, r, schemas.FluidMode)
	s = reduceAll(t, r, s, Move{Client: geometry.Position{X: 50, Y: 125}}, Drop{Reason: schemas.ReasonCancel})

	require.Equal(t, PhaseDropAnimating, s.Phase)
	require.NotNil(t, s.Dropping)
	assert.Equal(t, geometry.Origin, s.Dropping.NewHomeClientOffset)
	assert.Nil(t, s.Dropping.Completed.Result.Destination)
	assert.Equal(t, schemas.ReasonCancel, s.Dropping.Completed.Result.Reason)
	// 100px home.
	assert.InDelta(t, (0.33+0.22*100/1500)*0.6, s.Dropping.Duration, 1e-9)

	s = reduceAll(t, r, s, DropAnimationFinished{})
	assert.Equal(t, PhaseIdle, s.Phase)
	require.NotNil(t, s.Completed)
	assert.Equal(t, schemas.ReasonCancel, s.Completed.Result.Reason)
}

func TestCancel_FromFarAway(t *testing.T) {
	r := newReducer()
	s := lifted(t, r, schemas.FluidMode)
	s = reduceAll(t, r, s, Move{Client: geometry.Position{X: 50, Y: 1525}})
	assert.Nil(t, s.Drag.Impact.At)

	s = reduceAll(t, r, s, Drop{Reason: schemas.ReasonCancel})

	require.Equal(t, PhaseDropAnimating, s.Phase)
	assert.InDelta(t, 0.33, s.Dropping.Duration, 1e-9)
}

func TestDrop_OutsideAnyDroppable(t *testing.T) {
	r := newReducer()
	s := lifted(t, r, schemas.FluidMode)
	s = reduceAll(t, r, s, Move{Client: geometry.Position{X: 700, Y: 25}}, Drop{Reason: schemas.ReasonDrop})

	require.Equal(t, PhaseDropAnimating, s.Phase)
	assert.Nil(t, s.Dropping.Completed.Result.Destination)
	assert.Nil(t, s.Dropping.Completed.Result.Combine)
	assert.Equal(t, geometry.Origin, s.Dropping.NewHomeClientOffset)
}

func TestDrop_Combine(t *testing.T) {
	r := newReducer()
	dims := column(dimensiontest.CombineEnabled())
	s := reduceAll(t, r, Idle(), liftIntent(dims, "a0", schemas.FluidMode, dimensiontest.Viewport(1000, 1000)))

	// Straight into the middle of a1.
	s = reduceAll(t, r, s, Move{Client: geometry.Position{X: 50, Y: 50}})
	combine, ok := s.Drag.Impact.CombineTarget()
	require.True(t, ok)
	assert.Equal(t, schemas.DraggableID("a1"), combine.DraggableID)

	s = reduceAll(t, r, s, Drop{Reason: schemas.ReasonDrop})

	require.Equal(t, PhaseDropAnimating, s.Phase)
	completed := s.Dropping.Completed
	require.NotNil(t, completed.Result.Combine)
	assert.Equal(t, schemas.Combine{DraggableID: "a1", DroppableID: "home"}, *completed.Result.Combine)
	assert.Nil(t, completed.Result.Destination)
	assert.Empty(t, completed.Impact.Displaced.All)
}

// -- Keyboard drags --

func TestSnapDrag_MoveDown(t *testing.T) {
	r := newReducer()
	s := lifted(t, r, schemas.SnapMode)

	s = reduceAll(t, r, s, MoveInDirection{Direction: impact.MoveDown})

	dest, ok := s.Drag.Impact.Destination()
	require.True(t, ok)
	assert.Equal(t, 1, dest.Index)
	assert.Equal(t, geometry.Position{X: 50, Y: 75}, s.Drag.Current.Client.Selection)
	assert.Nil(t, s.Drag.ScrollJumpRequest)
	assert.Nil(t, s.Drag.ForceShouldAnimate)
}

func TestSnapDrag_MoveIgnoresPointer(t *testing.T) {
	r := newReducer()
	s := lifted(t, r, schemas.SnapMode)
	before := s.Drag.Impact

	s = reduceAll(t, r, s, Move{Client: geometry.Position{X: 50, Y: 125}})

	assert.Equal(t, before, s.Drag.Impact)
	assert.Equal(t, geometry.Position{X: 50, Y: 125}, s.Drag.Current.Client.Selection)
}

// -- Scrolling --

func TestMoveByWindowScroll(t *testing.T) {
	r := newReducer()
	viewport := dimension.NewViewport(1000, 1000, geometry.Origin, geometry.Position{Y: 1000})
	s := reduceAll(t, r, Idle(), liftIntent(column(), "a0", schemas.FluidMode, viewport))

	s = reduceAll(t, r, s, MoveByWindowScroll{NewScroll: geometry.Position{Y: 100}})

	assert.Equal(t, geometry.Origin, s.Drag.Current.Client.Offset)
	assert.Equal(t, geometry.Position{Y: 100}, s.Drag.Current.Page.Offset)
	dest, ok := s.Drag.Impact.Destination()
	require.True(t, ok)
	assert.Equal(t, 2, dest.Index)
}

func TestMoveByWindowScroll_NotAllowed(t *testing.T) {
	r := newReducer()
	dims := column(dimensiontest.FixedOnPage())
	s := reduceAll(t, r, Idle(), liftIntent(dims, "a0", schemas.FluidMode, dimensiontest.Viewport(1000, 1000)))

	_, err := r.Reduce(s, MoveByWindowScroll{NewScroll: geometry.Position{Y: 10}})
	assert.True(t, invariant.Is(err))
}

func TestUpdateViewportMaxScroll(t *testing.T) {
	r := newReducer()
	s := lifted(t, r, schemas.FluidMode)

	s = reduceAll(t, r, s, UpdateViewportMaxScroll{MaxScroll: geometry.Position{Y: 300}})

	assert.Equal(t, geometry.Position{Y: 300}, s.Drag.Viewport.Scroll.Max)
}

func TestUpdateDroppableScroll(t *testing.T) {
	r := newReducer()
	frame := geometry.RectFromXYWH(0, 0, 100, 500)
	dims := column(dimensiontest.Scrollable(frame, 100, 1000))
	s := reduceAll(t, r, Idle(), liftIntent(dims, "a0", schemas.FluidMode, dimensiontest.Viewport(1000, 1000)))

	s = reduceAll(t, r, s, UpdateDroppableScroll{ID: "home", NewScroll: geometry.Position{Y: 100}})

	home := s.Drag.Dimensions.Droppables["home"]
	require.NotNil(t, home.Frame)
	assert.Equal(t, geometry.Position{Y: 100}, home.Frame.Scroll.Current)
	// The list moved under a still pointer.
	dest, ok := s.Drag.Impact.Destination()
	require.True(t, ok)
	assert.Equal(t, 2, dest.Index)

	next, err := r.Reduce(s, UpdateDroppableScroll{ID: "unknown", NewScroll: geometry.Position{Y: 5}})
	require.NoError(t, err)
	assert.Equal(t, s, next)
}

// -- Droppable toggles --

func TestUpdateDroppableIsEnabled(t *testing.T) {
	r := newReducer()
	s := lifted(t, r, schemas.FluidMode)

	same, err := r.Reduce(s, UpdateDroppableIsEnabled{ID: "home", IsEnabled: true})
	require.NoError(t, err)
	assert.Equal(t, s, same)

	s = reduceAll(t, r, s, UpdateDroppableIsEnabled{ID: "home", IsEnabled: false})
	assert.False(t, s.Drag.Dimensions.Droppables["home"].IsEnabled)
	assert.Nil(t, s.Drag.Impact.At)
}

func TestUpdateDroppableIsCombineEnabled(t *testing.T) {
	r := newReducer()
	s := lifted(t, r, schemas.FluidMode)
	s = reduceAll(t, r, s,
		UpdateDroppableIsCombineEnabled{ID: "home", IsCombineEnabled: true},
		Move{Client: geometry.Position{X: 50, Y: 50}},
	)

	_, ok := s.Drag.Impact.CombineTarget()
	assert.True(t, ok)
}

// -- Virtual list collection --

func TestCollection_PublishAdditionsAndRemovals(t *testing.T) {
	// -- Setup --
	r := newReducer()
	s := reduceAll(t, r, lifted(t, r, schemas.FluidMode), CollectionStarting{})
	require.Equal(t, PhaseCollecting, s.Phase)

	// Moves during a collection track the pointer but leave the impact alone.
	before := s.Drag.Impact
	s = reduceAll(t, r, s, Move{Client: geometry.Position{X: 50, Y: 125}})
	assert.Equal(t, before, s.Drag.Impact)

	// -- Execution --
	added := dimensiontest.Draggable("a3", 3, "home", geometry.RectFromXYWH(0, 150, 100, 50))
	s = reduceAll(t, r, s, PublishWhileDragging{Published: schemas.Published{
		Additions: []schemas.DraggableDimension{added},
		Removals:  []schemas.DraggableID{"a2"},
	}})

	// -- Assertions --
	assert.Equal(t, PhaseDragging, s.Phase)
	assert.Contains(t, s.Drag.Dimensions.Draggables, schemas.DraggableID("a3"))
	assert.NotContains(t, s.Drag.Dimensions.Draggables, schemas.DraggableID("a2"))
	require.NotNil(t, s.Drag.ForceShouldAnimate)
	assert.False(t, *s.Drag.ForceShouldAnimate)
	assert.Equal(t, []schemas.DraggableID{"a1", "a3"}, s.Drag.OnLiftImpact.Displaced.All)
	// The lift baseline is not rebuilt.
	assert.False(t, s.Drag.AfterCritical.DidStartAfterCritical("a3"))
}

func TestCollection_RemovingDraggedItem(t *testing.T) {
	r := newReducer()
	s := reduceAll(t, r, lifted(t, r, schemas.FluidMode), CollectionStarting{})

	_, err := r.Reduce(s, PublishWhileDragging{Published: schemas.Published{Removals: []schemas.DraggableID{"a0"}}})
	assert.True(t, invariant.Is(err))
}

func TestCollection_DropIsDeferred(t *testing.T) {
	r := newReducer()
	s := reduceAll(t, r, lifted(t, r, schemas.FluidMode), CollectionStarting{}, Drop{Reason: schemas.ReasonDrop})

	require.Equal(t, PhaseDropPending, s.Phase)
	require.NotNil(t, s.Pending)
	assert.True(t, s.Pending.IsWaiting)

	_, err := r.Reduce(s, Drop{Reason: schemas.ReasonDrop})
	assert.True(t, invariant.Is(err), "a drop cannot land before the collection is published")

	s = reduceAll(t, r, s, PublishWhileDragging{})
	require.Equal(t, PhaseDropPending, s.Phase)
	assert.False(t, s.Pending.IsWaiting)
	assert.Equal(t, schemas.ReasonDrop, s.Pending.Reason)

	s = reduceAll(t, r, s, Drop{Reason: s.Pending.Reason})
	assert.Equal(t, PhaseIdle, s.Phase)
	require.NotNil(t, s.Completed)
}
