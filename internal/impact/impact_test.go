package impact

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/dimension"
	"github.com/xkilldash9x/dropzone/internal/dimension/dimensiontest"
	"github.com/xkilldash9x/dropzone/internal/invariant"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// liftState captures what a session holds right after lifting id.
type liftState struct {
	draggable     schemas.DraggableDimension
	impact        schemas.DragImpact
	afterCritical schemas.AfterCritical
}

func lift(t *testing.T, dims schemas.DimensionMap, id string, viewport schemas.Viewport) liftState {
	t.Helper()
	draggable, ok := dims.Draggables[schemas.DraggableID(id)]
	require.True(t, ok, "fixture is missing %s", id)
	home := dims.Droppables[draggable.Descriptor.DroppableID]

	impact, afterCritical, err := GetLiftEffect(draggable, home, dims.Draggables, viewport)
	require.NoError(t, err)
	return liftState{draggable: draggable, impact: impact, afterCritical: afterCritical}
}

func singleColumn(count int, height float64, opts ...dimensiontest.DroppableOption) schemas.DimensionMap {
	dimension.ResetCache()
	return dimensiontest.Map(
		[]schemas.DroppableDimension{dimensiontest.Droppable("home", geometry.RectFromXYWH(0, 0, 100, 500), opts...)},
		dimensiontest.Column("home", "a", count, 0, 0, 100, height),
	)
}

func twoColumns() schemas.DimensionMap {
	dimension.ResetCache()
	return dimensiontest.Map(
		[]schemas.DroppableDimension{
			dimensiontest.Droppable("home", geometry.RectFromXYWH(0, 0, 100, 500)),
			dimensiontest.Droppable("foreign", geometry.RectFromXYWH(120, 0, 100, 500)),
		},
		dimensiontest.Column("home", "a", 3, 0, 0, 100, 50),
		dimensiontest.Column("foreign", "b", 3, 120, 0, 100, 50),
	)
}

func dragTo(t *testing.T, calc Calculator, dims schemas.DimensionMap, state liftState, previous schemas.DragImpact, offset geometry.Position, viewport schemas.Viewport) schemas.DragImpact {
	t.Helper()
	impact, err := calc.GetDragImpact(DragArgs{
		PageOffset:    offset,
		DraggableID:   state.draggable.Descriptor.ID,
		Dimensions:    dims,
		Previous:      previous,
		Viewport:      viewport,
		AfterCritical: state.afterCritical,
	})
	require.NoError(t, err)
	return impact
}

func TestGetLiftEffect(t *testing.T) {
	viewport := dimensiontest.Viewport(1000, 1000)
	dims := singleColumn(3, 50, dimensiontest.Virtual())

	state := lift(t, dims, "a0", viewport)

	assert.True(t, state.afterCritical.InVirtualList)
	assert.True(t, state.afterCritical.DidStartAfterCritical("a1"))
	assert.True(t, state.afterCritical.DidStartAfterCritical("a2"))
	assert.False(t, state.afterCritical.DidStartAfterCritical("a0"))
	assert.Equal(t, 50.0, state.afterCritical.DisplacedBy.Value)

	assert.Equal(t, []schemas.DraggableID{"a1", "a2"}, state.impact.Displaced.All)
	for _, d := range state.impact.Displaced.Visible {
		assert.False(t, d.ShouldAnimate, "lift displacement must not animate")
	}
	location, ok := state.impact.Destination()
	require.True(t, ok)
	assert.Equal(t, schemas.DraggableLocation{DroppableID: "home", Index: 0}, location)
}

func TestGetLiftEffect_NotInHome(t *testing.T) {
	dims := singleColumn(2, 50)
	stray := dimensiontest.Draggable("stray", 0, "elsewhere", geometry.RectFromXYWH(0, 0, 10, 10))

	_, _, err := GetLiftEffect(stray, dims.Droppables["home"], dims.Draggables, dimensiontest.Viewport(100, 100))
	assert.True(t, invariant.Is(err))
}

func TestGetDragImpact_ReorderToEnd(t *testing.T) {
	viewport := dimensiontest.Viewport(1000, 1000)
	dims := singleColumn(3, 50)
	state := lift(t, dims, "a0", viewport)

	// Pointer on the vertical center of a2's box.
	impact := dragTo(t, Calculator{}, dims, state, state.impact, geometry.Position{Y: 100}, viewport)

	location, ok := impact.Destination()
	require.True(t, ok)
	assert.Equal(t, schemas.DraggableLocation{DroppableID: "home", Index: 2}, location)
	assert.Empty(t, impact.Displaced.All, "every sibling has moved up into the gap")
	assert.Equal(t, schemas.DisplacedBy{Value: 50, Point: geometry.Position{Y: 50}}, impact.DisplacedBy)
}

func TestGetDragImpact_Combine(t *testing.T) {
	viewport := dimensiontest.Viewport(1000, 1000)
	dims := singleColumn(3, 80, dimensiontest.CombineEnabled())
	state := lift(t, dims, "a0", viewport)

	testCases := []struct {
		name    string
		offset  float64
		combine bool
	}{
		{"inside the band", 30, true},
		{"band start is inclusive", 20, true},
		{"band end is inclusive", 60, true},
		{"before the band", 10, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			impact := dragTo(t, Calculator{}, dims, state, state.impact, geometry.Position{Y: tc.offset}, viewport)
			target, ok := impact.CombineTarget()
			assert.Equal(t, tc.combine, ok)
			if tc.combine {
				assert.Equal(t, schemas.Combine{DraggableID: "a1", DroppableID: "home"}, target)
				assert.Equal(t, state.impact.Displaced, impact.Displaced, "combining keeps the previous displacement")
			}
		})
	}
}

func TestGetDragImpact_CombineThresholdDivisor(t *testing.T) {
	viewport := dimensiontest.Viewport(1000, 1000)
	dims := singleColumn(3, 80, dimensiontest.CombineEnabled())
	state := lift(t, dims, "a0", viewport)

	// A divisor of 2 collapses the band to the sibling's center line.
	calc := Calculator{CombineThresholdDivisor: 2}
	_, ok := dragTo(t, calc, dims, state, state.impact, geometry.Position{Y: 30}, viewport).CombineTarget()
	assert.False(t, ok)
	_, ok = dragTo(t, calc, dims, state, state.impact, geometry.Position{Y: 40}, viewport).CombineTarget()
	assert.True(t, ok)
}

func TestGetDragImpact_ForeignList(t *testing.T) {
	viewport := dimensiontest.Viewport(1000, 1000)
	dims := twoColumns()
	state := lift(t, dims, "a0", viewport)

	impact := dragTo(t, Calculator{}, dims, state, state.impact, geometry.Position{X: 120, Y: 60}, viewport)

	location, ok := impact.Destination()
	require.True(t, ok)
	assert.Equal(t, schemas.DraggableLocation{DroppableID: "foreign", Index: 1}, location)
	assert.Equal(t, []schemas.DraggableID{"b1", "b2"}, impact.Displaced.All)
	for _, id := range impact.Displaced.All {
		assert.True(t, impact.Displaced.Visible[id].ShouldAnimate)
	}

	t.Run("past the last item", func(t *testing.T) {
		end := dragTo(t, Calculator{}, dims, state, impact, geometry.Position{X: 120, Y: 300}, viewport)
		location, ok := end.Destination()
		require.True(t, ok)
		assert.Equal(t, 3, location.Index)
		assert.Empty(t, end.Displaced.All)
	})

	t.Run("outside every list", func(t *testing.T) {
		none := dragTo(t, Calculator{}, dims, state, impact, geometry.Position{X: 600}, viewport)
		assert.Nil(t, none.At)
		assert.Empty(t, none.Displaced.All)
	})
}

func TestGetDragImpact_DisabledDestination(t *testing.T) {
	viewport := dimensiontest.Viewport(1000, 1000)
	dims := twoColumns()
	foreign := dims.Droppables["foreign"]
	foreign.IsEnabled = false
	dims.Droppables["foreign"] = foreign
	state := lift(t, dims, "a0", viewport)

	impact := dragTo(t, Calculator{}, dims, state, state.impact, geometry.Position{X: 120, Y: 60}, viewport)
	assert.Nil(t, impact.At)
}

func TestGetDragImpact_MissingDraggable(t *testing.T) {
	dims := singleColumn(2, 50)
	_, err := Calculator{}.GetDragImpact(DragArgs{
		DraggableID: "ghost",
		Dimensions:  dims,
		Previous:    schemas.NoImpact(),
		Viewport:    dimensiontest.Viewport(100, 100),
	})
	require.Error(t, err)
	assert.True(t, invariant.Is(err))
}

func TestGetDragImpact_IdempotentAndConserving(t *testing.T) {
	viewport := dimensiontest.Viewport(1000, 300)
	dims := twoColumns()
	state := lift(t, dims, "a1", viewport)
	calc := Calculator{}

	for y := -60.0; y <= 400; y += 10 {
		for _, x := range []float64{0, 60, 120} {
			offset := geometry.Position{X: x, Y: y}
			first := dragTo(t, calc, dims, state, state.impact, offset, viewport)
			dimension.ResetCache()
			second := dragTo(t, calc, dims, state, state.impact, offset, viewport)
			if diff := cmp.Diff(first, second); diff != "" {
				t.Fatalf("impact at %+v is not deterministic (-first +second):\n%s", offset, diff)
			}

			groups := first.Displaced
			assert.Len(t, groups.All, len(groups.Visible)+len(groups.Invisible), "offset %+v", offset)
			for _, id := range groups.All {
				_, visible := groups.Visible[id]
				assert.NotEqual(t, visible, groups.Invisible[id], "%s must be in exactly one group at %+v", id, offset)
			}
		}
	}
}

func TestGetDroppableOver_TieBreaks(t *testing.T) {
	draggable := dimensiontest.Draggable("d", 0, "x", geometry.RectFromXYWH(0, 0, 50, 50))

	t.Run("single candidate", func(t *testing.T) {
		droppables := schemas.DroppableDimensionMap{
			"only": dimensiontest.Droppable("only", geometry.RectFromXYWH(0, 0, 100, 100)),
		}
		id, ok := getDroppableOver(geometry.RectFromXYWH(80, 0, 50, 50), draggable, droppables)
		require.True(t, ok)
		assert.Equal(t, schemas.DroppableID("only"), id)
	})

	t.Run("contains center wins", func(t *testing.T) {
		droppables := schemas.DroppableDimensionMap{
			"left":  dimensiontest.Droppable("left", geometry.RectFromXYWH(0, 0, 100, 100)),
			"right": dimensiontest.Droppable("right", geometry.RectFromXYWH(100, 0, 100, 100)),
		}
		id, ok := getDroppableOver(geometry.RectFromXYWH(80, 0, 50, 50), draggable, droppables)
		require.True(t, ok)
		assert.Equal(t, schemas.DroppableID("right"), id)
	})

	t.Run("closest cross axis center", func(t *testing.T) {
		droppables := schemas.DroppableDimensionMap{
			"left":  dimensiontest.Droppable("left", geometry.RectFromXYWH(0, 0, 100, 100)),
			"right": dimensiontest.Droppable("right", geometry.RectFromXYWH(50, 0, 100, 100)),
		}
		id, ok := getDroppableOver(geometry.RectFromXYWH(60, 0, 50, 50), draggable, droppables)
		require.True(t, ok)
		assert.Equal(t, schemas.DroppableID("right"), id)
	})

	t.Run("identical candidates fall back to id order", func(t *testing.T) {
		droppables := schemas.DroppableDimensionMap{
			"zeta":  dimensiontest.Droppable("zeta", geometry.RectFromXYWH(0, 0, 100, 100)),
			"alpha": dimensiontest.Droppable("alpha", geometry.RectFromXYWH(0, 0, 100, 100)),
		}
		for i := 0; i < 10; i++ {
			id, ok := getDroppableOver(geometry.RectFromXYWH(10, 10, 50, 50), draggable, droppables)
			require.True(t, ok)
			assert.Equal(t, schemas.DroppableID("alpha"), id)
		}
	})

	t.Run("other types are ignored", func(t *testing.T) {
		other := dimensiontest.Droppable("other", geometry.RectFromXYWH(0, 0, 100, 100))
		other.Descriptor.Type = "OTHER"
		_, ok := getDroppableOver(geometry.RectFromXYWH(10, 10, 50, 50), draggable, schemas.DroppableDimensionMap{"other": other})
		assert.False(t, ok)
	})
}

func TestRecomputePlaceholders(t *testing.T) {
	viewport := dimensiontest.Viewport(1000, 1000)
	dims := twoColumns()
	state := lift(t, dims, "a0", viewport)

	entered := dragTo(t, Calculator{}, dims, state, state.impact, geometry.Position{X: 120, Y: 60}, viewport)
	withPlaceholder, err := RecomputePlaceholders(state.draggable, dims.Draggables, dims.Droppables, state.impact, entered)
	require.NoError(t, err)

	require.NotNil(t, withPlaceholder["foreign"].Subject.WithPlaceholder)
	assert.Equal(t, geometry.Position{Y: 50}, withPlaceholder["foreign"].Subject.WithPlaceholder.PlaceholderSize)
	assert.Nil(t, dims.Droppables["foreign"].Subject.WithPlaceholder, "input map must not change")
	assert.Nil(t, withPlaceholder["home"].Subject.WithPlaceholder, "home never gets placeholder space")

	left, err := RecomputePlaceholders(state.draggable, dims.Draggables, withPlaceholder, entered, schemas.NoImpact())
	require.NoError(t, err)
	assert.Nil(t, left["foreign"].Subject.WithPlaceholder)

	unchanged, err := RecomputePlaceholders(state.draggable, dims.Draggables, dims.Droppables, state.impact, state.impact)
	require.NoError(t, err)
	assert.Equal(t, dims.Droppables, unchanged)
}

func TestPageBorderBoxCenter_EmptyForeignList(t *testing.T) {
	dimension.ResetCache()
	dims := dimensiontest.Map(
		[]schemas.DroppableDimension{
			dimensiontest.Droppable("home", geometry.RectFromXYWH(0, 0, 100, 500)),
			dimensiontest.Droppable("empty", geometry.RectFromXYWH(200, 20, 100, 500)),
		},
		dimensiontest.Column("home", "a", 2, 0, 0, 100, 50),
	)
	draggable := dims.Draggables["a0"]
	impact := schemas.DragImpact{
		Displaced: schemas.EmptyGroups(),
		At: &schemas.ImpactLocation{
			Type:        schemas.AtReorder,
			Destination: schemas.DraggableLocation{DroppableID: "empty", Index: 0},
		},
	}

	center, err := PageBorderBoxCenter(impact, draggable, dims.Droppables["empty"], dims.Draggables, schemas.AfterCritical{})
	require.NoError(t, err)
	assert.Equal(t, geometry.Position{X: 250, Y: 45}, center)
}
