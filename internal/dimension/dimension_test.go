package dimension_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/dimension"
	dt "github.com/xkilldash9x/dropzone/internal/dimension/dimensiontest"
	"github.com/xkilldash9x/dropzone/internal/invariant"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// -- Droppable construction and scrolling --

func TestNewDroppable_WithFrame(t *testing.T) {
	frame := geometry.RectFromXYWH(0, 0, 100, 400)
	d := dt.Droppable("list", geometry.RectFromXYWH(0, 100, 100, 500), dt.Scrollable(frame, 100, 600))

	require.NotNil(t, d.Frame)
	assert.Equal(t, geometry.Position{X: 0, Y: 200}, d.Frame.Scroll.Max)
	require.NotNil(t, d.Subject.Active)
	assert.Equal(t, geometry.Rect{Top: 100, Right: 100, Bottom: 400, Left: 0}, *d.Subject.Active)
}

func TestNewDroppable_NoFrameIsNeverClipped(t *testing.T) {
	d := dt.Droppable("list", geometry.RectFromXYWH(0, 0, 100, 300))
	assert.Nil(t, d.Frame)
	require.NotNil(t, d.Subject.Active)
	assert.Equal(t, d.Page.MarginBox, *d.Subject.Active)
}

func TestScrollDroppable(t *testing.T) {
	frame := geometry.RectFromXYWH(0, 0, 100, 400)
	d := dt.Droppable("list", geometry.RectFromXYWH(0, 100, 100, 500), dt.Scrollable(frame, 100, 600))

	scrolled, err := dimension.ScrollDroppable(d, geometry.Position{Y: 50})
	require.NoError(t, err)

	assert.Equal(t, geometry.Position{Y: 50}, scrolled.Frame.Scroll.Current)
	assert.Equal(t, geometry.Position{Y: 50}, scrolled.Frame.Scroll.Diff.Value)
	assert.Equal(t, geometry.Position{Y: -50}, scrolled.Frame.Scroll.Diff.Displacement)
	assert.Equal(t, geometry.Rect{Top: 50, Right: 100, Bottom: 400, Left: 0}, *scrolled.Subject.Active)

	assert.Equal(t, geometry.Origin, d.Frame.Scroll.Current, "the input must not be modified")

	back, err := dimension.ScrollDroppable(scrolled, geometry.Origin)
	require.NoError(t, err)
	assert.Equal(t, *d.Subject.Active, *back.Subject.Active)
}

func TestScrollDroppable_WithoutFrameIsViolation(t *testing.T) {
	d := dt.Droppable("list", geometry.RectFromXYWH(0, 0, 100, 300))
	_, err := dimension.ScrollDroppable(d, geometry.Position{Y: 10})
	assert.True(t, invariant.Is(err))
}

func TestSubject_FullyClippedHasNoActiveArea(t *testing.T) {
	frame := geometry.RectFromXYWH(0, 0, 100, 100)
	d := dt.Droppable("list", geometry.RectFromXYWH(0, 200, 100, 100), dt.Scrollable(frame, 100, 300))
	assert.Nil(t, d.Subject.Active)
}

// -- Placeholder growth --

func TestAddPlaceholder_GrowsOnlyByWhatIsMissing(t *testing.T) {
	foreign := dt.Droppable("foreign", geometry.RectFromXYWH(200, 0, 100, 100))
	inside := dt.Column("foreign", "f", 2, 200, 0, 100, 40)
	dragged := dt.Draggable("home-0", 0, "home", geometry.RectFromXYWH(0, 0, 100, 50))
	draggables := dt.Map(nil, inside, []schemas.DraggableDimension{dragged}).Draggables

	grown, err := dimension.AddPlaceholder(foreign, dragged, draggables)
	require.NoError(t, err)

	added := grown.Subject.WithPlaceholder
	require.NotNil(t, added)
	require.NotNil(t, added.IncreasedBy)
	assert.Equal(t, geometry.Position{Y: 30}, *added.IncreasedBy)
	assert.Equal(t, geometry.Position{Y: 50}, added.PlaceholderSize)
	assert.Equal(t, 130.0, grown.Subject.Active.Bottom)

	restored, err := dimension.RemovePlaceholder(grown)
	require.NoError(t, err)
	assert.Nil(t, restored.Subject.WithPlaceholder)
	assert.Equal(t, *foreign.Subject.Active, *restored.Subject.Active)
}

func TestAddPlaceholder_RoomyListDoesNotGrow(t *testing.T) {
	foreign := dt.Droppable("foreign", geometry.RectFromXYWH(200, 0, 100, 500))
	dragged := dt.Draggable("home-0", 0, "home", geometry.RectFromXYWH(0, 0, 100, 50))

	grown, err := dimension.AddPlaceholder(foreign, dragged, schemas.DraggableDimensionMap{})
	require.NoError(t, err)
	require.NotNil(t, grown.Subject.WithPlaceholder)
	assert.Nil(t, grown.Subject.WithPlaceholder.IncreasedBy)
	assert.Equal(t, *foreign.Subject.Active, *grown.Subject.Active)
}

func TestAddPlaceholder_ExtendsFrameMaxScroll(t *testing.T) {
	frame := geometry.RectFromXYWH(200, 0, 100, 100)
	foreign := dt.Droppable("foreign", geometry.RectFromXYWH(200, 0, 100, 100), dt.Scrollable(frame, 100, 300))
	dragged := dt.Draggable("home-0", 0, "home", geometry.RectFromXYWH(0, 0, 100, 50))
	inside := dt.Column("foreign", "f", 2, 200, 0, 100, 50)
	draggables := dt.Map(nil, inside).Draggables

	grown, err := dimension.AddPlaceholder(foreign, dragged, draggables)
	require.NoError(t, err)
	assert.Equal(t, geometry.Position{Y: 250}, grown.Frame.Scroll.Max)
	require.NotNil(t, grown.Subject.WithPlaceholder.OldFrameMaxScroll)
	assert.Equal(t, geometry.Position{Y: 200}, *grown.Subject.WithPlaceholder.OldFrameMaxScroll)

	restored, err := dimension.RemovePlaceholder(grown)
	require.NoError(t, err)
	assert.Equal(t, geometry.Position{Y: 200}, restored.Frame.Scroll.Max)
}

func TestAddPlaceholder_VirtualListAlwaysGrowsByFullSize(t *testing.T) {
	foreign := dt.Droppable("foreign", geometry.RectFromXYWH(200, 0, 100, 500), dt.Virtual())
	dragged := dt.Draggable("home-0", 0, "home", geometry.RectFromXYWH(0, 0, 100, 50))

	grown, err := dimension.AddPlaceholder(foreign, dragged, schemas.DraggableDimensionMap{})
	require.NoError(t, err)
	assert.Equal(t, geometry.Position{Y: 50}, *grown.Subject.WithPlaceholder.IncreasedBy)
}

func TestPlaceholderViolations(t *testing.T) {
	home := dt.Droppable("home", geometry.RectFromXYWH(0, 0, 100, 500))
	dragged := dt.Draggable("home-0", 0, "home", geometry.RectFromXYWH(0, 0, 100, 50))

	_, err := dimension.AddPlaceholder(home, dragged, schemas.DraggableDimensionMap{})
	assert.True(t, invariant.Is(err), "home lists never get placeholder growth")

	foreign := dt.Droppable("foreign", geometry.RectFromXYWH(200, 0, 100, 500))
	grown, err := dimension.AddPlaceholder(foreign, dragged, schemas.DraggableDimensionMap{})
	require.NoError(t, err)
	_, err = dimension.AddPlaceholder(grown, dragged, schemas.DraggableDimensionMap{})
	assert.True(t, invariant.Is(err))

	_, err = dimension.RemovePlaceholder(foreign)
	assert.True(t, invariant.Is(err))
}

// -- Draggables inside a droppable --

func TestDraggablesInside(t *testing.T) {
	dimension.ResetCache()
	m := dt.Map(nil, dt.Column("a", "a", 3, 0, 0, 100, 10), dt.Column("b", "b", 2, 200, 0, 100, 10))

	first := dimension.DraggablesInside("a", m.Draggables)
	require.Len(t, first, 3)
	for i, d := range first {
		assert.Equal(t, i, d.Descriptor.Index)
	}

	again := dimension.DraggablesInside("a", m.Draggables)
	assert.Same(t, &first[0], &again[0], "same map identity hits the cache")

	copied := schemas.DraggableDimensionMap{}
	for k, v := range m.Draggables {
		copied[k] = v
	}
	fresh := dimension.DraggablesInside("a", copied)
	assert.Equal(t, first, fresh)
	assert.NotSame(t, &first[0], &fresh[0])

	back := dimension.DraggablesInside("a", m.Draggables)
	assert.NotSame(t, &first[0], &back[0], "switching maps drops the old entries")
	assert.Equal(t, first, back)

	assert.Empty(t, dimension.DraggablesInside("missing", m.Draggables))
	assert.Empty(t, dimension.DraggablesInside("a", nil))
}

func TestWithout(t *testing.T) {
	list := dt.Column("a", "a", 3, 0, 0, 100, 10)
	out := dimension.Without("a1", list)
	require.Len(t, out, 2)
	assert.Equal(t, schemas.DraggableID("a0"), out[0].Descriptor.ID)
	assert.Equal(t, schemas.DraggableID("a2"), out[1].Descriptor.ID)
	assert.Len(t, list, 3)
}

// -- Viewport and draggables --

func TestScrollViewport(t *testing.T) {
	vp := dimension.NewViewport(800, 600, geometry.Origin, geometry.Position{Y: 1000})
	scrolled := dimension.ScrollViewport(vp, geometry.Position{Y: 120})

	assert.Equal(t, geometry.RectFromXYWH(0, 120, 800, 600), scrolled.Frame)
	assert.Equal(t, geometry.Position{Y: 120}, scrolled.Scroll.Diff.Value)
	assert.Equal(t, geometry.Position{Y: -120}, scrolled.Scroll.Diff.Displacement)
	assert.Equal(t, geometry.Position{Y: 1000}, scrolled.Scroll.Max)
}

func TestNewDraggableAndOffset(t *testing.T) {
	box := geometry.CreateBox(geometry.RectFromXYWH(10, 10, 100, 40), geometry.Spacing{Top: 5, Bottom: 5}, geometry.Spacing{}, geometry.Spacing{})
	d := dimension.NewDraggable(schemas.DraggableDescriptor{ID: "a"}, box, geometry.Position{Y: 100})

	assert.Equal(t, geometry.Position{X: 100, Y: 50}, d.DisplaceBy)
	assert.Equal(t, 110.0, d.Page.BorderBox.Top)

	moved := dimension.OffsetDraggable(d, geometry.Position{Y: 20}, geometry.Position{Y: 100})
	assert.Equal(t, 30.0, moved.Client.BorderBox.Top)
	assert.Equal(t, 130.0, moved.Page.BorderBox.Top)
	assert.Equal(t, moved.Client, moved.Placeholder.Client)
}

func TestDisplacedBy(t *testing.T) {
	size := geometry.Position{X: 120, Y: 40}
	assert.Equal(t, schemas.DisplacedBy{Value: 40, Point: geometry.Position{Y: 40}}, dimension.DisplacedBy(geometry.VerticalAxis, size))
	assert.Equal(t, schemas.DisplacedBy{Value: 120, Point: geometry.Position{X: 120}}, dimension.DisplacedBy(geometry.HorizontalAxis, size))
}
