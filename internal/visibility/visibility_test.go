package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/dimension"
	dt "github.com/xkilldash9x/dropzone/internal/dimension/dimensiontest"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

var displacedBy50 = schemas.DisplacedBy{Value: 50, Point: geometry.Position{Y: 50}}

func boolPtr(b bool) *bool { return &b }

func ids(prefix string, n ...int) []schemas.DraggableID {
	out := make([]schemas.DraggableID, 0, len(n))
	for _, i := range n {
		out = append(out, schemas.DraggableID(prefix+string(rune('0'+i))))
	}
	return out
}

func TestIsVisible(t *testing.T) {
	viewport := geometry.RectFromXYWH(0, 0, 300, 100)
	frame := geometry.RectFromXYWH(0, 0, 100, 100)
	destination := dt.Droppable("list", geometry.RectFromXYWH(0, 0, 100, 400), dt.Scrollable(frame, 100, 400))
	scrolled, err := dimension.ScrollDroppable(destination, geometry.Position{Y: 150})
	require.NoError(t, err)

	below := geometry.RectFromXYWH(0, 160, 100, 30)

	assert.False(t, IsPartiallyVisible(Args{Target: below, Destination: scrolled, Viewport: viewport}))
	assert.True(t, IsPartiallyVisible(Args{Target: below, Destination: scrolled, Viewport: viewport, WithDroppableDisplacement: true}),
		"scrolling the frame by 150 brings the item to 10..40")
	assert.True(t, IsTotallyVisible(Args{Target: below, Destination: scrolled, Viewport: viewport, WithDroppableDisplacement: true}))

	wide := geometry.RectFromXYWH(-50, 10, 500, 20)
	assert.False(t, IsTotallyVisible(Args{Target: wide, Destination: destination, Viewport: viewport}))
	assert.True(t, IsTotallyVisibleOnAxis(Args{Target: wide, Destination: destination, Viewport: viewport}))
}

func TestIsVisible_NoActiveSubject(t *testing.T) {
	frame := geometry.RectFromXYWH(0, 0, 100, 100)
	hidden := dt.Droppable("list", geometry.RectFromXYWH(0, 300, 100, 100), dt.Scrollable(frame, 100, 100))
	require.Nil(t, hidden.Subject.Active)

	assert.False(t, IsPartiallyVisible(Args{
		Target:      geometry.RectFromXYWH(0, 0, 10, 10),
		Destination: hidden,
		Viewport:    geometry.RectFromXYWH(0, 0, 1000, 1000),
	}))
}

func TestGetDisplacementGroups(t *testing.T) {
	destination := dt.Droppable("list", geometry.RectFromXYWH(0, 0, 100, 1000))
	items := dt.Column("list", "i", 6, 0, 0, 100, 50)
	viewport := geometry.RectFromXYWH(0, 0, 300, 100)

	groups := GetDisplacementGroups(GroupsArgs{
		AfterDragging: items[1:],
		Destination:   destination,
		DisplacedBy:   displacedBy50,
		Viewport:      viewport,
	})

	assert.Equal(t, ids("i", 1, 2, 3, 4, 5), groups.All)
	assert.Len(t, groups.Visible, 3, "an item whose grown box touches the viewport edge still counts")
	assert.True(t, groups.Invisible["i4"])
	assert.True(t, groups.Invisible["i5"])
	for _, d := range groups.Visible {
		assert.True(t, d.ShouldAnimate, "nothing to continue from, so everything animates")
	}
}

func TestGetDisplacementGroups_ShouldAnimateContinuity(t *testing.T) {
	destination := dt.Droppable("list", geometry.RectFromXYWH(0, 0, 100, 1000))
	items := dt.Column("list", "i", 4, 0, 0, 100, 50)
	viewport := geometry.RectFromXYWH(0, 0, 300, 1000)

	last := schemas.DisplacementGroups{
		All:       ids("i", 1, 2, 3),
		Visible:   map[schemas.DraggableID]schemas.Displacement{"i1": {DraggableID: "i1", ShouldAnimate: false}},
		Invisible: map[schemas.DraggableID]bool{"i2": true},
	}

	groups := GetDisplacementGroups(GroupsArgs{
		AfterDragging: items[1:],
		Destination:   destination,
		DisplacedBy:   displacedBy50,
		Viewport:      viewport,
		Last:          &last,
	})
	assert.False(t, groups.Visible["i1"].ShouldAnimate, "copied from the previous record")
	assert.False(t, groups.Visible["i2"].ShouldAnimate, "was invisible, so it must not animate into place")
	assert.True(t, groups.Visible["i3"].ShouldAnimate, "new to the set")

	forced := GetDisplacementGroups(GroupsArgs{
		AfterDragging:      items[1:],
		Destination:        destination,
		DisplacedBy:        displacedBy50,
		Viewport:           viewport,
		Last:               &last,
		ForceShouldAnimate: boolPtr(true),
	})
	for _, d := range forced.Visible {
		assert.True(t, d.ShouldAnimate)
	}
}

func TestRecompute(t *testing.T) {
	destination := dt.Droppable("list", geometry.RectFromXYWH(0, 0, 100, 1000))
	items := dt.Column("list", "i", 6, 0, 0, 100, 50)
	m := dt.Map([]schemas.DroppableDimension{destination}, items)

	impact := schemas.DragImpact{
		DisplacedBy: displacedBy50,
		Displaced: GetDisplacementGroups(GroupsArgs{
			AfterDragging: items[1:],
			Destination:   destination,
			DisplacedBy:   displacedBy50,
			Viewport:      geometry.RectFromXYWH(0, 0, 300, 100),
		}),
	}
	require.True(t, impact.Displaced.Invisible["i5"])

	viewport := dimension.ScrollViewport(dimension.NewViewport(300, 100, geometry.Origin, geometry.Position{Y: 900}), geometry.Position{Y: 200})
	recomputed := Recompute(impact, destination, viewport, m.Draggables, nil)

	assert.Equal(t, impact.Displaced.All, recomputed.Displaced.All)
	assert.Contains(t, recomputed.Displaced.Visible, schemas.DraggableID("i5"))
	assert.False(t, recomputed.Displaced.Visible["i5"].ShouldAnimate)
	assert.True(t, recomputed.Displaced.Invisible["i1"])
}

func TestSpeculativelyIncrease(t *testing.T) {
	destination := dt.Droppable("list", geometry.RectFromXYWH(0, 0, 100, 1000))
	items := dt.Column("list", "i", 8, 0, 0, 100, 50)
	m := dt.Map([]schemas.DroppableDimension{destination}, items)
	viewport := dimension.NewViewport(300, 100, geometry.Origin, geometry.Position{Y: 900})

	impact := schemas.DragImpact{
		DisplacedBy: displacedBy50,
		Displaced: GetDisplacementGroups(GroupsArgs{
			AfterDragging: items[1:],
			Destination:   destination,
			DisplacedBy:   displacedBy50,
			Viewport:      viewport.Frame,
		}),
	}
	require.True(t, impact.Displaced.Invisible["i4"])

	increased := SpeculativelyIncrease(impact, destination, viewport, m.Draggables, geometry.Position{Y: 100})

	assert.Equal(t, impact.Displaced.All, increased.Displaced.All)
	assert.Contains(t, increased.Displaced.Visible, schemas.DraggableID("i4"))
	assert.False(t, increased.Displaced.Visible["i4"].ShouldAnimate)
	assert.True(t, increased.Displaced.Visible["i1"].ShouldAnimate, "already visible entries keep their record")
	assert.True(t, increased.Displaced.Invisible["i7"])
	assert.Len(t, increased.Displaced.Visible, 5)
}
