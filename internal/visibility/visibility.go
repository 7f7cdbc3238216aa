// Package visibility decides which displaced draggables can be seen, and so
// which of them should animate.
package visibility

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/dimension"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

type frameCheck func(frame, subject geometry.Rect) bool

// Args describes one visibility query.
type Args struct {
	Target      geometry.Rect
	Destination schemas.DroppableDimension
	// Viewport is the page viewport frame.
	Viewport geometry.Rect
	// WithDroppableDisplacement shifts Target by the destination's scroll first.
	WithDroppableDisplacement bool
}

func isVisible(args Args, check frameCheck) bool {
	target := args.Target
	if args.WithDroppableDisplacement && args.Destination.Frame != nil {
		target = geometry.Offset(target, args.Destination.Frame.Scroll.Diff.Displacement)
	}

	active := args.Destination.Subject.Active
	if active == nil {
		return false
	}
	return check(*active, target) && check(args.Viewport, target)
}

// IsPartiallyVisible reports whether any part of the target shows through both
// the destination's active area and the viewport.
func IsPartiallyVisible(args Args) bool {
	return isVisible(args, geometry.IsPartiallyVisibleThroughFrame)
}

// IsTotallyVisible reports whether the whole target shows through both frames.
func IsTotallyVisible(args Args) bool {
	return isVisible(args, geometry.IsTotallyVisibleThroughFrame)
}

// IsTotallyVisibleOnAxis only considers the destination's main axis.
func IsTotallyVisibleOnAxis(args Args) bool {
	return isVisible(args, geometry.IsTotallyVisibleThroughFrameOnAxis(args.Destination.Axis))
}

// GroupsArgs feeds GetDisplacementGroups.
type GroupsArgs struct {
	// AfterDragging are the displaced draggables in destination order.
	AfterDragging []schemas.DraggableDimension
	Destination   schemas.DroppableDimension
	DisplacedBy   schemas.DisplacedBy
	Viewport      geometry.Rect
	// Last is the previous partition; nil when there is none.
	Last *schemas.DisplacementGroups
	// ForceShouldAnimate overrides the animation flag when set.
	ForceShouldAnimate *bool
}

func shouldAnimate(id schemas.DraggableID, last *schemas.DisplacementGroups, force *bool) bool {
	if force != nil {
		return *force
	}
	if last == nil {
		return true
	}
	if last.Invisible[id] {
		return false
	}
	if previous, ok := last.Visible[id]; ok {
		return previous.ShouldAnimate
	}
	return true
}

// target is the margin box grown on its leading side by the displacement, so
// an item about to slide into view counts as visible.
func target(draggable schemas.DraggableDimension, displacedBy schemas.DisplacedBy) geometry.Rect {
	return geometry.Expand(draggable.Page.MarginBox, geometry.Spacing{
		Top:  displacedBy.Point.Y,
		Left: displacedBy.Point.X,
	})
}

// GetDisplacementGroups splits the displaced draggables into visible and
// invisible groups.
func GetDisplacementGroups(args GroupsArgs) schemas.DisplacementGroups {
	groups := schemas.EmptyGroups()
	for _, draggable := range args.AfterDragging {
		id := draggable.Descriptor.ID
		groups.All = append(groups.All, id)

		visible := IsPartiallyVisible(Args{
			Target:                    target(draggable, args.DisplacedBy),
			Destination:               args.Destination,
			Viewport:                  args.Viewport,
			WithDroppableDisplacement: true,
		})
		if !visible {
			groups.Invisible[id] = true
			continue
		}
		groups.Visible[id] = schemas.Displacement{
			DraggableID:   id,
			ShouldAnimate: shouldAnimate(id, args.Last, args.ForceShouldAnimate),
		}
	}
	return groups
}

func lookup(ids []schemas.DraggableID, draggables schemas.DraggableDimensionMap) []schemas.DraggableDimension {
	out := make([]schemas.DraggableDimension, 0, len(ids))
	for _, id := range ids {
		if d, ok := draggables[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Recompute refreshes the visibility of an existing impact, for example after
// a scroll.
func Recompute(impact schemas.DragImpact, destination schemas.DroppableDimension, viewport schemas.Viewport, draggables schemas.DraggableDimensionMap, force *bool) schemas.DragImpact {
	last := impact.Displaced
	impact.Displaced = GetDisplacementGroups(GroupsArgs{
		AfterDragging:      lookup(last.All, draggables),
		Destination:        destination,
		DisplacedBy:        impact.DisplacedBy,
		Viewport:           viewport.Frame,
		Last:               &last,
		ForceShouldAnimate: force,
	})
	return impact
}

// SpeculativelyIncrease keeps displaced items visible if they would become
// visible once a pending jump scroll of maxScrollChange lands, on either the
// viewport or the destination.
func SpeculativelyIncrease(impact schemas.DragImpact, destination schemas.DroppableDimension, viewport schemas.Viewport, draggables schemas.DraggableDimensionMap, maxScrollChange geometry.Position) schemas.DragImpact {
	scrolledViewport := dimension.ScrollViewport(viewport, viewport.Scroll.Current.Add(maxScrollChange))
	scrolledDroppable := destination
	if destination.Frame != nil {
		// The frame exists, so scrolling cannot fail.
		scrolledDroppable, _ = dimension.ScrollDroppable(destination, destination.Frame.Scroll.Current.Add(maxScrollChange))
	}

	last := impact.Displaced
	affected := lookup(last.All, draggables)
	noAnimation := false

	withViewportScroll := GetDisplacementGroups(GroupsArgs{
		AfterDragging:      affected,
		Destination:        destination,
		DisplacedBy:        impact.DisplacedBy,
		Viewport:           scrolledViewport.Frame,
		Last:               &last,
		ForceShouldAnimate: &noAnimation,
	})
	withDroppableScroll := GetDisplacementGroups(GroupsArgs{
		AfterDragging:      affected,
		Destination:        scrolledDroppable,
		DisplacedBy:        impact.DisplacedBy,
		Viewport:           viewport.Frame,
		Last:               &last,
		ForceShouldAnimate: &noAnimation,
	})

	result := schemas.DisplacementGroups{
		All:       last.All,
		Visible:   map[schemas.DraggableID]schemas.Displacement{},
		Invisible: map[schemas.DraggableID]bool{},
	}
	for _, id := range last.All {
		if d, ok := firstVisible(id, last, withViewportScroll, withDroppableScroll); ok {
			result.Visible[id] = d
			continue
		}
		result.Invisible[id] = true
	}
	impact.Displaced = result
	return impact
}

func firstVisible(id schemas.DraggableID, groups ...schemas.DisplacementGroups) (schemas.Displacement, bool) {
	for _, g := range groups {
		if d, ok := g.Visible[id]; ok {
			return d, true
		}
	}
	return schemas.Displacement{}, false
}
