package autoscroll

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

func remainder(target, max float64) float64 {
	if target < 0 {
		return target
	}
	if target > max {
		return target - max
	}
	return 0
}

// overlap is how far current+change would land outside [0, max]. The zero
// position means the change fits.
func overlap(current, max, change geometry.Position) (geometry.Position, bool) {
	target := current.Add(change)
	o := geometry.Position{X: remainder(target.X, max.X), Y: remainder(target.Y, max.Y)}
	if o.IsEqual(geometry.Origin) {
		return geometry.Origin, false
	}
	return o, true
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// canPartiallyScroll reports whether at least one pixel of change is possible.
func canPartiallyScroll(current, max, change geometry.Position) bool {
	smallest := geometry.Position{X: sign(change.X), Y: sign(change.Y)}
	o, ok := overlap(current, max, smallest)
	if !ok {
		return true
	}
	if smallest.X != 0 && o.X == 0 {
		return true
	}
	return smallest.Y != 0 && o.Y == 0
}

// CanScrollWindow reports whether the window can move at all in the direction of change.
func CanScrollWindow(viewport schemas.Viewport, change geometry.Position) bool {
	return canPartiallyScroll(viewport.Scroll.Current, viewport.Scroll.Max, change)
}

// CanScrollDroppable reports whether the droppable's frame can move at all in
// the direction of change.
func CanScrollDroppable(droppable schemas.DroppableDimension, change geometry.Position) bool {
	if droppable.Frame == nil {
		return false
	}
	return canPartiallyScroll(droppable.Frame.Scroll.Current, droppable.Frame.Scroll.Max, change)
}

// WindowOverlap is the part of change the window cannot absorb.
func WindowOverlap(viewport schemas.Viewport, change geometry.Position) (geometry.Position, bool) {
	if !CanScrollWindow(viewport, change) {
		return geometry.Origin, false
	}
	return overlap(viewport.Scroll.Current, viewport.Scroll.Max, change)
}

// DroppableOverlap is the part of change the droppable cannot absorb.
func DroppableOverlap(droppable schemas.DroppableDimension, change geometry.Position) (geometry.Position, bool) {
	if !CanScrollDroppable(droppable, change) {
		return geometry.Origin, false
	}
	return overlap(droppable.Frame.Scroll.Current, droppable.Frame.Scroll.Max, change)
}
