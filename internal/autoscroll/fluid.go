// Package autoscroll scrolls the window and scroll containers while a drag is
// in progress: smoothly as the pointer nears an edge, or in one jump when a
// keyboard move lands outside the visible area.
package autoscroll

import (
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/config"
	"github.com/xkilldash9x/dropzone/internal/frame"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// minScroll is the smallest non-zero scroll ever requested.
const minScroll = 1.0

// Target performs the scrolls requested by the scrollers.
type Target interface {
	ScrollWindow(change geometry.Position)
	ScrollDroppable(id schemas.DroppableID, change geometry.Position)
}

// Input is the part of a drag the fluid scroller looks at.
type Input struct {
	// Center is the dragged item's current page border box center.
	Center                geometry.Position
	DraggableID           schemas.DraggableID
	Dimensions            schemas.DimensionMap
	Viewport              schemas.Viewport
	Impact                schemas.DragImpact
	IsWindowScrollAllowed bool
}

type plan struct {
	window      *geometry.Position
	droppableID schemas.DroppableID
	droppable   *geometry.Position
}

// Fluid scrolls in proportion to how close the dragged item is to an edge,
// at most once per frame and target.
type Fluid struct {
	cfg    config.AutoScrollConfig
	clock  frame.Clock
	sched  frame.Scheduler
	target Target
	logger *zap.Logger

	mu               sync.Mutex
	started          bool
	dragStartTime    time.Time
	useTimeDampening bool
	window           *throttled[geometry.Position]
	droppables       map[schemas.DroppableID]*throttled[geometry.Position]
}

// NewFluid creates a fluid scroller.
func NewFluid(cfg config.AutoScrollConfig, clock frame.Clock, sched frame.Scheduler, target Target, logger *zap.Logger) *Fluid {
	f := &Fluid{
		cfg:        cfg,
		clock:      clock,
		sched:      sched,
		target:     target,
		logger:     logger.With(zap.String("component", "fluid_scroller")),
		droppables: make(map[schemas.DroppableID]*throttled[geometry.Position]),
	}
	f.window = newThrottled(sched, target.ScrollWindow)
	return f
}

// Start begins a drag. Time dampening is only used when the item was lifted
// somewhere that would already scroll, so a lift near an edge does not
// instantly race off.
func (f *Fluid) Start(in Input) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started {
		f.logger.Warn("Fluid scroller started twice without stopping.")
	}
	dryRun := f.compute(in, time.Time{}, false)
	f.useTimeDampening = dryRun.window != nil || dryRun.droppable != nil
	f.dragStartTime = f.clock.Now()
	f.started = true
}

// Scroll requests whatever scroll the current drag position calls for.
func (f *Fluid) Scroll(in Input) {
	f.mu.Lock()
	if !f.started {
		f.mu.Unlock()
		return
	}
	p := f.compute(in, f.dragStartTime, f.useTimeDampening)
	var droppable *throttled[geometry.Position]
	if p.droppable != nil {
		droppable = f.droppableThrottle(p.droppableID)
	}
	f.mu.Unlock()

	if p.window != nil {
		f.window.call(*p.window)
		return
	}
	if droppable != nil {
		droppable.call(*p.droppable)
	}
}

// Stop cancels any pending scroll.
func (f *Fluid) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		return
	}
	f.started = false
	f.window.stop()
	for _, t := range f.droppables {
		t.stop()
	}
}

func (f *Fluid) droppableThrottle(id schemas.DroppableID) *throttled[geometry.Position] {
	t, ok := f.droppables[id]
	if !ok {
		t = newThrottled(f.sched, func(change geometry.Position) {
			f.target.ScrollDroppable(id, change)
		})
		f.droppables[id] = t
	}
	return t
}

func (f *Fluid) compute(in Input, dragStartTime time.Time, useTimeDampening bool) plan {
	draggable, ok := in.Dimensions.Draggables[in.DraggableID]
	if !ok {
		return plan{}
	}
	subject := draggable.Page.MarginBox

	if in.IsWindowScrollAllowed {
		change, ok := f.getScroll(in.Viewport.Frame, subject, in.Center, dragStartTime, useTimeDampening)
		if ok && CanScrollWindow(in.Viewport, change) {
			change = clampByOverlap(change, in.Viewport.Scroll.Current, in.Viewport.Scroll.Max)
			return plan{window: &change}
		}
	}

	droppable, ok := bestScrollableDroppable(in.Center, in.Impact, in.Dimensions.Droppables)
	if !ok {
		return plan{}
	}
	change, ok := f.getScroll(droppable.Frame.PageMarginBox, subject, in.Center, dragStartTime, useTimeDampening)
	if !ok || !CanScrollDroppable(droppable, change) {
		return plan{}
	}
	change = clampByOverlap(change, droppable.Frame.Scroll.Current, droppable.Frame.Scroll.Max)
	return plan{droppableID: droppable.Descriptor.ID, droppable: &change}
}

// clampByOverlap trims change so the resulting scroll stays within [0, max].
func clampByOverlap(change, current, max geometry.Position) geometry.Position {
	if o, ok := overlap(current, max, change); ok {
		return change.Subtract(o)
	}
	return change
}

// bestScrollableDroppable is the destination when it scrolls, or else the
// scroll container under center.
func bestScrollableDroppable(center geometry.Position, impact schemas.DragImpact, droppables schemas.DroppableDimensionMap) (schemas.DroppableDimension, bool) {
	if id, ok := impact.DraggingOver(); ok {
		d, ok := droppables[id]
		if !ok || d.Frame == nil {
			return schemas.DroppableDimension{}, false
		}
		return d, true
	}

	ids := make([]schemas.DroppableID, 0, len(droppables))
	for id := range droppables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		d := droppables[id]
		if d.Frame != nil && geometry.IsPositionInFrame(d.Frame.PageMarginBox, center) {
			return d, true
		}
	}
	return schemas.DroppableDimension{}, false
}

// -- Scroll curve --

type thresholds struct {
	startScrollingFrom float64
	maxScrollValueAt   float64
}

func (f *Fluid) thresholdsFor(size float64) thresholds {
	return thresholds{
		startScrollingFrom: size * f.cfg.StartScrollingFrom,
		maxScrollValueAt:   size * f.cfg.MaxScrollValueAt,
	}
}

func percentage(startOfRange, endOfRange, current float64) float64 {
	span := endOfRange - startOfRange
	if span == 0 {
		return 0
	}
	return (current - startOfRange) / span
}

func ease(percent float64) float64 {
	return math.Pow(percent, 2)
}

func (f *Fluid) valueFromDistance(distanceToEdge float64, t thresholds) float64 {
	if distanceToEdge > t.startScrollingFrom {
		return 0
	}
	if distanceToEdge <= t.maxScrollValueAt {
		return f.cfg.MaxPixelScroll
	}
	if distanceToEdge == t.startScrollingFrom {
		return minScroll
	}
	fromMax := percentage(t.maxScrollValueAt, t.startScrollingFrom, distanceToEdge)
	return math.Ceil(f.cfg.MaxPixelScroll * ease(1-fromMax))
}

func (f *Fluid) dampenByTime(proposed float64, dragStartTime time.Time) float64 {
	runTime := f.clock.Now().Sub(dragStartTime)
	if runTime >= f.cfg.StopDampeningAt {
		return proposed
	}
	if runTime < f.cfg.AccelerateAt {
		return minScroll
	}
	between := percentage(float64(f.cfg.AccelerateAt), float64(f.cfg.StopDampeningAt), float64(runTime))
	return math.Ceil(proposed * ease(between))
}

func (f *Fluid) value(distanceToEdge float64, t thresholds, dragStartTime time.Time, useTimeDampening bool) float64 {
	scroll := f.valueFromDistance(distanceToEdge, t)
	if scroll == 0 {
		return 0
	}
	if !useTimeDampening {
		return scroll
	}
	return math.Max(f.dampenByTime(scroll, dragStartTime), minScroll)
}

// onAxis scrolls toward whichever edge center is nearer to.
func (f *Fluid) onAxis(size, toStart, toEnd float64, dragStartTime time.Time, useTimeDampening bool) float64 {
	t := f.thresholdsFor(size)
	if toEnd < toStart {
		return f.value(toEnd, t, dragStartTime, useTimeDampening)
	}
	if v := f.value(toStart, t, dragStartTime, useTimeDampening); v != 0 {
		return -v
	}
	return 0
}

func (f *Fluid) getScroll(container, subject geometry.Rect, center geometry.Position, dragStartTime time.Time, useTimeDampening bool) (geometry.Position, bool) {
	required := geometry.Position{
		X: f.onAxis(container.Width(), center.X-container.Left, container.Right-center.X, dragStartTime, useTimeDampening),
		Y: f.onAxis(container.Height(), center.Y-container.Top, container.Bottom-center.Y, dragStartTime, useTimeDampening),
	}
	if required.IsEqual(geometry.Origin) {
		return geometry.Origin, false
	}

	limited, ok := adjustForSizeLimits(container, subject, required)
	if !ok || limited.IsEqual(geometry.Origin) {
		return geometry.Origin, false
	}
	return limited, true
}

// adjustForSizeLimits stops scrolling on any axis where the dragged item is
// bigger than the container.
func adjustForSizeLimits(container, subject geometry.Rect, proposed geometry.Position) (geometry.Position, bool) {
	tooBigVertically := subject.Height() > container.Height()
	tooBigHorizontally := subject.Width() > container.Width()

	switch {
	case !tooBigVertically && !tooBigHorizontally:
		return proposed, true
	case tooBigVertically && tooBigHorizontally:
		return geometry.Origin, false
	case tooBigVertically:
		return geometry.Position{X: proposed.X}, true
	default:
		return geometry.Position{Y: proposed.Y}, true
	}
}
