// File: pkg/geometry/axis.go
package geometry

// Direction is the primary layout direction of a list.
type Direction string

const (
	Vertical   Direction = "vertical"
	Horizontal Direction = "horizontal"
)

// Axis gives axis-agnostic access to positions, rectangles and spacings.
// For a vertical list the main axis is y (top/bottom/height) and the cross
// axis is x (left/right/width); horizontal lists swap them.
type Axis struct {
	Direction Direction `json:"direction"`
}

var (
	VerticalAxis   = Axis{Direction: Vertical}
	HorizontalAxis = Axis{Direction: Horizontal}
)

// AxisFor returns the axis for a direction, defaulting to vertical.
func AxisFor(d Direction) Axis {
	if d == Horizontal {
		return HorizontalAxis
	}
	return VerticalAxis
}

func (a Axis) IsVertical() bool { return a.Direction != Horizontal }

// -- Positions --

// Main returns the main-axis component of p.
func (a Axis) Main(p Position) float64 {
	if a.IsVertical() {
		return p.Y
	}
	return p.X
}

// Cross returns the cross-axis component of p.
func (a Axis) Cross(p Position) float64 {
	if a.IsVertical() {
		return p.X
	}
	return p.Y
}

// Patch builds a position from a main-axis and a cross-axis value.
func (a Axis) Patch(main, cross float64) Position {
	if a.IsVertical() {
		return Position{X: cross, Y: main}
	}
	return Position{X: main, Y: cross}
}

// -- Rectangles --

func (a Axis) Start(r Rect) float64 {
	if a.IsVertical() {
		return r.Top
	}
	return r.Left
}

func (a Axis) End(r Rect) float64 {
	if a.IsVertical() {
		return r.Bottom
	}
	return r.Right
}

func (a Axis) CrossStart(r Rect) float64 {
	if a.IsVertical() {
		return r.Left
	}
	return r.Top
}

func (a Axis) CrossEnd(r Rect) float64 {
	if a.IsVertical() {
		return r.Right
	}
	return r.Bottom
}

func (a Axis) Size(r Rect) float64 {
	if a.IsVertical() {
		return r.Height()
	}
	return r.Width()
}

func (a Axis) CrossSize(r Rect) float64 {
	if a.IsVertical() {
		return r.Width()
	}
	return r.Height()
}

// WithEnd returns r with its main-axis end edge replaced.
func (a Axis) WithEnd(r Rect, value float64) Rect {
	if a.IsVertical() {
		r.Bottom = value
	} else {
		r.Right = value
	}
	return r
}

// -- Spacing --

func (a Axis) SpacingStart(s Spacing) float64 {
	if a.IsVertical() {
		return s.Top
	}
	return s.Left
}

func (a Axis) SpacingEnd(s Spacing) float64 {
	if a.IsVertical() {
		return s.Bottom
	}
	return s.Right
}

func (a Axis) SpacingCrossStart(s Spacing) float64 {
	if a.IsVertical() {
		return s.Left
	}
	return s.Top
}
