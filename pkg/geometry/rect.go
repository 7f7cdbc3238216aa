// File: pkg/geometry/rect.go
package geometry

// -- Core Structures: Rectangles and Edges --

// Spacing holds the four edge sizes of a margin, border or padding.
type Spacing struct {
	Top    float64 `json:"top" mapstructure:"top"`
	Right  float64 `json:"right" mapstructure:"right"`
	Bottom float64 `json:"bottom" mapstructure:"bottom"`
	Left   float64 `json:"left" mapstructure:"left"`
}

// Rect is an axis-aligned rectangle described by its edges.
// Keeping edges (rather than x/y/width/height) avoids rounding drift when a
// rectangle is shifted many times during a drag.
type Rect struct {
	Top    float64 `json:"top" mapstructure:"top"`
	Right  float64 `json:"right" mapstructure:"right"`
	Bottom float64 `json:"bottom" mapstructure:"bottom"`
	Left   float64 `json:"left" mapstructure:"left"`
}

// RectFromXYWH builds a Rect from an origin and a size.
func RectFromXYWH(x, y, width, height float64) Rect {
	return Rect{Top: y, Left: x, Right: x + width, Bottom: y + height}
}

func (r Rect) X() float64      { return r.Left }
func (r Rect) Y() float64      { return r.Top }
func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Position {
	return Position{
		X: (r.Right + r.Left) / 2,
		Y: (r.Bottom + r.Top) / 2,
	}
}

// Expand grows the rectangle outward by the given spacing.
func Expand(r Rect, s Spacing) Rect {
	return Rect{
		Top:    r.Top - s.Top,
		Left:   r.Left - s.Left,
		Bottom: r.Bottom + s.Bottom,
		Right:  r.Right + s.Right,
	}
}

// Shrink pulls the rectangle inward by the given spacing.
func Shrink(r Rect, s Spacing) Rect {
	return Rect{
		Top:    r.Top + s.Top,
		Left:   r.Left + s.Left,
		Bottom: r.Bottom - s.Bottom,
		Right:  r.Right - s.Right,
	}
}

// Offset shifts the rectangle by a vector.
func Offset(r Rect, p Position) Rect {
	return Rect{
		Top:    r.Top + p.Y,
		Left:   r.Left + p.X,
		Bottom: r.Bottom + p.Y,
		Right:  r.Right + p.X,
	}
}

// Clip intersects subject with frame. It returns false when the intersection
// has no area.
func Clip(frame, subject Rect) (Rect, bool) {
	result := Rect{
		Top:    max(subject.Top, frame.Top),
		Right:  min(subject.Right, frame.Right),
		Bottom: min(subject.Bottom, frame.Bottom),
		Left:   max(subject.Left, frame.Left),
	}
	if result.Width() <= 0 || result.Height() <= 0 {
		return Rect{}, false
	}
	return result, true
}

// Corners returns top-left, top-right, bottom-left and bottom-right.
func Corners(r Rect) []Position {
	return []Position{
		{X: r.Left, Y: r.Top},
		{X: r.Right, Y: r.Top},
		{X: r.Left, Y: r.Bottom},
		{X: r.Right, Y: r.Bottom},
	}
}

// IsWithin returns a closed-interval membership check for [lowerBound, upperBound].
func IsWithin(lowerBound, upperBound float64) func(float64) bool {
	return func(value float64) bool {
		return lowerBound <= value && value <= upperBound
	}
}
