// File: pkg/geometry/position.go
package geometry

import "math"

// Position is a point (or a vector) in pixel space.
type Position struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
}

// Origin is the zero vector.
var Origin = Position{}

// Add returns p + o.
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Subtract returns p - o.
func (p Position) Subtract(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Negate flips both components. Zero stays zero (no negative zero).
func (p Position) Negate() Position {
	return Position{X: cleanZero(-p.X), Y: cleanZero(-p.Y)}
}

// IsEqual reports exact component equality.
func (p Position) IsEqual(o Position) bool {
	return p.X == o.X && p.Y == o.Y
}

// Apply runs fn over both components.
func (p Position) Apply(fn func(float64) float64) Position {
	return Position{X: fn(p.X), Y: fn(p.Y)}
}

// Distance is the Euclidean distance between two points.
func Distance(a, b Position) float64 {
	return math.Sqrt((b.X-a.X)*(b.X-a.X) + (b.Y-a.Y)*(b.Y-a.Y))
}

// Closest returns the smallest distance from target to any of the candidates.
// An empty candidate list yields +Inf.
func Closest(target Position, candidates []Position) float64 {
	best := math.Inf(1)
	for _, c := range candidates {
		if d := Distance(target, c); d < best {
			best = d
		}
	}
	return best
}

// cleanZero turns -0 into 0 so equality checks and map keys stay stable.
func cleanZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
