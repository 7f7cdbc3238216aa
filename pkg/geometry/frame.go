// File: pkg/geometry/frame.go
package geometry

// IsPositionInFrame reports whether p lies inside frame (edges inclusive).
func IsPositionInFrame(frame Rect, p Position) bool {
	return IsWithin(frame.Top, frame.Bottom)(p.Y) && IsWithin(frame.Left, frame.Right)(p.X)
}

// IsPartiallyVisibleThroughFrame reports whether any part of subject can be seen
// through frame. A subject that is larger than the frame on an axis still counts
// when it covers the frame on that axis.
func IsPartiallyVisibleThroughFrame(frame, subject Rect) bool {
	withinVertical := IsWithin(frame.Top, frame.Bottom)
	withinHorizontal := IsWithin(frame.Left, frame.Right)

	isContained := withinVertical(subject.Top) && withinVertical(subject.Bottom) &&
		withinHorizontal(subject.Left) && withinHorizontal(subject.Right)
	if isContained {
		return true
	}

	partiallyVertical := withinVertical(subject.Top) || withinVertical(subject.Bottom)
	partiallyHorizontal := withinHorizontal(subject.Left) || withinHorizontal(subject.Right)
	if partiallyVertical && partiallyHorizontal {
		return true
	}

	biggerVertically := subject.Top < frame.Top && subject.Bottom > frame.Bottom
	biggerHorizontally := subject.Left < frame.Left && subject.Right > frame.Right
	if biggerVertically && biggerHorizontally {
		return true
	}

	return (biggerVertically && partiallyHorizontal) || (biggerHorizontally && partiallyVertical)
}

// IsTotallyVisibleThroughFrame reports whether subject fits entirely inside frame.
func IsTotallyVisibleThroughFrame(frame, subject Rect) bool {
	withinVertical := IsWithin(frame.Top, frame.Bottom)
	withinHorizontal := IsWithin(frame.Left, frame.Right)
	return withinVertical(subject.Top) && withinVertical(subject.Bottom) &&
		withinHorizontal(subject.Left) && withinHorizontal(subject.Right)
}

// IsTotallyVisibleThroughFrameOnAxis only checks the main axis of the given axis.
func IsTotallyVisibleThroughFrameOnAxis(axis Axis) func(frame, subject Rect) bool {
	return func(frame, subject Rect) bool {
		if axis.IsVertical() {
			within := IsWithin(frame.Top, frame.Bottom)
			return within(subject.Top) && within(subject.Bottom)
		}
		within := IsWithin(frame.Left, frame.Right)
		return within(subject.Left) && within(subject.Right)
	}
}
