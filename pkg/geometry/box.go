// File: pkg/geometry/box.go
package geometry

// BoxModel is the full set of boxes for one element, mirroring the CSS box model.
type BoxModel struct {
	MarginBox  Rect `json:"marginBox"`
	BorderBox  Rect `json:"borderBox"`
	PaddingBox Rect `json:"paddingBox"`
	ContentBox Rect `json:"contentBox"`

	Margin  Spacing `json:"margin"`
	Border  Spacing `json:"border"`
	Padding Spacing `json:"padding"`
}

// CreateBox derives every box from the border box and the edge sizes.
func CreateBox(borderBox Rect, margin, border, padding Spacing) BoxModel {
	paddingBox := Shrink(borderBox, border)
	return BoxModel{
		MarginBox:  Expand(borderBox, margin),
		BorderBox:  borderBox,
		PaddingBox: paddingBox,
		ContentBox: Shrink(paddingBox, padding),
		Margin:     margin,
		Border:     border,
		Padding:    padding,
	}
}

// Offset moves every box by the given vector; edge sizes are unchanged.
func (b BoxModel) Offset(p Position) BoxModel {
	return CreateBox(Offset(b.BorderBox, p), b.Margin, b.Border, b.Padding)
}

// WithScroll converts a viewport-relative box into a page-relative box.
func (b BoxModel) WithScroll(scroll Position) BoxModel {
	return b.Offset(scroll)
}
