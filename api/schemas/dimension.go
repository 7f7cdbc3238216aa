// File: api/schemas/dimension.go
package schemas

import "github.com/xkilldash9x/dropzone/pkg/geometry"

// -- Identifiers --

type DraggableID string
type DroppableID string

// TypeID groups draggables and droppables that may interact with each other.
type TypeID string

// DroppableMode selects how a droppable lays out its children.
type DroppableMode string

const (
	ModeStandard DroppableMode = "standard"
	// ModeVirtual lists may mount and unmount children while a drag is in progress.
	ModeVirtual DroppableMode = "virtual"
)

// -- Descriptors --

// DraggableDescriptor is the identity of a draggable.
type DraggableDescriptor struct {
	ID          DraggableID `json:"id"`
	Index       int         `json:"index"`
	DroppableID DroppableID `json:"droppableId"`
	Type        TypeID      `json:"type"`
}

// DroppableDescriptor is the identity of a droppable.
type DroppableDescriptor struct {
	ID   DroppableID   `json:"id"`
	Type TypeID        `json:"type"`
	Mode DroppableMode `json:"mode"`
}

// -- Draggables --

// Placeholder describes the space a draggable reserves once it leaves its list.
type Placeholder struct {
	Client  geometry.BoxModel `json:"client"`
	TagName string            `json:"tagName"`
	Display string            `json:"display"`
}

// DraggableDimension is a measured snapshot of a draggable.
type DraggableDimension struct {
	Descriptor  DraggableDescriptor `json:"descriptor"`
	Placeholder Placeholder         `json:"placeholder"`
	// Client is relative to the viewport, Page to the document.
	Client geometry.BoxModel `json:"client"`
	Page   geometry.BoxModel `json:"page"`
	// DisplaceBy is the size of the margin box.
	DisplaceBy geometry.Position `json:"displaceBy"`
}

// -- Droppables --

// ScrollDifference is how far something has scrolled since the drag started.
type ScrollDifference struct {
	Value geometry.Position `json:"value"`
	// Displacement is the inverse of Value: the visual shift of the content.
	Displacement geometry.Position `json:"displacement"`
}

// ScrollDetails tracks one scroll container through a drag.
type ScrollDetails struct {
	Initial geometry.Position `json:"initial"`
	Current geometry.Position `json:"current"`
	Max     geometry.Position `json:"max"`
	Diff    ScrollDifference  `json:"diff"`
}

// ScrollSize is the total scrollable content size of a container.
type ScrollSize struct {
	ScrollWidth  float64 `json:"scrollWidth"`
	ScrollHeight float64 `json:"scrollHeight"`
}

// Scrollable is the scroll container (frame) of a droppable.
type Scrollable struct {
	PageMarginBox     geometry.Rect     `json:"pageMarginBox"`
	FrameClient       geometry.BoxModel `json:"frameClient"`
	ScrollSize        ScrollSize        `json:"scrollSize"`
	ShouldClipSubject bool              `json:"shouldClipSubject"`
	Scroll            ScrollDetails     `json:"scroll"`
}

// PlaceholderInSubject records the growth applied to a foreign droppable so the
// placeholder fits.
type PlaceholderInSubject struct {
	// IncreasedBy is nil when the droppable already had enough room.
	IncreasedBy       *geometry.Position `json:"increasedBy,omitempty"`
	PlaceholderSize   geometry.Position  `json:"placeholderSize"`
	OldFrameMaxScroll *geometry.Position `json:"oldFrameMaxScroll,omitempty"`
}

// DroppableSubject is the area of a droppable that participates in collisions.
type DroppableSubject struct {
	Page            geometry.BoxModel     `json:"page"`
	WithPlaceholder *PlaceholderInSubject `json:"withPlaceholder,omitempty"`
	// Active is nil when the subject is completely clipped away.
	Active *geometry.Rect `json:"active,omitempty"`
}

// DroppableDimension is a measured snapshot of a droppable.
type DroppableDimension struct {
	Descriptor       DroppableDescriptor `json:"descriptor"`
	Axis             geometry.Axis       `json:"axis"`
	IsEnabled        bool                `json:"isEnabled"`
	IsCombineEnabled bool                `json:"isCombineEnabled"`
	IsFixedOnPage    bool                `json:"isFixedOnPage"`
	Client           geometry.BoxModel   `json:"client"`
	Page             geometry.BoxModel   `json:"page"`
	Frame            *Scrollable         `json:"frame,omitempty"`
	Subject          DroppableSubject    `json:"subject"`
}

type DraggableDimensionMap map[DraggableID]DraggableDimension
type DroppableDimensionMap map[DroppableID]DroppableDimension

// DimensionMap is the full registry snapshot used by a drag.
type DimensionMap struct {
	Draggables DraggableDimensionMap `json:"draggables"`
	Droppables DroppableDimensionMap `json:"droppables"`
}

// Critical is the (draggable, droppable) pair captured at lift.
type Critical struct {
	Draggable DraggableDescriptor `json:"draggable"`
	Droppable DroppableDescriptor `json:"droppable"`
}

// Viewport is the page viewport in page coordinates.
type Viewport struct {
	Frame  geometry.Rect `json:"frame"`
	Scroll ScrollDetails `json:"scroll"`
}
