// File: api/schemas/drag.go
package schemas

import "github.com/xkilldash9x/dropzone/pkg/geometry"

// MovementMode says what kind of input is driving the drag.
type MovementMode string

const (
	// FluidMode is pointer driven.
	FluidMode MovementMode = "FLUID"
	// SnapMode is keyboard driven and moves in discrete steps.
	SnapMode MovementMode = "SNAP"
)

// DropReason says how the drag ended.
type DropReason string

const (
	ReasonDrop   DropReason = "DROP"
	ReasonCancel DropReason = "CANCEL"
)

// Positions of the drag in one coordinate space.
type Positions struct {
	Selection       geometry.Position `json:"selection"`
	BorderBoxCenter geometry.Position `json:"borderBoxCenter"`
	// Offset is how far the item has moved from where it was lifted.
	Offset geometry.Position `json:"offset"`
}

// DragPositions holds the viewport-relative and page-relative positions.
type DragPositions struct {
	Client Positions `json:"client"`
	Page   Positions `json:"page"`
}

// DragStart is handed to responders when a drag begins.
type DragStart struct {
	DraggableID DraggableID       `json:"draggableId"`
	Type        TypeID            `json:"type"`
	Source      DraggableLocation `json:"source"`
	Mode        MovementMode      `json:"mode"`
}

// DragUpdate is handed to responders whenever the destination changes.
type DragUpdate struct {
	DragStart
	Destination *DraggableLocation `json:"destination,omitempty"`
	Combine     *Combine           `json:"combine,omitempty"`
}

// DropResult is the final outcome of a drag.
type DropResult struct {
	DragUpdate
	Reason DropReason `json:"reason"`
}

// CompletedDrag is what is left once a drop has been resolved.
type CompletedDrag struct {
	Critical      Critical      `json:"critical"`
	Result        DropResult    `json:"result"`
	Impact        DragImpact    `json:"impact"`
	AfterCritical AfterCritical `json:"afterCritical"`
}

// DroppablePublish is a droppable whose scroll changed during a collection.
type DroppablePublish struct {
	DroppableID DroppableID       `json:"droppableId"`
	Scroll      geometry.Position `json:"scroll"`
}

// Published is the result of one virtual-list collection pass.
type Published struct {
	Additions []DraggableDimension `json:"additions"`
	Removals  []DraggableID        `json:"removals"`
	Modified  []DroppablePublish   `json:"modified"`
}
