// File: api/schemas/impact.go
package schemas

import "github.com/xkilldash9x/dropzone/pkg/geometry"

// DisplacedBy is how far displaced siblings move, expressed along the
// destination's main axis.
type DisplacedBy struct {
	Value float64           `json:"value"`
	Point geometry.Position `json:"point"`
}

// Displacement is the animation record for one visibly displaced draggable.
type Displacement struct {
	DraggableID   DraggableID `json:"draggableId"`
	ShouldAnimate bool        `json:"shouldAnimate"`
}

// DisplacementGroups partitions the displaced draggables.
type DisplacementGroups struct {
	// All is ordered by index in the destination.
	All       []DraggableID                `json:"all"`
	Visible   map[DraggableID]Displacement `json:"visible"`
	Invisible map[DraggableID]bool         `json:"invisible"`
}

// IsDisplaced reports whether id is in either group.
func (g DisplacementGroups) IsDisplaced(id DraggableID) bool {
	if _, ok := g.Visible[id]; ok {
		return true
	}
	return g.Invisible[id]
}

// EmptyGroups returns a fresh, empty partition.
func EmptyGroups() DisplacementGroups {
	return DisplacementGroups{
		All:       []DraggableID{},
		Visible:   map[DraggableID]Displacement{},
		Invisible: map[DraggableID]bool{},
	}
}

// DraggableLocation is a slot in a droppable.
type DraggableLocation struct {
	DroppableID DroppableID `json:"droppableId"`
	Index       int         `json:"index"`
}

// Combine names the draggable that the dragged item would merge with.
type Combine struct {
	DraggableID DraggableID `json:"draggableId"`
	DroppableID DroppableID `json:"droppableId"`
}

type ImpactLocationType string

const (
	AtReorder ImpactLocationType = "REORDER"
	AtCombine ImpactLocationType = "COMBINE"
)

// ImpactLocation is either a reorder destination or a combine target.
type ImpactLocation struct {
	Type        ImpactLocationType `json:"type"`
	Destination DraggableLocation  `json:"destination,omitempty"`
	Combine     Combine            `json:"combine,omitempty"`
}

// DragImpact is the effect of the current drag position.
type DragImpact struct {
	Displaced   DisplacementGroups `json:"displaced"`
	DisplacedBy DisplacedBy        `json:"displacedBy"`
	// At is nil when the dragged item is not over any droppable.
	At *ImpactLocation `json:"at,omitempty"`
}

// NoImpact is the impact of a drag that is not over anything.
func NoImpact() DragImpact {
	return DragImpact{Displaced: EmptyGroups()}
}

// Destination returns the reorder location, if any.
func (i DragImpact) Destination() (DraggableLocation, bool) {
	if i.At == nil || i.At.Type != AtReorder {
		return DraggableLocation{}, false
	}
	return i.At.Destination, true
}

// CombineTarget returns the combine target, if any.
func (i DragImpact) CombineTarget() (Combine, bool) {
	if i.At == nil || i.At.Type != AtCombine {
		return Combine{}, false
	}
	return i.At.Combine, true
}

// DraggingOver returns the droppable the impact targets.
func (i DragImpact) DraggingOver() (DroppableID, bool) {
	if i.At == nil {
		return "", false
	}
	if i.At.Type == AtCombine {
		return i.At.Combine.DroppableID, true
	}
	return i.At.Destination.DroppableID, true
}

// AfterCritical is captured once at lift: the home siblings that started after
// the dragged item and the displacement used for them.
type AfterCritical struct {
	InVirtualList bool                 `json:"inVirtualList"`
	DisplacedBy   DisplacedBy          `json:"displacedBy"`
	Effected      map[DraggableID]bool `json:"effected"`
}

// DidStartAfterCritical reports whether id was after the dragged item at lift.
func (a AfterCritical) DidStartAfterCritical(id DraggableID) bool {
	return a.Effected[id]
}
