package session

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/impact"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// Intent is a request to change the drag state.
type Intent interface {
	intentName() string
}

// Lift starts a drag with freshly collected dimensions.
type Lift struct {
	Critical        schemas.Critical
	ClientSelection geometry.Position
	MovementMode    schemas.MovementMode
	Dimensions      schemas.DimensionMap
	Viewport        schemas.Viewport
}

// CollectionStarting marks the start of a virtual list collection.
type CollectionStarting struct{}

// PublishWhileDragging applies the result of a virtual list collection.
type PublishWhileDragging struct {
	Published schemas.Published
}

// Move is a new pointer position in client coordinates.
type Move struct {
	Client geometry.Position
}

// MoveInDirection is a keyboard step.
type MoveInDirection struct {
	Direction impact.KeyboardMove
}

// MoveByWindowScroll reports that the window scrolled.
type MoveByWindowScroll struct {
	NewScroll geometry.Position
}

type UpdateViewportMaxScroll struct {
	MaxScroll geometry.Position
}

type UpdateDroppableScroll struct {
	ID        schemas.DroppableID
	NewScroll geometry.Position
}

type UpdateDroppableIsEnabled struct {
	ID        schemas.DroppableID
	IsEnabled bool
}

type UpdateDroppableIsCombineEnabled struct {
	ID               schemas.DroppableID
	IsCombineEnabled bool
}

// Drop ends the drag.
type Drop struct {
	Reason schemas.DropReason
}

type DropAnimationFinished struct{}

// Flush abandons whatever is in progress.
type Flush struct{}

func (Lift) intentName() string                            { return "LIFT" }
func (CollectionStarting) intentName() string              { return "COLLECTION_STARTING" }
func (PublishWhileDragging) intentName() string            { return "PUBLISH_WHILE_DRAGGING" }
func (Move) intentName() string                            { return "MOVE" }
func (m MoveInDirection) intentName() string               { return string(m.Direction) }
func (MoveByWindowScroll) intentName() string              { return "MOVE_BY_WINDOW_SCROLL" }
func (UpdateViewportMaxScroll) intentName() string         { return "UPDATE_VIEWPORT_MAX_SCROLL" }
func (UpdateDroppableScroll) intentName() string           { return "UPDATE_DROPPABLE_SCROLL" }
func (UpdateDroppableIsEnabled) intentName() string        { return "UPDATE_DROPPABLE_IS_ENABLED" }
func (UpdateDroppableIsCombineEnabled) intentName() string { return "UPDATE_DROPPABLE_IS_COMBINE_ENABLED" }
func (Drop) intentName() string                            { return "DROP" }
func (DropAnimationFinished) intentName() string           { return "DROP_ANIMATION_FINISHED" }
func (Flush) intentName() string                           { return "FLUSH" }

// Name is the intent's wire name, used in logs.
func Name(in Intent) string {
	return in.intentName()
}
