// Package registry tracks every mounted draggable and droppable together with
// the callbacks used to measure them.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/invariant"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

var (
	// ErrNotFound is wrapped by the invariant violation returned from the Get* lookups.
	ErrNotFound = errors.New("entry not found")
	// ErrDuplicateEntry is returned when an id is registered twice without an
	// unregister in between.
	ErrDuplicateEntry = errors.New("entry already registered")
	// ErrCompositionFrozen is returned when a non-virtual list changes mid-drag.
	ErrCompositionFrozen = errors.New("list composition is frozen while dragging")
)

// -- Collaborator contracts --

// DraggableMeasurer measures one draggable on request.
type DraggableMeasurer interface {
	GetDimension(windowScroll geometry.Position) schemas.DraggableDimension
}

// DroppableCallbacks is implemented by whatever owns a droppable's real geometry.
type DroppableCallbacks interface {
	// GetDimensionAndWatchScroll measures the droppable and starts reporting
	// its scroll through onScroll until DragStopped.
	GetDimensionAndWatchScroll(windowScroll geometry.Position, onScroll func(geometry.Position)) schemas.DroppableDimension
	GetScrollWhileDragging() geometry.Position
	Scroll(change geometry.Position)
	DragStopped()
}

// DraggableOptions are the setup flags checked by diagnostics.
type DraggableOptions struct {
	IsEnabled           bool
	HasDragHandle       bool
	HandleIsInteractive bool
}

// DraggableEntry is one registered draggable.
type DraggableEntry struct {
	UniqueID   string
	Descriptor schemas.DraggableDescriptor
	Options    DraggableOptions
	Measurer   DraggableMeasurer
}

// DroppableEntry is one registered droppable.
type DroppableEntry struct {
	UniqueID   string
	Descriptor schemas.DroppableDescriptor
	Callbacks  DroppableCallbacks
}

// -- Events --

type EventType string

const (
	Addition EventType = "ADDITION"
	Removal  EventType = "REMOVAL"
)

// Event announces a draggable joining or leaving the registry.
type Event struct {
	Type  EventType
	Entry DraggableEntry
}

// Subscriber receives registry events. It is called without the registry lock held.
type Subscriber func(Event)

// Registry is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	logger      *zap.Logger
	diagnostics bool

	draggables map[schemas.DraggableID]DraggableEntry
	droppables map[schemas.DroppableID]DroppableEntry

	subscribers map[int]Subscriber
	nextSubID   int

	dragging     bool
	draggingType schemas.TypeID
}

// New creates an empty registry.
func New(logger *zap.Logger, diagnostics bool) *Registry {
	return &Registry{
		logger:      logger.With(zap.String("component", "registry")),
		diagnostics: diagnostics,
		draggables:  make(map[schemas.DraggableID]DraggableEntry),
		droppables:  make(map[schemas.DroppableID]DroppableEntry),
		subscribers: make(map[int]Subscriber),
	}
}

// -- Drag lifecycle --

// BeginDrag freezes list composition for standard lists of the given type.
func (r *Registry) BeginDrag(typ schemas.TypeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dragging = true
	r.draggingType = typ
}

// EndDrag lifts the freeze.
func (r *Registry) EndDrag() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dragging = false
	r.draggingType = ""
}

// IsDragging reports whether BeginDrag is in effect.
func (r *Registry) IsDragging() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dragging
}

// canChangeDraggable decides whether a draggable may come or go right now.
// Callers hold the lock.
func (r *Registry) canChangeDraggable(d schemas.DraggableDescriptor) bool {
	if !r.dragging || d.Type != r.draggingType {
		return true
	}
	home, ok := r.droppables[d.DroppableID]
	return ok && home.Descriptor.Mode == schemas.ModeVirtual
}

// -- Draggables --

// RegisterDraggable adds a draggable and returns its unique token.
func (r *Registry) RegisterDraggable(descriptor schemas.DraggableDescriptor, options DraggableOptions, measurer DraggableMeasurer) (string, error) {
	r.mu.Lock()
	if existing, ok := r.draggables[descriptor.ID]; ok {
		r.mu.Unlock()
		return "", fmt.Errorf("draggable %q (token %s): %w", descriptor.ID, existing.UniqueID, ErrDuplicateEntry)
	}
	if !r.canChangeDraggable(descriptor) {
		r.mu.Unlock()
		r.logger.Warn("Ignoring draggable registration during a drag; only virtual lists may change",
			zap.String("draggable_id", string(descriptor.ID)),
			zap.String("droppable_id", string(descriptor.DroppableID)))
		return "", ErrCompositionFrozen
	}

	entry := DraggableEntry{
		UniqueID:   uuid.NewString(),
		Descriptor: descriptor,
		Options:    options,
		Measurer:   measurer,
	}
	r.draggables[descriptor.ID] = entry
	r.mu.Unlock()

	r.checkOptions(entry)
	r.emit(Event{Type: Addition, Entry: entry})
	return entry.UniqueID, nil
}

// UpdateDraggable swaps the descriptor of a live entry, for example when its
// index changes. The token stays the same.
func (r *Registry) UpdateDraggable(token string, previousID schemas.DraggableID, descriptor schemas.DraggableDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.draggables[previousID]
	if !ok || existing.UniqueID != token {
		return fmt.Errorf("update of draggable %q: %w", previousID, ErrNotFound)
	}
	if descriptor.ID != previousID {
		if _, taken := r.draggables[descriptor.ID]; taken {
			return fmt.Errorf("update of draggable %q to %q: %w", previousID, descriptor.ID, ErrDuplicateEntry)
		}
	}
	if !r.canChangeDraggable(existing.Descriptor) {
		r.logger.Warn("Ignoring draggable update during a drag",
			zap.String("draggable_id", string(previousID)))
		return ErrCompositionFrozen
	}

	delete(r.draggables, previousID)
	existing.Descriptor = descriptor
	r.draggables[descriptor.ID] = existing
	return nil
}

// UnregisterDraggable removes a draggable if the token still matches the live
// entry. A stale token means the id was remounted in the meantime, so the call
// is ignored.
func (r *Registry) UnregisterDraggable(id schemas.DraggableID, token string) error {
	r.mu.Lock()
	existing, ok := r.draggables[id]
	if !ok || existing.UniqueID != token {
		r.mu.Unlock()
		return nil
	}
	if !r.canChangeDraggable(existing.Descriptor) {
		r.mu.Unlock()
		r.logger.Warn("Ignoring draggable removal during a drag; only virtual lists may change",
			zap.String("draggable_id", string(id)))
		return ErrCompositionFrozen
	}
	delete(r.draggables, id)
	r.mu.Unlock()

	r.emit(Event{Type: Removal, Entry: existing})
	return nil
}

// GetDraggable fails with an invariant violation when id is unknown.
func (r *Registry) GetDraggable(id schemas.DraggableID) (DraggableEntry, error) {
	entry, ok := r.FindDraggable(id)
	if !ok {
		return DraggableEntry{}, invariant.Wrap("registry.GetDraggable", ErrNotFound, "draggable %q", id)
	}
	return entry, nil
}

// FindDraggable is the optional form of GetDraggable.
func (r *Registry) FindDraggable(id schemas.DraggableID) (DraggableEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.draggables[id]
	return entry, ok
}

// DraggablesByType returns the draggables of one type ordered by droppable and index.
func (r *Registry) DraggablesByType(typ schemas.TypeID) []DraggableEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []DraggableEntry
	for _, entry := range r.draggables {
		if entry.Descriptor.Type == typ {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Descriptor, out[j].Descriptor
		if a.DroppableID != b.DroppableID {
			return a.DroppableID < b.DroppableID
		}
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.ID < b.ID
	})
	return out
}

// -- Droppables --

// RegisterDroppable adds a droppable and returns its unique token.
func (r *Registry) RegisterDroppable(descriptor schemas.DroppableDescriptor, callbacks DroppableCallbacks) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.droppables[descriptor.ID]; ok {
		return "", fmt.Errorf("droppable %q (token %s): %w", descriptor.ID, existing.UniqueID, ErrDuplicateEntry)
	}
	if r.dragging && descriptor.Type == r.draggingType {
		r.logger.Warn("Ignoring droppable registration during a drag",
			zap.String("droppable_id", string(descriptor.ID)))
		return "", ErrCompositionFrozen
	}

	entry := DroppableEntry{UniqueID: uuid.NewString(), Descriptor: descriptor, Callbacks: callbacks}
	r.droppables[descriptor.ID] = entry
	return entry.UniqueID, nil
}

// UnregisterDroppable removes a droppable if the token still matches.
func (r *Registry) UnregisterDroppable(id schemas.DroppableID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.droppables[id]
	if !ok || existing.UniqueID != token {
		return nil
	}
	if r.dragging && existing.Descriptor.Type == r.draggingType {
		r.logger.Warn("Ignoring droppable removal during a drag",
			zap.String("droppable_id", string(id)))
		return ErrCompositionFrozen
	}
	delete(r.droppables, id)
	return nil
}

// GetDroppable fails with an invariant violation when id is unknown.
func (r *Registry) GetDroppable(id schemas.DroppableID) (DroppableEntry, error) {
	entry, ok := r.FindDroppable(id)
	if !ok {
		return DroppableEntry{}, invariant.Wrap("registry.GetDroppable", ErrNotFound, "droppable %q", id)
	}
	return entry, nil
}

// FindDroppable is the optional form of GetDroppable.
func (r *Registry) FindDroppable(id schemas.DroppableID) (DroppableEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.droppables[id]
	return entry, ok
}

// DroppablesByType returns the droppables of one type ordered by id.
func (r *Registry) DroppablesByType(typ schemas.TypeID) []DroppableEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []DroppableEntry
	for _, entry := range r.droppables {
		if entry.Descriptor.Type == typ {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Descriptor.ID < out[j].Descriptor.ID })
	return out
}

// -- Subscriptions --

// Subscribe registers fn and returns a function that removes it.
func (r *Registry) Subscribe(fn Subscriber) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subscribers, id)
	}
}

func (r *Registry) emit(event Event) {
	r.mu.RLock()
	ids := make([]int, 0, len(r.subscribers))
	for id := range r.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]Subscriber, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, r.subscribers[id])
	}
	r.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}

// Clean drops every entry and subscriber.
func (r *Registry) Clean() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draggables = make(map[schemas.DraggableID]DraggableEntry)
	r.droppables = make(map[schemas.DroppableID]DroppableEntry)
	r.subscribers = make(map[int]Subscriber)
	r.dragging = false
	r.draggingType = ""
}
