package dimension

import (
	"reflect"
	"sort"
	"sync"

	"github.com/xkilldash9x/dropzone/api/schemas"
)

// insideCache remembers the per-droppable lists computed from the last
// draggable map it saw. Dimension maps are never mutated after being built,
// so the map's identity is a valid cache key.
type insideCache struct {
	mu      sync.Mutex
	source  schemas.DraggableDimensionMap
	ptr     uintptr
	entries map[schemas.DroppableID][]schemas.DraggableDimension
}

var inside insideCache

func (c *insideCache) get(droppableID schemas.DroppableID, draggables schemas.DraggableDimensionMap) []schemas.DraggableDimension {
	c.mu.Lock()
	defer c.mu.Unlock()

	ptr := reflect.ValueOf(draggables).Pointer()
	if c.entries == nil || ptr != c.ptr {
		// Holding the map keeps its address from being reused.
		c.source = draggables
		c.ptr = ptr
		c.entries = make(map[schemas.DroppableID][]schemas.DraggableDimension)
	}
	if list, ok := c.entries[droppableID]; ok {
		return list
	}

	list := make([]schemas.DraggableDimension, 0)
	for _, d := range draggables {
		if d.Descriptor.DroppableID == droppableID {
			list = append(list, d)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Descriptor.Index != list[j].Descriptor.Index {
			return list[i].Descriptor.Index < list[j].Descriptor.Index
		}
		return list[i].Descriptor.ID < list[j].Descriptor.ID
	})
	c.entries[droppableID] = list
	return list
}

// DraggablesInside returns the draggables of one droppable ordered by index.
// The returned slice is shared; callers must not modify it.
func DraggablesInside(droppableID schemas.DroppableID, draggables schemas.DraggableDimensionMap) []schemas.DraggableDimension {
	return inside.get(droppableID, draggables)
}

// ResetCache forgets the memoized lists.
func ResetCache() {
	inside.mu.Lock()
	defer inside.mu.Unlock()
	inside.source = nil
	inside.ptr = 0
	inside.entries = nil
}

// Without returns list minus the draggable with id. It never aliases list.
func Without(id schemas.DraggableID, list []schemas.DraggableDimension) []schemas.DraggableDimension {
	out := make([]schemas.DraggableDimension, 0, len(list))
	for _, d := range list {
		if d.Descriptor.ID != id {
			out = append(out, d)
		}
	}
	return out
}
