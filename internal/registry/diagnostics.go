package registry

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
)

// CheckIndexes reports duplicate or missing indexes inside one droppable.
// It returns nil when the indexes run 0..n-1 without gaps.
func (r *Registry) CheckIndexes(droppableID schemas.DroppableID) error {
	r.mu.RLock()
	var indexes []int
	for _, entry := range r.draggables {
		if entry.Descriptor.DroppableID == droppableID {
			indexes = append(indexes, entry.Descriptor.Index)
		}
	}
	r.mu.RUnlock()

	sort.Ints(indexes)
	for i, index := range indexes {
		if index != i {
			return fmt.Errorf("droppable %q has indexes %v, expected a consecutive run starting at 0", droppableID, indexes)
		}
	}
	return nil
}

// WarnOnIndexes logs the result of CheckIndexes when diagnostics are on.
func (r *Registry) WarnOnIndexes(droppableID schemas.DroppableID) {
	if !r.diagnostics {
		return
	}
	if err := r.CheckIndexes(droppableID); err != nil {
		r.logger.Warn("Detected non-consecutive draggable indexes", zap.Error(err))
	}
}

func (r *Registry) checkOptions(entry DraggableEntry) {
	if !r.diagnostics {
		return
	}
	id := zap.String("draggable_id", string(entry.Descriptor.ID))
	if !entry.Options.HasDragHandle {
		r.logger.Warn("Draggable registered without a drag handle", id)
	}
	if entry.Options.HandleIsInteractive {
		r.logger.Warn("Drag handle is an interactive element; drags will not start from it", id)
	}
}
