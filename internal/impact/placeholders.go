package impact

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/dimension"
)

// RecomputePlaceholders moves placeholder space to follow the impact: the
// droppable that was left loses it and a newly entered foreign droppable
// gains it. The input map is never modified.
func RecomputePlaceholders(draggable schemas.DraggableDimension, draggables schemas.DraggableDimensionMap, droppables schemas.DroppableDimensionMap, previous, impact schemas.DragImpact) (schemas.DroppableDimensionMap, error) {
	const op = "impact.RecomputePlaceholders"
	result := droppables
	copied := false
	patch := func(d schemas.DroppableDimension) {
		if !copied {
			result = make(schemas.DroppableDimensionMap, len(droppables))
			for id, existing := range droppables {
				result[id] = existing
			}
			copied = true
		}
		result[d.Descriptor.ID] = d
	}

	lastID, wasOver := previous.DraggingOver()
	nowID, isOver := impact.DraggingOver()

	if wasOver && (!isOver || lastID != nowID) {
		last, err := getDroppable(op, lastID, result)
		if err != nil {
			return nil, err
		}
		if last.Subject.WithPlaceholder != nil {
			cleared, err := dimension.RemovePlaceholder(last)
			if err != nil {
				return nil, err
			}
			patch(cleared)
		}
	}

	if !isOver || nowID == draggable.Descriptor.DroppableID {
		return result, nil
	}
	now, err := getDroppable(op, nowID, result)
	if err != nil {
		return nil, err
	}
	if now.Subject.WithPlaceholder != nil {
		return result, nil
	}
	added, err := dimension.AddPlaceholder(now, draggable, draggables)
	if err != nil {
		return nil, err
	}
	patch(added)
	return result, nil
}
