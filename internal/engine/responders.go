package engine

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/session"
)

func dragStart(d *session.Drag) schemas.DragStart {
	return schemas.DragStart{
		DraggableID: d.Critical.Draggable.ID,
		Type:        d.Critical.Draggable.Type,
		Source: schemas.DraggableLocation{
			DroppableID: d.Critical.Droppable.ID,
			Index:       d.Critical.Draggable.Index,
		},
		Mode: d.MovementMode,
	}
}

func dragUpdate(d *session.Drag) schemas.DragUpdate {
	update := schemas.DragUpdate{DragStart: dragStart(d)}
	if dest, ok := d.Impact.Destination(); ok {
		update.Destination = &dest
	}
	if combine, ok := d.Impact.CombineTarget(); ok {
		update.Combine = &combine
	}
	return update
}

func sameUpdate(a, b *schemas.DragUpdate) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch {
	case (a.Destination == nil) != (b.Destination == nil):
		return false
	case a.Destination != nil && *a.Destination != *b.Destination:
		return false
	case (a.Combine == nil) != (b.Combine == nil):
		return false
	case a.Combine != nil && *a.Combine != *b.Combine:
		return false
	}
	return true
}

// announce queues the responder calls a transition warrants. Callers hold the lock.
func (e *Engine) announce(previous, next session.State) {
	switch {
	case next.IsDragging() && !previous.IsDragging():
		start := dragStart(next.Drag)
		// The drag starts over its home slot.
		initial := schemas.DragUpdate{DragStart: start, Destination: &start.Source}
		e.lastUpdate = &initial
		e.logger.Info("Drag started.",
			zap.String("draggable_id", string(start.DraggableID)),
			zap.String("mode", string(start.Mode)))
		if fn := e.responders.OnDragStart; fn != nil {
			e.later(func() { fn(start) })
		}

	case next.IsDragging():
		update := dragUpdate(next.Drag)
		if sameUpdate(e.lastUpdate, &update) {
			return
		}
		e.lastUpdate = &update
		if fn := e.responders.OnDragUpdate; fn != nil {
			e.later(func() { fn(update) })
		}

	case next.Phase == session.PhaseIdle && next.Completed != nil && previous.Phase != session.PhaseIdle:
		e.lastUpdate = nil
		result := next.Completed.Result
		fields := []zap.Field{
			zap.String("draggable_id", string(result.DraggableID)),
			zap.String("reason", string(result.Reason)),
		}
		if result.Destination != nil {
			fields = append(fields,
				zap.String("destination", string(result.Destination.DroppableID)),
				zap.Int("index", result.Destination.Index))
		}
		if result.Combine != nil {
			fields = append(fields, zap.String("combine_with", string(result.Combine.DraggableID)))
		}
		e.logger.Info("Drag ended.", fields...)
		if fn := e.responders.OnDragEnd; fn != nil {
			e.later(func() { fn(result) })
		}

	case next.Phase == session.PhaseIdle:
		e.lastUpdate = nil
	}
}
