package session

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/config"
	"github.com/xkilldash9x/dropzone/internal/visibility"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// DropDuration is how long, in seconds, the dropped item takes to travel
// distance pixels home: linear between the configured bounds, scaled by the
// cancel multiplier for cancels.
func DropDuration(cfg config.DropConfig, distance float64, reason schemas.DropReason) float64 {
	var duration float64
	switch {
	case distance <= 0:
		duration = cfg.MinDuration
	case distance >= cfg.MaxDistance:
		duration = cfg.MaxDuration
	default:
		percentage := distance / cfg.MaxDistance
		duration = cfg.MinDuration + (cfg.MaxDuration-cfg.MinDuration)*percentage
	}
	if reason == schemas.ReasonCancel {
		duration *= cfg.CancelMultiplier
	}
	return duration
}

type dropImpact struct {
	impact  schemas.DragImpact
	didDrop bool
}

// getDropImpact resolves where the item lands. Cancels, and drops outside of
// any droppable, send it back to where it was lifted.
func getDropImpact(d *Drag, reason schemas.DropReason) dropImpact {
	if reason != schemas.ReasonDrop || d.Impact.At == nil {
		home := d.Dimensions.Droppables[d.Critical.Droppable.ID]
		animate := true
		recomputed := visibility.Recompute(d.OnLiftImpact, home, d.Viewport, d.Dimensions.Draggables, &animate)
		return dropImpact{impact: recomputed, didDrop: false}
	}

	if d.Impact.At.Type == schemas.AtReorder {
		return dropImpact{impact: d.Impact, didDrop: true}
	}

	// Merging leaves nothing displaced.
	combined := d.Impact
	combined.Displaced = schemas.EmptyGroups()
	return dropImpact{impact: combined, didDrop: true}
}

// -- Drop --

func (r *Reducer) dropIntent(s State, in Drop) (State, error) {
	switch s.Phase {
	case PhaseCollecting:
		return State{
			Phase:   PhaseDropPending,
			Drag:    s.Drag,
			Pending: &DropPending{Reason: in.Reason, IsWaiting: true},
		}, nil
	case PhaseDropPending:
		if s.Pending.IsWaiting {
			return s, illegal(s, in)
		}
	case PhaseDragging:
	default:
		return s, illegal(s, in)
	}
	return r.drop(s, in.Reason)
}

func (r *Reducer) drop(s State, reason schemas.DropReason) (State, error) {
	const op = "session.Drop"
	d := s.Drag
	critical := d.Critical

	draggable, err := lookupDraggable(op, critical.Draggable.ID, d.Dimensions.Draggables)
	if err != nil {
		return s, err
	}
	resolved := getDropImpact(d, reason)

	result := schemas.DropResult{
		DragUpdate: schemas.DragUpdate{
			DragStart: schemas.DragStart{
				DraggableID: critical.Draggable.ID,
				Type:        critical.Draggable.Type,
				Source: schemas.DraggableLocation{
					DroppableID: critical.Droppable.ID,
					Index:       critical.Draggable.Index,
				},
				Mode: d.MovementMode,
			},
		},
		Reason: reason,
	}
	landingID := critical.Droppable.ID
	if resolved.didDrop {
		if dest, ok := resolved.impact.Destination(); ok {
			result.Destination = &dest
			landingID = dest.DroppableID
		}
		if combine, ok := resolved.impact.CombineTarget(); ok {
			result.Combine = &combine
			landingID = combine.DroppableID
		}
	}

	landing, err := lookupDroppable(op, landingID, d.Dimensions.Droppables)
	if err != nil {
		return s, err
	}
	newClientCenter, err := clientBorderBoxCenter(resolved.impact, draggable, landing, d)
	if err != nil {
		return s, err
	}
	newHomeClientOffset := newClientCenter.Subtract(draggable.Client.BorderBox.Center())

	completed := schemas.CompletedDrag{
		Critical:      critical,
		Result:        result,
		Impact:        resolved.impact,
		AfterCritical: d.AfterCritical,
	}

	current := d.Current.Client.Offset
	if current.IsEqual(newHomeClientOffset) && result.Combine == nil {
		return State{Phase: PhaseIdle, Completed: &completed}, nil
	}

	return State{
		Phase: PhaseDropAnimating,
		Dropping: &DropAnimation{
			Completed:           completed,
			Duration:            DropDuration(r.dropCfg, geometry.Distance(current, newHomeClientOffset), reason),
			NewHomeClientOffset: newHomeClientOffset,
			Dimensions:          d.Dimensions,
		},
	}, nil
}
