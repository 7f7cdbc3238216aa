package engine

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/invariant"
	"github.com/xkilldash9x/dropzone/internal/registry"
	"github.com/xkilldash9x/dropzone/internal/session"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// marshal collects the dimensions a drag starts with and relays droppable
// scrolls until the drag stops.
type marshal struct {
	e        *Engine
	logger   *zap.Logger
	watching []registry.DroppableEntry
}

func newMarshal(e *Engine) *marshal {
	return &marshal{e: e, logger: e.logger.With(zap.String("subcomponent", "marshal"))}
}

type collection struct {
	critical   schemas.Critical
	dimensions schemas.DimensionMap
	viewport   schemas.Viewport
}

// collect measures every entry that shares the dragged item's type and starts
// watching droppable scroll. Callers hold the engine lock.
func (m *marshal) collect(id schemas.DraggableID) (collection, error) {
	const op = "engine.collect"
	reg := m.e.registry

	entry, err := reg.GetDraggable(id)
	if err != nil {
		return collection{}, err
	}
	home, err := reg.GetDroppable(entry.Descriptor.DroppableID)
	if err != nil {
		return collection{}, err
	}
	typ := entry.Descriptor.Type
	viewport := m.e.env.Viewport()
	windowScroll := viewport.Scroll.Current

	dims := schemas.DimensionMap{
		Draggables: schemas.DraggableDimensionMap{},
		Droppables: schemas.DroppableDimensionMap{},
	}
	for _, d := range reg.DroppablesByType(typ) {
		reg.WarnOnIndexes(d.Descriptor.ID)
		dimension := d.Callbacks.GetDimensionAndWatchScroll(windowScroll, m.onScroll(d.Descriptor.ID))
		m.watching = append(m.watching, d)
		if dimension.Descriptor.ID != d.Descriptor.ID {
			return collection{}, invariant.New(op, "droppable %q measured itself as %q", d.Descriptor.ID, dimension.Descriptor.ID)
		}
		dims.Droppables[d.Descriptor.ID] = dimension
	}
	for _, d := range reg.DraggablesByType(typ) {
		dimension := d.Measurer.GetDimension(windowScroll)
		if dimension.Descriptor.ID != d.Descriptor.ID {
			return collection{}, invariant.New(op, "draggable %q measured itself as %q", d.Descriptor.ID, dimension.Descriptor.ID)
		}
		dims.Draggables[d.Descriptor.ID] = dimension
	}
	reg.BeginDrag(typ)

	m.logger.Debug("Collected dimensions.",
		zap.Int("draggables", len(dims.Draggables)),
		zap.Int("droppables", len(dims.Droppables)))
	return collection{
		critical:   schemas.Critical{Draggable: entry.Descriptor, Droppable: home.Descriptor},
		dimensions: dims,
		viewport:   viewport,
	}, nil
}

func (m *marshal) onScroll(id schemas.DroppableID) func(geometry.Position) {
	return func(scroll geometry.Position) {
		_ = m.e.do(func() error {
			switch m.e.state.Phase {
			case session.PhaseDragging, session.PhaseCollecting, session.PhaseDropPending:
				return m.e.dispatch(session.UpdateDroppableScroll{ID: id, NewScroll: scroll})
			}
			return nil
		})
	}
}

// stop tells every watched droppable the drag is over. Callers hold the lock.
func (m *marshal) stop() {
	watching := m.watching
	m.watching = nil
	for _, d := range watching {
		callbacks := d.Callbacks
		m.e.later(callbacks.DragStopped)
	}
}
