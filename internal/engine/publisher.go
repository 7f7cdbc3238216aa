package engine

import (
	"sort"

	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/registry"
	"github.com/xkilldash9x/dropzone/internal/session"
)

// publisher batches registry changes made during a drag into one collection
// per frame.
type publisher struct {
	e      *Engine
	logger *zap.Logger
	typ    schemas.TypeID

	additions map[schemas.DraggableID]registry.DraggableEntry
	removals  map[schemas.DraggableID]bool
	modified  map[schemas.DroppableID]bool

	cancelFrame func()
	unsubscribe func()
}

func newPublisher(e *Engine) *publisher {
	p := &publisher{e: e, logger: e.logger.With(zap.String("subcomponent", "publisher"))}
	p.reset()
	return p
}

func (p *publisher) reset() {
	p.additions = make(map[schemas.DraggableID]registry.DraggableEntry)
	p.removals = make(map[schemas.DraggableID]bool)
	p.modified = make(map[schemas.DroppableID]bool)
}

// start listens for registry changes to entries of typ. Callers hold the lock.
func (p *publisher) start(typ schemas.TypeID) {
	p.typ = typ
	p.unsubscribe = p.e.registry.Subscribe(p.onEvent)
}

func (p *publisher) stop() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
	if p.cancelFrame != nil {
		p.cancelFrame()
		p.cancelFrame = nil
	}
	p.reset()
}

func (p *publisher) onEvent(ev registry.Event) {
	_ = p.e.do(func() error {
		if !p.e.state.IsDragging() || ev.Entry.Descriptor.Type != p.typ {
			return nil
		}
		descriptor := ev.Entry.Descriptor
		switch ev.Type {
		case registry.Addition:
			p.additions[descriptor.ID] = ev.Entry
			delete(p.removals, descriptor.ID)
		case registry.Removal:
			p.removals[descriptor.ID] = true
			delete(p.additions, descriptor.ID)
		}
		p.modified[descriptor.DroppableID] = true
		return p.schedule()
	})
}

// schedule announces the collection and publishes it on the next frame.
func (p *publisher) schedule() error {
	if p.cancelFrame != nil {
		return nil
	}
	if err := p.e.dispatch(session.CollectionStarting{}); err != nil {
		return err
	}
	p.cancelFrame = p.e.sched.Request(func() {
		_ = p.e.do(p.flush)
	})
	return nil
}

func (p *publisher) flush() error {
	p.cancelFrame = nil
	if !p.e.state.IsDragging() {
		p.reset()
		return nil
	}

	windowScroll := p.e.env.Viewport().Scroll.Current
	published := schemas.Published{}

	for _, id := range sortedDraggableIDs(p.additions) {
		entry := p.additions[id]
		published.Additions = append(published.Additions, entry.Measurer.GetDimension(windowScroll))
	}
	for id := range p.removals {
		published.Removals = append(published.Removals, id)
	}
	sort.Slice(published.Removals, func(i, j int) bool { return published.Removals[i] < published.Removals[j] })

	known := p.e.state.Drag.Dimensions.Droppables
	for _, id := range sortedDroppableIDs(p.modified) {
		entry, ok := p.e.registry.FindDroppable(id)
		if !ok {
			continue
		}
		if d, ok := known[id]; !ok || d.Frame == nil {
			continue
		}
		published.Modified = append(published.Modified, schemas.DroppablePublish{
			DroppableID: id,
			Scroll:      entry.Callbacks.GetScrollWhileDragging(),
		})
	}
	p.reset()

	p.logger.Debug("Publishing collection.",
		zap.Int("additions", len(published.Additions)),
		zap.Int("removals", len(published.Removals)),
		zap.Int("modified", len(published.Modified)))
	if err := p.e.dispatch(session.PublishWhileDragging{Published: published}); err != nil {
		return err
	}

	// A drop that arrived mid-collection lands now.
	if s := p.e.state; s.Phase == session.PhaseDropPending && !s.Pending.IsWaiting {
		return p.e.dispatch(session.Drop{Reason: s.Pending.Reason})
	}
	return nil
}

func sortedDraggableIDs(m map[schemas.DraggableID]registry.DraggableEntry) []schemas.DraggableID {
	ids := make([]schemas.DraggableID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedDroppableIDs(m map[schemas.DroppableID]bool) []schemas.DroppableID {
	ids := make([]schemas.DroppableID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
