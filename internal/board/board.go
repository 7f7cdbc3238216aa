// Package board is an in-memory page of card columns. It measures itself for
// the engine the way a real page would, so the simulator and the terminal UI
// can drive real drags against it.
package board

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/registry"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// DefaultType is the drag type every card and column shares.
const DefaultType schemas.TypeID = "CARD"

var ErrUnknownColumn = errors.New("unknown column")

// Layout places columns side by side starting at (Left, Top).
type Layout struct {
	Left           float64 `mapstructure:"left" yaml:"left"`
	Top            float64 `mapstructure:"top" yaml:"top"`
	ColumnWidth    float64 `mapstructure:"column_width" yaml:"column_width"`
	ColumnHeight   float64 `mapstructure:"column_height" yaml:"column_height"`
	ItemHeight     float64 `mapstructure:"item_height" yaml:"item_height"`
	Gap            float64 `mapstructure:"gap" yaml:"gap"`
	ViewportWidth  float64 `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight float64 `mapstructure:"viewport_height" yaml:"viewport_height"`
}

// DefaultLayout fits a handful of columns on an 80x24 terminal.
func DefaultLayout() Layout {
	return Layout{
		Left:           1,
		Top:            2,
		ColumnWidth:    24,
		ColumnHeight:   18,
		ItemHeight:     3,
		Gap:            2,
		ViewportWidth:  80,
		ViewportHeight: 24,
	}
}

// ColumnSpec describes one column when building a board.
type ColumnSpec struct {
	ID             string   `mapstructure:"id" yaml:"id"`
	Title          string   `mapstructure:"title" yaml:"title"`
	Items          []string `mapstructure:"items" yaml:"items"`
	Virtual        bool     `mapstructure:"virtual" yaml:"virtual"`
	CombineEnabled bool     `mapstructure:"combine_enabled" yaml:"combine_enabled"`
	Disabled       bool     `mapstructure:"disabled" yaml:"disabled"`
	// Scrollable clips the column to ColumnHeight and lets it scroll.
	Scrollable bool `mapstructure:"scrollable" yaml:"scrollable"`
}

type card struct {
	id    schemas.DraggableID
	label string
	token string
}

type column struct {
	id             schemas.DroppableID
	title          string
	virtual        bool
	combineEnabled bool
	enabled        bool
	scrollable     bool
	cards          []*card
	scroll         geometry.Position
	watcher        func(geometry.Position)
	token          string
}

// Board is safe for concurrent use.
type Board struct {
	mu           sync.Mutex
	layout       Layout
	logger       *zap.Logger
	columns      []*column
	windowScroll geometry.Position
	registry     *registry.Registry
}

// New builds a board. Card ids are the item labels, so they must be unique.
func New(layout Layout, specs []ColumnSpec, logger *zap.Logger) (*Board, error) {
	b := &Board{layout: layout, logger: logger.With(zap.String("component", "board"))}
	seen := make(map[string]bool)
	for _, spec := range specs {
		if seen[spec.ID] {
			return nil, fmt.Errorf("column %q is defined twice", spec.ID)
		}
		seen[spec.ID] = true
		col := &column{
			id:             schemas.DroppableID(spec.ID),
			title:          spec.Title,
			virtual:        spec.Virtual,
			combineEnabled: spec.CombineEnabled,
			enabled:        !spec.Disabled,
			scrollable:     spec.Scrollable,
		}
		if col.title == "" {
			col.title = spec.ID
		}
		for _, label := range spec.Items {
			if seen["card:"+label] {
				return nil, fmt.Errorf("card %q appears twice", label)
			}
			seen["card:"+label] = true
			col.cards = append(col.cards, &card{id: schemas.DraggableID(label), label: label})
		}
		b.columns = append(b.columns, col)
	}
	return b, nil
}

// -- Registration --

// Register adds every column and card to reg.
func (b *Board) Register(reg *registry.Registry) error {
	b.mu.Lock()
	b.registry = reg
	columns := append([]*column(nil), b.columns...)
	b.mu.Unlock()

	for _, col := range columns {
		token, err := reg.RegisterDroppable(b.droppableDescriptor(col), &columnCallbacks{b: b, col: col})
		if err != nil {
			return fmt.Errorf("registering column %q: %w", col.id, err)
		}
		b.mu.Lock()
		col.token = token
		b.mu.Unlock()
	}
	for _, col := range columns {
		b.mu.Lock()
		cards := append([]*card(nil), col.cards...)
		b.mu.Unlock()
		for _, c := range cards {
			if err := b.registerCard(reg, col, c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Board) registerCard(reg *registry.Registry, col *column, c *card) error {
	b.mu.Lock()
	descriptor := b.draggableDescriptorLocked(col, c)
	b.mu.Unlock()

	token, err := reg.RegisterDraggable(descriptor,
		registry.DraggableOptions{IsEnabled: true, HasDragHandle: true},
		cardMeasurer{b: b, id: c.id})
	if err != nil {
		return fmt.Errorf("registering card %q: %w", c.id, err)
	}
	b.mu.Lock()
	c.token = token
	b.mu.Unlock()
	return nil
}

func (b *Board) droppableDescriptor(col *column) schemas.DroppableDescriptor {
	mode := schemas.ModeStandard
	if col.virtual {
		mode = schemas.ModeVirtual
	}
	return schemas.DroppableDescriptor{ID: col.id, Type: DefaultType, Mode: mode}
}

// draggableDescriptorLocked expects b.mu to be held.
func (b *Board) draggableDescriptorLocked(col *column, c *card) schemas.DraggableDescriptor {
	index := 0
	for i, other := range col.cards {
		if other == c {
			index = i
		}
	}
	return schemas.DraggableDescriptor{ID: c.id, Index: index, DroppableID: col.id, Type: DefaultType}
}

// AddCard appends a card to a column and registers it. Only virtual columns
// accept new cards while a drag is in progress.
func (b *Board) AddCard(columnID schemas.DroppableID, label string) error {
	b.mu.Lock()
	col := b.findColumnLocked(columnID)
	if col == nil {
		b.mu.Unlock()
		return fmt.Errorf("adding %q to %q: %w", label, columnID, ErrUnknownColumn)
	}
	c := &card{id: schemas.DraggableID(label), label: label}
	col.cards = append(col.cards, c)
	reg := b.registry
	b.mu.Unlock()

	if reg == nil {
		return nil
	}
	if err := b.registerCard(reg, col, c); err != nil {
		b.mu.Lock()
		col.cards = col.cards[:len(col.cards)-1]
		b.mu.Unlock()
		return err
	}
	return nil
}

// RemoveCard takes a card off the board and out of the registry.
func (b *Board) RemoveCard(id schemas.DraggableID) error {
	b.mu.Lock()
	col, index := b.findCardLocked(id)
	if col == nil {
		b.mu.Unlock()
		return fmt.Errorf("card %q is not on the board", id)
	}
	c := col.cards[index]
	reg := b.registry
	b.mu.Unlock()

	if reg != nil {
		if err := reg.UnregisterDraggable(c.id, c.token); err != nil {
			return err
		}
	}
	b.mu.Lock()
	col, index = b.findCardLocked(id)
	if col != nil {
		col.cards = append(col.cards[:index], col.cards[index+1:]...)
	}
	b.mu.Unlock()
	return b.reindex(col)
}

func (b *Board) findColumnLocked(id schemas.DroppableID) *column {
	for _, col := range b.columns {
		if col.id == id {
			return col
		}
	}
	return nil
}

func (b *Board) findCardLocked(id schemas.DraggableID) (*column, int) {
	for _, col := range b.columns {
		for i, c := range col.cards {
			if c.id == id {
				return col, i
			}
		}
	}
	return nil, -1
}

// reindex pushes the current card order of col into the registry.
func (b *Board) reindex(col *column) error {
	if col == nil {
		return nil
	}
	b.mu.Lock()
	reg := b.registry
	type update struct {
		token      string
		descriptor schemas.DraggableDescriptor
	}
	updates := make([]update, 0, len(col.cards))
	for _, c := range col.cards {
		updates = append(updates, update{token: c.token, descriptor: b.draggableDescriptorLocked(col, c)})
	}
	b.mu.Unlock()

	if reg == nil {
		return nil
	}
	var errs []error
	for _, u := range updates {
		if err := reg.UpdateDraggable(u.token, u.descriptor.ID, u.descriptor); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// -- Drop results --

// Apply moves cards the way a finished drag asks for. Drops without a
// destination leave the board unchanged.
func (b *Board) Apply(result schemas.DropResult) error {
	if result.Combine != nil {
		return b.combine(result.DraggableID, result.Combine.DraggableID)
	}
	if result.Destination == nil {
		return nil
	}

	b.mu.Lock()
	source, index := b.findCardLocked(result.DraggableID)
	if source == nil {
		b.mu.Unlock()
		return fmt.Errorf("card %q is not on the board", result.DraggableID)
	}
	target := b.findColumnLocked(result.Destination.DroppableID)
	if target == nil {
		b.mu.Unlock()
		return fmt.Errorf("dropping into %q: %w", result.Destination.DroppableID, ErrUnknownColumn)
	}
	c := source.cards[index]
	source.cards = append(source.cards[:index], source.cards[index+1:]...)
	at := min(max(result.Destination.Index, 0), len(target.cards))
	target.cards = append(target.cards[:at], append([]*card{c}, target.cards[at:]...)...)
	b.mu.Unlock()

	b.logger.Debug("Moved card.",
		zap.String("card", string(c.id)),
		zap.String("column", string(target.id)),
		zap.Int("index", at))
	if err := b.reindex(source); err != nil {
		return err
	}
	if target != source {
		return b.reindex(target)
	}
	return nil
}

// combine folds the dragged card into the card it was dropped on.
func (b *Board) combine(draggedID, intoID schemas.DraggableID) error {
	b.mu.Lock()
	col, index := b.findCardLocked(intoID)
	dragCol, dragIndex := b.findCardLocked(draggedID)
	if col == nil || dragCol == nil {
		b.mu.Unlock()
		return fmt.Errorf("cannot combine %q into %q", draggedID, intoID)
	}
	col.cards[index].label += " + " + dragCol.cards[dragIndex].label
	b.mu.Unlock()
	return b.RemoveCard(draggedID)
}

// -- Reading --

// Orders lists the card ids of every column, in column order.
func (b *Board) Orders() map[string][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string][]string, len(b.columns))
	for _, col := range b.columns {
		ids := make([]string, 0, len(col.cards))
		for _, c := range col.cards {
			ids = append(ids, string(c.id))
		}
		out[string(col.id)] = ids
	}
	return out
}

// ColumnIDs returns the column ids from left to right.
func (b *Board) ColumnIDs() []schemas.DroppableID {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]schemas.DroppableID, 0, len(b.columns))
	for _, col := range b.columns {
		ids = append(ids, col.id)
	}
	return ids
}
