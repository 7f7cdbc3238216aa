package board

import (
	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/dimension"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

func box(r geometry.Rect) geometry.BoxModel {
	return geometry.CreateBox(r, geometry.Spacing{}, geometry.Spacing{}, geometry.Spacing{})
}

func (b *Board) columnLeftLocked(col *column) float64 {
	for i, other := range b.columns {
		if other == col {
			return b.layout.Left + float64(i)*(b.layout.ColumnWidth+b.layout.Gap)
		}
	}
	return b.layout.Left
}

func (b *Board) contentHeightLocked(col *column) float64 {
	return float64(len(col.cards)) * b.layout.ItemHeight
}

// frameRectLocked is the column's visible rectangle in client coordinates.
func (b *Board) frameRectLocked(col *column) geometry.Rect {
	l := b.layout
	height := l.ColumnHeight
	if !col.scrollable {
		height = max(height, b.contentHeightLocked(col))
	}
	return geometry.RectFromXYWH(b.columnLeftLocked(col)-b.windowScroll.X, l.Top-b.windowScroll.Y, l.ColumnWidth, height)
}

// listRectLocked is the full card list, which slides under the frame as the
// column scrolls.
func (b *Board) listRectLocked(col *column) geometry.Rect {
	frame := b.frameRectLocked(col)
	if !col.scrollable {
		return frame
	}
	height := max(b.layout.ColumnHeight, b.contentHeightLocked(col))
	return geometry.RectFromXYWH(frame.Left, frame.Top-col.scroll.Y, frame.Width(), height)
}

func (b *Board) cardRectLocked(col *column, index int) geometry.Rect {
	list := b.listRectLocked(col)
	return geometry.RectFromXYWH(list.Left, list.Top+float64(index)*b.layout.ItemHeight, list.Width(), b.layout.ItemHeight)
}

func (b *Board) columnMaxScrollLocked(col *column) geometry.Position {
	if !col.scrollable {
		return geometry.Origin
	}
	return dimension.MaxScroll(
		schemas.ScrollSize{ScrollWidth: b.layout.ColumnWidth, ScrollHeight: b.contentHeightLocked(col)},
		b.layout.ColumnWidth, b.layout.ColumnHeight)
}

func (b *Board) windowMaxScrollLocked() geometry.Position {
	l := b.layout
	width := l.Left + float64(len(b.columns))*(l.ColumnWidth+l.Gap)
	height := l.Top + l.ColumnHeight
	for _, col := range b.columns {
		if !col.scrollable {
			height = max(height, l.Top+b.contentHeightLocked(col))
		}
	}
	return geometry.Position{
		X: max(0, width-l.ViewportWidth),
		Y: max(0, height-l.ViewportHeight),
	}
}

func clampPosition(p, upper geometry.Position) geometry.Position {
	return geometry.Position{
		X: min(max(p.X, 0), upper.X),
		Y: min(max(p.Y, 0), upper.Y),
	}
}

// -- engine.Environment --

// Viewport reports the page viewport at the current window scroll.
func (b *Board) Viewport() schemas.Viewport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return dimension.NewViewport(b.layout.ViewportWidth, b.layout.ViewportHeight, b.windowScroll, b.windowMaxScrollLocked())
}

// ScrollWindow moves the page, clamped to its scrollable range.
func (b *Board) ScrollWindow(change geometry.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windowScroll = clampPosition(b.windowScroll.Add(change), b.windowMaxScrollLocked())
}

// WindowScroll is the current page scroll.
func (b *Board) WindowScroll() geometry.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.windowScroll
}

// -- registry.DroppableCallbacks --

type columnCallbacks struct {
	b   *Board
	col *column
}

func (c *columnCallbacks) GetDimensionAndWatchScroll(windowScroll geometry.Position, onScroll func(geometry.Position)) schemas.DroppableDimension {
	b := c.b
	b.mu.Lock()
	defer b.mu.Unlock()

	col := c.col
	col.watcher = onScroll
	list := box(b.listRectLocked(col))
	args := dimension.DroppableArgs{
		Descriptor:       b.droppableDescriptor(col),
		IsEnabled:        col.enabled,
		IsCombineEnabled: col.combineEnabled,
		Direction:        geometry.Vertical,
		Client:           list,
		Page:             list.WithScroll(windowScroll),
	}
	if col.scrollable {
		frame := box(b.frameRectLocked(col))
		args.Closest = &dimension.Closest{
			Client:            frame,
			Page:              frame.WithScroll(windowScroll),
			ScrollSize:        schemas.ScrollSize{ScrollWidth: b.layout.ColumnWidth, ScrollHeight: b.contentHeightLocked(col)},
			Scroll:            col.scroll,
			ShouldClipSubject: true,
		}
	}
	return dimension.NewDroppable(args)
}

func (c *columnCallbacks) GetScrollWhileDragging() geometry.Position {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	return c.col.scroll
}

// Scroll moves the column and reports the new offset to whoever is watching.
func (c *columnCallbacks) Scroll(change geometry.Position) {
	b := c.b
	b.mu.Lock()
	col := c.col
	before := col.scroll
	col.scroll = clampPosition(col.scroll.Add(change), b.columnMaxScrollLocked(col))
	after := col.scroll
	watcher := col.watcher
	b.mu.Unlock()

	if watcher != nil && !after.IsEqual(before) {
		watcher(after)
	}
}

func (c *columnCallbacks) DragStopped() {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	c.col.watcher = nil
}

// ScrollColumn scrolls a column the way a user with a scroll wheel would.
func (b *Board) ScrollColumn(id schemas.DroppableID, change geometry.Position) error {
	b.mu.Lock()
	col := b.findColumnLocked(id)
	b.mu.Unlock()
	if col == nil {
		return ErrUnknownColumn
	}
	(&columnCallbacks{b: b, col: col}).Scroll(change)
	return nil
}

// -- registry.DraggableMeasurer --

type cardMeasurer struct {
	b  *Board
	id schemas.DraggableID
}

func (m cardMeasurer) GetDimension(windowScroll geometry.Position) schemas.DraggableDimension {
	b := m.b
	b.mu.Lock()
	defer b.mu.Unlock()

	col, index := b.findCardLocked(m.id)
	if col == nil {
		return schemas.DraggableDimension{Descriptor: schemas.DraggableDescriptor{ID: m.id, Type: DefaultType}}
	}
	descriptor := b.draggableDescriptorLocked(col, col.cards[index])
	return dimension.NewDraggable(descriptor, box(b.cardRectLocked(col, index)), windowScroll)
}

// -- Views --

// CardView is a card as it currently sits on screen, ignoring drag offsets.
type CardView struct {
	ID     schemas.DraggableID
	Label  string
	Client geometry.Rect
}

// ColumnView is a column and its cards in client coordinates.
type ColumnView struct {
	ID         schemas.DroppableID
	Title      string
	Enabled    bool
	Scrollable bool
	Client     geometry.Rect
	Scroll     geometry.Position
	Cards      []CardView
}

// Columns snapshots the board for rendering.
func (b *Board) Columns() []ColumnView {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ColumnView, 0, len(b.columns))
	for _, col := range b.columns {
		view := ColumnView{
			ID:         col.id,
			Title:      col.title,
			Enabled:    col.enabled,
			Scrollable: col.scrollable,
			Client:     b.frameRectLocked(col),
			Scroll:     col.scroll,
		}
		for i, c := range col.cards {
			view.Cards = append(view.Cards, CardView{ID: c.id, Label: c.label, Client: b.cardRectLocked(col, i)})
		}
		out = append(out, view)
	}
	return out
}

// CardAt hit-tests a client point against the visible cards.
func (b *Board) CardAt(p geometry.Position) (schemas.DraggableID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, col := range b.columns {
		frame := b.frameRectLocked(col)
		if !contains(frame, p) {
			continue
		}
		for i, c := range col.cards {
			if contains(b.cardRectLocked(col, i), p) {
				return c.id, true
			}
		}
	}
	return "", false
}

// CardCenter is the client center of a card.
func (b *Board) CardCenter(id schemas.DraggableID) (geometry.Position, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	col, index := b.findCardLocked(id)
	if col == nil {
		return geometry.Position{}, false
	}
	return b.cardRectLocked(col, index).Center(), true
}

// SlotCenter is the client center of position index in a column, which may
// be one past the last card.
func (b *Board) SlotCenter(id schemas.DroppableID, index int) (geometry.Position, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	col := b.findColumnLocked(id)
	if col == nil {
		return geometry.Position{}, false
	}
	return b.cardRectLocked(col, index).Center(), true
}

// Label returns a card's current text.
func (b *Board) Label(id schemas.DraggableID) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	col, index := b.findCardLocked(id)
	if col == nil {
		return "", false
	}
	return col.cards[index].label, true
}

func contains(r geometry.Rect, p geometry.Position) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}
