package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xkilldash9x/dropzone/internal/board"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

type tone int

const (
	toneBlank tone = iota
	toneColumn
	toneColumnOver
	toneColumnDisabled
	toneTitle
	toneCard
	toneFocused
	toneDragging
	toneCombine
)

var tones = map[tone]lipgloss.Style{
	toneBlank:          lipgloss.NewStyle(),
	toneColumn:         lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	toneColumnOver:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	toneColumnDisabled: lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
	toneTitle:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
	toneCard:           lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	toneFocused:        lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	toneDragging:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	toneCombine:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
}

var statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

type cell struct {
	r rune
	t tone
}

// canvas is a fixed grid of styled cells in client coordinates.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{r: ' '}
		}
		c.cells[y] = row
	}
	return c
}

// clip is the area drawing is limited to, in cells.
type clip struct{ left, top, right, bottom int }

func (c *canvas) full() clip { return clip{0, 0, c.w, c.h} }

func clipOf(r geometry.Rect) clip {
	return clip{
		left:   int(math.Floor(r.Left)),
		top:    int(math.Floor(r.Top)),
		right:  int(math.Ceil(r.Right)),
		bottom: int(math.Ceil(r.Bottom)),
	}
}

func (c *canvas) set(x, y int, r rune, t tone, within clip) {
	if x < within.left || x >= within.right || y < within.top || y >= within.bottom {
		return
	}
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	c.cells[y][x] = cell{r: r, t: t}
}

func (c *canvas) text(x, y int, s string, t tone, within clip) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, t, within)
	}
}

// box draws a rectangle outline with label on its first inner row. A box one
// cell tall is drawn as [label].
func (c *canvas) box(r geometry.Rect, label string, t tone, within clip) {
	b := clipOf(r)
	w, h := b.right-b.left, b.bottom-b.top
	if w < 2 || h < 1 {
		return
	}
	if h == 1 {
		c.set(b.left, b.top, '[', t, within)
		c.set(b.right-1, b.top, ']', t, within)
		c.text(b.left+1, b.top, truncate(label, w-2), t, within)
		return
	}
	for x := b.left + 1; x < b.right-1; x++ {
		c.set(x, b.top, '─', t, within)
		c.set(x, b.bottom-1, '─', t, within)
	}
	for y := b.top + 1; y < b.bottom-1; y++ {
		c.set(b.left, y, '│', t, within)
		c.set(b.right-1, y, '│', t, within)
		for x := b.left + 1; x < b.right-1; x++ {
			c.set(x, y, ' ', t, within)
		}
	}
	c.set(b.left, b.top, '┌', t, within)
	c.set(b.right-1, b.top, '┐', t, within)
	c.set(b.left, b.bottom-1, '└', t, within)
	c.set(b.right-1, b.bottom-1, '┘', t, within)
	row := b.top + 1
	if h == 2 {
		row = b.top
	}
	c.text(b.left+1, row, truncate(label, w-2), t, within)
}

func (c *canvas) String() string {
	var sb strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			sb.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].t == row[start].t {
				continue
			}
			var run strings.Builder
			for _, cl := range row[start:x] {
				run.WriteRune(cl.r)
			}
			sb.WriteString(tones[row[start].t].Render(run.String()))
			start = x
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

func round(p geometry.Position) geometry.Position {
	return geometry.Position{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// View draws the board as the engine currently sees it.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	vp := m.board.Viewport().Frame
	w, h := int(vp.Width()), int(vp.Height())
	if m.width > 0 && m.width < w {
		w = m.width
	}
	c := newCanvas(w, h)
	focused := m.keyboard.Focused()

	type lifted struct {
		rect  geometry.Rect
		label string
	}
	var top []lifted

	for _, col := range m.board.Columns() {
		drop := m.engine.DroppableSnapshot(col.ID)
		frameTone := toneColumn
		switch {
		case !col.Enabled:
			frameTone = toneColumnDisabled
		case drop.IsDraggingOver:
			frameTone = toneColumnOver
		}
		m.drawColumn(c, col, frameTone)

		inner := clipOf(col.Client)
		for _, card := range col.Cards {
			snap := m.engine.DraggableSnapshot(card.ID)
			rect := geometry.Offset(card.Client, round(snap.Offset))
			if snap.IsDragging || snap.IsDropAnimating {
				top = append(top, lifted{rect: rect, label: card.Label})
				continue
			}
			t := toneCard
			switch {
			case snap.CombineTargetFor != "":
				t = toneCombine
			case card.ID == focused:
				t = toneFocused
			}
			c.box(rect, card.Label, t, inner)
		}
	}
	for _, l := range top {
		c.box(l.rect, l.label, toneDragging, c.full())
	}

	var sb strings.Builder
	sb.WriteString(c.String())
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render(m.status))
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

// drawColumn draws the title above the column and a rail down each side.
func (m *Model) drawColumn(c *canvas, col board.ColumnView, t tone) {
	b := clipOf(col.Client)
	title := col.Title
	if title == "" {
		title = string(col.ID)
	}
	if col.Scrollable && col.Scroll.Y > 0 {
		title += " ↑"
	}
	c.text(b.left, b.top-1, truncate(title, b.right-b.left), toneTitle, c.full())
	for y := b.top; y < b.bottom; y++ {
		c.set(b.left-1, y, '▏', t, c.full())
	}
}
