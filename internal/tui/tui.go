// Package tui is an interactive terminal board driven by the drag engine.
// Mouse drags go through the mouse sensor, keyboard drags through the
// keyboard sensor, and the engine's frame requests are served by a ticking
// frame loop.
package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/board"
	"github.com/xkilldash9x/dropzone/internal/config"
	"github.com/xkilldash9x/dropzone/internal/engine"
	"github.com/xkilldash9x/dropzone/internal/frame"
	"github.com/xkilldash9x/dropzone/internal/registry"
	"github.com/xkilldash9x/dropzone/internal/sensor"
	"github.com/xkilldash9x/dropzone/internal/session"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// wheelStep is how many cells one wheel notch scrolls.
const wheelStep = 2

// Options configures a Model.
type Options struct {
	Config *config.Config
	Logger *zap.Logger
	Board  *board.Board
	// Clock defaults to the system clock.
	Clock frame.Clock
	// Copy writes to the clipboard; defaults to the system clipboard.
	Copy func(string) error
}

type frameMsg time.Time

// dropDoneMsg is sent once a drop animation of the given generation has played.
type dropDoneMsg struct{ generation int }

// Model is the bubbletea model for the board.
type Model struct {
	cfg      *config.Config
	logger   *zap.Logger
	board    *board.Board
	engine   *engine.Engine
	loop     *frame.Loop
	mouse    *sensor.Mouse
	keyboard *sensor.Keyboard
	keys     sensor.KeyMap
	help     help.Model
	copy     func(string) error

	width, height int
	status        string

	// dropWait counts drop animations; a timer only finishes its own.
	dropWait      int
	dropScheduled bool
	quitting      bool
}

// New registers the board and builds an engine around it.
func New(opts Options) (*Model, error) {
	if opts.Board == nil {
		return nil, errors.New("tui requires a board")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	m := &Model{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "tui")),
		board:  opts.Board,
		loop:   frame.NewLoop(),
		keys:   sensor.NewKeyMap(cfg.Sensor.Keys),
		help:   help.New(),
		copy:   copyFn,
		status: "Drag a card with the mouse, or focus one and press space.",
	}

	reg := registry.New(logger, cfg.Engine.Diagnostics)
	if err := opts.Board.Register(reg); err != nil {
		return nil, fmt.Errorf("registering board: %w", err)
	}
	eng, err := engine.New(engine.Options{
		Config:      cfg,
		Logger:      logger,
		Registry:    reg,
		Environment: opts.Board,
		Scheduler:   m.loop,
		Clock:       opts.Clock,
		Responders: engine.Responders{
			OnDragStart: m.onDragStart,
			OnDragEnd:   m.onDragEnd,
		},
	})
	if err != nil {
		return nil, err
	}
	m.engine = eng
	m.mouse = sensor.NewMouse(eng, opts.Board, cfg.Sensor.SloppyClickThreshold, m.keys.Cancel, logger)
	m.keyboard = sensor.NewKeyboard(eng, m.keys, logger)
	m.focusFirst()
	return m, nil
}

// Run starts the program with mouse motion reporting on.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}

// Orders is the board's current card order per column.
func (m *Model) Orders() map[string][]string {
	return m.board.Orders()
}

func (m *Model) onDragStart(start schemas.DragStart) {
	m.status = fmt.Sprintf("Lifted %s from %s, position %d.", start.DraggableID, start.Source.DroppableID, start.Source.Index+1)
}

func (m *Model) onDragEnd(result schemas.DropResult) {
	if err := m.board.Apply(result); err != nil {
		m.logger.Error("Could not apply drop result.", zap.Error(err))
		m.status = "Drop could not be applied: " + err.Error()
		return
	}
	switch {
	case result.Combine != nil:
		m.status = fmt.Sprintf("Combined %s with %s.", result.DraggableID, result.Combine.DraggableID)
	case result.Destination != nil:
		m.status = fmt.Sprintf("Moved %s to %s, position %d.", result.DraggableID, result.Destination.DroppableID, result.Destination.Index+1)
	default:
		m.status = fmt.Sprintf("%s returned home.", result.DraggableID)
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.Simulate.FrameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Init starts the frame loop.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update routes input to the sensors and keeps the frame loop turning.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case frameMsg:
		m.loop.Step()
		return m, tea.Batch(m.tick(), m.watchDrop())

	case dropDoneMsg:
		if msg.generation != m.dropWait || !m.dropScheduled {
			return m, nil
		}
		m.dropScheduled = false
		if m.engine.State().Phase == session.PhaseDropAnimating {
			m.report(m.engine.DropAnimationFinished())
		}
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, m.watchDrop()

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, tea.Batch(cmd, m.watchDrop())
	}
	return m, nil
}

// watchDrop schedules the end of a drop animation once one starts.
func (m *Model) watchDrop() tea.Cmd {
	state := m.engine.State()
	if state.Phase != session.PhaseDropAnimating || m.dropScheduled {
		return nil
	}
	m.dropScheduled = true
	m.dropWait++
	generation := m.dropWait
	d := time.Duration(state.Dropping.Duration * float64(time.Second))
	return tea.Tick(d, func(time.Time) tea.Msg { return dropDoneMsg{generation: generation} })
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action == tea.MouseActionPress && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown) {
		m.wheel(msg)
		return
	}
	wasDragging := m.mouse.IsDragging()
	handled, err := m.mouse.HandleMouse(msg)
	m.report(err)
	if handled && msg.Action == tea.MouseActionPress && !wasDragging {
		if id, ok := m.board.CardAt(geometry.Position{X: float64(msg.X), Y: float64(msg.Y)}); ok {
			m.keyboard.Focus(id)
		}
	}
}

// wheel scrolls the column under the pointer, or the page when the pointer
// is not over a scrollable column.
func (m *Model) wheel(msg tea.MouseMsg) {
	change := geometry.Position{Y: wheelStep}
	if msg.Button == tea.MouseButtonWheelUp {
		change.Y = -wheelStep
	}
	p := geometry.Position{X: float64(msg.X), Y: float64(msg.Y)}
	for _, col := range m.board.Columns() {
		if col.Scrollable && col.Client.Left <= p.X && p.X < col.Client.Right && col.Client.Top <= p.Y && p.Y < col.Client.Bottom {
			m.report(m.board.ScrollColumn(col.ID, change))
			return
		}
	}
	m.board.ScrollWindow(change)
	m.report(m.engine.WindowScrolled(m.board.WindowScroll()))
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.engine.Abandon()
		m.quitting = true
		return tea.Quit
	}
	if handled, err := m.mouse.HandleKey(msg); handled {
		m.report(err)
		return nil
	}
	if handled, err := m.keyboard.HandleKey(msg); handled {
		m.report(err)
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Yank):
		if err := m.copy(FormatOrders(m.board.Orders())); err != nil {
			m.logger.Warn("Could not copy the board.", zap.Error(err))
			m.status = "Copy failed: " + err.Error()
			return nil
		}
		m.status = "Board copied to the clipboard."
	case key.Matches(msg, m.keys.Up):
		m.moveFocus(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.moveFocus(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.moveFocus(1, 0)
	case msg.String() == "?":
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) report(err error) {
	if err == nil {
		return
	}
	m.logger.Warn("Input was rejected.", zap.Error(err))
	m.status = "Error: " + err.Error()
}

// -- Focus --

func (m *Model) focusFirst() {
	for _, col := range m.board.Columns() {
		if len(col.Cards) > 0 {
			m.keyboard.Focus(col.Cards[0].ID)
			return
		}
	}
}

func (m *Model) focusPosition(columns []board.ColumnView) (int, int) {
	focused := m.keyboard.Focused()
	for c, col := range columns {
		for i, card := range col.Cards {
			if card.ID == focused {
				return c, i
			}
		}
	}
	return -1, -1
}

// moveFocus walks the focus between cards. Moving sideways keeps the row
// where the target column has one.
func (m *Model) moveFocus(dx, dy int) {
	columns := m.board.Columns()
	c, i := m.focusPosition(columns)
	if c < 0 {
		m.focusFirst()
		return
	}
	if dy != 0 {
		next := i + dy
		if next >= 0 && next < len(columns[c].Cards) {
			m.keyboard.Focus(columns[c].Cards[next].ID)
		}
		return
	}
	for nc := c + dx; nc >= 0 && nc < len(columns); nc += dx {
		cards := columns[nc].Cards
		if len(cards) == 0 {
			continue
		}
		m.keyboard.Focus(cards[min(i, len(cards)-1)].ID)
		return
	}
}

// FormatOrders renders orders as one "column: a, b" line per column.
func FormatOrders(orders map[string][]string) string {
	names := make([]string, 0, len(orders))
	for name := range orders {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "%s: %s\n", name, strings.Join(orders[name], ", "))
	}
	return sb.String()
}
