package simulation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/board"
	"github.com/xkilldash9x/dropzone/internal/config"
	"github.com/xkilldash9x/dropzone/internal/engine"
	"github.com/xkilldash9x/dropzone/internal/frame"
	"github.com/xkilldash9x/dropzone/internal/humanoid"
	"github.com/xkilldash9x/dropzone/internal/registry"
	"github.com/xkilldash9x/dropzone/internal/sensor"
	"github.com/xkilldash9x/dropzone/internal/session"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// settleLimit bounds how many frames a step may take to go quiet.
const settleLimit = 600

// Runner replays scenarios.
type Runner struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger.With(zap.String("component", "simulation"))}
}

// run is the world a single scenario plays out in.
type run struct {
	r        *Runner
	logger   *zap.Logger
	board    *board.Board
	engine   *engine.Engine
	loop     *frame.Loop
	clock    *frame.ManualClock
	mouse    *sensor.Mouse
	keyboard *sensor.Keyboard
	human    *humanoid.Humanoid

	frames       int
	results      []schemas.DropResult
	lastDuration float64
}

// Run replays s and reports what happened. Step failures are recorded in the
// report; the returned error is for setup problems and cancellation.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Report, error) {
	w, err := r.newRun(s)
	if err != nil {
		return nil, err
	}

	report := &Report{Name: s.Name, Before: w.board.Orders()}
	r.logger.Info("Running scenario.", zap.String("scenario", s.Name), zap.Int("steps", len(s.Steps)))

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome := StepReport{Number: i + 1, Step: step}
		before := len(w.results)
		if err := w.apply(step); err != nil {
			outcome.Error = err.Error()
			report.Failures = append(report.Failures, fmt.Sprintf("step %d (%s): %v", i+1, step.Action, err))
			w.logger.Warn("Step failed.", zap.Int("step", i+1), zap.String("action", step.Action), zap.Error(err))
		}
		if err := w.settle(); err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("step %d (%s): %v", i+1, step.Action, err))
		}
		if len(w.results) > before {
			result := w.results[len(w.results)-1]
			outcome.Result = &result
			outcome.DropDuration = w.lastDuration
		}
		report.Steps = append(report.Steps, outcome)
	}

	report.After = w.board.Orders()
	report.Frames = w.frames
	report.check(s.Expect)
	r.logger.Info("Scenario finished.",
		zap.String("scenario", s.Name),
		zap.Bool("passed", report.Passed),
		zap.Int("frames", w.frames))
	return report, nil
}

func (r *Runner) newRun(s *Scenario) (*run, error) {
	layout := board.DefaultLayout()
	if s.Layout != nil {
		layout = *s.Layout
	}
	b, err := board.New(layout, s.Columns, r.logger)
	if err != nil {
		return nil, err
	}
	reg := registry.New(r.logger, r.cfg.Engine.Diagnostics)
	if err := b.Register(reg); err != nil {
		return nil, err
	}

	w := &run{
		r:      r,
		logger: r.logger.With(zap.String("scenario", s.Name)),
		board:  b,
		loop:   frame.NewLoop(),
		clock:  frame.NewManualClock(time.Unix(0, 0)),
		human:  humanoid.New(humanoid.DefaultConfig(r.cfg.Simulate.Seed), r.logger),
	}
	w.engine, err = engine.New(engine.Options{
		Config:      r.cfg,
		Logger:      r.logger,
		Registry:    reg,
		Environment: b,
		Scheduler:   w.loop,
		Clock:       w.clock,
		Responders: engine.Responders{
			OnDragEnd: w.onDragEnd,
		},
	})
	if err != nil {
		return nil, err
	}
	keys := sensor.NewKeyMap(r.cfg.Sensor.Keys)
	w.mouse = sensor.NewMouse(w.engine, b, r.cfg.Sensor.SloppyClickThreshold, keys.Cancel, r.logger)
	w.keyboard = sensor.NewKeyboard(w.engine, keys, r.logger)
	return w, nil
}

func (w *run) onDragEnd(result schemas.DropResult) {
	w.results = append(w.results, result)
	if err := w.board.Apply(result); err != nil {
		w.logger.Error("Could not apply drop result.", zap.Error(err))
	}
}

// -- Steps --

func (w *run) apply(step Step) error {
	w.lastDuration = 0
	switch strings.ToLower(step.Action) {
	case ActionDrag:
		return w.drag(step)
	case ActionKeys:
		return w.keys(step)
	case ActionClick:
		center, ok := w.board.CardCenter(schemas.DraggableID(step.Card))
		if !ok {
			return fmt.Errorf("card %q is not on the board", step.Card)
		}
		if _, err := w.mouse.HandleMouse(mouseMsg(tea.MouseActionPress, center)); err != nil {
			return err
		}
		_, err := w.mouse.HandleMouse(mouseMsg(tea.MouseActionRelease, center))
		return err
	case ActionScrollWindow:
		w.board.ScrollWindow(geometry.Position{X: step.X, Y: step.Y})
		return w.engine.WindowScrolled(w.board.WindowScroll())
	case ActionScrollColumn:
		return w.board.ScrollColumn(schemas.DroppableID(step.Column), geometry.Position{X: step.X, Y: step.Y})
	case ActionAdd:
		return w.board.AddCard(schemas.DroppableID(step.Column), step.Card)
	case ActionRemove:
		return w.board.RemoveCard(schemas.DraggableID(step.Card))
	case ActionFrames:
		for i := 0; i < step.Frames; i++ {
			w.tick()
		}
		return nil
	}
	return fmt.Errorf("unknown action %q", step.Action)
}

func (w *run) target(step Step) (geometry.Position, error) {
	if step.Onto != "" {
		p, ok := w.board.CardCenter(schemas.DraggableID(step.Onto))
		if !ok {
			return p, fmt.Errorf("card %q is not on the board", step.Onto)
		}
		return p, nil
	}
	p, ok := w.board.SlotCenter(schemas.DroppableID(step.Column), step.Index)
	if !ok {
		return p, fmt.Errorf("column %q is not on the board", step.Column)
	}
	return p, nil
}

// drag presses on the card's center, walks the pointer to the target one
// frame at a time, and lets go.
func (w *run) drag(step Step) error {
	id := schemas.DraggableID(step.Card)
	start, ok := w.board.CardCenter(id)
	if !ok {
		return fmt.Errorf("card %q is not on the board", step.Card)
	}
	end, err := w.target(step)
	if err != nil {
		return err
	}

	handled, err := w.mouse.HandleMouse(mouseMsg(tea.MouseActionPress, start))
	if err != nil {
		return err
	}
	if !handled {
		return fmt.Errorf("card %q could not be picked up", step.Card)
	}

	for _, p := range w.path(start, end) {
		if _, err := w.mouse.HandleMouse(mouseMsg(tea.MouseActionMotion, p)); err != nil {
			return err
		}
		w.tick()
	}
	if step.Cancel {
		_, err = w.mouse.HandleKey(keyMsg("esc"))
	} else {
		_, err = w.mouse.HandleMouse(mouseMsg(tea.MouseActionRelease, end))
	}
	return err
}

func (w *run) path(start, end geometry.Position) []geometry.Position {
	cfg := w.r.cfg.Simulate
	if !cfg.Humanize {
		return humanoid.Linear(start, end, cfg.StepsPerMove)
	}
	dist := math.Hypot(end.X-start.X, end.Y-start.Y)
	return w.human.Path(start, end, w.human.StepsFor(dist, cfg.FrameInterval))
}

func (w *run) keys(step Step) error {
	w.keyboard.Focus(schemas.DraggableID(step.Card))
	for _, name := range step.Keys {
		if _, err := w.keyboard.HandleKey(keyMsg(name)); err != nil {
			return fmt.Errorf("key %q: %w", name, err)
		}
		w.tick()
	}
	return nil
}

// -- Time --

func (w *run) tick() {
	w.clock.Advance(w.r.cfg.Simulate.FrameInterval)
	w.loop.Step()
	w.frames++
}

// settle lets a drop animation play out and drains the frame loop.
func (w *run) settle() error {
	state := w.engine.State()
	if state.Phase == session.PhaseDropAnimating {
		w.lastDuration = state.Dropping.Duration
		frames := 1
		if interval := w.r.cfg.Simulate.FrameInterval.Seconds(); interval > 0 {
			frames = int(math.Ceil(state.Dropping.Duration / interval))
		}
		for i := 0; i < frames; i++ {
			w.tick()
		}
		if err := w.engine.DropAnimationFinished(); err != nil {
			return err
		}
	}
	steps := 0
	for w.loop.Pending() > 0 && steps < settleLimit {
		w.tick()
		steps++
	}
	if state := w.engine.State(); state.IsDragging() {
		return fmt.Errorf("drag still in progress in phase %s", state.Phase)
	}
	return nil
}

// -- Input synthesis --

func mouseMsg(action tea.MouseAction, p geometry.Position) tea.MouseMsg {
	return tea.MouseMsg{
		X:      int(math.Round(p.X)),
		Y:      int(math.Round(p.Y)),
		Action: action,
		Button: tea.MouseButtonLeft,
	}
}

// keyMsg builds the message a terminal would send for a key name.
func keyMsg(name string) tea.KeyMsg {
	switch strings.ToLower(name) {
	case "space", " ":
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc", "escape":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}
