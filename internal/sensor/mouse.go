// Package sensor turns raw terminal input into engine actions. Sensors are
// driven from a single goroutine, normally the bubbletea update loop.
package sensor

import (
	"errors"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"
	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/engine"
	"github.com/xkilldash9x/dropzone/pkg/geometry"
)

// HitTester finds the draggable under a client point.
type HitTester interface {
	CardAt(p geometry.Position) (schemas.DraggableID, bool)
}

type mousePhase int

const (
	mouseIdle mousePhase = iota
	mousePending
	mouseDragging
)

// Mouse is a pointer sensor. A press on a card claims the lock; the drag
// only starts once the pointer has travelled past the sloppy click threshold.
type Mouse struct {
	engine    *engine.Engine
	hits      HitTester
	threshold float64
	cancel    key.Binding
	logger    *zap.Logger

	phase   mousePhase
	start   geometry.Position
	pending *engine.PreDragActions
	drag    *engine.FluidDragActions
}

// NewMouse creates a mouse sensor. cancel is the binding that aborts a drag
// in progress.
func NewMouse(e *engine.Engine, hits HitTester, threshold float64, cancel key.Binding, logger *zap.Logger) *Mouse {
	return &Mouse{
		engine:    e,
		hits:      hits,
		threshold: threshold,
		cancel:    cancel,
		logger:    logger.With(zap.String("component", "mouse_sensor")),
	}
}

func point(msg tea.MouseMsg) geometry.Position {
	return geometry.Position{X: float64(msg.X), Y: float64(msg.Y)}
}

// IsDragging reports whether the sensor is moving an item.
func (m *Mouse) IsDragging() bool {
	return m.phase == mouseDragging
}

// IsPending reports whether the sensor holds the lock but has not lifted yet.
func (m *Mouse) IsPending() bool {
	return m.phase == mousePending
}

// HandleMouse reacts to one mouse event and reports whether it consumed it.
func (m *Mouse) HandleMouse(msg tea.MouseMsg) (bool, error) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			// Any other button cancels a drag in progress.
			if m.phase != mouseIdle {
				return true, m.stop(true)
			}
			return false, nil
		}
		return m.press(point(msg))
	case tea.MouseActionMotion:
		return m.motion(point(msg))
	case tea.MouseActionRelease:
		if m.phase == mouseIdle {
			return false, nil
		}
		return true, m.stop(false)
	}
	return false, nil
}

// HandleKey lets the cancel binding abort a pointer drag.
func (m *Mouse) HandleKey(msg tea.KeyMsg) (bool, error) {
	if m.phase == mouseIdle || !key.Matches(msg, m.cancel) {
		return false, nil
	}
	return true, m.stop(true)
}

func (m *Mouse) press(p geometry.Position) (bool, error) {
	if m.phase != mouseIdle {
		return true, nil
	}
	id, ok := m.hits.CardAt(p)
	if !ok {
		return false, nil
	}
	pre, err := m.engine.TryGetLock(id, m.reset)
	if err != nil {
		if errors.Is(err, engine.ErrLockUnavailable) || errors.Is(err, engine.ErrCannotStartDrag) {
			m.logger.Debug("Press did not start a drag.", zap.String("draggable_id", string(id)), zap.Error(err))
			return false, nil
		}
		return false, err
	}
	m.phase = mousePending
	m.start = p
	m.pending = pre
	return true, nil
}

func (m *Mouse) motion(p geometry.Position) (bool, error) {
	switch m.phase {
	case mousePending:
		if !m.pending.IsActive() {
			m.reset()
			return false, nil
		}
		if math.Hypot(p.X-m.start.X, p.Y-m.start.Y) < m.threshold {
			return true, nil
		}
		drag, err := m.pending.FluidLift(m.start)
		if err != nil {
			m.reset()
			return true, err
		}
		m.phase = mouseDragging
		m.drag = drag
		m.pending = nil
		return true, m.move(p)
	case mouseDragging:
		return true, m.move(p)
	}
	return false, nil
}

func (m *Mouse) move(p geometry.Position) error {
	err := m.drag.Move(p)
	if errors.Is(err, engine.ErrInactive) {
		m.reset()
		return nil
	}
	return err
}

// stop ends whatever the sensor is doing. A pending press that never moved
// far enough is a click and just gives the lock back.
func (m *Mouse) stop(cancel bool) error {
	defer m.reset()
	switch m.phase {
	case mousePending:
		m.pending.Abort()
	case mouseDragging:
		var err error
		if cancel {
			err = m.drag.Cancel()
		} else {
			err = m.drag.Drop()
		}
		if errors.Is(err, engine.ErrInactive) {
			return nil
		}
		return err
	}
	return nil
}

// reset forgets the current drag. The engine also calls it when the lock is
// taken away.
func (m *Mouse) reset() {
	m.phase = mouseIdle
	m.pending = nil
	m.drag = nil
}
