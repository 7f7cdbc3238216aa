package sensor

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"
	"go.uber.org/zap"

	"github.com/xkilldash9x/dropzone/api/schemas"
	"github.com/xkilldash9x/dropzone/internal/engine"
)

// Keyboard is a snap sensor: the lift key picks up the focused card, the
// direction keys move it one place at a time, and the lift key drops it.
type Keyboard struct {
	engine *engine.Engine
	keys   KeyMap
	logger *zap.Logger

	focused schemas.DraggableID
	drag    *engine.SnapDragActions
}

func NewKeyboard(e *engine.Engine, keys KeyMap, logger *zap.Logger) *Keyboard {
	return &Keyboard{
		engine: e,
		keys:   keys,
		logger: logger.With(zap.String("component", "keyboard_sensor")),
	}
}

// Focus sets the card the lift key picks up.
func (k *Keyboard) Focus(id schemas.DraggableID) {
	k.focused = id
}

// Focused is the card the lift key picks up.
func (k *Keyboard) Focused() schemas.DraggableID {
	return k.focused
}

// IsDragging reports whether the sensor is moving an item.
func (k *Keyboard) IsDragging() bool {
	return k.drag != nil
}

// HandleKey reacts to one key press and reports whether it consumed it.
func (k *Keyboard) HandleKey(msg tea.KeyMsg) (bool, error) {
	if k.drag == nil {
		if !key.Matches(msg, k.keys.Lift) || k.focused == "" {
			return false, nil
		}
		return true, k.lift()
	}

	var err error
	switch {
	case key.Matches(msg, k.keys.Lift):
		err = k.finish(k.drag.Drop)
	case key.Matches(msg, k.keys.Cancel):
		err = k.finish(k.drag.Cancel)
	case key.Matches(msg, k.keys.Up):
		err = k.drag.MoveUp()
	case key.Matches(msg, k.keys.Down):
		err = k.drag.MoveDown()
	case key.Matches(msg, k.keys.Left):
		err = k.drag.MoveLeft()
	case key.Matches(msg, k.keys.Right):
		err = k.drag.MoveRight()
	default:
		// Everything else is swallowed while an item is held.
		return true, nil
	}
	if errors.Is(err, engine.ErrInactive) {
		k.reset()
		return true, nil
	}
	return true, err
}

func (k *Keyboard) lift() error {
	pre, err := k.engine.TryGetLock(k.focused, k.reset)
	if err != nil {
		if errors.Is(err, engine.ErrLockUnavailable) || errors.Is(err, engine.ErrCannotStartDrag) {
			k.logger.Debug("Lift key did not start a drag.", zap.String("draggable_id", string(k.focused)), zap.Error(err))
			return nil
		}
		return err
	}
	drag, err := pre.SnapLift()
	if err != nil {
		return err
	}
	k.drag = drag
	return nil
}

func (k *Keyboard) finish(fn func() error) error {
	defer k.reset()
	return fn()
}

func (k *Keyboard) reset() {
	k.drag = nil
}
