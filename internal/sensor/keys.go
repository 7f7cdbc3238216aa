package sensor

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/xkilldash9x/dropzone/internal/config"
)

// KeyMap holds the key bindings the sensors and the board react to.
type KeyMap struct {
	Lift   key.Binding
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Cancel key.Binding
	Yank   key.Binding
	Quit   key.Binding
}

func binding(keys []string, help string) key.Binding {
	label := strings.Join(keys, "/")
	if label == " " {
		label = "space"
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, help))
}

// NewKeyMap builds bindings from configuration.
func NewKeyMap(cfg config.KeyBindings) KeyMap {
	return KeyMap{
		Lift:   binding(cfg.Lift, "lift/drop"),
		Up:     binding(cfg.Up, "up"),
		Down:   binding(cfg.Down, "down"),
		Left:   binding(cfg.Left, "left"),
		Right:  binding(cfg.Right, "right"),
		Cancel: binding(cfg.Cancel, "cancel"),
		Yank:   binding(cfg.Yank, "copy board"),
		Quit:   binding(cfg.Quit, "quit"),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Lift, k.Cancel, k.Yank, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Lift, k.Cancel},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Yank, k.Quit},
	}
}
