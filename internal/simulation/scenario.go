// Package simulation replays scripted drags from YAML scenarios against a
// real engine and an in-memory board.
package simulation

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/dropzone/internal/board"
)

// Step actions.
const (
	ActionDrag         = "drag"
	ActionKeys         = "keys"
	ActionClick        = "click"
	ActionScrollWindow = "scroll_window"
	ActionScrollColumn = "scroll_column"
	ActionAdd          = "add"
	ActionRemove       = "remove"
	ActionFrames       = "frames"
)

// Step is one scripted interaction.
type Step struct {
	Action string `mapstructure:"action" json:"action"`
	Card   string `mapstructure:"card" json:"card,omitempty"`
	// Column and Index name the destination of a drag, or the column of an
	// add or scroll.
	Column string `mapstructure:"column" json:"column,omitempty"`
	Index  int    `mapstructure:"index" json:"index,omitempty"`
	// Onto drags the card over another card to combine with it.
	Onto string `mapstructure:"onto" json:"onto,omitempty"`
	// Cancel presses the cancel key instead of releasing.
	Cancel bool     `mapstructure:"cancel" json:"cancel,omitempty"`
	Keys   []string `mapstructure:"keys" json:"keys,omitempty"`
	X      float64  `mapstructure:"x" json:"x,omitempty"`
	Y      float64  `mapstructure:"y" json:"y,omitempty"`
	Frames int      `mapstructure:"frames" json:"frames,omitempty"`
}

// Expectation is checked once every step has run.
type Expectation struct {
	Orders map[string][]string `mapstructure:"orders"`
}

// Scenario is a board plus the steps to replay on it.
type Scenario struct {
	Name    string             `mapstructure:"name"`
	Layout  *board.Layout      `mapstructure:"layout"`
	Columns []board.ColumnSpec `mapstructure:"columns"`
	Steps   []Step             `mapstructure:"steps"`
	Expect  Expectation        `mapstructure:"expect"`
}

// LoadFile reads a scenario from a YAML (or any viper supported) file.
func LoadFile(path string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	return decode(v, path)
}

// Load reads a YAML scenario from r.
func Load(r io.Reader) (*Scenario, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return decode(v, "scenario")
}

func decode(v *viper.Viper, name string) (*Scenario, error) {
	var s Scenario
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	if s.Name == "" {
		s.Name = name
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", s.Name, err)
	}
	return &s, nil
}

// Validate catches malformed steps before anything runs.
func (s *Scenario) Validate() error {
	var errs []error
	if len(s.Columns) == 0 {
		errs = append(errs, errors.New("at least one column is required"))
	}
	for i, step := range s.Steps {
		where := fmt.Sprintf("step %d (%s)", i+1, step.Action)
		switch strings.ToLower(step.Action) {
		case ActionDrag:
			if step.Card == "" {
				errs = append(errs, fmt.Errorf("%s: card is required", where))
			}
			if step.Column == "" && step.Onto == "" {
				errs = append(errs, fmt.Errorf("%s: column or onto is required", where))
			}
		case ActionKeys:
			if step.Card == "" || len(step.Keys) == 0 {
				errs = append(errs, fmt.Errorf("%s: card and keys are required", where))
			}
		case ActionClick, ActionRemove:
			if step.Card == "" {
				errs = append(errs, fmt.Errorf("%s: card is required", where))
			}
		case ActionAdd:
			if step.Card == "" || step.Column == "" {
				errs = append(errs, fmt.Errorf("%s: card and column are required", where))
			}
		case ActionScrollColumn:
			if step.Column == "" {
				errs = append(errs, fmt.Errorf("%s: column is required", where))
			}
		case ActionScrollWindow:
		case ActionFrames:
			if step.Frames <= 0 {
				errs = append(errs, fmt.Errorf("%s: frames must be positive", where))
			}
		default:
			errs = append(errs, fmt.Errorf("%s: unknown action", where))
		}
	}
	return errors.Join(errs...)
}
