// Package config holds the application's root configuration, loaded once through viper.
package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Config is the root configuration structure for the entire application.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Engine     EngineConfig     `mapstructure:"engine"`
	AutoScroll AutoScrollConfig `mapstructure:"autoscroll"`
	Drop       DropConfig       `mapstructure:"drop"`
	Sensor     SensorConfig     `mapstructure:"sensor"`
	Simulate   SimulateConfig   `mapstructure:"simulate"`
}

// ColorConfig defines the color settings for different log levels.
// These are used for console output to make logs more readable.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" json:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" json:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" json:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" json:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" json:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" json:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" json:"fatal" yaml:"fatal"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" json:"level" yaml:"level"`
	Format      string      `mapstructure:"format" json:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" json:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" json:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" json:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" json:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" json:"colors" yaml:"colors"`
}

// EngineConfig holds settings for the drag engine itself.
type EngineConfig struct {
	// Diagnostics turns on setup warnings (non-contiguous indexes and the like).
	Diagnostics bool `mapstructure:"diagnostics"`
	// CombineThresholdDivisor trims size/divisor from both ends of a sibling
	// to form the combine band.
	CombineThresholdDivisor float64 `mapstructure:"combine_threshold_divisor"`
	// WindowScrollAllowed lets fluid auto-scroll move the page.
	WindowScrollAllowed bool `mapstructure:"window_scroll_allowed"`
}

// AutoScrollConfig tunes the fluid auto scroller.
type AutoScrollConfig struct {
	StartScrollingFrom float64       `mapstructure:"start_scrolling_from"`
	MaxScrollValueAt   float64       `mapstructure:"max_scroll_value_at"`
	MaxPixelScroll     float64       `mapstructure:"max_pixel_scroll"`
	AccelerateAt       time.Duration `mapstructure:"accelerate_at"`
	StopDampeningAt    time.Duration `mapstructure:"stop_dampening_at"`
}

// DropConfig tunes the drop animation duration curve.
type DropConfig struct {
	MinDuration      float64 `mapstructure:"min_duration"`
	MaxDuration      float64 `mapstructure:"max_duration"`
	MaxDistance      float64 `mapstructure:"max_distance"`
	CancelMultiplier float64 `mapstructure:"cancel_multiplier"`
}

// KeyBindings maps sensor actions to key names as reported by the terminal.
type KeyBindings struct {
	Lift   []string `mapstructure:"lift"`
	Up     []string `mapstructure:"up"`
	Down   []string `mapstructure:"down"`
	Left   []string `mapstructure:"left"`
	Right  []string `mapstructure:"right"`
	Cancel []string `mapstructure:"cancel"`
	Yank   []string `mapstructure:"yank"`
	Quit   []string `mapstructure:"quit"`
}

// SensorConfig holds settings for the input sensors.
type SensorConfig struct {
	// SloppyClickThreshold is how far the pointer may travel before a press becomes a drag.
	SloppyClickThreshold float64     `mapstructure:"sloppy_click_threshold"`
	Keys                 KeyBindings `mapstructure:"keys"`
}

// SimulateConfig holds settings for scenario replay.
type SimulateConfig struct {
	Seed          int64         `mapstructure:"seed"`
	StepsPerMove  int           `mapstructure:"steps_per_move"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	Humanize      bool          `mapstructure:"humanize"`
	ReportFormat  string        `mapstructure:"report_format"`
}

// SetDefaults registers every default with viper so env vars and files only
// need to carry overrides.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "dropzone")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	v.SetDefault("engine.diagnostics", false)
	v.SetDefault("engine.combine_threshold_divisor", 4.0)
	v.SetDefault("engine.window_scroll_allowed", true)

	v.SetDefault("autoscroll.start_scrolling_from", 0.25)
	v.SetDefault("autoscroll.max_scroll_value_at", 0.05)
	v.SetDefault("autoscroll.max_pixel_scroll", 28.0)
	v.SetDefault("autoscroll.accelerate_at", 360*time.Millisecond)
	v.SetDefault("autoscroll.stop_dampening_at", 1200*time.Millisecond)

	v.SetDefault("drop.min_duration", 0.33)
	v.SetDefault("drop.max_duration", 0.55)
	v.SetDefault("drop.max_distance", 1500.0)
	v.SetDefault("drop.cancel_multiplier", 0.6)

	v.SetDefault("sensor.sloppy_click_threshold", 5.0)
	v.SetDefault("sensor.keys.lift", []string{" "})
	v.SetDefault("sensor.keys.up", []string{"up", "k"})
	v.SetDefault("sensor.keys.down", []string{"down", "j"})
	v.SetDefault("sensor.keys.left", []string{"left", "h"})
	v.SetDefault("sensor.keys.right", []string{"right", "l"})
	v.SetDefault("sensor.keys.cancel", []string{"esc"})
	v.SetDefault("sensor.keys.yank", []string{"y"})
	v.SetDefault("sensor.keys.quit", []string{"q", "ctrl+c"})

	v.SetDefault("simulate.seed", 1)
	v.SetDefault("simulate.steps_per_move", 12)
	v.SetDefault("simulate.frame_interval", 16*time.Millisecond)
	v.SetDefault("simulate.humanize", false)
	v.SetDefault("simulate.report_format", "text")
}

// Default returns a config populated only from defaults.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Defaults alone always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks the fields that would otherwise fail far from their source.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.CombineThresholdDivisor < 2 {
		errs = append(errs, fmt.Errorf("engine.combine_threshold_divisor must be at least 2, got %v", c.Engine.CombineThresholdDivisor))
	}
	as := c.AutoScroll
	if as.StartScrollingFrom <= as.MaxScrollValueAt {
		errs = append(errs, errors.New("autoscroll.start_scrolling_from must be greater than autoscroll.max_scroll_value_at"))
	}
	if as.MaxPixelScroll <= 0 {
		errs = append(errs, errors.New("autoscroll.max_pixel_scroll must be positive"))
	}
	if as.StopDampeningAt < as.AccelerateAt {
		errs = append(errs, errors.New("autoscroll.stop_dampening_at must not be before autoscroll.accelerate_at"))
	}
	d := c.Drop
	if d.MinDuration <= 0 || d.MaxDuration < d.MinDuration {
		errs = append(errs, errors.New("drop durations must satisfy 0 < min_duration <= max_duration"))
	}
	if d.MaxDistance <= 0 {
		errs = append(errs, errors.New("drop.max_distance must be positive"))
	}
	if d.CancelMultiplier <= 0 || d.CancelMultiplier > 1 {
		errs = append(errs, errors.New("drop.cancel_multiplier must be in (0, 1]"))
	}
	if c.Sensor.SloppyClickThreshold < 0 {
		errs = append(errs, errors.New("sensor.sloppy_click_threshold must not be negative"))
	}
	if c.Simulate.StepsPerMove <= 0 {
		errs = append(errs, errors.New("simulate.steps_per_move must be a positive integer"))
	}
	switch c.Simulate.ReportFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("simulate.report_format must be text or json, got %q", c.Simulate.ReportFormat))
	}
	return errors.Join(errs...)
}

// Load initializes the configuration singleton from Viper.
func Load(v *viper.Viper) error {
	once.Do(func() {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			loadErr = fmt.Errorf("error unmarshaling config: %w", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			loadErr = fmt.Errorf("invalid configuration: %w", err)
			return
		}
		instance = &cfg
	})
	return loadErr
}

// Get returns the loaded configuration instance.
func Get() *Config {
	if instance == nil {
		panic("Configuration not initialized. Call config.Load() in the root command.")
	}
	return instance
}

// Set replaces the singleton. Intended for tests and embedding.
func Set(cfg *Config) {
	instance = cfg
}
