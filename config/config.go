// Package config provides configuration loading for the game and its frontends.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexanderi96/rsnake/game/types"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is wrapped by every validation failure outside the game rules.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every tunable of the game and its frontends.
type Config struct {
	Game      types.Rules     `yaml:"game"`
	Window    WindowConfig    `yaml:"window"`
	Storage   StorageConfig   `yaml:"storage"`
	Audio     AudioConfig     `yaml:"audio"`
	Autopilot AutopilotConfig `yaml:"autopilot"`
	Log       LogConfig       `yaml:"log"`
	Loop      LoopConfig      `yaml:"loop"`
}

// WindowConfig holds the raylib frontend display settings.
type WindowConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// StorageConfig holds file locations. An empty stats file keeps stats in memory.
type StorageConfig struct {
	StatsFile  string `yaml:"stats_file"`
	HistoryCSV string `yaml:"history_csv"` // Written on exit when non-empty
}

// AudioConfig holds sound settings.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"` // 0..1
}

// AutopilotConfig holds the Q-learning agent parameters.
type AutopilotConfig struct {
	Enabled      bool    `yaml:"enabled"`
	QTableFile   string  `yaml:"qtable_file"`
	Epsilon      float64 `yaml:"epsilon"`       // Exploration rate
	LearningRate float64 `yaml:"learning_rate"` // Alpha
	Discount     float64 `yaml:"discount"`      // Gamma
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// LoopConfig holds the terminal frontend scheduler cadence.
type LoopConfig struct {
	FrameIntervalMS int `yaml:"frame_interval_ms"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the rules and every frontend section.
func (c *Config) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return err
	}

	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Window.TargetFPS <= 0:
		return fmt.Errorf("%w: window.target_fps must be positive", ErrInvalidConfig)
	case c.Audio.Volume < 0 || c.Audio.Volume > 1:
		return fmt.Errorf("%w: audio.volume %.2f outside [0,1]", ErrInvalidConfig, c.Audio.Volume)
	case c.Autopilot.Epsilon < 0 || c.Autopilot.Epsilon > 1:
		return fmt.Errorf("%w: autopilot.epsilon %.2f outside [0,1]", ErrInvalidConfig, c.Autopilot.Epsilon)
	case c.Autopilot.LearningRate < 0 || c.Autopilot.LearningRate > 1:
		return fmt.Errorf("%w: autopilot.learning_rate %.2f outside [0,1]", ErrInvalidConfig, c.Autopilot.LearningRate)
	case c.Autopilot.Discount < 0 || c.Autopilot.Discount > 1:
		return fmt.Errorf("%w: autopilot.discount %.2f outside [0,1]", ErrInvalidConfig, c.Autopilot.Discount)
	case c.Loop.FrameIntervalMS <= 0:
		return fmt.Errorf("%w: loop.frame_interval_ms must be positive", ErrInvalidConfig)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// WriteYAML writes the effective configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// FrameInterval is the terminal scheduler period.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.Loop.FrameIntervalMS) * time.Millisecond
}

// SlogLevel parses the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalidConfig, l.Level)
	}
	return level, nil
}

// NewLogger builds a logger writing to w with the configured handler.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
