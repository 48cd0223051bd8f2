package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexanderi96/rsnake/game/types"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Game != types.DefaultRules() {
		t.Errorf("game rules = %+v, want %+v", cfg.Game, types.DefaultRules())
	}
	if cfg.Window.TargetFPS != 60 {
		t.Errorf("target fps = %d, want 60", cfg.Window.TargetFPS)
	}
	if cfg.FrameInterval() != 16*time.Millisecond {
		t.Errorf("frame interval = %v, want 16ms", cfg.FrameInterval())
	}
	if cfg.Autopilot.Enabled {
		t.Error("autopilot must be off by default")
	}
}

func TestLoadOverlaysUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snake.yaml")
	data := "game:\n  grid_size: 30\n  min_speed_ms: 40\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Game.GridSize != 30 || cfg.Game.MinSpeed != 40 {
		t.Errorf("overlay not applied: %+v", cfg.Game)
	}
	// Untouched fields keep their defaults
	if cfg.Game.InitialSpeed != types.DefaultInitialSpeed {
		t.Errorf("initial speed = %d, want default %d", cfg.Game.InitialSpeed, types.DefaultInitialSpeed)
	}
	if level, _ := cfg.Log.SlogLevel(); level != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", level)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"zero grid", "game:\n  grid_size: 0\n", types.ErrInvalidRules},
		{"min above initial", "game:\n  min_speed_ms: 500\n", types.ErrInvalidRules},
		{"volume", "audio:\n  volume: 1.5\n", ErrInvalidConfig},
		{"epsilon", "autopilot:\n  epsilon: -0.1\n", ErrInvalidConfig},
		{"log level", "log:\n  level: loud\n", ErrInvalidConfig},
		{"log format", "log:\n  format: xml\n", ErrInvalidConfig},
		{"frame interval", "loop:\n  frame_interval_ms: 0\n", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, tt.target) {
				t.Errorf("Load error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestLoadMissingAndMalformedFiles(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("game: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Game.GridSize = 25
	cfg.Audio.Enabled = false

	path := filepath.Join(t.TempDir(), "out", "effective.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info record passed a warn-level logger: %s", buf.String())
	}

	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Warn("shown", "score", 10)
	if !strings.Contains(buf.String(), `"score":10`) {
		t.Errorf("expected a JSON record, got %s", buf.String())
	}
}
