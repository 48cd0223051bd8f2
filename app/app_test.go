package app

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderi96/rsnake/config"
	"github.com/alexanderi96/rsnake/game/types"
	"github.com/alexanderi96/rsnake/ui"
)

func newTestApp(t *testing.T, autopilot bool) (*App, string) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Storage.StatsFile = filepath.Join(dir, "stats.json")
	cfg.Storage.HistoryCSV = filepath.Join(dir, "history.csv")
	cfg.Autopilot.QTableFile = filepath.Join(dir, "qtable.json")
	cfg.Autopilot.Enabled = autopilot

	a, err := New(Options{
		Config:  cfg,
		Seed:    5,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		NoSound: true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, dir
}

// crash runs the current game into the wall
func crash(t *testing.T, a *App) {
	t.Helper()
	now := time.Now()
	for i := 0; i < 100 && a.Engine.State() == types.Running; i++ {
		now = now.Add(time.Second)
		a.Engine.Tick(now)
	}
	if a.Engine.State() != types.Over {
		t.Fatalf("game did not end, state %v", a.Engine.State())
	}
	a.Engine.Flush()
}

func TestFlagsOverrideConfig(t *testing.T) {
	set := flag.NewFlagSet("snake", flag.ContinueOnError)
	f := RegisterFlags(set)
	if err := set.Parse([]string{"-autopilot", "-seed", "42", "-mute"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Seed != 42 || !f.Mute {
		t.Errorf("flags = %+v", f)
	}

	cfg, err := LoadConfig(f)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Autopilot.Enabled {
		t.Error("-autopilot did not enable the autopilot")
	}
}

func TestHandleCommands(t *testing.T) {
	a, _ := newTestApp(t, false)
	defer a.Close()

	if a.Handle(ui.CmdNone) {
		t.Error("CmdNone must not quit")
	}
	a.Handle(ui.CmdStartOrPause)
	if a.Engine.State() != types.Running {
		t.Fatalf("space from idle should start, state %v", a.Engine.State())
	}
	a.Handle(ui.CmdStartOrPause)
	if a.Engine.State() != types.Paused {
		t.Errorf("space while running should pause, state %v", a.Engine.State())
	}

	a.Handle(ui.CmdAutopilot)
	if !a.AutopilotEnabled() || !a.HUD().Autopilot {
		t.Error("autopilot toggle not reflected")
	}
	// Without an audio device mute is a no-op and the HUD reports silence
	a.Handle(ui.CmdMute)
	if !a.HUD().Muted {
		t.Error("HUD should report muted without a sound sink")
	}

	if !a.Handle(ui.CmdQuit) {
		t.Error("CmdQuit should quit")
	}
}

func TestDriveStartsAndSteers(t *testing.T) {
	a, _ := newTestApp(t, true)
	defer a.Close()

	a.Drive()
	if a.Engine.State() != types.Running {
		t.Fatalf("autopilot should start an idle game, state %v", a.Engine.State())
	}

	crash(t, a)
	a.Drive()
	if a.Engine.State() != types.Running {
		t.Errorf("autopilot should restart after game over, state %v", a.Engine.State())
	}
}

func TestClosePersistsSession(t *testing.T) {
	a, dir := newTestApp(t, false)

	a.Handle(ui.CmdStartOrPause)
	crash(t, a)

	hud := a.HUD()
	if hud.GamesPlayed != 1 || len(hud.Scores) != 1 {
		t.Errorf("hud = %+v, want one finished game", hud)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	for _, name := range []string{"stats.json", "history.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	// The autopilot never played, so no table is written
	if _, err := os.Stat(filepath.Join(dir, "qtable.json")); !os.IsNotExist(err) {
		t.Errorf("unexpected q-table file: %v", err)
	}
}
