// Package app wires the engine, its event sinks and the autopilot together
// for the frontends.
package app

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/alexanderi96/rsnake/ai"
	"github.com/alexanderi96/rsnake/audio"
	"github.com/alexanderi96/rsnake/config"
	"github.com/alexanderi96/rsnake/game"
	"github.com/alexanderi96/rsnake/game/manager"
	"github.com/alexanderi96/rsnake/game/types"
	"github.com/alexanderi96/rsnake/ui"
)

// Flags are the command line options shared by every frontend
type Flags struct {
	ConfigPath string
	DumpConfig string
	Autopilot  bool
	Mute       bool
	Seed       uint64
}

// RegisterFlags defines the shared flags on set
func RegisterFlags(set *flag.FlagSet) *Flags {
	f := &Flags{}
	set.StringVar(&f.ConfigPath, "config", "", "Path to config.yaml (empty = use defaults)")
	set.StringVar(&f.DumpConfig, "dump-config", "", "Write the effective config to this path and exit")
	set.BoolVar(&f.Autopilot, "autopilot", false, "Let the Q-learning agent play")
	set.BoolVar(&f.Mute, "mute", false, "Start with sound muted")
	set.Uint64Var(&f.Seed, "seed", 0, "RNG seed for food and exploration (0 = time-based)")
	return f
}

// LoadConfig loads the config file and applies flag overrides
func LoadConfig(f *Flags) (*config.Config, error) {
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}
	if f.Autopilot {
		cfg.Autopilot.Enabled = true
	}
	return cfg, nil
}

// Options configures New
type Options struct {
	Config *config.Config
	Seed   uint64
	Muted  bool
	Logger *slog.Logger

	// NoSound skips opening the audio device regardless of config.
	NoSound bool
}

// App owns one engine and everything listening to it
type App struct {
	Config    *config.Config
	Engine    *game.Engine
	Stats     *manager.StateManager
	Sound     *audio.SoundSink
	Autopilot *ai.Autopilot

	autopilotOn bool
	logger      *slog.Logger
}

func New(opts Options) (*App, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	stats := manager.NewStateManager(cfg.Storage.StatsFile, logger)
	if err := stats.LoadStats(); err != nil {
		// A broken stats file costs the history, not the game
		logger.Warn("failed to load stats", "file", cfg.Storage.StatsFile, "error", err)
	}

	sinks := game.MultiSink{stats}

	var sound *audio.SoundSink
	if cfg.Audio.Enabled && !opts.NoSound {
		s, err := audio.NewSoundSink(cfg.Audio.Volume, opts.Muted, logger)
		if err != nil {
			logger.Warn("audio disabled", "error", err)
		} else {
			sound = s
			sinks = append(sinks, sound)
		}
	}

	engine, err := game.NewEngine(game.Options{
		Rules:     cfg.Game,
		HighScore: stats.GetHighScore(),
		Seed:      opts.Seed,
		Sink:      sinks,
		Logger:    logger,
	})
	if err != nil {
		if sound != nil {
			sound.Close()
		}
		return nil, err
	}

	pilot := ai.NewAutopilot(ai.Params{
		LearningRate: cfg.Autopilot.LearningRate,
		Discount:     cfg.Autopilot.Discount,
		Epsilon:      cfg.Autopilot.Epsilon,
		Learning:     true,
		Seed:         opts.Seed,
	}, logger)
	if file := cfg.Autopilot.QTableFile; file != "" {
		if err := pilot.LoadQTable(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to load q-table", "file", file, "error", err)
		}
	}

	logger.Info("game ready",
		"grid", cfg.Game.GridSize,
		"high_score", stats.GetHighScore(),
		"games_played", stats.GetGamesPlayed(),
		"sound", sound != nil,
		"autopilot", cfg.Autopilot.Enabled,
	)

	return &App{
		Config:      cfg,
		Engine:      engine,
		Stats:       stats,
		Sound:       sound,
		Autopilot:   pilot,
		autopilotOn: cfg.Autopilot.Enabled,
		logger:      logger,
	}, nil
}

// Handle applies a user command. It returns true when the frontend should quit.
func (a *App) Handle(cmd ui.Command) bool {
	switch cmd {
	case ui.CmdNone:
	case ui.CmdQuit:
		return true
	case ui.CmdMute:
		if a.Sound != nil {
			a.Sound.ToggleMute()
		}
	case ui.CmdAutopilot:
		a.autopilotOn = !a.autopilotOn
		a.logger.Info("autopilot toggled", "enabled", a.autopilotOn)
	default:
		ui.Dispatch(a.Engine, cmd)
	}
	return false
}

// Drive lets the autopilot play when it is enabled. Call it once per frame.
func (a *App) Drive() {
	if !a.autopilotOn {
		return
	}
	snap := a.Engine.Snapshot()
	if dir, ok := a.Autopilot.Step(snap); ok {
		a.Engine.ProposeDirection(dir)
	}
	if snap.State == types.Over || snap.State == types.Idle {
		a.Engine.Start()
	}
}

func (a *App) AutopilotEnabled() bool {
	return a.autopilotOn
}

// HUD collects the frontend state for the renderers
func (a *App) HUD() ui.HUD {
	history := a.Stats.GetScoreHistory()
	scores := make([]int, len(history))
	for i, r := range history {
		scores[i] = r.Score
	}

	return ui.HUD{
		Muted:        a.Sound == nil || a.Sound.Muted(),
		Autopilot:    a.autopilotOn,
		GamesPlayed:  a.Stats.GetGamesPlayed(),
		AverageScore: a.Stats.GetAverageScore(),
		Scores:       scores,
	}
}

// Close delivers pending events, persists stats, history and the q-table,
// and releases the audio device.
func (a *App) Close() error {
	a.Engine.Close()

	var errs []error
	if err := a.Stats.SaveStats(); err != nil {
		errs = append(errs, err)
	}
	if path := a.Config.Storage.HistoryCSV; path != "" && a.Stats.GetGamesPlayed() > 0 {
		if err := a.Stats.ExportCSV(path); err != nil {
			errs = append(errs, err)
		}
	}
	if path := a.Config.Autopilot.QTableFile; path != "" && a.Autopilot.GamesPlayed() > 0 {
		if err := a.Autopilot.SaveQTable(path); err != nil {
			errs = append(errs, fmt.Errorf("saving q-table: %w", err))
		}
	}
	if a.Sound != nil {
		a.Sound.Close()
	}

	a.logger.Info("session closed",
		"high_score", a.Stats.GetHighScore(),
		"games_played", a.Stats.GetGamesPlayed(),
		"max_score", a.Stats.GetMaxScore(),
	)
	return errors.Join(errs...)
}
