package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/alexanderi96/rsnake/app"
	"github.com/alexanderi96/rsnake/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "snake: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := app.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := app.LoadConfig(flags)
	if err != nil {
		return err
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	if flags.DumpConfig != "" {
		if err := cfg.WriteYAML(flags.DumpConfig); err != nil {
			return err
		}
		logger.Info("config written", "path", flags.DumpConfig)
		return nil
	}

	a, err := app.New(app.Options{
		Config: cfg,
		Seed:   flags.Seed,
		Muted:  flags.Mute,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Window.Width), int32(cfg.Window.Height), "Snake")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Window.TargetFPS))

	renderer := ui.NewRenderer()

	for !rl.WindowShouldClose() {
		if a.Handle(ui.PollCommand()) {
			break
		}
		a.Drive()
		a.Engine.Tick(time.Now())

		renderer.Draw(a.Engine.Snapshot(), a.HUD())
	}

	return a.Close()
}
