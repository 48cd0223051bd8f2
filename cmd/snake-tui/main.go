// Command snake-tui plays the game in a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/alexanderi96/rsnake/app"
	"github.com/alexanderi96/rsnake/game"
	"github.com/alexanderi96/rsnake/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "snake-tui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := app.RegisterFlags(flag.CommandLine)
	logFile := flag.String("log-file", "", "Append logs to this file (empty = discard)")
	flag.Parse()

	cfg, err := app.LoadConfig(flags)
	if err != nil {
		return err
	}

	if flags.DumpConfig != "" {
		return cfg.WriteYAML(flags.DumpConfig)
	}

	// Anything written to stderr would garble the screen
	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := cfg.Log.NewLogger(logOut)
	slog.SetDefault(logger)

	a, err := app.New(app.Options{
		Config: cfg,
		Seed:   flags.Seed,
		Muted:  flags.Mute,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		a.Close()
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		a.Close()
		return fmt.Errorf("initializing screen: %w", err)
	}
	screen.HideCursor()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redraw := make(chan struct{}, 1)
	loop := game.NewLoop(a.Engine, cfg.FrameInterval())
	loop.OnTick(func(game.TickResult) {
		select {
		case redraw <- struct{}{}:
		default:
		}
	})
	loop.Start(ctx)

	play(ctx, screen, a, cfg.FrameInterval(), redraw)

	loop.Stop()
	screen.Fini()
	return a.Close()
}

// play runs the input and render loop until quit or ctx is cancelled
func play(ctx context.Context, screen tcell.Screen, a *app.App, frame time.Duration, redraw <-chan struct{}) {
	renderer := ui.NewTerminalRenderer(screen)

	events := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				// Screen finalized
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	draw := func() {
		renderer.Draw(a.Engine.Snapshot(), a.HUD())
	}
	draw()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch e := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if a.Handle(ui.CommandForKey(e.Key(), e.Rune())) {
					return
				}
			}
			draw()
		case <-redraw:
			draw()
		case <-ticker.C:
			// The autopilot decides once per frame; the loop goroutine ticks
			a.Drive()
		}
	}
}
