package game

import (
	"context"
	"sync"
	"time"
)

// Ticker is anything the loop can drive. *Engine satisfies it.
type Ticker interface {
	Tick(now time.Time) TickResult
}

// Loop calls Tick at a fixed frame cadence, independent of the game speed:
// the engine itself skips calls that arrive before its speed interval.
// At most one loop goroutine exists at a time.
type Loop struct {
	target   Ticker
	interval time.Duration
	onTick   func(TickResult)

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewLoop creates a stopped loop
func NewLoop(target Ticker, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Loop{
		target:   target,
		interval: interval,
	}
}

// OnTick registers a callback for every tick that advanced the game.
// It runs on the loop goroutine; set it before Start.
func (l *Loop) OnTick(fn func(TickResult)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onTick = fn
}

// Start launches the loop goroutine. It returns false if already running.
func (l *Loop) Start(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return false
	}
	l.running = true
	l.stop = make(chan struct{})

	l.wg.Add(1)
	go l.run(ctx, l.stop, l.onTick)
	return true
}

// Stop halts the loop and waits for the goroutine to exit. After Stop
// returns no further Tick call will be made.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.running {
		l.running = false
		close(l.stop)
	}
	l.mu.Unlock()

	l.wg.Wait()
}

// Running reports whether the loop goroutine is active
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Loop) run(ctx context.Context, stop <-chan struct{}, onTick func(TickResult)) {
	defer l.wg.Done()
	defer func() {
		l.mu.Lock()
		if l.stop == stop {
			l.running = false
		}
		l.mu.Unlock()
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case now := <-ticker.C:
			// Prefer stopping over a tick that raced with Stop
			select {
			case <-stop:
				return
			default:
			}
			result := l.target.Tick(now)
			if result.Advanced && onTick != nil {
				onTick(result)
			}
		}
	}
}
