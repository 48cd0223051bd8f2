package game

import (
	"log/slog"
	"sync"

	"github.com/alexanderi96/rsnake/game/types"
)

// EventSink receives game events. Calls arrive on a single dispatcher
// goroutine, in the order the engine emitted them, and never on the tick path.
type EventSink interface {
	OnAte()
	OnCrashed()
	OnScoreChanged(score int)
	OnHighScoreChanged(highScore int)
	OnStateChanged(state types.GameState)
}

// NopSink ignores every event. Embed it to implement only some callbacks.
type NopSink struct{}

func (NopSink) OnAte()                         {}
func (NopSink) OnCrashed()                     {}
func (NopSink) OnScoreChanged(int)             {}
func (NopSink) OnHighScoreChanged(int)         {}
func (NopSink) OnStateChanged(types.GameState) {}

// MultiSink fans every event out to several sinks in order
type MultiSink []EventSink

func (m MultiSink) OnAte() {
	for _, s := range m {
		s.OnAte()
	}
}

func (m MultiSink) OnCrashed() {
	for _, s := range m {
		s.OnCrashed()
	}
}

func (m MultiSink) OnScoreChanged(score int) {
	for _, s := range m {
		s.OnScoreChanged(score)
	}
}

func (m MultiSink) OnHighScoreChanged(highScore int) {
	for _, s := range m {
		s.OnHighScoreChanged(highScore)
	}
}

func (m MultiSink) OnStateChanged(state types.GameState) {
	for _, s := range m {
		s.OnStateChanged(state)
	}
}

const defaultEventBuffer = 64

// dispatcher delivers events to a sink from its own goroutine. Emitting never
// blocks: when the queue is full the event is dropped and logged.
type dispatcher struct {
	mu     sync.RWMutex
	queue  chan func(EventSink)
	sink   EventSink
	closed bool
	done   chan struct{}
	logger *slog.Logger
}

func newDispatcher(sink EventSink, buffer int, logger *slog.Logger) *dispatcher {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	d := &dispatcher{
		queue:  make(chan func(EventSink), buffer),
		sink:   sink,
		done:   make(chan struct{}),
		logger: logger,
	}
	go d.run()
	return d
}

func (d *dispatcher) run() {
	defer close(d.done)
	for fn := range d.queue {
		d.deliver(fn)
	}
}

func (d *dispatcher) deliver(fn func(EventSink)) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event sink panicked", "panic", r)
		}
	}()
	fn(d.sink)
}

func (d *dispatcher) emit(name string, fn func(EventSink)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- fn:
	default:
		d.logger.Warn("event queue full, dropping event", "event", name)
	}
}

// flush blocks until every event queued before the call has been delivered
func (d *dispatcher) flush() {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		<-d.done
		return
	}
	barrier := make(chan struct{})
	d.queue <- func(EventSink) { close(barrier) }
	d.mu.RUnlock()
	<-barrier
}

// close delivers what is queued and stops the goroutine
func (d *dispatcher) close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}
