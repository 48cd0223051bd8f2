// Package audio turns game events into synthesised sound effects.
package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/alexanderi96/rsnake/game"
	"github.com/alexanderi96/rsnake/game/types"
)

const sampleRate = beep.SampleRate(44100)

// SoundSink is a game.EventSink that plays an eat chime, a crash buzz and a
// looping move pulse while the game is running.
type SoundSink struct {
	game.NopSink

	mu     sync.Mutex
	mixer  *beep.Mixer
	lock   func()
	unlock func()

	volume float64
	muted  bool
	state  types.GameState
	move   *beep.Ctrl
	device bool
	closed bool

	logger *slog.Logger
}

// NewSoundSink opens the audio device and starts playing its mixer
func NewSoundSink(volume float64, muted bool, logger *slog.Logger) (*SoundSink, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}

	s := newSoundSink(volume, muted, logger, speaker.Lock, speaker.Unlock)
	s.device = true
	speaker.Play(s.mixer)
	return s, nil
}

// newSoundSink builds a sink around a mixer that nothing drains yet
func newSoundSink(volume float64, muted bool, logger *slog.Logger, lock, unlock func()) *SoundSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SoundSink{
		mixer:  &beep.Mixer{},
		lock:   lock,
		unlock: unlock,
		volume: volume,
		muted:  muted,
		state:  types.Idle,
		logger: logger,
	}
}

func (s *SoundSink) OnAte() {
	s.play(EatSound(sampleRate, s.volume))
}

func (s *SoundSink) OnCrashed() {
	s.play(CrashSound(sampleRate, s.volume))
}

func (s *SoundSink) OnStateChanged(state types.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
	s.updateMoveLoop()
}

// SetMuted silences or restores every sound
func (s *SoundSink) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.muted == muted {
		return
	}
	s.muted = muted
	s.logger.Debug("sound toggled", "muted", muted)
	s.updateMoveLoop()
}

// ToggleMute flips the mute flag and returns the new value
func (s *SoundSink) ToggleMute() bool {
	s.mu.Lock()
	muted := !s.muted
	s.mu.Unlock()

	s.SetMuted(muted)
	return muted
}

func (s *SoundSink) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Close stops all sounds. The sink stays silent afterwards.
func (s *SoundSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	s.lock()
	if s.move != nil {
		s.move.Paused = true
	}
	s.mixer.Clear()
	s.unlock()

	if s.device {
		speaker.Close()
	}
}

func (s *SoundSink) play(streamer beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.muted || s.closed {
		return
	}
	s.lock()
	s.mixer.Add(streamer)
	s.unlock()
}

// updateMoveLoop keeps the move pulse playing only while running and
// unmuted. Caller holds mu.
func (s *SoundSink) updateMoveLoop() {
	if s.closed {
		return
	}
	want := s.state == types.Running && !s.muted

	s.lock()
	defer s.unlock()

	if s.move == nil {
		if !want {
			return
		}
		s.move = &beep.Ctrl{Streamer: NewMoveGenerator(sampleRate, s.volume)}
		s.mixer.Add(s.move)
		return
	}
	s.move.Paused = !want
}
