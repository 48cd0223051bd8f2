package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"golang.org/x/exp/rand"
)

const (
	eatNote1Duration  = 60 * time.Millisecond
	eatNote2Duration  = 90 * time.Millisecond
	eatAttack         = 5 * time.Millisecond
	eatRelease        = 40 * time.Millisecond
	crashDuration     = 450 * time.Millisecond
	crashAttack       = 10 * time.Millisecond
	crashRelease      = 300 * time.Millisecond
	moveBeat          = 300 * time.Millisecond
	moveClickDuration = 40 * time.Millisecond
)

// waveform maps a phase in [0, 1) to a sample in [-1, 1]
type waveform func(phase float64, rng *rand.Rand) float64

func sine(phase float64, _ *rand.Rand) float64 { return math.Sin(2 * math.Pi * phase) }

func square(phase float64, _ *rand.Rand) float64 {
	if phase < 0.5 {
		return 1
	}
	return -1
}

func saw(phase float64, _ *rand.Rand) float64 { return 2 * (phase - 0.5) }

func noise(_ float64, rng *rand.Rand) float64 { return rng.Float64()*2 - 1 }

// tone is a finite note with a linear fade in over attack samples and a
// linear fade out over the last release samples.
type tone struct {
	wave    waveform
	step    float64 // phase advance per sample
	phase   float64
	pos     int
	length  int
	attack  int
	release int
	rng     *rand.Rand
}

func newTone(rate beep.SampleRate, wave waveform, freq float64, length, attack, release time.Duration) *tone {
	return &tone{
		wave:    wave,
		step:    freq / float64(rate),
		length:  rate.N(length),
		attack:  rate.N(attack),
		release: rate.N(release),
		rng:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

func (t *tone) gain() float64 {
	g := 1.0
	if t.attack > 0 && t.pos < t.attack {
		g = float64(t.pos) / float64(t.attack)
	}
	if left := t.length - t.pos; t.release > 0 && left < t.release {
		g = min(g, float64(left)/float64(t.release))
	}
	return g
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.pos >= t.length {
			return i, i > 0
		}
		v := t.wave(t.phase, t.rng) * t.gain()
		samples[i][0], samples[i][1] = v, v

		t.phase += t.step
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// newVolume scales s linearly. math.Log2(0) is -Inf, so zero is handled as silence.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// EatSound is a short rising two-note chime
func EatSound(rate beep.SampleRate, vol float64) beep.Streamer {
	// E5 then A5
	n1 := newTone(rate, sine, 659.25, eatNote1Duration, eatAttack, eatRelease)
	n2 := newTone(rate, sine, 880.0, eatNote2Duration, eatAttack, eatRelease)

	return newVolume(beep.Seq(n1, n2), vol)
}

// CrashSound is a low saw buzz over a burst of noise
func CrashSound(rate beep.SampleRate, vol float64) beep.Streamer {
	buzz := newTone(rate, saw, 90.0, crashDuration, crashAttack, crashRelease)
	hiss := newTone(rate, noise, 0, crashDuration, crashAttack, crashRelease)

	mixed := beep.Mix(
		newVolume(buzz, 0.6),
		newVolume(hiss, 0.3),
	)
	return newVolume(mixed, vol)
}

// MoveGenerator produces an endless soft pulse, one click per beat
type MoveGenerator struct {
	sr     beep.SampleRate
	pos    int
	beat   int
	click  int
	freq   float64
	volume float64
}

// NewMoveGenerator creates the background move loop
func NewMoveGenerator(sr beep.SampleRate, vol float64) *MoveGenerator {
	return &MoveGenerator{
		sr:     sr,
		beat:   sr.N(moveBeat),
		click:  sr.N(moveClickDuration),
		freq:   220,
		volume: vol,
	}
}

func (g *MoveGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		beatPos := g.pos % g.beat

		sample := 0.0
		if beatPos < g.click {
			t := float64(beatPos) / float64(g.sr)
			env := 1.0 - float64(beatPos)/float64(g.click)
			sample = 0.25 * g.volume * env * math.Sin(2*math.Pi*g.freq*t)
		}

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *MoveGenerator) Err() error {
	return nil
}
