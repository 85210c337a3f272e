// Package synth generates the raw note, drum, chord, and FM buffers the
// sequencer mixes into a sound pattern. Every generator is a pure
// function of its arguments: buffers come back in the [-1, 1] float
// domain and unknown names yield an empty buffer rather than an error,
// so callers can treat them as a skipped step.
package synth

import (
	"math"
	"math/rand"
)

const twoPi = math.Pi * 2

// noiseSeed fixes the PRNG for noise-based drums so every render of the
// same pattern produces identical bytes.
const noiseSeed = 0x1984

// Engine holds the sample rate and the precomputed PCM instrument bank.
// The bank is built once and never mutated, so a single Engine is safe
// to share across goroutines.
type Engine struct {
	sampleRate int
	pcmSamples map[string][]float64
}

// NewEngine builds an engine and its 1-second instrument sample bank
// for the given sample rate.
func NewEngine(sampleRate int) *Engine {
	e := &Engine{sampleRate: sampleRate}
	e.pcmSamples = e.buildPCMSamples()
	return e
}

func (e *Engine) SampleRate() int { return e.sampleRate }

// timeBase reproduces an inclusive linspace(0, duration, n): the last
// sample lands exactly on duration.
func timeBase(duration float64, n int) []float64 {
	t := make([]float64, n)
	if n > 1 {
		step := duration / float64(n-1)
		for i := range t {
			t[i] = step * float64(i)
		}
	}
	return t
}

// buildPCMSamples synthesizes the four fixed instrument samples from
// additive sine stacks, each authored at A4 (440 Hz) for one second.
func (e *Engine) buildPCMSamples() map[string][]float64 {
	const duration = 1.0
	n := int(float64(e.sampleRate) * duration)
	t := timeBase(duration, n)

	partial := func(freq, amp float64, i int) float64 {
		return math.Sin(twoPi*freq*t[i]) * amp
	}

	piano := make([]float64, n)
	epiano := make([]float64, n)
	organ := make([]float64, n)
	strings := make([]float64, n)
	for i := range t {
		// Piano: bright harmonics with a fast decay.
		piano[i] = math.Exp(-3*t[i]) * (partial(440, 0.5, i) + partial(880, 0.3, i) + partial(1320, 0.2, i))
		// Electric piano: softer stack, slower decay.
		epiano[i] = math.Exp(-2*t[i]) * (partial(440, 0.6, i) + partial(880, 0.4, i))
		// Organ: sustained with a short attack and release ramp.
		organ[i] = organEnvelope(t[i]) * (partial(440, 0.4, i) + partial(880, 0.3, i) + partial(1320, 0.2, i) + partial(1760, 0.1, i))
		// Strings: slow attack, sub-octave body.
		strings[i] = stringsEnvelope(t[i]) * (partial(440, 0.3, i) + partial(880, 0.25, i) + partial(1320, 0.2, i) + partial(220, 0.25, i))
	}
	return map[string][]float64{
		"piano":   piano,
		"epiano":  epiano,
		"organ":   organ,
		"strings": strings,
	}
}

func organEnvelope(t float64) float64 {
	switch {
	case t < 0.05:
		return t / 0.05
	case t > 0.9:
		return (1 - t) / 0.1
	default:
		return 1
	}
}

func stringsEnvelope(t float64) float64 {
	switch {
	case t < 0.3:
		return t / 0.3
	case t > 0.8:
		return (1 - t) / 0.2
	default:
		return 1
	}
}

// Drum synthesizes one drum hit. Kick is a swept sine; the others are
// enveloped noise bursts, with Hi-Hat high-passed by first difference.
// Unknown kinds return an empty buffer.
func (e *Engine) Drum(kind string, volume float64) []float64 {
	cfg, ok := drumConfigs[kind]
	if !ok {
		return nil
	}
	duration := cfg.decay
	n := int(float64(e.sampleRate) * duration)
	t := timeBase(duration, n)
	sound := make([]float64, n)

	if cfg.noise {
		rng := rand.New(rand.NewSource(noiseSeed))
		for i := range sound {
			noise := rng.Float64()*2 - 1
			sound[i] = noise * math.Exp(-t[i]/duration*10)
		}
		if cfg.freq > 1000 {
			// First difference as a cheap high-pass.
			prev := sound[0]
			for i := range sound {
				cur := sound[i]
				sound[i] = cur - prev
				prev = cur
			}
		}
	} else {
		// Frequency glides down as the envelope decays.
		phase := 0.0
		for i := range sound {
			freq := cfg.freq * (1 - 0.7*(1-math.Exp(-t[i]/duration*5)))
			phase += twoPi * freq / float64(e.sampleRate)
			sound[i] = math.Sin(phase) * math.Exp(-t[i]/duration*5)
		}
	}

	for i := range sound {
		sound[i] *= volume * 0.5
	}
	return sound
}

// Oscillator renders an analytic waveform with a fixed exponential
// decay envelope and 0.3 headroom scaling.
func (e *Engine) Oscillator(frequency, duration float64, waveform string, volume float64) []float64 {
	n := int(float64(e.sampleRate) * duration)
	t := timeBase(duration, n)
	out := make([]float64, n)
	for i := range out {
		var s float64
		x := t[i] * frequency
		switch waveform {
		case "sawtooth":
			s = 2 * (x - math.Floor(0.5+x))
		case "triangle":
			s = 2*math.Abs(2*(x-math.Floor(0.5+x))) - 1
		case "square":
			s = sign(math.Sin(twoPi * x))
		default: // sine
			s = math.Sin(twoPi * x)
		}
		out[i] = s * math.Exp(-t[i]/duration*5) * volume * 0.3
	}
	return out
}

// PCM resamples the matching instrument sample to the note's pitch by
// linear interpolation at a playback rate of freq/440 (the bank is
// authored at A4), yielding a 0.5-second note. Unknown notes return an
// empty buffer; unknown instruments fall back to piano.
func (e *Engine) PCM(note, instrument string, volume float64) []float64 {
	freq, ok := NoteFrequencies[note]
	if !ok {
		return nil
	}
	sample, ok := e.pcmSamples[instrument]
	if !ok {
		sample = e.pcmSamples["piano"]
	}

	const duration = 0.5
	playbackRate := freq / 440.0
	newLength := int(float64(len(sample)) / playbackRate * duration)
	if newLength <= 0 || len(sample) == 0 {
		return nil
	}
	positions := timeBase(float64(len(sample)-1), newLength)
	out := make([]float64, newLength)
	for i, pos := range positions {
		lo := int(pos)
		if lo >= len(sample)-1 {
			out[i] = sample[len(sample)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = sample[lo]*(1-frac) + sample[lo+1]*frac
	}

	limit := int(float64(e.sampleRate) * duration)
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i] *= volume * 0.4
	}
	return out
}

// FM renders classic two-operator FM: a sine modulator at
// carrierFreq*ratio offsets the carrier's phase by depth*sin(mod).
func (e *Engine) FM(frequency, duration, ratio, depth, volume float64) []float64 {
	n := int(float64(e.sampleRate) * duration)
	t := timeBase(duration, n)
	out := make([]float64, n)
	modFreq := frequency * ratio
	for i := range out {
		modulator := math.Sin(twoPi * modFreq * t[i])
		carrier := math.Sin(twoPi*frequency*t[i] + depth*modulator)
		out[i] = carrier * math.Exp(-t[i]/duration*5) * volume * 0.3
	}
	return out
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Note renders a named note through the oscillator. Unknown notes
// return an empty buffer.
func (e *Engine) Note(note string, duration float64, waveform string, volume float64) []float64 {
	freq, ok := NoteFrequencies[note]
	if !ok {
		return nil
	}
	return e.Oscillator(freq, duration, waveform, volume)
}

// Chord additively mixes the chord's constituent notes, truncating to
// the shortest buffer when lengths differ.
func (e *Engine) Chord(name string, duration float64, waveform string, volume float64) []float64 {
	notes, ok := ChordTypes[name]
	if !ok {
		return nil
	}
	var chord []float64
	for _, note := range notes {
		sound := e.Note(note, duration, waveform, volume)
		if chord == nil {
			chord = sound
			continue
		}
		n := min(len(chord), len(sound))
		chord = chord[:n]
		for i := 0; i < n; i++ {
			chord[i] += sound[i]
		}
	}
	return chord
}
