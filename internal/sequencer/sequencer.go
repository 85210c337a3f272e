// Package sequencer walks a multi-track step grid and mixes the audio
// engine's rendered buffers into one output stream. Individual track
// failures degrade to warnings so one malformed voice cannot sink an
// otherwise usable pattern.
package sequencer

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/oga5/gamestudio-1984-oss/internal/synth"
)

var (
	ErrUnknownNote  = errors.New("sequencer: unknown note")
	ErrUnknownChord = errors.New("sequencer: unknown chord")
	ErrUnknownDrum  = errors.New("sequencer: unknown drum")
)

// trackOrder fixes which track names render and in what order; anything
// else in the tracks map is ignored.
var trackOrder = []string{"drum", "bass", "chord", "melody", "pcm", "fm", "fm2"}

const maxWarnings = 10

// Pattern is the caller-supplied description of one sound pattern.
// Zero values pick up the defaults: 120 BPM, 16 steps, 0.7 master.
type Pattern struct {
	BPM           float64          `json:"bpm" yaml:"bpm"`
	PatternLength int              `json:"patternLength" yaml:"patternLength"`
	MasterVolume  *float64         `json:"masterVolume" yaml:"masterVolume"`
	Tracks        map[string]Track `json:"tracks" yaml:"tracks"`
}

// Track is one instrument voice: boolean step grids keyed by note,
// chord, or drum name, plus kind-specific parameters.
type Track struct {
	Muted    bool              `json:"muted,omitempty" yaml:"muted,omitempty"`
	Volume   *float64          `json:"volume,omitempty" yaml:"volume,omitempty"`
	Data     map[string][]bool `json:"data" yaml:"data"`
	Waveform string            `json:"waveform,omitempty" yaml:"waveform,omitempty"`
	Sound    string            `json:"sound,omitempty" yaml:"sound,omitempty"`
	Ratio    *float64          `json:"ratio,omitempty" yaml:"ratio,omitempty"`
	Depth    *float64          `json:"depth,omitempty" yaml:"depth,omitempty"`
}

func (p *Pattern) bpm() float64 {
	if p.BPM <= 0 {
		return 120
	}
	return p.BPM
}

func (p *Pattern) steps() int {
	if p.PatternLength <= 0 {
		return 16
	}
	return p.PatternLength
}

func (p *Pattern) masterVolume() float64 {
	if p.MasterVolume == nil {
		return 0.7
	}
	return *p.MasterVolume
}

func (t Track) volume() float64 {
	if t.Volume == nil {
		return 0.7
	}
	return *t.Volume
}

func (t Track) waveform(def string) string {
	if t.Waveform == "" {
		return def
	}
	return t.Waveform
}

func (t Track) ratio() float64 {
	if t.Ratio == nil {
		return 2.0
	}
	return *t.Ratio
}

func (t Track) depth() float64 {
	if t.Depth == nil {
		return 500.0
	}
	return *t.Depth
}

// Duration returns the rendered length in seconds: each step is a
// 16th note at the pattern's BPM.
func (p *Pattern) Duration() float64 {
	return (60.0 / p.bpm()) / 4 * float64(p.steps())
}

// Info summarizes a pattern without rendering it.
type Info struct {
	BPM          float64
	Steps        int
	Duration     float64
	MasterVolume float64
	ActiveTracks int
	ActiveNotes  map[string]int
}

func (in Info) String() string {
	return fmt.Sprintf("%.0f BPM, %d steps (%.2fs), %d active tracks, master %.2f",
		in.BPM, in.Steps, in.Duration, in.ActiveTracks, in.MasterVolume)
}

func (p *Pattern) Info() Info {
	info := Info{
		BPM:          p.bpm(),
		Steps:        p.steps(),
		Duration:     p.Duration(),
		MasterVolume: p.masterVolume(),
		ActiveNotes:  make(map[string]int),
	}
	for name, track := range p.Tracks {
		if track.Muted {
			continue
		}
		info.ActiveTracks++
		count := 0
		for _, grid := range track.Data {
			for _, on := range grid {
				if on {
					count++
				}
			}
		}
		info.ActiveNotes[name] = count
	}
	return info
}

// Options control render policy, mirroring the pattern decoder: a
// lenient render skips broken voices with a warning, a strict render
// fails on the first one.
type Options struct {
	Strict bool
}

// Renderer renders patterns through one audio engine.
type Renderer struct {
	engine *synth.Engine
	opts   Options
}

func NewRenderer(engine *synth.Engine, opts Options) *Renderer {
	return &Renderer{engine: engine, opts: opts}
}

// RenderPattern mixes every recognized, unmuted track into one mono
// buffer, applies the master volume, and normalizes only when the
// summed peak exceeds 1.0. Warnings (capped at 10) describe every
// voice that was skipped.
func (r *Renderer) RenderPattern(p *Pattern) ([]float64, []string, error) {
	steps := p.steps()
	stepDur := (60.0 / p.bpm()) / 4
	totalSamples := int(float64(r.engine.SampleRate()) * stepDur * float64(steps))
	output := make([]float64, totalSamples)

	st := &renderState{strict: r.opts.Strict}
	for _, name := range trackOrder {
		track, ok := p.Tracks[name]
		if !ok || track.Muted {
			continue
		}
		trackAudio, err := r.renderTrack(name, track, steps, stepDur, st)
		if err != nil {
			return nil, nil, err
		}
		mixInto(output, trackAudio, 0)
	}

	master := p.masterVolume()
	var peak float64
	for i := range output {
		output[i] *= master
		if a := math.Abs(output[i]); a > peak {
			peak = a
		}
	}
	if peak > 1.0 {
		for i := range output {
			output[i] /= peak
		}
	}
	return output, st.warnings, nil
}

type renderState struct {
	strict   bool
	warnings []string
}

func (st *renderState) warnf(format string, args ...any) {
	if len(st.warnings) < maxWarnings {
		st.warnings = append(st.warnings, fmt.Sprintf(format, args...))
	}
}

func (r *Renderer) renderTrack(name string, track Track, steps int, stepDur float64, st *renderState) ([]float64, error) {
	volume := track.volume()
	switch name {
	case "drum":
		return r.renderDrumTrack(track.Data, steps, stepDur, volume, st)
	case "bass":
		return r.renderNoteTrack(track.Data, steps, stepDur, track.waveform("sawtooth"), 0.2, volume, st)
	case "melody":
		return r.renderNoteTrack(track.Data, steps, stepDur, track.waveform("sine"), 0.3, volume, st)
	case "chord":
		return r.renderChordTrack(track.Data, steps, stepDur, track.waveform("triangle"), volume, st)
	case "pcm":
		sound := track.Sound
		if sound == "" {
			sound = "piano"
		}
		return r.renderPCMTrack(track.Data, steps, stepDur, sound, volume, st)
	default: // fm, fm2
		return r.renderFMTrack(track.Data, steps, stepDur, track.ratio(), track.depth(), volume, st)
	}
}

// mixInto adds src into dst starting at offset, dropping any tail that
// would overrun dst.
func mixInto(dst, src []float64, offset int) {
	if offset >= len(dst) {
		return
	}
	n := len(src)
	if avail := len(dst) - offset; n > avail {
		n = avail
	}
	for i := 0; i < n; i++ {
		dst[offset+i] += src[i]
	}
}

func (r *Renderer) trackBuffer(steps int, stepDur float64) []float64 {
	return make([]float64, int(float64(r.engine.SampleRate())*stepDur*float64(steps)))
}

func (r *Renderer) startSample(step int, stepDur float64) int {
	return int(float64(step) * stepDur * float64(r.engine.SampleRate()))
}

func (r *Renderer) placeSteps(output, sound []float64, grid []bool, steps int, stepDur float64) {
	for step, active := range grid {
		if !active || step >= steps {
			continue
		}
		mixInto(output, sound, r.startSample(step, stepDur))
	}
}

func (r *Renderer) renderDrumTrack(data map[string][]bool, steps int, stepDur, volume float64, st *renderState) ([]float64, error) {
	output := r.trackBuffer(steps, stepDur)
	// Fixed kit order keeps the mix and warning stream deterministic.
	for _, kind := range synth.DrumKinds {
		grid, ok := data[kind]
		if !ok {
			continue
		}
		sound := r.engine.Drum(kind, volume)
		r.placeSteps(output, sound, grid, steps, stepDur)
	}
	unknown := make([]string, 0, len(data))
	for kind := range data {
		if !slices.Contains(synth.DrumKinds, kind) {
			unknown = append(unknown, kind)
		}
	}
	sort.Strings(unknown)
	for _, kind := range unknown {
		if st.strict {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDrum, kind)
		}
		st.warnf("unknown drum %q, skipping", kind)
	}
	return output, nil
}

func (r *Renderer) renderNoteTrack(data map[string][]bool, steps int, stepDur float64, waveform string, noteDur, volume float64, st *renderState) ([]float64, error) {
	output := r.trackBuffer(steps, stepDur)
	for noteName, grid := range data {
		sound := r.engine.Note(noteName, noteDur, waveform, volume)
		if len(sound) == 0 {
			if st.strict {
				return nil, fmt.Errorf("%w: %q", ErrUnknownNote, noteName)
			}
			st.warnf("unknown note %q, skipping", noteName)
			continue
		}
		r.placeSteps(output, sound, grid, steps, stepDur)
	}
	return output, nil
}

func (r *Renderer) renderChordTrack(data map[string][]bool, steps int, stepDur float64, waveform string, volume float64, st *renderState) ([]float64, error) {
	output := r.trackBuffer(steps, stepDur)
	for chordName, grid := range data {
		sound := r.engine.Chord(chordName, 0.4, waveform, volume)
		if len(sound) == 0 {
			if st.strict {
				return nil, fmt.Errorf("%w: %q", ErrUnknownChord, chordName)
			}
			st.warnf("unknown chord %q, skipping", chordName)
			continue
		}
		r.placeSteps(output, sound, grid, steps, stepDur)
	}
	return output, nil
}

func (r *Renderer) renderPCMTrack(data map[string][]bool, steps int, stepDur float64, sound string, volume float64, st *renderState) ([]float64, error) {
	output := r.trackBuffer(steps, stepDur)
	for noteName, grid := range data {
		buf := r.engine.PCM(noteName, sound, volume)
		if len(buf) == 0 {
			if st.strict {
				return nil, fmt.Errorf("%w: %q", ErrUnknownNote, noteName)
			}
			st.warnf("unknown note %q for pcm, skipping", noteName)
			continue
		}
		r.placeSteps(output, buf, grid, steps, stepDur)
	}
	return output, nil
}

func (r *Renderer) renderFMTrack(data map[string][]bool, steps int, stepDur, ratio, depth, volume float64, st *renderState) ([]float64, error) {
	output := r.trackBuffer(steps, stepDur)
	for noteName, grid := range data {
		freq, ok := synth.NoteFrequencies[noteName]
		if !ok {
			if st.strict {
				return nil, fmt.Errorf("%w: %q", ErrUnknownNote, noteName)
			}
			st.warnf("unknown note %q for fm track, skipping", noteName)
			continue
		}
		sound := r.engine.FM(freq, 0.3, ratio, depth, volume)
		r.placeSteps(output, sound, grid, steps, stepDur)
	}
	return output, nil
}
