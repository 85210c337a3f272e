// Package audio previews rendered sample buffers through the system
// audio device. It is only reached via the synth tool's --play flag;
// file output never touches it.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource fills dst with interleaved stereo float32 frames.
type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource additionally signals when it has no more audio.
// When Finished returns true, the stream returns io.EOF on the next
// Read and the player winds down.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// BufferSource replays a fully rendered mono buffer, duplicating it
// onto both channels and padding with silence past the end.
type BufferSource struct {
	mu      sync.Mutex
	samples []float64
	pos     int
}

func NewBufferSource(samples []float64) *BufferSource {
	return &BufferSource{samples: samples}
}

func (b *BufferSource) Process(dst []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	frames := len(dst) / 2
	for i := 0; i < frames; i++ {
		var s float32
		if b.pos < len(b.samples) {
			s = float32(b.samples[b.pos])
			b.pos++
		}
		dst[i*2] = s
		dst[i*2+1] = s
	}
}

func (b *BufferSource) Finished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos >= len(b.samples)
}

type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		u := math.Float32bits(r.buf[i])
		binary.LittleEndian.PutUint32(p[i*4:], u)
	}
	n := frames * 8
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

func (r *StreamReader) Close() error { return nil }

type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// sharedAudioContext lazily creates the process-wide ebiten audio
// context. Ebiten allows exactly one context per process, so a second
// sample rate is an error rather than a reinit.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

func NewPlayer(sampleRate int, source SampleSource) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

func (p *Player) Position() time.Duration {
	return p.player.Position()
}

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}

// PlayBuffer plays a rendered mono buffer to completion, polling until
// the source drains. It blocks the calling goroutine.
func PlayBuffer(samples []float64, sampleRate int) error {
	src := NewBufferSource(samples)
	pl, err := NewPlayer(sampleRate, src)
	if err != nil {
		return err
	}
	pl.Play()
	for pl.IsPlaying() && !src.Finished() {
		time.Sleep(50 * time.Millisecond)
	}
	// Let the device buffer flush before tearing down.
	time.Sleep(200 * time.Millisecond)
	return pl.Stop()
}
