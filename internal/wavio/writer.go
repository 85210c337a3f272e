// Package wavio converts float sample buffers to 16-bit PCM WAV, both
// as files on disk and as in-memory byte slices.
package wavio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrEmptyBuffer = errors.New("wavio: empty sample buffer")

const (
	bitDepth = 16
	// normalizeTarget leaves a little headroom below full scale when
	// a buffer needs normalizing.
	normalizeTarget = 0.95
)

// prepare optionally normalizes the buffer to the target peak, then
// hard-clips the result to [-1, 1] before quantization.
func prepare(samples []float64, normalize bool) []float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	out := make([]float64, len(samples))
	gain := 1.0
	if normalize && peak > 0 {
		gain = normalizeTarget / peak
	}
	for i, s := range samples {
		v := s * gain
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = v
	}
	return out
}

func quantize(samples []float64) []int {
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s * 32767)
	}
	return data
}

// Write quantizes and writes a mono buffer as a 16-bit PCM WAV file,
// creating parent directories as needed. With normalize set, the
// buffer is first scaled to the 0.95 target peak.
func Write(path string, samples []float64, sampleRate int, normalize bool) error {
	return writeFile(path, quantize(prepare(samples, normalize)), sampleRate, 1)
}

// WriteStereo interleaves two channel buffers and writes them as one
// stereo file, truncating both to the shorter length when they differ.
// Peak detection spans both channels so the image stays balanced.
func WriteStereo(path string, left, right []float64, sampleRate int, normalize bool) error {
	frames := min(len(left), len(right))
	interleaved := make([]float64, 0, frames*2)
	for i := 0; i < frames; i++ {
		interleaved = append(interleaved, left[i], right[i])
	}
	return writeFile(path, quantize(prepare(interleaved, normalize)), sampleRate, 2)
}

func writeFile(path string, data []int, sampleRate, channels int) error {
	if len(data) == 0 {
		return ErrEmptyBuffer
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("wavio: create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: create %s: %w", path, err)
	}
	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("wavio: encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("wavio: finalize %s: %w", path, err)
	}
	return f.Close()
}

// Encode renders a mono buffer to an in-memory 16-bit PCM RIFF image,
// for callers that need bytes rather than a file.
func Encode(samples []float64, sampleRate int, normalize bool) ([]byte, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyBuffer
	}
	data := quantize(prepare(samples, normalize))
	const channels = 1
	dataSize := len(data) * 2
	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], channels)
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], bitDepth)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range data {
		binary.LittleEndian.PutUint16(out[44+i*2:], uint16(int16(s)))
	}
	return out, nil
}

// Info describes a written file for logging and --info-only output.
type Info struct {
	Filename   string
	SampleRate int
	Channels   int
	Samples    int
	Duration   float64
}

func (in Info) String() string {
	return fmt.Sprintf("%s: %.2fs, %d Hz, %d ch, 16-bit PCM",
		in.Filename, in.Duration, in.SampleRate, in.Channels)
}

// DescribeMono reports the file info Write would produce for a buffer.
func DescribeMono(path string, samples []float64, sampleRate int) Info {
	return Info{
		Filename:   path,
		SampleRate: sampleRate,
		Channels:   1,
		Samples:    len(samples),
		Duration:   float64(len(samples)) / float64(sampleRate),
	}
}
