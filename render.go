// Package gamestudio is the offline rendering facade: it turns pattern
// descriptions into PNG images and WAV sounds without touching the
// filesystem or an audio device. The cmd tools layer file loading,
// logging, and playback on top of these calls.
package gamestudio

import (
	"image"

	intdot "github.com/oga5/gamestudio-1984-oss/internal/dotpattern"
	intraster "github.com/oga5/gamestudio-1984-oss/internal/raster"
	intseq "github.com/oga5/gamestudio-1984-oss/internal/sequencer"
	intsynth "github.com/oga5/gamestudio-1984-oss/internal/synth"
	intwav "github.com/oga5/gamestudio-1984-oss/internal/wavio"
)

// Options control decode and render strictness for both pipelines.
type Options struct {
	// Strict turns recoverable pattern defects into errors instead of
	// warnings.
	Strict bool
}

// RenderImage decodes a dot-pattern spec into an RGBA image, scaled by
// the given integer factor with nearest-neighbor sampling.
func RenderImage(spec *intdot.Spec, scale int, opts Options) (*image.NRGBA, []string, error) {
	grid, warnings, err := intdot.Decode(*spec, intdot.Options{Strict: opts.Strict})
	if err != nil {
		return nil, warnings, err
	}
	img, err := intraster.Render(grid)
	if err != nil {
		return nil, warnings, err
	}
	scaled, err := intraster.Scale(img, scale)
	if err != nil {
		return nil, warnings, err
	}
	return scaled, warnings, nil
}

// GenerateImagePNG decodes, renders, scales, and PNG-encodes a
// dot-pattern spec in one call.
func GenerateImagePNG(spec *intdot.Spec, scale int, opts Options) ([]byte, []string, error) {
	grid, warnings, err := intdot.Decode(*spec, intdot.Options{Strict: opts.Strict})
	if err != nil {
		return nil, warnings, err
	}
	img, err := intraster.Render(grid)
	if err != nil {
		return nil, warnings, err
	}
	data, err := intraster.Encode(img, scale)
	if err != nil {
		return nil, warnings, err
	}
	return data, warnings, nil
}

// RenderSound mixes a sequencer pattern into a mono float buffer at
// the given sample rate.
func RenderSound(pattern *intseq.Pattern, sampleRate int, opts Options) ([]float64, []string, error) {
	engine := intsynth.NewEngine(sampleRate)
	renderer := intseq.NewRenderer(engine, intseq.Options{Strict: opts.Strict})
	return renderer.RenderPattern(pattern)
}

// GenerateSoundWAV renders a pattern and encodes it as an in-memory
// 16-bit PCM WAV image. With normalize set, quantization scales the
// buffer to a 0.95 peak first.
func GenerateSoundWAV(pattern *intseq.Pattern, sampleRate int, normalize bool, opts Options) ([]byte, []string, error) {
	samples, warnings, err := RenderSound(pattern, sampleRate, opts)
	if err != nil {
		return nil, warnings, err
	}
	data, err := intwav.Encode(samples, sampleRate, normalize)
	if err != nil {
		return nil, warnings, err
	}
	return data, warnings, nil
}
