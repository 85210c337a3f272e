// Command synth renders a sequencer pattern description into a 16-bit
// PCM WAV file, with optional playback preview.
//
//	synth input.json [-o out.wav] [--root_dir DIR] [-r rate] [-q]
//	      [--info-only] [--strict] [--no-normalize] [--play] [--dump]
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"

	intaudio "github.com/oga5/gamestudio-1984-oss/internal/audio"
	intlog "github.com/oga5/gamestudio-1984-oss/internal/logging"
	intseq "github.com/oga5/gamestudio-1984-oss/internal/sequencer"
	intspec "github.com/oga5/gamestudio-1984-oss/internal/specfile"
	intsynth "github.com/oga5/gamestudio-1984-oss/internal/synth"
	intwav "github.com/oga5/gamestudio-1984-oss/internal/wavio"
)

func main() {
	var (
		output      string
		rootDir     string
		sampleRate  int
		quiet       bool
		infoOnly    bool
		strict      bool
		noNormalize bool
		play        bool
		dump        bool
	)
	pflag.StringVarP(&output, "output", "o", "", "output WAV path (default <stem>_<timestamp>.wav)")
	pflag.StringVar(&rootDir, "root_dir", ".", "base directory for outputs and logs")
	pflag.IntVarP(&sampleRate, "sample-rate", "r", 44100, "output sample rate in Hz")
	pflag.BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	pflag.BoolVar(&infoOnly, "info-only", false, "print pattern info without rendering")
	pflag.BoolVar(&strict, "strict", false, "treat recoverable pattern defects as errors")
	pflag.BoolVar(&noNormalize, "no-normalize", false, "skip peak normalization when quantizing")
	pflag.BoolVar(&play, "play", false, "play the rendered audio after writing")
	pflag.BoolVar(&dump, "dump", false, "dump the parsed pattern for debugging")
	pflag.Parse()

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: synth <input.{json,yaml}> [flags]")
		pflag.PrintDefaults()
		os.Exit(1)
	}
	input := pflag.Arg(0)

	if err := run(input, output, rootDir, sampleRate, quiet, infoOnly, strict, !noNormalize, play, dump); err != nil {
		fmt.Fprintf(os.Stderr, "synth: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output, rootDir string, sampleRate int, quiet, infoOnly, strict, normalize, play, dump bool) error {
	lg, err := intlog.New(rootDir, "synth")
	if err != nil {
		return err
	}
	defer lg.Close()
	lg.Printf("start input=%s rate=%d strict=%v normalize=%v", input, sampleRate, strict, normalize)

	pattern, err := intspec.LoadSoundPattern(input)
	if err != nil {
		lg.Printf("load failed: %v", err)
		return err
	}
	if dump {
		spew.Dump(pattern)
	}

	if !quiet {
		fmt.Println(pattern.Info())
	}
	if infoOnly {
		lg.Printf("info-only, no output written")
		return nil
	}

	engine := intsynth.NewEngine(sampleRate)
	renderer := intseq.NewRenderer(engine, intseq.Options{Strict: strict})
	samples, warnings, err := renderer.RenderPattern(pattern)
	for _, w := range warnings {
		lg.Printf("warning: %s", w)
		if !quiet {
			fmt.Println("warning:", w)
		}
	}
	if err != nil {
		lg.Printf("render failed: %v", err)
		return err
	}

	if output == "" {
		output = defaultName(input, "wav")
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(rootDir, output)
	}
	if err := intwav.Write(output, samples, sampleRate, normalize); err != nil {
		lg.Printf("write failed: %v", err)
		return err
	}
	info := intwav.DescribeMono(output, samples, sampleRate)
	lg.Printf("wrote %s", info)
	if !quiet {
		fmt.Println("wrote", info)
	}

	if play {
		if !quiet {
			fmt.Println("playing...")
		}
		if err := intaudio.PlayBuffer(samples, sampleRate); err != nil {
			lg.Printf("playback failed: %v", err)
			return err
		}
	}
	return nil
}

func defaultName(input, ext string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return fmt.Sprintf("%s_%s.%s", stem, time.Now().Format("20060102_150405"), ext)
}
