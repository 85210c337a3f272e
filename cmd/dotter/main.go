// Command dotter converts a dot-pattern description file into a PNG
// image.
//
//	dotter input.json [-o out.png] [--root_dir DIR] [-s N] [-q]
//	       [--info-only] [--strict] [--dump]
//
// Warnings from lenient decoding go to stdout and the log file; any
// fatal error prints to stderr and exits 1.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"

	intdot "github.com/oga5/gamestudio-1984-oss/internal/dotpattern"
	intlog "github.com/oga5/gamestudio-1984-oss/internal/logging"
	intraster "github.com/oga5/gamestudio-1984-oss/internal/raster"
	intspec "github.com/oga5/gamestudio-1984-oss/internal/specfile"
)

func main() {
	var (
		output   string
		rootDir  string
		scale    int
		quiet    bool
		infoOnly bool
		strict   bool
		dump     bool
	)
	pflag.StringVarP(&output, "output", "o", "", "output PNG path (default <stem>_<timestamp>.png)")
	pflag.StringVar(&rootDir, "root_dir", ".", "base directory for outputs and logs")
	pflag.IntVarP(&scale, "scale", "s", 1, "integer scale factor")
	pflag.BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	pflag.BoolVar(&infoOnly, "info-only", false, "print pattern info without writing a file")
	pflag.BoolVar(&strict, "strict", false, "treat recoverable pattern defects as errors")
	pflag.BoolVar(&dump, "dump", false, "dump the parsed spec for debugging")
	pflag.Parse()

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: dotter <input.{json,yaml}> [flags]")
		pflag.PrintDefaults()
		os.Exit(1)
	}
	input := pflag.Arg(0)

	if err := run(input, output, rootDir, scale, quiet, infoOnly, strict, dump); err != nil {
		fmt.Fprintf(os.Stderr, "dotter: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output, rootDir string, scale int, quiet, infoOnly, strict, dump bool) error {
	lg, err := intlog.New(rootDir, "dotter")
	if err != nil {
		return err
	}
	defer lg.Close()
	lg.Printf("start input=%s scale=%d strict=%v", input, scale, strict)

	spec, err := intspec.LoadImageSpec(input)
	if err != nil {
		lg.Printf("load failed: %v", err)
		return err
	}
	if dump {
		spew.Dump(spec)
	}

	grid, warnings, err := intdot.Decode(*spec, intdot.Options{Strict: strict})
	for _, w := range warnings {
		lg.Printf("warning: %s", w)
		if !quiet {
			fmt.Println("warning:", w)
		}
	}
	if err != nil {
		lg.Printf("decode failed: %v", err)
		return err
	}

	if !quiet {
		fmt.Println(grid.Info())
	}
	if infoOnly {
		lg.Printf("info-only, no output written")
		return nil
	}

	img, err := intraster.Render(grid)
	if err != nil {
		lg.Printf("render failed: %v", err)
		return err
	}

	if output == "" {
		output = defaultName(input, "png")
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(rootDir, output)
	}
	info, err := intraster.Write(output, img, scale)
	if err != nil {
		lg.Printf("write failed: %v", err)
		return err
	}
	lg.Printf("wrote %s", info)
	if !quiet {
		fmt.Println("wrote", info)
	}
	return nil
}

func defaultName(input, ext string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return fmt.Sprintf("%s_%s.%s", stem, time.Now().Format("20060102_150405"), ext)
}
