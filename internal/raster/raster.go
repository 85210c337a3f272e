// Package raster turns a decoded dot-pattern grid into RGBA pixels and
// writes them out as PNG, with optional integer nearest-neighbor
// upscaling so pixel art stays crisp.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/oga5/gamestudio-1984-oss/internal/dotpattern"
)

var (
	ErrInvalidScale = errors.New("raster: scale must be a positive integer")
	ErrEmptyGrid    = errors.New("raster: grid has no pixels")
)

// Render maps every palette index in the grid through its resolved
// color into an NRGBA buffer of the grid's dimensions.
func Render(grid *dotpattern.Grid) (*image.NRGBA, error) {
	if grid == nil || grid.Width <= 0 || grid.Height <= 0 || len(grid.Indices) == 0 {
		return nil, ErrEmptyGrid
	}
	img := image.NewNRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for i, idx := range grid.Indices {
		x := i % grid.Width
		y := i / grid.Width
		img.SetNRGBA(x, y, grid.Colors[idx])
	}
	return img, nil
}

// Scale replicates each source pixel into a scale x scale block.
// Nearest-neighbor on purpose: smoothing would destroy the art style.
func Scale(img *image.NRGBA, scale int) (*image.NRGBA, error) {
	if scale < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidScale, scale)
	}
	if scale == 1 {
		return img, nil
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

// Encode returns the PNG container bytes for the scaled image.
func Encode(img *image.NRGBA, scale int) ([]byte, error) {
	scaled, err := Scale(img, scale)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("raster: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteInfo describes a finished PNG file.
type WriteInfo struct {
	Filename     string
	OriginalSize image.Point
	OutputSize   image.Point
	Scale        int
	FileSize     int64
}

func (wi WriteInfo) String() string {
	return fmt.Sprintf("%s: %dx%d -> %dx%d (scale %dx, %d bytes)",
		wi.Filename,
		wi.OriginalSize.X, wi.OriginalSize.Y,
		wi.OutputSize.X, wi.OutputSize.Y,
		wi.Scale, wi.FileSize)
}

// Write encodes the image at the given scale and writes it to path,
// creating parent directories as needed. The container bytes are fully
// encoded in memory first so a failed encode never leaves a truncated
// file behind.
func Write(path string, img *image.NRGBA, scale int) (WriteInfo, error) {
	data, err := Encode(img, scale)
	if err != nil {
		return WriteInfo{}, err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return WriteInfo{}, fmt.Errorf("raster: ensure output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WriteInfo{}, fmt.Errorf("raster: write png: %w", err)
	}
	b := img.Bounds()
	return WriteInfo{
		Filename:     path,
		OriginalSize: image.Point{X: b.Dx(), Y: b.Dy()},
		OutputSize:   image.Point{X: b.Dx() * scale, Y: b.Dy() * scale},
		Scale:        scale,
		FileSize:     int64(len(data)),
	}, nil
}
