package specfile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadImageSpecJSON(t *testing.T) {
	path := writeTemp(t, "sprite.json", `{
		"size": "2x2",
		"colors": ["#FF0000", "#00FF00"],
		"pattern": "AB:BA"
	}`)
	spec, err := LoadImageSpec(path)
	if err != nil {
		t.Fatalf("LoadImageSpec: %v", err)
	}
	if spec.Size != "2x2" || len(spec.Colors) != 2 {
		t.Fatalf("spec = %+v", spec)
	}
	if !spec.Pattern.IsText || spec.Pattern.Text != "AB:BA" {
		t.Fatalf("pattern = %+v", spec.Pattern)
	}
}

func TestLoadImageSpecYAML(t *testing.T) {
	path := writeTemp(t, "sprite.yaml", `
size: 3x1
colors:
  - transparent
  - "#00FF00"
pattern: ABA
rle: false
`)
	spec, err := LoadImageSpec(path)
	if err != nil {
		t.Fatalf("LoadImageSpec: %v", err)
	}
	if spec.Size != "3x1" {
		t.Fatalf("size = %q", spec.Size)
	}
	if spec.RLE == nil || *spec.RLE {
		t.Fatal("rle flag not parsed")
	}
	if !spec.Pattern.IsText || spec.Pattern.Text != "ABA" {
		t.Fatalf("pattern = %+v", spec.Pattern)
	}
}

func TestLoadImageSpecArrayPattern(t *testing.T) {
	path := writeTemp(t, "sprite.json", `{
		"size": "2x1",
		"colors": ["#000000"],
		"pattern": [0, 0]
	}`)
	spec, err := LoadImageSpec(path)
	if err != nil {
		t.Fatalf("LoadImageSpec: %v", err)
	}
	if spec.Pattern.IsText || len(spec.Pattern.Indices) != 2 {
		t.Fatalf("pattern = %+v", spec.Pattern)
	}
}

func TestLoadSoundPatternJSON(t *testing.T) {
	path := writeTemp(t, "beat.json", `{
		"bpm": 140,
		"patternLength": 8,
		"tracks": {
			"drum": {"data": {"Kick": [true, false, true, false]}}
		}
	}`)
	p, err := LoadSoundPattern(path)
	if err != nil {
		t.Fatalf("LoadSoundPattern: %v", err)
	}
	if p.BPM != 140 || p.PatternLength != 8 {
		t.Fatalf("pattern = %+v", p)
	}
	grid := p.Tracks["drum"].Data["Kick"]
	if len(grid) != 4 || !grid[0] || grid[1] {
		t.Fatalf("kick grid = %v", grid)
	}
}

func TestLoadSoundPatternYAML(t *testing.T) {
	path := writeTemp(t, "beat.yml", `
bpm: 90
tracks:
  melody:
    waveform: square
    data:
      C4: [true, false]
`)
	p, err := LoadSoundPattern(path)
	if err != nil {
		t.Fatalf("LoadSoundPattern: %v", err)
	}
	if p.BPM != 90 {
		t.Fatalf("bpm = %v", p.BPM)
	}
	if p.Tracks["melody"].Waveform != "square" {
		t.Fatalf("waveform = %q", p.Tracks["melody"].Waveform)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := LoadImageSpec(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeTemp(t, "bad.json", `{"size": `)
	if _, err := LoadImageSpec(path); err == nil {
		t.Fatal("expected parse error")
	}
}
