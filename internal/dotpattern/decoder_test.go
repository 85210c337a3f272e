package dotpattern

import (
	"encoding/json"
	"errors"
	"image/color"
	"strings"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func textSpec(size string, colors []string, pattern string, rle *bool) Spec {
	return Spec{
		Size:    size,
		Colors:  colors,
		Pattern: PatternData{Text: pattern, IsText: true, present: true},
		RLE:     rle,
	}
}

func TestDecodeExampleScenario(t *testing.T) {
	spec := textSpec("2x2", []string{"transparent", "#FF0000"}, "AB:BA", nil)
	grid, warnings, err := Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	want := []int{0, 1, 1, 0}
	for i, idx := range want {
		if grid.Indices[i] != idx {
			t.Fatalf("expected indices %v, got %v", want, grid.Indices)
		}
	}
	if grid.Colors[0] != (color.NRGBA{}) {
		t.Fatalf("expected transparent color 0, got %+v", grid.Colors[0])
	}
	if grid.Colors[1] != (color.NRGBA{R: 255, A: 255}) {
		t.Fatalf("expected red color 1, got %+v", grid.Colors[1])
	}
}

func TestDecodeRoundTripSize(t *testing.T) {
	spec := textSpec("8x4", []string{"transparent", "#00FF00"}, strings.Repeat("AB", 16), nil)
	grid, _, err := Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if grid.Width != 8 || grid.Height != 4 {
		t.Fatalf("expected 8x4 grid, got %dx%d", grid.Width, grid.Height)
	}
	if len(grid.Indices) != 32 {
		t.Fatalf("expected 32 indices, got %d", len(grid.Indices))
	}
}

func TestDecodePadsShortPattern(t *testing.T) {
	spec := textSpec("4x4", []string{"transparent", "#FFF"}, "BBBB", nil)
	grid, warnings, err := Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(grid.Indices) != 16 {
		t.Fatalf("expected 16 indices after padding, got %d", len(grid.Indices))
	}
	for i := 4; i < 16; i++ {
		if grid.Indices[i] != 0 {
			t.Fatalf("expected index %d padded with 0, got %d", i, grid.Indices[i])
		}
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "padded 12 pixels") {
		t.Fatalf("expected one padding warning, got %v", warnings)
	}
}

func TestDecodeTruncatesLongPattern(t *testing.T) {
	spec := textSpec("2x2", []string{"transparent", "#FFF"}, "BBBBBB", nil)
	grid, warnings, err := Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(grid.Indices) != 4 {
		t.Fatalf("expected 4 indices after truncation, got %d", len(grid.Indices))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "truncated 2 pixels") {
		t.Fatalf("expected one truncation warning, got %v", warnings)
	}
}

func TestDecodeRLERepeatCounts(t *testing.T) {
	spec := textSpec("10x1", []string{"transparent"}, "A10", boolPtr(true))
	grid, _, err := Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	for i, idx := range grid.Indices {
		if idx != 0 {
			t.Fatalf("expected ten zeros, got %d at %d", idx, i)
		}
	}

	spec = textSpec("5x1", []string{"transparent", "#F00"}, "A3B2", boolPtr(true))
	grid, _, err = Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := []int{0, 0, 0, 1, 1}
	for i := range want {
		if grid.Indices[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, grid.Indices)
		}
	}
}

func TestDecodeRLEOrphanDigitsRepeatPreviousColor(t *testing.T) {
	// The repeat color survives across a whitespace break within a row.
	spec := textSpec("6x1", []string{"transparent", "#F00"}, "B2 4", boolPtr(true))
	grid, _, err := Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := []int{1, 1, 1, 1, 1, 1}
	for i := range want {
		if grid.Indices[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, grid.Indices)
		}
	}
}

func TestDecodeRowRepeat(t *testing.T) {
	spec := textSpec("3x4", []string{"transparent", "#F00"}, "ABA*3:BBB", boolPtr(true))
	grid, _, err := Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := []int{0, 1, 0, 0, 1, 0, 0, 1, 0, 1, 1, 1}
	for i := range want {
		if grid.Indices[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, grid.Indices)
		}
	}
}

func TestDecodeRowPaddingAndMissingRows(t *testing.T) {
	spec := textSpec("4x3", []string{"transparent", "#F00"}, "BB:BBBBBB", nil)
	grid, warnings, err := Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(grid.Indices) != 12 {
		t.Fatalf("expected 12 indices, got %d", len(grid.Indices))
	}
	want := []int{1, 1, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0}
	for i := range want {
		if grid.Indices[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, grid.Indices)
		}
	}
	if len(warnings) != 3 {
		t.Fatalf("expected pad/truncate/missing warnings, got %v", warnings)
	}
}

func TestDecodeClampsOutOfRangeIndices(t *testing.T) {
	spec := Spec{
		Size:    "2x2",
		Colors:  []string{"transparent", "#F00"},
		Pattern: PatternData{Indices: []int{0, 1, 5, -1}, present: true},
	}
	grid, warnings, err := Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if grid.Indices[2] != 0 || grid.Indices[3] != 0 {
		t.Fatalf("expected out-of-range indices clamped to 0, got %v", grid.Indices)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
}

func TestDecodeWarningCap(t *testing.T) {
	indices := make([]int, 64)
	for i := range indices {
		indices[i] = 99
	}
	spec := Spec{
		Size:    "8x8",
		Colors:  []string{"transparent"},
		Pattern: PatternData{Indices: indices, present: true},
	}
	grid, warnings, err := Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(warnings) != maxWarnings {
		t.Fatalf("expected warnings capped at %d, got %d", maxWarnings, len(warnings))
	}
	for _, idx := range grid.Indices {
		if idx != 0 {
			t.Fatalf("expected every index repaired to 0")
		}
	}
}

func TestDecodeStrictRejections(t *testing.T) {
	cases := []struct {
		name string
		spec Spec
		want error
	}{
		{
			name: "short pattern",
			spec: textSpec("4x4", []string{"transparent"}, "AAAA", nil),
			want: ErrLengthMismatch,
		},
		{
			name: "out of range index",
			spec: Spec{
				Size:    "2x1",
				Colors:  []string{"transparent"},
				Pattern: PatternData{Indices: []int{0, 3}, present: true},
			},
			want: ErrIndexOutOfRange,
		},
		{
			name: "unknown character",
			spec: textSpec("2x1", []string{"transparent"}, "A?", boolPtr(false)),
			want: ErrInvalidChar,
		},
		{
			name: "too many rows",
			spec: textSpec("1x2", []string{"transparent"}, "A:A:A", nil),
			want: ErrLengthMismatch,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			grid, _, err := Decode(tc.spec, Options{Strict: true})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if grid != nil {
				t.Fatalf("expected no partial grid on strict failure")
			}
		})
	}
}

func TestDecodeLenientUnknownCharacter(t *testing.T) {
	spec := textSpec("2x1", []string{"transparent", "#F00"}, "B?", boolPtr(false))
	grid, warnings, err := Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if grid.Indices[1] != 0 {
		t.Fatalf("expected unknown char degraded to 0, got %d", grid.Indices[1])
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
}

func TestDecodeFatalStructuralErrors(t *testing.T) {
	cases := []struct {
		name string
		spec Spec
		want error
	}{
		{"bad size", textSpec("0x4", []string{"transparent"}, "A", nil), ErrInvalidSize},
		{"garbage size", textSpec("wide", []string{"transparent"}, "A", nil), ErrInvalidSize},
		{"bad color", textSpec("1x1", []string{"#ZZZ"}, "A", nil), ErrInvalidColor},
		{"missing colors", Spec{Size: "1x1", Pattern: PatternData{Text: "A", IsText: true, present: true}}, ErrMissingField},
		{"missing pattern", Spec{Size: "1x1", Colors: []string{"transparent"}}, ErrMissingField},
		{
			"too many colors",
			textSpec("1x1", make([]string, 33), "A", nil),
			ErrTooManyColors,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := Decode(tc.spec, Options{}); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDialectAutoDetection(t *testing.T) {
	cases := []struct {
		pattern string
		want    Dialect
	}{
		{"AAB*4:AAB", DialectRLE},   // row-repeat marker
		{"AAaaBB", DialectRLE},      // extended letters
		{"A10BC3", DialectRLE},      // letter followed by digits
		{"AABBCCAABB", DialectLegacy},
		{"ABC:CBA", DialectLegacy},
	}
	for _, tc := range cases {
		spec := textSpec("4x4", []string{"transparent"}, tc.pattern, nil)
		if got := resolveDialect(spec); got != tc.want {
			t.Fatalf("pattern %q: expected dialect %v, got %v", tc.pattern, tc.want, got)
		}
	}
	// An explicit flag always wins over the heuristic.
	spec := textSpec("4x4", []string{"transparent"}, "A10BC3", boolPtr(false))
	if got := resolveDialect(spec); got != DialectLegacy {
		t.Fatalf("expected explicit flag to override heuristic, got %v", got)
	}
}

func TestParseColorForms(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
	}{
		{"transparent", color.NRGBA{}},
		{"Transparent", color.NRGBA{}},
		{"#F00", color.NRGBA{R: 255, A: 255}},
		{"#FF0000", color.NRGBA{R: 255, A: 255}},
		{"00FF7F", color.NRGBA{G: 255, B: 127, A: 255}},
		{"#0f0", color.NRGBA{G: 255, A: 255}},
	}
	for _, tc := range cases {
		got, err := ParseColor(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: expected %+v, got %+v", tc.in, tc.want, got)
		}
	}
	if _, err := ParseColor("#FF00"); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("expected invalid color error for 4-digit hex")
	}
}

func TestSpecJSONRoundTrip(t *testing.T) {
	raw := `{"size":"2x2","colors":["transparent","#FF0000"],"pattern":"AB:BA"}`
	var spec Spec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !spec.Pattern.IsText || spec.Pattern.Text != "AB:BA" {
		t.Fatalf("expected text pattern, got %+v", spec.Pattern)
	}

	raw = `{"size":"2x1","colors":["transparent"],"pattern":[0,0]}`
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if spec.Pattern.IsText || len(spec.Pattern.Indices) != 2 {
		t.Fatalf("expected array pattern, got %+v", spec.Pattern)
	}
}

func TestGridInfo(t *testing.T) {
	spec := textSpec("2x2", []string{"transparent", "#FF0000"}, "AB:BA", nil)
	grid, _, err := Decode(spec, Options{})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	info := grid.Info()
	if info.TotalPixels != 4 || info.NumColors != 2 || !info.HasTransparency {
		t.Fatalf("unexpected info: %+v", info)
	}
}
