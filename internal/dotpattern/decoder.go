package dotpattern

import (
	"errors"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

// Fatal decode errors. Length, range, and unknown-character conditions
// are fatal only under Options.Strict; everything else is fatal always.
var (
	ErrInvalidSize     = errors.New("dotpattern: invalid size")
	ErrInvalidColor    = errors.New("dotpattern: invalid color")
	ErrMissingField    = errors.New("dotpattern: missing required field")
	ErrTooManyColors   = errors.New("dotpattern: too many colors")
	ErrLengthMismatch  = errors.New("dotpattern: pattern length mismatch")
	ErrIndexOutOfRange = errors.New("dotpattern: color index out of range")
	ErrInvalidChar     = errors.New("dotpattern: invalid pattern character")
)

// Options control decode policy. The default (lenient) mode repairs
// length, range, and character problems and reports them as warnings;
// Strict turns those same conditions into errors.
type Options struct {
	Strict bool
}

const (
	maxColors   = 32
	maxWarnings = 10
)

// rleDigitAfterLetter spots "A10"-style runs when no rle flag is given.
var rleDigitAfterLetter = regexp.MustCompile(`[A-Za-z]\d+`)

// Decode parses a pattern spec into an indexed-color grid. In lenient
// mode the returned warning list (capped at 10 entries) describes every
// repair that was applied; in strict mode the first inconsistency is
// returned as an error instead.
func Decode(spec Spec, opts Options) (*Grid, []string, error) {
	d := &decoder{strict: opts.Strict}
	grid, err := d.decode(spec)
	if err != nil {
		return nil, nil, err
	}
	return grid, d.warnings, nil
}

type decoder struct {
	strict   bool
	width    int
	height   int
	colors   []color.NRGBA
	dialect  Dialect
	warnings []string
}

func (d *decoder) warnf(format string, args ...any) {
	if len(d.warnings) < maxWarnings {
		d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
	}
}

func (d *decoder) decode(spec Spec) (*Grid, error) {
	if strings.TrimSpace(spec.Size) == "" {
		return nil, fmt.Errorf("%w: 'size'", ErrMissingField)
	}
	w, h, err := ParseSize(spec.Size)
	if err != nil {
		return nil, err
	}
	d.width, d.height = w, h

	if spec.Colors == nil {
		return nil, fmt.Errorf("%w: 'colors'", ErrMissingField)
	}
	if len(spec.Colors) > maxColors {
		return nil, fmt.Errorf("%w: got %d, maximum is %d", ErrTooManyColors, len(spec.Colors), maxColors)
	}
	d.colors = make([]color.NRGBA, 0, len(spec.Colors))
	for i, s := range spec.Colors {
		c, err := ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("color at index %d: %w", i, err)
		}
		d.colors = append(d.colors, c)
	}
	if len(d.colors) == 0 {
		// Always keep at least slot 0 so repairs have somewhere to point.
		d.colors = append(d.colors, color.NRGBA{})
	}

	if !spec.Pattern.present {
		return nil, fmt.Errorf("%w: 'pattern'", ErrMissingField)
	}

	d.dialect = resolveDialect(spec)

	var indices []int
	if spec.Pattern.IsText {
		indices, err = d.parseString(spec.Pattern.Text)
	} else {
		indices = append([]int(nil), spec.Pattern.Indices...)
	}
	if err != nil {
		return nil, err
	}

	indices, err = d.reconcileLength(indices)
	if err != nil {
		return nil, err
	}
	if err := d.reconcileRange(indices); err != nil {
		return nil, err
	}

	return &Grid{
		Width:   d.width,
		Height:  d.height,
		Colors:  d.colors,
		Indices: indices,
	}, nil
}

// resolveDialect honors an explicit rle flag, then falls back to the
// detection heuristic for string patterns. The heuristic is first rule
// wins, in this exact order: row-repeat marker, extended letters that
// the legacy alphabet never used, then a letter directly followed by
// digits. Ambiguous patterns can be misclassified; new integrations
// should set the flag.
func resolveDialect(spec Spec) Dialect {
	if spec.RLE != nil {
		if *spec.RLE {
			return DialectRLE
		}
		return DialectLegacy
	}
	if !spec.Pattern.IsText {
		return DialectLegacy
	}
	s := spec.Pattern.Text
	if strings.ContainsRune(s, '*') {
		return DialectRLE
	}
	if strings.ContainsAny(s, "WXYZabcdef") {
		return DialectRLE
	}
	if rleDigitAfterLetter.MatchString(s) {
		return DialectRLE
	}
	return DialectLegacy
}

// ParseSize parses a "WxH" string into positive dimensions.
func ParseSize(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q (expected WxH, e.g. 32x32)", ErrInvalidSize, s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q (expected WxH, e.g. 32x32)", ErrInvalidSize, s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q (expected WxH, e.g. 32x32)", ErrInvalidSize, s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: %q (width and height must be positive)", ErrInvalidSize, s)
	}
	return w, h, nil
}

// ParseColor parses "transparent", "#RGB", or "#RRGGBB" (the leading
// '#' is optional) into a non-premultiplied RGBA value.
func ParseColor(s string) (color.NRGBA, error) {
	if strings.EqualFold(s, "transparent") {
		return color.NRGBA{}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: %q (expected #RGB, #RRGGBB, or 'transparent')", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

// charIndex maps a pattern character to its palette index:
// 'A'-'Z' cover 0-25 and 'a'-'f' cover 26-31.
func charIndex(ch byte) (int, bool) {
	switch {
	case ch >= 'A' && ch <= 'Z':
		return int(ch - 'A'), true
	case ch >= 'a' && ch <= 'f':
		return 26 + int(ch-'a'), true
	default:
		return 0, false
	}
}

func (d *decoder) parseString(s string) ([]int, error) {
	if strings.ContainsAny(s, ":*") {
		return d.parseRows(s)
	}
	if d.dialect == DialectRLE {
		return d.parseRLERun(s, -1)
	}
	return d.parseLegacyRun(s, -1)
}

// parseLegacyRun decodes one pixel per character, skipping whitespace.
// row < 0 means the whole pattern is a single stream.
func (d *decoder) parseLegacyRun(s string, row int) ([]int, error) {
	out := make([]int, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isSpace(ch) {
			continue
		}
		idx, ok := charIndex(ch)
		if !ok {
			if d.strict {
				return nil, fmt.Errorf("%w: %q", ErrInvalidChar, ch)
			}
			if row >= 0 {
				d.warnf("unknown character %q in row %d, using 0", ch, row+1)
			} else {
				d.warnf("unknown pattern character %q, using 0", ch)
			}
			idx = 0
		}
		out = append(out, idx)
	}
	return out, nil
}

// parseRLERun decodes run-length syntax: a digit run after a color is
// its repeat count, and a digit run with no color yet repeats color 0.
func (d *decoder) parseRLERun(s string, row int) ([]int, error) {
	out := make([]int, 0, len(s))
	lastColor := 0
	i := 0
	for i < len(s) {
		ch := s[i]
		switch {
		case isSpace(ch):
			i++
		case isDigit(ch):
			repeat, next := scanNumber(s, i)
			for k := 0; k < repeat; k++ {
				out = append(out, lastColor)
			}
			i = next
		default:
			idx, ok := charIndex(ch)
			if !ok {
				if d.strict {
					return nil, fmt.Errorf("%w: %q", ErrInvalidChar, ch)
				}
				if row >= 0 {
					d.warnf("unknown RLE character %q in row %d, using color 0", ch, row+1)
				} else {
					d.warnf("unknown RLE character %q, using color 0", ch)
				}
				out = append(out, 0)
				i++
				continue
			}
			lastColor = idx
			if i+1 < len(s) && isDigit(s[i+1]) {
				repeat, next := scanNumber(s, i+1)
				for k := 0; k < repeat; k++ {
					out = append(out, lastColor)
				}
				i = next
			} else {
				out = append(out, lastColor)
				i++
			}
		}
	}
	return out, nil
}

// parseRows splits the pattern on ':' row delimiters, expands "base*N"
// row repeats, and reconciles every row against the grid width
// independently. Rows beyond the height are dropped (fatal in strict
// mode) and missing rows are filled with color 0.
func (d *decoder) parseRows(s string) ([]int, error) {
	raw := strings.Split(s, ":")
	rows := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		base, count, ok := splitRowRepeat(r)
		if ok {
			for k := 0; k < count; k++ {
				rows = append(rows, base)
			}
		} else {
			rows = append(rows, r)
		}
	}

	out := make([]int, 0, d.width*d.height)
	for rowIdx, rowStr := range rows {
		if rowIdx >= d.height {
			if d.strict {
				return nil, fmt.Errorf("%w: too many rows (got %d, expected %d)", ErrLengthMismatch, len(rows), d.height)
			}
			d.warnf("extra row %d ignored (height is %d)", rowIdx+1, d.height)
			break
		}
		var pixels []int
		var err error
		if d.dialect == DialectRLE {
			pixels, err = d.parseRLERun(rowStr, rowIdx)
		} else {
			pixels, err = d.parseLegacyRun(rowStr, rowIdx)
		}
		if err != nil {
			return nil, err
		}
		switch {
		case len(pixels) < d.width:
			if d.strict {
				return nil, fmt.Errorf("%w: row %d has %d pixels, expected %d", ErrLengthMismatch, rowIdx+1, len(pixels), d.width)
			}
			padding := d.width - len(pixels)
			d.warnf("row %d: padded %d pixels (got %d, need %d)", rowIdx+1, padding, len(pixels), d.width)
			pixels = append(pixels, make([]int, padding)...)
		case len(pixels) > d.width:
			if d.strict {
				return nil, fmt.Errorf("%w: row %d has %d pixels, expected %d", ErrLengthMismatch, rowIdx+1, len(pixels), d.width)
			}
			d.warnf("row %d: truncated %d pixels (got %d, need %d)", rowIdx+1, len(pixels)-d.width, len(pixels), d.width)
			pixels = pixels[:d.width]
		}
		out = append(out, pixels...)
	}

	if parsed := min(len(rows), d.height); parsed < d.height {
		missing := d.height - parsed
		if d.strict {
			return nil, fmt.Errorf("%w: missing %d rows (got %d, expected %d)", ErrLengthMismatch, missing, parsed, d.height)
		}
		d.warnf("missing %d rows: filled with color 0", missing)
		out = append(out, make([]int, missing*d.width)...)
	}
	return out, nil
}

// splitRowRepeat recognizes "base*N" row repetition. Anything else
// (multiple '*', non-numeric count) is left for the pixel parser.
func splitRowRepeat(row string) (string, int, bool) {
	parts := strings.Split(row, "*")
	if len(parts) != 2 {
		return "", 0, false
	}
	count, err := strconv.Atoi(parts[1])
	if err != nil || count < 0 {
		return "", 0, false
	}
	return parts[0], count, true
}

func (d *decoder) reconcileLength(indices []int) ([]int, error) {
	expected := d.width * d.height
	actual := len(indices)
	switch {
	case actual == expected:
		return indices, nil
	case d.strict:
		return nil, fmt.Errorf("%w: expected %d (%dx%d), got %d", ErrLengthMismatch, expected, d.width, d.height, actual)
	case actual < expected:
		padding := expected - actual
		d.warnf("pattern too short: padded %d pixels with color 0 (expected %d, got %d)", padding, expected, actual)
		return append(indices, make([]int, padding)...), nil
	default:
		d.warnf("pattern too long: truncated %d pixels (expected %d, got %d)", actual-expected, expected, actual)
		return indices[:expected], nil
	}
}

func (d *decoder) reconcileRange(indices []int) error {
	maxIdx := len(d.colors) - 1
	for i, idx := range indices {
		if idx >= 0 && idx <= maxIdx {
			continue
		}
		if d.strict {
			return fmt.Errorf("%w: index %d at pixel %d (valid range 0-%d)", ErrIndexOutOfRange, idx, i, maxIdx)
		}
		d.warnf("color index %d at pixel %d out of range, using 0", idx, i)
		indices[i] = 0
	}
	return nil
}

func scanNumber(s string, at int) (int, int) {
	i := at
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	n, err := strconv.Atoi(s[at:i])
	if err != nil {
		return 0, i
	}
	return n, i
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isSpace(b byte) bool { return b == ' ' || b == '\n' || b == '\r' || b == '\t' }
