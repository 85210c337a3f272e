package dotpattern

import (
	"encoding/json"
	"fmt"
	"image/color"

	"gopkg.in/yaml.v3"
)

// Spec is the caller-supplied description of one dot-pattern image:
// a "WxH" size, an ordered palette of at most 32 colors, and the pixel
// stream itself, either as a compact string or as a flat index array.
type Spec struct {
	Size    string      `json:"size" yaml:"size"`
	Colors  []string    `json:"colors" yaml:"colors"`
	Pattern PatternData `json:"pattern" yaml:"pattern"`
	RLE     *bool       `json:"rle,omitempty" yaml:"rle,omitempty"`
}

// PatternData accepts both pattern encodings: a compact string
// ("AAB:ABA:...") or a flat array of palette indices ([0,0,1,...]).
type PatternData struct {
	Text    string
	Indices []int
	IsText  bool

	present bool
}

func (p *PatternData) UnmarshalJSON(data []byte) error {
	p.present = true
	if len(data) > 0 && data[0] == '"' {
		p.IsText = true
		return json.Unmarshal(data, &p.Text)
	}
	p.IsText = false
	return json.Unmarshal(data, &p.Indices)
}

func (p *PatternData) UnmarshalYAML(node *yaml.Node) error {
	p.present = true
	if node.Kind == yaml.ScalarNode {
		p.IsText = true
		return node.Decode(&p.Text)
	}
	p.IsText = false
	return node.Decode(&p.Indices)
}

func (p PatternData) MarshalJSON() ([]byte, error) {
	if p.IsText {
		return json.Marshal(p.Text)
	}
	return json.Marshal(p.Indices)
}

// Dialect selects how string patterns are interpreted.
type Dialect int

const (
	// DialectLegacy maps each character to exactly one pixel.
	DialectLegacy Dialect = iota
	// DialectRLE treats a digit run after a color as its repeat count.
	DialectRLE
)

func (d Dialect) String() string {
	if d == DialectRLE {
		return "rle"
	}
	return "legacy"
}

// Grid is the decoded result: an indexed-color raster whose Indices
// slice always holds exactly Width*Height entries after a lenient
// decode, each in [0, len(Colors)-1].
type Grid struct {
	Width   int
	Height  int
	Colors  []color.NRGBA
	Indices []int
}

// Info summarizes a decoded grid for --info-only style output.
type Info struct {
	Width           int
	Height          int
	TotalPixels     int
	NumColors       int
	HasTransparency bool
}

func (g *Grid) Info() Info {
	info := Info{
		Width:       g.Width,
		Height:      g.Height,
		TotalPixels: g.Width * g.Height,
		NumColors:   len(g.Colors),
	}
	for _, c := range g.Colors {
		if c.A == 0 {
			info.HasTransparency = true
			break
		}
	}
	return info
}

func (i Info) String() string {
	transparency := "no"
	if i.HasTransparency {
		transparency = "yes"
	}
	return fmt.Sprintf("%dx%d (%d pixels), %d colors, transparency: %s",
		i.Width, i.Height, i.TotalPixels, i.NumColors, transparency)
}
