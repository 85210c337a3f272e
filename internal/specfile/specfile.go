// Package specfile loads pattern description files. Inputs are JSON
// by default; files ending in .yaml or .yml go through the YAML
// decoder instead, so hand-edited patterns don't need quoting noise.
package specfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oga5/gamestudio-1984-oss/internal/dotpattern"
	"github.com/oga5/gamestudio-1984-oss/internal/sequencer"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("specfile: read %s: %w", path, err)
	}
	if isYAML(path) {
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("specfile: parse %s: %w", path, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("specfile: parse %s: %w", path, err)
	}
	return nil
}

// LoadImageSpec reads a dot-pattern description from a JSON or YAML file.
func LoadImageSpec(path string) (*dotpattern.Spec, error) {
	var spec dotpattern.Spec
	if err := load(path, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// LoadSoundPattern reads a sequencer pattern from a JSON or YAML file.
func LoadSoundPattern(path string) (*sequencer.Pattern, error) {
	var pattern sequencer.Pattern
	if err := load(path, &pattern); err != nil {
		return nil, err
	}
	return &pattern, nil
}
