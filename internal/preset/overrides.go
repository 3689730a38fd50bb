package preset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/texbuild/internal/classify"
	"github.com/backmassage/texbuild/internal/config"
)

// overridesFile is the on-disk shape:
//
//	platforms:
//	  mac:
//	    albedo: "-f bc1 -srgb"
//	    unknown: ""        # skip files without a content suffix
type overridesFile struct {
	Platforms map[string]map[string]string `yaml:"platforms"`
}

// Overrides are per-platform fragment replacements loaded from YAML.
type Overrides map[config.Platform]map[classify.ContentKind]string

// For returns the overrides for platform (nil when none).
func (o Overrides) For(platform config.Platform) map[classify.ContentKind]string {
	return o[platform]
}

// LoadOverrides reads a presets YAML file. Unknown top-level keys, platforms,
// or content kinds are errors.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	o, err := ParseOverrides(data)
	if err != nil {
		return nil, fmt.Errorf("presets %s: %w", path, err)
	}
	return o, nil
}

// ParseOverrides decodes presets YAML from data.
func ParseOverrides(data []byte) (Overrides, error) {
	var f overridesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	out := make(Overrides, len(f.Platforms))
	for name, kinds := range f.Platforms {
		platform, err := config.ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		m := make(map[classify.ContentKind]string, len(kinds))
		for kindName, text := range kinds {
			kind, ok := classify.ParseContentKind(kindName)
			if !ok {
				return nil, fmt.Errorf("platform %s: unknown content kind %q", platform, kindName)
			}
			m[kind] = text
		}
		out[platform] = m
	}
	return out, nil
}
