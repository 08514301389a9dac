package effects

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var builtinPresets []byte

// Catalog maps preset names to their definitions.
type Catalog struct {
	Version string       `yaml:"version"`
	Presets []Definition `yaml:"presets"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := LoadCatalog(bytes.NewReader(builtinPresets))
	if err != nil {
		panic(fmt.Sprintf("effects: built-in presets: %v", err))
	}
	return c
}

// LoadCatalog parses and validates a catalog document.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadCatalog loads a catalog file and fills presets it does not define
// from the built-in catalog.
func ReadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := LoadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, d := range Default().Presets {
		if _, ok := c.Lookup(d.Name); !ok {
			c.Presets = append(c.Presets, d)
		}
	}
	return c, nil
}

// WriteCatalog writes c as YAML.
func WriteCatalog(c *Catalog, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Lookup returns the definition for name.
func (c *Catalog) Lookup(name string) (Definition, bool) {
	for _, d := range c.Presets {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Validate checks that every definition names a known preset, uses known
// properties and easings, and has non-negative timing.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool)
	for _, d := range c.Presets {
		if !Known(d.Name) {
			return fmt.Errorf("%w: %q", ErrUnknownPreset, d.Name)
		}
		if seen[d.Name] {
			return fmt.Errorf("preset %q defined twice", d.Name)
		}
		seen[d.Name] = true

		if len(d.Steps) == 0 && d.Reveal == nil {
			return fmt.Errorf("preset %q has no steps", d.Name)
		}
		for i, s := range d.Steps {
			if !knownProperty(s.Property) {
				return fmt.Errorf("preset %q step %d: unknown property %q", d.Name, i, s.Property)
			}
			if EasingByName(s.Easing) == nil {
				return fmt.Errorf("preset %q step %d: unknown easing %q", d.Name, i, s.Easing)
			}
			if s.Duration < 0 || s.Offset < 0 {
				return fmt.Errorf("preset %q step %d: negative timing", d.Name, i)
			}
		}
		if r := d.Reveal; r != nil {
			if r.Duration < 0 || r.Stagger < 0 {
				return fmt.Errorf("preset %q reveal: negative timing", d.Name)
			}
			if EasingByName(r.Easing) == nil {
				return fmt.Errorf("preset %q reveal: unknown easing %q", d.Name, r.Easing)
			}
		}
	}
	return nil
}
