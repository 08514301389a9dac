// Package config holds the preview tool's settings, loaded from a YAML or
// TOML file and overridden by command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML
// nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

type Config struct {
	// Logical canvas the overlays are positioned on.
	CanvasWidth  float64 `yaml:"canvas_width" toml:"canvas_width"`
	CanvasHeight float64 `yaml:"canvas_height" toml:"canvas_height"`
	// Preset overrides the canvas size: 16:9, 9:16 or 4:5.
	Preset string `yaml:"preset,omitempty" toml:"preset,omitempty"`

	// Output frame size in pixels. The render scale ratio is Width/CanvasWidth.
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
	FPS    int `yaml:"fps" toml:"fps"`

	PresetFile      string `yaml:"preset_file,omitempty" toml:"preset_file,omitempty"`
	TypewriterSplit string `yaml:"typewriter_split" toml:"typewriter_split"`

	ScriptPath   string `yaml:"script,omitempty" toml:"script,omitempty"`
	BackdropPath string `yaml:"backdrop,omitempty" toml:"backdrop,omitempty"`
	BackdropPage int    `yaml:"backdrop_page,omitempty" toml:"backdrop_page,omitempty"`
	DPI          int    `yaml:"dpi" toml:"dpi"`
	OutputVideo  string `yaml:"output,omitempty" toml:"output,omitempty"`
	FramesDir    string `yaml:"frames_dir,omitempty" toml:"frames_dir,omitempty"`

	Workers      int    `yaml:"workers" toml:"workers"`
	VideoEncoder string `yaml:"encoder,omitempty" toml:"encoder,omitempty"`
	Quality      int    `yaml:"quality,omitempty" toml:"quality,omitempty"`
	ShowStats    bool   `yaml:"show_stats,omitempty" toml:"show_stats,omitempty"`
	LogLevel     string `yaml:"log_level,omitempty" toml:"log_level,omitempty"`
	BuildVersion string `yaml:"-" toml:"-"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		CanvasWidth:     1920,
		CanvasHeight:    1080,
		Width:           1280,
		Height:          720,
		FPS:             30,
		TypewriterSplit: "rune",
		DPI:             150,
		Workers:         4,
		LogLevel:        "info",
	}
}

// Load reads path over the defaults. The format follows the extension:
// .yaml/.yml or .toml.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyPreset()
	return cfg, nil
}

// ApplyPreset sets the canvas and frame size from Preset, if set.
func (c *Config) ApplyPreset() {
	switch c.Preset {
	case "16:9":
		c.CanvasWidth, c.CanvasHeight = 1920, 1080
		c.Width, c.Height = 1280, 720
	case "9:16":
		c.CanvasWidth, c.CanvasHeight = 1080, 1920
		c.Width, c.Height = 720, 1280
	case "4:5":
		c.CanvasWidth, c.CanvasHeight = 1080, 1350
		c.Width, c.Height = 1080, 1350
	}
}

// ScaleRatio is the factor the logical canvas is drawn at.
func (c *Config) ScaleRatio() float64 {
	if c.CanvasWidth <= 0 {
		return 1
	}
	return float64(c.Width) / c.CanvasWidth
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.CanvasWidth <= 0 || c.CanvasHeight <= 0:
		return fmt.Errorf("canvas size %vx%v must be positive", c.CanvasWidth, c.CanvasHeight)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("frame size %dx%d must be positive", c.Width, c.Height)
	case c.FPS <= 0:
		return fmt.Errorf("fps %d must be positive", c.FPS)
	case c.Workers <= 0:
		return fmt.Errorf("workers %d must be positive", c.Workers)
	case c.Preset != "" && c.Preset != "16:9" && c.Preset != "9:16" && c.Preset != "4:5":
		return fmt.Errorf("unknown preset %q", c.Preset)
	}
	switch c.TypewriterSplit {
	case "", "rune", "grapheme":
	default:
		return fmt.Errorf("typewriter_split %q must be rune or grapheme", c.TypewriterSplit)
	}
	return nil
}

// Write saves the config as YAML or TOML, by extension.
func (c *Config) Write(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".toml":
		data, err = toml.Marshal(c)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
