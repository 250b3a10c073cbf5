// Package config provides configuration loading and management for medrender.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"medrender/pkg/colormap"
	"medrender/pkg/imagedata"
	"medrender/pkg/voi"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Display parameters
	Display struct {
		// DefaultColormap names the colormap used when none is requested
		DefaultColormap string `yaml:"defaultColormap"`

		// JPEGQuality is the encoder quality for .jpg/.jpeg output (1-100)
		JPEGQuality int `yaml:"jpegQuality"`

		// Invert flips the display range by default
		Invert bool `yaml:"invert"`
	} `yaml:"display"`

	// Automatic window/level derivation parameters
	AutoVOI struct {
		// Method selects the derivation: "minmax" or "percentile"
		Method string `yaml:"method"`

		// LowerQuantile and UpperQuantile bound the percentile method
		LowerQuantile float64 `yaml:"lowerQuantile"`
		UpperQuantile float64 `yaml:"upperQuantile"`
	} `yaml:"autoVoi"`

	// Presets holds named window/level pairs in addition to the builtins
	Presets []PresetConfig `yaml:"presets"`

	// Colormaps holds user-defined colormaps registered at load time
	Colormaps []ColormapConfig `yaml:"colormaps"`
}

// PresetConfig is a named window/level pair defined in configuration
type PresetConfig struct {
	// Name identifies the preset for the -preset flag
	Name string `yaml:"name"`

	// Modality is the acquisition modality the window was tuned for
	Modality string `yaml:"modality"`

	// WindowCenter and WindowWidth define the window
	WindowCenter float64 `yaml:"windowCenter"`
	WindowWidth  float64 `yaml:"windowWidth"`
}

// ColormapConfig is a user-defined colormap described by hex color stops
type ColormapConfig struct {
	// Name identifies the colormap for the -colormap flag
	Name string `yaml:"name"`

	// Stops lists the color anchors along [0, 1]
	Stops []StopConfig `yaml:"stops"`
}

// StopConfig is one color anchor of a user-defined colormap
type StopConfig struct {
	// Offset is the stop position in [0, 1]
	Offset float64 `yaml:"offset"`

	// Color is the stop color as "#RRGGBB"
	Color string `yaml:"color"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Display.DefaultColormap = "grayscale"
	cfg.Display.JPEGQuality = 90
	cfg.Display.Invert = false

	cfg.AutoVOI.Method = "minmax"
	cfg.AutoVOI.LowerQuantile = 0.01
	cfg.AutoVOI.UpperQuantile = 0.99

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks field ranges and the shape of user-defined colormaps
func (cfg *Config) Validate() error {
	if cfg.Display.JPEGQuality < 1 || cfg.Display.JPEGQuality > 100 {
		return fmt.Errorf("jpegQuality %d out of range [1, 100]", cfg.Display.JPEGQuality)
	}

	switch cfg.AutoVOI.Method {
	case "minmax", "percentile":
	default:
		return fmt.Errorf("unknown autoVoi method %q (minmax or percentile)", cfg.AutoVOI.Method)
	}

	if q := cfg.AutoVOI; q.LowerQuantile < 0 || q.UpperQuantile > 1 || q.LowerQuantile >= q.UpperQuantile {
		return fmt.Errorf("autoVoi quantiles [%g, %g] invalid", q.LowerQuantile, q.UpperQuantile)
	}

	for _, p := range cfg.Presets {
		if p.Name == "" {
			return fmt.Errorf("preset with empty name")
		}
		if p.WindowWidth <= 0 {
			return fmt.Errorf("preset %q has non-positive window width %g", p.Name, p.WindowWidth)
		}
	}

	for _, cm := range cfg.Colormaps {
		if cm.Name == "" {
			return fmt.Errorf("colormap with empty name")
		}
		if len(cm.Stops) == 0 {
			return fmt.Errorf("colormap %q has no stops", cm.Name)
		}
		for _, s := range cm.Stops {
			if _, err := ParseHexColor(s.Color); err != nil {
				return fmt.Errorf("colormap %q: %w", cm.Name, err)
			}
		}
	}

	return nil
}

// FindPreset looks up a preset by name, checking the configuration first and
// the builtin presets second. Names are case-insensitive.
func (cfg *Config) FindPreset(name string) (voi.Preset, bool) {
	for _, p := range cfg.Presets {
		if strings.EqualFold(p.Name, name) {
			return voi.Preset{
				Name:     p.Name,
				Modality: p.Modality,
				Window:   imagedata.Window{Center: p.WindowCenter, Width: p.WindowWidth},
			}, true
		}
	}
	return voi.LookupPreset(name)
}

// RegisterColormaps registers every user-defined colormap from the
// configuration into the colormap registry. Already-registered names are
// skipped so reloading a config is idempotent.
func (cfg *Config) RegisterColormaps() error {
	for _, c := range cfg.Colormaps {
		if _, exists := colormap.ByName(c.Name); exists {
			continue
		}

		m := colormap.Map{Name: c.Name}
		for _, s := range c.Stops {
			col, err := ParseHexColor(s.Color)
			if err != nil {
				return fmt.Errorf("colormap %q: %w", c.Name, err)
			}
			m.Stops = append(m.Stops, colormap.Stop{Offset: s.Offset, Color: col})
		}

		if err := colormap.Register(m); err != nil {
			return fmt.Errorf("registering colormap %q: %w", c.Name, err)
		}
	}
	return nil
}

// ParseHexColor parses a "#RRGGBB" color string
func ParseHexColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q (want #RRGGBB)", s)
	}

	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %v", s, err)
	}

	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}
