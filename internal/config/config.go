// Package config loads the analysis configuration from a YAML file,
// layered over the built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wallscan/wallscan/internal/analyze"
)

// Config is the on-disk configuration of the analyzer.
type Config struct {
	// Analysis holds the detector and reference-locator parameters.
	Analysis analyze.Config `yaml:"analysis"`

	// Workers caps the batch worker pool. 0 means one worker per CPU.
	Workers int `yaml:"workers"`

	// OverlayTint is the hex color used to highlight detections in the
	// rendered overlay.
	OverlayTint string `yaml:"overlay_tint"`

	// OverlayOpacity is the tint blend strength in [0, 1].
	OverlayOpacity float64 `yaml:"overlay_opacity"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Analysis:       analyze.DefaultConfig(),
		Workers:        0,
		OverlayTint:    "#FF3030",
		OverlayOpacity: 0.6,
	}
}

// Load reads a YAML configuration file over the defaults. Fields absent
// from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
