// Package config handles loading and saving sff configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/sff/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LayoutConfig holds the Layout Engine defaults a config file may override.
// The CLI applies LaneWidth, RankGap and MaxGlobalExpansions to the Layout
// Engine; Direction and TrackGap are loaded and saved but no command reads
// them.
type LayoutConfig struct {
	Direction           string  `yaml:"direction,omitempty"`             // TB or LR
	LaneWidth           float64 `yaml:"lane_width,omitempty"`            // px
	RankGap             float64 `yaml:"rank_gap,omitempty"`              // px
	TrackGap            float64 `yaml:"track_gap,omitempty"`             // px
	MaxGlobalExpansions int     `yaml:"max_global_expansions,omitempty"` // congestion retry cap
}

// DebugConfig controls where debug dumps are written.
type DebugConfig struct {
	DumpDir string `yaml:"dump_dir,omitempty"`
}

// Config is the top-level configuration for sff.
type Config struct {
	Layout LayoutConfig `yaml:"layout,omitempty"`
	Debug  DebugConfig  `yaml:"debug,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults matching the Layout
// Engine's built-in constants.
func DefaultConfig() Config {
	return Config{
		Layout: LayoutConfig{
			Direction:           "TB",
			LaneWidth:           300.0,
			RankGap:             160.0,
			TrackGap:            24.0,
			MaxGlobalExpansions: 3,
		},
		Debug: DebugConfig{
			DumpDir: ".sff-debug",
		},
	}
}

// ConfigDir returns the XDG config directory for sff.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "sff")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sff")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path, overlaying any set fields on
// top of DefaultConfig. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
