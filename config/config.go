// Package config holds the YAML configuration of the overset command.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Pagination PaginationConfig `yaml:"pagination"`
	Fit        FitConfig        `yaml:"fit"`
	Prompt     PromptConfig     `yaml:"prompt"`
	Render     RenderConfig     `yaml:"render"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// PaginationConfig tunes overflow resolution.
type PaginationConfig struct {
	MaxPages    int    `yaml:"max_pages"`
	FramePrefix string `yaml:"frame_prefix"`
	// Correction adds 2mm (in the document unit) to the height of created frames.
	Correction bool `yaml:"correction"`
}

// FitConfig tunes the shrink-to-fit search, in document units.
type FitConfig struct {
	Probe    float64 `yaml:"probe"`
	Step     float64 `yaml:"step"`
	MaxSteps int     `yaml:"max_steps"`
}

// PromptConfig selects how the user is asked for master pages.
type PromptConfig struct {
	Mode string `yaml:"mode"` // tui, line, defaults
}

// RenderConfig controls PDF output.
type RenderConfig struct {
	Font     string `yaml:"font"` // built-in fallback face
	Outlines bool   `yaml:"outlines"`
	BaseDir  string `yaml:"base_dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Pagination: PaginationConfig{
			MaxPages:    1000,
			FramePrefix: "TextFrame_",
			Correction:  true,
		},
		Fit: FitConfig{
			Probe:    1,
			Step:     2,
			MaxSteps: 0,
		},
		Prompt: PromptConfig{Mode: "tui"},
		Render: RenderConfig{Font: "lmroman10-regular", Outlines: true},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if level := os.Getenv("OVERSET_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if mode := os.Getenv("OVERSET_PROMPT"); mode != "" {
		c.Prompt.Mode = mode
	}
	if raw := os.Getenv("OVERSET_MAX_PAGES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid OVERSET_MAX_PAGES %q: %w", raw, err)
		}
		c.Pagination.MaxPages = n
	}
	return nil
}

// ValidLogLevels lists the accepted log levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	level := strings.ToLower(c.Log.Level)
	valid := false
	for _, l := range ValidLogLevels {
		if level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Log.Level, ValidLogLevels)
	}
	if c.Pagination.MaxPages < 0 {
		return fmt.Errorf("pagination.max_pages must not be negative")
	}
	if c.Pagination.FramePrefix == "" {
		return fmt.Errorf("pagination.frame_prefix must not be empty")
	}
	if c.Fit.Probe <= 0 || c.Fit.Step <= 0 {
		return fmt.Errorf("fit.probe and fit.step must be positive")
	}
	switch strings.ToLower(c.Prompt.Mode) {
	case "tui", "line", "defaults":
	default:
		return fmt.Errorf("invalid prompt mode: %s (valid: tui, line, defaults)", c.Prompt.Mode)
	}
	return nil
}
