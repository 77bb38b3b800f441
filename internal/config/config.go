// Package config provides VisionFlow configuration management with support
// for a TOML file, environment variable overrides and custom styles.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultConfigFile is read from the working directory when no path is
	// given. It is optional.
	DefaultConfigFile = "visionflow.toml"

	// EnvConfig names the configuration file to read.
	EnvConfig = "VISIONFLOW_CONFIG"
)

// Config represents the root configuration.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Output  OutputConfig  `toml:"output"`
	Input   InputConfig   `toml:"input"`

	// Styles holds custom style parameter tables keyed by style name, e.g.
	//
	//	[styles.faded]
	//	contrast = 0.8
	//	saturation = 0.7
	Styles map[string]map[string]float64 `toml:"styles"`
}

// Load reads the configuration file at path. An empty path falls back to
// $VISIONFLOW_CONFIG and then to DefaultConfigFile; only the default file may
// be missing, in which case an empty Config is returned.
//
// The result is not finalized; call Finalize before use.
func Load(path string) (*Config, error) {
	optional := false
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultConfigFile
		optional = true
	}

	cfg, err := load(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Output.Finalize(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Input.Finalize(); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	for name, params := range c.Styles {
		if len(params) == 0 {
			return fmt.Errorf("styles: %s has no parameters", name)
		}
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	c.Logging.Merge(&overlay.Logging)
	c.Output.Merge(&overlay.Output)
	c.Input.Merge(&overlay.Input)

	if len(overlay.Styles) > 0 && c.Styles == nil {
		c.Styles = make(map[string]map[string]float64, len(overlay.Styles))
	}
	for name, params := range overlay.Styles {
		c.Styles[name] = params
	}
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}
