package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

const (
	EnvLogLevel  = "VISIONFLOW_LOG_LEVEL"
	EnvLogFormat = "VISIONFLOW_LOG_FORMAT"
)

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	// Level is any logrus level name. Default: "info"
	Level string `toml:"level"`
	// Format is "text" or "json". Default: "text"
	Format string `toml:"format"`
}

// Finalize applies defaults, loads environment overrides, and validates the logging configuration.
func (c *LoggingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

func (c *LoggingConfig) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

func (c *LoggingConfig) loadEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Format = v
	}
}

func (c *LoggingConfig) validate() error {
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid level: %w", err)
	}
	switch c.Format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("invalid format %q: want text or json", c.Format)
}
