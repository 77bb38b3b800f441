package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/docker/go-units"
)

const (
	EnvJPEGQuality  = "VISIONFLOW_JPEG_QUALITY"
	EnvMaxInputSize = "VISIONFLOW_MAX_INPUT_SIZE"
)

// OutputConfig controls how results are written.
type OutputConfig struct {
	// JPEGQuality is 1-100. Default: 95
	JPEGQuality int `toml:"jpeg_quality"`
	// Suffix is inserted as "_<suffix>" before the input extension when no
	// output path is given.
	// Default: "processed"
	Suffix string `toml:"suffix"`
}

// Finalize applies defaults, loads environment overrides, and validates the output configuration.
func (c *OutputConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *OutputConfig) Merge(overlay *OutputConfig) {
	if overlay.JPEGQuality != 0 {
		c.JPEGQuality = overlay.JPEGQuality
	}
	if overlay.Suffix != "" {
		c.Suffix = overlay.Suffix
	}
}

func (c *OutputConfig) loadDefaults() {
	if c.JPEGQuality == 0 {
		c.JPEGQuality = 95
	}
	if c.Suffix == "" {
		c.Suffix = "processed"
	}
}

func (c *OutputConfig) loadEnv() error {
	if v := os.Getenv(EnvJPEGQuality); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvJPEGQuality, err)
		}
		c.JPEGQuality = q
	}
	return nil
}

func (c *OutputConfig) validate() error {
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be 1-100, got %d", c.JPEGQuality)
	}
	return nil
}

// InputConfig limits what is read from disk.
type InputConfig struct {
	// MaxSize is a human-readable file size limit such as "50MB".
	// Default: "100MB"
	MaxSize    string `toml:"max_size"`
	maxSizeVal int64
}

// MaxSizeBytes returns the parsed MaxSize. It is valid after Finalize.
func (c *InputConfig) MaxSizeBytes() int64 {
	return c.maxSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the input configuration.
func (c *InputConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *InputConfig) Merge(overlay *InputConfig) {
	if size, err := units.FromHumanSize(overlay.MaxSize); err == nil {
		c.MaxSize = overlay.MaxSize
		c.maxSizeVal = size
	}
}

func (c *InputConfig) loadDefaults() {
	if c.MaxSize == "" {
		c.MaxSize = "100MB"
	}
}

func (c *InputConfig) loadEnv() {
	if v := os.Getenv(EnvMaxInputSize); v != "" {
		c.MaxSize = v
	}
}

func (c *InputConfig) validate() error {
	size, err := units.FromHumanSize(c.MaxSize)
	if err != nil {
		return fmt.Errorf("invalid max_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_size must be positive")
	}
	c.maxSizeVal = size
	return nil
}
