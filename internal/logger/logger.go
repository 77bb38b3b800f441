// Package logger builds the process logger from configuration.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/visionflow/internal/config"
)

// New returns a logger writing to stderr. Stdout is left to command output
// and the MCP protocol stream.
func New(cfg config.LoggingConfig) (*logrus.Logger, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(cfg config.LoggingConfig, w io.Writer) (*logrus.Logger, error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			DisableColors: true,
		})
	}

	return logger, nil
}
