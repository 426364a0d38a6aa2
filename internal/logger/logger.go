// Package logger configures the process-wide zerolog logger and hands out
// component loggers derived from it.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // trace, debug, info, warn, error, fatal, panic
	Format     string // json, console
	TimeFormat string // RFC3339, Unix, or custom format
	Output     string // stdout, stderr, or file path
}

// DefaultConfig returns the configuration used when none could be loaded.
// Logs go to stderr so that command output on stdout stays machine-readable.
func DefaultConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "console",
		TimeFormat: time.RFC3339,
		Output:     "stderr",
	}
}

// Setup replaces the global logger. The returned closer releases the log file
// when Output names one; it is a no-op for stdout and stderr.
func Setup(config LogConfig) (io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", config.Level, err)
	}

	out, closer, err := openOutput(config.Output)
	if err != nil {
		return nil, err
	}

	// Anything but "json" is rendered for humans; files get no color codes.
	if !strings.EqualFold(config.Format, "json") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: config.TimeFormat,
			NoColor:    closer != nopCloser,
		}
	}

	zerolog.SetGlobalLevel(level)
	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}
	log.Logger = zerolog.New(out).With().
		Timestamp().
		Caller().
		Logger()

	return closer, nil
}

type nopCloserT struct{}

func (nopCloserT) Close() error { return nil }

var nopCloser io.Closer = nopCloserT{}

func openOutput(name string) (io.Writer, io.Closer, error) {
	switch name {
	case "", "stderr":
		return os.Stderr, nopCloser, nil
	case "stdout":
		return os.Stdout, nopCloser, nil
	}
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, file, nil
}

// WithComponent returns a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// WithRunID is WithComponent plus the ID of the batch run being logged.
func WithRunID(component, runID string) zerolog.Logger {
	l := WithComponent(component)
	return l.With().Str("run_id", runID).Logger()
}
