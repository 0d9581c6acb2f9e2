// Package logging configures the process-wide structured logger built on
// log/slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logging options.
type Config struct {
	// Level is the minimum level to output.
	Level slog.Level
	// JSON switches the handler to JSON output.
	JSON bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig reads KHATA_LOG_LEVEL (DEBUG, INFO, WARN, ERROR; default
// INFO) and KHATA_LOG_FORMAT (json for JSON output).
func DefaultConfig() Config {
	cfg := Config{
		Level:  slog.LevelInfo,
		Output: os.Stderr,
	}
	if lvl := os.Getenv("KHATA_LOG_LEVEL"); lvl != "" {
		cfg.Level = parseLevel(lvl)
	}
	if strings.EqualFold(os.Getenv("KHATA_LOG_FORMAT"), "json") {
		cfg.JSON = true
	}
	return cfg
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs the default slog logger with the given configuration and
// returns it.
func Setup(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
