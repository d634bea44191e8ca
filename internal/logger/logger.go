// Package logger builds the slog logger used for diagnostics.
//
// Logs always go to stderr (or the writer passed in) so that stdout carries
// nothing but the review report.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds the logger configuration.
type Config struct {
	Level  string
	Format string
}

// New returns a slog logger for cfg writing to output. A nil output means
// stderr. Unknown levels fall back to warn.
func New(cfg Config, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name onto a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
