package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ContextKey is the type for context keys used by the logger
type ContextKey string

const (
	// LoggerKey is the context key for the logger instance
	LoggerKey ContextKey = "logger"
)

// Output formats accepted by Options.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures a logger. Zero values give an info-level console logger on stderr.
type Options struct {
	Level  string
	Format string
	Out    io.Writer
}

// NewFromOptions builds a logger. JSON output is meant for log collectors,
// console output for people running the CLI.
func NewFromOptions(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !strings.EqualFold(strings.TrimSpace(opts.Format), FormatJSON) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().
		Logger()
}

// New creates an info-level console logger on stderr.
func New() zerolog.Logger {
	return NewFromOptions(Options{})
}

// NewWithLevel creates a console logger filtered at the named level.
func NewWithLevel(level string) zerolog.Logger {
	return NewFromOptions(Options{Level: level})
}

// NewWithWriter creates a JSON logger writing to w.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return NewFromOptions(Options{Format: FormatJSON, Out: w})
}

// ParseLevel maps a level name such as "debug" or "WARN" to a zerolog level.
// Unknown or empty names fall back to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from the context or returns a default logger
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return New()
}

// WithReceipt tags the context logger with the run and the receipt source,
// so every line logged while processing one image can be correlated.
func WithReceipt(ctx context.Context, runID, source string) (context.Context, zerolog.Logger) {
	log := FromContext(ctx).With().
		Str("run_id", runID).
		Str("source", source).
		Logger()
	return WithContext(ctx, log), log
}
