package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is a slog level.
type Level = slog.Level

// Levels accepted in configuration.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format selects the console handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ComponentKey is the attribute key set by Component.
const ComponentKey = "component"

// Config holds logging configuration.
type Config struct {
	Level  Level
	Format Format
	// Output defaults to os.Stderr.
	Output io.Writer
	// Mirror, when set, receives a JSON copy of every record. log.file
	// points it at a file.
	Mirror    io.Writer
	AddSource bool
}

// New creates a new slog.Logger with the given configuration.
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler = slog.NewTextHandler(cfg.Output, opts)
	if strings.EqualFold(string(cfg.Format), string(FormatJSON)) {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	if cfg.Mirror != nil {
		handler = NewMultiHandler(handler, slog.NewJSONHandler(cfg.Mirror, opts))
	}

	return slog.New(handler)
}

// Component returns a child logger tagged with the component name.
// A nil logger yields a no-op logger.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		return Nop()
	}
	return logger.With(ComponentKey, name)
}

// Nop discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel reads a log.level value. slog's names and offsets ("info+2")
// are understood, plus "warning" as an alias for warn.
func ParseLevel(s string) (Level, error) {
	if strings.EqualFold(s, "warning") {
		return LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return LevelInfo, fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}
