// Package logger constructs the zerolog loggers used across the P2P core.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name (trace, debug, info, warn, error).
	// Empty or unknown values fall back to info.
	Level string
	// Component is attached to every event as the "component" field.
	Component string
}

// New creates a timestamped logger writing to stderr.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	ctx := zerolog.New(os.Stderr).Level(level).With().Timestamp()
	if cfg.Component != "" {
		ctx = ctx.Str("component", cfg.Component)
	}
	return ctx.Logger()
}

// Nop returns a disabled logger, used as the default in library constructors.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
