// Package logging configures the process-wide zerolog logger.
package logging

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "WIREDUMP_LOG_LEVEL"
	EnvLogTimestamp = "WIREDUMP_LOG_TIMESTAMP"
	EnvLogNoColor   = "WIREDUMP_LOG_NOCOLOR"
)

// Options control the console logger.
type Options struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
}

// Init builds the console logger for app, applies environment overrides on
// top of level, and installs it as the global logger.
func Init(app, level string) zerolog.Logger {
	opts := Options{Level: zerolog.InfoLevel, Timestamp: true}
	if lvl, ok := ParseLevel(level); ok {
		opts.Level = lvl
	}
	applyEnvOverrides(&opts)

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    opts.NoColor,
	}
	ctx := zerolog.New(output).Level(opts.Level).With().Str("app", app)
	if opts.Timestamp {
		ctx = ctx.Timestamp()
	}
	logger := ctx.Logger()
	log.Logger = logger
	return logger
}

func applyEnvOverrides(opts *Options) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		opts.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		opts.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		opts.NoColor = v
	}
}

// ParseLevel maps a level name to a zerolog level. ok is false for an empty
// or unknown name.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
