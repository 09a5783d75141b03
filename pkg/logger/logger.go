package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the root logger. level is one of debug, info, warn, error;
// unknown values fall back to info. pretty switches to human-readable
// console output for local development.
func New(level string, pretty bool) zerolog.Logger {
	lvl := parseLevel(level)

	var logger zerolog.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(lvl).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
