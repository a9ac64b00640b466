// Package logging configures the zerolog logger used across the daemon.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a level name to a zerolog level. Unknown names map to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a console logger writing to w and applies level globally.
func New(level string, w io.Writer) zerolog.Logger {
	SetLevel(level)
	return zerolog.New(
		zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true},
	).With().Timestamp().Logger()
}

// SetLevel changes the global level; used when the config file is reloaded.
func SetLevel(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
}
