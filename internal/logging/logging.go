// Package logging builds the zerolog loggers used by the CLI and servers.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Level maps a -v count to a log level: 0 warn, 1 info, 2 debug, 3+ trace.
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// New returns a human-readable console logger writing to w. Trace output
// also needs zerolog's global level lowered, which is left to the caller.
func New(w io.Writer, verbosity int) zerolog.Logger {
	level := Level(verbosity)
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewJSON returns a structured JSON logger writing to w, for server modes.
func NewJSON(w io.Writer, verbosity int) zerolog.Logger {
	level := Level(verbosity)
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
