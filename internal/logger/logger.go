package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Service is attached to every log line.
const Service = "gscribe"

// Setup configures the global level and returns a logger writing to stdout.
// format is "pretty" for console output; anything else emits JSON lines.
// Unknown levels fall back to info.
func Setup(level, format string) zerolog.Logger {
	return New(os.Stdout, level, format)
}

// New builds the same logger as Setup on top of an arbitrary writer.
func New(out io.Writer, level, format string) zerolog.Logger {
	if format == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.DurationFieldUnit = time.Millisecond

	return zerolog.New(out).
		With().
		Timestamp().
		Str("service", Service).
		Caller().
		Logger()
}
