package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel accepts zerolog level names and the SEVERE, WARNING, FINE, FINER
// and FINEST names of the --logging flag. Unknown names fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "FINE", "FINER":
		return zerolog.DebugLevel
	case "FINEST":
		return zerolog.TraceLevel
	case "WARNING":
		return zerolog.WarnLevel
	case "SEVERE":
		return zerolog.ErrorLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Init configures the global logger with a console writer on stderr.
func Init(level string) {
	InitWriter(os.Stderr, level)
}

// InitWriter configures the global logger to write to w.
func InitWriter(w io.Writer, level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().
		Timestamp().
		Logger()
}
