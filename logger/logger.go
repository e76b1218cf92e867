package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Options selects where and how the companion logs.
type Options struct {
	// LogFile receives JSON logs when set.
	LogFile string
	// Pretty writes human-readable logs to stderr. Ignored when LogFile is set.
	Pretty bool
	// Level overrides LOG_LEVEL when set.
	Level string
}

// New creates a logger writing JSON to w at the given level name
// (trace, debug, info, warn, error). Unknown names mean info.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// InitWithOptions initializes the logger with the specified options.
// Logs go to stderr unless a log file is given, so stdout stays free for
// replies. The returned close function releases the log file, if any.
// Log level can be configured via LOG_LEVEL environment variable.
func InitWithOptions(opts Options) (zerolog.Logger, func() error, error) {
	levelName := opts.Level
	if levelName == "" {
		levelName = os.Getenv("LOG_LEVEL")
	}
	noop := func() error { return nil }

	var log zerolog.Logger
	switch {
	case opts.LogFile != "":
		//nolint:gosec // G304: User-specified log file path is intentional
		file, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Logger{}, noop, fmt.Errorf("failed to open log file %s: %w", opts.LogFile, err)
		}
		log = New(file, levelName)
		log.Debug().Str("path", opts.LogFile).Str("level", log.GetLevel().String()).Msg("Logger initialized")
		return log, file.Close, nil
	case opts.Pretty:
		log = New(zerolog.ConsoleWriter{Out: os.Stderr}, levelName)
		log.Debug().Str("output", "stderr").Str("format", "pretty").Str("level", log.GetLevel().String()).Msg("Logger initialized")
	default:
		log = New(os.Stderr, levelName)
		log.Debug().Str("output", "stderr").Str("level", log.GetLevel().String()).Msg("Logger initialized")
	}
	return log, noop, nil
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
