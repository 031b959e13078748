package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/codecoach/client/config"
	"github.com/rs/zerolog"
)

// New builds the process logger. Output goes to stderr so command output on
// stdout stays machine-readable.
func New(cfg config.LoggingConfig) zerolog.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

func NewWithWriter(w io.Writer, cfg config.LoggingConfig) zerolog.Logger {
	var out io.Writer = w
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	log := zerolog.New(out).With().Timestamp().Logger()
	return log.Level(ParseLevel(cfg.Level))
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Nop discards everything. Used by tests and as the zero-config default.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
