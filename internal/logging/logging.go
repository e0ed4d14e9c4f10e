// Package logging constructs the process logger from configuration.
package logging

import (
	"io"
	"strings"

	"github.com/phuslu/log"
)

// New returns a console logger at the given level. Unknown levels fall
// back to info.
func New(level, timeFormat string) log.Logger {
	if timeFormat == "" {
		timeFormat = "15:04:05"
	}
	return log.Logger{
		Level:      parseLevel(level),
		TimeFormat: timeFormat,
		Writer: &log.ConsoleWriter{
			ColorOutput:    log.IsTerminal(2),
			EndWithMessage: true,
		},
	}
}

// Discard returns a logger that drops everything; used by tests.
func Discard() log.Logger {
	return log.Logger{
		Level:  log.PanicLevel,
		Writer: log.IOWriter{Writer: io.Discard},
	}
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
