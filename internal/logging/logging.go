// Package logging builds the process-wide structured logger.
package logging

import (
	"os"
	"strings"

	"github.com/phuslu/log"
)

// New returns a leveled logger writing to stderr. Console formatting
// is used only when stderr is a terminal.
func New(level string) *log.Logger {
	logger := &log.Logger{
		Level:      parseLevel(level),
		TimeFormat: "15:04:05",
	}
	if log.IsTerminal(os.Stderr.Fd()) {
		logger.Writer = &log.ConsoleWriter{
			ColorOutput:    true,
			EndWithMessage: true,
		}
	} else {
		logger.Writer = &log.IOWriter{Writer: os.Stderr}
	}
	return logger
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
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
