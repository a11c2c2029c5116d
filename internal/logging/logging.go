// Package logging builds the diagnostic logger. User-facing output does not
// go through it.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at Debug level when debug is set and
// Warn level otherwise.
func New(w io.Writer, debug bool) *log.Logger {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "rbuild",
		ReportTimestamp: debug,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
