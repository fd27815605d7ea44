package integra

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger returns the logger used by the client. Nothing is written
// unless enabled is set; debug also logs every frame sent and received.
func NewLogger(w io.Writer, enabled, debug bool) *log.Logger {
	if !enabled {
		w = io.Discard
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "integra",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
