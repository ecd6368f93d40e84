// Package logging builds the application logger.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to w at the named level.
// Unknown level names fall back to info.
func New(w io.Writer, level string, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)
	return logger
}
