package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		verbose bool
		want    logrus.Level
	}{
		{name: "default", level: "", want: logrus.InfoLevel},
		{name: "warn", level: "warn", want: logrus.WarnLevel},
		{name: "padded", level: " error ", want: logrus.ErrorLevel},
		{name: "unknown", level: "loud", want: logrus.InfoLevel},
		{name: "verbose wins", level: "error", verbose: true, want: logrus.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(&bytes.Buffer{}, tt.level, tt.verbose)
			if logger.GetLevel() != tt.want {
				t.Fatalf("level = %v, want %v", logger.GetLevel(), tt.want)
			}
		})
	}
}

func TestNewWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", false)
	logger.WithField("source", "subs.opml").Info("imported feed list")

	out := buf.String()
	if !strings.Contains(out, "imported feed list") || !strings.Contains(out, "source=subs.opml") {
		t.Fatalf("unexpected log output: %q", out)
	}
}
