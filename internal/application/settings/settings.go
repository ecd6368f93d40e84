// Package settings defines application-level configuration data.
package settings

import (
	"time"

	"github.com/tesso57/feedlist/internal/domain/subscription"
)

// ImportConfig defines how feed lists are fetched and imported.
type ImportConfig struct {
	TimeoutSeconds   int     `yaml:"timeout_seconds" kong:"help='Timeout in seconds for fetching a feed list',default='15'"`
	Probe            bool    `yaml:"probe" kong:"help='Check every imported feed before adding it',default='false'"`
	ProbeConcurrency int     `yaml:"probe_concurrency" kong:"help='Concurrent feed probes',default='4'"`
	ProbeRate        float64 `yaml:"probe_rate" kong:"help='Feed probes per second (0 for unlimited)',default='5'"`
	GroupByTitle     bool    `yaml:"group_by_title" kong:"help='Group imported feeds under the document title',default='false'"`
	UserAgent        string  `yaml:"user_agent" kong:"help='HTTP User-Agent',default='Feedlist/1.0'"`
	MaxDocumentBytes int64   `yaml:"max_document_bytes" kong:"help='Maximum feed list size in bytes',default='4194304'"`
}

// Timeout returns the configured fetch timeout.
func (c ImportConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ThemeConfig defines the color theme configuration.
type ThemeConfig struct {
	FeedName string `yaml:"feed_name" kong:"help='Feed name color',default='244'"`
	Title    string `yaml:"title" kong:"help='Title color',default='205'"`
}

// Settings represents the application configuration.
type Settings struct {
	Feeds         []string                 `yaml:"feeds" kong:"help='RSS/Atom Feed URLs'"`
	FeedGroups    []subscription.FeedGroup `yaml:"feed_groups" kong:"-"`
	Import        ImportConfig             `yaml:"import" kong:"embed,prefix='import.'"`
	Theme         ThemeConfig              `yaml:"theme" kong:"embed,prefix='theme.'"`
	LogLevel      string                   `yaml:"log_level" kong:"help='Log level (debug/info/warn/error)',default='info'"`
	ImportLogFile string                   `yaml:"import_log_file" kong:"help='Import history database path'"`
}
