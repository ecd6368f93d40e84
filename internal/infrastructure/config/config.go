// Package config handles configuration loading and saving.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/tesso57/feedlist/internal/application/settings"
	"github.com/tesso57/feedlist/internal/domain/subscription"
	"gopkg.in/yaml.v3"
)

// Store manages persisted application settings.
type Store struct {
	Settings   settings.Settings
	configPath string
}

// DefaultPath returns the default configuration file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "feedlist", "config.yaml"), nil
}

// Load loads the configuration from the specified path or default location.
func Load(customPath ...string) (*Store, error) {
	var configPath string
	if len(customPath) > 0 && customPath[0] != "" {
		configPath = customPath[0]
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = path
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := settings.Settings{}
	store := &Store{Settings: cfg, configPath: configPath}

	var options []kong.Option

	// Only add configuration loader if file exists
	_, statErr := os.Stat(configPath)
	exists := statErr == nil
	if exists {
		options = append(options, kong.Configuration(yamlKongLoader, configPath))
	}

	parser, err := kong.New(&cfg, options...)
	if err != nil {
		return nil, err
	}

	_, err = parser.Parse([]string{})
	if err != nil {
		return nil, err
	}

	// Feed groups are structured and bypass kong.
	if exists {
		groups, err := loadFeedGroups(configPath)
		if err != nil {
			return nil, err
		}
		cfg.FeedGroups = groups
	}

	store.Settings = cfg
	store.Settings.Feeds = normalizeFeeds(store.Settings.Feeds)
	store.Settings.FeedGroups = normalizeGroups(store.Settings.FeedGroups)
	store.Settings.ImportLogFile = normalizeImportLogPath(store.Settings.ImportLogFile)

	if store.Settings.ImportLogFile == "" {
		store.Settings.ImportLogFile = filepath.Join(defaultDataHome(), "feedlist", "imports.db")
	}

	// Save defaults if new file
	if !exists {
		if err := store.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return store, nil
}

// Path returns the file the store saves to.
func (s *Store) Path() string {
	return s.configPath
}

func loadFeedGroups(path string) ([]subscription.FeedGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		FeedGroups []subscription.FeedGroup `yaml:"feed_groups"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to read feed groups: %w", err)
	}
	return file.FeedGroups, nil
}

func normalizeFeeds(feeds []string) []string {
	if len(feeds) == 0 {
		return feeds
	}
	normalized := make([]string, 0, len(feeds))
	for _, feed := range feeds {
		for item := range strings.FieldsSeq(feed) {
			if item != "" {
				normalized = append(normalized, item)
			}
		}
	}
	return normalized
}

func normalizeGroups(groups []subscription.FeedGroup) []subscription.FeedGroup {
	if len(groups) == 0 {
		return groups
	}
	normalized := make([]subscription.FeedGroup, 0, len(groups))
	for _, group := range groups {
		name := strings.TrimSpace(group.Name)
		if name == "" {
			continue
		}
		normalized = append(normalized, subscription.FeedGroup{
			Name:  name,
			Feeds: normalizeFeeds(group.Feeds),
		})
	}
	return normalized
}

func defaultDataHome() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome != "" {
		return dataHome
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

func normalizeImportLogPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return filepath.Join(filepath.Dir(path), "imports.db")
	}
	return path
}

func yamlKongLoader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil {
		if err == io.EOF {
			return nil, nil // Return nil resolver (no op)
		}
		return nil, err
	}

	var f kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		names := []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")}
		for _, name := range names {
			if v, ok := values[name]; ok {
				return scalar(v), nil
			}
			if v, ok := lookupNested(values, strings.Split(name, ".")); ok {
				return scalar(v), nil
			}
		}
		return nil, nil
	}
	return f, nil
}

// scalar hands numbers to kong as text. yaml reads `probe_rate: 5` as an int,
// which kong cannot assign to a float64 field.
func scalar(v any) any {
	switch v.(type) {
	case int, int64, uint64, float64:
		return fmt.Sprint(v)
	}
	return v
}

func lookupNested(values map[string]any, parts []string) (any, bool) {
	if len(parts) < 2 {
		return nil, false
	}
	curr := values
	for _, part := range parts[:len(parts)-1] {
		next, ok := curr[part].(map[string]any)
		if !ok {
			return nil, false
		}
		curr = next
	}
	v, ok := curr[parts[len(parts)-1]]
	return v, ok
}

// List returns the currently configured ungrouped feed URLs.
func (s *Store) List() ([]string, error) {
	feeds := make([]string, len(s.Settings.Feeds))
	copy(feeds, s.Settings.Feeds)
	return feeds, nil
}

// Add appends a new feed URL and saves the configuration.
func (s *Store) Add(url string) error {
	s.Settings.Feeds = append(s.Settings.Feeds, url)
	return s.Save()
}

// Remove deletes a feed by index and saves the configuration.
func (s *Store) Remove(index int) error {
	if index < 0 || index >= len(s.Settings.Feeds) {
		return fmt.Errorf("invalid feed index: %d", index)
	}
	s.Settings.Feeds = append(s.Settings.Feeds[:index], s.Settings.Feeds[index+1:]...)
	return s.Save()
}

// ListGroups returns a copy of the configured feed groups.
func (s *Store) ListGroups() ([]subscription.FeedGroup, error) {
	if len(s.Settings.FeedGroups) == 0 {
		return nil, nil
	}
	groups := make([]subscription.FeedGroup, 0, len(s.Settings.FeedGroups))
	for _, group := range s.Settings.FeedGroups {
		groups = append(groups, subscription.FeedGroup{
			Name:  group.Name,
			Feeds: append([]string(nil), group.Feeds...),
		})
	}
	return groups, nil
}

// ReplaceFeedGroups overwrites groups and ungrouped feeds and saves the configuration.
func (s *Store) ReplaceFeedGroups(groups []subscription.FeedGroup, ungrouped []string) error {
	s.Settings.FeedGroups = normalizeGroups(groups)
	s.Settings.Feeds = append([]string(nil), ungrouped...)
	return s.Save()
}

// Save writes the current settings to the config file.
func (s *Store) Save() error {
	f, err := os.Create(s.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	if err := enc.Encode(s.Settings); err != nil {
		return err
	}
	return enc.Close()
}
