package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tesso57/feedlist/internal/domain/subscription"
)

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))

	configPath := filepath.Join(tmpDir, "config.yaml")
	store, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(store.Settings.Feeds) != 0 {
		t.Errorf("Expected no default feeds, got %#v", store.Settings.Feeds)
	}
	if store.Settings.Theme.FeedName != "244" {
		t.Errorf("Expected default Theme.FeedName '244', got '%s'", store.Settings.Theme.FeedName)
	}
	if store.Settings.Import.TimeoutSeconds != 15 {
		t.Errorf("Expected default Import.TimeoutSeconds 15, got %d", store.Settings.Import.TimeoutSeconds)
	}
	if store.Settings.Import.ProbeConcurrency != 4 {
		t.Errorf("Expected default Import.ProbeConcurrency 4, got %d", store.Settings.Import.ProbeConcurrency)
	}
	if store.Settings.Import.ProbeRate != 5 {
		t.Errorf("Expected default Import.ProbeRate 5, got %v", store.Settings.Import.ProbeRate)
	}
	if store.Settings.Import.UserAgent != "Feedlist/1.0" {
		t.Errorf("Expected default Import.UserAgent, got %q", store.Settings.Import.UserAgent)
	}
	if store.Settings.Import.MaxDocumentBytes != 4194304 {
		t.Errorf("Expected default Import.MaxDocumentBytes, got %d", store.Settings.Import.MaxDocumentBytes)
	}
	if store.Settings.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got %q", store.Settings.LogLevel)
	}
	want := filepath.Join(tmpDir, "data", "feedlist", "imports.db")
	if store.Settings.ImportLogFile != want {
		t.Errorf("ImportLogFile = %q, want %q", store.Settings.ImportLogFile, want)
	}
	if store.Path() != configPath {
		t.Errorf("Path() = %q, want %q", store.Path(), configPath)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file not created")
	}
}

func TestLoad_NestedImportSettings(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `import:
  timeout_seconds: 3
  probe: true
  user_agent: Custom/2.0
log_level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	store, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if store.Settings.Import.TimeoutSeconds != 3 {
		t.Errorf("TimeoutSeconds = %d, want 3", store.Settings.Import.TimeoutSeconds)
	}
	if !store.Settings.Import.Probe {
		t.Error("Probe should be enabled")
	}
	if store.Settings.Import.UserAgent != "Custom/2.0" {
		t.Errorf("UserAgent = %q", store.Settings.Import.UserAgent)
	}
	if store.Settings.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", store.Settings.LogLevel)
	}
}

func TestLoad_NormalizesLegacyJSONLImportLogPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := "import_log_file: " + filepath.Join(tmpDir, "imports.jsonl") + "\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	store, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := filepath.Join(tmpDir, "imports.db")
	if store.Settings.ImportLogFile != want {
		t.Fatalf("ImportLogFile = %q, want %q", store.Settings.ImportLogFile, want)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	_ = os.WriteFile(configPath, []byte("invalid_yaml: ["), 0600)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Expected error for corrupt config read, got nil")
	}
}

func TestStore_AddRemoveFeed(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	store, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}

	first := "https://example.com/first.xml"
	newFeed := "https://example.com/rss"
	if err := store.Add(first); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add(newFeed); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if len(store.Settings.Feeds) != 2 {
		t.Errorf("Expected 2 feeds, got %d", len(store.Settings.Feeds))
	}

	// Verify persistence by reloading
	store2, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(store2.Settings.Feeds) != 2 {
		t.Errorf("Persistence failed, expected 2 feeds, got %d", len(store2.Settings.Feeds))
	}

	if err := store.Remove(0); err != nil {
		t.Errorf("Remove failed: %v", err)
	}
	if len(store.Settings.Feeds) != 1 || store.Settings.Feeds[0] != newFeed {
		t.Errorf("Expected %s remaining, got %#v", newFeed, store.Settings.Feeds)
	}

	if err := store.Remove(99); err == nil {
		t.Error("Expected error for invalid index")
	}
}

func TestStore_FeedGroupsRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	store, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}

	err = store.ReplaceFeedGroups([]subscription.FeedGroup{
		{Name: " Tech ", Feeds: []string{"https://example.com/tech.xml"}},
		{Name: "", Feeds: []string{"https://example.com/dropped.xml"}},
	}, []string{"https://example.com/loose.xml"})
	if err != nil {
		t.Fatalf("ReplaceFeedGroups failed: %v", err)
	}

	reloaded, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	groups, err := reloaded.ListGroups()
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "Tech" || len(groups[0].Feeds) != 1 {
		t.Fatalf("unexpected groups: %#v", groups)
	}
	feeds, _ := reloaded.List()
	if len(feeds) != 1 || feeds[0] != "https://example.com/loose.xml" {
		t.Fatalf("unexpected feeds: %#v", feeds)
	}

	// Mutating the copy must not touch the store.
	groups[0].Feeds[0] = "changed"
	again, _ := reloaded.ListGroups()
	if again[0].Feeds[0] != "https://example.com/tech.xml" {
		t.Fatal("ListGroups should return a copy")
	}
}

func TestLoad_NormalizesFeeds(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `feeds:
  - " https://example.com/rss "
  - |
      https://example.com/one.atom
      https://example.com/two.atom
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	store, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []string{
		"https://example.com/rss",
		"https://example.com/one.atom",
		"https://example.com/two.atom",
	}

	if len(store.Settings.Feeds) != len(want) {
		t.Fatalf("Expected %d feeds, got %d", len(want), len(store.Settings.Feeds))
	}
	for i, got := range store.Settings.Feeds {
		if got != want[i] {
			t.Fatalf("Expected feed %d to be %q, got %q", i, want[i], got)
		}
	}
}

func TestLoad_ReloadsSavedDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	configPath := filepath.Join(tmpDir, "config.yaml")

	first, err := Load(configPath)
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	second, err := Load(configPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if second.Settings.Import != first.Settings.Import {
		t.Fatalf("Import settings changed across reload: %#v vs %#v", second.Settings.Import, first.Settings.Import)
	}
	if second.Settings.Import.ProbeRate != 5 {
		t.Errorf("ProbeRate = %v, want 5", second.Settings.Import.ProbeRate)
	}
}

func TestLoad_NumericImportSettings(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `import:
  probe_rate: 2.5
  probe_concurrency: 8
  max_document_bytes: 1024
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	store, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if store.Settings.Import.ProbeRate != 2.5 {
		t.Errorf("ProbeRate = %v, want 2.5", store.Settings.Import.ProbeRate)
	}
	if store.Settings.Import.ProbeConcurrency != 8 {
		t.Errorf("ProbeConcurrency = %d, want 8", store.Settings.Import.ProbeConcurrency)
	}
	if store.Settings.Import.MaxDocumentBytes != 1024 {
		t.Errorf("MaxDocumentBytes = %d, want 1024", store.Settings.Import.MaxDocumentBytes)
	}
}
