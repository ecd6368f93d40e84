// Package importlog persists a ledger of feed list imports in SQLite.
package importlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tesso57/feedlist/internal/domain/subscription"
	_ "modernc.org/sqlite" // registers the sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS import_runs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	entries     INTEGER NOT NULL DEFAULT 0,
	added       INTEGER NOT NULL DEFAULT 0,
	duplicates  INTEGER NOT NULL DEFAULT 0,
	invalid     INTEGER NOT NULL DEFAULT 0,
	unreachable INTEGER NOT NULL DEFAULT 0,
	dry_run     INTEGER NOT NULL DEFAULT 0,
	imported_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_import_runs_imported_at ON import_runs(imported_at);
`

// Manager records and lists import runs.
type Manager struct {
	mu   sync.Mutex
	path string
	db   *sql.DB
}

// NewManager creates a manager for the database at path. The database is opened on first use.
func NewManager(path string) *Manager {
	return new(Manager{
		path: strings.TrimSpace(path),
	})
}

// Path returns the database file location.
func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) open(ctx context.Context) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return m.db, nil
	}
	if m.path == "" {
		return nil, fmt.Errorf("import log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0750); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import log: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize import log schema: %w", err)
	}
	m.db = db
	return db, nil
}

// Record stores run, assigning an ID and timestamp when missing.
func (m *Manager) Record(ctx context.Context, run subscription.ImportRun) (subscription.ImportRun, error) {
	db, err := m.open(ctx)
	if err != nil {
		return run, err
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.ImportedAt.IsZero() {
		run.ImportedAt = time.Now()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO import_runs (id, source, title, entries, added, duplicates, invalid, unreachable, dry_run, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Title, run.Entries, run.Added, run.Duplicates,
		run.Invalid, run.Unreachable, run.DryRun, run.ImportedAt.UnixNano(),
	)
	if err != nil {
		return run, fmt.Errorf("failed to record import run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first. A non-positive limit returns all runs.
func (m *Manager) Recent(ctx context.Context, limit int) ([]subscription.ImportRun, error) {
	db, err := m.open(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, source, title, entries, added, duplicates, invalid, unreachable, dry_run, imported_at
		FROM import_runs
		ORDER BY imported_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []subscription.ImportRun
	for rows.Next() {
		var run subscription.ImportRun
		var importedAt int64
		if err := rows.Scan(
			&run.ID, &run.Source, &run.Title, &run.Entries, &run.Added, &run.Duplicates,
			&run.Invalid, &run.Unreachable, &run.DryRun, &importedAt,
		); err != nil {
			return nil, err
		}
		run.ImportedAt = time.Unix(0, importedAt).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the database handle.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}
