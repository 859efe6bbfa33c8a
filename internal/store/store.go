package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS runs (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		run_key      TEXT NOT NULL UNIQUE,
		image_path   TEXT NOT NULL,
		repo_dir     TEXT NOT NULL,
		remote_url   TEXT NOT NULL DEFAULT '',
		year         INTEGER NOT NULL,
		offset_weeks INTEGER NOT NULL DEFAULT 0,
		max_daily    INTEGER NOT NULL DEFAULT 0,
		multiplier   INTEGER NOT NULL DEFAULT 1,
		invert       INTEGER NOT NULL DEFAULT 0,
		total_events INTEGER NOT NULL DEFAULT 0,
		status       TEXT NOT NULL DEFAULT 'planned',
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);

	CREATE TABLE IF NOT EXISTS run_progress (
		run_id     INTEGER PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
		cell       INTEGER NOT NULL DEFAULT 0,
		emitted    INTEGER NOT NULL DEFAULT 0,
		done       INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS contribution_cache (
		year       INTEGER PRIMARY KEY,
		max_daily  INTEGER NOT NULL,
		fetched_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('default_offset',        '0'),
		('local_path',            '.'),
		('invert',                'false'),
		('default_max_daily',     '0'),
		('cleanup_after_publish', 'false'),
		('cache_hours',           '24');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/commitpaint/commitpaint.db, or the value of
// COMMITPAINT_DB when set.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("COMMITPAINT_DB"); p != "" {
		return p, nil
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "commitpaint", "commitpaint.db"), nil
}
