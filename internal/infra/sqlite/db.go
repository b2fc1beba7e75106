// Package sqlite provides the SQLite-backed record store for Koru.
// Records are schemaless JSON documents keyed by (collection, id), with
// filtering and ordering done through the JSON1 extension. Uses WAL mode
// for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/koru-wellness/koru/internal/domain"
)

// Store wraps a SQLite connection with WAL mode and migrations.
// It implements domain.RecordStore.
type Store struct {
	db     *sql.DB
	closed bool
}

// Open creates or opens the SQLite database at dir/achievements.db.
// Enables WAL mode, foreign keys, and a 5-second busy timeout.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "achievements.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close cleanly shuts down the database.
func (s *Store) Close() error {
	s.closed = true
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping() error {
	if s.closed {
		return domain.ErrStoreClosed
	}
	return s.db.Ping()
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_user
			ON records(collection, json_extract(body, '$.userId'))`,
		`CREATE INDEX IF NOT EXISTS idx_records_points
			ON records(collection, json_extract(body, '$.totalPoints'))`,
		`CREATE INDEX IF NOT EXISTS idx_records_timestamp
			ON records(collection, json_extract(body, '$.timestamp'))`,
	}

	for i, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
