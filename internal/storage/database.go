// Package storage persists the client's local state: the session token, the
// profile snapshot, per-session flags and the check-in log.
package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the database connection
type DB struct {
	*sqlx.DB
}

// New opens (creating if needed) the sqlite state file
func New(path string) (*DB, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode so page handlers can read while another request writes
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &DB{db}, nil
}

// Migrate runs database migrations
func (db *DB) Migrate() error {
	migrations := []string{
		createKVTable,
		createSessionFlagsTable,
		createCheckinsTable,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

const createKVTable = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const createSessionFlagsTable = `
CREATE TABLE IF NOT EXISTS session_flags (
	session_id TEXT NOT NULL,
	name TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (session_id, name)
);
`

const createCheckinsTable = `
CREATE TABLE IF NOT EXISTS checkins (
	date TEXT PRIMARY KEY,
	day INTEGER NOT NULL,
	reward INTEGER NOT NULL,
	checked_at DATETIME NOT NULL
);
`
