package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Fixed keys of the persisted client state
const (
	TokenKey           = "token"
	ProfileSnapshotKey = "userData"
)

// Entry is one persisted key/value pair
type Entry struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// StateRepository provides access to the persisted key/value state
type StateRepository struct {
	db *DB
}

// NewStateRepository creates a new state repository
func NewStateRepository(db *DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get returns the entry for key, or nil when absent
func (r *StateRepository) Get(key string) (*Entry, error) {
	var e Entry
	err := r.db.Get(&e, `SELECT key, value, updated_at FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return &e, nil
}

// Set writes value under key, replacing any previous value
func (r *StateRepository) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (r *StateRepository) Delete(key string) error {
	if _, err := r.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Token returns the persisted session token, or "" when none is stored
func (r *StateRepository) Token() (string, error) {
	e, err := r.Get(TokenKey)
	if err != nil || e == nil {
		return "", err
	}
	return e.Value, nil
}

// SaveToken persists the session token
func (r *StateRepository) SaveToken(token string) error {
	return r.Set(TokenKey, token)
}

// ClearToken removes the persisted session token
func (r *StateRepository) ClearToken() error {
	return r.Delete(TokenKey)
}
