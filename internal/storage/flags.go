package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session flag names
const (
	FlagWelcomeShown = "welcomeShown"
)

// SessionFlags stores flags that live only as long as one client session.
// Each process run gets a fresh session ID, so flags from earlier runs never
// match.
type SessionFlags struct {
	db        *DB
	sessionID string
}

// NewSessionFlags creates flags scoped to a newly generated session ID
func NewSessionFlags(db *DB) *SessionFlags {
	return &SessionFlags{db: db, sessionID: uuid.NewString()}
}

// SessionID returns the client session the flags belong to
func (f *SessionFlags) SessionID() string {
	return f.sessionID
}

// Has reports whether the flag is set in the current session
func (f *SessionFlags) Has(name string) (bool, error) {
	var count int
	err := f.db.Get(&count, `SELECT COUNT(*) FROM session_flags WHERE session_id = ? AND name = ?`, f.sessionID, name)
	if err != nil {
		return false, fmt.Errorf("failed to read flag %s: %w", name, err)
	}
	return count > 0, nil
}

// Set marks the flag; setting it twice is a no-op
func (f *SessionFlags) Set(name string) error {
	_, err := f.db.Exec(`INSERT OR IGNORE INTO session_flags (session_id, name, created_at) VALUES (?, ?, ?)`,
		f.sessionID, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set flag %s: %w", name, err)
	}
	return nil
}

// SetOnce sets the flag and reports whether this call was the one that set it
func (f *SessionFlags) SetOnce(name string) (bool, error) {
	res, err := f.db.Exec(`INSERT OR IGNORE INTO session_flags (session_id, name, created_at) VALUES (?, ?, ?)`,
		f.sessionID, name, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to set flag %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PurgeOtherSessions deletes flags left behind by previous runs
func (f *SessionFlags) PurgeOtherSessions() error {
	_, err := f.db.Exec(`DELETE FROM session_flags WHERE session_id <> ?`, f.sessionID)
	return err
}
