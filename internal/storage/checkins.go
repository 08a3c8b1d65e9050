package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/findosh/wiprox/internal/models"
)

// ErrAlreadyCheckedIn is returned when a check-in for the day already exists
var ErrAlreadyCheckedIn = errors.New("already checked in today")

// CheckInRepository provides access to the local check-in log
type CheckInRepository struct {
	db *DB
}

// NewCheckInRepository creates a new check-in repository
func NewCheckInRepository(db *DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// Create inserts a check-in; the date is unique
func (r *CheckInRepository) Create(c *models.CheckIn) error {
	res, err := r.db.NamedExec(`
		INSERT OR IGNORE INTO checkins (date, day, reward, checked_at)
		VALUES (:date, :day, :reward, :checked_at)
	`, c)
	if err != nil {
		return fmt.Errorf("failed to create check-in: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlreadyCheckedIn
	}
	return nil
}

// GetByDate returns the check-in for a date, or nil
func (r *CheckInRepository) GetByDate(date string) (*models.CheckIn, error) {
	var c models.CheckIn
	err := r.db.Get(&c, `SELECT date, day, reward, checked_at FROM checkins WHERE date = ?`, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read check-in: %w", err)
	}
	return &c, nil
}

// LatestBefore returns the most recent check-in before the given date, or nil
func (r *CheckInRepository) LatestBefore(date string) (*models.CheckIn, error) {
	var c models.CheckIn
	err := r.db.Get(&c, `
		SELECT date, day, reward, checked_at FROM checkins
		WHERE date < ? ORDER BY date DESC LIMIT 1
	`, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read check-in: %w", err)
	}
	return &c, nil
}

// Recent lists the latest check-ins, newest first
func (r *CheckInRepository) Recent(limit int) ([]models.CheckIn, error) {
	var out []models.CheckIn
	err := r.db.Select(&out, `
		SELECT date, day, reward, checked_at FROM checkins
		ORDER BY date DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return out, nil
}
