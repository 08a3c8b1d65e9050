package wallet

import (
	"errors"
	"fmt"

	"github.com/findosh/wiprox/internal/models"
	"github.com/findosh/wiprox/internal/storage"
)

// ErrAlreadyCheckedIn is returned for a second check-in on the same day
var ErrAlreadyCheckedIn = storage.ErrAlreadyCheckedIn

// CheckInStatus is what the check-in screen shows
type CheckInStatus struct {
	Today   *models.CheckIn // nil until the user checks in today
	NextDay int             // streak position today's check-in gets or got
	Recent  []models.CheckIn
}

// CheckInStatus reports today's check-in state
func (s *Service) CheckInStatus() (*CheckInStatus, error) {
	now := s.now()
	date := models.CheckInDate(now)

	today, err := s.checkins.GetByDate(date)
	if err != nil {
		return nil, err
	}
	recent, err := s.checkins.Recent(len(models.CheckInSchedule))
	if err != nil {
		return nil, err
	}

	status := &CheckInStatus{Today: today, Recent: recent}
	if today != nil {
		status.NextDay = today.Day
		return status, nil
	}
	last, err := s.checkins.LatestBefore(date)
	if err != nil {
		return nil, err
	}
	status.NextDay = models.NextStreakDay(last, now)
	return status, nil
}

// CheckIn records today's check-in and draws its reward. The reward is only
// shown as pending; no balance changes.
func (s *Service) CheckIn() (*models.CheckIn, error) {
	now := s.now()
	date := models.CheckInDate(now)

	last, err := s.checkins.LatestBefore(date)
	if err != nil {
		return nil, err
	}
	day := models.NextStreakDay(last, now)

	s.rngMu.Lock()
	reward := models.DrawReward(s.rng, day)
	s.rngMu.Unlock()

	c := &models.CheckIn{Date: date, Day: day, Reward: reward, CheckedAt: now.UTC()}
	if err := s.checkins.Create(c); err != nil {
		if errors.Is(err, storage.ErrAlreadyCheckedIn) {
			return nil, models.Invalid(err)
		}
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}
	s.log.Infow("checked in", "day", day, "reward", reward)
	return c, nil
}
