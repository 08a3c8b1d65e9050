package models

import (
	"fmt"
	"math/rand"
	"time"
)

// CheckInTier is the reward range for one day of the weekly streak
type CheckInTier struct {
	Day int
	Min int
	Max int
}

// Label renders the range the way the weekly progress strip shows it
func (t CheckInTier) Label() string {
	return fmt.Sprintf("₹%d-%d", t.Min, t.Max)
}

// CheckInSchedule is the 7-day reward ladder
var CheckInSchedule = []CheckInTier{
	{Day: 1, Min: 8, Max: 50},
	{Day: 2, Min: 15, Max: 75},
	{Day: 3, Min: 25, Max: 100},
	{Day: 4, Min: 35, Max: 150},
	{Day: 5, Min: 50, Max: 200},
	{Day: 6, Min: 75, Max: 250},
	{Day: 7, Min: 100, Max: 300},
}

// CheckIn is one local daily check-in
type CheckIn struct {
	Date      string    `db:"date"` // YYYY-MM-DD in local time
	Day       int       `db:"day"`  // position in the weekly streak, 1..7
	Reward    int       `db:"reward"`
	CheckedAt time.Time `db:"checked_at"`
}

// CheckInDate formats the calendar day a check-in belongs to
func CheckInDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// NextStreakDay returns the streak position for a check-in on today given the
// most recent previous check-in (nil when there is none). A missed day or a
// completed week restarts the streak.
func NextStreakDay(last *CheckIn, today time.Time) int {
	if last == nil {
		return 1
	}
	yesterday := CheckInDate(today.AddDate(0, 0, -1))
	if last.Date != yesterday || last.Day >= len(CheckInSchedule) {
		return 1
	}
	return last.Day + 1
}

// DrawReward picks a reward inside the tier for the given streak day
func DrawReward(rng *rand.Rand, day int) int {
	if day < 1 || day > len(CheckInSchedule) {
		day = 1
	}
	tier := CheckInSchedule[day-1]
	return tier.Min + rng.Intn(tier.Max-tier.Min+1)
}
