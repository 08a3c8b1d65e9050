package models

import (
	"math/rand"
	"testing"
	"time"
)

func TestNextStreakDay(t *testing.T) {
	today := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		last *CheckIn
		want int
	}{
		{"first ever", nil, 1},
		{"continues", &CheckIn{Date: "2026-03-09", Day: 3}, 4},
		{"missed a day", &CheckIn{Date: "2026-03-08", Day: 3}, 1},
		{"week complete", &CheckIn{Date: "2026-03-09", Day: 7}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStreakDay(tt.last, today); got != tt.want {
				t.Errorf("Expected day %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDrawReward_WithinTier(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, tier := range CheckInSchedule {
		for i := 0; i < 50; i++ {
			r := DrawReward(rng, tier.Day)
			if r < tier.Min || r > tier.Max {
				t.Fatalf("Day %d: reward %d outside %s", tier.Day, r, tier.Label())
			}
		}
	}
	if r := DrawReward(rng, 99); r < CheckInSchedule[0].Min || r > CheckInSchedule[0].Max {
		t.Errorf("Expected out-of-range day to use the first tier, got %d", r)
	}
}

func TestCheckInTier_Label(t *testing.T) {
	if got := CheckInSchedule[0].Label(); got != "₹8-50" {
		t.Errorf("Expected ₹8-50, got %s", got)
	}
}
