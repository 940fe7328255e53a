package services

import (
	"testing"
	"time"

	"github.com/greenstem/plantcare-backend/internal/types"
)

func TestHealthBucket(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{score: 0, want: "Poor"},
		{score: 49, want: "Poor"},
		{score: 50, want: "Fair"},
		{score: 74, want: "Fair"},
		{score: 75, want: "Good"},
		{score: 100, want: "Good"},
	}
	for _, tc := range cases {
		if got := HealthBucket(tc.score); got != tc.want {
			t.Fatalf("HealthBucket(%d)=%q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestNeedsWater(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		watered   *time.Time
		frequency int
		grace     int
		want      bool
	}{
		{name: "never_watered", watered: nil, frequency: 7, want: false},
		{name: "no_schedule", watered: timePtr(now.AddDate(0, 0, -30)), frequency: 0, want: false},
		{name: "within_window", watered: timePtr(now.AddDate(0, 0, -3)), frequency: 7, want: false},
		{name: "exactly_due", watered: timePtr(now.AddDate(0, 0, -7)), frequency: 7, want: false},
		{name: "past_due", watered: timePtr(now.AddDate(0, 0, -8)), frequency: 7, want: true},
		{name: "grace_covers_overdue", watered: timePtr(now.AddDate(0, 0, -8)), frequency: 7, grace: 2, want: false},
		{name: "past_grace", watered: timePtr(now.AddDate(0, 0, -10)), frequency: 7, grace: 2, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plant := &types.Plant{LastWatered: tc.watered, WaterFrequencyDays: tc.frequency}
			if got := NeedsWater(plant, now, tc.grace); got != tc.want {
				t.Fatalf("NeedsWater=%v, want %v", got, tc.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
