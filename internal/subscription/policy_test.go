package subscription

import (
	"testing"
	"time"
)

func TestExtendExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(10 * 24 * time.Hour)
	past := now.Add(-5 * 24 * time.Hour)

	tests := []struct {
		name    string
		current *time.Time
		want    time.Time
	}{
		{name: "stacks onto unexpired", current: &future, want: future.Add(RenewalPeriod)},
		{name: "restarts from now when expired", current: &past, want: now.Add(RenewalPeriod)},
		{name: "restarts from now when null", current: nil, want: now.Add(RenewalPeriod)},
		{name: "expiry equal to now restarts from now", current: &now, want: now.Add(RenewalPeriod)},
	}
	for _, tt := range tests {
		if got := ExtendExpiry(tt.current, now); !got.Equal(tt.want) {
			t.Fatalf("%s: ExtendExpiry = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{name: "exact thirty days", expiry: now.Add(30 * 24 * time.Hour), want: 30},
		{name: "partial day rounds up", expiry: now.Add(29*24*time.Hour + 12*time.Hour), want: 30},
		{name: "under a day rounds up to one", expiry: now.Add(time.Hour), want: 1},
		{name: "past expiry is zero", expiry: now.Add(-time.Second), want: 0},
	}
	for _, tt := range tests {
		if got := DaysRemaining(tt.expiry, now); got != tt.want {
			t.Fatalf("%s: DaysRemaining = %d, want %d", tt.name, got, tt.want)
		}
	}
}
