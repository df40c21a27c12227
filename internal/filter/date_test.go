package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		raw      string
		expected time.Time
	}{
		{"3 hours ago", now.Add(-3 * time.Hour)},
		{"Posted 1 hr ago", now.Add(-time.Hour)},
		{"an hour ago", now.Add(-time.Hour)},
		{"45 mins ago", now.Add(-45 * time.Minute)},
		{"2 days ago", now.Add(-48 * time.Hour)},
		{"5d ago", now.Add(-5 * 24 * time.Hour)},
		{"1 week ago", now.Add(-7 * 24 * time.Hour)},
		{"2 months ago", now.Add(-60 * 24 * time.Hour)},
		{"Today", now},
		{"just now", now},
		{"Yesterday", now.Add(-24 * time.Hour)},
		{"2026-10-14", time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)},
		{"Oct 14, 2026", time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)},
		{"Posted on October 3, 2026", time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)},
		{"14/10/2026", time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)},
		{"", now},
		{"sometime recently", now},
		{"3650 days ago", now.Add(-3650 * 24 * time.Hour)},
		{"200000 days ago", now},
		{"99999999999 hours ago", now},
		{"9999999999999999999 weeks ago", now},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDate(tt.raw, now))
		})
	}
}

func TestNormalizeDate_ZoneAwareReducedToWallClock(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, manila)

	got := NormalizeDate("2026-10-15T09:30:00Z", now)

	assert.Equal(t, time.Date(2026, 10, 15, 9, 30, 0, 0, manila), got)
}

func TestNormalizeDate_HugeCountNeverInFuture(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	for _, raw := range []string{"200000 days ago", "99999999999 hours ago", "500000000 months ago"} {
		got := NormalizeDate(raw, now)
		assert.False(t, got.After(now), raw)
	}
}

func TestWithinDays(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	assert.True(t, WithinDays(now, 5, now))
	assert.True(t, WithinDays(now.Add(-5*24*time.Hour), 5, now))
	assert.False(t, WithinDays(now.Add(-5*24*time.Hour-time.Minute), 5, now))
	assert.False(t, WithinDays(NormalizeDate("2 weeks ago", now), 5, now))
}
