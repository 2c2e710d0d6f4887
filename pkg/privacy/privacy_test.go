package privacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("203.0.113.7", "2024-01-03")

	assert.Len(t, fp, FingerprintLen)
	assert.Regexp(t, "^[0-9a-f]+$", fp)

	// Deterministic within a bucket.
	assert.Equal(t, fp, Fingerprint("203.0.113.7", "2024-01-03"))

	// Different address or different bucket yields a different token.
	assert.NotEqual(t, fp, Fingerprint("203.0.113.8", "2024-01-03"))
	assert.NotEqual(t, fp, Fingerprint("203.0.113.7", "2024-01-04"))
}

func TestDay(t *testing.T) {
	// Local zones never leak into bucket names.
	loc := time.FixedZone("UTC+13", 13*3600)
	assert.Equal(t, "2024-01-04", Day(time.Date(2024, 1, 4, 12, 30, 0, 0, loc)))
	assert.Equal(t, "2024-01-03", Day(time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC)))
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "monday is its own week start", t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), want: "2024-01-01"},
		{name: "midweek", t: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), want: "2024-01-01"},
		{name: "saturday", t: time.Date(2024, 1, 6, 23, 0, 0, 0, time.UTC), want: "2024-01-01"},
		{name: "sunday folds to prior monday", t: time.Date(2024, 1, 7, 5, 0, 0, 0, time.UTC), want: "2024-01-01"},
		{name: "next monday starts a new week", t: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), want: "2024-01-08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.t))
		})
	}
}
