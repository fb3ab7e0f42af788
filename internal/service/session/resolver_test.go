package session

import (
	"testing"
	"time"

	"MCMTracker/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver("America/New_York", 5*time.Minute, time.Hour)
	require.NoError(t, err)
	return r
}

func ny(t *testing.T, r *Resolver, y int, m time.Month, d, hh, mm, ss int) time.Time {
	t.Helper()
	return time.Date(y, m, d, hh, mm, ss, 0, r.Location())
}

func TestResolve_RegularHoursBoundaries(t *testing.T) {
	r := newResolver(t)

	cases := []struct {
		name  string
		at    time.Time
		label models.SessionLabel
	}{
		{"open inclusive", ny(t, r, 2025, 3, 14, 9, 30, 0), models.SessionRTH},
		{"before open", ny(t, r, 2025, 3, 14, 9, 29, 59), models.SessionETH},
		{"midday", ny(t, r, 2025, 3, 14, 12, 0, 0), models.SessionRTH},
		{"close inclusive", ny(t, r, 2025, 3, 14, 16, 0, 59), models.SessionRTH},
		{"after close", ny(t, r, 2025, 3, 14, 16, 1, 0), models.SessionETH},
		{"saturday", ny(t, r, 2025, 3, 15, 12, 0, 0), models.SessionETH},
		{"sunday", ny(t, r, 2025, 3, 16, 10, 0, 0), models.SessionETH},
		{"monday premarket", ny(t, r, 2025, 3, 17, 4, 0, 0), models.SessionETH},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := r.Resolve(tc.at)
			assert.Equal(t, tc.label, s.Label)
			if tc.label == models.SessionRTH {
				assert.Equal(t, 5*time.Minute, s.Cadence)
				assert.True(t, s.IsRegular())
			} else {
				assert.Equal(t, time.Hour, s.Cadence)
			}
		})
	}
}

func TestResolve_IgnoresCallerTimezone(t *testing.T) {
	r := newResolver(t)

	// 14:00 UTC on a March Friday after the DST switch is 10:00 in New York.
	utc := time.Date(2025, 3, 14, 14, 0, 0, 0, time.UTC)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	a := r.Resolve(utc)
	b := r.Resolve(utc.In(tokyo))

	assert.Equal(t, a.Info.Date, b.Info.Date)
	assert.Equal(t, "10:00", a.Info.Time)
	assert.Equal(t, "Fri", a.Info.Weekday)
	assert.Equal(t, "2025-03-14", a.Info.Date)
	assert.Equal(t, models.SessionRTH, b.Label)
	assert.Equal(t, "2025-03-14 10:00 NY", a.MarketStamp())
}

func TestNewResolver_BadTimezone(t *testing.T) {
	_, err := NewResolver("Nowhere/City", time.Minute, time.Hour)
	assert.Error(t, err)
}
