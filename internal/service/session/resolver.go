package session

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"MCMTracker/internal/domain/models"
)

const (
	openMinute  = 9*60 + 30
	closeMinute = 16 * 60
)

// Resolver classifies instants into market sessions in a fixed timezone.
type Resolver struct {
	loc        *time.Location
	rthCadence time.Duration
	ethCadence time.Duration
}

// NewResolver loads tz and returns a resolver with the given cadences.
func NewResolver(tz string, rthCadence, ethCadence time.Duration) (*Resolver, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	if rthCadence <= 0 || ethCadence <= 0 {
		return nil, fmt.Errorf("cadences must be positive")
	}
	return &Resolver{loc: loc, rthCadence: rthCadence, ethCadence: ethCadence}, nil
}

// Location returns the market timezone.
func (r *Resolver) Location() *time.Location { return r.loc }

// RTHCadence returns the regular-hours cadence.
func (r *Resolver) RTHCadence() time.Duration { return r.rthCadence }

// ETHCadence returns the extended-hours cadence.
func (r *Resolver) ETHCadence() time.Duration { return r.ethCadence }

// Info breaks t down in the market timezone.
func (r *Resolver) Info(t time.Time) models.SessionInfo {
	local := t.In(r.loc)
	return models.SessionInfo{
		Date:    local.Format("2006-01-02"),
		Time:    local.Format("15:04"),
		Weekday: local.Format("Mon"),
		Hour:    local.Hour(),
		Minute:  local.Minute(),
		At:      local,
	}
}

// Resolve classifies t. Regular hours are Monday to Friday from 09:30
// through 16:00 market time, both bounds inclusive.
func (r *Resolver) Resolve(t time.Time) models.Session {
	info := r.Info(t)
	if isRegular(info.At.Weekday(), info.Hour*60+info.Minute) {
		return models.Session{Info: info, Label: models.SessionRTH, Cadence: r.rthCadence}
	}
	return models.Session{Info: info, Label: models.SessionETH, Cadence: r.ethCadence}
}

func isRegular(day time.Weekday, minuteOfDay int) bool {
	if day == time.Saturday || day == time.Sunday {
		return false
	}
	return minuteOfDay >= openMinute && minuteOfDay <= closeMinute
}
