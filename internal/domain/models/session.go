package models

import (
	"fmt"
	"time"
)

// SessionLabel names a market session.
type SessionLabel string

const (
	SessionRTH SessionLabel = "RTH"
	SessionETH SessionLabel = "ETH"
)

// SessionInfo is a wall-clock instant broken down in the market timezone.
type SessionInfo struct {
	Date    string // 2006-01-02
	Time    string // 15:04
	Weekday string // Mon, Tue...
	Hour    int
	Minute  int
	At      time.Time
}

// Session is the classification of an instant plus its refresh cadence.
type Session struct {
	Info    SessionInfo
	Label   SessionLabel
	Cadence time.Duration
}

// IsRegular reports whether the session is regular trading hours.
func (s Session) IsRegular() bool { return s.Label == SessionRTH }

// MarketStamp renders the instant as "2006-01-02 15:04 NY".
func (s Session) MarketStamp() string {
	return fmt.Sprintf("%s %s NY", s.Info.Date, s.Info.Time)
}

// CadenceLabel renders a cadence as "5m" or "1h".
func CadenceLabel(d time.Duration) string {
	switch {
	case d > 0 && d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d > 0 && d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return d.String()
	}
}
