// Package markethours implements the market-calendar collaborator used
// by the strategy engine's trading-hours gate.
package markethours

import (
	"fmt"
	"strings"
	"time"
)

// FX week boundaries in UTC: Sydney open Sunday 22:00, New York close
// Friday 22:00.
const (
	OpenHourUTC  = 22 // Sunday
	CloseHourUTC = 22 // Friday
)

// Calendar answers whether an instrument's market is open at a given
// instant. Instruments listed in alwaysOpen (crypto pairs) trade 24/7;
// everything else follows the FX week.
type Calendar struct {
	alwaysOpen map[string]bool
}

// NewCalendar creates a calendar. alwaysOpen lists instruments that
// trade around the clock, e.g. "BTCUSD".
func NewCalendar(alwaysOpen ...string) *Calendar {
	set := make(map[string]bool, len(alwaysOpen))
	for _, s := range alwaysOpen {
		set[strings.ToUpper(s)] = true
	}
	return &Calendar{alwaysOpen: set}
}

// IsMarketOpen reports whether the instrument trades at t. The error
// return exists for remote-calendar implementations of the same
// interface; this static calendar never fails.
func (c *Calendar) IsMarketOpen(instrument string, t time.Time) (bool, error) {
	if c.alwaysOpen[strings.ToUpper(instrument)] {
		return true, nil
	}
	return IsFXOpen(t), nil
}

// IsFXOpen returns true if t falls inside the FX trading week
// (Sunday 22:00 UTC through Friday 22:00 UTC, excluding holidays).
func IsFXOpen(t time.Time) bool {
	utc := t.UTC()
	if IsHoliday(utc) {
		return false
	}
	switch utc.Weekday() {
	case time.Saturday:
		return false
	case time.Sunday:
		return utc.Hour() >= OpenHourUTC
	case time.Friday:
		return utc.Hour() < CloseHourUTC
	default:
		return true
	}
}

// NextOpen returns the next FX open time at or after t.
// If the market is already open, t itself is returned.
func NextOpen(t time.Time) time.Time {
	utc := t.UTC()
	if IsFXOpen(utc) {
		return utc
	}
	// Walk forward hour by hour; the gap is at most a weekend plus a holiday.
	probe := utc.Truncate(time.Hour)
	for i := 0; i < 24*5; i++ {
		probe = probe.Add(time.Hour)
		if IsFXOpen(probe) {
			return probe
		}
	}
	return probe
}

// TimeUntilOpen returns the duration until the next FX open.
// Returns 0 if the market is already open.
func TimeUntilOpen(t time.Time) time.Duration {
	d := NextOpen(t).Sub(t.UTC())
	if d < 0 {
		return 0
	}
	return d
}

// StatusString returns a human-readable market status.
func StatusString(t time.Time) string {
	if IsFXOpen(t) {
		return "Market Open"
	}
	next := NextOpen(t)
	return fmt.Sprintf("Market Closed — opens %s %s UTC (%s)",
		next.Weekday().String()[:3], next.Format("15:04"), fmtDur(next.Sub(t.UTC())))
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
