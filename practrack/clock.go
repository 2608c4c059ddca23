package practrack

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used in storage and the API.
const DateLayout = "2006-01-02"

// ClockLayout is the time-of-day format used in storage and the API.
const ClockLayout = "15:04:05"

// =============================================================================
// CLOCK - Time of day without a date
// =============================================================================

// Clock is a time of day, second precision.
type Clock struct {
	seconds int
}

// NewClock builds a Clock. Out-of-range parts wrap around a 24h day.
func NewClock(hour, minute, second int) Clock {
	s := (hour*3600 + minute*60 + second) % (24 * 3600)
	if s < 0 {
		s += 24 * 3600
	}
	return Clock{seconds: s}
}

// ParseClock accepts "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if len(s) == 5 {
		s += ":00"
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return NewClock(t.Hour(), t.Minute(), t.Second()), nil
}

func (c Clock) Hour() int   { return c.seconds / 3600 }
func (c Clock) Minute() int { return c.seconds % 3600 / 60 }
func (c Clock) Second() int { return c.seconds % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

// On places the clock on the given calendar date (UTC).
func (c Clock) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, time.UTC)
}

// =============================================================================
// DATES
// =============================================================================

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// Today returns the current calendar date as UTC midnight.
func Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// DURATION
// =============================================================================

// ComputeHours returns the shift length in hours, rounded to two places.
// An end time earlier than the start is an overnight shift ending the next
// day. Equal times yield zero.
func ComputeHours(date time.Time, start, end Clock) decimal.Decimal {
	startAt := start.On(date)
	endAt := end.On(date)
	if endAt.Before(startAt) {
		endAt = endAt.Add(24 * time.Hour)
	}
	seconds := int64(endAt.Sub(startAt) / time.Second)
	return RoundHours(decimal.NewFromInt(seconds).Div(decimal.NewFromInt(3600)))
}
