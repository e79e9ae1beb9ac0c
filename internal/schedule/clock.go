package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day with minute precision, stored as minutes since
// midnight. Valid values are 0 through 1439.
type Clock int

const (
	// Midnight is 00:00. As an interval end it means "until end of day".
	Midnight Clock = 0
	// LastMinute is 23:59, the value a midnight end is normalized to.
	LastMinute Clock = 23*60 + 59

	minutesPerDay = 24 * 60
)

// NewClock returns the Clock for hour:minute. It panics on out-of-range
// values; use ParseClock for untrusted input.
func NewClock(hour, minute int) Clock {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		panic(fmt.Sprintf("schedule: invalid clock %d:%d", hour, minute))
	}
	return Clock(hour*60 + minute)
}

// ClockOf returns the time-of-day part of t.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// Hour returns the hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// String formats c as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On returns the instant at c on the calendar date of day, in day's location.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, day.Location())
}

// ParseClock parses the strict HH:MM form used in persisted documents.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := parseDigits(s[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	m, err := parseDigits(s[3:])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return Clock(h*60 + m), nil
}

// ParseLooseClock parses times typed by a person: "6h", "6h30", "06:30",
// "7" and "18:05" are all accepted. "24", "24h" and "24:00" yield Midnight,
// which as an interval end means end of day.
func ParseLooseClock(s string) (Clock, error) {
	raw := s
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, "h", ":")
	if strings.HasSuffix(s, ":") {
		s += "00"
	}
	if s == "" {
		return 0, fmt.Errorf("invalid time %q: empty", raw)
	}

	hourPart, minutePart, hasMinutes := strings.Cut(s, ":")
	if len(hourPart) == 0 || len(hourPart) > 2 {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	h, err := parseDigits(hourPart)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", raw, err)
	}
	m := 0
	if hasMinutes {
		if len(minutePart) != 2 {
			return 0, fmt.Errorf("invalid time %q: minutes must have two digits", raw)
		}
		if m, err = parseDigits(minutePart); err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", raw, err)
		}
	}
	if h == 24 && m == 0 {
		return Midnight, nil
	}
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", raw)
	}
	return Clock(h*60 + m), nil
}

func parseDigits(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.Atoi(s)
}

// endMinutes maps an exclusive window end to minutes, treating Midnight
// as the end of the day.
func endMinutes(c Clock) int {
	if c == Midnight {
		return minutesPerDay
	}
	return int(c)
}
