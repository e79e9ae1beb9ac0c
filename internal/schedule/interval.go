package schedule

import "fmt"

// Interval is one occupied stretch of a day, half-open: [Start, End).
type Interval struct {
	Start     Clock
	End       Clock
	Label     string
	Temporary bool
}

// ConflictsWith reports whether i and other overlap. Touching endpoints
// do not conflict.
func (i Interval) ConflictsWith(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Overlaps reports whether i intersects the window [start, end). An end of
// Midnight is the end of the day.
func (i Interval) Overlaps(start, end Clock) bool {
	return int(i.Start) < endMinutes(end) && int(start) < int(i.End)
}

// Contains reports whether c falls inside [Start, End).
func (i Interval) Contains(c Clock) bool {
	return i.Start <= c && c < i.End
}

func (i Interval) String() string {
	s := fmt.Sprintf("%s-%s %s", i.Start, i.End, i.Label)
	if i.Temporary {
		s += " (temporary)"
	}
	return s
}

// normalizeEnd applies the end-of-day rule: an end of exactly midnight
// becomes 23:59.
func normalizeEnd(end Clock) Clock {
	if end == Midnight {
		return LastMinute
	}
	return end
}
