package schedule

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrInvalidDay   = errors.New("schedule: invalid day")
	ErrInvalidRange = errors.New("schedule: invalid range")
	ErrConflict     = errors.New("schedule: conflict")
	ErrCorruptState = errors.New("schedule: corrupt state")
)

// InvalidDayError reports a day key outside the seven known days.
type InvalidDayError struct {
	Day string
}

func (e *InvalidDayError) Error() string {
	return fmt.Sprintf("unknown day %q", e.Day)
}

func (e *InvalidDayError) Is(target error) bool { return target == ErrInvalidDay }

// InvalidRangeError reports a clock outside the day, a start before the day
// window, or an empty or inverted interval.
type InvalidRangeError struct {
	Start  Clock
	End    Clock
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %s-%s: %s", e.Start, e.End, e.Reason)
}

func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }

// ConflictError reports a candidate overlapping an interval already held.
type ConflictError struct {
	Day       Day
	Candidate Interval
	Existing  Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s-%s overlaps %s-%s %q", e.Day,
		e.Candidate.Start, e.Candidate.End,
		e.Existing.Start, e.Existing.End, e.Existing.Label)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// CorruptStateError reports a persisted schedule that cannot be restored.
// Day and Index locate the offending record when known (Index is -1 otherwise).
type CorruptStateError struct {
	Source string
	Day    string
	Index  int
	Err    error
}

func (e *CorruptStateError) Error() string {
	switch {
	case e.Day != "" && e.Index >= 0:
		return fmt.Sprintf("corrupt schedule %s: %s[%d]: %v", e.Source, e.Day, e.Index, e.Err)
	case e.Day != "":
		return fmt.Sprintf("corrupt schedule %s: %s: %v", e.Source, e.Day, e.Err)
	default:
		return fmt.Sprintf("corrupt schedule %s: %v", e.Source, e.Err)
	}
}

func (e *CorruptStateError) Unwrap() error { return e.Err }

func (e *CorruptStateError) Is(target error) bool { return target == ErrCorruptState }

// IsRejection reports whether err is an expected rejection of a mutation
// (bad day, bad range, conflict) rather than a storage failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidDay) || errors.Is(err, ErrInvalidRange) || errors.Is(err, ErrConflict)
}

// Kind returns a short label for err, suitable for logs and exit messages.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidDay):
		return "invalid_day"
	case errors.Is(err, ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrCorruptState):
		return "corrupt_state"
	default:
		return "persistence"
	}
}
