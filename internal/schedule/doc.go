// Package schedule manages a weekly timetable of activities.
//
// A week holds seven days keyed by their French names (LUNDI through
// DIMANCHE). Each day holds intervals sorted by start time. Intervals are
// half-open, [Start, End), so two entries may touch but never overlap:
//
//	08:00-09:00 Math
//	09:00-10:00 Physique   // accepted, touches Math
//	08:30-09:30 Chimie     // rejected with *ConflictError
//
// # Day window
//
// Intervals may not start before the day start (06:00 by default). An end
// of exactly 00:00 means "until the end of the day" and is stored as 23:59.
// The window is split into one-hour display slots labelled "06h-07h" up to
// "23h-00h"; CellContent answers what occupies a given slot.
//
// # Temporary intervals
//
// An interval marked Temporary is a one-off. Each time a Manager is built,
// temporary intervals whose end has passed are removed and the week is
// written back. By default the check compares times of day only, ignoring
// which weekday the interval belongs to; SweepWeekday takes the weekday
// into account.
//
// # Persistence
//
// A Manager writes the whole week through its Store after every successful
// mutation. A failed write is returned to the caller while the in-memory
// change stays applied; Save retries it.
package schedule
