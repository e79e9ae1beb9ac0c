package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Store reads and writes a whole week. Load on an absent backing document
// returns an empty week and no error.
type Store interface {
	Load(ctx context.Context) (Week, error)
	Save(ctx context.Context, w Week) error
}

// SweepMode selects how expired temporary intervals are detected.
type SweepMode string

const (
	// SweepTimeOfDay compares each interval's end time-of-day with the
	// current time-of-day, whatever weekday the interval belongs to.
	SweepTimeOfDay SweepMode = "time-of-day"
	// SweepWeekday expires temporary intervals of weekdays already past in
	// the current week, and today's by time-of-day.
	SweepWeekday SweepMode = "weekday"
)

// DefaultDayStart is the earliest start accepted for an interval.
var DefaultDayStart = NewClock(6, 0)

// Option configures a Manager.
type Option func(*Manager)

// WithNow sets the clock used by the expiry sweep.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithDayStart sets the day-start boundary. It must be a whole hour.
func WithDayStart(c Clock) Option {
	return func(m *Manager) { m.dayStart = c }
}

// WithDayEnd sets the day-end boundary; Midnight means end of day.
func WithDayEnd(c Clock) Option {
	return func(m *Manager) { m.dayEnd = c }
}

// WithSweepMode selects the expiry sweep behavior.
func WithSweepMode(mode SweepMode) Option {
	return func(m *Manager) { m.sweep = mode }
}

// WithLogger sets the logger for load, sweep and mutation events.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager owns the week. It validates and applies mutations, persists the
// week after each successful one, and answers grid lookups. It is safe for
// concurrent use.
type Manager struct {
	mu    sync.RWMutex
	store Store
	week  Week

	dayStart Clock
	dayEnd   Clock
	labels   []string

	sweep  SweepMode
	now    func() time.Time
	logger *log.Logger
}

// New loads the week from store, removes expired temporary intervals and
// writes the week back, whether or not anything was removed.
func New(ctx context.Context, store Store, opts ...Option) (*Manager, error) {
	m := &Manager{
		store:    store,
		dayStart: DefaultDayStart,
		dayEnd:   Midnight,
		sweep:    SweepTimeOfDay,
		now:      time.Now,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.checkWindow(); err != nil {
		return nil, err
	}
	m.labels = SlotLabels(m.dayStart, m.dayEnd)

	week, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if m.week, err = normalizeWeek(week); err != nil {
		return nil, err
	}
	m.logger.Debug("schedule loaded", "intervals", m.week.Len())

	removed := m.sweepLocked(m.now())
	if removed > 0 {
		m.logger.Info("expired temporary intervals removed", "count", removed)
	}
	if err := m.saveLocked(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) checkWindow() error {
	switch {
	case m.dayStart < 0 || int(m.dayStart) >= minutesPerDay || m.dayStart.Minute() != 0:
		return fmt.Errorf("day start %s must be a whole hour", m.dayStart)
	case m.dayEnd < 0 || int(m.dayEnd) >= minutesPerDay || m.dayEnd.Minute() != 0:
		return fmt.Errorf("day end %s must be a whole hour", m.dayEnd)
	case int(m.dayStart) >= endMinutes(m.dayEnd):
		return fmt.Errorf("day start %s must precede day end %s", m.dayStart, m.dayEnd)
	}
	switch m.sweep {
	case SweepTimeOfDay, SweepWeekday:
	default:
		return fmt.Errorf("unknown sweep mode %q", m.sweep)
	}
	return nil
}

// normalizeWeek copies w into a week holding exactly the seven days, each
// sorted by start. A key outside those days is corrupt state.
func normalizeWeek(w Week) (Week, error) {
	for k := range w {
		if !k.Valid() {
			return nil, &CorruptStateError{Source: "store", Day: string(k), Index: -1, Err: errors.New("unknown day")}
		}
	}
	out := NewWeek()
	for _, d := range days {
		cp := make([]Interval, len(w[d]))
		copy(cp, w[d])
		sortIntervals(cp)
		out[d] = cp
	}
	return out, nil
}

// AddInterval validates iv and inserts it into day. Rejections are returned
// as *InvalidDayError, *InvalidRangeError or *ConflictError and leave the
// week untouched. Any other error comes from persisting the week, after
// the interval was already inserted in memory.
func (m *Manager) AddInterval(ctx context.Context, day Day, iv Interval) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !day.Valid() {
		return &InvalidDayError{Day: string(day)}
	}
	iv.End = normalizeEnd(iv.End)
	if err := m.checkRange(iv); err != nil {
		return err
	}
	for _, existing := range m.week[day] {
		if iv.ConflictsWith(existing) {
			return &ConflictError{Day: day, Candidate: iv, Existing: existing}
		}
	}

	ivs := append(m.week[day], iv)
	sortIntervals(ivs)
	m.week[day] = ivs
	m.logger.Debug("interval added", "day", day, "start", iv.Start, "end", iv.End, "label", iv.Label, "temporary", iv.Temporary)

	return m.saveLocked(ctx)
}

func (m *Manager) checkRange(iv Interval) error {
	switch {
	case iv.Start < 0 || iv.End < 0 || iv.Start > LastMinute || iv.End > LastMinute:
		return &InvalidRangeError{Start: iv.Start, End: iv.End, Reason: "outside 00:00-24:00"}
	case iv.Start < m.dayStart:
		return &InvalidRangeError{Start: iv.Start, End: iv.End, Reason: "starts before " + m.dayStart.String()}
	case iv.Start >= iv.End:
		return &InvalidRangeError{Start: iv.Start, End: iv.End, Reason: "start is not before end"}
	case m.dayEnd != Midnight && iv.End > m.dayEnd:
		return &InvalidRangeError{Start: iv.Start, End: iv.End, Reason: "ends after " + m.dayEnd.String()}
	}
	return nil
}

// RemoveInterval removes every interval of day starting exactly at start.
// It reports whether anything was removed; the week is only written when it
// was.
func (m *Manager) RemoveInterval(ctx context.Context, day Day, start Clock) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !day.Valid() {
		return false, &InvalidDayError{Day: string(day)}
	}
	ivs := m.week[day]
	kept := ivs[:0:0]
	for _, iv := range ivs {
		if iv.Start != start {
			kept = append(kept, iv)
		}
	}
	if len(kept) == len(ivs) {
		return false, nil
	}
	m.week[day] = kept
	m.logger.Debug("interval removed", "day", day, "start", start)

	return true, m.saveLocked(ctx)
}

// SlotLabels returns the display slots of the configured day window.
func (m *Manager) SlotLabels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// Occupant returns the interval shown in the slot: the earliest-starting
// interval of day intersecting the slot window. An interval starting
// partway through a slot is shown there too, so 08:30-09:00 fills the
// 08h-09h cell rather than leaving it empty.
func (m *Manager) Occupant(day Day, slot string) (Interval, bool) {
	start, end, err := ParseSlotLabel(slot)
	if err != nil {
		return Interval{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, iv := range m.week[day] {
		if iv.Overlaps(start, end) {
			return iv, true
		}
	}
	return Interval{}, false
}

// CellContent returns the label occupying the slot of day, if any. It
// follows Occupant, not a lookup of the interval containing the slot start:
// a slot is labelled by any interval intersecting it.
func (m *Manager) CellContent(day Day, slot string) (string, bool) {
	iv, ok := m.Occupant(day, slot)
	return iv.Label, ok
}

// Intervals returns a copy of day's intervals in start order.
func (m *Manager) Intervals(day Day) []Interval {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Interval, len(m.week[day]))
	copy(out, m.week[day])
	return out
}

// Week returns a copy of the whole week.
func (m *Manager) Week() Week {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.week.Clone()
}

// DayStart returns the configured day-start boundary.
func (m *Manager) DayStart() Clock { return m.dayStart }

// DayEnd returns the configured day-end boundary.
func (m *Manager) DayEnd() Clock { return m.dayEnd }

// Reload replaces the in-memory week with the stored one and sweeps it.
// Unlike New it only writes back when the sweep removed something.
func (m *Manager) Reload(ctx context.Context) error {
	week, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	norm, err := normalizeWeek(week)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.week = norm
	if m.sweepLocked(m.now()) == 0 {
		return nil
	}
	return m.saveLocked(ctx)
}

// Save writes the current week, e.g. to retry after a failed write.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(ctx)
}

func (m *Manager) saveLocked(ctx context.Context) error {
	if err := m.store.Save(ctx, m.week.Clone()); err != nil {
		m.logger.Error("schedule not saved", "err", err)
		return fmt.Errorf("save schedule: %w", err)
	}
	return nil
}
