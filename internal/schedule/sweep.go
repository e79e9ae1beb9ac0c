package schedule

import "time"

// sweepLocked drops expired temporary intervals and returns how many were
// dropped. In time-of-day mode the end of every temporary interval is placed
// on now's calendar date, so a later weekday's early interval is dropped too
// once that time of day has passed.
func (m *Manager) sweepLocked(now time.Time) int {
	today := DayOf(now.Weekday()).index()
	removed := 0
	for d, ivs := range m.week {
		kept := ivs[:0:0]
		for _, iv := range ivs {
			if iv.Temporary && m.expired(d, iv, now, today) {
				removed++
				m.logger.Debug("temporary interval expired", "day", d, "start", iv.Start, "end", iv.End, "label", iv.Label)
				continue
			}
			kept = append(kept, iv)
		}
		m.week[d] = kept
	}
	return removed
}

func (m *Manager) expired(d Day, iv Interval, now time.Time, today int) bool {
	endedToday := iv.End.On(now).Before(now)
	if m.sweep != SweepWeekday {
		return endedToday
	}
	switch idx := d.index(); {
	case idx < today:
		return true
	case idx > today:
		return false
	default:
		return endedToday
	}
}
