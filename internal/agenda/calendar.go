package agenda

import (
	"sort"
	"time"
)

func sortEvents(evs []Event) {
	sort.SliceStable(evs, func(i, j int) bool {
		if evs[i].Date != evs[j].Date {
			return evs[i].Date < evs[j].Date
		}
		return evs[i].Time < evs[j].Time
	})
}

// Month is a calendar page laid out Monday first. Weeks hold day numbers;
// 0 marks a padding cell before the 1st or after the last day.
type Month struct {
	Year   int
	Month  time.Month
	Weeks  [][7]int
	Marked map[int]bool
}

// MonthGrid lays out the days of month.
func MonthGrid(year int, month time.Month) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysIn := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) + 6) % 7

	m := Month{Year: year, Month: month, Marked: map[int]bool{}}
	var week [7]int
	col := offset
	for day := 1; day <= daysIn; day++ {
		week[col] = day
		col++
		if col == 7 {
			m.Weeks = append(m.Weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		m.Weeks = append(m.Weeks, week)
	}
	return m
}

// MonthView lays out month and marks the days holding events.
func (b *Book) MonthView(year int, month time.Month) Month {
	m := MonthGrid(year, month)
	m.Marked = b.DatesWithEvents(year, month)
	return m
}
