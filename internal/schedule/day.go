package schedule

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Day is one of the seven weekday keys of a week, in French and upper case.
type Day string

const (
	Lundi    Day = "LUNDI"
	Mardi    Day = "MARDI"
	Mercredi Day = "MERCREDI"
	Jeudi    Day = "JEUDI"
	Vendredi Day = "VENDREDI"
	Samedi   Day = "SAMEDI"
	Dimanche Day = "DIMANCHE"
)

var days = [...]Day{Lundi, Mardi, Mercredi, Jeudi, Vendredi, Samedi, Dimanche}

// Days returns the seven day keys, Monday first.
func Days() []Day {
	out := make([]Day, len(days))
	copy(out, days[:])
	return out
}

// Valid reports whether d is exactly one of the seven day keys.
func (d Day) Valid() bool {
	return d.index() >= 0
}

// Short returns the three-letter display form, e.g. "Lun".
func (d Day) Short() string {
	if !d.Valid() {
		return string(d)
	}
	s := string(d)
	return s[:1] + strings.ToLower(s[1:3])
}

func (d Day) index() int {
	for i, k := range days {
		if k == d {
			return i
		}
	}
	return -1
}

// DayOf returns the key for a time.Weekday.
func DayOf(w time.Weekday) Day {
	// time.Sunday is 0; the week here starts on Monday.
	return days[(int(w)+6)%7]
}

// ParseDay folds case and accents of user input and resolves it to a day
// key. Full names and three-letter abbreviations are accepted.
func ParseDay(s string) (Day, error) {
	folded := foldDay(s)
	if folded == "" {
		return "", &InvalidDayError{Day: s}
	}
	for _, d := range days {
		if string(d) == folded || (len(folded) == 3 && strings.HasPrefix(string(d), folded)) {
			return d, nil
		}
	}
	return "", &InvalidDayError{Day: s}
}

func foldDay(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return cases.Upper(language.French).String(out)
}

// DaySchedule is the ordered set of non-overlapping intervals of one day.
type DaySchedule struct {
	Day       Day
	Intervals []Interval
}

// Week maps every day key to its intervals, sorted by start.
type Week map[Day][]Interval

// NewWeek returns a week with all seven days present and empty.
func NewWeek() Week {
	w := make(Week, len(days))
	for _, d := range days {
		w[d] = []Interval{}
	}
	return w
}

// Clone returns a deep copy of w.
func (w Week) Clone() Week {
	out := make(Week, len(w))
	for d, ivs := range w {
		cp := make([]Interval, len(ivs))
		copy(cp, ivs)
		out[d] = cp
	}
	return out
}

// Schedules returns the week as day schedules, Monday first.
func (w Week) Schedules() []DaySchedule {
	out := make([]DaySchedule, 0, len(days))
	for _, d := range days {
		ivs := make([]Interval, len(w[d]))
		copy(ivs, w[d])
		out = append(out, DaySchedule{Day: d, Intervals: ivs})
	}
	return out
}

// Len returns the total number of intervals in the week.
func (w Week) Len() int {
	n := 0
	for _, ivs := range w {
		n += len(ivs)
	}
	return n
}

func sortIntervals(ivs []Interval) {
	sort.SliceStable(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })
}
