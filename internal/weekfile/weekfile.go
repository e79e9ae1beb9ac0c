// Package weekfile encodes the weekly schedule as a JSON document and
// stores it through a document store.
//
// The document maps each day to its intervals:
//
//	{
//	  "LUNDI": [
//	    {"start_time": "08:00", "end_time": "09:00", "course": "Math", "is_temporary": false}
//	  ],
//	  "MARDI": [],
//	  ...
//	}
//
// All seven days are always written, Monday first, with 2-space indentation
// and a trailing newline. Decoding validates the document against a bundled
// JSON schema and then checks each record; any failure is reported as a
// *schedule.CorruptStateError.
package weekfile

import (
	"context"
	"errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/nibzard/agenda-go/internal/schedule"
	"github.com/nibzard/agenda-go/internal/store"
)

// DefaultName is the document name used when none is configured.
const DefaultName = "schedule.json"

type record struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Course      string `json:"course"`
	IsTemporary bool   `json:"is_temporary"`
}

// document fixes the key order of the encoded week.
type document struct {
	Lundi    []record `json:"LUNDI"`
	Mardi    []record `json:"MARDI"`
	Mercredi []record `json:"MERCREDI"`
	Jeudi    []record `json:"JEUDI"`
	Vendredi []record `json:"VENDREDI"`
	Samedi   []record `json:"SAMEDI"`
	Dimanche []record `json:"DIMANCHE"`
}

func (d *document) day(k schedule.Day) *[]record {
	switch k {
	case schedule.Lundi:
		return &d.Lundi
	case schedule.Mardi:
		return &d.Mardi
	case schedule.Mercredi:
		return &d.Mercredi
	case schedule.Jeudi:
		return &d.Jeudi
	case schedule.Vendredi:
		return &d.Vendredi
	case schedule.Samedi:
		return &d.Samedi
	case schedule.Dimanche:
		return &d.Dimanche
	}
	return nil
}

// Encode renders w. Days missing from w are written as empty lists.
func Encode(w schedule.Week) ([]byte, error) {
	var doc document
	for _, d := range schedule.Days() {
		recs := make([]record, 0, len(w[d]))
		for _, iv := range w[d] {
			recs = append(recs, record{
				StartTime:   iv.Start.String(),
				EndTime:     iv.End.String(),
				Course:      iv.Label,
				IsTemporary: iv.Temporary,
			})
		}
		*doc.day(d) = recs
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode schedule: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a document read from source. Intervals come back sorted by
// start; an end of 00:00 becomes 23:59. Overlapping or empty intervals make
// the document corrupt.
func Decode(source string, data []byte) (schedule.Week, error) {
	if err := validate(source, data); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, corrupt(source, "", -1, err)
	}

	week := schedule.NewWeek()
	for _, d := range schedule.Days() {
		recs := *doc.day(d)
		ivs := make([]schedule.Interval, 0, len(recs))
		for i, rec := range recs {
			iv, err := rec.interval()
			if err != nil {
				return nil, corrupt(source, string(d), i, err)
			}
			ivs = append(ivs, iv)
		}
		if err := checkDay(ivs); err != nil {
			return nil, corrupt(source, string(d), -1, err)
		}
		week[d] = sorted(ivs)
	}
	return week, nil
}

func (r record) interval() (schedule.Interval, error) {
	start, err := schedule.ParseClock(r.StartTime)
	if err != nil {
		return schedule.Interval{}, fmt.Errorf("start_time: %w", err)
	}
	end, err := schedule.ParseClock(r.EndTime)
	if err != nil {
		return schedule.Interval{}, fmt.Errorf("end_time: %w", err)
	}
	if end == schedule.Midnight {
		end = schedule.LastMinute
	}
	if start >= end {
		return schedule.Interval{}, fmt.Errorf("start_time %s is not before end_time %s", start, end)
	}
	return schedule.Interval{Start: start, End: end, Label: r.Course, Temporary: r.IsTemporary}, nil
}

func checkDay(ivs []schedule.Interval) error {
	for i := range ivs {
		for j := i + 1; j < len(ivs); j++ {
			if ivs[i].ConflictsWith(ivs[j]) {
				return fmt.Errorf("%s overlaps %s", ivs[i], ivs[j])
			}
		}
	}
	return nil
}

func sorted(ivs []schedule.Interval) []schedule.Interval {
	sort.SliceStable(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })
	return ivs
}

func corrupt(source, day string, index int, err error) error {
	return &schedule.CorruptStateError{Source: source, Day: day, Index: index, Err: err}
}

// Store implements schedule.Store on top of a document store.
type Store struct {
	docs store.Store
	name string
}

// NewStore returns a Store keeping the week in the document called name.
func NewStore(docs store.Store, name string) *Store {
	if name == "" {
		name = DefaultName
	}
	return &Store{docs: docs, name: name}
}

// Name returns the document name.
func (s *Store) Name() string { return s.name }

// Load returns an empty week when the document does not exist yet.
func (s *Store) Load(ctx context.Context) (schedule.Week, error) {
	data, err := s.docs.Read(ctx, s.name)
	if errors.Is(err, store.ErrNotFound) {
		return schedule.NewWeek(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	return Decode(s.name, data)
}

func (s *Store) Save(ctx context.Context, w schedule.Week) error {
	data, err := Encode(w)
	if err != nil {
		return err
	}
	return s.docs.Write(ctx, s.name, data)
}
