package weekfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/agenda-go/internal/schedule"
	"github.com/nibzard/agenda-go/internal/store"
)

func clock(t *testing.T, s string) schedule.Clock {
	t.Helper()
	c, err := schedule.ParseClock(s)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestEncodeEmptyWeek(t *testing.T) {
	data, err := Encode(schedule.NewWeek())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	out := string(data)
	if !strings.HasSuffix(out, "\n") {
		t.Error("missing trailing newline")
	}
	if !strings.HasPrefix(out, "{\n  \"LUNDI\": []") {
		t.Errorf("unexpected layout:\n%s", out)
	}
	last := -1
	for _, d := range schedule.Days() {
		i := strings.Index(out, `"`+string(d)+`"`)
		if i < 0 {
			t.Fatalf("%s missing from output", d)
		}
		if i < last {
			t.Errorf("%s written out of order", d)
		}
		last = i
	}
}

func TestEncodeRecordShape(t *testing.T) {
	w := schedule.NewWeek()
	w[schedule.Jeudi] = []schedule.Interval{{Start: clock(t, "14:00"), End: clock(t, "15:30"), Label: "Éducation physique", Temporary: true}}
	data, err := Encode(w)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	for _, want := range []string{
		`"start_time": "14:00"`,
		`"end_time": "15:30"`,
		`"course": "Éducation physique"`,
		`"is_temporary": true`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("output missing %s:\n%s", want, data)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	w := schedule.NewWeek()
	w[schedule.Lundi] = []schedule.Interval{
		{Start: clock(t, "08:00"), End: clock(t, "09:00"), Label: "Math"},
		{Start: clock(t, "09:00"), End: clock(t, "10:00"), Label: "Physique"},
	}
	w[schedule.Dimanche] = []schedule.Interval{
		{Start: clock(t, "06:00"), End: schedule.LastMinute, Label: "Repos", Temporary: true},
	}

	data, err := Encode(w)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	got, err := Decode("test", data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !reflect.DeepEqual(got, w) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", got, w)
	}
}

func TestDecodeSortsAndNormalizes(t *testing.T) {
	data := []byte(`{
  "MARDI": [
    {"start_time": "20:00", "end_time": "00:00", "course": "Soir", "is_temporary": false},
    {"start_time": "08:00", "end_time": "09:00", "course": "Matin", "is_temporary": false}
  ]
}`)
	w, err := Decode("test", data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	got := w[schedule.Mardi]
	if len(got) != 2 || got[0].Label != "Matin" || got[1].Label != "Soir" {
		t.Fatalf("MARDI = %v, want sorted by start", got)
	}
	if got[1].End != schedule.LastMinute {
		t.Errorf("end = %v, want 23:59", got[1].End)
	}
	if len(w) != 7 {
		t.Errorf("len(week) = %d, want 7 days", len(w))
	}
}

func TestDecodeCorrupt(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantDay   string
		wantIndex int
	}{
		{
			name:      "not json",
			data:      `{"LUNDI": [`,
			wantIndex: -1,
		},
		{
			name:      "top level array",
			data:      `[]`,
			wantIndex: -1,
		},
		{
			name:      "unknown day",
			data:      `{"FUNDAY": []}`,
			wantIndex: -1,
		},
		{
			name:      "malformed time",
			data:      `{"LUNDI": [{"start_time": "8h00", "end_time": "09:00", "course": "Math", "is_temporary": false}]}`,
			wantDay:   "LUNDI",
			wantIndex: 0,
		},
		{
			name:      "missing field",
			data:      `{"MARDI": [{"start_time": "08:00", "end_time": "09:00", "course": "Math"}]}`,
			wantDay:   "MARDI",
			wantIndex: 0,
		},
		{
			name:      "wrong type",
			data:      `{"JEUDI": [{"start_time": "08:00", "end_time": "09:00", "course": 4, "is_temporary": false}]}`,
			wantDay:   "JEUDI",
			wantIndex: 0,
		},
		{
			name:      "inverted",
			data:      `{"LUNDI": [{"start_time": "10:00", "end_time": "09:00", "course": "Math", "is_temporary": false}]}`,
			wantDay:   "LUNDI",
			wantIndex: 0,
		},
		{
			name: "overlap",
			data: `{"VENDREDI": [
				{"start_time": "08:00", "end_time": "09:00", "course": "A", "is_temporary": false},
				{"start_time": "08:30", "end_time": "09:30", "course": "B", "is_temporary": false}]}`,
			wantDay:   "VENDREDI",
			wantIndex: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("schedule.json", []byte(tt.data))
			var cse *schedule.CorruptStateError
			if !errors.As(err, &cse) {
				t.Fatalf("Decode() error = %v, want *CorruptStateError", err)
			}
			if !errors.Is(err, schedule.ErrCorruptState) {
				t.Error("errors.Is(ErrCorruptState) = false")
			}
			if cse.Source != "schedule.json" {
				t.Errorf("Source = %q", cse.Source)
			}
			if cse.Day != tt.wantDay || cse.Index != tt.wantIndex {
				t.Errorf("location = %q[%d], want %q[%d] (%v)", cse.Day, cse.Index, tt.wantDay, tt.wantIndex, err)
			}
		})
	}
}

func TestValidateCollectsAll(t *testing.T) {
	errs := Validate([]byte(`{"LUNDI": [{"start_time": "x", "end_time": "y", "course": "A", "is_temporary": false}], "FUNDAY": []}`))
	if len(errs) < 2 {
		t.Errorf("Validate() = %v, want several errors", errs)
	}
	if errs := Validate([]byte(`{"LUNDI": []}`)); errs != nil {
		t.Errorf("Validate(valid) = %v", errs)
	}
}

// countingStore records writes made through it.
type countingStore struct {
	store.Store
	writes int
}

func (c *countingStore) Write(ctx context.Context, name string, data []byte) error {
	c.writes++
	return c.Store.Write(ctx, name, data)
}

func TestStoreWithManager(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	docs := &countingStore{Store: store.NewFileStore(dir)}
	st := NewStore(docs, "")
	if st.Name() != DefaultName {
		t.Fatalf("Name() = %q", st.Name())
	}

	w, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load(missing) error: %v", err)
	}
	if w.Len() != 0 || len(w) != 7 {
		t.Fatalf("Load(missing) = %v, want seven empty days", w)
	}

	// Monday 2024-01-15, noon.
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	seed := schedule.NewWeek()
	seed[schedule.Lundi] = []schedule.Interval{
		{Start: clock(t, "08:00"), End: clock(t, "09:00"), Label: "Rattrapage", Temporary: true},
		{Start: clock(t, "10:00"), End: clock(t, "11:00"), Label: "Math"},
	}
	if err := st.Save(ctx, seed); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	m, err := schedule.New(ctx, st, schedule.WithNow(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("schedule.New() error: %v", err)
	}
	if got := m.Intervals(schedule.Lundi); len(got) != 1 || got[0].Label != "Math" {
		t.Fatalf("Intervals(LUNDI) = %v", got)
	}

	path := filepath.Join(dir, DefaultName)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "Rattrapage") {
		t.Error("expired interval still in file")
	}

	writes := docs.writes
	removed, err := m.RemoveInterval(ctx, schedule.Mardi, clock(t, "08:00"))
	if err != nil || removed {
		t.Fatalf("RemoveInterval(MARDI) = %v, %v", removed, err)
	}
	if docs.writes != writes {
		t.Error("removing nothing rewrote the file")
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(raw) {
		t.Error("file content changed")
	}

	if err := m.AddInterval(ctx, schedule.Mardi, schedule.Interval{Start: clock(t, "08:00"), End: schedule.Midnight, Label: "Stage"}); err != nil {
		t.Fatalf("AddInterval() error: %v", err)
	}
	reloaded, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := reloaded[schedule.Mardi]; len(got) != 1 || got[0].End != schedule.LastMinute {
		t.Errorf("reloaded MARDI = %v", got)
	}
}

func TestStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "schedule.json"), []byte(`{"LUNDI": [{"start_time": "25:00"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	st := NewStore(store.NewFileStore(dir), "schedule.json")
	_, err := schedule.New(context.Background(), st)
	if !errors.Is(err, schedule.ErrCorruptState) {
		t.Fatalf("schedule.New() error = %v, want ErrCorruptState", err)
	}
}

func TestStoreStaysLoadableAfterOutOfDayAdd(t *testing.T) {
	ctx := context.Background()
	st := NewStore(store.NewFileStore(t.TempDir()), "schedule.json")

	m, err := schedule.New(ctx, st)
	if err != nil {
		t.Fatalf("schedule.New() error: %v", err)
	}
	if err := m.AddInterval(ctx, schedule.Lundi, schedule.Interval{Start: clock(t, "08:00"), End: schedule.Clock(1500), Label: "X"}); !errors.Is(err, schedule.ErrInvalidRange) {
		t.Fatalf("AddInterval(08:00-25:00) error = %v, want ErrInvalidRange", err)
	}
	if err := m.AddInterval(ctx, schedule.Lundi, schedule.Interval{Start: clock(t, "08:00"), End: clock(t, "09:00"), Label: "Math"}); err != nil {
		t.Fatalf("AddInterval() error: %v", err)
	}

	again, err := schedule.New(ctx, st)
	if err != nil {
		t.Fatalf("schedule.New() after rejected add error: %v", err)
	}
	if got := again.Intervals(schedule.Lundi); len(got) != 1 || got[0].Label != "Math" {
		t.Errorf("Intervals(LUNDI) = %v", got)
	}
}
