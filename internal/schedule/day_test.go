package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		want    Day
		wantErr bool
	}{
		{in: "LUNDI", want: Lundi},
		{in: "lundi", want: Lundi},
		{in: " Mercredi ", want: Mercredi},
		{in: "mércredi", want: Mercredi},
		{in: "dim", want: Dimanche},
		{in: "Mar", want: Mardi},
		{in: "mer", want: Mercredi},
		{in: "monday", wantErr: true},
		{in: "lu", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDay(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDay) {
					t.Fatalf("ParseDay(%q) error = %v, want ErrInvalidDay", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDay(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDay(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDayOf(t *testing.T) {
	tests := []struct {
		w    time.Weekday
		want Day
	}{
		{time.Monday, Lundi},
		{time.Wednesday, Mercredi},
		{time.Saturday, Samedi},
		{time.Sunday, Dimanche},
	}
	for _, tt := range tests {
		if got := DayOf(tt.w); got != tt.want {
			t.Errorf("DayOf(%v) = %q, want %q", tt.w, got, tt.want)
		}
	}
}

func TestDaysOrderAndShort(t *testing.T) {
	got := Days()
	if len(got) != 7 || got[0] != Lundi || got[6] != Dimanche {
		t.Fatalf("Days() = %v", got)
	}
	got[0] = "X"
	if Days()[0] != Lundi {
		t.Error("Days() must return a copy")
	}
	if s := Mercredi.Short(); s != "Mer" {
		t.Errorf("Short() = %q, want %q", s, "Mer")
	}
	if Day("FUNDAY").Valid() {
		t.Error("FUNDAY must not be valid")
	}
}

func TestWeekClone(t *testing.T) {
	w := NewWeek()
	w[Lundi] = append(w[Lundi], Interval{Start: NewClock(8, 0), End: NewClock(9, 0), Label: "Math"})
	c := w.Clone()
	c[Lundi][0].Label = "changed"
	if w[Lundi][0].Label != "Math" {
		t.Error("Clone() must not share interval storage")
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}
	if got := len(w.Schedules()); got != 7 {
		t.Errorf("Schedules() len = %d, want 7", got)
	}
}
