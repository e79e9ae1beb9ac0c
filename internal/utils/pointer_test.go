package utils

import (
	"reflect"
	"testing"
)

func TestPointerSegments(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"#", nil},
		{"/LUNDI/0/start_time", []string{"LUNDI", "0", "start_time"}},
		{"#/notes/a~1b", []string{"notes", "a/b"}},
		{"/x/~0home", []string{"x", "~home"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := PointerSegments(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PointerSegments(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPointerPath(t *testing.T) {
	tests := map[string]string{
		"":                                "",
		"/LUNDI/0/start_time":             "LUNDI[0].start_time",
		"/task_lists/Maison/tasks/2/time": "task_lists.Maison.tasks[2].time",
		"/events/1":                       "events[1]",
	}
	for in, want := range tests {
		if got := PointerPath(in); got != want {
			t.Errorf("PointerPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := SplitAndTrim(" a, b ,,c ", ",")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitAndTrim() = %v, want %v", got, want)
	}
	if got := SplitAndTrim("  ", ","); got != nil {
		t.Errorf("SplitAndTrim(blank) = %v, want nil", got)
	}
}
