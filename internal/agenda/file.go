package agenda

import (
	"errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Layouts of the time strings stored in the document.
const (
	TaskTimeLayout = "2006-01-02 15:04"
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
)

// Sentinel errors returned by Book operations.
var (
	ErrNotFound  = errors.New("agenda: not found")
	ErrDuplicate = errors.New("agenda: already exists")
)

// Task is a to-do item with a due time.
type Task struct {
	ID        string `json:"id" validate:"omitempty,uuid"`
	Title     string `json:"title" validate:"required"`
	Time      string `json:"time" validate:"required,datetime=2006-01-02 15:04"`
	Notified  bool   `json:"notified"`
	Completed bool   `json:"completed"`
}

// TaskList groups tasks under a title.
type TaskList struct {
	Tasks []Task `json:"tasks" validate:"dive"`
}

// Event is a dated calendar entry.
type Event struct {
	ID          string `json:"id" validate:"omitempty,uuid"`
	Title       string `json:"title" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Description string `json:"description,omitempty"`
	Notified    bool   `json:"notified"`
}

// File is the agenda document: task lists, notes and events. Schedule is
// an unused legacy section preserved as found.
type File struct {
	TaskLists map[string]*TaskList `json:"task_lists"`
	Notes     map[string]string    `json:"notes"`
	Schedule  json.RawMessage      `json:"schedule,omitempty"`
	Events    []Event              `json:"events"`
}

// NewFile returns an empty agenda.
func NewFile() *File {
	return &File{
		TaskLists: map[string]*TaskList{},
		Notes:     map[string]string{},
		Schedule:  json.RawMessage("{}"),
		Events:    []Event{},
	}
}

// Decode parses and schema-checks an agenda document. Records without an
// id are given one.
func Decode(data []byte) (*File, error) {
	if errs := validateSchema(bundledSchema, data); len(errs) > 0 {
		return nil, errs[0]
	}
	f := NewFile()
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse agenda: %w", err)
	}
	f.normalize()
	return f, nil
}

// Encode renders f with 2-space indentation and a trailing newline.
func (f *File) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal agenda: %w", err)
	}
	return append(data, '\n'), nil
}

func (f *File) normalize() {
	if f.TaskLists == nil {
		f.TaskLists = map[string]*TaskList{}
	}
	if f.Notes == nil {
		f.Notes = map[string]string{}
	}
	if f.Events == nil {
		f.Events = []Event{}
	}
	for title, l := range f.TaskLists {
		if l == nil {
			l = &TaskList{}
			f.TaskLists[title] = l
		}
		if l.Tasks == nil {
			l.Tasks = []Task{}
		}
		for i := range l.Tasks {
			if l.Tasks[i].ID == "" {
				l.Tasks[i].ID = uuid.NewString()
			}
		}
	}
	for i := range f.Events {
		if f.Events[i].ID == "" {
			f.Events[i].ID = uuid.NewString()
		}
	}
}

// ListTitles returns the task list titles in order.
func (f *File) ListTitles() []string {
	return sortedKeys(f.TaskLists)
}

// NoteTitles returns the note titles in order.
func (f *File) NoteTitles() []string {
	return sortedKeys(f.Notes)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f *File) task(list, id string) (*Task, error) {
	l, ok := f.TaskLists[list]
	if !ok {
		return nil, fmt.Errorf("task list %q: %w", list, ErrNotFound)
	}
	for i := range l.Tasks {
		if l.Tasks[i].ID == id {
			return &l.Tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %q in %q: %w", id, list, ErrNotFound)
}
