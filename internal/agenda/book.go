package agenda

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/agenda-go/internal/store"
)

// DefaultName is the document name used when none is configured.
const DefaultName = "data.json"

// Book owns the agenda document: it loads it from a store, applies changes
// and writes the whole document back after each one. It is safe for
// concurrent use.
type Book struct {
	mu     sync.Mutex
	docs   store.Store
	name   string
	file   *File
	logger *log.Logger
}

// BookOption configures a Book.
type BookOption func(*Book)

// WithLogger sets the logger used for change events.
func WithLogger(l *log.Logger) BookOption {
	return func(b *Book) {
		if l != nil {
			b.logger = l
		}
	}
}

// Open loads the named document. A missing document is an empty agenda.
func Open(ctx context.Context, docs store.Store, name string, opts ...BookOption) (*Book, error) {
	if name == "" {
		name = DefaultName
	}
	b := &Book{docs: docs, name: name, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.Reload(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// Name returns the document name.
func (b *Book) Name() string { return b.name }

// Reload replaces the in-memory agenda with the stored document.
func (b *Book) Reload(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reloadLocked(ctx)
}

func (b *Book) reloadLocked(ctx context.Context) error {
	data, err := b.docs.Read(ctx, b.name)
	if errors.Is(err, store.ErrNotFound) {
		b.file = NewFile()
		return nil
	}
	if err != nil {
		return fmt.Errorf("load agenda: %w", err)
	}
	f, err := Decode(data)
	if err != nil {
		return fmt.Errorf("load agenda %s: %w", b.name, err)
	}
	b.file = f
	return nil
}

func (b *Book) saveLocked(ctx context.Context) error {
	data, err := b.file.Encode()
	if err != nil {
		return err
	}
	if err := b.docs.Write(ctx, b.name, data); err != nil {
		return fmt.Errorf("save agenda: %w", err)
	}
	return nil
}

// update runs fn on the document and saves it when fn succeeds.
func (b *Book) update(ctx context.Context, fn func(f *File) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := fn(b.file); err != nil {
		return err
	}
	return b.saveLocked(ctx)
}

// Snapshot returns a deep copy of the document.
func (b *Book) Snapshot() *File {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.clone()
}

func (f *File) clone() *File {
	out := &File{
		TaskLists: make(map[string]*TaskList, len(f.TaskLists)),
		Notes:     make(map[string]string, len(f.Notes)),
		Schedule:  append([]byte(nil), f.Schedule...),
		Events:    append([]Event(nil), f.Events...),
	}
	for k, l := range f.TaskLists {
		out.TaskLists[k] = &TaskList{Tasks: append([]Task{}, l.Tasks...)}
	}
	for k, v := range f.Notes {
		out.Notes[k] = v
	}
	if out.Events == nil {
		out.Events = []Event{}
	}
	return out
}

func cleanTitle(kind, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Path: kind, Err: errors.New("title is required")}
	}
	return title, nil
}

// CreateList adds an empty task list.
func (b *Book) CreateList(ctx context.Context, title string) error {
	title, err := cleanTitle("task_lists", title)
	if err != nil {
		return err
	}
	return b.update(ctx, func(f *File) error {
		if _, ok := f.TaskLists[title]; ok {
			return fmt.Errorf("task list %q: %w", title, ErrDuplicate)
		}
		f.TaskLists[title] = &TaskList{Tasks: []Task{}}
		b.logger.Info("task list created", "list", title)
		return nil
	})
}

// DeleteList removes a task list and its tasks.
func (b *Book) DeleteList(ctx context.Context, title string) error {
	return b.update(ctx, func(f *File) error {
		if _, ok := f.TaskLists[title]; !ok {
			return fmt.Errorf("task list %q: %w", title, ErrNotFound)
		}
		delete(f.TaskLists, title)
		b.logger.Info("task list deleted", "list", title)
		return nil
	})
}

// Lists returns the task list titles in order.
func (b *Book) Lists() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.ListTitles()
}

// Tasks returns the tasks of a list in insertion order.
func (b *Book) Tasks(list string) ([]Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.file.TaskLists[list]
	if !ok {
		return nil, fmt.Errorf("task list %q: %w", list, ErrNotFound)
	}
	return append([]Task{}, l.Tasks...), nil
}

// AddTask appends a task due at due ("YYYY-MM-DD HH:MM") and returns it.
func (b *Book) AddTask(ctx context.Context, list, title, due string) (Task, error) {
	task := Task{ID: uuid.NewString(), Title: strings.TrimSpace(title), Time: strings.TrimSpace(due)}
	if errs := structErrors("task", task); len(errs) > 0 {
		return Task{}, errs[0]
	}
	err := b.update(ctx, func(f *File) error {
		l, ok := f.TaskLists[list]
		if !ok {
			return fmt.Errorf("task list %q: %w", list, ErrNotFound)
		}
		l.Tasks = append(l.Tasks, task)
		b.logger.Info("task added", "list", list, "title", task.Title, "time", task.Time)
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	return task, nil
}

// ToggleTask flips the completed flag and returns the new value.
func (b *Book) ToggleTask(ctx context.Context, list, id string) (bool, error) {
	var done bool
	err := b.update(ctx, func(f *File) error {
		t, err := f.task(list, id)
		if err != nil {
			return err
		}
		t.Completed = !t.Completed
		done = t.Completed
		return nil
	})
	return done, err
}

// DeleteTask removes a task from a list.
func (b *Book) DeleteTask(ctx context.Context, list, id string) error {
	return b.update(ctx, func(f *File) error {
		if _, err := f.task(list, id); err != nil {
			return err
		}
		l := f.TaskLists[list]
		kept := l.Tasks[:0]
		for _, t := range l.Tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		l.Tasks = kept
		return nil
	})
}

// CreateNote adds an empty note.
func (b *Book) CreateNote(ctx context.Context, title string) error {
	title, err := cleanTitle("notes", title)
	if err != nil {
		return err
	}
	return b.update(ctx, func(f *File) error {
		if _, ok := f.Notes[title]; ok {
			return fmt.Errorf("note %q: %w", title, ErrDuplicate)
		}
		f.Notes[title] = ""
		return nil
	})
}

// SetNote replaces the content of an existing note.
func (b *Book) SetNote(ctx context.Context, title, content string) error {
	return b.update(ctx, func(f *File) error {
		if _, ok := f.Notes[title]; !ok {
			return fmt.Errorf("note %q: %w", title, ErrNotFound)
		}
		f.Notes[title] = content
		return nil
	})
}

// DeleteNote removes a note.
func (b *Book) DeleteNote(ctx context.Context, title string) error {
	return b.update(ctx, func(f *File) error {
		if _, ok := f.Notes[title]; !ok {
			return fmt.Errorf("note %q: %w", title, ErrNotFound)
		}
		delete(f.Notes, title)
		return nil
	})
}

// Note returns the content of a note.
func (b *Book) Note(title string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.file.Notes[title]
	if !ok {
		return "", fmt.Errorf("note %q: %w", title, ErrNotFound)
	}
	return content, nil
}

// Notes returns the note titles in order.
func (b *Book) Notes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.NoteTitles()
}

// AddEvent records an event on date ("YYYY-MM-DD") at clock ("HH:MM").
func (b *Book) AddEvent(ctx context.Context, date, clock, title, description string) (Event, error) {
	ev := Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Date:        strings.TrimSpace(date),
		Time:        strings.TrimSpace(clock),
		Description: strings.TrimSpace(description),
	}
	if ev.Time == "" {
		return Event{}, &ValidationError{Path: "event.time", Err: errors.New("is required")}
	}
	if errs := structErrors("event", ev); len(errs) > 0 {
		return Event{}, errs[0]
	}
	err := b.update(ctx, func(f *File) error {
		f.Events = append(f.Events, ev)
		b.logger.Info("event added", "date", ev.Date, "title", ev.Title)
		return nil
	})
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}

// DeleteEvent removes the event with id.
func (b *Book) DeleteEvent(ctx context.Context, id string) error {
	return b.update(ctx, func(f *File) error {
		for i, ev := range f.Events {
			if ev.ID == id {
				f.Events = append(f.Events[:i], f.Events[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("event %q: %w", id, ErrNotFound)
	})
}

// EventsOn returns the events of a date ("YYYY-MM-DD"), by time.
func (b *Book) EventsOn(date string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Event
	for _, ev := range b.file.Events {
		if ev.Date == date {
			out = append(out, ev)
		}
	}
	sortEvents(out)
	return out
}

// Events returns every event ordered by date then time.
func (b *Book) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := append([]Event{}, b.file.Events...)
	sortEvents(out)
	return out
}

// DatesWithEvents returns the set of days of the given month holding at
// least one event.
func (b *Book) DatesWithEvents(year int, month time.Month) map[int]bool {
	prefix := fmt.Sprintf("%04d-%02d-", year, int(month))
	b.mu.Lock()
	defer b.mu.Unlock()
	days := map[int]bool{}
	for _, ev := range b.file.Events {
		if !strings.HasPrefix(ev.Date, prefix) {
			continue
		}
		if d, err := time.Parse(DateLayout, ev.Date); err == nil {
			days[d.Day()] = true
		}
	}
	return days
}
