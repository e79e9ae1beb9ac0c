package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// ReminderKind tells what a reminder is about.
type ReminderKind string

const (
	ReminderTask  ReminderKind = "task"
	ReminderEvent ReminderKind = "event"
)

// Reminder is a task that fell due or an event happening today.
type Reminder struct {
	Kind  ReminderKind
	ID    string
	Title string
	// List is the task list, empty for events.
	List string
	Due  time.Time
}

// Describe renders r for a person, with the due time relative to now.
func (r Reminder) Describe(now time.Time) string {
	switch r.Kind {
	case ReminderTask:
		return fmt.Sprintf("Rappel tâche: %s [%s] (%s)", r.Title, r.List, humanize.RelTime(r.Due, now, "ago", "from now"))
	default:
		return fmt.Sprintf("Rappel événement: %s (%s)", r.Title, r.Due.Format("15:04"))
	}
}

// DueReminders reloads the document, collects tasks due at or before now
// and events dated today that were not reminded yet, marks them notified
// and saves once if anything was found. Records whose time does not parse
// are skipped.
func (b *Book) DueReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.reloadLocked(ctx); err != nil {
		return nil, err
	}

	var out []Reminder
	for _, title := range b.file.ListTitles() {
		l := b.file.TaskLists[title]
		for i := range l.Tasks {
			t := &l.Tasks[i]
			if t.Notified {
				continue
			}
			due, err := time.ParseInLocation(TaskTimeLayout, t.Time, now.Location())
			if err != nil || due.After(now) {
				continue
			}
			t.Notified = true
			out = append(out, Reminder{Kind: ReminderTask, ID: t.ID, Title: t.Title, List: title, Due: due})
		}
	}

	today := now.Format(DateLayout)
	for i := range b.file.Events {
		ev := &b.file.Events[i]
		if ev.Notified || ev.Date != today {
			continue
		}
		due, err := time.ParseInLocation(DateLayout+" "+ClockLayout, ev.Date+" "+ev.Time, now.Location())
		if err != nil {
			due, _ = time.ParseInLocation(DateLayout, ev.Date, now.Location())
		}
		ev.Notified = true
		out = append(out, Reminder{Kind: ReminderEvent, ID: ev.ID, Title: ev.Title, Due: due})
	}

	if len(out) == 0 {
		return nil, nil
	}
	for _, r := range out {
		b.logger.Info("reminder", "kind", r.Kind, "title", r.Title)
	}
	return out, b.saveLocked(ctx)
}
