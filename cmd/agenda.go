package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nibzard/agenda-go/internal/agenda"
	"github.com/nibzard/agenda-go/internal/reminder"
	"github.com/nibzard/agenda-go/internal/ui"
)

// shortID is how many characters of an id are printed.
const shortID = 8

// listCommand manages task lists: ls, add TITLE, rm TITLE.
func (a *app) listCommand(ctx context.Context, args []string) error {
	action, rest := splitAction(args, "ls")
	return a.withBook(ctx, func(b *agenda.Book) error {
		switch action {
		case "ls":
			lists := b.Lists()
			if len(lists) == 0 {
				fmt.Fprintln(a.out, "Aucune liste.")
				return nil
			}
			for _, title := range lists {
				tasks, err := b.Tasks(title)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s (%d)\n", title, len(tasks))
			}
			return nil
		case "add":
			title, err := joinedTitle(rest, "usage: agenda list add TITLE")
			if err != nil {
				return err
			}
			if err := b.CreateList(ctx, title); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Liste créée: %s\n", title)
			return nil
		case "rm":
			title, err := joinedTitle(rest, "usage: agenda list rm TITLE")
			if err != nil {
				return err
			}
			if err := b.DeleteList(ctx, title); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Liste supprimée: %s\n", title)
			return nil
		default:
			return fmt.Errorf("unknown list action: %s", action)
		}
	})
}

// taskCommand manages the tasks of a list.
func (a *app) taskCommand(ctx context.Context, args []string) error {
	action, rest := splitAction(args, "")
	if action == "" {
		return errors.New("usage: agenda task ls|add|done|rm LIST ...")
	}
	return a.withBook(ctx, func(b *agenda.Book) error {
		switch action {
		case "ls":
			if len(rest) != 1 {
				return errors.New("usage: agenda task ls LIST")
			}
			tasks, err := b.Tasks(rest[0])
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(a.out, "Aucune tâche.")
				return nil
			}
			now := a.now()
			for _, t := range tasks {
				fmt.Fprintln(a.out, formatTask(t, now))
			}
			return nil
		case "add":
			if len(rest) < 4 {
				return errors.New("usage: agenda task add LIST YYYY-MM-DD HH:MM TITLE")
			}
			t, err := b.AddTask(ctx, rest[0], strings.Join(rest[3:], " "), rest[1]+" "+rest[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Tâche ajoutée: %s %s (%s)\n", abbrev(t.ID), t.Title, t.Time)
			return nil
		case "done", "rm":
			if len(rest) != 2 {
				return fmt.Errorf("usage: agenda task %s LIST ID", action)
			}
			list := rest[0]
			tasks, err := b.Tasks(list)
			if err != nil {
				return err
			}
			ids := make([]string, len(tasks))
			for i, t := range tasks {
				ids[i] = t.ID
			}
			id, err := resolveID(ids, rest[1])
			if err != nil {
				return err
			}
			if action == "rm" {
				if err := b.DeleteTask(ctx, list, id); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Tâche supprimée: %s\n", abbrev(id))
				return nil
			}
			done, err := b.ToggleTask(ctx, list, id)
			if err != nil {
				return err
			}
			state := "à faire"
			if done {
				state = "terminée"
			}
			fmt.Fprintf(a.out, "Tâche %s: %s\n", abbrev(id), state)
			return nil
		default:
			return fmt.Errorf("unknown task action: %s", action)
		}
	})
}

func formatTask(t agenda.Task, now time.Time) string {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	when := t.Time
	if due, err := time.ParseInLocation(agenda.TaskTimeLayout, t.Time, now.Location()); err == nil {
		when += " (" + humanize.RelTime(due, now, "ago", "from now") + ")"
	}
	return fmt.Sprintf("%s %s %s  %s", mark, abbrev(t.ID), t.Title, when)
}

// noteCommand manages notes: ls, add TITLE, set TITLE TEXT, show TITLE, rm TITLE.
func (a *app) noteCommand(ctx context.Context, args []string) error {
	action, rest := splitAction(args, "ls")
	return a.withBook(ctx, func(b *agenda.Book) error {
		switch action {
		case "ls":
			notes := b.Notes()
			if len(notes) == 0 {
				fmt.Fprintln(a.out, "Aucune note.")
				return nil
			}
			for _, title := range notes {
				fmt.Fprintln(a.out, title)
			}
			return nil
		case "add":
			title, err := joinedTitle(rest, "usage: agenda note add TITLE")
			if err != nil {
				return err
			}
			if err := b.CreateNote(ctx, title); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Note créée: %s\n", title)
			return nil
		case "set":
			if len(rest) < 2 {
				return errors.New("usage: agenda note set TITLE TEXT")
			}
			if err := b.SetNote(ctx, rest[0], strings.Join(rest[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Note enregistrée: %s\n", rest[0])
			return nil
		case "show":
			title, err := joinedTitle(rest, "usage: agenda note show TITLE")
			if err != nil {
				return err
			}
			content, err := b.Note(title)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, content)
			return nil
		case "rm":
			title, err := joinedTitle(rest, "usage: agenda note rm TITLE")
			if err != nil {
				return err
			}
			if err := b.DeleteNote(ctx, title); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Note supprimée: %s\n", title)
			return nil
		default:
			return fmt.Errorf("unknown note action: %s", action)
		}
	})
}

// eventCommand manages events: ls [DATE], add DATE TIME TITLE [-desc TEXT],
// rm ID, month [YYYY-MM].
func (a *app) eventCommand(ctx context.Context, args []string) error {
	action, rest := splitAction(args, "ls")
	return a.withBook(ctx, func(b *agenda.Book) error {
		switch action {
		case "ls":
			var events []agenda.Event
			switch len(rest) {
			case 0:
				events = b.Events()
			case 1:
				if _, err := time.Parse(agenda.DateLayout, rest[0]); err != nil {
					return fmt.Errorf("date %q: expected YYYY-MM-DD", rest[0])
				}
				events = b.EventsOn(rest[0])
			default:
				return errors.New("usage: agenda event ls [YYYY-MM-DD]")
			}
			if len(events) == 0 {
				fmt.Fprintln(a.out, "Aucun événement.")
				return nil
			}
			for _, ev := range events {
				line := fmt.Sprintf("%s %s %s %s", abbrev(ev.ID), ev.Date, ev.Time, ev.Title)
				if ev.Description != "" {
					line += " - " + ev.Description
				}
				fmt.Fprintln(a.out, line)
			}
			return nil
		case "add":
			fs := flag.NewFlagSet("agenda event add", flag.ContinueOnError)
			fs.SetOutput(a.errOut)
			desc := fs.String("desc", "", "Description")
			if err := fs.Parse(moveFlagsFirst(rest, "-desc", "--desc")); err != nil {
				return err
			}
			pos := fs.Args()
			if len(pos) < 3 {
				return errors.New("usage: agenda event add YYYY-MM-DD HH:MM TITLE [-desc TEXT]")
			}
			ev, err := b.AddEvent(ctx, pos[0], pos[1], strings.Join(pos[2:], " "), *desc)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Événement ajouté: %s %s %s %s\n", abbrev(ev.ID), ev.Date, ev.Time, ev.Title)
			return nil
		case "rm":
			if len(rest) != 1 {
				return errors.New("usage: agenda event rm ID")
			}
			events := b.Events()
			ids := make([]string, len(events))
			for i, ev := range events {
				ids[i] = ev.ID
			}
			id, err := resolveID(ids, rest[0])
			if err != nil {
				return err
			}
			if err := b.DeleteEvent(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Événement supprimé: %s\n", abbrev(id))
			return nil
		case "month":
			now := a.now()
			year, month := now.Year(), now.Month()
			switch len(rest) {
			case 0:
			case 1:
				t, err := time.Parse("2006-01", rest[0])
				if err != nil {
					return fmt.Errorf("month %q: expected YYYY-MM", rest[0])
				}
				year, month = t.Year(), t.Month()
			default:
				return errors.New("usage: agenda event month [YYYY-MM]")
			}
			return ui.RenderMonth(a.out, b.MonthView(year, month))
		default:
			return fmt.Errorf("unknown event action: %s", action)
		}
	})
}

// remindCommand polls for reminders until interrupted, or once.
func (a *app) remindCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("agenda remind", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	once := fs.Bool("once", false, "Check once and exit")
	interval := fs.Duration("interval", a.cfg.ReminderInterval, "Polling interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return a.withBook(ctx, func(b *agenda.Book) error {
		notifier := reminder.WriterNotifier{W: a.out, Now: a.now}
		poller := reminder.New(b, notifier, *interval, reminder.WithNow(a.now), reminder.WithLogger(a.console))
		if !*once {
			fmt.Fprintf(a.errOut, "Rappels toutes les %s (Ctrl+C pour arrêter)\n", poller.Interval())
			return poller.Run(ctx)
		}
		rems, err := poller.RunOnce(ctx)
		if err != nil {
			return err
		}
		if len(rems) == 0 {
			fmt.Fprintln(a.out, "Aucun rappel.")
		}
		return nil
	})
}

// splitAction returns the first argument as the action, or def when args
// is empty.
func splitAction(args []string, def string) (string, []string) {
	if len(args) == 0 {
		return def, nil
	}
	return args[0], args[1:]
}

func joinedTitle(args []string, usage string) (string, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return "", errors.New(usage)
	}
	return title, nil
}

func abbrev(id string) string {
	if len(id) > shortID {
		return id[:shortID]
	}
	return id
}

// resolveID returns the single id in ids starting with prefix.
func resolveID(ids []string, prefix string) (string, error) {
	if prefix == "" {
		return "", errors.New("empty id")
	}
	var match string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", fmt.Errorf("id %q is ambiguous", prefix)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("id %q: %w", prefix, agenda.ErrNotFound)
	}
	return match, nil
}

// moveFlagsFirst moves the named value flags and their values ahead of the
// positional arguments so flag.Parse sees them wherever they were typed.
func moveFlagsFirst(args []string, names ...string) []string {
	var flags, rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, _, hasValue := strings.Cut(arg, "=")
		if !containsString(names, name) {
			rest = append(rest, arg)
			continue
		}
		flags = append(flags, arg)
		if !hasValue && i+1 < len(args) {
			flags = append(flags, args[i+1])
			i++
		}
	}
	return append(flags, rest...)
}
