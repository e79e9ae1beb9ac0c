package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nibzard/agenda-go/internal/config"
	"github.com/nibzard/agenda-go/internal/reminder"
	"github.com/nibzard/agenda-go/internal/schedule"
	"github.com/nibzard/agenda-go/internal/ui"
)

// weekCommand prints the grid.
func (a *app) weekCommand(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	return a.withManager(ctx, func(m *schedule.Manager) error {
		return ui.RenderWeek(a.out, m, ui.WithDays(a.cfg.VisibleDays()))
	})
}

// slotsCommand prints one slot label per line.
func (a *app) slotsCommand(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	for _, l := range schedule.SlotLabels(a.cfg.DayStartClock(), a.cfg.DayEndClock()) {
		fmt.Fprintln(a.out, l)
	}
	return nil
}

// addCommand adds DAY START END LABEL...; --temporary may appear anywhere.
func (a *app) addCommand(ctx context.Context, args []string) error {
	temporary, args := extractBool(args, "-t", "--temporary", "-temporary")
	if len(args) < 4 {
		return errors.New("usage: agenda add DAY START END LABEL [--temporary]")
	}
	day, err := schedule.ParseDay(args[0])
	if err != nil {
		return rejection(err)
	}
	start, err := schedule.ParseLooseClock(args[1])
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := schedule.ParseLooseClock(args[2])
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	iv := schedule.Interval{
		Start:     start,
		End:       end,
		Label:     strings.Join(args[3:], " "),
		Temporary: temporary,
	}

	return a.withManager(ctx, func(m *schedule.Manager) error {
		if err := m.AddInterval(ctx, day, iv); err != nil {
			a.events.Warn("add rejected", "day", day, "interval", iv.String(), "kind", schedule.Kind(err))
			return rejection(err)
		}
		for _, got := range m.Intervals(day) {
			if got.Start == iv.Start {
				iv = got
				break
			}
		}
		fmt.Fprintf(a.out, "Ajouté: %s %s\n", day, iv)
		return nil
	})
}

// rmCommand removes the interval of DAY starting at START.
func (a *app) rmCommand(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: agenda rm DAY START")
	}
	day, err := schedule.ParseDay(args[0])
	if err != nil {
		return rejection(err)
	}
	start, err := schedule.ParseLooseClock(args[1])
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	return a.withManager(ctx, func(m *schedule.Manager) error {
		removed, err := m.RemoveInterval(ctx, day, start)
		if err != nil {
			return rejection(err)
		}
		if !removed {
			fmt.Fprintf(a.out, "Aucun créneau à %s le %s\n", start, day)
			return nil
		}
		fmt.Fprintf(a.out, "Supprimé: %s %s\n", day, start)
		return nil
	})
}

// cellCommand prints the label shown in SLOT of DAY, or nothing.
func (a *app) cellCommand(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: agenda cell DAY SLOT")
	}
	day, err := schedule.ParseDay(args[0])
	if err != nil {
		return rejection(err)
	}
	slot := args[1]
	return a.withManager(ctx, func(m *schedule.Manager) error {
		if !containsString(m.SlotLabels(), slot) {
			return fmt.Errorf("unknown slot %q (see agenda slots)", slot)
		}
		if label, ok := m.CellContent(day, slot); ok {
			fmt.Fprintln(a.out, label)
		}
		return nil
	})
}

// tuiCommand runs the grid, the reminder poller and, for the file backend,
// a watcher reloading the grid when the schedule file changes.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("agenda tui", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	noRemind := fs.Bool("no-remind", false, "Do not poll for reminders")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	docs, err := a.openDocs(ctx)
	if err != nil {
		return err
	}
	defer docs.Close()
	m, err := a.openManager(ctx, docs)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	tuiCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	opts := []ui.TUIOption{ui.WithVisibleDays(a.cfg.VisibleDays()), ui.WithNow(a.now)}

	if !*noRemind {
		book, err := a.openBook(ctx, docs)
		if err != nil {
			return err
		}
		statusCh := make(chan reminder.Status, 4)
		poller := reminder.New(book, reminder.LogNotifier{Logger: a.events}, a.cfg.ReminderInterval,
			reminder.WithNow(a.now), reminder.WithLogger(a.events))
		g.Go(func() error { return poller.RunWithStatus(tuiCtx, statusCh) })
		opts = append(opts, ui.WithReminders(statusCh))
	}

	if a.cfg.Storage == config.StorageFile {
		w, err := ui.NewWatcher(a.cfg.ScheduleFile)
		if err != nil {
			a.console.Warn("schedule file not watched", "err", err)
		} else {
			changed := make(chan struct{}, 1)
			g.Go(func() error { return w.Run(tuiCtx, changed) })
			opts = append(opts, ui.WithReloads(changed))
		}
	}

	g.Go(func() error {
		defer cancel()
		return ui.RunTUI(tuiCtx, m, opts...)
	})
	return g.Wait()
}

// extractBool removes every occurrence of the given flag names from args
// and reports whether one was present.
func extractBool(args []string, names ...string) (bool, []string) {
	found := false
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if containsString(names, arg) {
			found = true
			continue
		}
		out = append(out, arg)
	}
	return found, out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
