// Package cmd implements the CLI command structure for agenda.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/agenda-go/internal/agenda"
	"github.com/nibzard/agenda-go/internal/config"
	"github.com/nibzard/agenda-go/internal/logging"
	"github.com/nibzard/agenda-go/internal/schedule"
	"github.com/nibzard/agenda-go/internal/store"
	"github.com/nibzard/agenda-go/internal/weekfile"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
	// console logs to errOut; events goes to the run log when one is open.
	console *log.Logger
	events  *log.Logger
	runLog  *logging.RunLog
	now     func() time.Time
}

// Run executes the agenda CLI.
func Run(ctx context.Context, args []string) error {
	return RunWithIO(ctx, args, os.Stdout, os.Stderr)
}

// RunWithIO executes the CLI writing command output to out and diagnostics
// to errOut.
func RunWithIO(ctx context.Context, args []string, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("agenda", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		printUsage(fs, errOut)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config

	a := &app{
		cfg:    cfg,
		out:    out,
		errOut: errOut,
		console: logging.New(errOut, logging.Options{
			Level:      logging.ParseLevel(cfg.LogLevel),
			Formatter:  logging.ParseFormatter(cfg.LogFormat),
			Timestamps: cfg.LogTimestamps,
			Caller:     cfg.LogCaller,
			Prefix:     "agenda",
		}),
		events: logging.Discard(),
		now:    time.Now,
	}

	if *help {
		printUsage(fs, out)
		return nil
	}
	if *showVersion {
		return a.versionCommand()
	}

	// No args or a leading flag means "week".
	subcommand := "week"
	remaining := fs.Args()
	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		subcommand = remaining[0]
		remaining = remaining[1:]
	}

	if recordsRun(subcommand) {
		a.openRunLog(subcommand, remaining)
		defer a.runLog.Close()
	}

	switch subcommand {
	case "week":
		return a.weekCommand(ctx, remaining)
	case "slots":
		return a.slotsCommand(ctx, remaining)
	case "add":
		return a.addCommand(ctx, remaining)
	case "rm":
		return a.rmCommand(ctx, remaining)
	case "cell":
		return a.cellCommand(ctx, remaining)
	case "tui":
		return a.tuiCommand(ctx, remaining)
	case "remind":
		return a.remindCommand(ctx, remaining)
	case "list":
		return a.listCommand(ctx, remaining)
	case "task":
		return a.taskCommand(ctx, remaining)
	case "note":
		return a.noteCommand(ctx, remaining)
	case "event":
		return a.eventCommand(ctx, remaining)
	case "doctor":
		return a.doctorCommand(ctx, remaining)
	case "config":
		return a.configCommand(cws, remaining)
	case "tail":
		return a.tailCommand(ctx, remaining)
	case "version":
		return a.versionCommand()
	case "help":
		printUsage(fs, out)
		return nil
	default:
		fmt.Fprintf(errOut, "Unknown command: %s\n", subcommand)
		printUsage(fs, errOut)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// recordsRun reports whether subcommand touches the documents and so gets
// a run log.
func recordsRun(subcommand string) bool {
	switch subcommand {
	case "doctor", "config", "tail", "version", "help":
		return false
	}
	return true
}

// openRunLog starts the run log. Failing to open it only costs the log.
func (a *app) openRunLog(subcommand string, args []string) {
	rl, err := logging.OpenRunLog(a.cfg.LogDir, a.cfg.ProjectRoot, a.now())
	if err != nil {
		a.console.Warn("run log disabled", "err", err)
		return
	}
	a.runLog = rl
	a.events = rl.Logger()
	a.events.Info("command", "name", subcommand, "args", args, "version", Version)
}

// openDocs opens the configured document store.
func (a *app) openDocs(ctx context.Context) (store.Store, error) {
	docs, err := store.Open(ctx, store.Options{
		Backend:    a.cfg.Storage,
		SQLitePath: a.cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return docs, nil
}

// docName returns the name a document is stored under: its path for the
// file backend, its base name inside the database.
func (a *app) docName(path string) string {
	if a.cfg.Storage == config.StorageSQLite {
		return filepath.Base(path)
	}
	return path
}

func (a *app) openManager(ctx context.Context, docs store.Store) (*schedule.Manager, error) {
	return schedule.New(ctx, weekfile.NewStore(docs, a.docName(a.cfg.ScheduleFile)),
		schedule.WithDayStart(a.cfg.DayStartClock()),
		schedule.WithDayEnd(a.cfg.DayEndClock()),
		schedule.WithSweepMode(a.cfg.SweepMode()),
		schedule.WithNow(a.now),
		schedule.WithLogger(a.events),
	)
}

func (a *app) openBook(ctx context.Context, docs store.Store) (*agenda.Book, error) {
	return agenda.Open(ctx, docs, a.docName(a.cfg.DataFile), agenda.WithLogger(a.events))
}

// withManager opens storage and the schedule, runs fn and closes storage.
func (a *app) withManager(ctx context.Context, fn func(*schedule.Manager) error) error {
	docs, err := a.openDocs(ctx)
	if err != nil {
		return err
	}
	defer docs.Close()
	m, err := a.openManager(ctx, docs)
	if err != nil {
		return err
	}
	return fn(m)
}

// withBook opens storage and the agenda document, runs fn and closes storage.
func (a *app) withBook(ctx context.Context, fn func(*agenda.Book) error) error {
	docs, err := a.openDocs(ctx)
	if err != nil {
		return err
	}
	defer docs.Close()
	b, err := a.openBook(ctx, docs)
	if err != nil {
		return err
	}
	return fn(b)
}

// rejection labels schedule rejections with their kind so the exit message
// names the reason.
func rejection(err error) error {
	if err == nil {
		return nil
	}
	if schedule.IsRejection(err) || errors.Is(err, schedule.ErrCorruptState) {
		return fmt.Errorf("%s: %w", schedule.Kind(err), err)
	}
	return err
}

// versionCommand prints version information.
func (a *app) versionCommand() error {
	fmt.Fprintf(a.out, "agenda version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Agenda - weekly schedule, tasks, notes and events")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  agenda [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Schedule:")
	fmt.Fprintln(w, "  week                         Print the weekly grid (default command)")
	fmt.Fprintln(w, "  slots                        List the slot labels")
	fmt.Fprintln(w, "  add DAY START END LABEL      Add an interval (-t, --temporary for a one-off)")
	fmt.Fprintln(w, "  rm DAY START                 Remove the interval starting at START")
	fmt.Fprintln(w, "  cell DAY SLOT                Print the label shown in a slot")
	fmt.Fprintln(w, "  tui                          Interactive grid with reminders")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Agenda:")
	fmt.Fprintln(w, "  list ls|add TITLE|rm TITLE")
	fmt.Fprintln(w, "  task ls LIST|add LIST DATE TIME TITLE|done LIST ID|rm LIST ID")
	fmt.Fprintln(w, "  note ls|add TITLE|set TITLE TEXT|show TITLE|rm TITLE")
	fmt.Fprintln(w, "  event ls [DATE]|add DATE TIME TITLE [-desc TEXT]|rm ID|month [YYYY-MM]")
	fmt.Fprintln(w, "  remind [--once]              Poll for due tasks and today's events")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Maintenance:")
	fmt.Fprintln(w, "  doctor                       Check config, storage and documents")
	fmt.Fprintln(w, "  config [--sources|--example] Show the effective configuration")
	fmt.Fprintln(w, "  tail [-n N] [-f] [--runs]    Print the latest run log")
	fmt.Fprintln(w, "  version                      Show version information")
	fmt.Fprintln(w, "  help                         Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Days: LUNDI..DIMANCHE, any case, accents optional, 3-letter prefixes accepted.")
	fmt.Fprintln(w, "Times: 8, 8h, 8h30, 08:30; 24 or 24:00 is midnight.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
