package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"

	"github.com/nibzard/agenda-go/internal/agenda"
	"github.com/nibzard/agenda-go/internal/config"
	"github.com/nibzard/agenda-go/internal/logging"
	"github.com/nibzard/agenda-go/internal/schedule"
	"github.com/nibzard/agenda-go/internal/store"
	"github.com/nibzard/agenda-go/internal/weekfile"
)

// doctorCommand checks the configuration, the storage backend, both
// documents and the log directory.
func (a *app) doctorCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("agenda doctor", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	verbose := fs.Bool("v", false, "Verbose output")
	schemaPath := fs.String("schema", "", "Validate the agenda document against this schema file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := a.out
	cfg := a.cfg
	fmt.Fprintln(w, "Agenda Doctor")
	fmt.Fprintln(w, "=============")
	fmt.Fprintln(w)

	allOK := true
	fail := func(format string, args ...any) {
		fmt.Fprintf(w, "  ❌ "+format+"\n", args...)
		allOK = false
	}

	fmt.Fprintf(w, "Project root: %s\n", cfg.ProjectRoot)
	if _, err := os.Stat(cfg.ProjectRoot); err != nil {
		fail("Error: %v", err)
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config:")
	fmt.Fprintf(w, "  ✅ Window: %s-%s (%d slots)\n", cfg.DayStartClock(), cfg.DayEndClock(),
		len(schedule.SlotLabels(cfg.DayStartClock(), cfg.DayEndClock())))
	fmt.Fprintf(w, "  ✅ Sweep: %s\n", cfg.Sweep)
	if hidden := cfg.Hidden(); len(hidden) > 0 {
		names := make([]string, len(hidden))
		for i, d := range hidden {
			names[i] = string(d)
		}
		fmt.Fprintf(w, "  ✅ Hidden days: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "  ✅ Reminders every %s\n", cfg.ReminderInterval)
	if *verbose {
		fmt.Fprintf(w, "  ✅ Logging: %s, %s\n", cfg.LogLevel, cfg.LogFormat)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Storage: %s\n", cfg.Storage)
	docs, err := a.openDocs(ctx)
	if err != nil {
		fail("%v", err)
		fmt.Fprintln(w)
	} else {
		defer docs.Close()
		if cfg.Storage == config.StorageSQLite {
			fmt.Fprintf(w, "  ✅ Database: %s\n", cfg.SQLitePath)
		} else {
			fmt.Fprintln(w, "  ✅ OK")
		}
		fmt.Fprintln(w)

		fmt.Fprintf(w, "Schedule: %s\n", cfg.ScheduleFile)
		a.checkSchedule(ctx, docs, fail)
		fmt.Fprintln(w)

		fmt.Fprintf(w, "Agenda: %s\n", cfg.DataFile)
		a.checkAgenda(ctx, docs, *schemaPath, fail)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Log directory: %s\n", cfg.LogDir)
	if err := checkWritable(cfg.LogDir, cfg.ProjectRoot); err != nil {
		fail("%v", err)
	} else {
		fmt.Fprintln(w, "  ✅ Writable")
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed. Agenda may not function correctly.")
	return errors.New("doctor checks failed")
}

// checkSchedule validates the stored schedule document. A missing document
// is fine: it is created on first use.
func (a *app) checkSchedule(ctx context.Context, docs store.Store, fail func(string, ...any)) {
	name := a.docName(a.cfg.ScheduleFile)
	data, err := docs.Read(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintln(a.out, "  ⚠️  Not created yet")
		return
	}
	if err != nil {
		fail("%v", err)
		return
	}
	if errs := weekfile.Validate(data); len(errs) > 0 {
		for _, e := range errs {
			fail("%v", e)
		}
		return
	}
	week, err := weekfile.Decode(name, data)
	if err != nil {
		fail("%s: %v", schedule.Kind(err), err)
		return
	}
	fmt.Fprintf(a.out, "  ✅ %s (%s)\n", pluralize(week.Len(), "interval"), humanize.Bytes(uint64(len(data))))
}

func (a *app) checkAgenda(ctx context.Context, docs store.Store, schemaPath string, fail func(string, ...any)) {
	data, err := docs.Read(ctx, a.docName(a.cfg.DataFile))
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintln(a.out, "  ⚠️  Not created yet")
		return
	}
	if err != nil {
		fail("%v", err)
		return
	}
	result := agenda.ValidateDocument(data, agenda.ValidationOptions{SchemaPath: schemaPath})
	for _, warning := range result.Warnings {
		fmt.Fprintf(a.out, "  ⚠️  %s\n", warning)
	}
	if !result.Valid {
		for _, e := range result.Errors {
			fail("%v", e)
		}
		return
	}
	fmt.Fprintf(a.out, "  ✅ Valid (%s)\n", humanize.Bytes(uint64(len(data))))
}

// checkWritable creates the run log directory of workDir and a scratch
// file inside it.
func checkWritable(baseDir, workDir string) error {
	dir, err := logging.FindLogDir(baseDir, workDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", dir, err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// configCommand prints the effective configuration as TOML, each value
// with its source, or an example config file.
func (a *app) configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("agenda config", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	sources := fs.Bool("sources", false, "Show where each value came from")
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if *example {
		fmt.Fprint(a.out, config.ExampleConfig())
		return nil
	}
	if !*sources {
		return toml.NewEncoder(a.out).Encode(cws.Config)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cws.Config); err != nil {
		return err
	}
	values := map[string]any{}
	if _, err := toml.Decode(buf.String(), &values); err != nil {
		return err
	}
	for _, field := range cws.SortedFields() {
		v, ok := values[field]
		if !ok {
			v = ""
		}
		fmt.Fprintf(a.out, "%s = %v (%s)\n", field, v, cws.Sources[field])
	}
	if file := cws.GetConfigFile(); file != "" {
		fmt.Fprintf(a.out, "\nConfig file: %s\n", file)
	}
	return nil
}

// tailCommand prints the latest run log of this project, or lists the runs.
func (a *app) tailCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("agenda tail", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	runs := fs.Bool("runs", false, "List run logs instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(a.cfg.LogDir, a.cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *runs {
		list, err := logging.ListRuns(logDir)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(a.out, "No log files found.")
			return nil
		}
		for _, r := range list {
			fmt.Fprintf(a.out, "%s  %8s  %s\n", r.ID, humanize.Bytes(uint64(r.Size)), humanize.Time(r.ModTime))
		}
		return nil
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(a.out, "No log files found.")
		return nil
	}

	fmt.Fprintf(a.errOut, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(a.errOut, "(Ctrl+C to stop)")
	}
	return logging.TailLog(ctx, a.out, logPath, *n, *follow)
}
