package config

import (
	"flag"

	"github.com/nibzard/agenda-go/internal/utils"
)

// flagFields maps flag names to the config fields they set.
var flagFields = map[string]string{
	"schedule":          "schedule_file",
	"data":              "data_file",
	"storage":           "storage",
	"sqlite-path":       "sqlite_path",
	"day-start":         "day_start",
	"day-end":           "day_end",
	"sweep":             "sweep",
	"hide":              "hidden_days",
	"reminder-interval": "reminder_interval",
	"log-dir":           "log_dir",
	"log-level":         "log_level",
	"log-format":        "log_format",
	"log-timestamps":    "log_timestamps",
	"log-caller":        "log_caller",
}

// parseFlags defines the global flags on fs, parses args and records every
// flag that was set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("agenda", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.ScheduleFile, "schedule", cfg.ScheduleFile, "Path to the weekly schedule document")
	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Path to the agenda document")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "Storage backend: file or sqlite")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database path (sqlite backend)")
	fs.StringVar(&cfg.DayStart, "day-start", cfg.DayStart, "First hour of the grid")
	fs.StringVar(&cfg.DayEnd, "day-end", cfg.DayEnd, "End of the grid (24:00 for midnight)")
	fs.StringVar(&cfg.Sweep, "sweep", cfg.Sweep, "Expiry sweep: time-of-day or weekday")
	fs.Func("hide", "Comma-separated days to hide from the grid", func(v string) error {
		cfg.HiddenDays = utils.SplitAndTrim(v, ",")
		return nil
	})
	fs.DurationVar(&cfg.ReminderInterval, "reminder-interval", cfg.ReminderInterval, "Reminder polling interval")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text, json, logfmt")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in console logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller in console logs")

	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok && sources != nil {
			sources[field] = SourceFlag
		}
	})
	return nil
}
