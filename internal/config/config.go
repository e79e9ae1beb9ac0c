package config

import (
	"time"

	"github.com/nibzard/agenda-go/internal/appdir"
	"github.com/nibzard/agenda-go/internal/schedule"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceDotEnv   ConfigSource = "dotenv file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources wraps Config with source tracking information.
type ConfigWithSources struct {
	*Config
	Sources map[string]ConfigSource
	// Files lists the config and .env files that were read, in order.
	Files []string
}

// Storage backends.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Defaults.
const (
	DefaultStorage          = StorageFile
	DefaultDayStart         = "06:00"
	DefaultDayEnd           = "24:00"
	DefaultSweep            = string(schedule.SweepTimeOfDay)
	DefaultReminderInterval = time.Minute
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultLogDir           = "~/" + appdir.Dir + "/" + appdir.LogsDir
)

var (
	DefaultScheduleFile = appdir.SchedulePath("")
	DefaultDataFile     = appdir.DataPath("")
	DefaultSQLitePath   = appdir.DBPath("")
)

// Config holds all configuration values.
type Config struct {
	// Documents
	ScheduleFile string `toml:"schedule_file" validate:"required"`
	DataFile     string `toml:"data_file" validate:"required"`

	// Storage backend: file or sqlite
	Storage    string `toml:"storage" validate:"oneof=file sqlite"`
	SQLitePath string `toml:"sqlite_path" validate:"required_if=Storage sqlite"`

	// Schedule window and sweep
	DayStart string `toml:"day_start" validate:"required"`
	DayEnd   string `toml:"day_end" validate:"required"`
	Sweep    string `toml:"sweep" validate:"oneof=time-of-day weekday"`

	// Days omitted from the grid
	HiddenDays []string `toml:"hidden_days"`

	// Reminders
	ReminderInterval time.Duration `toml:"reminder_interval" validate:"min=1s"`

	// Logging
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level" validate:"oneof=debug info warn error fatal"`
	LogFormat     string `toml:"log_format" validate:"oneof=text json logfmt"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Derived values (not in config file)
	ProjectRoot string `toml:"-"`

	dayStart schedule.Clock
	dayEnd   schedule.Clock
	hidden   []schedule.Day
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"schedule_file",
		"data_file",
		"storage",
		"sqlite_path",
		"day_start",
		"day_end",
		"sweep",
		"hidden_days",
		"reminder_interval",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.ScheduleFile = DefaultScheduleFile
	cfg.DataFile = DefaultDataFile
	cfg.Storage = DefaultStorage
	cfg.SQLitePath = DefaultSQLitePath
	cfg.DayStart = DefaultDayStart
	cfg.DayEnd = DefaultDayEnd
	cfg.Sweep = DefaultSweep
	cfg.HiddenDays = nil
	cfg.ReminderInterval = DefaultReminderInterval
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// DayStartClock returns day_start parsed during loading.
func (c *Config) DayStartClock() schedule.Clock { return c.dayStart }

// DayEndClock returns day_end parsed during loading; 24:00 is schedule.Midnight.
func (c *Config) DayEndClock() schedule.Clock { return c.dayEnd }

// SweepMode returns the configured sweep mode.
func (c *Config) SweepMode() schedule.SweepMode { return schedule.SweepMode(c.Sweep) }

// Hidden returns the days omitted from the grid.
func (c *Config) Hidden() []schedule.Day {
	return append([]schedule.Day(nil), c.hidden...)
}

// VisibleDays returns the week minus the hidden days, Monday first.
func (c *Config) VisibleDays() []schedule.Day {
	hidden := make(map[schedule.Day]bool, len(c.hidden))
	for _, d := range c.hidden {
		hidden[d] = true
	}
	var out []schedule.Day
	for _, d := range schedule.Days() {
		if !hidden[d] {
			out = append(out, d)
		}
	}
	return out
}
