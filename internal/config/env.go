package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/nibzard/agenda-go/internal/utils"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "AGENDA_"

// DotEnvFile is read from the current directory when present.
const DotEnvFile = ".env"

// readDotEnv parses ./.env without touching the process environment.
func readDotEnv() (map[string]string, string, error) {
	if _, err := os.Stat(DotEnvFile); err != nil {
		return nil, "", nil
	}
	vals, err := godotenv.Read(DotEnvFile)
	if err != nil {
		return nil, "", fmt.Errorf("loading %s: %w", DotEnvFile, err)
	}
	return vals, DotEnvFile, nil
}

// envLookup resolves a variable from the process environment first and
// falls back to the .env values.
type envLookup func(key string) (string, ConfigSource, bool)

func newEnvLookup(dotenv map[string]string) envLookup {
	return func(key string) (string, ConfigSource, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, SourceEnv, true
		}
		if v, ok := dotenv[key]; ok && v != "" {
			return v, SourceDotEnv, true
		}
		return "", "", false
	}
}

// envBinding ties an environment variable to a config field.
type envBinding struct {
	key   string
	field string
	set   func(string) error
}

func envBindings(cfg *Config) []envBinding {
	str := func(dst *string) func(string) error {
		return func(v string) error { *dst = v; return nil }
	}
	boolean := func(dst *bool) func(string) error {
		return func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*dst = b
			return nil
		}
	}
	return []envBinding{
		{"SCHEDULE", "schedule_file", str(&cfg.ScheduleFile)},
		{"DATA", "data_file", str(&cfg.DataFile)},
		{"STORAGE", "storage", str(&cfg.Storage)},
		{"SQLITE_PATH", "sqlite_path", str(&cfg.SQLitePath)},
		{"DAY_START", "day_start", str(&cfg.DayStart)},
		{"DAY_END", "day_end", str(&cfg.DayEnd)},
		{"SWEEP", "sweep", str(&cfg.Sweep)},
		{"HIDDEN_DAYS", "hidden_days", func(v string) error {
			cfg.HiddenDays = utils.SplitAndTrim(v, ",")
			return nil
		}},
		{"REMINDER_INTERVAL", "reminder_interval", func(v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			cfg.ReminderInterval = d
			return nil
		}},
		{"LOG_DIR", "log_dir", str(&cfg.LogDir)},
		{"LOG_LEVEL", "log_level", str(&cfg.LogLevel)},
		{"LOG_FORMAT", "log_format", str(&cfg.LogFormat)},
		{"LOG_TIMESTAMPS", "log_timestamps", boolean(&cfg.LogTimestamps)},
		{"LOG_CALLER", "log_caller", boolean(&cfg.LogCaller)},
	}
}

// loadFromEnv overrides config from AGENDA_* variables.
func loadFromEnv(cfg *Config, lookup envLookup, sources map[string]ConfigSource) error {
	for _, b := range envBindings(cfg) {
		key := EnvPrefix + b.key
		v, source, ok := lookup(key)
		if !ok {
			continue
		}
		if err := b.set(v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		sources[b.field] = source
	}
	return nil
}
