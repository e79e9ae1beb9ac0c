// Package config tests configuration loading.
package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/agenda-go/internal/schedule"
)

// isolate points HOME and the working directory at fresh temp dirs and
// clears AGENDA_* variables so no real config leaks into a test.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, b := range envBindings(&Config{}) {
		t.Setenv(EnvPrefix+b.key, "")
	}
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	return home, wd
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("agenda", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestDefaults(t *testing.T) {
	home, work := isolate(t)

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources() error: %v", err)
	}
	cfg := cws.Config

	if want := filepath.Join(work, ".agenda", "schedule.json"); cfg.ScheduleFile != want {
		t.Errorf("ScheduleFile: got %q, want %q", cfg.ScheduleFile, want)
	}
	if want := filepath.Join(work, ".agenda", "data.json"); cfg.DataFile != want {
		t.Errorf("DataFile: got %q, want %q", cfg.DataFile, want)
	}
	if want := filepath.Join(home, ".agenda", "logs"); cfg.LogDir != want {
		t.Errorf("LogDir: got %q, want %q", cfg.LogDir, want)
	}
	if cfg.Storage != StorageFile {
		t.Errorf("Storage: got %q, want %q", cfg.Storage, StorageFile)
	}
	if cfg.DayStartClock() != schedule.NewClock(6, 0) {
		t.Errorf("DayStartClock: got %s, want 06:00", cfg.DayStartClock())
	}
	if cfg.DayEndClock() != schedule.Midnight {
		t.Errorf("DayEndClock: got %s, want midnight", cfg.DayEndClock())
	}
	if cfg.SweepMode() != schedule.SweepTimeOfDay {
		t.Errorf("SweepMode: got %q", cfg.SweepMode())
	}
	if cfg.ReminderInterval != time.Minute {
		t.Errorf("ReminderInterval: got %v, want 1m", cfg.ReminderInterval)
	}
	if len(cfg.VisibleDays()) != 7 {
		t.Errorf("VisibleDays: got %d days, want 7", len(cfg.VisibleDays()))
	}
	for _, field := range configFields() {
		if cws.Sources[field] != SourceDefault {
			t.Errorf("source of %s: got %q, want default", field, cws.Sources[field])
		}
	}
	if len(cws.Files) != 0 {
		t.Errorf("Files: got %v, want none", cws.Files)
	}
}

func TestLayerPriority(t *testing.T) {
	home, work := isolate(t)

	writeFile(t, filepath.Join(home, ".agenda", "agenda.toml"), `
day_start = "07:00"
log_format = "json"
`)
	writeFile(t, filepath.Join(work, "agenda.toml"), `
day_start = "08:00"
sweep = "weekday"
hidden_days = ["dimanche"]
`)
	writeFile(t, filepath.Join(work, ".env"), `
AGENDA_STORAGE=sqlite
AGENDA_LOG_LEVEL=debug
`)
	t.Setenv("AGENDA_LOG_LEVEL", "warn")

	cws, err := LoadWithSources(newFlagSet(), []string{"--day-end", "20h", "week"})
	if err != nil {
		t.Fatalf("LoadWithSources() error: %v", err)
	}
	cfg := cws.Config

	tests := []struct {
		field  string
		got    any
		want   any
		source ConfigSource
	}{
		{"log_format", cfg.LogFormat, "json", SourceUserFile},
		{"day_start", cfg.DayStart, "08:00", SourceProjFile},
		{"sweep", cfg.Sweep, "weekday", SourceProjFile},
		{"storage", cfg.Storage, "sqlite", SourceDotEnv},
		{"log_level", cfg.LogLevel, "warn", SourceEnv},
		{"day_end", cfg.DayEnd, "20h", SourceFlag},
		{"data_file", cfg.DataFile, filepath.Join(work, ".agenda", "data.json"), SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("value: got %v, want %v", tt.got, tt.want)
			}
			if cws.Sources[tt.field] != tt.source {
				t.Errorf("source: got %q, want %q", cws.Sources[tt.field], tt.source)
			}
		})
	}

	if cfg.DayEndClock() != schedule.NewClock(20, 0) {
		t.Errorf("DayEndClock: got %s, want 20:00", cfg.DayEndClock())
	}
	if got := cfg.Hidden(); len(got) != 1 || got[0] != schedule.Dimanche {
		t.Errorf("Hidden: got %v, want [DIMANCHE]", got)
	}
	if got := cws.GetConfigFile(); got != "agenda.toml" {
		t.Errorf("GetConfigFile: got %q, want agenda.toml", got)
	}
	if len(cws.Files) != 3 {
		t.Errorf("Files: got %v, want user, project and .env", cws.Files)
	}
	if os.Getenv("AGENDA_STORAGE") != "" {
		t.Error(".env values leaked into the process environment")
	}
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, ".env"), "AGENDA_SWEEP=weekday\n")
	t.Setenv("AGENDA_SWEEP", "time-of-day")

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources() error: %v", err)
	}
	if cws.Sweep != "time-of-day" || cws.Sources["sweep"] != SourceEnv {
		t.Errorf("sweep = %q from %q, want time-of-day from environment", cws.Sweep, cws.Sources["sweep"])
	}
}

func TestUnknownKeyRejected(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, ".agenda.toml"), "day_strat = \"07:00\"\n")

	_, err := Load(newFlagSet(), nil)
	if err == nil || !strings.Contains(err.Error(), "day_strat") {
		t.Errorf("Load() error = %v, want unknown key day_strat", err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr string
	}{
		{name: "storage", env: map[string]string{"AGENDA_STORAGE": "mongo"}, wantErr: "storage"},
		{name: "sweep", env: map[string]string{"AGENDA_SWEEP": "monthly"}, wantErr: "sweep"},
		{name: "interval", args: []string{"--reminder-interval", "500ms"}, wantErr: "reminder_interval"},
		{name: "bad interval env", env: map[string]string{"AGENDA_REMINDER_INTERVAL": "soon"}, wantErr: "AGENDA_REMINDER_INTERVAL"},
		{name: "half hour", env: map[string]string{"AGENDA_DAY_START": "6:30"}, wantErr: "whole hours"},
		{name: "end before start", args: []string{"--day-start", "10", "--day-end", "9"}, wantErr: "must be after"},
		{name: "bad clock", env: map[string]string{"AGENDA_DAY_END": "late"}, wantErr: "day_end"},
		{name: "hidden day", args: []string{"--hide", "lundi,funday"}, wantErr: "hidden_days"},
		{name: "log level", env: map[string]string{"AGENDA_LOG_LEVEL": "loud"}, wantErr: "log_level"},
		{name: "bool", env: map[string]string{"AGENDA_LOG_CALLER": "maybe"}, wantErr: "AGENDA_LOG_CALLER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(newFlagSet(), tt.args)
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestHiddenDaysFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("AGENDA_HIDDEN_DAYS", "samedi, Dim")

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	got := cfg.VisibleDays()
	if len(got) != 5 || got[0] != schedule.Lundi || got[4] != schedule.Vendredi {
		t.Errorf("VisibleDays: got %v, want LUNDI..VENDREDI", got)
	}
}

func TestSQLitePathRequired(t *testing.T) {
	isolate(t)
	_, err := Load(newFlagSet(), []string{"--storage", "sqlite", "--sqlite-path", ""})
	if err == nil || !strings.Contains(err.Error(), "sqlite_path") {
		t.Errorf("Load() error = %v, want sqlite_path required", err)
	}
}

func TestExampleConfigDecodes(t *testing.T) {
	cfg := &Config{}
	md, err := toml.Decode(ExampleConfig(), cfg)
	if err != nil {
		t.Fatalf("decode example: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		t.Errorf("example has unknown keys: %v", undecoded)
	}
	if cfg.ReminderInterval != time.Minute {
		t.Errorf("reminder_interval: got %v, want 1m", cfg.ReminderInterval)
	}
	for _, field := range configFields() {
		if field == "hidden_days" {
			continue
		}
		if !md.IsDefined(field) {
			t.Errorf("example does not set %s", field)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("AGENDA_TEST_DIR", "/srv/agenda")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/logs", filepath.Join(home, "logs")},
		{"$AGENDA_TEST_DIR/logs", "/srv/agenda/logs"},
		{"/abs/path", "/abs/path"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
