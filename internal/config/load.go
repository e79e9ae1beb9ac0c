package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/nibzard/agenda-go/internal/schedule"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.agenda/agenda.toml or OS-specific config dir)
// 3. Project config file (agenda.toml or .agenda.toml in current directory)
// 4. .env file in current directory
// 5. Environment variables
// 6. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cws := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	// 1. Defaults
	setDefaults(cfg)
	for _, field := range configFields() {
		cws.Sources[field] = SourceDefault
	}

	// 2. User config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, cws.Sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
		cws.Files = append(cws.Files, path)
	}

	// 3. Project config file (overrides user config)
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, cws.Sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
		cws.Files = append(cws.Files, path)
	}

	// 4-5. .env file and environment
	dotenv, envFile, err := readDotEnv()
	if err != nil {
		return nil, err
	}
	if envFile != "" {
		cws.Files = append(cws.Files, envFile)
	}
	if err := loadFromEnv(cfg, newEnvLookup(dotenv), cws.Sources); err != nil {
		return nil, err
	}

	// 6. CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 7. Derived values and validation
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cws, nil
}

// loadConfigFile decodes TOML from path over cfg and records the keys the
// file defines. Unknown keys are an error.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	for _, field := range configFields() {
		if md.IsDefined(field) {
			sources[field] = source
		}
	}
	return nil
}

// GetConfigFile returns the most specific config file that was read.
func (cws *ConfigWithSources) GetConfigFile() string {
	for i := len(cws.Files) - 1; i >= 0; i-- {
		if strings.HasSuffix(cws.Files[i], ".toml") {
			return cws.Files[i]
		}
	}
	return ""
}

// SortedFields returns the tracked field names in alphabetical order.
func (cws *ConfigWithSources) SortedFields() []string {
	fields := make([]string, 0, len(cws.Sources))
	for k := range cws.Sources {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// finalizeConfig computes derived values and validates.
func finalizeConfig(cfg *Config) error {
	cfg.LogDir = expandPath(cfg.LogDir)

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}
	cfg.ScheduleFile = absPath(cfg.ProjectRoot, cfg.ScheduleFile)
	cfg.DataFile = absPath(cfg.ProjectRoot, cfg.DataFile)
	cfg.SQLitePath = absPath(cfg.ProjectRoot, cfg.SQLitePath)
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.Sweep = strings.ToLower(strings.TrimSpace(cfg.Sweep))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := validateStruct(cfg); err != nil {
		return err
	}

	var err error
	if cfg.dayStart, err = schedule.ParseLooseClock(cfg.DayStart); err != nil {
		return fmt.Errorf("day_start: %w", err)
	}
	if cfg.dayEnd, err = schedule.ParseLooseClock(cfg.DayEnd); err != nil {
		return fmt.Errorf("day_end: %w", err)
	}
	if cfg.dayStart.Minute() != 0 || cfg.dayEnd.Minute() != 0 {
		return errors.New("day_start and day_end must be whole hours")
	}
	if cfg.dayEnd != schedule.Midnight && cfg.dayEnd <= cfg.dayStart {
		return fmt.Errorf("day_end %s must be after day_start %s", cfg.DayEnd, cfg.DayStart)
	}

	cfg.hidden = cfg.hidden[:0]
	for _, name := range cfg.HiddenDays {
		d, err := schedule.ParseDay(name)
		if err != nil {
			return fmt.Errorf("hidden_days: %w", err)
		}
		cfg.hidden = append(cfg.hidden, d)
	}
	return nil
}

func absPath(root, p string) string {
	p = expandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s %q must be one of: %s", fe.Field(), fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s %v must be at least %s", fe.Field(), fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("%s fails %s", fe.Field(), fe.Tag())
	}
}
