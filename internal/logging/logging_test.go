package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if ValidLevel("verbose") {
		t.Error("ValidLevel(verbose) = true")
	}
}

func TestParseFormatter(t *testing.T) {
	if ParseFormatter("json") != log.JSONFormatter {
		t.Error("json")
	}
	if ParseFormatter("logfmt") != log.LogfmtFormatter {
		t.Error("logfmt")
	}
	if ParseFormatter("fancy") != log.TextFormatter {
		t.Error("fallback")
	}
	if ValidFormat("fancy") {
		t.Error("ValidFormat(fancy) = true")
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Level = log.WarnLevel
	logger := New(&buf, opts)

	logger.Info("hidden")
	logger.Error("shown", "day", "LUNDI")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "ERRO") || !strings.Contains(out, "day=LUNDI") {
		t.Errorf("output = %q, want error line with day field", out)
	}
	if !strings.Contains(out, "agenda") {
		t.Errorf("output = %q, want prefix", out)
	}
}

func TestRunLog(t *testing.T) {
	base := t.TempDir()
	work := t.TempDir()
	now := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	rl, err := OpenRunLog(base, work, now)
	if err != nil {
		t.Fatalf("OpenRunLog() error: %v", err)
	}
	rl.Logger().Info("interval added", "day", "LUNDI")
	if err := rl.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if !strings.HasPrefix(rl.RunID, "20240115-080000-") {
		t.Errorf("RunID = %q", rl.RunID)
	}
	data, err := os.ReadFile(rl.Path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"interval added"`) {
		t.Errorf("run log = %q, want JSON line", data)
	}

	dir, err := FindLogDir(base, work)
	if err != nil {
		t.Fatalf("FindLogDir() error: %v", err)
	}
	if dir != rl.Dir {
		t.Errorf("FindLogDir() = %q, want %q", dir, rl.Dir)
	}
	latest, err := FindLatestLog(dir)
	if err != nil || latest != rl.Path {
		t.Errorf("FindLatestLog() = %q, %v, want %q", latest, err, rl.Path)
	}

	if _, err := OpenRunLog("", work, now); err == nil {
		t.Error("OpenRunLog with empty base succeeded")
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"my agenda":  "my_agenda",
		"École 2024": "cole_2024",
		"***":        "agenda",
		"notes.v2":   "notes.v2",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListRunsMissingDir(t *testing.T) {
	runs, err := ListRuns(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(runs) != 0 {
		t.Errorf("ListRuns(missing) = %v, %v", runs, err)
	}
	latest, err := FindLatestLog(filepath.Join(t.TempDir(), "nope"))
	if err != nil || latest != "" {
		t.Errorf("FindLatestLog(missing) = %q, %v", latest, err)
	}
}

func TestTailLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\nfour\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("last lines", func(t *testing.T) {
		var buf bytes.Buffer
		if err := TailLog(context.Background(), &buf, path, 2, false); err != nil {
			t.Fatalf("TailLog() error: %v", err)
		}
		if got := buf.String(); got != "three\nfour\n" {
			t.Errorf("TailLog() = %q", got)
		}
	})

	t.Run("all lines", func(t *testing.T) {
		var buf bytes.Buffer
		if err := TailLog(context.Background(), &buf, path, 0, false); err != nil {
			t.Fatalf("TailLog() error: %v", err)
		}
		if got := strings.Count(buf.String(), "\n"); got != 4 {
			t.Errorf("TailLog() lines = %d, want 4", got)
		}
	})

	t.Run("follow stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		var buf bytes.Buffer
		if err := TailLog(ctx, &buf, path, 1, true); err != nil {
			t.Fatalf("TailLog(follow) error: %v", err)
		}
		if got := buf.String(); got != "four\n" {
			t.Errorf("TailLog(follow) = %q", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if err := TailLog(context.Background(), &bytes.Buffer{}, path+".nope", 1, false); err == nil {
			t.Error("TailLog(missing) succeeded")
		}
	})
}
