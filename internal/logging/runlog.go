package logging

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// RunLog is the JSONL log of one CLI invocation. Files live under
// <base>/<project-key>/<run-id>.jsonl so runs of different agendas don't mix.
type RunLog struct {
	Dir    string
	RunID  string
	Path   string
	file   *os.File
	logger *log.Logger
}

// OpenRunLog creates the run log file for the agenda rooted at workDir.
func OpenRunLog(baseDir, workDir string, now time.Time) (*RunLog, error) {
	dir, err := FindLogDir(baseDir, workDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	id := fmt.Sprintf("%s-%d", now.UTC().Format("20060102-150405"), os.Getpid())
	path := filepath.Join(dir, id+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &RunLog{
		Dir:   dir,
		RunID: id,
		Path:  path,
		file:  f,
		logger: log.NewWithOptions(f, log.Options{
			Level:           log.DebugLevel,
			Formatter:       log.JSONFormatter,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
		}),
	}, nil
}

// Logger returns the JSON logger writing to the run file.
func (r *RunLog) Logger() *log.Logger {
	if r == nil {
		return Discard()
	}
	return r.logger
}

func (r *RunLog) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// FindLogDir returns the directory holding run logs for workDir.
func FindLogDir(baseDir, workDir string) (string, error) {
	if baseDir == "" {
		return "", errors.New("log base dir is empty")
	}
	if workDir == "" {
		workDir = "."
	}
	root, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve work dir: %w", err)
	}
	if !filepath.IsAbs(baseDir) {
		baseDir = filepath.Join(root, baseDir)
	}
	return filepath.Join(filepath.Clean(baseDir), projectKey(root)), nil
}

// projectKey is a readable, collision-resistant directory name for root.
func projectKey(root string) string {
	sum := sha1.Sum([]byte(root))
	return slug(filepath.Base(root)) + "-" + hex.EncodeToString(sum[:4])
}

func slug(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	for strings.Contains(mapped, "__") {
		mapped = strings.ReplaceAll(mapped, "__", "_")
	}
	mapped = strings.Trim(mapped, "_")
	if mapped == "" || mapped == "." {
		return "agenda"
	}
	return mapped
}
