// Package appdir names the files kept in the .agenda state directory.
package appdir

import "path/filepath"

const (
	// Dir is the name of the agenda state directory.
	Dir = ".agenda"

	// DefaultScheduleFile is the weekly schedule document (inside .agenda).
	DefaultScheduleFile = "schedule.json"

	// DefaultDataFile is the agenda document holding tasks, notes and events.
	DefaultDataFile = "data.json"

	// DefaultDBFile is the SQLite database used by the sqlite backend.
	DefaultDBFile = "agenda.db"

	// DefaultConfigFile is the config file name.
	DefaultConfigFile = "agenda.toml"

	// LogsDir is the run log directory under the user state directory.
	LogsDir = "logs"
)

// SchedulePath returns the schedule document path within a work directory.
func SchedulePath(workDir string) string {
	return joinPath(workDir, DefaultScheduleFile)
}

// DataPath returns the agenda document path within a work directory.
func DataPath(workDir string) string {
	return joinPath(workDir, DefaultDataFile)
}

// DBPath returns the SQLite database path within a work directory.
func DBPath(workDir string) string {
	return joinPath(workDir, DefaultDBFile)
}

// DirPath returns the .agenda directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

// UserConfigPath returns ~/.agenda/agenda.toml for the given home directory.
func UserConfigPath(home string) string {
	return filepath.Join(home, Dir, DefaultConfigFile)
}

// UserLogDir returns ~/.agenda/logs for the given home directory.
func UserLogDir(home string) string {
	return filepath.Join(home, Dir, LogsDir)
}

func joinPath(workDir, file string) string {
	return filepath.Join(DirPath(workDir), file)
}
