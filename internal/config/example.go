package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# Agenda configuration file
# Values can be overridden by a .env file, AGENDA_* environment variables or CLI flags

# Weekly schedule document (relative to project root)
schedule_file = ".agenda/schedule.json"

# Tasks, notes and events
data_file = ".agenda/data.json"

# Storage backend: "file" keeps each document in its own file,
# "sqlite" keeps both in one database
storage = "file"
sqlite_path = ".agenda/agenda.db"

# Grid window, whole hours; "24:00" ends the day at midnight
day_start = "06:00"
day_end = "24:00"

# Expiry sweep for temporary intervals:
#   "time-of-day" compares the time only, whatever the day
#   "weekday" also expires intervals on earlier days of the week
sweep = "time-of-day"

# Days left out of the grid
# hidden_days = ["SAMEDI", "DIMANCHE"]

# How often due tasks and events are checked
reminder_interval = "1m"

# Run logs (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.agenda/logs"

# Console logging
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
