package main

import "time"

// Config holds the daemon settings. The shared settings are in internal.Config.
type Config struct {
	RosterFilepath   string        `env:"ROSTER_FILEPATH,required=true" validate:"required"`
	Host             string        `env:"HOST,default=localhost" validate:"required"`
	Port             int           `env:"PORT,default=8080" validate:"gt=0,lt=65536"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"gt=0"`
	ReportInterval   time.Duration `env:"REPORT_INTERVAL,default=1m" validate:"gt=0"`
	ChangelogEntries int           `env:"CHANGELOG_ENTRIES,default=1024" validate:"gt=0"`
}
