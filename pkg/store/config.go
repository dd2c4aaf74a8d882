package store

import (
	"os"

	"github.com/rs/zerolog"
)

// Config holds the parameters a Store is built from: its name, the
// history retention window and the segment interval. StateDir is carried
// here but is not read by NewStore or Open; the store's state directory
// is whatever the Context passed to Open reports.
type Config struct {
	Name             string
	HistoryRetention int64
	SegmentInterval  int64
	StateDir         string
}

// SetLogLevelFromEnv configures the global zerolog level from LOG_LEVEL,
// leaving the default level untouched if unset or unparseable.
func SetLogLevelFromEnv() {
	if level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		zerolog.SetGlobalLevel(level)
	}
}
