// Package logger configures the global zerolog logger for the analyzer.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger. Verbose forces debug level;
// otherwise the level comes from LOG_LEVEL (default info). Output goes to
// stderr so analysis results on stdout stay clean.
func Init(verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	levelName := os.Getenv("LOG_LEVEL")
	if levelName == "" {
		levelName = "info"
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// Get returns the global logger instance.
func Get() zerolog.Logger {
	return log.Logger
}
