// Package logger implements the ports.Logger abstraction on top of
// charmbracelet/log.
package logger

import (
	"os"
	"sort"

	charmlog "github.com/charmbracelet/log"
)

// CharmLogger routes structured log records to stderr.
type CharmLogger struct {
	backend *charmlog.Logger
}

// New creates a logger. When verbose is false only warnings and errors are
// emitted, keeping the simulated terminals free of diagnostic noise.
func New(verbose bool) *CharmLogger {
	backend := charmlog.New(os.Stderr)
	backend.SetReportTimestamp(false)
	if verbose {
		backend.SetLevel(charmlog.DebugLevel)
	} else {
		backend.SetLevel(charmlog.WarnLevel)
	}
	return &CharmLogger{backend: backend}
}

func (l *CharmLogger) Debug(msg string, fields map[string]interface{}) {
	l.backend.Debug(msg, flatten(fields)...)
}

func (l *CharmLogger) Info(msg string, fields map[string]interface{}) {
	l.backend.Info(msg, flatten(fields)...)
}

func (l *CharmLogger) Warn(msg string, fields map[string]interface{}) {
	l.backend.Warn(msg, flatten(fields)...)
}

func (l *CharmLogger) Error(msg string, err error, fields map[string]interface{}) {
	keyvals := flatten(fields)
	if err != nil {
		keyvals = append(keyvals, "error", err)
	}
	l.backend.Error(msg, keyvals...)
}

// flatten converts a field map into the key/value pairs charmbracelet/log
// expects, sorted so output is stable.
func flatten(fields map[string]interface{}) []interface{} {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	keyvals := make([]interface{}, 0, len(fields)*2)
	for _, key := range keys {
		keyvals = append(keyvals, key, fields[key])
	}
	return keyvals
}
