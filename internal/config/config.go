// Package config handles application configuration and setup
package config

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.WarnLevel
	}
	return log.NewWithConfig(cfg)
}

// Error is a configuration error of a project file key.
type Error struct {
	Key  Key
	Line int // line of the project file, 0 if not related to a line
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Line > 0 && e.Key != "":
		return fmt.Sprintf("line %d: key %s: %v", e.Line, e.Key, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	default:
		return fmt.Sprintf("key %s: %v", e.Key, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
