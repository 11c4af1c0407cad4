package logging

import (
	"io"
	"os"

	hclog "github.com/hashicorp/go-hclog"

	"vecino/internal/platform/config"
)

// New builds the root logger. Unknown levels fall back to warn.
func New(cfg config.Log, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}
	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Warn
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "vecino",
		Level:      level,
		Output:     out,
		JSONFormat: cfg.JSON,
	})
}

// Discard is the logger used by tests and by components built without one.
func Discard() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel})
}

// OrDiscard returns logger unless it is nil.
func OrDiscard(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}
