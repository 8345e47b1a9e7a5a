package internal

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger returns the application logger writing to w at the named level
// (debug, info, warn or error).
func NewLogger(level string, w io.Writer) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}
	return log.NewWithOptions(w, log.Options{
		Level:  lvl,
		Prefix: "subs-analyzer",
	}), nil
}

// discardLogger is used when a component is built without a logger.
func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
