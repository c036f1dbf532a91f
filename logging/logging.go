// Package logging builds the structured loggers used across the server.
package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/inconshreveable/log15/v3"
)

// New returns a root logger writing logfmt records to w (stderr when nil)
// at or above level. debug forces the debug level.
func New(level string, debug bool, w io.Writer) (log.Logger, error) {
	lvl, err := log.LvlFromString(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if w == nil {
		w = os.Stderr
	}

	h := log.StreamHandler(w, log.LogfmtFormat())
	if debug {
		lvl = log.LvlDebug
	}

	logger := log.New()
	logger.SetHandler(log.LvlFilterHandler(lvl, h))
	return logger, nil
}

// Discard returns a logger that drops every record.
func Discard() log.Logger {
	logger := log.New()
	logger.SetHandler(log.DiscardHandler())
	return logger
}
