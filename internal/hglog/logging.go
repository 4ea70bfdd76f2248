// Package hglog provides the structured logging used by the search
// engine. Unlike a CLI's logging package, a library
// must stay silent unless the host application opts in, so the
// default logger discards everything.
package hglog

import (
	"io"
	"log/slog"
	"sync"
)

var (
	mu      sync.RWMutex
	current = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// SetLogger installs the logger used by the engine. Pass nil to
// restore the discarding default. Host applications call this once
// at startup to route engine diagnostics into their own logging.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	current = l
}

// Default returns the currently installed logger.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
