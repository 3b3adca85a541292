// Package cli implements the swapnet command-line interface.
//
// The CLI builds entanglement distribution networks, routes flow and
// application demands from TOML scenario files, and exports topologies
// as DOT, SVG or PNG. It is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
//   - build: construct a random topology and report its properties
//   - route: run a routing scenario and emit a result manifest
//   - export: render a scenario network without routing it
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type loggerKey struct{}

// withLogger attaches a logger to the context.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext retrieves the logger attached by withLogger, or the
// package default if none is present.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// progress tracks the start time of an operation and logs completion
// with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
	what   string
}

func newProgress(l *log.Logger, what string) *progress {
	l.Debug("starting", "op", what)
	return &progress{logger: l, start: time.Now(), what: what}
}

func (p *progress) done(kv ...any) {
	p.logger.Info(p.what, append(kv, "duration", time.Since(p.start))...)
}
