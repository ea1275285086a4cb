// Package cli implements the vizlab command-line interface.
//
// The commands render gallery charts to files, serve them over HTTP with
// interactive sessions, explore a chart in the terminal and manage the
// snapshot store and render cache. The CLI is built using cobra and logs
// through charmbracelet/log.
//
// # Commands
//
//   - render: Render gallery charts to SVG, PNG, JSON, DOT or graph files
//   - export-dot: Write the node-link structure of a chart as Graphviz DOT
//   - serve: Serve the gallery over HTTP with sessions and scheduled refresh
//   - explore: Drive a chart interactively in the terminal
//   - record: Play a chart and write one SVG per frame
//   - data inspect: Show the data a chart is built from
//   - snapshots: List, show and delete stored snapshots
//   - cache: Manage the render and HTTP caches
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The root
// command attaches the logger to the command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a batch of chart runs and counts cache hits.
type progress struct {
	logger *log.Logger
	start  time.Time
	runs   int
	hits   int
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// add records one finished run.
func (p *progress) add(cached bool) {
	p.runs++
	if cached {
		p.hits++
	}
}

// elapsed returns the time since start, rounded to the millisecond.
func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// done logs msg with the run count, cache hits and elapsed time, e.g.
// "Rendered charts runs=4 cached=1 took=1.234s".
func (p *progress) done(msg string) {
	p.logger.Info(msg, "runs", p.runs, "cached", p.hits, "took", p.elapsed())
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a context carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger of ctx, or log.Default.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
