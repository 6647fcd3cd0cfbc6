// Package cli implements the codegraph command-line interface.
//
// Commands fetch code-relationship graphs from the vectorizer backend (or a
// saved snapshot), cluster and lay them out, and either write the result,
// browse it in the terminal, or serve it to the browser renderer.
//
// # Commands
//
//   - fetch: Download a graph payload as JSON
//   - layout: Compute node positions and write the render graph
//   - render: Produce JSON, DOT or SVG artifacts
//   - search: List nodes matching a query
//   - explore: Browse the graph interactively in the terminal
//   - serve: Run the HTTP and websocket server for the browser renderer
//   - cache, config: Manage the response cache and the config file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codegraph/pkg/controller"
)

// newLogger creates a logger writing to w at level, with "HH:MM:SS.ms"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one operation and logs its completion with the elapsed
// duration as a field.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and an "elapsed" field rounded to
// the millisecond.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

// filterFields flattens f into logger key/value pairs. Zero values are
// omitted.
func filterFields(f controller.Filters) []any {
	fields := []any{"project", f.Project}
	if f.View != "" {
		fields = append(fields, "view", f.View)
	}
	if f.Threshold != 0 {
		fields = append(fields, "threshold", f.Threshold)
	}
	if f.Limit != 0 {
		fields = append(fields, "limit", f.Limit)
	}
	if len(f.Languages) > 0 {
		fields = append(fields, "languages", strings.Join(f.Languages, ","))
	}
	fields = append(fields, "cluster", f.Cluster)
	return fields
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
