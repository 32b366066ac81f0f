// Package sheetinfer turns loosely structured spreadsheets into typed,
// validated tables. For every unit (a sheet, or all sheets consolidated) it
// asks a structured completion service for a field schema, compiles the
// schema into a validator, extracts rows through the same service, and
// merges the per-unit results into one OverallResult.
package sheetinfer

import (
	"log/slog"

	"github.com/ukaji3/sheetinfer-go/internal/logging"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/parser"
)

// Options configures a run.
type Options struct {
	// Background is optional free text about the file, shared by all units.
	Background string
	// Consolidate merges all sheets into a single unit before processing.
	Consolidate bool
	// PrintAreas limits each sheet that defines a print area to it.
	PrintAreas bool
	// Concurrency bounds how many units are processed at once.
	// Zero or less processes every unit concurrently.
	Concurrency int
	// Logger receives structured logs. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns default run options.
func DefaultOptions() Options {
	return Options{
		Concurrency: 4,
	}
}

// logger returns the configured logger or a discarding one.
func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logging.Nop()
}

func (o Options) readOptions() parser.ReadOptions {
	return parser.ReadOptions{Consolidate: o.Consolidate, PrintAreas: o.PrintAreas}
}

// workerLimit returns the fan-out bound for n units.
func (o Options) workerLimit(n int) int {
	if o.Concurrency <= 0 || o.Concurrency > n {
		return n
	}
	return o.Concurrency
}
