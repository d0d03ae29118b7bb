package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-folio/internal/identity"
	"github.com/goliatone/go-folio/internal/logging"
)

// Failure is a collection that could not be written.
type Failure struct {
	Collection string
	Err        error
}

// Summary aggregates the reports of one run.
type Summary struct {
	RunID    string
	Reports  []*Report
	Failures []Failure
	Duration time.Duration
}

// Items sums the item count across collections.
func (s *Summary) Items() int {
	total := 0
	for _, report := range s.Reports {
		total += report.Items
	}
	return total
}

// Failed reports whether any collection failed.
func (s *Summary) Failed() bool {
	return len(s.Failures) > 0
}

// Run builds every collection in order. A failing collection does not stop
// the others; the returned error joins every failure.
func (a *Aggregator) Run(ctx context.Context, collections []CollectionConfig) (*Summary, error) {
	start := a.now()
	names := make([]string, 0, len(collections))
	for _, cfg := range collections {
		names = append(names, cfg.Name)
	}
	summary := &Summary{RunID: identity.RunUUID(start.UTC().Format(time.RFC3339Nano), names).String()}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger := logging.FromContext(ctx, a.logger)
	logger.Info("run.started", "collections", strings.Join(names, ","))
	var errs []error

	for _, cfg := range collections {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		report, err := a.Aggregate(ctx, cfg)
		summary.Reports = append(summary.Reports, report)
		if err != nil {
			summary.Failures = append(summary.Failures, Failure{Collection: cfg.Name, Err: err})
			errs = append(errs, fmt.Errorf("%s: %w", cfg.Name, err))
		}
	}

	summary.Duration = a.now().Sub(start)
	logger.Info("run.completed",
		"items", summary.Items(),
		"failures", len(summary.Failures),
		"duration", summary.Duration,
	)
	return summary, errors.Join(errs...)
}

// WriteSummary prints the per-collection console summary: processed,
// skipped with reasons, and final item count.
func WriteSummary(w io.Writer, summary *Summary) {
	if summary == nil {
		return
	}
	failed := make(map[string]error, len(summary.Failures))
	for _, failure := range summary.Failures {
		failed[failure.Collection] = failure.Err
	}

	for _, report := range summary.Reports {
		switch {
		case report.Missing:
			fmt.Fprintf(w, "%-14s skipped: source directory missing\n", report.Collection)
			continue
		case failed[report.Collection] != nil:
			fmt.Fprintf(w, "%-14s FAILED: %v\n", report.Collection, failed[report.Collection])
		}
		fmt.Fprintf(w, "%-14s processed=%d skipped=%d items=%d -> %s\n",
			report.Collection, report.Processed, len(report.Skipped), report.Items, report.OutputPath)
		for _, skipped := range report.Skipped {
			fmt.Fprintf(w, "  skipped %s: %s\n", skipped.File, skipped.Reason)
		}
		for _, warning := range report.Warnings {
			fmt.Fprintf(w, "  warning %s\n", strings.TrimSpace(warning))
		}
	}
	fmt.Fprintf(w, "total items=%d collections=%d failed=%d\n", summary.Items(), len(summary.Reports), len(summary.Failures))
}
