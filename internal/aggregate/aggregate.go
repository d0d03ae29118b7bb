// Package aggregate turns a directory of markdown documents into one JSON
// collection file.
package aggregate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-folio/internal/artifacts"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/derive"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/validation"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var (
	// ErrMissingSourceDirectory marks a collection whose source directory
	// does not exist. The collection is skipped, not failed.
	ErrMissingSourceDirectory = errors.New("aggregate: source directory does not exist")
	// ErrWrite marks a collection whose output could not be written.
	ErrWrite = errors.New("aggregate: write failed")
	// ErrInvalidOutput marks a collection that failed schema validation
	// before being written.
	ErrInvalidOutput = errors.New("aggregate: output failed validation")
	// ErrNameRequired rejects collection configs without a name.
	ErrNameRequired = errors.New("aggregate: collection name is required")
)

// Skipped records a document excluded from its collection.
type Skipped struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Report summarises one collection build.
type Report struct {
	Collection string        `json:"collection"`
	OutputPath string        `json:"outputPath"`
	Processed  int           `json:"processed"`
	Skipped    []Skipped     `json:"skipped"`
	Items      int           `json:"items"`
	Drafts     int           `json:"drafts"`
	Warnings   []string      `json:"warnings"`
	Missing    bool          `json:"missing"`
	Duration   time.Duration `json:"duration"`
}

// Aggregator builds collections. It is safe to reuse across collections and
// runs.
type Aggregator struct {
	renderer interfaces.MarkdownRenderer
	writer   artifacts.Writer
	logger   interfaces.Logger
	workers  int
	now      func() time.Time
}

// Option customises an Aggregator.
type Option func(*Aggregator)

// WithWriter replaces the default filesystem writer.
func WithWriter(w artifacts.Writer) Option {
	return func(a *Aggregator) {
		if w != nil {
			a.writer = w
		}
	}
}

// WithLogger sets the aggregate logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithWorkers bounds per-collection concurrency. Values below one select
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		a.workers = n
	}
}

// WithClock sets the clock used for fallback slugs and durations.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// New constructs an Aggregator around a markdown renderer.
func New(renderer interfaces.MarkdownRenderer, opts ...Option) *Aggregator {
	a := &Aggregator{
		renderer: renderer,
		writer:   artifacts.NewFileWriter(""),
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.workers < 1 {
		a.workers = runtime.NumCPU()
	}
	return a
}

// Aggregate builds the collection described by cfg and writes it to
// cfg.OutputPath.
//
// Per-document failures never fail the collection: the document is recorded
// in Report.Skipped and logged. A missing source directory yields an empty
// report and no error. Errors are returned only for cancellation, schema
// violations and write failures (wrapping ErrWrite).
func (a *Aggregator) Aggregate(ctx context.Context, cfg CollectionConfig) (*Report, error) {
	start := a.now()
	report := &Report{
		Collection: cfg.Name,
		OutputPath: cfg.OutputPath,
		Skipped:    []Skipped{},
		Warnings:   []string{},
	}
	finish := func() { report.Duration = a.now().Sub(start) }
	defer finish()

	if strings.TrimSpace(cfg.Name) == "" {
		return report, ErrNameRequired
	}
	logger := logging.WithDocumentContext(logging.FromContext(ctx, a.logger), cfg.Name, "", "")

	docs, err := discover(cfg)
	if err != nil {
		if errors.Is(err, ErrMissingSourceDirectory) {
			report.Missing = true
			logger.Warn("collection.source_missing", "source", cfg.SourceDir)
			return report, nil
		}
		return report, err
	}

	deriver := derive.New(derive.Config{
		Category:   cfg.category(),
		DefaultTag: cfg.DefaultTag,
		Keywords:   cfg.Keywords,
		TagLimit:   cfg.TagLimit,
		Now:        a.now,
	})

	outcomes, err := a.process(ctx, cfg, deriver, docs)
	if err != nil {
		return report, err
	}

	items := make([]content.Item, 0, len(docs))
	for i, out := range outcomes {
		report.Processed++
		report.Warnings = append(report.Warnings, out.warnings...)
		for _, warning := range out.warnings {
			logger.Warn("document.warning", "file", docs[i].source, "warning", warning)
		}
		if out.err != nil {
			report.Skipped = append(report.Skipped, Skipped{File: docs[i].source, Reason: out.err.Error()})
			logging.WithDocumentContext(logger, "", docs[i].source, "build").
				Error("document.skipped", "error", out.err)
			continue
		}
		if out.item.Draft && !cfg.IncludeDrafts {
			report.Drafts++
			logger.Debug("document.draft_excluded", "file", docs[i].source)
			continue
		}
		items = append(items, out.item)
	}

	// Conflicts resolve in discovery order, before the date sort reorders
	// items.
	for _, conflict := range content.ResolveSlugConflicts(cfg.Name, items) {
		report.Warnings = append(report.Warnings, conflict.Error())
		logger.Warn("document.slug_conflict", "error", conflict)
	}
	content.Sort(items)
	report.Items = len(items)

	if err := a.write(ctx, cfg, deriver.TagLimit(), items); err != nil {
		logger.Error("collection.write_failed", "output", cfg.OutputPath, "error", err)
		return report, err
	}

	logger.Info("collection.built",
		"output", cfg.OutputPath,
		"processed", report.Processed,
		"skipped", len(report.Skipped),
		"items", report.Items,
	)
	return report, nil
}

// process runs documents through a bounded worker pool. Results are stored
// by input index so ordering does not depend on scheduling.
func (a *Aggregator) process(ctx context.Context, cfg CollectionConfig, deriver *derive.Deriver, docs []document) ([]outcome, error) {
	results := make([]outcome, len(docs))
	if len(docs) == 0 {
		return results, nil
	}

	workers := min(a.workers, len(docs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = a.buildItem(ctx, cfg, deriver, docs[idx])
			}
		}()
	}

	for idx := range docs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Aggregator) write(ctx context.Context, cfg CollectionConfig, tagLimit int, items []content.Item) error {
	payload, err := encodeItems(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrWrite, cfg.Name, err)
	}

	validator, err := validation.NewValidator(tagLimit)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}
	if err := validator.ValidateJSON(payload); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidOutput, cfg.Name, err)
	}

	if err := a.writer.WriteFile(ctx, artifacts.Bytes(cfg.OutputPath, artifacts.CategoryCollection, payload)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, cfg.OutputPath, err)
	}
	return nil
}

// encodeItems writes items as two-space indented JSON with a trailing
// newline. HTML is left unescaped so content stays readable.
func encodeItems(items []content.Item) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// discover lists the markdown files of a collection in lexical order.
func discover(cfg CollectionConfig) ([]document, error) {
	info, err := os.Stat(cfg.SourceDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSourceDirectory, cfg.SourceDir)
		}
		return nil, fmt.Errorf("aggregate: stat %s: %w", cfg.SourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrMissingSourceDirectory, cfg.SourceDir)
	}

	var docs []document
	err = filepath.WalkDir(cfg.SourceDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != cfg.SourceDir && !cfg.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !isMarkdown(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(cfg.SourceDir, path)
		if err != nil {
			rel = d.Name()
		}
		docs = append(docs, document{path: path, source: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate: list %s: %w", cfg.SourceDir, err)
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].source < docs[j].source })
	return docs, nil
}

func isMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md") && !strings.HasPrefix(name, ".")
}
