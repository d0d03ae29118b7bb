// Package generator derives site-level files (sitemap, robots.txt, feeds and
// a search index) from built collections.
package generator

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-folio/internal/artifacts"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const defaultMaxFeedItems = 50

var (
	// ErrServiceDisabled indicates every generator output is switched off.
	ErrServiceDisabled = errors.New("generator: service disabled")
	// ErrBaseURLRequired guards absolute links in sitemap and feeds.
	ErrBaseURLRequired = errors.New("generator: base url is required")
)

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir   string
	BaseURL     string
	Title       string
	Description string
	Author      string
	Language    string

	GenerateSitemap     bool
	GenerateRobots      bool
	GenerateFeeds       bool
	GenerateSearchIndex bool

	// StaticRoutes are site pages listed in the sitemap besides items.
	StaticRoutes []string
	// FeedCollections names the collections that get RSS and Atom feeds.
	FeedCollections []string
	MaxFeedItems    int
}

func (c Config) enabled() bool {
	return c.GenerateSitemap || c.GenerateRobots || c.GenerateFeeds || c.GenerateSearchIndex
}

// Source is a loaded collection plus the route prefix its items live under.
type Source struct {
	Route      string
	Collection content.Collection
}

// Result reports what a Generate call wrote.
type Result struct {
	Files         []string
	SitemapURLs   int
	FeedItems     int
	SearchEntries int
	Duration      time.Duration
}

// Service writes site files.
type Service struct {
	cfg    Config
	writer artifacts.Writer
	logger interfaces.Logger
	now    func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the generator logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used when no item carries a date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires a generator with the provided configuration and writer.
func NewService(cfg Config, writer artifacts.Writer, opts ...Option) *Service {
	if writer == nil {
		writer = artifacts.NewFileWriter("")
	}
	if cfg.MaxFeedItems <= 0 {
		cfg.MaxFeedItems = defaultMaxFeedItems
	}
	s := &Service{
		cfg:    cfg,
		writer: writer,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Generate writes every enabled site file for sources.
func (s *Service) Generate(ctx context.Context, sources []Source) (*Result, error) {
	start := s.now()
	result := &Result{}
	if !s.cfg.enabled() {
		return result, ErrServiceDisabled
	}
	if (s.cfg.GenerateSitemap || s.cfg.GenerateFeeds) && strings.TrimSpace(s.cfg.BaseURL) == "" {
		return result, ErrBaseURLRequired
	}

	generatedAt := latestItemTime(sources, s.now())
	var errs []error
	write := func(rel string, category artifacts.Category, body string) {
		target := joinOutputPath(s.cfg.OutputDir, rel)
		if err := s.writer.WriteFile(ctx, artifacts.Bytes(target, category, []byte(body))); err != nil {
			s.logger.Error("generator.write_failed", "path", target, "error", err)
			errs = append(errs, fmt.Errorf("generator: write %s: %w", rel, err))
			return
		}
		result.Files = append(result.Files, target)
	}

	if s.cfg.GenerateSitemap {
		entries := sitemapEntries(s.cfg.BaseURL, s.cfg.StaticRoutes, sources)
		result.SitemapURLs = len(entries)
		write("sitemap.xml", artifacts.CategorySitemap, buildSitemap(entries))
	}

	if s.cfg.GenerateRobots {
		write("robots.txt", artifacts.CategoryRobots, buildRobots(s.cfg.BaseURL, s.cfg.GenerateSitemap))
	}

	if s.cfg.GenerateFeeds {
		for _, doc := range s.buildFeedDocuments(sources, generatedAt) {
			result.FeedItems += len(doc.Items)
			base := path.Join("feeds", doc.Collection)
			write(base+".rss.xml", artifacts.CategoryFeed, buildRSSFeed(s.cfg, doc))
			write(base+".atom.xml", artifacts.CategoryFeed, buildAtomFeed(s.cfg, doc))
		}
	}

	if s.cfg.GenerateSearchIndex {
		entries := buildSearchIndex(sources)
		payload, err := encodeSearchIndex(entries)
		if err != nil {
			errs = append(errs, err)
		} else {
			result.SearchEntries = len(entries)
			write("search-index.json", artifacts.CategorySearchIndex, payload)
		}
	}

	result.Duration = s.now().Sub(start)
	if len(errs) > 0 {
		return result, errors.Join(errs...)
	}
	s.logger.Info("generator.completed",
		"files", len(result.Files),
		"sitemap_urls", result.SitemapURLs,
		"feed_items", result.FeedItems,
		"search_entries", result.SearchEntries,
	)
	return result, nil
}

func joinOutputPath(base string, rel string) string {
	if strings.TrimSpace(base) == "" {
		return strings.TrimLeft(rel, "/")
	}
	return filepath.Join(base, filepath.FromSlash(rel))
}

// itemRoute is the page route of an item inside its collection.
func itemRoute(prefix, slug string) string {
	prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "/" {
		return "/" + slug
	}
	return prefix + "/" + slug
}

func parseItemDate(date string) time.Time {
	if date == "" {
		return time.Time{}
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// latestItemTime keeps generated files stable across rebuilds of unchanged
// content: the newest item date stands in for "now".
func latestItemTime(sources []Source, fallback time.Time) time.Time {
	var latest time.Time
	for _, src := range sources {
		for _, item := range src.Collection.Items {
			if ts := parseItemDate(item.Date); ts.After(latest) {
				latest = ts
			}
		}
	}
	if latest.IsZero() {
		return fallback.UTC()
	}
	return latest
}
