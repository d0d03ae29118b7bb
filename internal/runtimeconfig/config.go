package runtimeconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-folio/internal/aggregate"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/derive"
	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/internal/markdown"
)

var ErrContentDirRequired = errors.New("folio config: content directory is required")
var ErrOutputDirRequired = errors.New("folio config: output directory is required")
var ErrGeneratorOutputDirRequired = errors.New("folio config: generator output directory is required when generator is enabled")
var ErrGeneratorBaseURLRequired = errors.New("folio config: site base url is required for sitemap and feeds")
var ErrCollectionsRequired = errors.New("folio config: at least one collection is required")
var ErrCollectionInvalid = errors.New("folio config: collection is invalid")
var ErrCollectionDuplicate = errors.New("folio config: collection name is duplicated")
var ErrUnknownCollection = errors.New("folio config: unknown collection")
var ErrLoggingProviderRequired = errors.New("folio config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("folio config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("folio config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("folio config: logging format is invalid")
var ErrWorkersInvalid = errors.New("folio config: workers must be zero or positive")

// Config is the folio build configuration. Relative paths resolve against
// the working directory; collection paths resolve against ContentDir and
// OutputDir.
type Config struct {
	Site          SiteConfig         `yaml:"site"`
	ContentDir    string             `yaml:"content_dir"`
	OutputDir     string             `yaml:"output_dir"`
	Workers       int                `yaml:"workers"`
	IncludeDrafts bool               `yaml:"include_drafts"`
	Markdown      MarkdownConfig     `yaml:"markdown"`
	Logging       LoggingConfig      `yaml:"logging"`
	Generator     GeneratorConfig    `yaml:"generator"`
	Collections   []CollectionConfig `yaml:"collections"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	Title       string `yaml:"title"`
	BaseURL     string `yaml:"base_url"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	Language    string `yaml:"language"`
}

// MarkdownConfig captures renderer and highlighter options.
type MarkdownConfig struct {
	Extensions     []string `yaml:"extensions"`
	HardWraps      bool     `yaml:"hard_wraps"`
	HighlightStyle string   `yaml:"highlight_style"`
	TabWidth       int      `yaml:"tab_width"`
	Languages      []string `yaml:"languages"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// GeneratorConfig captures behaviour for site file generation.
type GeneratorConfig struct {
	Enabled         bool              `yaml:"enabled"`
	OutputDir       string            `yaml:"output_dir"`
	Sitemap         bool              `yaml:"sitemap"`
	Robots          bool              `yaml:"robots"`
	Feeds           bool              `yaml:"feeds"`
	SearchIndex     bool              `yaml:"search_index"`
	StaticRoutes    []string          `yaml:"static_routes"`
	FeedCollections []string          `yaml:"feed_collections"`
	MaxFeedItems    int               `yaml:"max_feed_items"`
	Routes          map[string]string `yaml:"routes"`
}

// CollectionConfig describes one content type.
type CollectionConfig struct {
	Name          string           `yaml:"name"`
	Source        string           `yaml:"source"`
	Output        string           `yaml:"output"`
	Recursive     bool             `yaml:"recursive"`
	Category      string           `yaml:"category"`
	SlugFields    []string         `yaml:"slug_fields"`
	SlugSuffix    bool             `yaml:"slug_suffix"`
	DefaultTag    string           `yaml:"default_tag"`
	TagLimit      int              `yaml:"tag_limit"`
	Keywords      []derive.Keyword `yaml:"keywords"`
	DefaultAuthor string           `yaml:"default_author"`
	Collaborators []string         `yaml:"default_collaborators"`
	ExcerptLength int              `yaml:"excerpt_length"`
}

// DefaultAuthor is written to items that name no author when neither the
// collection nor the site configures one.
const DefaultAuthor = "Anonymous"

// DefaultConfig returns the portfolio defaults: five collections rendered
// from content/<name> into src/data/<name>.json.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Author:   DefaultAuthor,
			Language: "en",
		},
		ContentDir: "content",
		OutputDir:  "src/data",
		Workers:    0,
		Markdown: MarkdownConfig{
			HardWraps:      markdown.DefaultOptions().HardWraps,
			HighlightStyle: markdown.DefaultStyle,
			TabWidth:       4,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Generator: GeneratorConfig{
			Enabled:         false,
			OutputDir:       "public",
			Sitemap:         true,
			Robots:          true,
			Feeds:           true,
			SearchIndex:     true,
			StaticRoutes:    []string{"/", "/blog", "/publications", "/research", "/talks", "/events"},
			FeedCollections: []string{"blog"},
			MaxFeedItems:    50,
			Routes: map[string]string{
				"blog":         "/blog",
				"publications": "/publications",
				"research":     "/research",
				"talks":        "/talks",
				"events":       "/events",
			},
		},
		Collections: DefaultCollections(),
	}
}

// DefaultCollections lists the portfolio content types with their tag
// vocabularies.
func DefaultCollections() []CollectionConfig {
	return []CollectionConfig{
		{
			Name:       "blog",
			Source:     "blog",
			Output:     "blog.json",
			Category:   "blog",
			SlugFields: []string{"title", aggregate.SlugFieldFilename},
			SlugSuffix: true,
			DefaultTag: "Blog",
			TagLimit:   derive.DefaultTagLimit,
			Keywords: []derive.Keyword{
				{Match: "machine learning", Tag: "Machine Learning"},
				{Match: "artificial intelligence", Tag: "AI"},
				{Match: "neural network", Tag: "Deep Learning"},
				{Match: "golang", Tag: "Go"},
				{Match: "kubernetes", Tag: "Kubernetes"},
				{Match: "open source", Tag: "Open Source"},
			},
		},
		{
			Name:       "publications",
			Source:     "publications",
			Output:     "publications.json",
			Category:   "publication",
			SlugFields: []string{"title", aggregate.SlugFieldFilename},
			SlugSuffix: true,
			DefaultTag: "Research",
			TagLimit:   derive.DefaultTagLimit,
			Keywords: []derive.Keyword{
				{Match: "machine learning", Tag: "Machine Learning"},
				{Match: "natural language", Tag: "NLP"},
				{Match: "computer vision", Tag: "Computer Vision"},
				{Match: "reinforcement learning", Tag: "Reinforcement Learning"},
				{Match: "dataset", Tag: "Datasets"},
			},
		},
		{
			Name:       "research",
			Source:     "research",
			Output:     "research.json",
			Category:   "research",
			SlugFields: []string{"title", aggregate.SlugFieldFilename},
			SlugSuffix: true,
			DefaultTag: "Research",
			TagLimit:   derive.DefaultTagLimit,
			Keywords: []derive.Keyword{
				{Match: "machine learning", Tag: "Machine Learning"},
				{Match: "interpretability", Tag: "Interpretability"},
				{Match: "robustness", Tag: "Robustness"},
				{Match: "fairness", Tag: "Fairness"},
			},
		},
		{
			Name:       "talks",
			Source:     "talks",
			Output:     "talks.json",
			Category:   "talk",
			SlugFields: []string{"title", "event", aggregate.SlugFieldFilename},
			SlugSuffix: true,
			DefaultTag: "Talk",
			TagLimit:   derive.DefaultTagLimit,
			Keywords: []derive.Keyword{
				{Match: "keynote", Tag: "Keynote"},
				{Match: "workshop", Tag: "Workshop"},
				{Match: "panel", Tag: "Panel"},
				{Match: "machine learning", Tag: "Machine Learning"},
			},
		},
		{
			Name:       "events",
			Source:     "events",
			Output:     "events.json",
			Category:   "event",
			SlugFields: []string{"event", "title", "location", aggregate.SlugFieldFilename},
			SlugSuffix: true,
			DefaultTag: "Event",
			TagLimit:   derive.DefaultTagLimit,
			Keywords: []derive.Keyword{
				{Match: "conference", Tag: "Conference"},
				{Match: "meetup", Tag: "Meetup"},
				{Match: "hackathon", Tag: "Hackathon"},
				{Match: "summit", Tag: "Summit"},
			},
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.ContentDir) == "" {
		return ErrContentDirRequired
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return ErrOutputDirRequired
	}
	if cfg.Workers < 0 {
		return ErrWorkersInvalid
	}
	if len(cfg.Collections) == 0 {
		return ErrCollectionsRequired
	}

	seen := make(map[string]struct{}, len(cfg.Collections))
	for i, collection := range cfg.Collections {
		if err := collection.Validate(); err != nil {
			return fmt.Errorf("%w: collections[%d]: %v", ErrCollectionInvalid, i, err)
		}
		if _, ok := seen[collection.Name]; ok {
			return fmt.Errorf("%w: %s", ErrCollectionDuplicate, collection.Name)
		}
		seen[collection.Name] = struct{}{}
	}

	if cfg.Generator.Enabled {
		if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
			return ErrGeneratorOutputDirRequired
		}
		if (cfg.Generator.Sitemap || cfg.Generator.Feeds) && strings.TrimSpace(cfg.Site.BaseURL) == "" {
			return ErrGeneratorBaseURLRequired
		}
		for _, name := range cfg.Generator.FeedCollections {
			if _, ok := seen[name]; !ok {
				return fmt.Errorf("%w: feed collection %s", ErrUnknownCollection, name)
			}
		}
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(provider, format) {
		return fmt.Errorf("%w: %s (provider %s)", ErrLoggingFormatInvalid, format, provider)
	}
	return nil
}

// Validate checks one collection entry.
func (c CollectionConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.By(func(value any) error {
			if !content.IsValidName(value.(string)) {
				return validation.NewError("folio.config.collection.name_invalid", "name must be a lowercase slug")
			}
			return nil
		})),
		validation.Field(&c.Source, validation.Required),
		validation.Field(&c.Output, validation.Required, validation.By(func(value any) error {
			if !strings.HasSuffix(strings.ToLower(value.(string)), ".json") {
				return validation.NewError("folio.config.collection.output_extension", "output must be a .json file")
			}
			return nil
		})),
		validation.Field(&c.DefaultTag, validation.Required),
		validation.Field(&c.TagLimit, validation.Min(0)),
		validation.Field(&c.ExcerptLength, validation.Min(0)),
		validation.Field(&c.Keywords, validation.Each(validation.By(func(value any) error {
			keyword, _ := value.(derive.Keyword)
			if strings.TrimSpace(keyword.Match) == "" || strings.TrimSpace(keyword.Tag) == "" {
				return validation.NewError("folio.config.collection.keyword_incomplete", "keywords need match and tag")
			}
			return nil
		}))),
	)
}

// Collection returns the named collection entry.
func (cfg Config) Collection(name string) (CollectionConfig, bool) {
	for _, collection := range cfg.Collections {
		if collection.Name == name {
			return collection, true
		}
	}
	return CollectionConfig{}, false
}

// Select narrows the configured collections to names, keeping configuration
// order. An empty names list selects everything.
func (cfg Config) Select(names []string) ([]CollectionConfig, error) {
	if len(names) == 0 {
		return cfg.Collections, nil
	}
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		normalized, err := content.NormalizeName(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
		}
		if _, ok := cfg.Collection(normalized); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
		}
		wanted[normalized] = struct{}{}
	}
	selected := make([]CollectionConfig, 0, len(wanted))
	for _, collection := range cfg.Collections {
		if _, ok := wanted[collection.Name]; ok {
			selected = append(selected, collection)
		}
	}
	return selected, nil
}

// AggregateConfigs resolves collection entries into aggregator input.
func (cfg Config) AggregateConfigs(collections []CollectionConfig) []aggregate.CollectionConfig {
	out := make([]aggregate.CollectionConfig, 0, len(collections))
	for _, c := range collections {
		out = append(out, aggregate.CollectionConfig{
			Name:                 c.Name,
			SourceDir:            filepath.Join(cfg.ContentDir, filepath.FromSlash(c.Source)),
			OutputPath:           filepath.Join(cfg.OutputDir, filepath.FromSlash(c.Output)),
			Recursive:            c.Recursive,
			Category:             c.Category,
			SlugFields:           c.SlugFields,
			SlugSuffix:           c.SlugSuffix,
			DefaultTag:           c.DefaultTag,
			TagLimit:             c.TagLimit,
			Keywords:             c.Keywords,
			DefaultAuthor:        firstNonEmpty(c.DefaultAuthor, cfg.Site.Author, DefaultAuthor),
			DefaultCollaborators: c.Collaborators,
			ExcerptLength:        c.ExcerptLength,
			IncludeDrafts:        cfg.IncludeDrafts,
		})
	}
	return out
}

// GeneratorConfig maps the site and generator sections onto the generator.
func (cfg Config) GeneratorConfig() generator.Config {
	return generator.Config{
		OutputDir:           cfg.Generator.OutputDir,
		BaseURL:             cfg.Site.BaseURL,
		Title:               cfg.Site.Title,
		Description:         cfg.Site.Description,
		Author:              cfg.Site.Author,
		Language:            cfg.Site.Language,
		GenerateSitemap:     cfg.Generator.Sitemap,
		GenerateRobots:      cfg.Generator.Robots,
		GenerateFeeds:       cfg.Generator.Feeds,
		GenerateSearchIndex: cfg.Generator.SearchIndex,
		StaticRoutes:        cfg.Generator.StaticRoutes,
		FeedCollections:     cfg.Generator.FeedCollections,
		MaxFeedItems:        cfg.Generator.MaxFeedItems,
	}
}

// Route returns the page route prefix for a collection.
func (cfg Config) Route(name string) string {
	if route, ok := cfg.Generator.Routes[name]; ok && strings.TrimSpace(route) != "" {
		return route
	}
	return "/" + name
}

// RendererOptions maps the markdown section onto renderer options.
func (cfg Config) RendererOptions() markdown.Options {
	opts := markdown.DefaultOptions()
	if len(cfg.Markdown.Extensions) > 0 {
		opts.Extensions = cfg.Markdown.Extensions
	}
	opts.HardWraps = cfg.Markdown.HardWraps
	return opts
}

// HighlighterConfig maps the markdown section onto highlighter options.
func (cfg Config) HighlighterConfig() markdown.HighlighterConfig {
	return markdown.HighlighterConfig{
		Style:     cfg.Markdown.HighlightStyle,
		Languages: cfg.Markdown.Languages,
		TabWidth:  cfg.Markdown.TabWidth,
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

// isSupportedFormat reports whether provider can render format. The console
// provider prints logfmt lines, optionally compact; go-logger adds json and
// pretty.
func isSupportedFormat(provider, format string) bool {
	format = strings.ToLower(strings.TrimSpace(format))
	if provider == "gologger" {
		return format == "json" || format == "console" || format == "text" || format == "pretty"
	}
	return format == "console" || format == "text" || format == "compact"
}
