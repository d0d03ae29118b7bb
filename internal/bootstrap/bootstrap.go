// Package bootstrap wires configuration, logging and the build services into
// one App used by the CLI.
package bootstrap

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-folio/internal/aggregate"
	"github.com/goliatone/go-folio/internal/artifacts"
	buildcmd "github.com/goliatone/go-folio/internal/commands/build"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/derive"
	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/logging/console"
	"github.com/goliatone/go-folio/internal/logging/gologger"
	"github.com/goliatone/go-folio/internal/markdown"
	"github.com/goliatone/go-folio/internal/runtimeconfig"
	"github.com/goliatone/go-folio/internal/validation"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// App holds the services one CLI invocation needs.
type App struct {
	Config      runtimeconfig.Config
	Provider    interfaces.LoggerProvider
	Logger      interfaces.Logger
	Highlighter *markdown.ChromaHighlighter
	Renderer    *markdown.Renderer
	Aggregator  *aggregate.Aggregator
	Generator   *generator.Service
	Loader      *content.Loader
	Commands    *buildcmd.HandlerSet
}

// Option customises New.
type Option func(*options)

type options struct {
	provider  interfaces.LoggerProvider
	logOutput io.Writer
	verbose   bool
	writer    artifacts.Writer
	clock     func() time.Time
}

// WithLoggerProvider bypasses provider construction from config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithLogOutput redirects console logging.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithVerbose lowers the log level to debug.
func WithVerbose(verbose bool) Option {
	return func(o *options) {
		o.verbose = verbose
	}
}

// WithArtifactWriter replaces the filesystem writer used for every output.
func WithArtifactWriter(w artifacts.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithClock fixes the clock for undated fallback slugs and feed timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// New builds an App from cfg.
func New(cfg runtimeconfig.Config, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	provider := o.provider
	if provider == nil {
		var err error
		provider, err = NewLoggerProvider(cfg.Logging, o.verbose, o.logOutput)
		if err != nil {
			return nil, err
		}
	}
	names := make([]string, 0, len(cfg.Collections))
	for _, collection := range cfg.Collections {
		names = append(names, collection.Name)
	}
	logging.ConfigLogger(provider).Debug("config.resolved",
		"content_dir", cfg.ContentDir,
		"output_dir", cfg.OutputDir,
		"collections", strings.Join(names, ","),
		"generator", cfg.Generator.Enabled,
		"include_drafts", cfg.IncludeDrafts,
	)

	writer := o.writer
	if writer == nil {
		writer = artifacts.NewFileWriter("")
	}

	highlighter := markdown.NewHighlighter(cfg.HighlighterConfig())
	renderer := markdown.NewRenderer(cfg.RendererOptions(), highlighter,
		markdown.WithLogger(logging.MarkdownLogger(provider)),
	)

	aggregatorOpts := []aggregate.Option{
		aggregate.WithWriter(writer),
		aggregate.WithLogger(logging.AggregateLogger(provider)),
		aggregate.WithWorkers(cfg.Workers),
	}
	generatorOpts := []generator.Option{
		generator.WithLogger(logging.GeneratorLogger(provider)),
	}
	if o.clock != nil {
		aggregatorOpts = append(aggregatorOpts, aggregate.WithClock(o.clock))
		generatorOpts = append(generatorOpts, generator.WithClock(o.clock))
	}
	aggregator := aggregate.New(renderer, aggregatorOpts...)
	siteGenerator := generator.NewService(cfg.GeneratorConfig(), writer, generatorOpts...)

	validator, err := validation.NewValidator(maxTagLimit(cfg))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: schema: %w", err)
	}
	loader := content.NewLoader(cfg.OutputDir, validator)

	generatorEnabled := cfg.Generator.Enabled
	set, err := buildcmd.RegisterBuildCommands(nil, buildcmd.Dependencies{
		Builder:   aggregator,
		Generator: siteGenerator,
		Loader:    loader,
		Config:    cfg,
	}, provider, buildcmd.FeatureGates{
		GeneratorEnabled: func() bool { return generatorEnabled },
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		Provider:    provider,
		Logger:      logging.ModuleLogger(provider, "folio"),
		Highlighter: highlighter,
		Renderer:    renderer,
		Aggregator:  aggregator,
		Generator:   siteGenerator,
		Loader:      loader,
		Commands:    set,
	}, nil
}

// NewLoggerProvider selects the console or go-logger provider.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig, verbose bool, out io.Writer) (interfaces.LoggerProvider, error) {
	level := cfg.Level
	if verbose {
		level = "debug"
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		minLevel, ok := console.ParseLevel(level)
		if !ok {
			return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingLevelInvalid, level)
		}
		return console.NewProvider(console.Options{
			Writer:   out,
			MinLevel: &minLevel,
			Compact:  strings.EqualFold(strings.TrimSpace(cfg.Format), "compact"),
		}), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}

// maxTagLimit sizes the loader schema for the most permissive collection.
func maxTagLimit(cfg runtimeconfig.Config) int {
	limit := derive.DefaultTagLimit
	for _, collection := range cfg.Collections {
		if collection.TagLimit > limit {
			limit = collection.TagLimit
		}
	}
	return limit
}
