package buildcmd

import (
	"errors"

	"github.com/goliatone/go-folio/internal/commands"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/runtimeconfig"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Dependencies groups the services the build handlers drive.
type Dependencies struct {
	Builder   CollectionBuilder
	Generator SiteGenerator
	Loader    *content.Loader
	Config    runtimeconfig.Config
}

// HandlerSet groups the handlers produced by RegisterBuildCommands.
type HandlerSet struct {
	Build    *BuildCollectionsHandler
	Generate *GenerateSiteFilesHandler
	Check    *CheckCollectionsHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	buildHandlerOpts    []commands.HandlerOption[BuildCollectionsCommand]
	generateHandlerOpts []commands.HandlerOption[GenerateSiteFilesCommand]
	checkHandlerOpts    []commands.HandlerOption[CheckCollectionsCommand]
}

// WithBuildHandlerOptions forwards options to the BuildCollectionsHandler constructor.
func WithBuildHandlerOptions(opts ...commands.HandlerOption[BuildCollectionsCommand]) Option {
	return func(cfg *options) {
		cfg.buildHandlerOpts = append(cfg.buildHandlerOpts, opts...)
	}
}

// WithGenerateHandlerOptions forwards options to the GenerateSiteFilesHandler constructor.
func WithGenerateHandlerOptions(opts ...commands.HandlerOption[GenerateSiteFilesCommand]) Option {
	return func(cfg *options) {
		cfg.generateHandlerOpts = append(cfg.generateHandlerOpts, opts...)
	}
}

// WithCheckHandlerOptions forwards options to the CheckCollectionsHandler constructor.
func WithCheckHandlerOptions(opts ...commands.HandlerOption[CheckCollectionsCommand]) Option {
	return func(cfg *options) {
		cfg.checkHandlerOpts = append(cfg.checkHandlerOpts, opts...)
	}
}

// RegisterBuildCommands builds the handlers and registers them with reg
// when it is non-nil. The HandlerSet is returned so callers can subscribe
// them to a dispatcher.
func RegisterBuildCommands(reg CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if deps.Builder == nil {
		return nil, errors.New("build command registration: builder is nil")
	}
	if deps.Loader == nil {
		return nil, errors.New("build command registration: loader is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "build")

	set := &HandlerSet{
		Build:    NewBuildCollectionsHandler(deps.Builder, deps.Config, logger, cfg.buildHandlerOpts...),
		Generate: NewGenerateSiteFilesHandler(deps.Generator, deps.Loader, deps.Config, logger, gates, cfg.generateHandlerOpts...),
		Check:    NewCheckCollectionsHandler(deps.Loader, deps.Config, logger, cfg.checkHandlerOpts...),
	}

	if reg != nil {
		for _, handler := range []any{set.Build, set.Generate, set.Check} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
