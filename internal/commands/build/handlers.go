package buildcmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-folio/internal/aggregate"
	"github.com/goliatone/go-folio/internal/commands"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/internal/runtimeconfig"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// ErrCheckFailed reports that at least one collection file failed to load.
var ErrCheckFailed = errors.New("folio: collection check failed")

// Text codes reported for build failures.
const (
	CodeWriteFailed       = "FOLIO_WRITE_FAILED"
	CodeOutputInvalid     = "FOLIO_OUTPUT_INVALID"
	CodeUnknownCollection = "FOLIO_UNKNOWN_COLLECTION"
	CodeCollectionInvalid = "FOLIO_COLLECTION_INVALID"
	CodeGeneratorDisabled = "FOLIO_GENERATOR_DISABLED"
	CodeCheckFailed       = "FOLIO_CHECK_FAILED"
)

var buildErrorCodes = []commands.ErrorCode{
	{Target: aggregate.ErrWrite, Code: CodeWriteFailed},
	{Target: aggregate.ErrInvalidOutput, Code: CodeOutputInvalid},
	{Target: runtimeconfig.ErrUnknownCollection, Code: CodeUnknownCollection},
	{Target: content.ErrCollectionInvalid, Code: CodeCollectionInvalid},
	{Target: generator.ErrServiceDisabled, Code: CodeGeneratorDisabled},
	{Target: ErrCheckFailed, Code: CodeCheckFailed},
}

// CollectionBuilder runs the aggregator over a set of collections.
type CollectionBuilder interface {
	Run(ctx context.Context, collections []aggregate.CollectionConfig) (*aggregate.Summary, error)
}

// SiteGenerator writes site files from loaded collections.
type SiteGenerator interface {
	Generate(ctx context.Context, sources []generator.Source) (*generator.Result, error)
}

// BuildCollectionsHandler aggregates the configured collections.
type BuildCollectionsHandler struct {
	inner *commands.Handler[BuildCollectionsCommand]
}

// NewBuildCollectionsHandler wires the handler to builder and cfg.
func NewBuildCollectionsHandler(builder CollectionBuilder, cfg runtimeconfig.Config, logger interfaces.Logger, opts ...commands.HandlerOption[BuildCollectionsCommand]) *BuildCollectionsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg BuildCollectionsCommand) error {
		if builder == nil {
			return errors.New("folio: collection builder is nil")
		}
		selected, err := cfg.Select(msg.Only)
		if err != nil {
			return err
		}
		summary, err := builder.Run(ctx, cfg.AggregateConfigs(selected))
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Summary: summary,
			Metadata: map[string]any{
				"operation":   "build_collections",
				"collections": len(selected),
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildCollectionsCommand]{
		commands.WithLogger[BuildCollectionsCommand](baseLogger),
		commands.WithOperation[BuildCollectionsCommand]("build.collections"),
		commands.WithMessageFields(func(msg BuildCollectionsCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Only) > 0 {
				fields["only"] = msg.Only
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildCollectionsCommand](baseLogger)),
		commands.WithErrorCodes[BuildCollectionsCommand](buildErrorCodes...),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildCollectionsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[BuildCollectionsCommand].
func (h *BuildCollectionsHandler) Execute(ctx context.Context, msg BuildCollectionsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// GenerateSiteFilesHandler loads every collection file and runs the
// generator over them.
type GenerateSiteFilesHandler struct {
	inner *commands.Handler[GenerateSiteFilesCommand]
}

// NewGenerateSiteFilesHandler wires the handler to the generator and loader.
func NewGenerateSiteFilesHandler(service SiteGenerator, loader *content.Loader, cfg runtimeconfig.Config, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[GenerateSiteFilesCommand]) *GenerateSiteFilesHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg GenerateSiteFilesCommand) error {
		if service == nil || loader == nil || !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}

		sources := make([]generator.Source, 0, len(cfg.Collections))
		for _, collection := range cfg.Collections {
			loaded, err := content.LoadOrDefault(loader, collection.Name, collection.Output, content.Collection{})
			if err != nil {
				if !errors.Is(err, content.ErrCollectionMissing) {
					return err
				}
				baseLogger.Warn("generator.collection_missing", "collection", collection.Name, "path", loader.Path(collection.Output))
			}
			sources = append(sources, generator.Source{
				Route:      cfg.Route(collection.Name),
				Collection: loaded,
			})
		}

		result, err := service.Generate(ctx, sources)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Site: result,
			Metadata: map[string]any{
				"operation": "generate_site_files",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[GenerateSiteFilesCommand]{
		commands.WithLogger[GenerateSiteFilesCommand](baseLogger),
		commands.WithOperation[GenerateSiteFilesCommand]("build.site_files"),
		commands.WithTelemetry(commands.DefaultTelemetry[GenerateSiteFilesCommand](baseLogger)),
		commands.WithErrorCodes[GenerateSiteFilesCommand](buildErrorCodes...),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &GenerateSiteFilesHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[GenerateSiteFilesCommand].
func (h *GenerateSiteFilesHandler) Execute(ctx context.Context, msg GenerateSiteFilesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CheckCollectionsHandler loads collection files through the schema
// validator without writing anything.
type CheckCollectionsHandler struct {
	inner *commands.Handler[CheckCollectionsCommand]
}

// NewCheckCollectionsHandler wires the handler to loader.
func NewCheckCollectionsHandler(loader *content.Loader, cfg runtimeconfig.Config, logger interfaces.Logger, opts ...commands.HandlerOption[CheckCollectionsCommand]) *CheckCollectionsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CheckCollectionsCommand) error {
		if loader == nil {
			return errors.New("folio: collection loader is nil")
		}
		selected, err := cfg.Select(msg.Only)
		if err != nil {
			return err
		}

		checks := make([]CheckResult, 0, len(selected))
		failed := 0
		for _, collection := range selected {
			if err := ctx.Err(); err != nil {
				return err
			}
			loaded, err := loader.Load(collection.Name, collection.Output)
			checks = append(checks, CheckResult{
				Collection: collection.Name,
				Path:       loader.Path(collection.Output),
				Items:      loaded.Len(),
				Err:        err,
			})
			if err != nil {
				failed++
				baseLogger.Warn("collection.check_failed", "collection", collection.Name, "error", err)
			}
		}

		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Checks: checks,
			Metadata: map[string]any{
				"operation": "check_collections",
				"failed":    failed,
			},
		})
		if failed > 0 {
			return fmt.Errorf("%w: %d of %d", ErrCheckFailed, failed, len(checks))
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CheckCollectionsCommand]{
		commands.WithLogger[CheckCollectionsCommand](baseLogger),
		commands.WithOperation[CheckCollectionsCommand]("build.check"),
		commands.WithTelemetry(commands.DefaultTelemetry[CheckCollectionsCommand](baseLogger)),
		commands.WithErrorCodes[CheckCollectionsCommand](buildErrorCodes...),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CheckCollectionsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CheckCollectionsCommand].
func (h *CheckCollectionsHandler) Execute(ctx context.Context, msg CheckCollectionsCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, env ResultEnvelope) {
	if cb != nil {
		cb(env)
	}
}
