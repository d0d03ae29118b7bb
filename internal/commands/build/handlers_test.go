package buildcmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-folio/internal/aggregate"
	"github.com/goliatone/go-folio/internal/commands"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/internal/runtimeconfig"
	"github.com/goliatone/go-folio/internal/validation"
)

type fakeBuilder struct {
	runFunc func(ctx context.Context, collections []aggregate.CollectionConfig) (*aggregate.Summary, error)
}

func (f *fakeBuilder) Run(ctx context.Context, collections []aggregate.CollectionConfig) (*aggregate.Summary, error) {
	return f.runFunc(ctx, collections)
}

type fakeGenerator struct {
	sources []generator.Source
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, sources []generator.Source) (*generator.Result, error) {
	f.sources = sources
	return &generator.Result{Files: []string{"sitemap.xml"}}, f.err
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func alwaysTrue() bool { return true }

func testConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.ContentDir = filepath.Join(t.TempDir(), "content")
	cfg.OutputDir = t.TempDir()
	return cfg
}

const validCollection = `[
  {
    "id": "6b2c1a1e-5b0f-5d3a-9c53-0d7e2f4c8a11",
    "slug": "hello-world",
    "title": "Hello World",
    "date": "2024-01-15",
    "excerpt": "Hi",
    "tags": ["Blog"],
    "featured": false,
    "content": "<p>Hi</p>",
    "rawContent": "Hi",
    "author": "Anonymous",
    "collaborators": []
  }
]
`

func writeCollection(t *testing.T, dir, file, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", file, err)
	}
}

func newLoader(t *testing.T, cfg runtimeconfig.Config) *content.Loader {
	t.Helper()
	validator, err := validation.NewValidator(5)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	return content.NewLoader(cfg.OutputDir, validator)
}

func TestBuildCollectionsHandler_SelectsOnly(t *testing.T) {
	cfg := testConfig(t)
	var captured []aggregate.CollectionConfig
	builder := &fakeBuilder{runFunc: func(ctx context.Context, collections []aggregate.CollectionConfig) (*aggregate.Summary, error) {
		captured = collections
		return &aggregate.Summary{}, nil
	}}

	var envelope ResultEnvelope
	handler := NewBuildCollectionsHandler(builder, cfg, nil)
	err := handler.Execute(context.Background(), BuildCollectionsCommand{
		Only:           []string{"talks", "Blog"},
		ResultCallback: func(env ResultEnvelope) { envelope = env },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(captured) != 2 || captured[0].Name != "blog" || captured[1].Name != "talks" {
		t.Fatalf("unexpected collections %+v", captured)
	}
	if captured[0].OutputPath != filepath.Join(cfg.OutputDir, "blog.json") {
		t.Fatalf("expected resolved output path, got %s", captured[0].OutputPath)
	}
	if envelope.Summary == nil || envelope.Metadata["collections"] != 2 {
		t.Fatalf("expected callback with summary, got %+v", envelope)
	}
}

func TestBuildCollectionsHandler_UnknownCollection(t *testing.T) {
	builder := &fakeBuilder{runFunc: func(ctx context.Context, collections []aggregate.CollectionConfig) (*aggregate.Summary, error) {
		t.Fatal("builder should not run")
		return nil, nil
	}}
	handler := NewBuildCollectionsHandler(builder, testConfig(t), nil)

	err := handler.Execute(context.Background(), BuildCollectionsCommand{Only: []string{"podcasts"}})
	if err == nil {
		t.Fatal("expected error for unknown collection")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestBuildCollectionsHandler_ValidationRejectsBlankNames(t *testing.T) {
	handler := NewBuildCollectionsHandler(&fakeBuilder{}, testConfig(t), nil)
	err := handler.Execute(context.Background(), BuildCollectionsCommand{Only: []string{" "}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestBuildCollectionsHandler_ReportsSummaryOnFailure(t *testing.T) {
	summary := &aggregate.Summary{Failures: []aggregate.Failure{{Collection: "blog", Err: aggregate.ErrWrite}}}
	builder := &fakeBuilder{runFunc: func(ctx context.Context, collections []aggregate.CollectionConfig) (*aggregate.Summary, error) {
		return summary, aggregate.ErrWrite
	}}

	var got *aggregate.Summary
	handler := NewBuildCollectionsHandler(builder, testConfig(t), nil)
	err := handler.Execute(context.Background(), BuildCollectionsCommand{
		ResultCallback: func(env ResultEnvelope) { got = env.Summary },
	})
	if err == nil {
		t.Fatal("expected failure")
	}
	if got != summary {
		t.Fatal("expected summary delivered even when the run fails")
	}
}

func TestGenerateSiteFilesHandler_LoadsCollections(t *testing.T) {
	cfg := testConfig(t)
	writeCollection(t, cfg.OutputDir, "blog.json", validCollection)
	gen := &fakeGenerator{}

	handler := NewGenerateSiteFilesHandler(gen, newLoader(t, cfg), cfg, nil, FeatureGates{GeneratorEnabled: alwaysTrue})
	var envelope ResultEnvelope
	err := handler.Execute(context.Background(), GenerateSiteFilesCommand{
		ResultCallback: func(env ResultEnvelope) { envelope = env },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(gen.sources) != len(cfg.Collections) {
		t.Fatalf("expected a source per collection, got %d", len(gen.sources))
	}
	blog := gen.sources[0]
	if blog.Route != "/blog" || blog.Collection.Len() != 1 {
		t.Fatalf("unexpected blog source %+v", blog)
	}
	if gen.sources[1].Collection.Name != "publications" || gen.sources[1].Collection.Len() != 0 {
		t.Fatalf("expected empty fallback for missing collection, got %+v", gen.sources[1])
	}
	if envelope.Site == nil || len(envelope.Site.Files) != 1 {
		t.Fatalf("expected site result in callback, got %+v", envelope)
	}
}

func TestGenerateSiteFilesHandler_InvalidCollectionFails(t *testing.T) {
	cfg := testConfig(t)
	writeCollection(t, cfg.OutputDir, "blog.json", `[{"slug": "Not Valid"}]`)
	gen := &fakeGenerator{}

	handler := NewGenerateSiteFilesHandler(gen, newLoader(t, cfg), cfg, nil, FeatureGates{GeneratorEnabled: alwaysTrue})
	err := handler.Execute(context.Background(), GenerateSiteFilesCommand{})
	if err == nil {
		t.Fatal("expected invalid collection to fail")
	}
	if gen.sources != nil {
		t.Fatal("generator should not run")
	}
}

func TestGenerateSiteFilesHandler_Disabled(t *testing.T) {
	cfg := testConfig(t)
	handler := NewGenerateSiteFilesHandler(&fakeGenerator{}, newLoader(t, cfg), cfg, nil, FeatureGates{})
	err := handler.Execute(context.Background(), GenerateSiteFilesCommand{})
	if err == nil {
		t.Fatal("expected disabled error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestCheckCollectionsHandler_ReportsEachCollection(t *testing.T) {
	cfg := testConfig(t)
	writeCollection(t, cfg.OutputDir, "blog.json", validCollection)
	writeCollection(t, cfg.OutputDir, "talks.json", "[]\n")

	var checks []CheckResult
	handler := NewCheckCollectionsHandler(newLoader(t, cfg), cfg, nil)
	err := handler.Execute(context.Background(), CheckCollectionsCommand{
		Only:           []string{"blog", "talks"},
		ResultCallback: func(env ResultEnvelope) { checks = env.Checks },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(checks) != 2 || checks[0].Items != 1 || checks[1].Items != 0 {
		t.Fatalf("unexpected checks %+v", checks)
	}

	err = handler.Execute(context.Background(), CheckCollectionsCommand{
		Only:           []string{"events"},
		ResultCallback: func(env ResultEnvelope) { checks = env.Checks },
	})
	if err == nil {
		t.Fatal("expected missing collection to fail the check")
	}
	if len(checks) != 1 || !errors.Is(checks[0].Err, content.ErrCollectionMissing) {
		t.Fatalf("expected missing collection error, got %+v", checks)
	}
}

func TestRegisterBuildCommandsRegistersHandlers(t *testing.T) {
	cfg := testConfig(t)
	reg := &recordingRegistry{}
	applied := false

	set, err := RegisterBuildCommands(reg, Dependencies{
		Builder:   &fakeBuilder{},
		Generator: &fakeGenerator{},
		Loader:    newLoader(t, cfg),
		Config:    cfg,
	}, nil, FeatureGates{GeneratorEnabled: alwaysTrue},
		WithBuildHandlerOptions(func(h *commands.Handler[BuildCollectionsCommand]) {
			applied = true
		}),
	)
	if err != nil {
		t.Fatalf("register build commands: %v", err)
	}
	if !applied {
		t.Fatal("expected build handler options applied")
	}
	if len(reg.handlers) != 3 {
		t.Fatalf("expected three handlers registered, got %d", len(reg.handlers))
	}
	if reg.handlers[0] != set.Build || reg.handlers[1] != set.Generate || reg.handlers[2] != set.Check {
		t.Fatalf("unexpected registration order %#v", reg.handlers)
	}
}

func TestRegisterBuildCommandsRequiresBuilder(t *testing.T) {
	if _, err := RegisterBuildCommands(nil, Dependencies{}, nil, FeatureGates{}); err == nil {
		t.Fatal("expected error when builder is nil")
	}
}
