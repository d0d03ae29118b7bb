package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-folio/pkg/interfaces"
)

type contextKey struct{}

// Field names carried on a build context.
const (
	FieldRunID = "run_id"
)

// ContextWithFields returns ctx carrying fields that loggers obtained through
// WithContext add to every entry. Fields already on ctx are kept unless
// overwritten.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextKey{}, merged)
}

// ContextFields returns a copy of the fields on ctx, or nil.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// WithRunID tags ctx with the id of the current build run.
func WithRunID(ctx context.Context, runID string) context.Context {
	if runID == "" {
		return ctx
	}
	return ContextWithFields(ctx, map[string]any{FieldRunID: runID})
}

// RunID returns the build run id on ctx, if any.
func RunID(ctx context.Context) string {
	id, _ := ContextFields(ctx)[FieldRunID].(string)
	return id
}

// FromContext returns logger bound to ctx so context fields reach its output.
func FromContext(ctx context.Context, logger interfaces.Logger) interfaces.Logger {
	logger = Ensure(logger)
	if ctx == nil {
		return logger
	}
	return logger.WithContext(ctx)
}
