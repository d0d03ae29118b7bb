package buildcmd

import (
	"context"
	"fmt"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-folio/internal/aggregate"
)

func TestDispatchedBuildRetriesTransientWriteFailure(t *testing.T) {
	cfg := testConfig(t)
	attempts := 0
	builder := &fakeBuilder{runFunc: func(ctx context.Context, collections []aggregate.CollectionConfig) (*aggregate.Summary, error) {
		attempts++
		if attempts == 1 {
			return &aggregate.Summary{}, fmt.Errorf("blog: %w", aggregate.ErrWrite)
		}
		return &aggregate.Summary{}, nil
	}}
	handler := NewBuildCollectionsHandler(builder, cfg, nil)

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), BuildCollectionsCommand{Only: []string{"blog"}}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestDispatchedCheckReportsExhaustedRetries(t *testing.T) {
	cfg := testConfig(t)
	handler := NewCheckCollectionsHandler(newLoader(t, cfg), cfg, nil)

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	runs := 0
	err := dispatcher.Dispatch(context.Background(), CheckCollectionsCommand{
		Only:           []string{"talks"},
		ResultCallback: func(ResultEnvelope) { runs++ },
	})
	if err == nil {
		t.Fatal("expected missing collection file to fail every attempt")
	}
	if runs != 3 {
		t.Fatalf("expected 3 attempts (initial + 2 retries), got %d", runs)
	}
}
