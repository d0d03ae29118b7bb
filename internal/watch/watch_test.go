package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRebuildsOnceForBurst(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "blog")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rebuilds atomic.Int32
	rebuilt := make(chan struct{}, 4)
	w := New([]string{root}, WithDebounce(50*time.Millisecond))

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx, func(context.Context) error {
			rebuilds.Add(1)
			rebuilt <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register directories.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(nested, "post.md"), []byte("# v"+string(rune('0'+i))), 0o644))
	}

	select {
	case <-rebuilt:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a rebuild after file changes")
	}
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), rebuilds.Load())

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestShouldIgnore(t *testing.T) {
	assert.True(t, ShouldIgnore("/content/.post.md.swp"))
	assert.True(t, ShouldIgnore("/content/post.md~"))
	assert.True(t, ShouldIgnore("/content/#post.md#"))
	assert.True(t, ShouldIgnore("/content/.DS_Store"))
	assert.False(t, ShouldIgnore("/content/blog/post.md"))
}
