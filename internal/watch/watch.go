// Package watch reruns a build when files under the content tree change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// DefaultDebounce coalesces editor save bursts into one rebuild.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc is invoked after changes settle.
type RebuildFunc func(ctx context.Context) error

// Watcher observes a set of directories and files.
type Watcher struct {
	paths    []string
	debounce time.Duration
	logger   interfaces.Logger
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(w *Watcher) {
		w.logger = logging.Ensure(logger)
	}
}

// New watches paths. Directories are watched recursively; plain files
// (such as the config file) are watched directly.
func New(paths []string, opts ...Option) *Watcher {
	w := &Watcher{
		paths:    append([]string(nil), paths...),
		debounce: DefaultDebounce,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Run blocks until ctx is cancelled, calling rebuild once per settled burst
// of changes. Rebuilds never overlap; a change during a rebuild schedules
// one more run after it.
func (w *Watcher) Run(ctx context.Context, rebuild RebuildFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer watcher.Close()

	for _, path := range w.paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			w.logger.Warn("watch.path_missing", "path", path, "error", err)
			continue
		}
		if info.IsDir() {
			w.addDirsRecursive(watcher, path)
			continue
		}
		if err := watcher.Add(path); err != nil {
			w.logger.Warn("watch.add_failed", "path", path, "error", err)
		}
	}

	requests, trigger, stop := w.debouncer()
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-requests:
				w.logger.Info("watch.rebuild")
				if err := rebuild(ctx); err != nil {
					w.logger.Warn("watch.rebuild_failed", "error", err)
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			<-done
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ShouldIgnore(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.addDirsRecursive(watcher, ev.Name)
				}
			}
			w.logger.Debug("watch.change", "path", ev.Name, "op", ev.Op.String())
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch.error", "error", err)
		}
	}
}

// debouncer returns a request channel with room for one pending rebuild.
func (w *Watcher) debouncer() (<-chan struct{}, func(), func()) {
	var mu sync.Mutex
	var timer *time.Timer
	requests := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case requests <- struct{}{}:
			default:
			}
		})
	}
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return requests, trigger, stop
}

func (w *Watcher) addDirsRecursive(watcher *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				w.logger.Warn("watch.add_failed", "dir", path, "error", err)
			}
		}
		return nil
	})
}

// ShouldIgnore reports editor swap files and hidden files.
func ShouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}
