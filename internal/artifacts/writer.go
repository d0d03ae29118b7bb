// Package artifacts writes build outputs (collection JSON, sitemap, feeds)
// to disk with full-replace semantics.
package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Category labels an artifact for logging and reporting.
type Category string

const (
	CategoryCollection  Category = "collection"
	CategorySitemap     Category = "sitemap"
	CategoryRobots      Category = "robots"
	CategoryFeed        Category = "feed"
	CategorySearchIndex Category = "search_index"
)

var (
	ErrPathRequired    = errors.New("artifacts: write requires path")
	ErrContentRequired = errors.New("artifacts: write requires content")
)

// Request describes a single file write.
type Request struct {
	Path     string
	Content  io.Reader
	Category Category
	Mode     os.FileMode
}

// Bytes builds a Request from an in-memory payload.
func Bytes(path string, category Category, data []byte) Request {
	return Request{Path: path, Content: bytes.NewReader(data), Category: category}
}

// Writer persists artifacts.
type Writer interface {
	WriteFile(ctx context.Context, req Request) error
}

// FileWriter writes artifacts below Root (or at absolute paths). Every
// write goes to a temporary sibling first and is renamed into place, so a
// reader never observes a partially written file.
type FileWriter struct {
	Root string
}

// NewFileWriter returns a writer rooted at root.
func NewFileWriter(root string) *FileWriter {
	return &FileWriter{Root: root}
}

// Resolve returns the absolute-or-rooted path for p.
func (w *FileWriter) Resolve(p string) string {
	if filepath.IsAbs(p) || w == nil || strings.TrimSpace(w.Root) == "" {
		return p
	}
	return filepath.Join(w.Root, p)
}

// WriteFile implements Writer.
func (w *FileWriter) WriteFile(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(req.Path) == "" {
		return ErrPathRequired
	}
	if req.Content == nil {
		return ErrContentRequired
	}

	target := w.Resolve(req.Path)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("artifacts: ensure dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("artifacts: create temp for %s: %w", target, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := io.Copy(tmp, req.Content); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("artifacts: write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("artifacts: close %s: %w", target, err)
	}

	mode := req.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("artifacts: chmod %s: %w", target, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return fmt.Errorf("artifacts: replace %s: %w", target, err)
	}
	return nil
}

// MemoryWriter keeps artifacts in memory. Used by dry runs and tests.
type MemoryWriter struct {
	Files map[string][]byte
	Fail  map[string]error
}

// NewMemoryWriter returns an empty in-memory writer.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{Files: map[string][]byte{}, Fail: map[string]error{}}
}

// WriteFile implements Writer.
func (w *MemoryWriter) WriteFile(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(req.Path) == "" {
		return ErrPathRequired
	}
	if err, ok := w.Fail[req.Path]; ok {
		return err
	}
	if req.Content == nil {
		return ErrContentRequired
	}
	data, err := io.ReadAll(req.Content)
	if err != nil {
		return err
	}
	w.Files[req.Path] = data
	return nil
}
