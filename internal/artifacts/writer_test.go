package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileWriter_CreatesParentsAndReplaces(t *testing.T) {
	root := t.TempDir()
	w := NewFileWriter(root)

	for _, payload := range []string{"[1]", "[]"} {
		if err := w.WriteFile(context.Background(), Bytes("data/blog.json", CategoryCollection, []byte(payload))); err != nil {
			t.Fatalf("WriteFile(%s): %v", payload, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(root, "data", "blog.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected replaced content, got %q", data)
	}

	entries, err := os.ReadDir(filepath.Join(root, "data"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no temporary files to linger, got %d entries", len(entries))
	}
}

func TestFileWriter_AbsolutePathIgnoresRoot(t *testing.T) {
	target := filepath.Join(t.TempDir(), "robots.txt")

	if err := NewFileWriter("/does/not/matter").WriteFile(context.Background(), Bytes(target, CategoryRobots, []byte("ok"))); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "ok" {
		t.Fatalf("expected ok, got %q", data)
	}
}

func TestFileWriter_UnwritableTarget(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "blocked")
	if err := os.WriteFile(blocker, []byte("file, not dir"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	err := NewFileWriter(root).WriteFile(context.Background(), Bytes("blocked/out.json", CategoryCollection, []byte("[]")))
	if err == nil {
		t.Fatal("expected error writing below a regular file")
	}
}

func TestFileWriter_ValidatesRequest(t *testing.T) {
	w := NewFileWriter(t.TempDir())

	if err := w.WriteFile(context.Background(), Request{Content: nil, Path: "x"}); !errors.Is(err, ErrContentRequired) {
		t.Fatalf("expected ErrContentRequired, got %v", err)
	}
	if err := w.WriteFile(context.Background(), Bytes(" ", CategoryFeed, nil)); !errors.Is(err, ErrPathRequired) {
		t.Fatalf("expected ErrPathRequired, got %v", err)
	}
}

func TestMemoryWriter(t *testing.T) {
	w := NewMemoryWriter()
	w.Fail["bad.json"] = errors.New("disk full")

	if err := w.WriteFile(context.Background(), Bytes("good.json", CategoryCollection, []byte("[]"))); err != nil {
		t.Fatalf("WriteFile(good): %v", err)
	}
	err := w.WriteFile(context.Background(), Bytes("bad.json", CategoryCollection, []byte("[]")))
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if got := string(w.Files["good.json"]); got != "[]" {
		t.Fatalf("expected stored content, got %q", got)
	}
}
