package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSlugRequired        = errors.New("content: slug is required")
	ErrSlugInvalid         = errors.New("content: slug contains invalid characters")
	ErrSlugConflict        = errors.New("content: slug conflict")
	ErrCollectionMissing   = errors.New("content: collection file not found")
	ErrCollectionInvalid   = errors.New("content: collection file invalid")
	ErrCollectionNameEmpty = errors.New("content: collection name is required")
)

// LoadError reports why a collection file could not be loaded. Err is one
// of ErrCollectionMissing or ErrCollectionInvalid wrapping the cause.
type LoadError struct {
	Collection string
	Path       string
	Err        error
}

func (e *LoadError) Error() string {
	if e == nil {
		return ErrCollectionInvalid.Error()
	}
	name := strings.TrimSpace(e.Collection)
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("content: load %s (%s): %v", name, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SlugConflictError records a slug that was renamed because an earlier item
// in the same collection already used it.
type SlugConflictError struct {
	Collection string
	Slug       string
	Renamed    string
	Source     string
}

func (e *SlugConflictError) Error() string {
	if e == nil {
		return ErrSlugConflict.Error()
	}
	return fmt.Sprintf("%s: slug=%s renamed=%s source=%s", ErrSlugConflict.Error(), e.Slug, e.Renamed, e.Source)
}

func (e *SlugConflictError) Unwrap() error {
	return ErrSlugConflict
}
