package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goliatone/go-folio/internal/validation"
)

// Loader reads collection files written by the aggregator.
type Loader struct {
	root      string
	validator *validation.Validator
}

// NewLoader reads files relative to root. A nil validator skips schema
// checks.
func NewLoader(root string, validator *validation.Validator) *Loader {
	return &Loader{root: root, validator: validator}
}

// Path resolves a collection file name against the loader root.
func (l *Loader) Path(file string) string {
	if filepath.IsAbs(file) || l.root == "" {
		return file
	}
	return filepath.Join(l.root, file)
}

// Load reads and validates the collection stored in file. Failures are
// returned as *LoadError.
func (l *Loader) Load(name, file string) (Collection, error) {
	path := l.Path(file)
	fail := func(kind, cause error) (Collection, error) {
		return Collection{Name: name}, &LoadError{
			Collection: name,
			Path:       path,
			Err:        fmt.Errorf("%w: %w", kind, cause),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(ErrCollectionMissing, err)
		}
		return fail(ErrCollectionInvalid, err)
	}

	if l.validator != nil {
		if err := l.validator.ValidateJSON(data); err != nil {
			return fail(ErrCollectionInvalid, err)
		}
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return fail(ErrCollectionInvalid, err)
	}
	if items == nil {
		items = []Item{}
	}
	return Collection{Name: name, Items: items}, nil
}

// LoadOrDefault loads a collection and substitutes fallback when loading
// fails. The load error is still returned so the caller can report that the
// fallback was used; a nil error means the file was loaded.
func LoadOrDefault(l *Loader, name, file string, fallback Collection) (Collection, error) {
	collection, err := l.Load(name, file)
	if err != nil {
		if fallback.Name == "" {
			fallback.Name = name
		}
		return fallback, err
	}
	return collection, nil
}
