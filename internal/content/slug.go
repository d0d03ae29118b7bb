package content

import (
	"strings"

	"github.com/goliatone/go-slug"
)

// NormalizeName canonicalises a collection name with the default go-slug
// rules so config keys, output files and routes agree.
func NormalizeName(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ErrCollectionNameEmpty
	}
	return slug.Normalize(trimmed)
}

// IsValidName reports whether value is already a canonical collection name.
func IsValidName(value string) bool {
	return slug.IsValid(value)
}
