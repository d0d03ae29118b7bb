package aggregate

import (
	"github.com/goliatone/go-folio/internal/derive"
)

// Slug candidate names understood by CollectionConfig.SlugFields besides
// frontmatter keys.
const (
	SlugFieldFilename = "filename"
)

// CollectionConfig describes one content type: where its markdown lives,
// where its JSON goes and how missing fields are derived.
type CollectionConfig struct {
	Name       string
	SourceDir  string
	OutputPath string
	Recursive  bool

	Category   string
	SlugFields []string
	// SlugSuffix appends the YYYY-MM date key to derived slugs.
	SlugSuffix bool

	DefaultTag string
	TagLimit   int
	Keywords   []derive.Keyword

	DefaultAuthor        string
	DefaultCollaborators []string

	ExcerptLength int
	IncludeDrafts bool
}

// DefaultSlugFields are tried when a collection configures none.
var DefaultSlugFields = []string{"title", SlugFieldFilename}

func (c CollectionConfig) slugFields() []string {
	if len(c.SlugFields) == 0 {
		return DefaultSlugFields
	}
	return c.SlugFields
}

func (c CollectionConfig) category() string {
	if c.Category != "" {
		return c.Category
	}
	return c.Name
}
