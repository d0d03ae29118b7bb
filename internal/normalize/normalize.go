// Package normalize coerces loosely typed frontmatter values into the typed
// record the rest of the pipeline consumes.
package normalize

// Defaults carries per-collection fallbacks applied when a document omits a
// field.
type Defaults struct {
	Author        string
	Collaborators []string
}

// Fields is the typed view of a document's frontmatter.
type Fields struct {
	Title         string
	Slug          string
	Date          string
	Excerpt       string
	Tags          []string
	Featured      bool
	Draft         bool
	Order         *int
	Author        string
	Authors       []string
	Collaborators []string
	Venue         string
	Location      string
	URL           string
	DOI           string
	Event         string
	Status        string
	Image         string
	// HasTags reports whether the document declared a tags field at all.
	HasTags bool
}

var fieldAliases = map[string][]string{
	"excerpt": {"excerpt", "summary", "description"},
	"url":     {"url", "link"},
	"event":   {"event", "conference"},
	"image":   {"image", "cover"},
}

// Normalize converts raw frontmatter into Fields. The only error it returns
// is an *InvalidDateError for a date that is present but unparsable.
func Normalize(fields map[string]any, defaults Defaults) (Fields, error) {
	date, err := Date(fields["date"])
	if err != nil {
		return Fields{}, err
	}

	out := Fields{
		Title:    String(fields["title"]),
		Slug:     String(fields["slug"]),
		Date:     date,
		Excerpt:  String(lookup(fields, "excerpt")),
		Featured: Bool(fields["featured"]),
		Draft:    Bool(fields["draft"]),
		Venue:    String(fields["venue"]),
		Location: String(fields["location"]),
		URL:      String(lookup(fields, "url")),
		DOI:      String(fields["doi"]),
		Event:    String(lookup(fields, "event")),
		Status:   String(fields["status"]),
		Image:    String(lookup(fields, "image")),
		Authors:  List(fields["authors"]),
	}

	if raw, ok := fields["tags"]; ok {
		out.HasTags = true
		out.Tags = List(raw)
	} else {
		out.Tags = []string{}
	}

	if n, ok := Int(fields["order"]); ok {
		out.Order = &n
	}

	out.Author = String(fields["author"])
	if out.Author == "" {
		out.Author = defaults.Author
	}

	if raw, ok := fields["collaborators"]; ok {
		out.Collaborators = List(raw)
	} else {
		out.Collaborators = append([]string{}, defaults.Collaborators...)
	}

	return out, nil
}

func lookup(fields map[string]any, key string) any {
	for _, alias := range fieldAliases[key] {
		if value, ok := fields[alias]; ok && String(value) != "" {
			return value
		}
	}
	return nil
}
