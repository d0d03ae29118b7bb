// Package derive computes the identifiers and summaries a content item needs
// when its frontmatter does not supply them: slug, tags, excerpt and reading
// time.
package derive

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultTagLimit caps the tag list of every item.
	DefaultTagLimit = 5
	// MinSlugLength is the shortest candidate accepted as a slug base.
	MinSlugLength = 5
	// DefaultCategory labels fallback slugs when none is configured.
	DefaultCategory = "item"
	undatedKey      = "undated"
)

// Keyword maps a case-insensitive body substring to a canonical tag.
type Keyword struct {
	Match string `yaml:"match" json:"match"`
	Tag   string `yaml:"tag" json:"tag"`
}

// Config describes one collection's derivation rules.
type Config struct {
	Category   string
	DefaultTag string
	Keywords   []Keyword
	TagLimit   int
	// Now is the clock used for fallback slugs.
	Now func() time.Time
}

// Deriver applies a collection's derivation rules. It holds no mutable state.
type Deriver struct {
	category   string
	defaultTag string
	keywords   []Keyword
	tagLimit   int
	now        func() time.Time
}

// New returns a Deriver with defaults applied to cfg.
func New(cfg Config) *Deriver {
	d := &Deriver{
		category:   Slugify(cfg.Category),
		defaultTag: strings.TrimSpace(cfg.DefaultTag),
		keywords:   cfg.Keywords,
		tagLimit:   cfg.TagLimit,
		now:        cfg.Now,
	}
	if d.category == "" {
		d.category = DefaultCategory
	}
	if d.tagLimit <= 0 {
		d.tagLimit = DefaultTagLimit
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// TagLimit reports the effective tag cap.
func (d *Deriver) TagLimit() int {
	return d.tagLimit
}

var (
	slugInvalid    = regexp.MustCompile(`[^a-z0-9\s-]+`)
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-{2,}`)
	slugPattern    = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Slugify folds accents, lower-cases and reduces s to [a-z0-9-], collapsing
// whitespace and hyphen runs and trimming edge hyphens.
func Slugify(s string) string {
	s = strings.ToLower(foldAccents(s))
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidSlug reports whether s is a non-empty string of [a-z0-9-].
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Slug picks the first candidate that slugifies to at least MinSlugLength
// characters and appends dedupeKey when it is non-empty. When no candidate
// qualifies it returns category-dedupeKey-timestamp, where timestamp is the
// clock's unix seconds in base 36.
func (d *Deriver) Slug(candidates []string, dedupeKey string) string {
	key := Slugify(dedupeKey)
	for _, candidate := range candidates {
		base := Slugify(candidate)
		if len(base) < MinSlugLength {
			continue
		}
		if key == "" {
			return base
		}
		return base + "-" + key
	}

	if key == "" {
		key = undatedKey
	}
	stamp := strconv.FormatInt(d.now().Unix(), 36)
	return d.category + "-" + key + "-" + stamp
}

// DateKey reduces a normalized YYYY-MM-DD date to its YYYY-MM month.
func DateKey(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 7 || date[4] != '-' {
		return ""
	}
	return date[:7]
}

// Tags returns explicit tags deduplicated and capped when any are given.
// Otherwise it starts from the default tag and appends the canonical tag of
// every vocabulary keyword found in body, in vocabulary order.
func (d *Deriver) Tags(body string, explicit []string) []string {
	if len(explicit) > 0 {
		return Cap(explicit, d.tagLimit)
	}

	tags := make([]string, 0, d.tagLimit)
	if d.defaultTag != "" {
		tags = append(tags, d.defaultTag)
	}
	haystack := strings.ToLower(body)
	for _, kw := range d.keywords {
		match := strings.ToLower(strings.TrimSpace(kw.Match))
		if match == "" || !strings.Contains(haystack, match) {
			continue
		}
		tag := strings.TrimSpace(kw.Tag)
		if tag == "" {
			tag = strings.TrimSpace(kw.Match)
		}
		tags = append(tags, tag)
	}
	return Cap(tags, d.tagLimit)
}

// Cap removes case-insensitive duplicates and blanks from tags, keeping the
// first spelling, and truncates the result to limit entries.
func Cap(tags []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultTagLimit
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, min(len(tags), limit))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
		if len(out) == limit {
			break
		}
	}
	return out
}
