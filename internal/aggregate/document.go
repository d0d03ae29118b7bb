package aggregate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/derive"
	"github.com/goliatone/go-folio/internal/frontmatter"
	"github.com/goliatone/go-folio/internal/normalize"
)

// document carries one markdown file through the pipeline.
type document struct {
	path   string
	source string
}

type outcome struct {
	item     content.Item
	warnings []string
	err      error
}

// buildItem runs read, parse, normalize, render and derive for one file.
func (a *Aggregator) buildItem(ctx context.Context, cfg CollectionConfig, deriver *derive.Deriver, doc document) outcome {
	raw, err := os.ReadFile(doc.path)
	if err != nil {
		return outcome{err: fmt.Errorf("read: %w", err)}
	}

	parsed := frontmatter.Parse(string(raw))
	var warnings []string
	if parsed.Warning != nil {
		warnings = append(warnings, fmt.Sprintf("%s: %v", doc.source, parsed.Warning))
	}

	fields, err := normalize.Normalize(parsed.Fields, normalize.Defaults{
		Author:        cfg.DefaultAuthor,
		Collaborators: cfg.DefaultCollaborators,
	})
	if err != nil {
		return outcome{err: err, warnings: warnings}
	}

	// Rendering and derivation see the trimmed body; RawContent keeps the
	// source bytes.
	body := strings.TrimSpace(parsed.Body)
	html, err := a.renderer.Render(ctx, body)
	if err != nil {
		return outcome{err: fmt.Errorf("render: %w", err), warnings: warnings}
	}

	title := fields.Title
	if title == "" {
		title = titleFromFilename(doc.source)
	}

	tags := deriver.Tags(body, fields.Tags)
	if fields.HasTags && len(fields.Tags) > len(tags) {
		warnings = append(warnings, fmt.Sprintf("%s: tags truncated to %d", doc.source, len(tags)))
	}

	item := content.Item{
		Slug:          a.slugFor(cfg, deriver, fields, parsed.Fields, doc.source),
		Title:         title,
		Date:          fields.Date,
		Excerpt:       derive.Excerpt(fields.Excerpt, body, cfg.ExcerptLength),
		Tags:          tags,
		Featured:      fields.Featured,
		Content:       html,
		RawContent:    parsed.Body,
		Author:        fields.Author,
		Authors:       nonEmpty(fields.Authors),
		Collaborators: collaborators(fields.Collaborators),
		Order:         fields.Order,
		ReadingTime:   derive.ReadingTime(body),
		Source:        doc.source,
		Venue:         fields.Venue,
		Location:      fields.Location,
		URL:           fields.URL,
		DOI:           fields.DOI,
		Event:         fields.Event,
		Status:        fields.Status,
		Image:         fields.Image,
		Draft:         fields.Draft,
	}
	item.AssignID(cfg.Name)

	return outcome{item: item, warnings: warnings}
}

// slugFor honours an explicit slug field and otherwise derives one from the
// configured candidates.
func (a *Aggregator) slugFor(cfg CollectionConfig, deriver *derive.Deriver, fields normalize.Fields, raw map[string]any, source string) string {
	if explicit := derive.Slugify(fields.Slug); explicit != "" {
		return explicit
	}

	names := cfg.slugFields()
	candidates := make([]string, 0, len(names))
	for _, name := range names {
		switch name {
		case SlugFieldFilename:
			candidates = append(candidates, strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)))
		case "slug":
		default:
			candidates = append(candidates, normalize.String(raw[name]))
		}
	}

	key := ""
	if cfg.SlugSuffix {
		key = derive.DateKey(fields.Date)
	}
	return deriver.Slug(candidates, key)
}

func titleFromFilename(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}

func collaborators(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}
