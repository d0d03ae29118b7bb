package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-folio/internal/derive"
)

type searchEntry struct {
	ID         string   `json:"id"`
	Collection string   `json:"collection"`
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Tags       []string `json:"tags"`
	URL        string   `json:"url"`
	Text       string   `json:"text"`
}

func buildSearchIndex(sources []Source) []searchEntry {
	entries := make([]searchEntry, 0)
	for _, src := range sources {
		for _, item := range src.Collection.Items {
			tags := item.Tags
			if tags == nil {
				tags = []string{}
			}
			entries = append(entries, searchEntry{
				ID:         item.ID,
				Collection: src.Collection.Name,
				Slug:       item.Slug,
				Title:      item.Title,
				Excerpt:    item.Excerpt,
				Tags:       tags,
				URL:        itemRoute(src.Route, item.Slug),
				Text:       derive.PlainText(item.RawContent),
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Collection != entries[j].Collection {
			return entries[i].Collection < entries[j].Collection
		}
		return entries[i].Slug < entries[j].Slug
	})
	return entries
}

func encodeSearchIndex(entries []searchEntry) (string, error) {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return "", fmt.Errorf("generator: encode search index: %w", err)
	}
	return buf.String(), nil
}
