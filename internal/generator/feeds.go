package generator

import (
	"fmt"
	"html"
	"slices"
	"strings"
	"time"
)

type feedItem struct {
	Title       string
	Summary     string
	Link        string
	GUID        string
	Author      string
	Categories  []string
	PublishedAt time.Time
}

type feedDocument struct {
	Collection  string
	Items       []feedItem
	GeneratedAt time.Time
}

func (s *Service) buildFeedDocuments(sources []Source, generatedAt time.Time) []feedDocument {
	docs := make([]feedDocument, 0, len(s.cfg.FeedCollections))
	for _, src := range sources {
		name := src.Collection.Name
		if !slices.Contains(s.cfg.FeedCollections, name) {
			continue
		}

		doc := feedDocument{Collection: name, GeneratedAt: generatedAt}
		for _, item := range src.Collection.Items {
			published := parseItemDate(item.Date)
			if published.IsZero() {
				continue
			}
			doc.Items = append(doc.Items, feedItem{
				Title:       item.Title,
				Summary:     normalizeWhitespace(item.Excerpt),
				Link:        absoluteURL(s.cfg.BaseURL, itemRoute(src.Route, item.Slug)),
				GUID:        "urn:uuid:" + item.ID,
				Author:      item.Author,
				Categories:  item.Tags,
				PublishedAt: published,
			})
		}

		slices.SortStableFunc(doc.Items, func(a, b feedItem) int {
			if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
				return c
			}
			return strings.Compare(a.GUID, b.GUID)
		})
		if len(doc.Items) > s.cfg.MaxFeedItems {
			doc.Items = append([]feedItem(nil), doc.Items[:s.cfg.MaxFeedItems]...)
		}
		docs = append(docs, doc)
	}
	return docs
}

func buildRSSFeed(cfg Config, doc feedDocument) string {
	baseLink := baseURLWithFallback(cfg.BaseURL)
	title := feedTitle(cfg, doc.Collection)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(baseLink)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(feedDescription(cfg))))
	if lang := strings.TrimSpace(cfg.Language); lang != "" {
		builder.WriteString(fmt.Sprintf("    <language>%s</language>\n", escapeXML(lang)))
	}
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", doc.GeneratedAt.UTC().Format(time.RFC1123Z)))
	for _, item := range doc.Items {
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf("      <guid isPermaLink=\"false\">%s</guid>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", item.PublishedAt.UTC().Format(time.RFC1123Z)))
		for _, category := range item.Categories {
			builder.WriteString(fmt.Sprintf("      <category>%s</category>\n", escapeXML(category)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

func buildAtomFeed(cfg Config, doc feedDocument) string {
	baseLink := baseURLWithFallback(cfg.BaseURL)
	feedID := fmt.Sprintf("%s/feeds/%s.atom.xml", baseLink, doc.Collection)
	title := feedTitle(cfg, doc.Collection)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if lang := strings.TrimSpace(cfg.Language); lang != "" {
		builder.WriteString(fmt.Sprintf(`<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="%s">`+"\n", escapeXMLAttr(lang)))
	} else {
		builder.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	}
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(feedID)))
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(title)))
	builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", doc.GeneratedAt.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf(`  <link rel="alternate" href="%s" />`+"\n", escapeXMLAttr(baseLink)))
	builder.WriteString(fmt.Sprintf(`  <link rel="self" href="%s" />`+"\n", escapeXMLAttr(feedID)))
	if author := strings.TrimSpace(cfg.Author); author != "" {
		builder.WriteString(fmt.Sprintf("  <author><name>%s</name></author>\n", escapeXML(author)))
	}
	for _, item := range doc.Items {
		builder.WriteString("  <entry>\n")
		builder.WriteString(fmt.Sprintf("    <id>%s</id>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf(`    <link href="%s" />`+"\n", escapeXMLAttr(item.Link)))
		builder.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		builder.WriteString(fmt.Sprintf("    <published>%s</published>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		if item.Author != "" {
			builder.WriteString(fmt.Sprintf("    <author><name>%s</name></author>\n", escapeXML(item.Author)))
		}
		for _, category := range item.Categories {
			builder.WriteString(fmt.Sprintf(`    <category term="%s" />`+"\n", escapeXMLAttr(category)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("    <summary>%s</summary>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("  </entry>\n")
	}
	builder.WriteString(`</feed>` + "\n")
	return builder.String()
}

func feedTitle(cfg Config, collection string) string {
	base := siteTitle(cfg)
	if collection == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, titleCase(collection))
}

func feedDescription(cfg Config) string {
	if desc := strings.TrimSpace(cfg.Description); desc != "" {
		return desc
	}
	return "Latest updates"
}

func siteTitle(cfg Config) string {
	if title := strings.TrimSpace(cfg.Title); title != "" {
		return title
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		return base
	}
	return "Portfolio"
}

func titleCase(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}

func absoluteURL(base, route string) string {
	targetBase := baseURLWithFallback(base)
	normalized := strings.TrimSpace(route)
	if normalized == "" || normalized == "/" {
		return targetBase + "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return targetBase + normalized
}

func normalizeWhitespace(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.Join(strings.Fields(input), " ")
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}

func escapeXMLAttr(value string) string {
	return html.EscapeString(value)
}
