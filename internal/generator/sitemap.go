package generator

import (
	"fmt"
	"sort"
	"strings"
)

type sitemapEntry struct {
	Location string
	LastMod  string
}

func sitemapEntries(baseURL string, staticRoutes []string, sources []Source) []sitemapEntry {
	base := baseURLWithFallback(baseURL)

	entries := make([]sitemapEntry, 0, len(staticRoutes))
	seen := map[string]struct{}{}
	add := func(route, lastMod string) {
		location := absoluteURL(base, route)
		if _, ok := seen[location]; ok {
			return
		}
		seen[location] = struct{}{}
		entries = append(entries, sitemapEntry{Location: location, LastMod: lastMod})
	}

	for _, route := range staticRoutes {
		add(route, "")
	}
	for _, src := range sources {
		for _, item := range src.Collection.Items {
			add(itemRoute(src.Route, item.Slug), item.Date)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})
	return entries
}

func buildSitemap(entries []sitemapEntry) string {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escapeXML(entry.Location)))
		if entry.LastMod != "" {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

func buildRobots(baseURL string, includeSitemap bool) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	if includeSitemap {
		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", baseURLWithFallback(baseURL)))
	}
	return builder.String()
}
