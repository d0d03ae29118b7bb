package derive

import (
	"strings"
	"unicode/utf8"

	stripmd "github.com/writeas/go-strip-markdown"
)

const (
	// DefaultExcerptLength is the rune budget for derived excerpts.
	DefaultExcerptLength = 160
	// WordsPerMinute drives ReadingTime.
	WordsPerMinute = 200
	ellipsis       = "…"
)

// PlainText strips markdown syntax from body and collapses whitespace.
func PlainText(body string) string {
	return strings.Join(strings.Fields(stripmd.Strip(body)), " ")
}

// Excerpt returns explicit when set. Otherwise it derives one from the plain
// text of body, cut on a word boundary to at most limit runes plus an
// ellipsis.
func Excerpt(explicit, body string, limit int) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if limit <= 0 {
		limit = DefaultExcerptLength
	}

	text := PlainText(body)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:.-") + ellipsis
}

// ReadingTime estimates minutes to read body, never less than one.
func ReadingTime(body string) int {
	words := len(strings.Fields(stripmd.Strip(body)))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
