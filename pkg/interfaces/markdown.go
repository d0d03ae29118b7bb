package interfaces

import "context"

// MarkdownRenderer converts a markdown body (frontmatter already removed) into
// sanitized HTML that page renderers can embed as-is.
type MarkdownRenderer interface {
	Render(ctx context.Context, body string) (string, error)
}

// Highlighter turns a single code block into highlighted HTML markup.
// Implementations return an error when the language is unsupported or the
// formatter fails; callers decide how to degrade.
type Highlighter interface {
	Highlight(code, language string) (string, error)
}

// Sanitizer strips script-executing constructs from HTML.
type Sanitizer interface {
	Sanitize(html string) string
}
