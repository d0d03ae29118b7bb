package markdown

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// Options controls the goldmark engine.
type Options struct {
	// Extensions lists goldmark extensions by name. Empty selects GFM,
	// linkify and task lists.
	Extensions []string
	HardWraps  bool
}

// DefaultOptions mirrors how the site has always rendered content.
func DefaultOptions() Options {
	return Options{HardWraps: true}
}

// Renderer converts markdown bodies into sanitized HTML. It is stateless
// after construction and safe for concurrent use.
type Renderer struct {
	engine      goldmark.Markdown
	highlighter interfaces.Highlighter
	sanitizer   interfaces.Sanitizer
	logger      interfaces.Logger
}

var _ interfaces.MarkdownRenderer = (*Renderer)(nil)

// RendererOption customises a Renderer.
type RendererOption func(*Renderer)

// WithLogger sets the logger used for per-block highlight failures.
func WithLogger(logger interfaces.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSanitizer replaces the default bluemonday policy.
func WithSanitizer(s interfaces.Sanitizer) RendererOption {
	return func(r *Renderer) {
		if s != nil {
			r.sanitizer = s
		}
	}
}

// NewRenderer builds a renderer around a shared highlighter.
func NewRenderer(opts Options, highlighter interfaces.Highlighter, options ...RendererOption) *Renderer {
	r := &Renderer{
		engine:      newGoldmarkEngine(opts),
		highlighter: highlighter,
		sanitizer:   NewSanitizer(),
		logger:      logging.NoOp(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render converts body to HTML, highlights its code blocks and sanitizes the
// result.
func (r *Renderer) Render(ctx context.Context, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	source, blocks := ExtractFences(body)

	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}

	out := buf.String()
	for i, block := range blocks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		token := placeholder(i)
		markup := r.highlightBlock(block)
		paragraph := "<p>" + token + "</p>"
		if strings.Contains(out, paragraph) {
			out = strings.Replace(out, paragraph, markup, 1)
			continue
		}
		out = strings.Replace(out, token, markup, 1)
	}

	return r.sanitizer.Sanitize(out), nil
}

func (r *Renderer) highlightBlock(block CodeBlock) string {
	lang := block.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	attr := sanitizeLanguage(lang)

	if r.highlighter != nil {
		highlighted, err := r.highlighter.Highlight(block.Code, lang)
		if err == nil {
			return `<div class="highlight" data-language="` + attr + `">` + highlighted + `</div>`
		}
		r.logger.Warn("markdown.highlight.fallback", "language", lang, "error", err)
	}

	return `<pre><code class="language-` + attr + `">` + html.EscapeString(block.Code) + `</code></pre>`
}

var languageUnsafe = regexp.MustCompile(`[^a-z0-9-]+`)

func sanitizeLanguage(lang string) string {
	cleaned := languageUnsafe.ReplaceAllString(strings.ToLower(lang), "-")
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		return DefaultLanguage
	}
	return cleaned
}

func newGoldmarkEngine(opts Options) goldmark.Markdown {
	exts := collectExtensions(opts.Extensions)

	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	// Raw HTML is passed through here and scrubbed by the sanitizer.
	rendererOptions := []renderer.Option{
		gmhtml.WithUnsafe(),
	}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, gmhtml.WithHardWraps())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
		goldmark.WithRendererOptions(rendererOptions...),
	}
	if len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}
