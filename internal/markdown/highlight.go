package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/goliatone/go-folio/pkg/interfaces"
)

// ErrHighlight reports that a single code block could not be highlighted.
var ErrHighlight = errors.New("markdown: highlight failed")

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github"

// HighlighterConfig fixes the theme and the supported language set. An empty
// Languages list allows every language chroma knows.
type HighlighterConfig struct {
	Style     string
	Languages []string
	TabWidth  int
}

// ChromaHighlighter renders code blocks through chroma.
//
// Construct one per process and share it: the style, formatter and language
// table are built exactly once on the first Highlight call and are read-only
// afterwards, so concurrent use is safe.
type ChromaHighlighter struct {
	cfg HighlighterConfig

	once      sync.Once
	style     *chroma.Style
	formatter *chromahtml.Formatter
	allowed   map[string]struct{}
}

var _ interfaces.Highlighter = (*ChromaHighlighter)(nil)

// NewHighlighter returns a lazily initialised chroma highlighter.
func NewHighlighter(cfg HighlighterConfig) *ChromaHighlighter {
	return &ChromaHighlighter{cfg: cfg}
}

func (h *ChromaHighlighter) init() {
	h.once.Do(func() {
		name := strings.TrimSpace(h.cfg.Style)
		if name == "" {
			name = DefaultStyle
		}
		h.style = styles.Get(name)

		opts := []chromahtml.Option{chromahtml.WithClasses(true)}
		if h.cfg.TabWidth > 0 {
			opts = append(opts, chromahtml.TabWidth(h.cfg.TabWidth))
		}
		h.formatter = chromahtml.New(opts...)

		if len(h.cfg.Languages) > 0 {
			h.allowed = make(map[string]struct{}, len(h.cfg.Languages)+1)
			h.allowed[DefaultLanguage] = struct{}{}
			for _, lang := range h.cfg.Languages {
				if key := strings.ToLower(strings.TrimSpace(lang)); key != "" {
					h.allowed[key] = struct{}{}
				}
			}
		}
	})
}

// Highlight returns chroma HTML for code. Unknown or disallowed languages and
// formatter failures are reported as ErrHighlight.
func (h *ChromaHighlighter) Highlight(code, language string) (string, error) {
	h.init()

	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = DefaultLanguage
	}
	if h.allowed != nil {
		if _, ok := h.allowed[language]; !ok {
			return "", fmt.Errorf("%w: language %q not enabled", ErrHighlight, language)
		}
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return "", fmt.Errorf("%w: unsupported language %q", ErrHighlight, language)
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("%w: tokenise %s: %v", ErrHighlight, language, err)
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return "", fmt.Errorf("%w: format %s: %v", ErrHighlight, language, err)
	}
	return buf.String(), nil
}

// CSS writes the stylesheet matching the configured style's classes.
func (h *ChromaHighlighter) CSS() (string, error) {
	h.init()
	var buf bytes.Buffer
	if err := h.formatter.WriteCSS(&buf, h.style); err != nil {
		return "", fmt.Errorf("markdown: write highlight css: %w", err)
	}
	return buf.String(), nil
}
