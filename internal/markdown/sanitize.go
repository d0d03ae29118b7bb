package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-folio/pkg/interfaces"
)

var (
	classPattern   = regexp.MustCompile(`^[a-zA-Z0-9_ -]+$`)
	idPattern      = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	embedSrc       = regexp.MustCompile(`^https://`)
	mediaPreload   = regexp.MustCompile(`^(none|metadata|auto)$`)
	numericPattern = regexp.MustCompile(`^[0-9]+%?$`)
)

// HTMLSanitizer scrubs rendered HTML with a bluemonday policy tuned for
// portfolio content: user generated markup, heading anchors, highlight
// classes and embedded media.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

var _ interfaces.Sanitizer = (*HTMLSanitizer)(nil)

// NewSanitizer builds the content policy.
func NewSanitizer() *HTMLSanitizer {
	policy := bluemonday.UGCPolicy()

	policy.AllowAttrs("id").Matching(idPattern).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("class").Matching(classPattern).OnElements("span", "pre", "code", "div")
	policy.AllowDataAttributes()

	policy.AllowElements("iframe", "video", "audio", "source", "figure", "figcaption")
	policy.AllowAttrs("src").Matching(embedSrc).OnElements("iframe", "video", "audio", "source")
	policy.AllowAttrs("width", "height").Matching(numericPattern).OnElements("iframe", "video")
	policy.AllowAttrs("title", "allowfullscreen", "frameborder", "allow").OnElements("iframe")
	policy.AllowAttrs("controls", "loop", "muted", "playsinline", "poster").OnElements("video", "audio")
	policy.AllowAttrs("preload").Matching(mediaPreload).OnElements("video", "audio")
	policy.AllowAttrs("type").OnElements("source")

	return &HTMLSanitizer{policy: policy}
}

// Sanitize returns html with disallowed elements and attributes removed.
func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
