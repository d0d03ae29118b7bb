// Package frontmatter splits a leading `---` delimited metadata block from a
// markdown document and decodes it into loosely typed fields.
package frontmatter

import (
	"errors"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrMalformedFrontmatter reports a block that opens but never closes, or a
// non-empty block with no parseable lines. It is recorded on the Document and
// never returned by Parse.
var ErrMalformedFrontmatter = errors.New("frontmatter: malformed metadata block")

// Document is a markdown source split into metadata and body.
type Document struct {
	Raw    string
	Fields map[string]any
	Body   string
	// HadFrontmatter is true when a complete delimited block was found.
	HadFrontmatter bool
	// Warning holds ErrMalformedFrontmatter when the block was discarded.
	Warning error
}

// Parse splits raw into fields and body. It never fails: malformed input
// degrades to a document with no metadata.
func Parse(raw string) Document {
	doc := Document{
		Raw:    raw,
		Fields: map[string]any{},
		Body:   raw,
	}

	block, body, had, err := Split(raw)
	if err != nil {
		doc.Warning = err
		return doc
	}
	if !had {
		return doc
	}

	doc.HadFrontmatter = true
	doc.Body = body
	if strings.TrimSpace(block) == "" {
		return doc
	}

	fields := decodeBlock(block)
	if len(fields) == 0 {
		doc.Warning = ErrMalformedFrontmatter
		return doc
	}
	doc.Fields = fields
	return doc
}

// Split separates the metadata block from the body.
//
// The opening delimiter must be the first line of raw; the closing delimiter
// is the next line consisting of exactly `---` (LF or CRLF endings). When raw
// does not open with a delimiter, had is false and body is raw. When the block
// never closes, ErrMalformedFrontmatter is returned along with raw as body.
func Split(raw string) (block string, body string, had bool, err error) {
	first, rest, ok := cutLine(raw)
	if !isDelimiter(first) {
		return "", raw, false, nil
	}
	if !ok {
		return "", raw, false, ErrMalformedFrontmatter
	}

	start := len(raw) - len(rest)
	cursor := rest
	for {
		line, next, more := cutLine(cursor)
		if isDelimiter(line) {
			end := len(raw) - len(cursor)
			return raw[start:end], raw[len(raw)-len(next):], true, nil
		}
		if !more {
			return "", raw, false, ErrMalformedFrontmatter
		}
		cursor = next
	}
}

// ParseLines decodes a block line by line: each line is split on its first
// colon, key and value are trimmed and one pair of matching surrounding
// quotes is stripped from the value. Lines without a colon or with an empty
// key are ignored.
func ParseLines(block string) map[string]any {
	fields := map[string]any{}
	for _, line := range strings.Split(block, "\n") {
		if key, value, ok := splitField(line); ok {
			fields[key] = Unquote(value)
		}
	}
	return fields
}

// Unquote strips one pair of matching single or double quotes.
func Unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if first == last && (first == '"' || first == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}

// decodeBlock applies the ParseLines rule to every single line field. A key
// with no inline value (or a `|`/`>` block scalar indicator) followed by
// indented or `- ` lines is decoded as YAML so block sequences, nested maps and
// multi-line strings survive; if that decode fails the lines fall back to the
// line rule.
func decodeBlock(block string) map[string]any {
	fields := map[string]any{}
	lines := strings.Split(block, "\n")
	for i := 0; i < len(lines); i++ {
		key, value, ok := splitField(lines[i])
		if !ok {
			continue
		}
		if opensNested(value) {
			if end := continuationEnd(lines, i+1); end > i+1 {
				if nested, ok := decodeNested(key, value, lines[i+1:end]); ok {
					fields[key] = nested
					i = end - 1
					continue
				}
			}
		}
		fields[key] = Unquote(value)
	}
	return fields
}

func splitField(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(strings.TrimSuffix(line, "\r"), ":")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

func opensNested(value string) bool {
	if value == "" {
		return true
	}
	indicator := strings.TrimRight(value, "+-0123456789")
	return indicator == "|" || indicator == ">"
}

// continuationEnd returns the index after the last indented or `- ` line
// starting at from. Blank lines count only when more continuation follows.
func continuationEnd(lines []string, from int) int {
	end := from
	for i := from; i < len(lines); i++ {
		line := strings.TrimSuffix(lines[i], "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' && !strings.HasPrefix(line, "-") {
			break
		}
		end = i + 1
	}
	return end
}

func decodeNested(key, value string, continuation []string) (any, bool) {
	var b strings.Builder
	b.WriteString(key)
	b.WriteString(":")
	if value != "" {
		b.WriteString(" ")
		b.WriteString(value)
	}
	for _, line := range continuation {
		b.WriteString("\n")
		b.WriteString(strings.TrimSuffix(line, "\r"))
	}
	decoded, err := decodeYAML(b.String())
	if err != nil {
		return nil, false
	}
	nested, ok := decoded[key]
	if !ok || nested == nil {
		return nil, false
	}
	return nested, true
}

func decodeYAML(block string) (map[string]any, error) {
	var fields map[string]any
	source := delimiter + "\n" + block
	if !strings.HasSuffix(block, "\n") {
		source += "\n"
	}
	source += delimiter + "\n"

	format := frontmatter.NewFormat(delimiter, delimiter, yaml.Unmarshal)
	if _, err := frontmatter.Parse(strings.NewReader(source), &fields, format); err != nil {
		return nil, err
	}
	return fields, nil
}

func cutLine(s string) (line, rest string, more bool) {
	idx := strings.IndexByte(s, '\n')
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+1:], true
}

func isDelimiter(line string) bool {
	return strings.TrimSuffix(line, "\r") == delimiter
}
