package markdown

import (
	"strconv"
	"strings"
)

// DefaultLanguage is used for fences that declare no language.
const DefaultLanguage = "text"

const (
	placeholderPrefix = "FOLIOCODEBLOCK"
	placeholderSuffix = "END"
)

// CodeBlock is a fenced code block lifted out of a markdown body.
type CodeBlock struct {
	Language string
	Code     string
}

type fence struct {
	char   byte
	length int
	indent int
}

// ExtractFences replaces every top-level fenced code block in body with a
// placeholder paragraph and returns the rewritten body together with the
// extracted blocks, in document order. A fence that never closes runs to the
// end of the document.
func ExtractFences(body string) (string, []CodeBlock) {
	lines := strings.SplitAfter(body, "\n")
	var (
		out    strings.Builder
		blocks []CodeBlock
		open   *fence
		lang   string
		code   strings.Builder
	)

	// The placeholder keeps the fence's indentation so a fence nested in a
	// list item stays inside that item.
	flush := func() {
		blocks = append(blocks, CodeBlock{Language: lang, Code: code.String()})
		out.WriteString("\n")
		out.WriteString(strings.Repeat(" ", open.indent))
		out.WriteString(placeholder(len(blocks) - 1))
		out.WriteString("\n\n")
		code.Reset()
		open = nil
	}

	for _, line := range lines {
		if line == "" {
			continue
		}
		if open == nil {
			if f, info, ok := openingFence(line); ok {
				open = &f
				lang = fenceLanguage(info)
				continue
			}
			out.WriteString(line)
			continue
		}
		if closesFence(line, *open) {
			flush()
			continue
		}
		code.WriteString(stripIndent(line, open.indent))
	}
	if open != nil {
		if !strings.HasSuffix(code.String(), "\n") && code.Len() > 0 {
			code.WriteString("\n")
		}
		flush()
	}

	return out.String(), blocks
}

func placeholder(index int) string {
	return placeholderPrefix + strconv.Itoa(index) + placeholderSuffix
}

func openingFence(line string) (fence, string, bool) {
	content := trimLineEnding(line)
	indent := leadingSpaces(content)
	if indent > 3 {
		return fence{}, "", false
	}
	rest := content[indent:]
	if rest == "" || (rest[0] != '`' && rest[0] != '~') {
		return fence{}, "", false
	}
	char := rest[0]
	length := 0
	for length < len(rest) && rest[length] == char {
		length++
	}
	if length < 3 {
		return fence{}, "", false
	}
	info := strings.TrimSpace(rest[length:])
	if char == '`' && strings.Contains(info, "`") {
		return fence{}, "", false
	}
	return fence{char: char, length: length, indent: indent}, info, true
}

func closesFence(line string, open fence) bool {
	content := trimLineEnding(line)
	indent := leadingSpaces(content)
	if indent > 3 {
		return false
	}
	rest := content[indent:]
	length := 0
	for length < len(rest) && rest[length] == open.char {
		length++
	}
	if length < open.length {
		return false
	}
	return strings.TrimSpace(rest[length:]) == ""
}

func fenceLanguage(info string) string {
	if info == "" {
		return DefaultLanguage
	}
	lang, _, _ := strings.Cut(info, " ")
	lang = strings.Trim(lang, "{}.")
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}

func stripIndent(line string, indent int) string {
	for i := 0; i < indent && len(line) > 0 && line[0] == ' '; i++ {
		line = line[1:]
	}
	return line
}

func leadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}

func trimLineEnding(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
