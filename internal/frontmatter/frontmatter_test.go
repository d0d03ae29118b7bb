package frontmatter

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := "# Title\n\nHello\n"

	doc := Parse(input)

	require.False(t, doc.HadFrontmatter)
	require.NoError(t, doc.Warning)
	require.NotNil(t, doc.Fields)
	require.Empty(t, doc.Fields)
	require.Equal(t, input, doc.Body)
}

func TestParse_DelimiterNotAtStart_IsBody(t *testing.T) {
	input := "\n---\ntitle: x\n---\nbody"

	doc := Parse(input)

	require.False(t, doc.HadFrontmatter)
	require.Empty(t, doc.Fields)
	require.Equal(t, input, doc.Body)
}

func TestParse_SplitsFieldsAndBody(t *testing.T) {
	input := "---\ntitle: \"Hello World\"\nfeatured: true\ntags: [ai, retail]\n---\n# Hi\n"

	doc := Parse(input)

	require.True(t, doc.HadFrontmatter)
	require.NoError(t, doc.Warning)
	require.Equal(t, "Hello World", doc.Fields["title"])
	require.Equal(t, "true", doc.Fields["featured"])
	require.Equal(t, "[ai, retail]", doc.Fields["tags"])
	require.Equal(t, "# Hi\n", doc.Body)
}

func TestParse_DatesStayStrings(t *testing.T) {
	doc := Parse("---\ndate: 2024-03-01\n---\n")

	require.Equal(t, "2024-03-01", doc.Fields["date"])
}

func TestParse_ColonInValue_KeepsRemainder(t *testing.T) {
	input := "---\ntitle: Keynote: Retail AI\nvenue: 'NeurIPS'\nnot a field\n---\nBody"

	doc := Parse(input)

	require.True(t, doc.HadFrontmatter)
	require.NoError(t, doc.Warning)
	require.Equal(t, "Keynote: Retail AI", doc.Fields["title"])
	require.Equal(t, "NeurIPS", doc.Fields["venue"])
	require.Len(t, doc.Fields, 2)
	require.Equal(t, "Body", doc.Body)
}

func TestParse_SingleLineValuesOnlyLoseQuotes(t *testing.T) {
	input := "---\n" +
		"title: Episode #1 recap\n" +
		`summary: "say \"hi\""` + "\n" +
		`path: "tab\there"` + "\n" +
		"version: 1.10\n" +
		"count: 007\n" +
		"flag: yes\n" +
		"---\nbody\n"

	doc := Parse(input)

	require.NoError(t, doc.Warning)
	require.Equal(t, map[string]any{
		"title":   "Episode #1 recap",
		"summary": `say \"hi\"`,
		"path":    `tab\there`,
		"version": "1.10",
		"count":   "007",
		"flag":    "yes",
	}, doc.Fields)
}

func TestParse_BlockSequencesDecodeAsYAML(t *testing.T) {
	input := "---\n" +
		"title: Retail AI\n" +
		"tags:\n" +
		"  - ai\n" +
		"  - retail # trailing note\n" +
		"collaborators:\n" +
		"- Ana\n" +
		"\n" +
		"- Bo\n" +
		"abstract: |-\n" +
		"  line one\n" +
		"  line two\n" +
		"url: https://example.com/#top\n" +
		"---\n"

	doc := Parse(input)

	require.NoError(t, doc.Warning)
	require.Equal(t, "Retail AI", doc.Fields["title"])
	require.Equal(t, []any{"ai", "retail"}, doc.Fields["tags"])
	require.Equal(t, []any{"Ana", "Bo"}, doc.Fields["collaborators"])
	require.Equal(t, "line one\nline two", doc.Fields["abstract"])
	require.Equal(t, "https://example.com/#top", doc.Fields["url"])
}

func TestParse_EmptyValueWithoutContinuation_IsEmptyString(t *testing.T) {
	doc := Parse("---\nexcerpt:\ntitle: x\n---\n")

	require.Equal(t, "", doc.Fields["excerpt"])
	require.Equal(t, "x", doc.Fields["title"])
}

func TestParse_BrokenNestedBlock_FallsBackToLines(t *testing.T) {
	doc := Parse("---\nmeta:\n  a: [unclosed\n  b: two\n---\n")

	require.Equal(t, "", doc.Fields["meta"])
	require.Equal(t, "[unclosed", doc.Fields["a"])
	require.Equal(t, "two", doc.Fields["b"])
}

func TestParse_MissingClosingDelimiter_DegradesToBody(t *testing.T) {
	input := "---\ntitle: value\n# Title\n"

	doc := Parse(input)

	require.False(t, doc.HadFrontmatter)
	require.ErrorIs(t, doc.Warning, ErrMalformedFrontmatter)
	require.Empty(t, doc.Fields)
	require.Equal(t, input, doc.Body)
}

func TestParse_BlockWithoutFields_IsMalformed(t *testing.T) {
	doc := Parse("---\njust some words\n---\nBody")

	require.True(t, doc.HadFrontmatter)
	require.ErrorIs(t, doc.Warning, ErrMalformedFrontmatter)
	require.Empty(t, doc.Fields)
	require.Equal(t, "Body", doc.Body)
}

func TestParse_EmptyBlock(t *testing.T) {
	doc := Parse("---\n---\n# Title\n")

	require.True(t, doc.HadFrontmatter)
	require.NoError(t, doc.Warning)
	require.Empty(t, doc.Fields)
	require.Equal(t, "# Title\n", doc.Body)
}

func TestParse_CRLF(t *testing.T) {
	doc := Parse("---\r\ntitle: value\r\n---\r\n# Title\r\n")

	require.True(t, doc.HadFrontmatter)
	require.Equal(t, "value", doc.Fields["title"])
	require.Equal(t, "# Title\r\n", doc.Body)
}

func TestParse_ClosingDelimiterAtEOF(t *testing.T) {
	doc := Parse("---\ntitle: value\n---")

	require.True(t, doc.HadFrontmatter)
	require.Equal(t, "value", doc.Fields["title"])
	require.Empty(t, doc.Body)
}

func TestParse_RoundTripQuotedPairs(t *testing.T) {
	pairs := map[string]string{
		"title":    "Hello World",
		"excerpt":  "A short note, with a comma",
		"location": "Lisbon, Portugal",
		"order":    "3",
		"featured": "false",
		"date":     "2024-05-06",
	}
	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("---\n")
	for _, key := range keys {
		fmt.Fprintf(&b, "%s: %q\n", key, pairs[key])
	}
	b.WriteString("---\nbody\n")

	doc := Parse(b.String())

	require.Len(t, doc.Fields, len(pairs))
	for key, value := range pairs {
		require.Equal(t, value, doc.Fields[key], key)
	}
}

func TestParseLines(t *testing.T) {
	fields := ParseLines("a: 1\n b : \"two\" \n: orphan\nnocolon\nc:\nd: 'x: y'\r\n")

	require.Equal(t, map[string]any{
		"a": "1",
		"b": "two",
		"c": "",
		"d": "x: y",
	}, fields)
}

func TestUnquote(t *testing.T) {
	require.Equal(t, "x", Unquote(`"x"`))
	require.Equal(t, "x", Unquote(`'x'`))
	require.Equal(t, `"x'`, Unquote(`"x'`))
	require.Equal(t, `"`, Unquote(`"`))
	require.Equal(t, "", Unquote(`""`))
}
