package derive

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestExcerpt_PrefersExplicit(t *testing.T) {
	require.Equal(t, "Given", Excerpt("  Given ", "# Body", 10))
}

func TestExcerpt_StripsMarkdown(t *testing.T) {
	got := Excerpt("", "# Heading\n\nSome **bold** and [a link](https://example.com).", 200)

	require.NotContains(t, got, "**")
	require.NotContains(t, got, "](")
	require.Contains(t, got, "bold")
	require.Contains(t, got, "a link")
}

func TestExcerpt_CutsOnWordBoundary(t *testing.T) {
	body := strings.Repeat("lorem ipsum ", 40)

	got := Excerpt("", body, 30)

	require.True(t, strings.HasSuffix(got, "…"))
	require.LessOrEqual(t, utf8.RuneCountInString(got), 31)
	require.Equal(t, "lorem ipsum lorem ipsum lorem…", got)
}

func TestReadingTime(t *testing.T) {
	require.Equal(t, 1, ReadingTime(""))
	require.Equal(t, 1, ReadingTime("just a few words"))
	require.Equal(t, 2, ReadingTime(strings.Repeat("word ", 201)))
	require.Equal(t, 3, ReadingTime(strings.Repeat("word ", 600)))
}
