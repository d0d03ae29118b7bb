package derive

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":              "hello-world",
		"  --Edge   Case--  ":      "edge-case",
		"AI & ML: A Primer!":       "ai-ml-a-primer",
		"Café Société":             "cafe-societe",
		"multi---hyphen  -- words": "multi-hyphen-words",
		"日本語":                      "",
		"tabs\tand\nnewlines":      "tabs-and-newlines",
	}

	for input, want := range cases {
		require.Equal(t, want, Slugify(input), input)
	}
}

func TestSlug_FirstQualifyingCandidateWins(t *testing.T) {
	d := New(Config{Category: "talks", Now: fixedClock})

	slug := d.Slug([]string{"", "AI", "Retail Summit", "Lisbon"}, "2024-03")

	require.Equal(t, "retail-summit-2024-03", slug)
	require.True(t, ValidSlug(slug))
}

func TestSlug_WithoutDedupeKey(t *testing.T) {
	d := New(Config{Now: fixedClock})

	require.Equal(t, "hello-world", d.Slug([]string{"Hello World"}, ""))
}

func TestSlug_FallbackUsesCategoryKeyAndClock(t *testing.T) {
	d := New(Config{Category: "Events", Now: fixedClock})
	stamp := "sacffq" // 1710428966 in base 36

	require.Equal(t, "events-2024-03-"+stamp, d.Slug([]string{"AI", "", "!!"}, "2024-03"))
	require.Equal(t, "events-undated-"+stamp, d.Slug(nil, ""))
	require.Equal(t, "item-undated-"+stamp, New(Config{Now: fixedClock}).Slug(nil, ""))
}

func TestSlug_SameTitleSameMonthShareBase(t *testing.T) {
	d := New(Config{Category: "talks", Now: fixedClock})

	first := d.Slug([]string{"AI Talk"}, DateKey("2024-05-02"))
	second := d.Slug([]string{"AI Talk"}, DateKey("2024-05-20"))

	require.Equal(t, "ai-talk-2024-05", first)
	require.Equal(t, first, second)
}

func TestSlug_AlwaysValid(t *testing.T) {
	d := New(Config{Category: "blog", Now: fixedClock})
	inputs := []string{"", "a", "Ünïcödé Title", "---", "Hello, World!", "100% Done", "C++ & Go"}

	for _, input := range inputs {
		slug := d.Slug([]string{input}, DateKey("2023-09-01"))
		require.True(t, ValidSlug(slug), "%q produced %q", input, slug)
		require.NotEmpty(t, slug)
	}
}

func TestDateKey(t *testing.T) {
	require.Equal(t, "2024-03", DateKey("2024-03-01"))
	require.Equal(t, "", DateKey(""))
	require.Equal(t, "", DateKey("March"))
}

func TestTags_ExplicitAreDedupedAndCapped(t *testing.T) {
	d := New(Config{DefaultTag: "Blog"})

	tags := d.Tags("irrelevant", []string{"machine learning", "ai", "retail"})
	require.Equal(t, []string{"machine learning", "ai", "retail"}, tags)

	tags = d.Tags("", []string{"a", "B", "b", "c", "d", "e", "f", "A"})
	require.Equal(t, []string{"a", "B", "c", "d", "e"}, tags)
}

func TestTags_DerivedFromVocabulary(t *testing.T) {
	d := New(Config{
		DefaultTag: "Research",
		Keywords: []Keyword{
			{Match: "computer vision", Tag: "Computer Vision"},
			{Match: "retail", Tag: "Retail"},
			{Match: "llm", Tag: "LLMs"},
			{Match: "research", Tag: "Research"},
		},
	})

	tags := d.Tags("Applying COMPUTER VISION to retail shelves.", nil)

	require.Equal(t, []string{"Research", "Computer Vision", "Retail"}, tags)
}

func TestTags_DefaultAlwaysPresent(t *testing.T) {
	d := New(Config{DefaultTag: "Talk", Keywords: []Keyword{{Match: "quantum", Tag: "Quantum"}}})

	require.Equal(t, []string{"Talk"}, d.Tags("nothing relevant", nil))
}

func TestTags_DerivedRespectsLimit(t *testing.T) {
	keywords := make([]Keyword, 0, 10)
	var body strings.Builder
	for _, word := range []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta"} {
		keywords = append(keywords, Keyword{Match: word, Tag: strings.ToUpper(word)})
		body.WriteString(word + " ")
	}
	d := New(Config{DefaultTag: "Blog", Keywords: keywords, TagLimit: 3})

	require.Equal(t, []string{"Blog", "ALPHA", "BETA"}, d.Tags(body.String(), nil))
	require.Equal(t, 3, d.TagLimit())
}

func TestCap(t *testing.T) {
	require.Equal(t, []string{}, Cap(nil, 5))
	require.Equal(t, []string{"x"}, Cap([]string{" x ", "", "X"}, 0))
}
