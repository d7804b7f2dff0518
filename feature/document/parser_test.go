package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func md(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n"))
}

func TestParse_Frontmatter(t *testing.T) {
	src := md(
		"---",
		"title: Go Basics",
		"deck: Programming::Go",
		"tags:",
		"  - go",
		"---",
		"",
		"body text",
		"",
	)

	doc, err := Parse(src)

	require.NoError(t, err)
	assert.Equal(t, "Go Basics", doc.Title())
	assert.Equal(t, "Programming::Go", doc.DeckOverride())
	assert.Contains(t, doc.Meta(), "tags")
	assert.Equal(t, src, doc.Source())
}

func TestParse_NoFrontmatter(t *testing.T) {
	src := md("just some text", "")

	doc, err := Parse(src)

	require.NoError(t, err)
	assert.Empty(t, doc.Title())
	assert.Empty(t, doc.DeckOverride())
	assert.Empty(t, doc.Cards())
	assert.Equal(t, src, doc.Source())
}

func TestParse_SingleCard(t *testing.T) {
	src := md(
		"---",
		"title: Go Basics",
		"---",
		"",
		"### Defer",
		"^a1b2c3",
		"",
		"#### Question",
		"```go",
		"What does **defer** do?",
		"```",
		"",
		"#### Answer",
		"```",
		"Runs at function exit.",
		"```",
		"",
	)

	doc, err := Parse(src)

	require.NoError(t, err)
	cards := doc.Cards()
	require.Len(t, cards, 1)

	card := cards[0]
	assert.Equal(t, "Defer", card.Title())
	assert.Equal(t, "a1b2c3", card.RemoteID())
	assert.Equal(t, "What does **defer** do?", card.Question())
	assert.Equal(t, "Runs at function exit.", card.Answer())
	assert.Equal(t, 5, card.Line())
}

func TestParse_CardWithoutID(t *testing.T) {
	src := md(
		"### Slices",
		"#### Question",
		"```",
		"q",
		"```",
		"#### Answer",
		"```",
		"a",
		"```",
		"",
	)

	doc, err := Parse(src)

	require.NoError(t, err)
	require.Len(t, doc.Cards(), 1)
	assert.Empty(t, doc.Cards()[0].RemoteID())
}

func TestParse_MultilineFieldsKeepInteriorExactly(t *testing.T) {
	src := md(
		"### Error handling",
		"#### Question",
		"```",
		"",
		"How do you wrap an error?",
		"",
		"    indented line",
		"",
		"```",
		"#### Answer",
		"```",
		"fmt.Errorf(\"context: %w\", err)",
		"```",
		"",
	)

	doc, err := Parse(src)

	require.NoError(t, err)
	card := doc.Cards()[0]
	assert.Equal(t, "How do you wrap an error?\n\n    indented line", card.Question())
}

func TestParse_DeckPaths(t *testing.T) {
	src := md(
		"---",
		"deck: A::B",
		"---",
		"",
		"### Orphan",
		"#### Question",
		"```",
		"q0",
		"```",
		"#### Answer",
		"```",
		"a0",
		"```",
		"",
		"# X",
		"",
		"## Y",
		"",
		"### Nested",
		"#### Question",
		"```",
		"q1",
		"```",
		"#### Answer",
		"```",
		"a1",
		"```",
		"",
		"# Z",
		"",
		"### Reset",
		"#### Question",
		"```",
		"q2",
		"```",
		"#### Answer",
		"```",
		"a2",
		"```",
		"",
	)

	doc, err := Parse(src)
	require.NoError(t, err)

	base, err := doc.BaseDeck("Ankify")
	require.NoError(t, err)
	assert.Equal(t, "A::B", base)

	var paths []string
	require.NoError(t, doc.Walk(base, func(deckPath string, card *Card) error {
		paths = append(paths, deckPath+"/"+card.Title())
		return nil
	}))
	assert.Equal(t, []string{
		"A::B/Orphan",
		"A::B::X::Y/Nested",
		"A::B::Z/Reset",
	}, paths)
}

func TestParse_FenceInteriorIsContent(t *testing.T) {
	src := md(
		"Intro prose.",
		"",
		"```",
		"# not a section",
		"### not a card",
		"```",
		"",
		"### Real card",
		"#### Question",
		"````",
		"```",
		"# heading inside nested fence",
		"```",
		"^not-an-id",
		"````",
		"#### Answer",
		"```",
		"done",
		"```",
		"",
	)

	doc, err := Parse(src)

	require.NoError(t, err)
	cards := doc.Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, "Real card", cards[0].Title())
	assert.Empty(t, cards[0].RemoteID())
	assert.Equal(t, "```\n# heading inside nested fence\n```\n^not-an-id", cards[0].Question())

	base, err := doc.BaseDeck("Root")
	require.NoError(t, err)
	var paths []string
	_ = doc.Walk(base, func(deckPath string, _ *Card) error {
		paths = append(paths, deckPath)
		return nil
	})
	assert.Equal(t, []string{"Root"}, paths)
}

func TestParse_ShortFences(t *testing.T) {
	src := md(
		"### Card",
		"#### Question",
		"`",
		"which built-in copies slices?",
		"`",
		"#### Answer",
		"``",
		"```",
		"copy(dst, src)",
		"```",
		"``",
		"",
	)

	doc, err := Parse(src)

	require.NoError(t, err)
	cards := doc.Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, "which built-in copies slices?", cards[0].Question())
	// A two-backtick fence closes only on exactly two backticks, so the
	// three-backtick fence it quotes stays content.
	assert.Equal(t, "```\ncopy(dst, src)\n```", cards[0].Answer())
}

func TestParse_InlineCodeLineStaysProse(t *testing.T) {
	src := md(
		"### Card",
		"`go doc` beats guessing",
		"^kept-id",
		"#### Question", "```", "q", "```",
		"#### Answer", "```", "a", "```",
		"",
	)

	doc, err := Parse(src)

	require.NoError(t, err)
	require.Len(t, doc.Cards(), 1)
	assert.Equal(t, "kept-id", doc.Cards()[0].RemoteID())
	assert.Equal(t, "q", doc.Cards()[0].Question())
}

func TestParse_InterstitialProseIgnored(t *testing.T) {
	src := md(
		"### Card",
		"",
		"Some context the card does not need.",
		"",
		"#### Question",
		"lead-in text",
		"```",
		"q",
		"```",
		"",
		"notes between the blocks",
		"",
		"#### Answer",
		"```",
		"a",
		"```",
		"",
	)

	doc, err := Parse(src)

	require.NoError(t, err)
	require.Len(t, doc.Cards(), 1)
	assert.Equal(t, "q", doc.Cards()[0].Question())
	assert.Equal(t, "a", doc.Cards()[0].Answer())
}

func TestParse_CRLF(t *testing.T) {
	src := []byte(strings.Join([]string{
		"### Card",
		"^id42",
		"#### Question",
		"```",
		"line one",
		"line two",
		"```",
		"#### Answer",
		"```",
		"a",
		"```",
		"",
	}, "\r\n"))

	doc, err := Parse(src)

	require.NoError(t, err)
	card := doc.Cards()[0]
	assert.Equal(t, "id42", card.RemoteID())
	assert.Equal(t, "line one\nline two", card.Question())
	assert.NotContains(t, card.Question(), "\r")
}

func TestParse_StructureErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     []byte
		wantMsg string
	}{
		{
			name: "AnswerBeforeQuestion",
			src: md(
				"### Card",
				"#### Answer",
				"```",
				"a",
				"```",
				"",
			),
			wantMsg: "answer heading before the question",
		},
		{
			name: "MissingQuestionAtNextCard",
			src: md(
				"### First",
				"### Second",
				"",
			),
			wantMsg: "card is missing its question",
		},
		{
			name: "MissingQuestionAtEOF",
			src: md(
				"### Card",
				"some prose",
			),
			wantMsg: "card is missing its question",
		},
		{
			name: "MissingAnswerAtSection",
			src: md(
				"### Card",
				"#### Question",
				"```",
				"q",
				"```",
				"# Next section",
				"",
			),
			wantMsg: "card is missing its answer",
		},
		{
			name: "DuplicateQuestion",
			src: md(
				"### Card",
				"#### Question",
				"```",
				"q",
				"```",
				"#### Question",
				"",
			),
			wantMsg: "more than one question",
		},
		{
			name: "UnknownCardHeading",
			src: md(
				"### Card",
				"#### Comments",
				"",
			),
			wantMsg: `unknown card heading "Comments"`,
		},
		{
			name: "BlockHeadingOutsideCard",
			src: md(
				"# Section",
				"#### Question",
				"",
			),
			wantMsg: "outside of a card",
		},
		{
			name: "EmptyIDMarker",
			src: md(
				"### Card",
				"^",
				"",
			),
			wantMsg: "card id marker is empty",
		},
		{
			name: "DuplicateIDMarker",
			src: md(
				"### Card",
				"^one",
				"^two",
				"",
			),
			wantMsg: "more than one id marker",
		},
		{
			name: "UnterminatedQuestionFence",
			src: md(
				"### Card",
				"#### Question",
				"```",
				"q",
			),
			wantMsg: "unterminated fenced block",
		},
		{
			name: "MissingQuestionFence",
			src: md(
				"### Card",
				"#### Question",
				"#### Answer",
				"",
			),
			wantMsg: "question heading is missing its fenced block",
		},
		{
			name: "MissingAnswerAtEOF",
			src: md(
				"### Card",
				"#### Question",
				"```",
				"q",
				"```",
			),
			wantMsg: "card is missing its answer",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)

			var structErr *StructureError
			require.ErrorAs(t, err, &structErr)
			assert.Contains(t, err.Error(), tc.wantMsg)
			assert.Contains(t, err.Error(), "malformed document")
		})
	}
}

func TestParse_StructureErrorContext(t *testing.T) {
	src := md(
		"# Section",
		"",
		"### Broken card",
		"#### Answer",
		"",
	)

	_, err := Parse(src)

	var structErr *StructureError
	require.ErrorAs(t, err, &structErr)
	assert.Equal(t, "Broken card", structErr.Card)
	assert.Equal(t, 4, structErr.Line)
}

func TestParse_LineNumbersCountFrontmatter(t *testing.T) {
	src := md(
		"---",
		"title: T",
		"---",
		"### Card",
		"#### Bogus",
		"",
	)

	_, err := Parse(src)

	var structErr *StructureError
	require.ErrorAs(t, err, &structErr)
	assert.Equal(t, 5, structErr.Line)
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		line  string
		level int
	}{
		{line: "# One", level: 1},
		{line: "## Two", level: 2},
		{line: "### Three", level: 3},
		{line: "#### Four", level: 4},
		{line: "######## Nine", level: 0},
		{line: "#NoSpace", level: 0},
		{line: "###", level: 0},
		{line: "plain", level: 0},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.level, headingLevel(tc.line), tc.line)
	}
}
