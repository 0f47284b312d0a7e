package ntriples

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/triplecheck/model"
)

func TestParseLine(t *testing.T) {
	s := model.NewIRI("http://example.org/s")
	p := model.NewIRI("http://example.org/p")

	tests := []struct {
		name string
		line string
		want model.Statement
	}{
		{"IRIObject", `<http://example.org/s> <http://example.org/p> <http://example.org/o> .`,
			model.NewStatement(s, p, model.NewIRI("http://example.org/o"))},
		{"PlainLiteral", `<http://example.org/s> <http://example.org/p> "hello" .`,
			model.NewStatement(s, p, model.NewLiteral("hello"))},
		{"LangLiteral", `<http://example.org/s> <http://example.org/p> "Hallo"@DE-at .`,
			model.NewStatement(s, p, model.NewLangLiteral("Hallo", "de-at"))},
		{"TypedLiteral", `<http://example.org/s> <http://example.org/p> "5"^^<http://www.w3.org/2001/XMLSchema#integer> .`,
			model.NewStatement(s, p, model.NewTypedLiteral("5", "http://www.w3.org/2001/XMLSchema#integer"))},
		{"Escapes", `<http://example.org/s> <http://example.org/p> "a\"b\\c\n\té\U0001F600" .`,
			model.NewStatement(s, p, model.NewLiteral("a\"b\\c\n\té\U0001F600"))},
		{"BlankNodes", `_:b1 <http://example.org/p> _:b.2 .`,
			model.NewStatement(model.NewBlankNode("b1"), p, model.NewBlankNode("b.2"))},
		{"BlankNodeBeforeDot", `_:x <http://example.org/p> _:y.`,
			model.NewStatement(model.NewBlankNode("x"), p, model.NewBlankNode("y"))},
		{"IRIEscape", `<http://example.org/s> <http://example.org/p> <http://example.org/\u00E9> .`,
			model.NewStatement(s, p, model.NewIRI("http://example.org/é"))},
		{"TrailingComment", "\t<http://example.org/s> <http://example.org/p> \"x\" . # note",
			model.NewStatement(s, p, model.NewLiteral("x"))},
		{"NoSpaceBeforeDot", `<http://example.org/s> <http://example.org/p> "x".`,
			model.NewStatement(s, p, model.NewLiteral("x"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseLine(tt.line)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLineSkips(t *testing.T) {
	for _, line := range []string{"", "   ", "# comment", "  # indented comment"} {
		_, ok, err := ParseLine(line)
		require.NoError(t, err)
		assert.False(t, ok, "line %q", line)
	}
}

func TestParseLineErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		msg  string
	}{
		{"LiteralSubject", `"s" <http://p> <http://o> .`, "subject must be"},
		{"MissingDot", `<http://s> <http://p> <http://o>`, "expected '.'"},
		{"Unterminated", `<http://s> <http://p> "abc .`, "unterminated literal"},
		{"BadEscape", `<http://s> <http://p> "a\qb" .`, "invalid escape"},
		{"SpaceInIRI", `<http://s x> <http://p> <http://o> .`, "invalid character"},
		{"Trailing", `<http://s> <http://p> <http://o> . extra`, "after '.'"},
		{"EmptyLang", `<http://s> <http://p> "x"@ .`, "invalid language tag"},
		{"BadCodePoint", `<http://s> <http://p> "\uZZZZ" .`, "invalid code point"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseLine(tt.line)
			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Contains(t, se.Msg, tt.msg)
			assert.Positive(t, se.Col)
		})
	}
}

func TestParseRoundTripsEncoding(t *testing.T) {
	st := model.NewStatement(
		model.NewBlankNode("n0"),
		model.NewIRI("http://example.org/says"),
		model.NewLangLiteral("line\none \"quoted\" \\ tab\t", "en"),
	)

	got, ok, err := ParseLine(st.String())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, st, got)
}
