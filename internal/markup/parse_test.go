package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlainText(t *testing.T) {
	segments := ParseMarkup("Hello World")
	require.Len(t, segments, 1)
	assert.Equal(t, PlainSegment("Hello World"), segments[0])
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, ParseMarkup(""))
}

func TestParseStyles(t *testing.T) {
	tests := []struct {
		name  string
		input string
		style TextStyle
	}{
		{"bold", "Hello <b>X</b> World", TextStyle{Bold: true}},
		{"strong", "Hello <strong>X</strong> World", TextStyle{Bold: true}},
		{"italic", "Hello <i>X</i> World", TextStyle{Italic: true}},
		{"em", "Hello <em>X</em> World", TextStyle{Italic: true}},
		{"underline", "Hello <u>X</u> World", TextStyle{Underline: true}},
		{"uppercase tag", "Hello <B>X</B> World", TextStyle{Bold: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := ParseMarkup(tt.input)
			require.Len(t, segments, 3)
			assert.Equal(t, PlainSegment("Hello "), segments[0])
			assert.Equal(t, StyledSegment{Text: "X", Style: tt.style}, segments[1])
			assert.Equal(t, PlainSegment(" World"), segments[2])
		})
	}
}

func TestParseNested(t *testing.T) {
	segments := ParseMarkup("<b><i>X</i></b>")
	require.Len(t, segments, 1)
	assert.Equal(t, StyledSegment{Text: "X", Style: TextStyle{Bold: true, Italic: true}}, segments[0])
}

func TestParseNestingRestoresOuterStyle(t *testing.T) {
	segments := ParseMarkup("<b>a<i>b<u>c</u>d</i>e</b>f")
	want := []StyledSegment{
		{Text: "a", Style: TextStyle{Bold: true}},
		{Text: "b", Style: TextStyle{Bold: true, Italic: true}},
		{Text: "c", Style: TextStyle{Bold: true, Italic: true, Underline: true}},
		{Text: "d", Style: TextStyle{Bold: true, Italic: true}},
		{Text: "e", Style: TextStyle{Bold: true}},
		PlainSegment("f"),
	}
	assert.Equal(t, want, segments)
}

func TestParseLink(t *testing.T) {
	segments := ParseMarkup(`Click <a href="https://example.com">here</a>`)
	require.Len(t, segments, 2)
	assert.Equal(t, PlainSegment("Click "), segments[0])
	assert.Equal(t, StyledSegment{
		Text:  "here",
		Style: TextStyle{Underline: true},
		Link:  "https://example.com",
	}, segments[1])
	assert.True(t, segments[1].HasLink())
}

func TestParseLinkHrefIsDecoded(t *testing.T) {
	segments := ParseMarkup(`<a href="https&#58;//example.com/?a=1&amp;b=2">q</a>`)
	require.Len(t, segments, 1)
	assert.Equal(t, "https://example.com/?a=1&b=2", segments[0].Link)
}

func TestParseLinkHrefUsesEntityTable(t *testing.T) {
	// Only the listed references are decoded, as in body text.
	segments := ParseMarkup(`<a href="https://example.com/a&#60;b&nbsp;c">q</a>`)
	require.Len(t, segments, 1)
	assert.Equal(t, "https://example.com/a&#60;b c", segments[0].Link)
}

func TestParseLinkSanitizedHref(t *testing.T) {
	input := `<a title="a href=no" href='https://example.com/?q=1&amp;y=2'>q</a>`
	segments := ParseMarkup(Sanitize(input))
	require.Len(t, segments, 1)
	assert.Equal(t, "https://example.com/?q=1&y=2", segments[0].Link)
}

func TestParseTruncatedTrailingTag(t *testing.T) {
	segments := ParseMarkup("<b>x</b> if a<b then")
	want := []StyledSegment{
		{Text: "x", Style: TextStyle{Bold: true}},
		PlainSegment(" if a<b then"),
	}
	assert.Equal(t, want, segments)
}

func TestRawAttr(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want string
		ok   bool
	}{
		{"double quoted", `<a href="https://x.org">`, "https://x.org", true},
		{"single quoted", `<a href='https://x.org'>`, "https://x.org", true},
		{"unquoted", `<a href=https://x.org/a>`, "https://x.org/a", true},
		{"upper case", `<A HREF="u">`, "u", true},
		{"spaces around equals", `<a href = "u" >`, "u", true},
		{"after other attributes", `<a title="href=no" href="u">`, "u", true},
		{"first wins", `<a href="u" href="v">`, "u", true},
		{"self closing", `<a href="u"/>`, "u", true},
		{"missing", `<a name="x">`, "", false},
		{"no attributes", `<a>`, "", false},
		{"unterminated quote", `<a href="u`, "u", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rawAttr([]byte(tt.tag), "href")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAnchorWithoutHref(t *testing.T) {
	segments := ParseMarkup(`<a name="x">anchor</a> text`)
	require.Len(t, segments, 1)
	assert.Equal(t, PlainSegment("anchor text"), segments[0])
}

func TestParseLinkInsideBold(t *testing.T) {
	segments := ParseMarkup(`<b>see <a href="https://a.com">this</a> now</b>`)
	want := []StyledSegment{
		{Text: "see ", Style: TextStyle{Bold: true}},
		{Text: "this", Style: TextStyle{Bold: true, Underline: true}, Link: "https://a.com"},
		{Text: " now", Style: TextStyle{Bold: true}},
	}
	assert.Equal(t, want, segments)
}

func TestParseEntityDecoding(t *testing.T) {
	segments := ParseMarkup("&lt;script&gt; &amp; &quot;test&quot;")
	require.Len(t, segments, 1)
	assert.Equal(t, `<script> & "test"`, segments[0].Text)
}

func TestParseLineBreaks(t *testing.T) {
	segments := ParseMarkup("Line 1<br>Line 2<p>Para</p>")
	assert.Equal(t, "Line 1\nLine 2\nPara", SegmentsToPlainText(segments))
}

func TestParseBreakIsPlainInsideBold(t *testing.T) {
	segments := ParseMarkup("<b>a<br>b</b>")
	want := []StyledSegment{
		{Text: "a", Style: TextStyle{Bold: true}},
		PlainSegment("\n"),
		{Text: "b", Style: TextStyle{Bold: true}},
	}
	assert.Equal(t, want, segments)
}

func TestParseMismatchedCloseIsIgnored(t *testing.T) {
	segments := ParseMarkup("<b>x</i>y</b>z")
	want := []StyledSegment{
		{Text: "xy", Style: TextStyle{Bold: true}},
		PlainSegment("z"),
	}
	assert.Equal(t, want, segments)
}

func TestParseMisnestedTags(t *testing.T) {
	// </b> does not match the innermost <i>, so it is ignored; </i> then
	// restores the style in effect before <i>.
	segments := ParseMarkup("<b><i>x</b>y</i>z")
	want := []StyledSegment{
		{Text: "xy", Style: TextStyle{Bold: true, Italic: true}},
		{Text: "z", Style: TextStyle{Bold: true}},
	}
	assert.Equal(t, want, segments)
}

func TestParseSynonymCloses(t *testing.T) {
	segments := ParseMarkup("<strong>a</b>b")
	want := []StyledSegment{
		{Text: "a", Style: TextStyle{Bold: true}},
		PlainSegment("b"),
	}
	assert.Equal(t, want, segments)
}

func TestParseUnknownTagsKeepText(t *testing.T) {
	segments := ParseMarkup(`<span class="x">hello</span> <!-- note --><div>world</div>`)
	require.Len(t, segments, 1)
	assert.Equal(t, "hello world", segments[0].Text)
}

func TestParseDeepNesting(t *testing.T) {
	depth := 10000
	input := strings.Repeat("<b>", depth) + "deep" + strings.Repeat("</b>", depth) + "tail"
	segments := ParseMarkup(input)
	want := []StyledSegment{
		{Text: "deep", Style: TextStyle{Bold: true}},
		PlainSegment("tail"),
	}
	assert.Equal(t, want, segments)
}

func TestParseComplexMarkup(t *testing.T) {
	input := `New message from <b>John</b>: <i>"Hello <u>there</u>!"</i>`
	plain := SegmentsToPlainText(ParseMarkup(input))
	assert.Equal(t, `New message from John: "Hello there!"`, plain)
}

func TestParseNeverYieldsMergeableNeighbours(t *testing.T) {
	inputs := append([]string{
		"<b>a</b><b>b</b>",
		"<i>a</i><em>b</em>",
		"a<span>b</span>c",
		"<u>a</u><a href=\"https://x.com\">b</a>",
		"<b>a</b><br><br><b>b</b>",
	}, adversarialInputs...)

	for _, input := range inputs {
		segments := ParseMarkup(input)
		for i := 1; i < len(segments); i++ {
			assert.False(t, segments[i-1].mergeable(segments[i]),
				"input %q: segments %d and %d are mergeable", input, i-1, i)
		}
		for _, s := range segments {
			assert.NotEmpty(t, s.Text, "input %q produced an empty segment", input)
		}
	}
}

func TestParseAgreesWithStrip(t *testing.T) {
	inputs := []string{
		"Hello <b>World</b>",
		"<b><i>bold italic</i></b> and <u>under</u>",
		`Visit <a href="https://example.com">the site</a> today`,
		"Tom &amp; Jerry say &quot;hi&quot;",
		`say "hi" & it's fine`,
		"<b>unclosed",
		"<script>alert(1)</script>gone",
	}

	for _, input := range inputs {
		sanitized := Sanitize(input)
		assert.Equal(t, StripHTML(sanitized), SegmentsToPlainText(ParseMarkup(sanitized)), "input %q", input)
	}
}

func TestStep(t *testing.T) {
	var st parseState
	st = step(st, token{kind: openToken, name: "b"})
	assert.Equal(t, TextStyle{Bold: true}, st.style)
	require.NotNil(t, st.top)
	assert.Equal(t, kindBold, st.top.kind)

	before := st
	st = step(st, token{kind: openToken, name: "a", href: "https://x.com"})
	assert.Equal(t, TextStyle{Bold: true, Underline: true}, st.style)
	assert.Equal(t, "https://x.com", st.link)
	assert.Equal(t, kindBold, before.top.kind, "earlier state must not see later pushes")

	st = step(st, token{kind: closeToken, name: "b"})
	assert.Equal(t, "https://x.com", st.link, "mismatched close must not pop")

	st = step(st, token{kind: closeToken, name: "a"})
	assert.Equal(t, TextStyle{Bold: true}, st.style)
	assert.Empty(t, st.link)

	st = step(st, token{kind: closeToken, name: "strong"})
	assert.Nil(t, st.top)
	assert.True(t, st.style.IsPlain())
}
