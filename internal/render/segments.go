package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/llehouerou/notifyd/internal/markup"
)

// Renderer draws styled segments using the capabilities of one output.
type Renderer struct {
	lg *lipgloss.Renderer
}

// NewRenderer detects the capabilities of w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{lg: lipgloss.NewRenderer(w)}
}

// SetColorProfile overrides the detected capabilities. termenv.Ascii
// disables styling and hyperlinks.
func (r *Renderer) SetColorProfile(p termenv.Profile) {
	r.lg.SetColorProfile(p)
}

func (r *Renderer) styled() bool {
	return r.lg.ColorProfile() != termenv.Ascii
}

var defaultRenderer = &Renderer{lg: lipgloss.DefaultRenderer()}

// Segments renders segments for stdout. See Renderer.Segments.
func Segments(segments []markup.StyledSegment, width int) string {
	return defaultRenderer.Segments(segments, width)
}

// Segments renders segments one output line per text line, applying
// bold, italic and underline and wrapping links in OSC 8 hyperlinks.
// Control characters are removed from segment text. With width > 0 each
// line is cut to width cells. Without styling, links are shown as
// "text <url>".
func (r *Renderer) Segments(segments []markup.StyledSegment, width int) string {
	lines := splitLines(segments)
	out := make([]string, len(lines))
	for i, line := range lines {
		if !r.styled() {
			line = inlineLinks(line)
		}
		out[i] = r.line(fitLine(line, width))
	}
	return strings.Join(out, "\n")
}

// Card renders a title row with right-aligned meta text, a separator
// and the body segments.
func (r *Renderer) Card(title, meta string, body []markup.StyledSegment, width int) string {
	title = Sanitize(title)
	meta = Sanitize(meta)
	if width <= 0 {
		width = runewidth.StringWidth(title) + runewidth.StringWidth(meta) + 1
	}
	title = Truncate(title, max(width-runewidth.StringWidth(meta)-1, 1))
	header := Row(r.lg.NewStyle().Bold(true).Render(title), meta, width)

	parts := []string{header, Separator(width)}
	if len(body) > 0 {
		parts = append(parts, r.Segments(body, width))
	}
	return strings.Join(parts, "\n")
}

// splitLines breaks segments at newlines and sanitizes their text.
func splitLines(segments []markup.StyledSegment) [][]markup.StyledSegment {
	lines := [][]markup.StyledSegment{nil}
	for _, seg := range segments {
		for j, part := range strings.Split(seg.Text, "\n") {
			if j > 0 {
				lines = append(lines, nil)
			}
			if text := Sanitize(part); text != "" {
				piece := seg
				piece.Text = text
				lines[len(lines)-1] = append(lines[len(lines)-1], piece)
			}
		}
	}
	return lines
}

func inlineLinks(line []markup.StyledSegment) []markup.StyledSegment {
	out := make([]markup.StyledSegment, 0, len(line))
	for _, seg := range line {
		if !seg.HasLink() {
			out = append(out, seg)
			continue
		}
		url := Sanitize(seg.Link)
		seg.Link = ""
		out = append(out, seg)
		if url != seg.Text {
			out = append(out, markup.PlainSegment(" <"+url+">"))
		}
	}
	return out
}

// fitLine cuts line to width cells, replacing the overflow with an
// ellipsis.
func fitLine(line []markup.StyledSegment, width int) []markup.StyledSegment {
	if width <= 0 {
		return line
	}
	total := 0
	for _, seg := range line {
		total += runewidth.StringWidth(seg.Text)
	}
	if total <= width {
		return line
	}

	budget := width - runewidth.StringWidth(ellipsis)
	out := make([]markup.StyledSegment, 0, len(line)+1)
	for _, seg := range line {
		if budget <= 0 {
			break
		}
		w := runewidth.StringWidth(seg.Text)
		if w > budget {
			seg.Text = runewidth.Truncate(seg.Text, budget, "")
			w = budget
		}
		if seg.Text != "" {
			out = append(out, seg)
		}
		budget -= w
	}
	return append(out, markup.PlainSegment(ellipsis))
}

func (r *Renderer) line(line []markup.StyledSegment) string {
	var b strings.Builder
	for _, seg := range line {
		text := seg.Text
		if !seg.Style.IsPlain() {
			text = r.lg.NewStyle().
				Bold(seg.Style.Bold).
				Italic(seg.Style.Italic).
				Underline(seg.Style.Underline).
				Render(text)
		}
		if seg.HasLink() {
			text = ansi.SetHyperlink(Sanitize(seg.Link)) + text + ansi.ResetHyperlink()
		}
		b.WriteString(text)
	}
	return b.String()
}
