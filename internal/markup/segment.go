package markup

import "strings"

// TextStyle is the cumulative style of all styling tags open at a point in
// the input.
type TextStyle struct {
	Bold      bool
	Italic    bool
	Underline bool
}

// IsPlain reports whether no styling is applied.
func (s TextStyle) IsPlain() bool {
	return !s.Bold && !s.Italic && !s.Underline
}

// StyledSegment is a maximal run of text sharing one style and one link
// target. Link is empty when the run is not inside an anchor.
type StyledSegment struct {
	Text  string
	Style TextStyle
	Link  string
}

// HasLink reports whether the segment is part of a hyperlink.
func (s StyledSegment) HasLink() bool {
	return s.Link != ""
}

// mergeable reports whether two segments render identically apart from text.
func (s StyledSegment) mergeable(o StyledSegment) bool {
	return s.Style == o.Style && s.Link == o.Link
}

// PlainSegment returns an unstyled, unlinked segment.
func PlainSegment(text string) StyledSegment {
	return StyledSegment{Text: text}
}

// SegmentsToPlainText concatenates the text of all segments.
func SegmentsToPlainText(segments []StyledSegment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// mergeSegments collapses consecutive segments with equal style and link.
// Renderers key visual runs one-to-one with segments, so the result never
// holds two adjacent mergeable segments.
func mergeSegments(segments []StyledSegment) []StyledSegment {
	if len(segments) < 2 {
		return segments
	}
	merged := make([]StyledSegment, 0, len(segments))
	for _, seg := range segments {
		if n := len(merged); n > 0 && merged[n-1].mergeable(seg) {
			merged[n-1].Text += seg.Text
			continue
		}
		merged = append(merged, seg)
	}
	return merged
}
