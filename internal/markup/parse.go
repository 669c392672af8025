package markup

// Frame kinds. Synonymous tags share a kind so </strong> closes <strong>
// and </b> closes <b>, both recorded as bold.
const (
	kindBold      = "b"
	kindItalic    = "i"
	kindUnderline = "u"
	kindLink      = "a"
)

func frameKind(tag string) string {
	switch tag {
	case "b", "strong":
		return kindBold
	case "i", "em":
		return kindItalic
	case "u":
		return kindUnderline
	case "a":
		return kindLink
	}
	return ""
}

// frame records the style and link in effect before a tag opened.
// Frames form an immutable linked stack: pushing never copies and a popped
// state never observes later pushes.
type frame struct {
	kind  string
	style TextStyle
	link  string
	next  *frame
}

// parseState is the accumulator threaded through the fold over tokens.
type parseState struct {
	style    TextStyle
	link     string
	top      *frame
	segments []StyledSegment
}

func (st parseState) push(kind string) parseState {
	st.top = &frame{kind: kind, style: st.style, link: st.link, next: st.top}
	return st
}

func (st parseState) emit(seg StyledSegment) parseState {
	if seg.Text != "" {
		st.segments = append(st.segments, seg)
	}
	return st
}

// step applies one token to the state and returns the next state.
func step(st parseState, tok token) parseState {
	switch tok.kind {
	case textToken:
		return st.emit(StyledSegment{Text: tok.text, Style: st.style, Link: st.link})

	case openToken:
		switch tok.name {
		case "b", "strong":
			st = st.push(kindBold)
			st.style.Bold = true
		case "i", "em":
			st = st.push(kindItalic)
			st.style.Italic = true
		case "u":
			st = st.push(kindUnderline)
			st.style.Underline = true
		case "a":
			if tok.href == "" {
				return st
			}
			st = st.push(kindLink)
			st.link = tok.href
			st.style.Underline = true
		case "br", "p":
			return st.emit(PlainSegment("\n"))
		}
		return st

	case closeToken:
		// Only a close matching the innermost open frame pops it; stray or
		// misnested closes leave the stack alone.
		if st.top == nil || st.top.kind != frameKind(tok.name) {
			return st
		}
		st.style = st.top.style
		st.link = st.top.link
		st.top = st.top.next
		return st
	}
	return st
}

// ParseMarkup converts markup into styled segments ready for display.
//
// Supported tags are b/strong, i/em, u, a[href], br and p; everything else is
// ignored while its text is kept. Anchors force underline while open. The
// result never contains two adjacent segments with equal style and link.
// Malformed markup changes segmentation, never fails.
func ParseMarkup(s string) []StyledSegment {
	var st parseState
	for _, tok := range tokenize(s) {
		st = step(st, tok)
	}
	return mergeSegments(st.segments)
}
