package markup

import (
	"strings"

	"golang.org/x/net/html"
)

type tokenKind int

const (
	textToken tokenKind = iota
	openToken
	closeToken
)

// token is one event of the markup stream. Text is already entity-decoded;
// name is the lowercased tag name.
type token struct {
	kind tokenKind
	text string
	name string
	href string
}

// tokenize splits s into text, open-tag and close-tag events. Comments and
// doctypes are dropped. Self-closing tags are reported as open tags.
func tokenize(s string) []token {
	z := html.NewTokenizer(strings.NewReader(s))
	var toks []token
	for {
		switch z.Next() {
		case html.ErrorToken:
			// A tag cut off by the end of input is text, as in "a<b then".
			if raw := z.Raw(); len(raw) > 0 {
				toks = append(toks, token{kind: textToken, text: DecodeEntities(string(raw))})
			}
			return toks
		case html.TextToken:
			toks = append(toks, token{kind: textToken, text: DecodeEntities(string(z.Raw()))})
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tok := token{kind: openToken, name: string(name)}
			// TagAttr applies the full HTML5 unescape; hrefs are decoded
			// with DecodeEntities like text.
			if tok.name == "a" {
				if v, ok := rawAttr(z.Raw(), "href"); ok {
					tok.href = DecodeEntities(v)
				}
			}
			toks = append(toks, tok)
		case html.EndTagToken:
			name, _ := z.TagName()
			toks = append(toks, token{kind: closeToken, name: string(name)})
		case html.CommentToken, html.DoctypeToken:
		}
	}
}

const attrSpace = " \t\n\f\r"

// rawAttr returns the undecoded value of the first attribute named key in
// a raw start tag. Quoted and unquoted values are supported.
func rawAttr(tag []byte, key string) (string, bool) {
	s := strings.TrimPrefix(string(tag), "<")
	i := strings.IndexAny(s, attrSpace+"/>")
	if i < 0 {
		return "", false
	}
	s = s[i:]
	for {
		s = strings.TrimLeft(s, attrSpace+"/")
		if s == "" || s[0] == '>' {
			return "", false
		}
		end := strings.IndexAny(s, attrSpace+"/>=")
		if end < 0 {
			end = len(s)
		}
		name := s[:end]
		s = strings.TrimLeft(s[end:], attrSpace)

		var val string
		if strings.HasPrefix(s, "=") {
			s = strings.TrimLeft(s[1:], attrSpace)
			switch {
			case s == "":
			case s[0] == '"' || s[0] == '\'':
				if j := strings.IndexByte(s[1:], s[0]); j >= 0 {
					val, s = s[1:1+j], s[2+j:]
				} else {
					val, s = s[1:], ""
				}
			default:
				j := strings.IndexAny(s, attrSpace+">")
				if j < 0 {
					j = len(s)
				}
				val, s = s[:j], s[j:]
			}
		}
		if strings.EqualFold(name, key) {
			return val, true
		}
	}
}
