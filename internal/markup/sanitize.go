package markup

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// LinkRel is forced onto every anchor that survives sanitization.
const LinkRel = "noopener noreferrer"

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared allow-list policy: b, i, u, a, br and p;
// href only on a; http, https and mailto only. Content of script, style,
// iframe, object and similar elements is dropped with the element.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("b", "i", "u", "br", "p")
		p.AllowAttrs("href").OnElements("a")
		p.AllowURLSchemes("http", "https", "mailto")
		p.AllowRelativeURLs(false)
		p.RequireParseableURLs(true)
		policy = p
	})
	return policy
}

// Sanitize cleans untrusted markup down to the notification vocabulary.
//
// Cleaning works on a parsed tree, so attributes on removed elements and
// unbalanced markup cannot leak through. Every retained anchor carries
// rel="noopener noreferrer" whatever the input said. Sanitize is idempotent.
func Sanitize(s string) string {
	return rewriteLinkRel(getPolicy().Sanitize(s))
}

// rewriteLinkRel re-emits sanitized markup, replacing the rel attribute of
// each anchor with LinkRel. All other tokens are copied byte for byte.
func rewriteLinkRel(s string) string {
	if !strings.Contains(s, "<a") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	b.Grow(len(s) + 32)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return b.String()
		}
		if tt != html.StartTagToken {
			b.Write(z.Raw())
			continue
		}
		tok := z.Token()
		if tok.Data != "a" {
			b.Write(z.Raw())
			continue
		}
		setAttr(&tok, "rel", LinkRel)
		b.WriteString(tok.String())
	}
}

// setAttr sets key=val on tok, dropping any existing values for key.
func setAttr(tok *html.Token, key, val string) {
	attrs := tok.Attr[:0]
	for _, a := range tok.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	tok.Attr = append(attrs, html.Attribute{Key: key, Val: val})
}

// richTagPattern matches real tags of the supported vocabulary. Escaped
// entities and bare comparison operators ("5 < 10") do not match.
var richTagPattern = regexp.MustCompile(`(?i)<\s*/?(?:b|i|u|a|p|br)(?:\s+[^>]*)?/?>`)

// HasRichContent reports whether s contains an actual, unescaped tag from the
// supported vocabulary.
func HasRichContent(s string) bool {
	return richTagPattern.MatchString(s)
}
