// Package markup turns untrusted notification body text into safe output:
// sanitized HTML, styled segments for display, plain text, and links.
//
// Every function in this package is a pure function of its input and is safe
// for concurrent use.
package markup

import "strings"

// entities is applied in order. &amp; must stay last: decoding it first would
// turn an escaped "&amp;lt;" into a live "<".
var entities = []struct {
	from string
	to   string
}{
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#34;", `"`}, // the sanitizer's own escaping of quotes in text
	{"&#39;", "'"},
	{"&#x27;", "'"},
	{"&#58;", ":"},
	{"&#x3A;", ":"},
	{"&#47;", "/"},
	{"&#x2F;", "/"},
	{"&#32;", " "},
	{"&#61;", "="},
	{"&nbsp;", " "},
	{"&amp;", "&"},
}

// DecodeEntities decodes the fixed set of character references notification
// senders are known to emit. It makes exactly one pass: "&amp;lt;" becomes
// "&lt;", never "<".
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	for _, e := range entities {
		s = strings.ReplaceAll(s, e.from, e.to)
	}
	return s
}
