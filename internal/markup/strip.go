package markup

import "regexp"

// tagPattern matches anything shaped like a tag, allowed or not.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// maxStripPasses bounds the decode-then-strip loop. With the current entity
// table the second pass never reveals anything new.
const maxStripPasses = 3

// StripHTML reduces markup to plain text.
//
// Literal tags are removed first, then entities are decoded and any tags that
// decoding revealed ("&lt;script&gt;") are removed as well. Decoding repeats
// only while it keeps revealing tags, so an entity-encoded payload cannot
// survive as markup. Text between tags is kept verbatim and concatenated
// without separators.
func StripHTML(s string) string {
	text := tagPattern.ReplaceAllString(s, "")
	for range maxStripPasses {
		decoded := DecodeEntities(text)
		stripped := tagPattern.ReplaceAllString(decoded, "")
		text = stripped
		if stripped == decoded {
			break
		}
	}
	return text
}
