package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is an anchor found in notification text.
type Link struct {
	URL  string
	Text string
}

// safeSchemes are the only URL prefixes a link may start with.
var safeSchemes = []string{"https://", "http://", "mailto:"}

// IsSafeURL reports whether u starts with an allowed scheme. Anything else,
// javascript:, data: and vbscript: included, is rejected.
func IsSafeURL(u string) bool {
	for _, prefix := range safeSchemes {
		if len(u) >= len(prefix) && strings.EqualFold(u[:len(prefix)], prefix) {
			return true
		}
	}
	return false
}

// ExtractLinks returns the anchors of s whose URL uses an allowed scheme.
//
// Literal anchors are found first; then entities are decoded once and the
// result searched again, which catches senders that entity-encode their
// markup. Links are unique by URL and keep the first occurrence found.
func ExtractLinks(s string) []Link {
	var links []Link
	seen := make(map[string]struct{})
	collect := func(text string) {
		for _, l := range findAnchors(text) {
			if !IsSafeURL(l.URL) {
				continue
			}
			if _, dup := seen[l.URL]; dup {
				continue
			}
			seen[l.URL] = struct{}{}
			links = append(links, l)
		}
	}

	collect(s)
	if decoded := DecodeEntities(s); decoded != s {
		collect(decoded)
	}
	return links
}

// findAnchors parses s as an HTML fragment and returns every a[href] with
// its visible text, in document order.
func findAnchors(s string) []Link {
	if !strings.Contains(s, "<") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil
	}
	var found []Link
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		found = append(found, Link{URL: href, Text: sel.Text()})
	})
	return found
}
