package notify

import "github.com/llehouerou/notifyd/internal/markup"

// Ingest turns a raw body into its display form. The plain text always
// goes through StripHTML, so entity-encoded tags never come back as live
// markup. Bodies without supported markup become a single plain segment
// of that text and are never run through the sanitizer.
func Ingest(body string, enableLinks bool) Content {
	c := Content{
		Rich:      markup.HasRichContent(body),
		PlainText: markup.StripHTML(body),
	}
	if c.Rich {
		c.Segments = markup.ParseMarkup(markup.Sanitize(body))
	} else if c.PlainText != "" {
		c.Segments = []markup.StyledSegment{markup.PlainSegment(c.PlainText)}
	}
	if enableLinks {
		c.Links = markup.ExtractLinks(body)
	}
	return c
}
