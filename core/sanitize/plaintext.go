package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	stripTagsPolicy = bluemonday.StripTagsPolicy()
	ugcPolicy       = bluemonday.UGCPolicy()
)

// PlainText returns the readable text of an HTML fragment with whitespace collapsed.
// Scripts, styles and comments are removed first so their bodies never leak into the text.
func PlainText(fragment string) string {
	cleaned := CleanHTML(fragment, DefaultCleanOptions())
	text := html.UnescapeString(stripTagsPolicy.Sanitize(cleaned))
	return strings.Join(strings.Fields(text), " ")
}

// SafeHTML keeps user-generated markup such as links, lists and images
// and drops everything that can execute
func SafeHTML(fragment string) string {
	return ugcPolicy.Sanitize(CleanHTML(fragment, DefaultCleanOptions()))
}
