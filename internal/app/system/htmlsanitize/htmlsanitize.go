// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Form titles and descriptions and everything typed into the public
// registration form are treated as plain text and have all markup removed.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Plain strips all markup from s and returns trimmed text. Entities escaped
// by the policy are decoded again since the result is data, not HTML.
func Plain(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
