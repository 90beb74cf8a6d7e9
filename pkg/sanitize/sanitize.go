// Package sanitize normalizes user-supplied free text before it is stored.
// Fields like pet notes are rendered as plain text only, so markup is
// stripped rather than escaped.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style)\b.*?</(script|style)>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe  = regexp.MustCompile(`[ \t]+`)
)

// Text strips HTML markup from s and returns trimmed plain text.
// Script and style elements are removed together with their contents;
// other tags are dropped, keeping the text between them. Entities are
// decoded so the stored value is what the user actually typed.
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = scriptRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = spaceRe.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
