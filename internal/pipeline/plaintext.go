package pipeline

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// PlainText strips an HTML fragment down to narration text: every tag becomes
// a space, entities are decoded, and whitespace runs collapse to one space.
// Whitespace is Unicode whitespace, so decoded &nbsp; and em spaces collapse too.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	text := tagPattern.ReplaceAllString(fragment, " ")
	text = html.UnescapeString(text)
	text = StripMarkPlaceholders(text)
	return strings.Join(strings.Fields(text), " ")
}
