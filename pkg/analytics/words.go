package analytics

import (
	"regexp"
	"strings"
)

var markupTag = regexp.MustCompile(`<.*?>`)

// CountWords counts whitespace-separated words of an HTML fragment after
// replacing each markup tag with a space.
func CountWords(html string) int {
	if strings.TrimSpace(html) == "" {
		return 0
	}
	return len(strings.Fields(markupTag.ReplaceAllString(html, " ")))
}
