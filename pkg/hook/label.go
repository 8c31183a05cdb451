package hook

import (
	"regexp"
	"strings"
)

var labelSplitPattern = regexp.MustCompile(`[_\-\s]+`)

// Label converts a field name into a human-friendly label: underscores,
// dashes and whitespace become single spaces and each word is title-cased.
// It is the fallback when a form field declares no label of its own.
func Label(name string) string {
	words := labelSplitPattern.Split(name, -1)
	segments := make([]string, 0, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		lower := strings.ToLower(word)
		segments = append(segments, strings.ToUpper(lower[:1])+lower[1:])
	}
	return strings.Join(segments, " ")
}
