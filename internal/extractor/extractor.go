// Package extractor finds URL-like substrings in free-form chat text.
package extractor

import (
	"iter"
	"regexp"
)

// urlPattern matches scheme-prefixed ("https://"), www-prefixed ("www2.") and
// bare domain-with-path ("example.com/") forms, case-insensitively, allowing
// up to two levels of balanced parentheses inside the URL body. Trailing
// punctuation is excluded from the match.
var urlPattern = regexp.MustCompile( //nolint: gochecknoglobals
	`(?i)\b(?:https?://|www\d{0,3}[.]|[a-z0-9.\-]+[.][a-z]{2,4}/)` +
		`(?:[^\s()<>]+|\((?:[^\s()<>]+|\([^\s()<>]+\))*\))+` +
		`(?:\((?:[^\s()<>]+|\([^\s()<>]+\))*\)|[^\s` + "`" + `!()\[\]{};:'".,<>?«»“”‘’])`)

// Extract returns the URL candidates found in text in order of appearance.
// Matches are raw and unfiltered; the pattern runs once over text and the
// candidates are yielded on demand.
func Extract(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if text == "" {
			return
		}
		for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
			if !yield(text[loc[0]:loc[1]]) {
				return
			}
		}
	}
}
