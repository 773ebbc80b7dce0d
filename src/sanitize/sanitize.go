// Package sanitize turns raw provider response bodies into short single-line
// text fit for log lines and cycle reports.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSnippet is the longest snippet Snippet returns, in runes, before the ellipsis.
const MaxSnippet = 200

var (
	// ANSI escape codes: \x1b[...m (SGR sequences)
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

	// HTML tags from error pages served by proxies in front of the APIs.
	tagPattern = regexp.MustCompile(`<[^>]*>`)
)

// StripANSI removes ANSI escape codes.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// Snippet strips escape codes, markup and control characters from a response
// body, collapses whitespace and truncates the result to MaxSnippet runes.
func Snippet(body string) string {
	s := strings.ToValidUTF8(body, "")
	s = StripANSI(s)
	s = tagPattern.ReplaceAllString(s, " ")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	if utf8.RuneCountInString(s) <= MaxSnippet {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxSnippet]) + "…"
}
