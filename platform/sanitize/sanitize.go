// Package sanitize cleans server-provided text before it is drawn on a terminal.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	// blockTagRegex matches tags that end a line when rendered
	blockTagRegex = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/h[1-6])\s*/?\s*>`)
)

// StripHTML removes HTML tags and decodes entities. Block level closing
// tags become line breaks so paragraphs survive.
func StripHTML(s string) string {
	result := blockTagRegex.ReplaceAllString(s, "\n")
	result = htmlTagRegex.ReplaceAllString(result, "")
	result = html.UnescapeString(result)
	// Re-strip after entity decode to catch encoded tags
	return htmlTagRegex.ReplaceAllString(result, "")
}

// Line makes a single line value safe to print: control characters,
// including escape sequences and newlines, are removed and runs of spaces
// collapse to one.
func Line(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Text makes multi line text safe to print: HTML is stripped, control
// characters other than newline and tab are dropped and trailing spaces
// are trimmed from every line.
func Text(s string) string {
	s = strings.ReplaceAll(StripHTML(s), "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
