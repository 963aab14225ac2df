// Package transcript provides pure text cleanup for source transcripts
// before content generation.
package transcript

import (
	"regexp"
	"strings"
)

var (
	// crlfPattern matches Windows and old-Mac line endings.
	crlfPattern = regexp.MustCompile(`\r\n?`)

	// excessNewlines matches runs of three or more newlines.
	excessNewlines = regexp.MustCompile(`\n{3,}`)

	// excessSpaces matches runs of two or more horizontal whitespace
	// characters (spaces and tabs), leaving newlines alone.
	excessSpaces = regexp.MustCompile(`[ \t]{2,}`)
)

// Normalize cleans a raw transcript. It is idempotent and pure:
// Normalize(Normalize(s)) == Normalize(s) for every s.
//
// The cleanup strips non-printable ASCII control characters (0x00-0x08,
// 0x0B, 0x0C, 0x0E-0x1F, 0x7F; newline and tab survive the strip set),
// unifies line endings to a single newline, collapses 3+ consecutive
// newlines to exactly two, collapses runs of horizontal whitespace to a
// single space, and trims outer whitespace. Stripping runs first and
// trimming last; any other order lets a removed control character leave
// behind a fresh space run and breaks idempotence.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = stripControlChars(text)
	text = crlfPattern.ReplaceAllString(text, "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	text = excessSpaces.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	return text
}

// stripControlChars removes the ASCII control range 0x00-0x08, 0x0B, 0x0C,
// 0x0E-0x1F and 0x7F while keeping newline (0x0A), tab (0x09) and
// carriage return (0x0D, unified into a newline afterwards).
func stripControlChars(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			return r
		case r < 0x20 || r == 0x7F:
			return -1
		default:
			return r
		}
	}, text)
}
