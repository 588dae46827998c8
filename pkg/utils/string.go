// Package utils provides small string helpers shared across packages.
package utils

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// FirstRunes returns at most the first n characters of s.
func FirstRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}

	count := 0

	for i := range s {
		if count == n {
			return s[:i]
		}

		count++
	}

	return s
}

// NormalizeWhitespace replaces runs of whitespace with a single space.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateDisplay shortens s to at most width terminal columns, marking the cut
// with "...". Newlines are folded first so the result fits on one line.
func TruncateDisplay(s string, width int) string {
	s = NormalizeWhitespace(s)
	if runewidth.StringWidth(s) <= width {
		return s
	}

	return runewidth.Truncate(s, width, "...")
}
