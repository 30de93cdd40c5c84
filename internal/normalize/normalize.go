// Package normalize prepares raw text for matching.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// invisible reports runes that carry no visible content but survive copy/paste:
// zero-width characters and the byte order mark.
func invisible(r rune) bool {
	return r == '\u200B' || // Zero Width Space
		r == '\u200C' || // Zero Width Non-Joiner
		r == '\u200D' || // Zero Width Joiner
		r == '\uFEFF' // Zero Width Non-Breaking Space (BOM)
}

// Token normalizes a string token for matching:
// - trims Unicode whitespace + invisible edge characters
// - composes to NFC and lowercases for case-insensitive comparisons
func Token(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || invisible(r)
	})
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return strings.ToLower(s)
}

// Line normalizes one line of a document before calibration.
// It drops a trailing carriage return and trims invisible edge characters.
// Combining marks are left alone: composing "n\u0307" would hide the "n" of
// "seven" from the word matcher.
func Line(s string) string {
	s = strings.TrimSuffix(s, "\r")
	return strings.TrimFunc(s, invisible)
}
