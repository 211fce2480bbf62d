package utils

import (
	"strings"
	"unicode"
)

// NormalizePlate collapses a registration string to its canonical key:
// uppercase with all whitespace removed, so "mh 12 ab 1234" and "MH12AB1234"
// land on the same key. Garbage passes through normalized; rejecting it is
// the caller's job.
func NormalizePlate(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
