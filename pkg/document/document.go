// Package document normalizes patient identifiers (CPF, CNS) and display
// names so they can be compared regardless of punctuation, case or accents.
package document

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize keeps only the ASCII digits of s.
// "111.222.333-44" and "11122233344" normalize to the same value.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NormalizeName lower-cases s and strips diacritics, so "José" and "jose"
// compare equal.
func NormalizeName(s string) string {
	if s == "" {
		return ""
	}
	// Transformer chains are stateful; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Equal reports whether two documents are the same non-empty identifier.
func Equal(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}
