// Package normalize canonicalizes titles and labels scraped from issue pages
// so that every later stage compares the same form of a string.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// dashes are folded to '-' both before NFKC (U+2011 and U+FF70 decompose
// into other dashes) and after it.
var dashReplacer = strings.NewReplacer(
	"‐", "-",
	"‑", "-",
	"‒", "-",
	"–", "-",
	"—", "-",
	"―", "-",
	"−", "-",
	"﹘", "-",
	"﹣", "-",
	"－", "-",
	"ｰ", "-",
)

var bracketReplacer = strings.NewReplacer(
	"「", "",
	"」", "",
	"『", "",
	"』", "",
)

// Normalize applies NFKC, unifies dash variants to an ASCII hyphen and trims
// surrounding whitespace. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = dashReplacer.Replace(s)
	s = norm.NFKC.String(s)
	s = dashReplacer.Replace(s)
	return strings.TrimSpace(s)
}

// CleanTitle strips corner brackets and circled-digit enumeration markers
// and then normalizes. Markers go first: NFKC would turn ① into "1".
// Brackets are stripped again afterwards since NFKC folds the half-width
// ｢｣ into 「」.
func CleanTitle(s string) string {
	s = bracketReplacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if isCircledDigit(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(bracketReplacer.Replace(Normalize(s)))
}

func isCircledDigit(r rune) bool {
	return (r >= '①' && r <= '⑳') || (r >= '➀' && r <= '➉')
}

// Contains reports whether needle appears in haystack after both are
// normalized. An empty needle never matches.
func Contains(haystack, needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Normalize(haystack), n)
}
