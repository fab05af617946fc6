package match

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Strict reports whether a spoken utterance matches an expected word
// under the correction-dialog rules. Both strings are reduced to their
// word characters; an exact or containment match succeeds immediately,
// otherwise the Levenshtein distance must stay within 1 for expected
// words of up to four characters and within 2 beyond that.
func Strict(spoken, expected string) bool {
	s := stripNonWord(spoken)
	e := stripNonWord(expected)
	if s == "" || e == "" {
		return false
	}
	if s == e {
		return true
	}
	if strings.Contains(s, e) || strings.Contains(e, s) {
		return true
	}

	threshold := 2
	if utf8.RuneCountInString(e) <= 4 {
		threshold = 1
	}
	return matchr.Levenshtein(s, e) <= threshold
}

// stripNonWord lowercases and drops every rune that is not a letter or
// digit.
func stripNonWord(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
