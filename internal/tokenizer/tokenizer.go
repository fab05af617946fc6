// Package tokenizer splits challenge text into the token sequence the
// practice engine consumes. Splitting is deterministic and side-effect
// free: whitespace runs collapse, the surface form keeps its punctuation
// for display, and the normalized form strips it for matching.
package tokenizer

import (
	"strings"
	"unicode"

	"readaloud/internal/models"
)

// Tokenize splits raw text into an ordered token sequence. Tokens whose
// normalized form is empty (pure punctuation) are discarded, so the
// normalized-text invariant holds for every returned token.
func Tokenize(text string) []models.Token {
	fields := strings.Fields(text)
	tokens := make([]models.Token, 0, len(fields))
	for _, field := range fields {
		normalized := Normalize(field)
		if normalized == "" {
			continue
		}
		tokens = append(tokens, models.Token{
			SurfaceText:    field,
			NormalizedText: normalized,
		})
	}
	return tokens
}

// Normalize lowercases a word and strips punctuation and symbol runes.
func Normalize(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range strings.ToLower(word) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Join rebuilds a display string from tokens with single spaces.
func Join(tokens []models.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.SurfaceText
	}
	return strings.Join(parts, " ")
}
