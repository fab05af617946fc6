// Package match decides whether spoken transcripts satisfy expected
// tokens. Two deliberately distinct strategies live here: the permissive
// substring match used by the first-pass practice flow, and the stricter
// edit-distance match used by the correction dialog. They encode
// different product intents and must not be unified.
package match

import (
	"math"
	"strings"

	"readaloud/internal/models"
)

// Word reports whether a spoken utterance satisfies a single expected
// word. Both sides are casefolded and trimmed; the match succeeds when
// either string contains the other, which tolerates over-articulation
// ("the cat" for "cat") and partial recognition ("cat" for "cats").
func Word(spoken, expected string) bool {
	s := strings.ToLower(strings.TrimSpace(spoken))
	e := strings.ToLower(strings.TrimSpace(expected))
	if s == "" || e == "" {
		return false
	}
	return strings.Contains(s, e) || strings.Contains(e, s)
}

// Sentence grades an entire token sequence against one transcript.
// Short tokens are marked correct without grading; every other token is
// correct when any spoken word is a substring of it or vice versa.
// The returned accuracy is a rounded percentage over graded tokens only,
// or 100 when nothing was gradable.
func Sentence(transcript string, tokens []models.Token) ([]models.TokenResult, int) {
	spokenWords := strings.Fields(strings.ToLower(strings.TrimSpace(transcript)))

	results := make([]models.TokenResult, len(tokens))
	graded, correct := 0, 0
	for i, token := range tokens {
		if token.IsShort() {
			results[i] = models.ResultCorrect
			continue
		}
		graded++
		if anyWordMatches(spokenWords, token.NormalizedText) {
			results[i] = models.ResultCorrect
			correct++
		} else {
			results[i] = models.ResultWrong
		}
	}

	if graded == 0 {
		return results, 100
	}
	accuracy := int(math.Round(float64(correct) / float64(graded) * 100))
	return results, accuracy
}

func anyWordMatches(spokenWords []string, expected string) bool {
	for _, spoken := range spokenWords {
		if strings.Contains(spoken, expected) || strings.Contains(expected, spoken) {
			return true
		}
	}
	return false
}
