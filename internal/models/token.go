package models

import "unicode/utf8"

// Token is one speakable unit (word) extracted from challenge text.
type Token struct {
	// SurfaceText keeps the original casing and punctuation for display.
	SurfaceText string
	// NormalizedText is the lowercased, punctuation-stripped form used
	// for matching. Never empty.
	NormalizedText string
}

// IsShort reports whether the token is excluded from speech grading.
// Words of two characters or fewer are auto-marked correct and never
// evaluated.
func (t Token) IsShort() bool {
	return utf8.RuneCountInString(t.SurfaceText) <= 2
}

// TokenResult is the outcome for one token in a practice session.
type TokenResult int

const (
	ResultPending TokenResult = iota
	ResultCorrect
	ResultWrong
)

func (r TokenResult) String() string {
	switch r {
	case ResultCorrect:
		return "correct"
	case ResultWrong:
		return "wrong"
	default:
		return "pending"
	}
}

// Mode selects how spoken utterances are validated against the tokens.
type Mode int

const (
	// WordByWord grades one token per utterance with a per-word timeout.
	WordByWord Mode = iota
	// FullUtterance expects the whole token sequence in a single
	// utterance and grades every token from one transcript.
	FullUtterance
)

func (m Mode) String() string {
	if m == FullUtterance {
		return "full-utterance"
	}
	return "word-by-word"
}
