package models

import "time"

// PracticeSession is one read-aloud attempt over an ordered token sequence.
// It is owned and mutated only by the engine's transition functions and is
// discarded at session end; the summary and wrong-token list are the only
// artifacts that survive it.
type PracticeSession struct {
	ID           string
	Tokens       []Token
	Results      []TokenResult
	CurrentIndex int
	Mode         Mode
	StartedAt    time.Time
}

// IsComplete reports whether every token has been graded.
func (s *PracticeSession) IsComplete() bool {
	return s.CurrentIndex >= len(s.Tokens)
}

// CorrectCount returns the number of tokens graded correct so far.
func (s *PracticeSession) CorrectCount() int {
	count := 0
	for _, r := range s.Results {
		if r == ResultCorrect {
			count++
		}
	}
	return count
}

// WrongTokens returns the tokens graded wrong, in token order.
func (s *PracticeSession) WrongTokens() []Token {
	var wrong []Token
	for i, r := range s.Results {
		if r == ResultWrong {
			wrong = append(wrong, s.Tokens[i])
		}
	}
	return wrong
}

// SessionSummary captures the derived outcome of a completed session.
type SessionSummary struct {
	SessionID    string
	Mode         Mode
	TotalTokens  int
	CorrectCount int
	// Accuracy is a rounded percentage over all tokens.
	Accuracy   int
	WrongWords []string
	Duration   time.Duration
}
