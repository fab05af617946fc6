package models

import "time"

// DateKey formats a timestamp as the calendar-date key used by warmup
// daily-attempt bookkeeping.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DailyProgress tracks one word's practice on a single date. Both counters
// are capped at 2: once two attempts have been spent on a date, further
// practice of the word waits for the next date.
type DailyProgress struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// WarmupEntry is the persistent record for a word the learner has missed.
// It lives in the warmup store from the first miss until the word is
// mastered (two correct repetitions on five distinct dates) or removed.
type WarmupEntry struct {
	// Word is the normalized, case-insensitive key.
	Word string `json:"word"`
	// Source records which activity produced the first miss
	// (practice, timeout, book, daily, warmup, correction).
	Source string `json:"source"`
	// MissCount is the total number of misses across sessions; it only
	// feeds the difficulty label.
	MissCount      int                       `json:"missCount"`
	FirstAddedDate string                    `json:"firstAdded"`
	LastTouched    time.Time                 `json:"lastTouched"`
	DailyAttempts  map[string]*DailyProgress `json:"dailyAttempts"`
}

// DaysMastered counts the dates on which the word was repeated correctly
// at least twice.
func (e *WarmupEntry) DaysMastered() int {
	days := 0
	for _, p := range e.DailyAttempts {
		if p.Correct >= 2 {
			days++
		}
	}
	return days
}

// Difficulty derives a label from the miss count.
func (e *WarmupEntry) Difficulty() string {
	switch {
	case e.MissCount >= 3:
		return "hard"
	case e.MissCount >= 2:
		return "medium"
	default:
		return "easy"
	}
}

// Progress returns the daily progress for a date key, zero-valued when the
// word has not been practiced on that date.
func (e *WarmupEntry) Progress(dateKey string) DailyProgress {
	if p, ok := e.DailyAttempts[dateKey]; ok {
		return *p
	}
	return DailyProgress{}
}
