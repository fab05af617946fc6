// Package warmup maintains the spaced-repetition record of words a
// learner has missed. Each word gets at most two practice attempts per
// day; two correct repetitions complete the day, and five completed days
// master the word and evict it from the queue.
package warmup

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"readaloud/internal/models"
)

const (
	// maxDailyAttempts caps practice of one word per calendar date.
	maxDailyAttempts = 2
	// masteryCorrect is the per-day correct count that completes a day.
	masteryCorrect = 2
	// masteryDays is the number of completed days that evicts a word.
	masteryDays = 5
	// maxEntries bounds the store; the least recently touched entries
	// are dropped first.
	maxEntries = 50
)

// Queue is the warmup queue for one student. It owns the in-memory entry
// list and writes every mutation through to the store. Safe for
// concurrent use.
type Queue struct {
	mu        sync.Mutex
	store     Store
	studentID string
	entries   []models.WarmupEntry
}

// NewQueue loads the student's entries from the store.
func NewQueue(store Store, studentID string) (*Queue, error) {
	entries, err := store.Load(studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load warmup entries: %w", err)
	}
	return &Queue{store: store, studentID: studentID, entries: entries}, nil
}

// RecordMiss upserts an entry for a missed word and spends one of the
// word's daily attempts. The attempt counter is left untouched once the
// daily cap is reached, but the entry is still touched so eviction
// ordering reflects recent activity.
func (q *Queue) RecordMiss(word string, date time.Time, source string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := normalizeKey(word)
	if key == "" {
		return nil
	}

	entry := q.find(key)
	if entry == nil {
		q.entries = append(q.entries, models.WarmupEntry{
			Word:           key,
			Source:         source,
			FirstAddedDate: models.DateKey(date),
			DailyAttempts:  make(map[string]*models.DailyProgress),
		})
		entry = &q.entries[len(q.entries)-1]
	}

	entry.MissCount++
	entry.LastTouched = date
	progress := dailyProgress(entry, models.DateKey(date))
	if progress.Attempts < maxDailyAttempts {
		progress.Attempts++
	}

	return q.save()
}

// RecordAttempt records the outcome of one warmup repetition. Attempts
// beyond the daily cap are ignored entirely: neither counter moves.
func (q *Queue) RecordAttempt(word string, date time.Time, wasCorrect bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry := q.find(normalizeKey(word))
	if entry == nil {
		return fmt.Errorf("word %q is not in the warmup queue", word)
	}

	progress := dailyProgress(entry, models.DateKey(date))
	if progress.Attempts >= maxDailyAttempts {
		return nil
	}

	progress.Attempts++
	if wasCorrect && progress.Correct < masteryCorrect {
		progress.Correct++
	}
	entry.LastTouched = date

	return q.save()
}

// CanPracticeToday reports whether the word still has attempts left on
// the given date. Unknown words can always be practiced.
func (q *Queue) CanPracticeToday(word string, date time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry := q.find(normalizeKey(word))
	if entry == nil {
		return true
	}
	return entry.Progress(models.DateKey(date)).Attempts < maxDailyAttempts
}

// IsCompletedToday reports whether the word already reached two correct
// repetitions on the given date.
func (q *Queue) IsCompletedToday(word string, date time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry := q.find(normalizeKey(word))
	if entry == nil {
		return false
	}
	return entry.Progress(models.DateKey(date)).Correct >= masteryCorrect
}

// IsMasteredAndEvictable reports whether the word has completed five
// distinct days. The caller is expected to Remove it.
func (q *Queue) IsMasteredAndEvictable(word string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry := q.find(normalizeKey(word))
	return entry != nil && entry.DaysMastered() >= masteryDays
}

// Remove deletes the word's entry from the queue and the store.
func (q *Queue) Remove(word string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := normalizeKey(word)
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.Word != key {
			kept = append(kept, e)
		}
	}
	q.entries = kept
	return q.save()
}

// Entries returns a copy of the current entries, most recently touched
// first.
func (q *Queue) Entries() []models.WarmupEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.WarmupEntry, len(q.entries))
	copy(out, q.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastTouched.After(out[j].LastTouched)
	})
	return out
}

// Words returns the queued words, most recently touched first.
func (q *Queue) Words() []string {
	entries := q.Entries()
	words := make([]string, len(entries))
	for i, e := range entries {
		words[i] = e.Word
	}
	return words
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// save enforces the entry bound and writes through to the store.
// Callers hold q.mu.
func (q *Queue) save() error {
	if len(q.entries) > maxEntries {
		sort.SliceStable(q.entries, func(i, j int) bool {
			return q.entries[i].LastTouched.After(q.entries[j].LastTouched)
		})
		q.entries = q.entries[:maxEntries]
	}
	if err := q.store.Save(q.studentID, q.entries); err != nil {
		return fmt.Errorf("failed to save warmup entries: %w", err)
	}
	return nil
}

// find returns a pointer into q.entries, or nil. Callers hold q.mu.
func (q *Queue) find(key string) *models.WarmupEntry {
	for i := range q.entries {
		if q.entries[i].Word == key {
			return &q.entries[i]
		}
	}
	return nil
}

func dailyProgress(entry *models.WarmupEntry, dateKey string) *models.DailyProgress {
	if entry.DailyAttempts == nil {
		entry.DailyAttempts = make(map[string]*models.DailyProgress)
	}
	progress, ok := entry.DailyAttempts[dateKey]
	if !ok {
		progress = &models.DailyProgress{}
		entry.DailyAttempts[dateKey] = progress
	}
	return progress
}

func normalizeKey(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
