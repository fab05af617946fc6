package warmup

import (
	"fmt"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2026, 8, n, 10, 0, 0, 0, time.UTC)
}

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := NewQueue(NewMemoryStore(), "student-1")
	if err != nil {
		t.Fatalf("NewQueue() error: %v", err)
	}
	return q
}

func TestRecordMissCreatesEntry(t *testing.T) {
	q := newTestQueue(t)

	if err := q.RecordMiss("Cricket", day(1), "practice"); err != nil {
		t.Fatalf("RecordMiss() error: %v", err)
	}

	entries := q.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Word != "cricket" {
		t.Errorf("entry word = %q, want normalized %q", entry.Word, "cricket")
	}
	if entry.FirstAddedDate != "2026-08-01" {
		t.Errorf("first added = %q, want 2026-08-01", entry.FirstAddedDate)
	}
	if got := entry.Progress("2026-08-01").Attempts; got != 1 {
		t.Errorf("attempts today = %d, want 1", got)
	}
}

func TestDailyAttemptCap(t *testing.T) {
	q := newTestQueue(t)
	date := day(1)

	if err := q.RecordMiss("ground", date, "practice"); err != nil {
		t.Fatalf("RecordMiss() error: %v", err)
	}
	if err := q.RecordAttempt("ground", date, true); err != nil {
		t.Fatalf("RecordAttempt() error: %v", err)
	}

	// Two attempts spent; the third must change nothing.
	before := q.Entries()[0].Progress("2026-08-01")
	if before.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2 before cap test", before.Attempts)
	}
	if err := q.RecordAttempt("ground", date, true); err != nil {
		t.Fatalf("RecordAttempt() over cap error: %v", err)
	}
	after := q.Entries()[0].Progress("2026-08-01")
	if after.Attempts != before.Attempts || after.Correct != before.Correct {
		t.Errorf("capped attempt mutated progress: before %+v, after %+v", before, after)
	}

	if q.CanPracticeToday("ground", date) {
		t.Error("CanPracticeToday() = true after daily cap reached")
	}
	if !q.CanPracticeToday("ground", day(2)) {
		t.Error("CanPracticeToday() = false on the next date")
	}
}

func TestIsCompletedToday(t *testing.T) {
	q := newTestQueue(t)
	date := day(3)

	if err := q.RecordMiss("empty", day(1), "timeout"); err != nil {
		t.Fatalf("RecordMiss() error: %v", err)
	}
	if err := q.RecordAttempt("empty", date, true); err != nil {
		t.Fatalf("RecordAttempt() error: %v", err)
	}
	if q.IsCompletedToday("empty", date) {
		t.Error("completed after a single correct repetition")
	}
	if err := q.RecordAttempt("empty", date, true); err != nil {
		t.Fatalf("RecordAttempt() error: %v", err)
	}
	if !q.IsCompletedToday("empty", date) {
		t.Error("not completed after two correct repetitions")
	}
}

func TestMasteryEviction(t *testing.T) {
	q := newTestQueue(t)

	if err := q.RecordMiss("homework", day(1), "practice"); err != nil {
		t.Fatalf("RecordMiss() error: %v", err)
	}

	// Two correct repetitions on five distinct dates. Day 1 only holds
	// the miss, so the mastered days are days 2 through 6.
	for n := 2; n <= 6; n++ {
		for i := 0; i < 2; i++ {
			if err := q.RecordAttempt("homework", day(n), true); err != nil {
				t.Fatalf("RecordAttempt() day %d error: %v", n, err)
			}
		}
	}

	entry := q.Entries()[0]
	if got := entry.DaysMastered(); got != 5 {
		t.Fatalf("DaysMastered() = %d, want 5", got)
	}
	if !q.IsMasteredAndEvictable("homework") {
		t.Error("IsMasteredAndEvictable() = false with 5 mastered days")
	}

	if err := q.Remove("homework"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("queue length = %d after eviction, want 0", q.Len())
	}
}

func TestEntryBoundEvictsOldest(t *testing.T) {
	q := newTestQueue(t)

	for i := 0; i < 55; i++ {
		word := fmt.Sprintf("word%02d", i)
		if err := q.RecordMiss(word, day(1).Add(time.Duration(i)*time.Minute), "practice"); err != nil {
			t.Fatalf("RecordMiss(%q) error: %v", word, err)
		}
	}

	if q.Len() != 50 {
		t.Fatalf("queue length = %d, want 50", q.Len())
	}
	// The five least recently touched entries are gone.
	for i := 0; i < 5; i++ {
		if q.CanPracticeToday(fmt.Sprintf("word%02d", i), day(1)) != true {
			t.Fatalf("unexpected daily state for evicted word%02d", i)
		}
		for _, w := range q.Words() {
			if w == fmt.Sprintf("word%02d", i) {
				t.Errorf("word%02d should have been evicted", i)
			}
		}
	}
}

func TestQueuePersistsThroughStore(t *testing.T) {
	store := NewMemoryStore()
	q, err := NewQueue(store, "student-1")
	if err != nil {
		t.Fatalf("NewQueue() error: %v", err)
	}
	if err := q.RecordMiss("cricket", day(1), "practice"); err != nil {
		t.Fatalf("RecordMiss() error: %v", err)
	}

	reloaded, err := NewQueue(store, "student-1")
	if err != nil {
		t.Fatalf("NewQueue() reload error: %v", err)
	}
	if reloaded.Len() != 1 {
		t.Errorf("reloaded queue length = %d, want 1", reloaded.Len())
	}

	other, err := NewQueue(store, "student-2")
	if err != nil {
		t.Fatalf("NewQueue() other student error: %v", err)
	}
	if other.Len() != 0 {
		t.Errorf("other student's queue length = %d, want 0", other.Len())
	}
}
