package challenge

import (
	"errors"
	"testing"
	"time"

	"readaloud/internal/models"
)

func testTask() models.DailyTask {
	return models.DailyTask{
		ID:               7,
		Title:            "Sports day reading",
		Sentences:        []string{"Children play cricket", "The ball bounced high"},
		TargetAccuracy:   80,
		TimeLimitSeconds: 120,
		StarsReward:      10,
	}
}

func trackerAt(t *testing.T, start time.Time, elapsed time.Duration) *Tracker {
	t.Helper()
	clock := start
	tracker, err := newTracker(testTask(), "student-1", func() time.Time {
		now := clock
		clock = clock.Add(elapsed)
		return now
	})
	if err != nil {
		t.Fatalf("newTracker() error: %v", err)
	}
	return tracker
}

func TestTrackerRequiresSentences(t *testing.T) {
	task := testTask()
	task.Sentences = nil
	if _, err := NewTracker(task, "student-1"); !errors.Is(err, ErrNoSentences) {
		t.Errorf("NewTracker() error = %v, want ErrNoSentences", err)
	}
}

func TestSentencesServedInOrder(t *testing.T) {
	tracker, err := NewTracker(testTask(), "student-1")
	if err != nil {
		t.Fatalf("NewTracker() error: %v", err)
	}

	first, ok := tracker.NextSentence()
	if !ok || first != "Children play cricket" {
		t.Fatalf("first sentence = %q (%v)", first, ok)
	}
	if err := tracker.RecordSentence(100); err != nil {
		t.Fatalf("RecordSentence() error: %v", err)
	}

	second, ok := tracker.NextSentence()
	if !ok || second != "The ball bounced high" {
		t.Fatalf("second sentence = %q (%v)", second, ok)
	}
	if tracker.Done() {
		t.Error("Done() = true with a sentence remaining")
	}
	if err := tracker.RecordSentence(80); err != nil {
		t.Fatalf("RecordSentence() error: %v", err)
	}

	if _, ok := tracker.NextSentence(); ok {
		t.Error("NextSentence() = ok after the last sentence")
	}
	if !tracker.Done() {
		t.Error("Done() = false after the last sentence")
	}
	if err := tracker.RecordSentence(50); err == nil {
		t.Error("RecordSentence() past the end did not fail")
	}
}

func TestFinalizeRequiresAllSentences(t *testing.T) {
	tracker, err := NewTracker(testTask(), "student-1")
	if err != nil {
		t.Fatalf("NewTracker() error: %v", err)
	}
	if err := tracker.RecordSentence(100); err != nil {
		t.Fatalf("RecordSentence() error: %v", err)
	}

	if _, err := tracker.Finalize(); !errors.Is(err, ErrIncomplete) {
		t.Errorf("Finalize() error = %v, want ErrIncomplete", err)
	}
}

func TestFinalizeAveragesAndScores(t *testing.T) {
	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	tracker := trackerAt(t, start, 60*time.Second)

	if err := tracker.RecordSentence(100); err != nil {
		t.Fatal(err)
	}
	if err := tracker.RecordSentence(85); err != nil {
		t.Fatal(err)
	}

	result, err := tracker.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	// Mean of 100 and 85 rounds to 93; finishing in 60s of a 120s limit
	// earns the base 10 plus both bonuses.
	if result.Accuracy != 93 {
		t.Errorf("accuracy = %d, want 93", result.Accuracy)
	}
	if result.StarsAwarded != 20 {
		t.Errorf("stars = %d, want 20", result.StarsAwarded)
	}
	if !result.WithinTimeLimit {
		t.Error("WithinTimeLimit = false for a 60s run")
	}
	if result.TaskID != 7 || result.StudentID != "student-1" {
		t.Errorf("result identity = (%d, %q)", result.TaskID, result.StudentID)
	}
	if result.TimeSpent != 60*time.Second {
		t.Errorf("time spent = %v, want 60s", result.TimeSpent)
	}
}

func TestFinalizeOverTimeLimitKeepsPartialCredit(t *testing.T) {
	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	tracker := trackerAt(t, start, 200*time.Second)

	if err := tracker.RecordSentence(85); err != nil {
		t.Fatal(err)
	}
	if err := tracker.RecordSentence(85); err != nil {
		t.Fatal(err)
	}

	result, err := tracker.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if result.WithinTimeLimit {
		t.Error("WithinTimeLimit = true for a 200s run against a 120s limit")
	}
	if result.StarsAwarded != 7 {
		t.Errorf("stars = %d, want 7 (70%% of the base reward)", result.StarsAwarded)
	}
}
