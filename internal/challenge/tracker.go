// Package challenge runs a daily reading task: each task sentence is
// practiced as one full-utterance session, and the tracker folds the
// per-sentence accuracies and elapsed time into a scored result.
package challenge

import (
	"errors"
	"math"
	"sync"
	"time"

	"readaloud/internal/models"
	"readaloud/internal/scoring"
)

// ErrNoSentences is returned when a task carries nothing to read.
var ErrNoSentences = errors.New("task has no sentences")

// ErrIncomplete is returned when Finalize is called before every
// sentence has been recorded.
var ErrIncomplete = errors.New("not every sentence has been read")

// Tracker accumulates one run of a daily task.
type Tracker struct {
	mu         sync.Mutex
	task       models.DailyTask
	studentID  string
	accuracies []int
	startedAt  time.Time
	now        func() time.Time
}

// NewTracker starts the clock on a task run.
func NewTracker(task models.DailyTask, studentID string) (*Tracker, error) {
	return newTracker(task, studentID, time.Now)
}

func newTracker(task models.DailyTask, studentID string, now func() time.Time) (*Tracker, error) {
	if len(task.Sentences) == 0 {
		return nil, ErrNoSentences
	}
	return &Tracker{
		task:      task,
		studentID: studentID,
		startedAt: now(),
		now:       now,
	}, nil
}

// Task returns the task being run.
func (t *Tracker) Task() models.DailyTask {
	return t.task
}

// NextSentence returns the next sentence to read, or false when the run
// is complete.
func (t *Tracker) NextSentence() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.accuracies) >= len(t.task.Sentences) {
		return "", false
	}
	return t.task.Sentences[len(t.accuracies)], true
}

// RecordSentence stores the accuracy of the sentence just read.
func (t *Tracker) RecordSentence(accuracy int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.accuracies) >= len(t.task.Sentences) {
		return errors.New("every sentence has already been recorded")
	}
	t.accuracies = append(t.accuracies, accuracy)
	return nil
}

// Done reports whether every sentence has been recorded.
func (t *Tracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.accuracies) >= len(t.task.Sentences)
}

// Finalize stops the clock and scores the run. The task accuracy is the
// rounded mean of the per-sentence accuracies.
func (t *Tracker) Finalize() (models.ChallengeResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.accuracies) < len(t.task.Sentences) {
		return models.ChallengeResult{}, ErrIncomplete
	}

	sum := 0
	for _, accuracy := range t.accuracies {
		sum += accuracy
	}
	accuracy := int(math.Round(float64(sum) / float64(len(t.accuracies))))

	completedAt := t.now()
	timeSpent := completedAt.Sub(t.startedAt)
	stars := scoring.Stars(scoring.Input{
		Accuracy:       accuracy,
		TargetAccuracy: t.task.TargetAccuracy,
		TimeSpent:      timeSpent,
		TimeLimit:      t.task.TimeLimit(),
		StarsReward:    t.task.StarsReward,
	})

	return models.ChallengeResult{
		TaskID:          t.task.ID,
		StudentID:       t.studentID,
		Accuracy:        accuracy,
		TimeSpent:       timeSpent,
		WithinTimeLimit: timeSpent <= t.task.TimeLimit(),
		StarsAwarded:    stars,
		CompletedAt:     completedAt,
	}, nil
}
