package models

import "time"

// DailyTask is a reading assignment supplied by the task backend: the
// sentences to read plus the session parameters the scoring calculator
// needs.
type DailyTask struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Sentences        []string `json:"sentences"`
	TargetAccuracy   int      `json:"target_accuracy"`
	TimeLimitSeconds int      `json:"time_limit"`
	StarsReward      int      `json:"stars_reward"`
	DueDate          string   `json:"due_date"`
}

// TimeLimit returns the task time limit as a duration.
func (t DailyTask) TimeLimit() time.Duration {
	return time.Duration(t.TimeLimitSeconds) * time.Second
}

// ChallengeResult is the outcome of one completed daily-challenge run.
type ChallengeResult struct {
	TaskID          int64
	StudentID       string
	Accuracy        int
	TimeSpent       time.Duration
	WithinTimeLimit bool
	StarsAwarded    int
	CompletedAt     time.Time
}
