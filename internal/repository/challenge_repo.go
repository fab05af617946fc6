package repository

import (
	"fmt"
	"time"

	"readaloud/internal/database"
	"readaloud/internal/models"
)

// ChallengeRepository records completed daily-challenge runs.
type ChallengeRepository struct {
	db database.DBTX
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db database.DBTX) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// RecordCompletion stores one finished run and returns its row ID.
func (r *ChallengeRepository) RecordCompletion(result models.ChallengeResult) (int64, error) {
	query := `
		INSERT INTO challenge_results
			(task_id, student_id, accuracy, time_spent_ms, within_time_limit,
			 stars_awarded, completed_date, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query,
		result.TaskID,
		result.StudentID,
		result.Accuracy,
		result.TimeSpent.Milliseconds(),
		result.WithinTimeLimit,
		result.StarsAwarded,
		models.DateKey(result.CompletedAt),
		result.CompletedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record challenge completion: %w", err)
	}
	return id, nil
}

// IsCompletedToday reports whether the student has already finished the
// task on the given date. Each task awards stars once per day.
func (r *ChallengeRepository) IsCompletedToday(studentID string, taskID int64, date time.Time) (bool, error) {
	query := `
		SELECT COUNT(*) FROM challenge_results
		WHERE student_id = ? AND task_id = ? AND completed_date = ?
	`

	var count int
	err := r.db.QueryRow(query, studentID, taskID, models.DateKey(date)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check completion: %w", err)
	}
	return count > 0, nil
}

// RecentResults returns the student's latest runs, newest first.
func (r *ChallengeRepository) RecentResults(studentID string, limit int) ([]models.ChallengeResult, error) {
	query := `
		SELECT task_id, student_id, accuracy, time_spent_ms, within_time_limit,
		       stars_awarded, completed_at
		FROM challenge_results
		WHERE student_id = ?
		ORDER BY completed_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	defer rows.Close()

	var results []models.ChallengeResult
	for rows.Next() {
		var result models.ChallengeResult
		var timeSpentMs int64
		if err := rows.Scan(
			&result.TaskID,
			&result.StudentID,
			&result.Accuracy,
			&timeSpentMs,
			&result.WithinTimeLimit,
			&result.StarsAwarded,
			&result.CompletedAt,
		); err != nil {
			return nil, err
		}
		result.TimeSpent = time.Duration(timeSpentMs) * time.Millisecond
		results = append(results, result)
	}
	return results, rows.Err()
}

// TotalStars sums the stars a student has earned across all runs.
func (r *ChallengeRepository) TotalStars(studentID string) (int, error) {
	query := "SELECT COALESCE(SUM(stars_awarded), 0) FROM challenge_results WHERE student_id = ?"

	var total int
	if err := r.db.QueryRow(query, studentID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum stars: %w", err)
	}
	return total, nil
}
