package service

import (
	"fmt"

	"readaloud/internal/models"
	"readaloud/internal/repository"
	"readaloud/internal/warmup"
)

// ProgressSummary is the dashboard view of one student's standing.
type ProgressSummary struct {
	StudentID     string
	TotalStars    int
	RecentResults []models.ChallengeResult
	WarmupSize    int
	HardWords     []string
}

// ProgressService aggregates repository data into dashboard summaries
type ProgressService struct {
	warmups    *repository.WarmupRepository
	challenges *repository.ChallengeRepository
}

// NewProgressService creates a new progress service
func NewProgressService(warmups *repository.WarmupRepository, challenges *repository.ChallengeRepository) *ProgressService {
	return &ProgressService{warmups: warmups, challenges: challenges}
}

// Summary builds the dashboard summary for a student.
func (s *ProgressService) Summary(studentID string) (*ProgressSummary, error) {
	total, err := s.challenges.TotalStars(studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load star total: %w", err)
	}

	recent, err := s.challenges.RecentResults(studentID, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent results: %w", err)
	}

	entries, err := s.warmups.Load(studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load warmup queue: %w", err)
	}

	var hard []string
	for _, entry := range entries {
		if entry.Difficulty() == "hard" {
			hard = append(hard, entry.Word)
		}
	}

	return &ProgressSummary{
		StudentID:     studentID,
		TotalStars:    total,
		RecentResults: recent,
		WarmupSize:    len(entries),
		HardWords:     hard,
	}, nil
}

// WarmupQueue opens the student's persistent warmup queue.
func (s *ProgressService) WarmupQueue(studentID string) (*warmup.Queue, error) {
	return warmup.NewQueue(s.warmups, studentID)
}
