// Package service holds the operations built on top of the repositories:
// progress summaries for the dashboard and backup/restore of student
// data.
package service

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"readaloud/internal/models"
	"readaloud/internal/repository"
)

// BackupData represents the complete student-data backup structure
type BackupData struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Warmups    []WarmupBackup  `json:"warmups"`
	Results    []ResultBackup  `json:"results"`
}

// WarmupBackup holds one student's warmup queue
type WarmupBackup struct {
	StudentID string               `json:"student_id"`
	Entries   []models.WarmupEntry `json:"entries"`
}

// ResultBackup holds one completed challenge run
type ResultBackup struct {
	TaskID          int64     `json:"task_id"`
	StudentID       string    `json:"student_id"`
	Accuracy        int       `json:"accuracy"`
	TimeSpentMs     int64     `json:"time_spent_ms"`
	WithinTimeLimit bool      `json:"within_time_limit"`
	StarsAwarded    int       `json:"stars_awarded"`
	CompletedAt     time.Time `json:"completed_at"`
}

// BackupService handles backup and restore of warmup queues and
// challenge results
type BackupService struct {
	warmups    *repository.WarmupRepository
	challenges *repository.ChallengeRepository
}

// NewBackupService creates a new backup service
func NewBackupService(warmups *repository.WarmupRepository, challenges *repository.ChallengeRepository) *BackupService {
	return &BackupService{warmups: warmups, challenges: challenges}
}

// Export writes every student's warmup queue and recent challenge
// results to a JSON file.
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting export...")

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	studentIDs, err := s.warmups.StudentIDs()
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	for _, studentID := range studentIDs {
		entries, err := s.warmups.Load(studentID)
		if err != nil {
			return fmt.Errorf("failed to export warmup queue for %s: %w", studentID, err)
		}
		backup.Warmups = append(backup.Warmups, WarmupBackup{
			StudentID: studentID,
			Entries:   entries,
		})

		results, err := s.challenges.RecentResults(studentID, 1000)
		if err != nil {
			return fmt.Errorf("failed to export results for %s: %w", studentID, err)
		}
		for _, result := range results {
			backup.Results = append(backup.Results, ResultBackup{
				TaskID:          result.TaskID,
				StudentID:       result.StudentID,
				Accuracy:        result.Accuracy,
				TimeSpentMs:     result.TimeSpent.Milliseconds(),
				WithinTimeLimit: result.WithinTimeLimit,
				StarsAwarded:    result.StarsAwarded,
				CompletedAt:     result.CompletedAt,
			})
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported %d warmup queues and %d challenge results to %s",
		len(backup.Warmups), len(backup.Results), outputPath)
	return nil
}

// Import restores warmup queues and challenge results from a backup
// file. Warmup queues replace any stored queue for the same student;
// challenge results are appended.
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	var backup BackupData
	if err := json.NewDecoder(file).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	for _, warmup := range backup.Warmups {
		if err := s.warmups.Save(warmup.StudentID, warmup.Entries); err != nil {
			return fmt.Errorf("failed to restore warmup queue for %s: %w", warmup.StudentID, err)
		}
	}

	for _, result := range backup.Results {
		_, err := s.challenges.RecordCompletion(models.ChallengeResult{
			TaskID:          result.TaskID,
			StudentID:       result.StudentID,
			Accuracy:        result.Accuracy,
			TimeSpent:       time.Duration(result.TimeSpentMs) * time.Millisecond,
			WithinTimeLimit: result.WithinTimeLimit,
			StarsAwarded:    result.StarsAwarded,
			CompletedAt:     result.CompletedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to restore challenge result: %w", err)
		}
	}

	log.Printf("Imported %d warmup queues and %d challenge results",
		len(backup.Warmups), len(backup.Results))
	return nil
}
