// Package repository persists warmup queues and challenge results
// through the dialect-aware database layer.
package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"readaloud/internal/database"
	"readaloud/internal/models"
)

// WarmupRepository stores each student's warmup queue as one JSON
// document. The queue is small by design (at most 50 entries), so
// whole-list reads and writes keep the SQL portable across dialects.
type WarmupRepository struct {
	db database.DBTX
}

// NewWarmupRepository creates a new warmup repository
func NewWarmupRepository(db database.DBTX) *WarmupRepository {
	return &WarmupRepository{db: db}
}

// Load returns a student's warmup entries, or an empty list when the
// student has none yet.
func (r *WarmupRepository) Load(studentID string) ([]models.WarmupEntry, error) {
	query := "SELECT entries FROM warmup_entries WHERE student_id = ?"

	var raw string
	err := r.db.QueryRow(query, studentID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load warmup entries: %w", err)
	}

	var entries []models.WarmupEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode warmup entries: %w", err)
	}
	return entries, nil
}

// Save replaces a student's warmup entries. Update-then-insert keeps the
// upsert portable across all three dialects.
func (r *WarmupRepository) Save(studentID string, entries []models.WarmupEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode warmup entries: %w", err)
	}

	result, err := r.db.Exec(
		"UPDATE warmup_entries SET entries = ?, updated_at = CURRENT_TIMESTAMP WHERE student_id = ?",
		string(raw), studentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update warmup entries: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// MySQL reports zero affected rows for a no-op update, so an existing
	// row must not be re-inserted.
	var count int
	if err := r.db.QueryRow(
		"SELECT COUNT(*) FROM warmup_entries WHERE student_id = ?", studentID,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to check warmup row: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = r.db.Exec(
		"INSERT INTO warmup_entries (student_id, entries) VALUES (?, ?)",
		studentID, string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to insert warmup entries: %w", err)
	}
	return nil
}

// Delete removes a student's warmup queue entirely.
func (r *WarmupRepository) Delete(studentID string) error {
	_, err := r.db.Exec("DELETE FROM warmup_entries WHERE student_id = ?", studentID)
	if err != nil {
		return fmt.Errorf("failed to delete warmup entries: %w", err)
	}
	return nil
}

// StudentIDs lists every student with a stored warmup queue.
func (r *WarmupRepository) StudentIDs() ([]string, error) {
	rows, err := r.db.Query("SELECT student_id FROM warmup_entries ORDER BY student_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
