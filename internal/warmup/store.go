package warmup

import (
	"sync"

	"readaloud/internal/models"
)

// Store persists a student's warmup entries. The queue loads the full
// list once and saves it back after every mutation; implementations only
// need whole-list reads and writes.
type Store interface {
	Load(studentID string) ([]models.WarmupEntry, error)
	Save(studentID string, entries []models.WarmupEntry) error
}

// MemoryStore is an in-process Store used by tests and by callers that
// do not need persistence across runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]models.WarmupEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]models.WarmupEntry)}
}

// Load returns a copy of the stored entries for a student.
func (s *MemoryStore) Load(studentID string) ([]models.WarmupEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.entries[studentID]
	out := make([]models.WarmupEntry, len(stored))
	copy(out, stored)
	return out, nil
}

// Save replaces the stored entries for a student.
func (s *MemoryStore) Save(studentID string, entries []models.WarmupEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]models.WarmupEntry, len(entries))
	copy(stored, entries)
	s.entries[studentID] = stored
	return nil
}
