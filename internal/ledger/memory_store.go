package ledger

import (
	"context"
	"sync"

	"github.com/templateflow/api/internal/model"
)

// MemoryStore is an in-process Store used by tests and local runs
// without Redis.
type MemoryStore struct {
	mu      sync.Mutex
	records []model.LearningRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, rec model.LearningRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]model.LearningRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LearningRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}
