package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/templateflow/api/internal/model"
)

// MemoryStore is an in-process JobStore. Jobs are stored as deep copies
// so callers never share mutable state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*model.Job)}
}

func (s *MemoryStore) Save(_ context.Context, job *model.Job) error {
	clone, err := cloneJob(job)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = clone
	return nil
}

func (s *MemoryStore) Get(_ context.Context, jobID string) (*model.Job, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return cloneJob(job)
}

func (s *MemoryStore) List(_ context.Context) ([]*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*model.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		clone, err := cloneJob(job)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, clone)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
	return jobs, nil
}

func cloneJob(job *model.Job) (*model.Job, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	var clone model.Job
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}
