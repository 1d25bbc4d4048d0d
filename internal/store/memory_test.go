package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templateflow/api/internal/model"
)

func sampleJob(id string, createdAt time.Time) *model.Job {
	return &model.Job{
		ID:        id,
		Name:      "sample",
		Stage:     model.StageCreated,
		Status:    model.JobStatusCreated,
		AuditLog:  []model.AuditEntry{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.Save(ctx, sampleJob("a", now)))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, model.StageCreated, got.Stage)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CallersGetCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	job := sampleJob("a", time.Now().UTC())
	require.NoError(t, s.Save(ctx, job))

	// mutating the saved pointer must not leak into the store
	job.Name = "mutated after save"

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "sample", got.Name)

	// mutating a read result must not leak either
	got.Stage = model.StageCompleted
	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StageCreated, again.Stage)
}

func TestMemoryStore_ListOrderedByCreation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, s.Save(ctx, sampleJob("newer", base.Add(time.Minute))))
	require.NoError(t, s.Save(ctx, sampleJob("older", base)))

	jobs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "older", jobs[0].ID)
	assert.Equal(t, "newer", jobs[1].ID)
}
