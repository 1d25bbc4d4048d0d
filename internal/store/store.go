// Package store persists jobs. The Redis implementation follows the
// job:<id> JSON layout; the memory implementation backs tests and local
// runs without Redis.
package store

import (
	"context"
	"errors"

	"github.com/templateflow/api/internal/model"
)

// ErrNotFound is returned when a job id is unknown
var ErrNotFound = errors.New("job not found")

// JobStore saves and loads jobs. Save is a single atomic write of the
// whole record; the service layer serializes writers per job id.
type JobStore interface {
	Save(ctx context.Context, job *model.Job) error
	Get(ctx context.Context, jobID string) (*model.Job, error)
	List(ctx context.Context) ([]*model.Job, error)
}
