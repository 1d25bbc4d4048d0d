package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/templateflow/api/internal/conflict"
	"github.com/templateflow/api/internal/config"
	"github.com/templateflow/api/internal/matcher"
	"github.com/templateflow/api/internal/model"
	"github.com/templateflow/api/internal/store"
	"github.com/templateflow/api/internal/workflow"
)

// JobService owns job persistence and drives the workflow controller.
// Writes to one job are serialized behind a per-id mutex; two competing
// transition requests never both succeed. The loser re-reads the job and
// fails its stage guard.
type JobService struct {
	store      store.JobStore
	tasks      TaskEnqueuer // nil disables background tasks (tests)
	controller *workflow.Controller
	thresholds conflict.Thresholds

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewJobService(jobStore store.JobStore, tasks TaskEnqueuer, th config.ThresholdConfig) *JobService {
	return &JobService{
		store: jobStore,
		tasks: tasks,
		controller:  workflow.NewController(),
		thresholds: conflict.Thresholds{
			ResolutionPx:     th.ResolutionPx,
			OverflowWarning:  th.OverflowWarning,
			OverflowCritical: th.OverflowCritical,
			CharWidthRatio:   th.CharWidthRatio,
		},
		locks: make(map[string]*sync.Mutex),
	}
}

// Create validates the parsed layer lists and stores a new job at the
// created stage. Malformed input is rejected outright, never corrected.
func (s *JobService) Create(ctx context.Context, req *model.JobCreateRequest) (*model.Job, error) {
	if req.SourceDims.Width <= 0 || req.SourceDims.Height <= 0 {
		return nil, fmt.Errorf("%w: source dimensions must be positive", matcher.ErrInvalidInput)
	}
	if req.TargetDims.Width <= 0 || req.TargetDims.Height <= 0 {
		return nil, fmt.Errorf("%w: target dimensions must be positive", matcher.ErrInvalidInput)
	}
	if err := matcher.ValidateInputs(req.SourceLayers, req.Targets); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &model.Job{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Stage:        model.StageCreated,
		SourceLayers: req.SourceLayers,
		Targets:      req.Targets,
		SourceDims:   req.SourceDims,
		TargetDims:   req.TargetDims,
		AuditLog:     []model.AuditEntry{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	job.Status = workflow.StatusFor(job)

	if err := s.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}
	return job, nil
}

// Get returns one job
func (s *JobService) Get(ctx context.Context, jobID string) (*model.Job, error) {
	return s.store.Get(ctx, jobID)
}

// List returns dashboard summaries for all jobs
func (s *JobService) List(ctx context.Context) ([]model.JobSummary, error) {
	jobs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.JobSummary, 0, len(jobs))
	for _, job := range jobs {
		sum := model.JobSummary{
			JobID:     job.ID,
			Name:      job.Name,
			Stage:     job.Stage.String(),
			Status:    job.Status,
			UpdatedAt: job.UpdatedAt,
		}
		if job.ConflictReport != nil {
			sum.GateState = job.ConflictReport.GateState
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// Parse advances created -> parsed
func (s *JobService) Parse(ctx context.Context, jobID, actor string) (*model.Job, error) {
	return s.withJob(ctx, jobID, func(job *model.Job) error {
		return s.controller.Parse(job, actor)
	})
}

// RunMatch computes the match set and advances parsed -> matching_review
func (s *JobService) RunMatch(ctx context.Context, jobID, actor string) (*model.Job, error) {
	return s.withJob(ctx, jobID, func(job *model.Job) error {
		if job.Stage != model.StageParsed {
			return fmt.Errorf("%w: job is at %s, matching requires parsed",
				workflow.ErrInvalidTransition, job.Stage)
		}
		ms, err := matcher.Match(job.SourceLayers, job.Targets)
		if err != nil {
			return err
		}
		return s.controller.AttachMatchSet(job, ms, actor)
	})
}

// OverrideAssignment replaces one source's assignment during review. A
// nil target is an explicit skip. The override is audit-logged.
func (s *JobService) OverrideAssignment(ctx context.Context, jobID, sourceID string, targetID *string, actor string) (*model.Job, error) {
	return s.withJob(ctx, jobID, func(job *model.Job) error {
		if job.Stage != model.StageMatchingReview {
			return fmt.Errorf("%w: assignments can only be edited during matching review",
				workflow.ErrInvalidTransition)
		}
		if targetID != nil && !targetExists(job.Targets, *targetID) {
			return fmt.Errorf("%w: unknown target placeholder %q", matcher.ErrInvalidInput, *targetID)
		}
		if err := matcher.ApplyOverride(job.MatchSet, sourceID, targetID); err != nil {
			return err
		}
		detail := fmt.Sprintf("source %s skipped", sourceID)
		if targetID != nil {
			detail = fmt.Sprintf("source %s -> target %s", sourceID, *targetID)
		}
		s.controller.NoteAssignmentOverride(job, actor, detail)
		return nil
	})
}

// CompleteReview advances matching_review -> preview_approval and queues
// preview generation. The enqueue happens before the transition is
// persisted; if the broker is down the job stays in review.
func (s *JobService) CompleteReview(ctx context.Context, jobID string, force bool, actor string) (*model.Job, error) {
	return s.withJob(ctx, jobID, func(job *model.Job) error {
		if err := s.controller.CompleteReview(job, force, actor); err != nil {
			return err
		}
		if err := s.enqueue(newPreviewTask(jobID), QueuePreview); err != nil {
			return fmt.Errorf("failed to enqueue preview task: %w", err)
		}
		return nil
	})
}

// ApprovePreview runs the conflict detector and advances
// preview_approval -> validation. The stage is checked before detection
// runs; out-of-order requests never reach the detector.
func (s *JobService) ApprovePreview(ctx context.Context, jobID, actor string) (*model.Job, error) {
	return s.withJob(ctx, jobID, func(job *model.Job) error {
		if job.Stage != model.StagePreviewApproval {
			return fmt.Errorf("%w: job is at %s, approval requires %s",
				workflow.ErrInvalidTransition, job.Stage, model.StagePreviewApproval)
		}
		report := conflict.Detect(job.SourceDims, job.TargetDims, job.MatchSet,
			job.SourceLayers, job.Targets, s.thresholds)
		return s.controller.ApprovePreview(job, report, actor)
	})
}

// ApproveValidation advances validation -> script_generation when the
// gate is clear, queueing script generation
func (s *JobService) ApproveValidation(ctx context.Context, jobID, actor string) (*model.Job, error) {
	return s.withJob(ctx, jobID, func(job *model.Job) error {
		if err := s.controller.ApproveValidation(job, actor); err != nil {
			return err
		}
		if err := s.enqueue(newScriptTask(jobID), QueueScript); err != nil {
			return fmt.Errorf("failed to enqueue script task: %w", err)
		}
		return nil
	})
}

// OverrideValidation bypasses a blocked gate with a recorded reason,
// queueing script generation
func (s *JobService) OverrideValidation(ctx context.Context, jobID, reason, actor string) (*model.Job, error) {
	return s.withJob(ctx, jobID, func(job *model.Job) error {
		if err := s.controller.OverrideValidation(job, reason, actor); err != nil {
			return err
		}
		if err := s.enqueue(newScriptTask(jobID), QueueScript); err != nil {
			return fmt.Errorf("failed to enqueue script task: %w", err)
		}
		return nil
	})
}

// ReturnToReview moves validation -> matching_review, clearing the
// stored conflict report while retaining manual match overrides
func (s *JobService) ReturnToReview(ctx context.Context, jobID, actor string) (*model.Job, error) {
	return s.withJob(ctx, jobID, func(job *model.Job) error {
		return s.controller.ReturnToReview(job, actor)
	})
}

// RetryScript re-queues script generation for a failed job
func (s *JobService) RetryScript(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Stage != model.StageScriptGeneration || !job.Failed {
		return nil, fmt.Errorf("%w: job has no failed script generation to retry",
			workflow.ErrInvalidTransition)
	}
	if err := s.enqueue(newScriptTask(jobID), QueueScript); err != nil {
		return nil, fmt.Errorf("failed to enqueue script task: %w", err)
	}
	return job, nil
}

// SetPreviewRef records the preview artifact produced by the preview
// worker. Not a stage transition.
func (s *JobService) SetPreviewRef(ctx context.Context, jobID, ref string) (*model.Job, error) {
	return s.withJob(ctx, jobID, func(job *model.Job) error {
		if job.Stage != model.StagePreviewApproval {
			return fmt.Errorf("%w: preview arrived at stage %s", workflow.ErrInvalidTransition, job.Stage)
		}
		job.PreviewRef = ref
		job.Status = workflow.StatusFor(job)
		job.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// CompleteScript stores the generated script and advances to completed.
// Called by the script worker.
func (s *JobService) CompleteScript(ctx context.Context, jobID, script string) (*model.Job, error) {
	return s.withJob(ctx, jobID, func(job *model.Job) error {
		return s.controller.CompleteScript(job, script, "system")
	})
}

// FailScript marks script generation failed, leaving the job retryable
func (s *JobService) FailScript(ctx context.Context, jobID, errMsg string) (*model.Job, error) {
	return s.withJob(ctx, jobID, func(job *model.Job) error {
		return s.controller.FailScript(job, errMsg, "system")
	})
}

// withJob runs fn against a locked, freshly-loaded job and persists the
// result as a single atomic update. On any error the stored job is left
// in its prior valid state.
func (s *JobService) withJob(ctx context.Context, jobID string, fn func(*model.Job) error) (*model.Job, error) {
	mu := s.lockFor(jobID)
	mu.Lock()
	defer mu.Unlock()

	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := fn(job); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}
	return job, nil
}

func (s *JobService) lockFor(jobID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.locks[jobID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[jobID] = mu
	}
	return mu
}

func (s *JobService) enqueue(task *asynq.Task, queue string) error {
	if s.tasks == nil {
		return nil
	}
	_, err := s.tasks.Enqueue(task,
		asynq.Queue(queue),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour),
	)
	return err
}

func targetExists(targets []model.TargetPlaceholder, id string) bool {
	for _, t := range targets {
		if t.ID == id {
			return true
		}
	}
	return false
}
