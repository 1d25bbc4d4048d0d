// Package workflow is the per-job stage state machine. Every legal
// transition is a named method with an explicit guard; anything else is
// rejected with ErrInvalidTransition and leaves the job untouched.
// Each successful transition, approval, or override appends exactly one
// audit entry; the log is never rewritten.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/templateflow/api/internal/model"
)

// Audit actions
const (
	ActionParse              = "parse"
	ActionMatch              = "match"
	ActionReviewComplete     = "review_complete"
	ActionForceReview        = "force_review_complete"
	ActionPreviewApproved    = "preview_approved"
	ActionValidationApproved = "validation_approved"
	ActionOverrideValidation = "override_validation"
	ActionReturnToReview     = "return_to_review"
	ActionScriptCompleted    = "script_completed"
	ActionScriptFailed       = "script_failed"
	ActionAssignmentOverride = "assignment_override"
)

// Controller drives stage transitions on a single Job. It is stateless;
// callers own persistence and per-job serialization.
type Controller struct {
	now func() time.Time
}

func NewController() *Controller {
	return &Controller{now: time.Now}
}

// Parse moves created -> parsed once both layer lists are present
func (c *Controller) Parse(job *model.Job, actor string) error {
	if err := c.requireStage(job, model.StageCreated); err != nil {
		return err
	}
	if len(job.SourceLayers) == 0 || len(job.Targets) == 0 {
		return fmt.Errorf("%w: layer lists not yet available", ErrInvalidTransition)
	}
	c.advance(job, model.StageParsed, actor, ActionParse,
		fmt.Sprintf("%d source layers, %d placeholders", len(job.SourceLayers), len(job.Targets)))
	return nil
}

// AttachMatchSet moves parsed -> matching_review with the matcher output
func (c *Controller) AttachMatchSet(job *model.Job, ms *model.MatchSet, actor string) error {
	if err := c.requireStage(job, model.StageParsed); err != nil {
		return err
	}
	if ms == nil {
		return fmt.Errorf("%w: no match set produced", ErrInvalidTransition)
	}
	job.MatchSet = ms
	c.advance(job, model.StageMatchingReview, actor, ActionMatch,
		fmt.Sprintf("%d assignments", len(ms.Assignments)))
	return nil
}

// CompleteReview moves matching_review -> preview_approval. Unresolved
// assignments soft-block with ErrPendingReview unless force is set, in
// which case the acknowledgment is written to the audit log.
func (c *Controller) CompleteReview(job *model.Job, force bool, actor string) error {
	if err := c.requireStage(job, model.StageMatchingReview); err != nil {
		return err
	}
	if job.MatchSet == nil {
		return fmt.Errorf("%w: no match set on job", ErrInvalidTransition)
	}

	unresolved := job.MatchSet.Unresolved()
	action := ActionReviewComplete
	detail := ""
	if len(unresolved) > 0 {
		if !force {
			return fmt.Errorf("%w: %d unresolved assignments (%s)",
				ErrPendingReview, len(unresolved), strings.Join(unresolved, ", "))
		}
		action = ActionForceReview
		detail = fmt.Sprintf("acknowledged %d unresolved assignments: %s",
			len(unresolved), strings.Join(unresolved, ", "))
	}
	c.advance(job, model.StagePreviewApproval, actor, action, detail)
	return nil
}

// ApprovePreview moves preview_approval -> validation and stores the
// conflict report computed at this point. Requires a preview artifact.
func (c *Controller) ApprovePreview(job *model.Job, report *model.ConflictReport, actor string) error {
	if err := c.requireStage(job, model.StagePreviewApproval); err != nil {
		return err
	}
	if job.PreviewRef == "" {
		return fmt.Errorf("%w: no preview artifact yet", ErrInvalidTransition)
	}
	job.ConflictReport = report
	detail := ""
	if report != nil {
		detail = fmt.Sprintf("%d issues, gate %s", len(report.Issues), report.GateState)
	}
	c.advance(job, model.StageValidation, actor, ActionPreviewApproved, detail)
	return nil
}

// ApproveValidation moves validation -> script_generation when the gate
// is clear
func (c *Controller) ApproveValidation(job *model.Job, actor string) error {
	if err := c.requireStage(job, model.StageValidation); err != nil {
		return err
	}
	if job.ConflictReport == nil || job.ConflictReport.Blocked() {
		return fmt.Errorf("%w: conflict report has critical issues", ErrValidationBlocked)
	}
	c.advance(job, model.StageScriptGeneration, actor, ActionValidationApproved, "")
	return nil
}

// OverrideValidation moves validation -> script_generation past a blocked
// gate. The reason and actor are recorded permanently.
func (c *Controller) OverrideValidation(job *model.Job, reason, actor string) error {
	if err := c.requireStage(job, model.StageValidation); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: override requires a reason", ErrInvalidInput)
	}
	if actor == "" {
		return fmt.Errorf("%w: override requires an actor identity", ErrInvalidInput)
	}
	job.Override = &model.Override{
		Reason:    reason,
		User:      actor,
		Timestamp: c.now().UTC(),
	}
	c.advance(job, model.StageScriptGeneration, actor, ActionOverrideValidation, reason)
	return nil
}

// ReturnToReview is the single legal backward move: validation ->
// matching_review. The stored conflict report is cleared; manual
// overrides in the match set are retained.
func (c *Controller) ReturnToReview(job *model.Job, actor string) error {
	if err := c.requireStage(job, model.StageValidation); err != nil {
		return err
	}
	job.ConflictReport = nil
	c.advance(job, model.StageMatchingReview, actor, ActionReturnToReview, "conflict report cleared")
	return nil
}

// CompleteScript moves script_generation -> completed once the generator
// reports success
func (c *Controller) CompleteScript(job *model.Job, script, actor string) error {
	if err := c.requireStage(job, model.StageScriptGeneration); err != nil {
		return err
	}
	if script == "" {
		return fmt.Errorf("%w: empty script", ErrInvalidTransition)
	}
	job.Script = script
	job.Failed = false
	job.Error = nil
	c.advance(job, model.StageCompleted, actor, ActionScriptCompleted,
		fmt.Sprintf("%d bytes", len(script)))
	return nil
}

// FailScript keeps the job at script_generation with a failed flag; the
// generation task may be retried.
func (c *Controller) FailScript(job *model.Job, errMsg, actor string) error {
	if err := c.requireStage(job, model.StageScriptGeneration); err != nil {
		return err
	}
	job.Failed = true
	job.Error = &errMsg
	job.Status = StatusFor(job)
	job.UpdatedAt = c.now().UTC()
	job.AuditLog = append(job.AuditLog, model.AuditEntry{
		Timestamp: job.UpdatedAt,
		FromStage: job.Stage,
		ToStage:   job.Stage,
		Actor:     actor,
		Action:    ActionScriptFailed,
		Detail:    errMsg,
	})
	return nil
}

// NoteAssignmentOverride audit-logs a manual match edit. The stage does
// not change.
func (c *Controller) NoteAssignmentOverride(job *model.Job, actor, detail string) {
	now := c.now().UTC()
	job.UpdatedAt = now
	job.AuditLog = append(job.AuditLog, model.AuditEntry{
		Timestamp: now,
		FromStage: job.Stage,
		ToStage:   job.Stage,
		Actor:     actor,
		Action:    ActionAssignmentOverride,
		Detail:    detail,
	})
}

// StatusFor derives the presentation status from stage and pending flags
func StatusFor(job *model.Job) model.JobStatus {
	switch job.Stage {
	case model.StageCreated:
		return model.JobStatusCreated
	case model.StageParsed:
		return model.JobStatusParsed
	case model.StageMatchingReview:
		return model.JobStatusAwaitingReview
	case model.StagePreviewApproval:
		if job.PreviewRef == "" {
			return model.JobStatusAwaitingPreview
		}
		return model.JobStatusAwaitingApproval
	case model.StageValidation:
		return model.JobStatusAwaitingDecision
	case model.StageScriptGeneration:
		if job.Failed {
			return model.JobStatusFailed
		}
		return model.JobStatusGenerating
	case model.StageCompleted:
		if job.Script != "" {
			return model.JobStatusAwaitingDownload
		}
		return model.JobStatusCompleted
	default:
		return model.JobStatusCreated
	}
}

func (c *Controller) requireStage(job *model.Job, want model.JobStage) error {
	if job.Stage != want {
		return fmt.Errorf("%w: job is at %s, operation requires %s",
			ErrInvalidTransition, job.Stage, want)
	}
	return nil
}

func (c *Controller) advance(job *model.Job, to model.JobStage, actor, action, detail string) {
	from := job.Stage
	now := c.now().UTC()
	job.Stage = to
	job.Status = StatusFor(job)
	job.UpdatedAt = now
	job.AuditLog = append(job.AuditLog, model.AuditEntry{
		Timestamp: now,
		FromStage: from,
		ToStage:   to,
		Actor:     actor,
		Action:    action,
		Detail:    detail,
	})
}
