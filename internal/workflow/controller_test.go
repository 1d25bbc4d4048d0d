package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templateflow/api/internal/model"
)

func newJob() *model.Job {
	tid := "t1"
	return &model.Job{
		ID:    "job-1",
		Stage: model.StageCreated,
		SourceLayers: []model.SourceLayer{{
			ID:   "s1",
			Name: "Title",
			Kind: model.LayerKindText,
			BBox: model.BBox{Right: 100, Bottom: 40},
		}},
		Targets: []model.TargetPlaceholder{{
			ID:   "t1",
			Name: "Title Slot",
			Kind: model.LayerKindText,
		}},
		MatchSet: &model.MatchSet{Assignments: []model.MatchAssignment{
			{SourceID: "s1", TargetID: &tid, Confidence: 0.95, Method: model.MatchMethodSequential},
		}},
	}
}

func clearReport() *model.ConflictReport {
	return &model.ConflictReport{GateState: model.GateClear}
}

func blockedReport() *model.ConflictReport {
	return &model.ConflictReport{
		GateState: model.GateBlocked,
		Issues: []model.ConflictIssue{{
			Severity: model.SeverityCritical,
			Category: model.ConflictAspectRatio,
			Message:  "cross-category transform",
		}},
	}
}

// walk a job to the given stage using only legal transitions
func jobAt(t *testing.T, stage model.JobStage, report *model.ConflictReport) *model.Job {
	t.Helper()
	c := NewController()
	job := newJob()
	steps := []func() error{
		func() error { return c.Parse(job, "tester") },
		func() error { return c.AttachMatchSet(job, job.MatchSet, "tester") },
		func() error { return c.CompleteReview(job, false, "tester") },
		func() error {
			job.PreviewRef = "previews/job-1.mp4"
			return c.ApprovePreview(job, report, "tester")
		},
		func() error { return c.ApproveValidation(job, "tester") },
		func() error { return c.CompleteScript(job, "// script", "tester") },
	}
	for _, step := range steps {
		if job.Stage == stage {
			return job
		}
		require.NoError(t, step())
	}
	require.Equal(t, stage, job.Stage)
	return job
}

func TestHappyPath(t *testing.T) {
	job := jobAt(t, model.StageCompleted, clearReport())

	assert.Equal(t, model.JobStatusAwaitingDownload, job.Status)
	require.Len(t, job.AuditLog, 6)
	actions := make([]string, 0, len(job.AuditLog))
	for _, e := range job.AuditLog {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{
		ActionParse, ActionMatch, ActionReviewComplete,
		ActionPreviewApproved, ActionValidationApproved, ActionScriptCompleted,
	}, actions)
}

func TestAuditEntriesRecordStagePair(t *testing.T) {
	c := NewController()
	job := newJob()

	require.NoError(t, c.Parse(job, "tester"))

	require.Len(t, job.AuditLog, 1)
	entry := job.AuditLog[0]
	assert.Equal(t, model.StageCreated, entry.FromStage)
	assert.Equal(t, model.StageParsed, entry.ToStage)
	assert.Equal(t, "tester", entry.Actor)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestStageSkipRejected(t *testing.T) {
	c := NewController()
	job := newJob()

	// created -> matching_review without parsing
	err := c.AttachMatchSet(job, job.MatchSet, "tester")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.StageCreated, job.Stage)
	assert.Empty(t, job.AuditLog)
}

func TestBackwardMoveOnlyFromValidation(t *testing.T) {
	c := NewController()
	job := jobAt(t, model.StageMatchingReview, nil)

	// matching_review has no backward transition
	err := c.ReturnToReview(job, "tester")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.StageMatchingReview, job.Stage)
}

func TestParseRequiresLayers(t *testing.T) {
	c := NewController()
	job := newJob()
	job.Targets = nil

	err := c.Parse(job, "tester")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteReviewBlocksOnUnresolved(t *testing.T) {
	c := NewController()
	job := jobAt(t, model.StageMatchingReview, nil)
	job.MatchSet.Assignments = append(job.MatchSet.Assignments, model.MatchAssignment{
		SourceID: "s2", TargetID: nil,
	})

	err := c.CompleteReview(job, false, "tester")
	require.ErrorIs(t, err, ErrPendingReview)
	assert.Contains(t, err.Error(), "s2")
	assert.Equal(t, model.StageMatchingReview, job.Stage)
}

func TestCompleteReviewForceWritesAcknowledgment(t *testing.T) {
	c := NewController()
	job := jobAt(t, model.StageMatchingReview, nil)
	job.MatchSet.Assignments = append(job.MatchSet.Assignments, model.MatchAssignment{
		SourceID: "s2", TargetID: nil,
	})

	require.NoError(t, c.CompleteReview(job, true, "tester"))

	assert.Equal(t, model.StagePreviewApproval, job.Stage)
	last := job.AuditLog[len(job.AuditLog)-1]
	assert.Equal(t, ActionForceReview, last.Action)
	assert.Contains(t, last.Detail, "s2")
}

func TestManualSkipCountsAsResolved(t *testing.T) {
	c := NewController()
	job := jobAt(t, model.StageMatchingReview, nil)
	job.MatchSet.Assignments = append(job.MatchSet.Assignments, model.MatchAssignment{
		SourceID: "s2", TargetID: nil, ManualOverride: true,
	})

	assert.NoError(t, c.CompleteReview(job, false, "tester"))
}

func TestApprovePreviewRequiresArtifact(t *testing.T) {
	c := NewController()
	job := jobAt(t, model.StagePreviewApproval, nil)
	job.PreviewRef = ""

	err := c.ApprovePreview(job, clearReport(), "tester")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.JobStatusAwaitingPreview, StatusFor(job))
}

func TestApproveValidationBlockedByCriticalIssues(t *testing.T) {
	c := NewController()
	job := jobAt(t, model.StageValidation, blockedReport())

	err := c.ApproveValidation(job, "tester")
	require.ErrorIs(t, err, ErrValidationBlocked)
	assert.Equal(t, model.StageValidation, job.Stage)
	assert.Nil(t, job.Override)
}

func TestOverrideValidationPassesBlockedGate(t *testing.T) {
	c := NewController()
	job := jobAt(t, model.StageValidation, blockedReport())

	require.NoError(t, c.OverrideValidation(job, "client signed off on crop", "lead"))

	assert.Equal(t, model.StageScriptGeneration, job.Stage)
	require.NotNil(t, job.Override)
	assert.Equal(t, "client signed off on crop", job.Override.Reason)
	assert.Equal(t, "lead", job.Override.User)
	assert.False(t, job.Override.Timestamp.IsZero())

	last := job.AuditLog[len(job.AuditLog)-1]
	assert.Equal(t, ActionOverrideValidation, last.Action)
	assert.Equal(t, "client signed off on crop", last.Detail)
}

func TestOverrideValidationRequiresReasonAndActor(t *testing.T) {
	c := NewController()
	job := jobAt(t, model.StageValidation, blockedReport())

	assert.ErrorIs(t, c.OverrideValidation(job, "   ", "lead"), ErrInvalidInput)
	assert.ErrorIs(t, c.OverrideValidation(job, "reason", ""), ErrInvalidInput)
	assert.Equal(t, model.StageValidation, job.Stage)
}

func TestReturnToReviewClearsConflictReport(t *testing.T) {
	c := NewController()
	job := jobAt(t, model.StageValidation, blockedReport())
	require.NotNil(t, job.ConflictReport)

	require.NoError(t, c.ReturnToReview(job, "tester"))

	assert.Equal(t, model.StageMatchingReview, job.Stage)
	assert.Nil(t, job.ConflictReport)
	assert.Equal(t, model.JobStatusAwaitingReview, job.Status)
	// match set, and any manual work in it, survives the round trip
	assert.NotNil(t, job.MatchSet)
}

func TestFailScriptKeepsStageAndAllowsRetry(t *testing.T) {
	c := NewController()
	job := jobAt(t, model.StageScriptGeneration, clearReport())

	require.NoError(t, c.FailScript(job, "renderer crashed", "system"))

	assert.Equal(t, model.StageScriptGeneration, job.Stage)
	assert.True(t, job.Failed)
	require.NotNil(t, job.Error)
	assert.Equal(t, "renderer crashed", *job.Error)
	assert.Equal(t, model.JobStatusFailed, job.Status)

	last := job.AuditLog[len(job.AuditLog)-1]
	assert.Equal(t, ActionScriptFailed, last.Action)
	assert.Equal(t, last.FromStage, last.ToStage)

	// a later success clears the failure
	require.NoError(t, c.CompleteScript(job, "// script", "system"))
	assert.False(t, job.Failed)
	assert.Nil(t, job.Error)
	assert.Equal(t, model.StageCompleted, job.Stage)
}

func TestCompleteScriptRejectsEmptyScript(t *testing.T) {
	c := NewController()
	job := jobAt(t, model.StageScriptGeneration, clearReport())

	err := c.CompleteScript(job, "", "system")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNoteAssignmentOverrideKeepsStage(t *testing.T) {
	c := NewController()
	job := jobAt(t, model.StageMatchingReview, nil)
	before := len(job.AuditLog)

	c.NoteAssignmentOverride(job, "reviewer", "s1 -> t2")

	assert.Equal(t, model.StageMatchingReview, job.Stage)
	require.Len(t, job.AuditLog, before+1)
	last := job.AuditLog[len(job.AuditLog)-1]
	assert.Equal(t, ActionAssignmentOverride, last.Action)
	assert.Equal(t, "s1 -> t2", last.Detail)
}

func TestStatusForDerivations(t *testing.T) {
	assert.Equal(t, model.JobStatusAwaitingPreview,
		StatusFor(&model.Job{Stage: model.StagePreviewApproval}))
	assert.Equal(t, model.JobStatusAwaitingApproval,
		StatusFor(&model.Job{Stage: model.StagePreviewApproval, PreviewRef: "p.mp4"}))
	assert.Equal(t, model.JobStatusGenerating,
		StatusFor(&model.Job{Stage: model.StageScriptGeneration}))
	assert.Equal(t, model.JobStatusFailed,
		StatusFor(&model.Job{Stage: model.StageScriptGeneration, Failed: true}))
	assert.Equal(t, model.JobStatusCompleted,
		StatusFor(&model.Job{Stage: model.StageCompleted}))
	assert.Equal(t, model.JobStatusAwaitingDownload,
		StatusFor(&model.Job{Stage: model.StageCompleted, Script: "// s"}))
}
