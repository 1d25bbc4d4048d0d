package model

import "time"

// JobCreateRequest carries the parsed layer trees from the parsing
// collaborator. Parsing itself happens upstream; the core only sees the
// normalized lists.
type JobCreateRequest struct {
	Name         string              `json:"name" validate:"required,max=200"`
	SourceLayers []SourceLayer       `json:"sourceLayers" validate:"required,min=1,dive"`
	Targets      []TargetPlaceholder `json:"targets" validate:"required,min=1,dive"`
	SourceDims   Dims                `json:"sourceDims" validate:"required"`
	TargetDims   Dims                `json:"targetDims" validate:"required"`
}

// JobCreateResponse acknowledges job creation
type JobCreateResponse struct {
	JobID     string    `json:"jobId"`
	Stage     string    `json:"stage"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// JobSummary is the dashboard listing row
type JobSummary struct {
	JobID     string    `json:"jobId"`
	Name      string    `json:"name"`
	Stage     string    `json:"stage"`
	Status    JobStatus `json:"status"`
	GateState GateState `json:"gateState,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TransitionResponse reports the job state after a workflow action
type TransitionResponse struct {
	JobID  string    `json:"jobId"`
	Stage  string    `json:"stage"`
	Status JobStatus `json:"status"`
}

// OverrideAssignmentRequest replaces one source's assignment during
// review. A null targetId is an explicit skip.
type OverrideAssignmentRequest struct {
	TargetID *string `json:"targetId"`
}

// ReviewCompleteRequest moves a job out of matching review. Force
// acknowledges unresolved assignments and is recorded in the audit log.
type ReviewCompleteRequest struct {
	Force bool `json:"force"`
}

// ValidationOverrideRequest bypasses a blocked validation gate
type ValidationOverrideRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// LedgerDecisionRequest records a human decision against the ledger
type LedgerDecisionRequest struct {
	SourceDims  Dims        `json:"sourceDims" validate:"required"`
	TargetDims  Dims        `json:"targetDims" validate:"required"`
	HumanChoice HumanChoice `json:"humanChoice" validate:"required,oneof=proceed skip manual_fix different_transform"`
}

// LedgerDecisionResponse echoes the stored record
type LedgerDecisionResponse struct {
	Record LearningRecord `json:"record"`
}

// MatchSetResponse wraps the match set with per-row confidence bands
type MatchSetResponse struct {
	JobID       string          `json:"jobId"`
	Assignments []AssignmentRow `json:"assignments"`
	Unresolved  []string        `json:"unresolved,omitempty"`
}

// AssignmentRow is one review-table row
type AssignmentRow struct {
	MatchAssignment
	Band string `json:"band"`
}

// ScriptResponse returns the generated ExtendScript
type ScriptResponse struct {
	JobID  string `json:"jobId"`
	Script string `json:"script"`
}
