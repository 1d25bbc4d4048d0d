package model

import "time"

// AuditEntry records one successful transition, approval, or override.
// The audit log is append-only and never truncated.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	FromStage JobStage  `json:"fromStage"`
	ToStage   JobStage  `json:"toStage"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
}

// Override captures a reasoned bypass of the validation gate
type Override struct {
	Reason    string    `json:"reason"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}

// Job is one template-population run. It is owned exclusively by the
// workflow controller; matcher and detector are invoked on its behalf and
// hold no reference to it.
type Job struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Stage          JobStage            `json:"stage"`
	Status         JobStatus           `json:"status"`
	SourceLayers   []SourceLayer       `json:"sourceLayers"`
	Targets        []TargetPlaceholder `json:"targets"`
	SourceDims     Dims                `json:"sourceDims"`
	TargetDims     Dims                `json:"targetDims"`
	MatchSet       *MatchSet           `json:"matchSet,omitempty"`
	ConflictReport *ConflictReport     `json:"conflictReport,omitempty"`
	AuditLog       []AuditEntry        `json:"auditLog"`
	Override       *Override           `json:"override,omitempty"`
	PreviewRef     string              `json:"previewRef,omitempty"`
	Script         string              `json:"script,omitempty"`
	Failed         bool                `json:"failed,omitempty"`
	Error          *string             `json:"error,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// ScriptJobPayload is the asynq payload for script generation
type ScriptJobPayload struct {
	JobID string `json:"jobId"`
}

// PreviewJobPayload is the asynq payload for preview generation
type PreviewJobPayload struct {
	JobID string `json:"jobId"`
}
