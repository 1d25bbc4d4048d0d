package model

import (
	"encoding/json"
	"fmt"
)

// Layer kinds
type LayerKind string

const (
	LayerKindText        LayerKind = "text"
	LayerKindImage       LayerKind = "image"
	LayerKindShape       LayerKind = "shape"
	LayerKindGroup       LayerKind = "group"
	LayerKindSmartObject LayerKind = "smart_object"
)

var ValidLayerKinds = []LayerKind{
	LayerKindText, LayerKindImage, LayerKindShape,
	LayerKindGroup, LayerKindSmartObject,
}

// Match methods
type MatchMethod string

const (
	MatchMethodExact      MatchMethod = "exact"
	MatchMethodPattern    MatchMethod = "pattern"
	MatchMethodFuzzy      MatchMethod = "fuzzy"
	MatchMethodSequential MatchMethod = "sequential"
	MatchMethodSemantic   MatchMethod = "semantic"
	MatchMethodManual     MatchMethod = "manual"
)

// Confidence bands (presentation thresholds used by the review UI)
const (
	ConfidenceHighMin     = 0.95
	ConfidenceProbableMin = 0.70
)

// ConfidenceBand labels an assignment for row color-coding
func ConfidenceBand(confidence float64) string {
	switch {
	case confidence >= ConfidenceHighMin:
		return "high"
	case confidence >= ConfidenceProbableMin:
		return "probable"
	default:
		return "uncertain"
	}
}

// Conflict severities
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Conflict categories
type ConflictCategory string

const (
	ConflictAspectRatio        ConflictCategory = "aspect_ratio"
	ConflictTextOverflow       ConflictCategory = "text_overflow"
	ConflictResolutionMismatch ConflictCategory = "resolution_mismatch"
)

// Gate states
type GateState string

const (
	GateClear   GateState = "clear"
	GateBlocked GateState = "blocked"
)

// Aspect-ratio categories
type AspectCategory string

const (
	AspectPortrait  AspectCategory = "portrait"
	AspectSquare    AspectCategory = "square"
	AspectLandscape AspectCategory = "landscape"
)

// Transformation types
type TransformationType string

const (
	TransformNone           TransformationType = "none"
	TransformMinorScale     TransformationType = "minor_scale"
	TransformModerateAdjust TransformationType = "moderate_adjust"
	TransformHumanReview    TransformationType = "human_review"
)

// Transform methods
type TransformMethod string

const (
	TransformFit  TransformMethod = "fit"
	TransformFill TransformMethod = "fill"
)

// Bar placement after a fit transform
type BarPlacement string

const (
	BarsNone       BarPlacement = "none"
	BarsHorizontal BarPlacement = "horizontal"
	BarsVertical   BarPlacement = "vertical"
)

// Human choices recorded in the learning ledger
type HumanChoice string

const (
	ChoiceProceed            HumanChoice = "proceed"
	ChoiceSkip               HumanChoice = "skip"
	ChoiceManualFix          HumanChoice = "manual_fix"
	ChoiceDifferentTransform HumanChoice = "different_transform"
)

var ValidHumanChoices = []HumanChoice{
	ChoiceProceed, ChoiceSkip, ChoiceManualFix, ChoiceDifferentTransform,
}

// Job stages, in workflow order
type JobStage int

const (
	StageCreated JobStage = iota
	StageParsed
	StageMatchingReview
	StagePreviewApproval
	StageValidation
	StageScriptGeneration
	StageCompleted
)

var stageNames = map[JobStage]string{
	StageCreated:          "created",
	StageParsed:           "parsed",
	StageMatchingReview:   "matching_review",
	StagePreviewApproval:  "preview_approval",
	StageValidation:       "validation",
	StageScriptGeneration: "script_generation",
	StageCompleted:        "completed",
}

func (s JobStage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON serializes stages by name so stored jobs and API payloads
// stay readable and stable across reordering of the constants
func (s JobStage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *JobStage) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for stage, n := range stageNames {
		if n == name {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown job stage %q", name)
}

// Job status labels derived from stage plus pending-action flags
type JobStatus string

const (
	JobStatusCreated          JobStatus = "created"
	JobStatusParsed           JobStatus = "parsed"
	JobStatusAwaitingReview   JobStatus = "awaiting_review"
	JobStatusAwaitingPreview  JobStatus = "awaiting_preview"
	JobStatusAwaitingApproval JobStatus = "awaiting_approval"
	JobStatusAwaitingDecision JobStatus = "awaiting_decision"
	JobStatusGenerating       JobStatus = "generating_script"
	JobStatusFailed           JobStatus = "failed"
	JobStatusAwaitingDownload JobStatus = "awaiting_download"
	JobStatusCompleted        JobStatus = "completed"
)
