package model

import "time"

// ConflictIssue is one classified problem found between source and target
type ConflictIssue struct {
	Severity   Severity           `json:"severity"`
	Category   ConflictCategory   `json:"category"`
	SubjectID  string             `json:"subjectId"`
	Message    string             `json:"message"`
	Detail     map[string]float64 `json:"detail,omitempty"`
	Suggestion string             `json:"suggestion,omitempty"`
}

// ConflictReport aggregates issues and the resulting gate state
type ConflictReport struct {
	Issues    []ConflictIssue     `json:"issues"`
	GateState GateState           `json:"gateState"`
	Aspect    *AspectRatioDecision `json:"aspect,omitempty"`
}

// Blocked reports whether any critical issue is present
func (r *ConflictReport) Blocked() bool { return r.GateState == GateBlocked }

// AspectRatioDecision is the engine's verdict on a dimension mismatch
type AspectRatioDecision struct {
	SourceCategory  AspectCategory     `json:"sourceCategory"`
	TargetCategory  AspectCategory     `json:"targetCategory"`
	RatioDifference float64            `json:"ratioDifference"`
	Transformation  TransformationType `json:"transformationType"`
	Confidence      float64            `json:"confidence"`
	CanAutoApply    bool               `json:"canAutoApply"`
	Reasoning       string             `json:"reasoning"`
}

// Transform is a concrete scale-and-center placement of source content
// inside the target frame
type Transform struct {
	Method  TransformMethod `json:"method"`
	Scale   float64         `json:"scale"`
	OffsetX float64         `json:"offsetX"`
	OffsetY float64         `json:"offsetY"`
	Bars    BarPlacement    `json:"bars"`
}

// LearningRecord is one human decision captured for diagnostics.
// Records are append-only; nothing ever mutates or deletes them.
type LearningRecord struct {
	SourceDims       Dims               `json:"sourceDims"`
	TargetDims       Dims               `json:"targetDims"`
	SourceCategory   AspectCategory     `json:"sourceCategory"`
	TargetCategory   AspectCategory     `json:"targetCategory"`
	RatioDifference  float64            `json:"ratioDifference"`
	AIRecommendation TransformationType `json:"aiRecommendation"`
	HumanChoice      HumanChoice        `json:"humanChoice"`
	Agreed           bool               `json:"agreed"`
	Timestamp        time.Time          `json:"timestamp"`
}

// CategoryAgreement is the agreement breakdown for one category pair
type CategoryAgreement struct {
	SourceCategory AspectCategory `json:"sourceCategory"`
	TargetCategory AspectCategory `json:"targetCategory"`
	Total          int            `json:"total"`
	Agreed         int            `json:"agreed"`
	AgreementRate  float64        `json:"agreementRate"`
}

// OverridePattern groups disagreement cases for the diagnostics view
type OverridePattern struct {
	SourceCategory AspectCategory     `json:"sourceCategory"`
	TargetCategory AspectCategory     `json:"targetCategory"`
	Transformation TransformationType `json:"transformationType"`
	Count          int                `json:"count"`
	Choices        map[HumanChoice]int `json:"choices"`
}

// LedgerStats is the aggregate view over the learning ledger
type LedgerStats struct {
	TotalRecords    int                 `json:"totalRecords"`
	AgreementRate   float64             `json:"agreementRate"`
	ByCategory      []CategoryAgreement `json:"byCategory"`
	CommonOverrides []OverridePattern   `json:"commonOverrides"`
}
