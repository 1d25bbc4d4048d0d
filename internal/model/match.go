package model

// MatchCandidate is a scored (source, target) pair considered during
// matching. Candidates are transient; only winning assignments persist.
type MatchCandidate struct {
	SourceID   string      `json:"sourceId"`
	TargetID   string      `json:"targetId"`
	Confidence float64     `json:"confidence"`
	Method     MatchMethod `json:"method"`
	Reasoning  string      `json:"reasoning"`
}

// MatchAssignment is the final disposition of one source layer. A nil
// TargetID means the layer was explicitly left unfilled.
type MatchAssignment struct {
	SourceID       string      `json:"sourceId"`
	TargetID       *string     `json:"targetId"`
	Confidence     float64     `json:"confidence"`
	Method         MatchMethod `json:"method"`
	Reasoning      string      `json:"reasoning,omitempty"`
	ManualOverride bool        `json:"manualOverride"`
}

// Assigned reports whether the assignment fills a placeholder
func (a MatchAssignment) Assigned() bool { return a.TargetID != nil }

// Resolved reports whether the assignment needs no further review action:
// either it fills a placeholder or a human explicitly skipped it.
func (a MatchAssignment) Resolved() bool {
	return a.TargetID != nil || a.ManualOverride
}

// MatchSet is the complete assignment for one job. Within a set, non-nil
// target ids are unique and each source appears exactly once.
type MatchSet struct {
	Assignments []MatchAssignment `json:"assignments"`
}

// BySource returns the assignment for a source id, if present
func (ms *MatchSet) BySource(sourceID string) (*MatchAssignment, bool) {
	for i := range ms.Assignments {
		if ms.Assignments[i].SourceID == sourceID {
			return &ms.Assignments[i], true
		}
	}
	return nil, false
}

// AssignedTargets returns the set of target ids currently claimed
func (ms *MatchSet) AssignedTargets() map[string]string {
	out := make(map[string]string)
	for _, a := range ms.Assignments {
		if a.TargetID != nil {
			out[*a.TargetID] = a.SourceID
		}
	}
	return out
}

// Unresolved returns source ids with neither a target nor an explicit skip
func (ms *MatchSet) Unresolved() []string {
	var ids []string
	for _, a := range ms.Assignments {
		if !a.Resolved() {
			ids = append(ids, a.SourceID)
		}
	}
	return ids
}
