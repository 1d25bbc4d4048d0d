// Package matcher computes confidence-scored assignments from source
// design layers to template placeholders. Match is pure and
// deterministic: identical inputs always yield an identical MatchSet.
package matcher

import (
	"errors"
	"fmt"
	"sort"

	"github.com/templateflow/api/internal/model"
)

var (
	// ErrInvalidInput rejects malformed layer lists before matching begins
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflictingAssignment rejects overrides that would claim an
	// already-assigned target
	ErrConflictingAssignment = errors.New("conflicting assignment")
)

const (
	sequentialConfidence = 0.95
	typeCompatBonus      = 0.05
	// below this a name pair carries no usable evidence
	minCandidateScore = 0.2
)

// Match assigns source layers to target placeholders. Every source layer
// receives exactly one MatchAssignment; sources with no viable target get
// a nil-target assignment with confidence 0, which is a result, not an
// error.
func Match(sources []model.SourceLayer, targets []model.TargetPlaceholder) (*model.MatchSet, error) {
	if err := ValidateInputs(sources, targets); err != nil {
		return nil, err
	}

	assigned := make(map[string]model.MatchAssignment) // by source id
	takenTargets := make(map[string]bool)

	textSources, otherSources := partitionSources(sources)
	textTargets, otherTargets := partitionTargets(targets)

	// Equal-count text partitions are matched positionally; name evidence
	// on text layers tends to be weak ("Text Layer 3") while document
	// order tracks template order well.
	remainingText := textSources
	if len(textSources) > 0 && len(textSources) == len(textTargets) {
		srcs := sortedSources(textSources)
		tgts := sortedTargets(textTargets)
		for i := range srcs {
			assigned[srcs[i].ID] = model.MatchAssignment{
				SourceID:   srcs[i].ID,
				TargetID:   strPtr(tgts[i].ID),
				Confidence: sequentialConfidence,
				Method:     model.MatchMethodSequential,
				Reasoning:  fmt.Sprintf("positional match: text layer %d of %d", i+1, len(srcs)),
			}
			takenTargets[tgts[i].ID] = true
		}
		remainingText = nil
	}

	// Name-based scoring for everything else
	scorable := append(append([]model.SourceLayer{}, otherSources...), remainingText...)
	candidateTargets := append(append([]model.TargetPlaceholder{}, otherTargets...), textTargets...)

	candidates := scoreCandidates(scorable, candidateTargets)
	resolveGreedy(candidates, assigned, takenTargets)

	// Leftover sources become explicit no-match assignments
	for _, s := range sources {
		if _, ok := assigned[s.ID]; ok {
			continue
		}
		method := model.MatchMethodFuzzy
		if s.Kind == model.LayerKindText {
			method = model.MatchMethodSequential
		}
		assigned[s.ID] = model.MatchAssignment{
			SourceID:   s.ID,
			TargetID:   nil,
			Confidence: 0,
			Method:     method,
			Reasoning:  "no match found",
		}
	}

	// Emit in input order so repeated runs are byte-identical
	ms := &model.MatchSet{Assignments: make([]model.MatchAssignment, 0, len(sources))}
	for _, s := range sources {
		ms.Assignments = append(ms.Assignments, assigned[s.ID])
	}
	return ms, nil
}

// ApplyOverride replaces one source's assignment. A nil target is an
// explicit skip. The prior MatchSet is left untouched on rejection.
func ApplyOverride(ms *model.MatchSet, sourceID string, targetID *string) error {
	a, ok := ms.BySource(sourceID)
	if !ok {
		return fmt.Errorf("%w: unknown source layer %q", ErrInvalidInput, sourceID)
	}

	if targetID != nil {
		for _, other := range ms.Assignments {
			if other.SourceID == sourceID {
				continue
			}
			if other.TargetID != nil && *other.TargetID == *targetID {
				return fmt.Errorf("%w: target %q already assigned to source %q",
					ErrConflictingAssignment, *targetID, other.SourceID)
			}
		}
		a.TargetID = strPtr(*targetID)
		a.Confidence = 1.0
		a.Reasoning = "manual assignment"
	} else {
		a.TargetID = nil
		a.Confidence = 0.0
		a.Reasoning = "explicitly skipped"
	}
	a.Method = model.MatchMethodManual
	a.ManualOverride = true
	return nil
}

// ValidateInputs rejects malformed layer lists: empty lists, duplicate
// ids, malformed bboxes, negative placeholder dimensions.
func ValidateInputs(sources []model.SourceLayer, targets []model.TargetPlaceholder) error {
	if len(sources) == 0 {
		return fmt.Errorf("%w: empty source layer list", ErrInvalidInput)
	}
	if len(targets) == 0 {
		return fmt.Errorf("%w: empty target placeholder list", ErrInvalidInput)
	}

	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		if s.ID == "" {
			return fmt.Errorf("%w: source layer with empty id", ErrInvalidInput)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate source layer id %q", ErrInvalidInput, s.ID)
		}
		seen[s.ID] = true
		if !s.BBox.Valid() {
			return fmt.Errorf("%w: malformed bbox on source layer %q", ErrInvalidInput, s.ID)
		}
	}

	seen = make(map[string]bool, len(targets))
	for _, t := range targets {
		if t.ID == "" {
			return fmt.Errorf("%w: target placeholder with empty id", ErrInvalidInput)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate target placeholder id %q", ErrInvalidInput, t.ID)
		}
		seen[t.ID] = true
		if t.Width < 0 || t.Height < 0 {
			return fmt.Errorf("%w: negative dimensions on placeholder %q", ErrInvalidInput, t.ID)
		}
	}
	return nil
}

func scoreCandidates(sources []model.SourceLayer, targets []model.TargetPlaceholder) []scoredCandidate {
	var out []scoredCandidate
	for _, s := range sources {
		for _, t := range targets {
			if !kindsCompatible(s.Kind, t.Kind) {
				continue
			}
			score, method, reason := scoreName(s.Name, t.Name)
			if score < minCandidateScore {
				continue
			}
			if score < 1.0 && kindBonusApplies(s.Kind, t.Kind) {
				score += typeCompatBonus
				if score > 1.0 {
					score = 1.0
				}
			}
			out = append(out, scoredCandidate{
				candidate: model.MatchCandidate{
					SourceID:   s.ID,
					TargetID:   t.ID,
					Confidence: score,
					Method:     method,
					Reasoning:  reason,
				},
				sourceOrder: s.OrderIndex,
				targetOrder: t.OrderIndex,
			})
		}
	}
	return out
}

// scoreName returns the best of exact, pattern and fuzzy evidence
func scoreName(a, b string) (float64, model.MatchMethod, string) {
	if normalizeName(a) != "" && normalizeName(a) == normalizeName(b) {
		return 1.0, model.MatchMethodExact, fmt.Sprintf("exact name match %q", a)
	}
	if p := patternScore(a, b); p > 0 {
		return p, model.MatchMethodPattern, fmt.Sprintf("naming convention match %q ~ %q", a, b)
	}
	f := fuzzyScore(a, b)
	return f, model.MatchMethodFuzzy, fmt.Sprintf("name similarity %.2f between %q and %q", f, a, b)
}

type scoredCandidate struct {
	candidate   model.MatchCandidate
	sourceOrder int
	targetOrder int
}

// resolveGreedy performs greedy maximum-weight bipartite assignment:
// highest confidence first, ties broken by lower source then target
// document order, then ids so ordering is total.
func resolveGreedy(candidates []scoredCandidate, assigned map[string]model.MatchAssignment, takenTargets map[string]bool) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.candidate.Confidence != b.candidate.Confidence {
			return a.candidate.Confidence > b.candidate.Confidence
		}
		if a.sourceOrder != b.sourceOrder {
			return a.sourceOrder < b.sourceOrder
		}
		if a.targetOrder != b.targetOrder {
			return a.targetOrder < b.targetOrder
		}
		if a.candidate.SourceID != b.candidate.SourceID {
			return a.candidate.SourceID < b.candidate.SourceID
		}
		return a.candidate.TargetID < b.candidate.TargetID
	})

	for _, sc := range candidates {
		c := sc.candidate
		if _, ok := assigned[c.SourceID]; ok {
			continue
		}
		if takenTargets[c.TargetID] {
			continue
		}
		assigned[c.SourceID] = model.MatchAssignment{
			SourceID:   c.SourceID,
			TargetID:   strPtr(c.TargetID),
			Confidence: c.Confidence,
			Method:     c.Method,
			Reasoning:  c.Reasoning,
		}
		takenTargets[c.TargetID] = true
	}
}

func kindsCompatible(s, t model.LayerKind) bool {
	if s == t {
		return true
	}
	return kindBonusApplies(s, t)
}

// smart objects are image-capable on either side
func kindBonusApplies(s, t model.LayerKind) bool {
	return (s == model.LayerKindSmartObject && t == model.LayerKindImage) ||
		(s == model.LayerKindImage && t == model.LayerKindSmartObject)
}

func partitionSources(layers []model.SourceLayer) (text, other []model.SourceLayer) {
	for _, l := range layers {
		if l.Kind == model.LayerKindText {
			text = append(text, l)
		} else {
			other = append(other, l)
		}
	}
	return text, other
}

func partitionTargets(targets []model.TargetPlaceholder) (text, other []model.TargetPlaceholder) {
	for _, t := range targets {
		if t.Kind == model.LayerKindText {
			text = append(text, t)
		} else {
			other = append(other, t)
		}
	}
	return text, other
}

func sortedSources(layers []model.SourceLayer) []model.SourceLayer {
	out := append([]model.SourceLayer{}, layers...)
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func sortedTargets(targets []model.TargetPlaceholder) []model.TargetPlaceholder {
	out := append([]model.TargetPlaceholder{}, targets...)
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func strPtr(s string) *string { return &s }
