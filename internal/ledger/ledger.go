// Package ledger keeps the append-only record of human decisions on
// aspect-ratio recommendations. It is diagnostic only: statistics are a
// pure aggregation and never feed back into the decision thresholds.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/templateflow/api/internal/conflict"
	"github.com/templateflow/api/internal/model"
)

// Store persists learning records. Append must be atomic; List may lag
// concurrent appends (diagnostics tolerate eventual consistency).
type Store interface {
	Append(ctx context.Context, rec model.LearningRecord) error
	List(ctx context.Context) ([]model.LearningRecord, error)
}

// Ledger wraps a Store with the decision-recording logic
type Ledger struct {
	store Store
	now   func() time.Time
}

// New creates a ledger over the given store
func New(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// RecordDecision runs the engine for the dimension pair, captures the
// human's choice against the recommendation and appends the record.
func (l *Ledger) RecordDecision(ctx context.Context, source, target model.Dims, choice model.HumanChoice) (model.LearningRecord, error) {
	decision := conflict.Analyze(source, target)

	rec := model.LearningRecord{
		SourceDims:       source,
		TargetDims:       target,
		SourceCategory:   decision.SourceCategory,
		TargetCategory:   decision.TargetCategory,
		RatioDifference:  decision.RatioDifference,
		AIRecommendation: decision.Transformation,
		HumanChoice:      choice,
		// agreement: the human proceeded exactly when the engine said
		// the transform was safe to auto-apply
		Agreed:    (choice == model.ChoiceProceed) == decision.CanAutoApply,
		Timestamp: l.now().UTC(),
	}

	if err := l.store.Append(ctx, rec); err != nil {
		return model.LearningRecord{}, fmt.Errorf("failed to append learning record: %w", err)
	}
	return rec, nil
}

// Statistics aggregates the full ledger: overall agreement, per
// category-pair breakdown, and disagreement cases grouped for the
// "common overrides" diagnostics view.
func (l *Ledger) Statistics(ctx context.Context) (*model.LedgerStats, error) {
	records, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read learning records: %w", err)
	}

	stats := &model.LedgerStats{TotalRecords: len(records)}
	if len(records) == 0 {
		return stats, nil
	}

	type pairKey struct {
		src, tgt model.AspectCategory
	}
	type overrideKey struct {
		src, tgt model.AspectCategory
		tr       model.TransformationType
	}

	agreed := 0
	byPair := make(map[pairKey]*model.CategoryAgreement)
	byOverride := make(map[overrideKey]*model.OverridePattern)

	for _, r := range records {
		pk := pairKey{r.SourceCategory, r.TargetCategory}
		pa := byPair[pk]
		if pa == nil {
			pa = &model.CategoryAgreement{SourceCategory: pk.src, TargetCategory: pk.tgt}
			byPair[pk] = pa
		}
		pa.Total++

		if r.Agreed {
			agreed++
			pa.Agreed++
			continue
		}

		ok := overrideKey{r.SourceCategory, r.TargetCategory, r.AIRecommendation}
		op := byOverride[ok]
		if op == nil {
			op = &model.OverridePattern{
				SourceCategory: ok.src,
				TargetCategory: ok.tgt,
				Transformation: ok.tr,
				Choices:        make(map[model.HumanChoice]int),
			}
			byOverride[ok] = op
		}
		op.Count++
		op.Choices[r.HumanChoice]++
	}

	stats.AgreementRate = float64(agreed) / float64(len(records))

	for _, pa := range byPair {
		pa.AgreementRate = float64(pa.Agreed) / float64(pa.Total)
		stats.ByCategory = append(stats.ByCategory, *pa)
	}
	sort.Slice(stats.ByCategory, func(i, j int) bool {
		a, b := stats.ByCategory[i], stats.ByCategory[j]
		if a.SourceCategory != b.SourceCategory {
			return a.SourceCategory < b.SourceCategory
		}
		return a.TargetCategory < b.TargetCategory
	})

	for _, op := range byOverride {
		stats.CommonOverrides = append(stats.CommonOverrides, *op)
	}
	sort.Slice(stats.CommonOverrides, func(i, j int) bool {
		a, b := stats.CommonOverrides[i], stats.CommonOverrides[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.SourceCategory != b.SourceCategory {
			return a.SourceCategory < b.SourceCategory
		}
		if a.TargetCategory != b.TargetCategory {
			return a.TargetCategory < b.TargetCategory
		}
		return a.Transformation < b.Transformation
	})

	return stats, nil
}
