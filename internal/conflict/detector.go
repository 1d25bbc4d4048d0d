package conflict

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/templateflow/api/internal/model"
)

// Thresholds configures the detector. Values come from the service
// config; zero-value fields fall back to the defaults below.
type Thresholds struct {
	ResolutionPx     float64
	OverflowWarning  float64
	OverflowCritical float64
	CharWidthRatio   float64
}

// DefaultThresholds mirror the config defaults
func DefaultThresholds() Thresholds {
	return Thresholds{
		ResolutionPx:     200,
		OverflowWarning:  0.15,
		OverflowCritical: 0.40,
		CharWidthRatio:   0.55,
	}
}

func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.ResolutionPx <= 0 {
		t.ResolutionPx = d.ResolutionPx
	}
	if t.OverflowWarning <= 0 {
		t.OverflowWarning = d.OverflowWarning
	}
	if t.OverflowCritical <= 0 {
		t.OverflowCritical = d.OverflowCritical
	}
	if t.CharWidthRatio <= 0 {
		t.CharWidthRatio = d.CharWidthRatio
	}
	return t
}

// Detect classifies resolution, text-overflow and aspect-ratio conflicts
// for a matched job. Warnings inform; only critical issues block the
// validation gate.
func Detect(sourceDims, targetDims model.Dims, ms *model.MatchSet,
	sources []model.SourceLayer, targets []model.TargetPlaceholder, th Thresholds) *model.ConflictReport {

	th = th.withDefaults()
	report := &model.ConflictReport{GateState: model.GateClear}

	if issue := resolutionIssue(sourceDims, targetDims, th); issue != nil {
		report.Issues = append(report.Issues, *issue)
	}

	report.Issues = append(report.Issues, overflowIssues(ms, sources, targets, targetDims, th)...)

	decision := Analyze(sourceDims, targetDims)
	report.Aspect = &decision
	if issue := aspectIssue(decision, sourceDims, targetDims); issue != nil {
		report.Issues = append(report.Issues, *issue)
	}

	for _, issue := range report.Issues {
		if issue.Severity == model.SeverityCritical {
			report.GateState = model.GateBlocked
			break
		}
	}
	return report
}

func resolutionIssue(source, target model.Dims, th Thresholds) *model.ConflictIssue {
	gap := math.Abs(source.Width - target.Width)
	if gap <= th.ResolutionPx {
		return nil
	}
	return &model.ConflictIssue{
		Severity:  model.SeverityWarning,
		Category:  model.ConflictResolutionMismatch,
		SubjectID: "document",
		Message:   fmt.Sprintf("source is %.0fpx wide, target %.0fpx; scaling may soften detail", source.Width, target.Width),
		Detail: map[string]float64{
			"sourceWidth": source.Width,
			"targetWidth": target.Width,
			"gapPx":       gap,
		},
	}
}

// overflowIssues estimates rendered text width per matched text layer
// against the placeholder's available width. Glyph width is approximated
// as a fixed fraction of placeholder height; real font metrics belong to
// the rendering collaborator.
func overflowIssues(ms *model.MatchSet, sources []model.SourceLayer,
	targets []model.TargetPlaceholder, targetDims model.Dims, th Thresholds) []model.ConflictIssue {

	if ms == nil {
		return nil
	}
	srcByID := make(map[string]model.SourceLayer, len(sources))
	for _, s := range sources {
		srcByID[s.ID] = s
	}
	tgtByID := make(map[string]model.TargetPlaceholder, len(targets))
	for _, t := range targets {
		tgtByID[t.ID] = t
	}

	var issues []model.ConflictIssue
	for _, a := range ms.Assignments {
		if a.TargetID == nil {
			continue
		}
		src, ok := srcByID[a.SourceID]
		if !ok || src.Kind != model.LayerKindText || src.TextContent == "" {
			continue
		}
		tgt, ok := tgtByID[*a.TargetID]
		if !ok {
			continue
		}

		available := tgt.Width
		if available <= 0 {
			available = targetDims.Width
		}
		lineHeight := tgt.Height
		if lineHeight <= 0 {
			lineHeight = src.BBox.Height()
		}
		if available <= 0 || lineHeight <= 0 {
			continue
		}

		estimated := float64(utf8.RuneCountInString(src.TextContent)) * th.CharWidthRatio * lineHeight
		overflow := (estimated - available) / available
		if overflow <= th.OverflowWarning {
			continue
		}

		severity := model.SeverityWarning
		if overflow > th.OverflowCritical {
			severity = model.SeverityCritical
		}
		issues = append(issues, model.ConflictIssue{
			Severity:  severity,
			Category:  model.ConflictTextOverflow,
			SubjectID: src.ID,
			Message:   fmt.Sprintf("text %q overflows placeholder %q by %.0f%%", truncate(src.TextContent, 30), tgt.Name, overflow*100),
			Detail: map[string]float64{
				"estimatedWidth": estimated,
				"availableWidth": available,
				"overflowPct":    overflow,
			},
			Suggestion: "shorten the text or assign a wider placeholder",
		})
	}
	return issues
}

func aspectIssue(d model.AspectRatioDecision, source, target model.Dims) *model.ConflictIssue {
	switch d.Transformation {
	case model.TransformNone:
		return nil
	case model.TransformMinorScale:
		fit := ComputeTransform(source, target, model.TransformFit)
		return &model.ConflictIssue{
			Severity:   model.SeverityInfo,
			Category:   model.ConflictAspectRatio,
			SubjectID:  "document",
			Message:    d.Reasoning,
			Detail:     map[string]float64{"ratioDifference": d.RatioDifference},
			Suggestion: fmt.Sprintf("auto-apply fit transform at %.3fx", fit.Scale),
		}
	default:
		// moderate_adjust and human_review both demand an explicit,
		// reasoned approval; surfacing them as critical routes them
		// through the validation override.
		fit := ComputeTransform(source, target, model.TransformFit)
		return &model.ConflictIssue{
			Severity:   model.SeverityCritical,
			Category:   model.ConflictAspectRatio,
			SubjectID:  "document",
			Message:    d.Reasoning,
			Detail:     map[string]float64{"ratioDifference": d.RatioDifference},
			Suggestion: fmt.Sprintf("review a fit transform at %.3fx, or return to matching review", fit.Scale),
		}
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
