// Package conflict detects and classifies dimensional and content
// conflicts between a source design and a target template, including the
// aspect-ratio decision engine that proposes or blocks geometric
// transforms.
package conflict

import (
	"fmt"
	"math"

	"github.com/templateflow/api/internal/model"
)

// Category boundaries and ratio-difference bands are fixed constants. The
// learning ledger observes human agreement with them but never adjusts
// them; a conservative system must not drift.
const (
	portraitMax  = 0.9
	landscapeMin = 1.1

	diffNoneMax     = 0.05
	diffMinorMax    = 0.10
	diffModerateMax = 0.20
)

// Classify buckets a rectangle by its width:height ratio
func Classify(width, height float64) model.AspectCategory {
	ratio := width / height
	switch {
	case ratio < portraitMax:
		return model.AspectPortrait
	case ratio <= landscapeMin:
		return model.AspectSquare
	default:
		return model.AspectLandscape
	}
}

// RatioDifference is the relative gap between two aspect ratios,
// normalized by the larger of the two so the measure is symmetric.
func RatioDifference(source, target model.Dims) float64 {
	sr, tr := source.Ratio(), target.Ratio()
	larger := math.Max(sr, tr)
	if larger == 0 {
		return 0
	}
	return math.Abs(sr-tr) / larger
}

// Analyze classifies a source/target dimension pair and decides what
// transform, if any, may be applied. Cross-category pairs always require
// human review: squeezing a landscape frame into a portrait slot loses
// content in ways no automatic transform can recover.
func Analyze(source, target model.Dims) model.AspectRatioDecision {
	sc := Classify(source.Width, source.Height)
	tc := Classify(target.Width, target.Height)
	diff := RatioDifference(source, target)

	d := model.AspectRatioDecision{
		SourceCategory:  sc,
		TargetCategory:  tc,
		RatioDifference: diff,
	}

	if sc != tc {
		d.Transformation = model.TransformHumanReview
		d.Confidence = 0.0
		d.CanAutoApply = false
		d.Reasoning = fmt.Sprintf("cross-category transform (%s source into %s target) risks unrecoverable content loss", sc, tc)
		return d
	}

	switch {
	case diff < diffNoneMax:
		d.Transformation = model.TransformNone
		d.Confidence = 1.0
		d.CanAutoApply = true
		d.Reasoning = fmt.Sprintf("ratios within %.0f%%, no adjustment needed", diffNoneMax*100)
	case diff < diffMinorMax:
		d.Transformation = model.TransformMinorScale
		d.Confidence = 0.85
		d.CanAutoApply = true
		d.Reasoning = fmt.Sprintf("%.1f%% ratio difference, minor scale is safe", diff*100)
	case diff < diffModerateMax:
		// same category, but large enough that a human must sign off
		d.Transformation = model.TransformModerateAdjust
		d.Confidence = 0.60
		d.CanAutoApply = false
		d.Reasoning = fmt.Sprintf("%.1f%% ratio difference needs explicit approval", diff*100)
	default:
		d.Transformation = model.TransformHumanReview
		d.Confidence = 0.0
		d.CanAutoApply = false
		d.Reasoning = fmt.Sprintf("%.1f%% ratio difference is beyond automatic adjustment", diff*100)
	}
	return d
}

// CanAutoTransform reports whether a decision may be applied without
// human approval
func CanAutoTransform(d model.AspectRatioDecision) bool {
	return d.Transformation == model.TransformNone || d.Transformation == model.TransformMinorScale
}

// ComputeTransform produces the concrete scale-and-center placement for a
// source frame inside a target frame. Fit guarantees no source content is
// cropped; fill guarantees the target is fully covered and may crop.
func ComputeTransform(source, target model.Dims, method model.TransformMethod) model.Transform {
	sx := target.Width / source.Width
	sy := target.Height / source.Height

	var scale float64
	if method == model.TransformFill {
		scale = math.Max(sx, sy)
	} else {
		scale = math.Min(sx, sy)
	}

	scaledW := source.Width * scale
	scaledH := source.Height * scale

	t := model.Transform{
		Method:  method,
		Scale:   scale,
		OffsetX: (target.Width - scaledW) / 2,
		OffsetY: (target.Height - scaledH) / 2,
		Bars:    model.BarsNone,
	}

	if method == model.TransformFit {
		const eps = 1e-9
		switch {
		case target.Height-scaledH > eps:
			t.Bars = model.BarsHorizontal
		case target.Width-scaledW > eps:
			t.Bars = model.BarsVertical
		}
	}
	return t
}
