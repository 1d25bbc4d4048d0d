package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templateflow/api/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		w, h   float64
		expect model.AspectCategory
	}{
		{"full hd landscape", 1920, 1080, model.AspectLandscape},
		{"full hd portrait", 1080, 1920, model.AspectPortrait},
		{"near square", 1000, 1040, model.AspectSquare},
		{"exact square", 1000, 1000, model.AspectSquare},
		{"lower bound is square", 900, 1000, model.AspectSquare},
		{"upper bound is square", 1100, 1000, model.AspectSquare},
		{"just past upper bound", 1101, 1000, model.AspectLandscape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Classify(tt.w, tt.h))
		})
	}
}

func TestRatioDifference_Symmetric(t *testing.T) {
	a := model.Dims{Width: 1920, Height: 1080}
	b := model.Dims{Width: 1920, Height: 1161}
	assert.InDelta(t, RatioDifference(a, b), RatioDifference(b, a), 1e-12)
}

func TestAnalyze_MinorScale(t *testing.T) {
	source := model.Dims{Width: 1920, Height: 1080}
	target := model.Dims{Width: 1920, Height: 1161}

	d := Analyze(source, target)

	assert.InDelta(t, 0.070, d.RatioDifference, 0.001)
	assert.Equal(t, model.TransformMinorScale, d.Transformation)
	assert.Equal(t, 0.85, d.Confidence)
	assert.True(t, d.CanAutoApply)
	assert.Equal(t, model.AspectLandscape, d.SourceCategory)
	assert.Equal(t, model.AspectLandscape, d.TargetCategory)
}

func TestAnalyze_IdenticalRatios(t *testing.T) {
	d := Analyze(model.Dims{Width: 1920, Height: 1080}, model.Dims{Width: 3840, Height: 2160})
	assert.Equal(t, model.TransformNone, d.Transformation)
	assert.Equal(t, 1.0, d.Confidence)
	assert.True(t, d.CanAutoApply)
	assert.Zero(t, d.RatioDifference)
}

func TestAnalyze_ModerateRequiresApproval(t *testing.T) {
	// 16:9 vs 16:11 → diff ≈ 0.18, same landscape category
	source := model.Dims{Width: 1600, Height: 900}
	target := model.Dims{Width: 1600, Height: 1100}

	d := Analyze(source, target)

	assert.Equal(t, model.TransformModerateAdjust, d.Transformation)
	assert.Equal(t, 0.60, d.Confidence)
	assert.False(t, d.CanAutoApply)
	assert.False(t, CanAutoTransform(d))
}

func TestAnalyze_LargeGapNeedsHumanReview(t *testing.T) {
	// 2.35:1 cinemascope vs 4:3, both landscape but far apart
	source := model.Dims{Width: 2350, Height: 1000}
	target := model.Dims{Width: 1200, Height: 900}

	d := Analyze(source, target)

	assert.Equal(t, model.TransformHumanReview, d.Transformation)
	assert.Equal(t, 0.0, d.Confidence)
	assert.False(t, d.CanAutoApply)
}

func TestAnalyze_CrossCategoryAlwaysHumanReview(t *testing.T) {
	source := model.Dims{Width: 1920, Height: 1080}
	target := model.Dims{Width: 1080, Height: 1920}

	d := Analyze(source, target)

	assert.Equal(t, model.TransformHumanReview, d.Transformation)
	assert.Equal(t, 0.0, d.Confidence)
	assert.False(t, d.CanAutoApply)
	assert.Contains(t, d.Reasoning, "cross-category")
}

func TestCanAutoTransform(t *testing.T) {
	assert.True(t, CanAutoTransform(model.AspectRatioDecision{Transformation: model.TransformNone}))
	assert.True(t, CanAutoTransform(model.AspectRatioDecision{Transformation: model.TransformMinorScale}))
	assert.False(t, CanAutoTransform(model.AspectRatioDecision{Transformation: model.TransformModerateAdjust}))
	assert.False(t, CanAutoTransform(model.AspectRatioDecision{Transformation: model.TransformHumanReview}))
}

func TestComputeTransform_FitNeverCrops(t *testing.T) {
	source := model.Dims{Width: 1920, Height: 1080}
	target := model.Dims{Width: 1080, Height: 1920}

	fit := ComputeTransform(source, target, model.TransformFit)

	require.Greater(t, fit.Scale, 0.0)
	assert.LessOrEqual(t, source.Width*fit.Scale, target.Width+1e-9)
	assert.LessOrEqual(t, source.Height*fit.Scale, target.Height+1e-9)
	assert.GreaterOrEqual(t, fit.OffsetX, 0.0)
	assert.GreaterOrEqual(t, fit.OffsetY, 0.0)
	assert.Equal(t, model.BarsHorizontal, fit.Bars)
}

func TestComputeTransform_FillAlwaysCovers(t *testing.T) {
	source := model.Dims{Width: 1920, Height: 1080}
	target := model.Dims{Width: 1080, Height: 1920}

	fill := ComputeTransform(source, target, model.TransformFill)

	assert.GreaterOrEqual(t, source.Width*fill.Scale, target.Width-1e-9)
	assert.GreaterOrEqual(t, source.Height*fill.Scale, target.Height-1e-9)
	assert.Equal(t, model.BarsNone, fill.Bars)
}

func TestComputeTransform_FitScaleNeverExceedsFill(t *testing.T) {
	pairs := []struct{ s, t model.Dims }{
		{model.Dims{Width: 1920, Height: 1080}, model.Dims{Width: 1080, Height: 1920}},
		{model.Dims{Width: 800, Height: 600}, model.Dims{Width: 1600, Height: 900}},
		{model.Dims{Width: 1000, Height: 1000}, model.Dims{Width: 500, Height: 500}},
	}
	for _, p := range pairs {
		fit := ComputeTransform(p.s, p.t, model.TransformFit)
		fill := ComputeTransform(p.s, p.t, model.TransformFill)
		assert.LessOrEqual(t, fit.Scale, fill.Scale)
	}
}

func TestComputeTransform_SameRatioHasNoBars(t *testing.T) {
	fit := ComputeTransform(model.Dims{Width: 1920, Height: 1080}, model.Dims{Width: 960, Height: 540}, model.TransformFit)
	assert.Equal(t, model.BarsNone, fit.Bars)
	assert.InDelta(t, 0.5, fit.Scale, 1e-9)
	assert.InDelta(t, 0.0, fit.OffsetX, 1e-9)
	assert.InDelta(t, 0.0, fit.OffsetY, 1e-9)
}

func TestComputeTransform_WideIntoWiderGetsVerticalBars(t *testing.T) {
	fit := ComputeTransform(model.Dims{Width: 1600, Height: 900}, model.Dims{Width: 2000, Height: 900}, model.TransformFit)
	assert.Equal(t, model.BarsVertical, fit.Bars)
	assert.InDelta(t, 1.0, fit.Scale, 1e-9)
	assert.InDelta(t, 200.0, fit.OffsetX, 1e-9)
}
