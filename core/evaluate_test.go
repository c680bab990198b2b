package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArnoldoM23/pess/schema"
)

func evaluateClean(t *testing.T, in *schema.ScoringInput) *schema.ScoringOutput {
	t.Helper()
	n := NewNormalizer()
	normalized, report := n.Normalize(in)
	return NewEvaluator(NewAlgorithm(nil)).Evaluate(normalized, report, nil)
}

func TestEvaluateHealthySession(t *testing.T) {
	out := evaluateClean(t, goodInput())

	assert.True(t, len(out.ScoringID) > len("score_"))
	assert.Equal(t, "sess-20260815-001", out.SessionID)
	assert.Equal(t, schema.EvaluateStage, out.PipelineStage)
	assert.GreaterOrEqual(t, out.Metrics.FinalScore, 85.0)
	assert.Empty(t, out.Alerts)

	assert.Equal(t, "feature_default", out.TemplateCorrelation.TemplateName)
	assert.Equal(t, "1.2.0", out.TemplateCorrelation.TemplateVersion)
	assert.Empty(t, out.TemplateCorrelation.VersionHash) // versioner fills this
}

func TestEvaluateTroubledSessionAlerts(t *testing.T) {
	in := goodInput()
	in.RetryCount = 5
	in.EditSimilarity = 0.2

	out := evaluateClean(t, in)

	assert.Contains(t, out.Alerts, "HIGH: Multiple retries detected - template may need revision")
	assert.Contains(t, out.Alerts, "HIGH: Significant manual edits required")
	assert.Contains(t, out.Recommendations, "Reduce retry attempts by improving initial prompt quality")
	assert.Contains(t, out.Recommendations, "Minimize manual edits by improving code generation accuracy")
}

func TestEvaluateCriticalAlert(t *testing.T) {
	in := goodInput()
	in.RetryCount = 10
	in.EditSimilarity = 0.1
	in.PerfBefore = 100
	in.PerfAfter = 20
	in.TestCoverage = 0

	out := evaluateClean(t, in)

	assert.Less(t, out.Metrics.FinalScore, 40.0)
	assert.Contains(t, out.Alerts, "CRITICAL: Very low final score detected")
	assert.Contains(t, out.Alerts, "MEDIUM: Performance regression detected")
}

func TestEvaluateConfidenceDegrades(t *testing.T) {
	full := evaluateClean(t, goodInput())

	sparse := goodInput()
	sparse.FilesReferenced = nil
	sparse.TestCoverage = 0
	sparse.GenerationTime = 0
	sparse.ExecutionTime = 0
	sparseOut := evaluateClean(t, sparse)

	assert.Less(t, sparseOut.ConfidenceScore, full.ConfidenceScore)
}

func TestConfidenceScoreFactors(t *testing.T) {
	report := schema.NewQualityReport()
	report.Score = 1.0

	in := goodInput()
	assert.InDelta(t, 1.0, confidenceScore(in, report), 0.001)

	in.FilesReferenced = nil
	assert.InDelta(t, 0.9, confidenceScore(in, report), 0.001)

	in.RetryCount = 6
	assert.InDelta(t, 0.9*0.8, confidenceScore(in, report), 0.001)

	report.AddWarning("one")
	report.AddWarning("two")
	assert.InDelta(t, 0.9*0.8*0.8, confidenceScore(in, report), 0.001)
}

func TestEvaluateNilInputYieldsZeroScore(t *testing.T) {
	e := NewEvaluator(NewAlgorithm(nil))
	report := schema.NewQualityReport()

	out := e.Evaluate(nil, report, nil)

	require.NotNil(t, out)
	assert.Equal(t, 0.0, out.Metrics.FinalScore)
	assert.Equal(t, schema.LowQuality, out.QualityTier)
	require.Len(t, out.Alerts, 1)
	assert.Contains(t, out.Alerts[0], "Evaluation failed")
}

func TestEvaluateBatchUsesPerSessionFeedback(t *testing.T) {
	n := NewNormalizer()
	e := NewEvaluator(NewAlgorithm(nil))

	a := goodInput()
	b := goodInput()
	b.SessionID = "sess-20260815-002"

	inputs := []*schema.ScoringInput{a, b}
	reports := make([]*schema.QualityReport, len(inputs))
	for i, in := range inputs {
		inputs[i], reports[i] = n.Normalize(in)
	}

	boolPtr := func(v bool) *bool { return &v }
	intPtr := func(v int) *int { return &v }
	feedback := map[string][]schema.FeedbackData{
		b.SessionID: {{
			Type:             schema.PRReviewFeedback,
			PRApproved:       boolPtr(true),
			ReviewComments:   intPtr(0),
			ChangesRequested: boolPtr(false),
		}},
	}

	outs := e.EvaluateBatch(inputs, reports, feedback)
	require.Len(t, outs, 2)

	// Only the session with the clean review gets the boost.
	assert.Equal(t, 0.7, outs[0].Metrics.DimensionalScores.ReviewQuality)
	assert.Equal(t, 1.0, outs[1].Metrics.DimensionalScores.ReviewQuality)
}
