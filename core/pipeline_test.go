package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

func testConfig() *contract.Config {
	return &contract.Config{
		ScoreVersion:  contract.DefaultScoreVersion,
		Workers:       2,
		NotifyTimeout: contract.DefaultNotifyTimeout,
	}
}

func newTestPipeline(t *testing.T, store contract.RecordStore, sinks []contract.NotifySink) *Pipeline {
	t.Helper()
	p, err := NewPipeline(testConfig(), store, newMemHistory(), sinks)
	require.NoError(t, err)
	return p
}

func TestPipelineProcess(t *testing.T) {
	store := newMockStore()
	sink := &mockSink{name: "log", enabled: true}
	p := newTestPipeline(t, store, []contract.NotifySink{sink})

	result := p.Process(context.Background(), schema.ManualSource, manualPayload(), nil)

	require.True(t, result.Succeeded(), "unexpected error: %v", result.Err)
	assert.Equal(t, "sess-20260815-001", result.SessionID)
	assert.NotEmpty(t, result.ScoringID)
	assert.Equal(t, schema.PipelineStages, result.StagesCompleted)
	assert.Greater(t, result.FinalScore, 0.0)

	require.NotNil(t, result.Output)
	assert.Equal(t, contract.DefaultScoreVersion, result.Output.ScoreVersion)
	assert.Len(t, result.Output.TemplateCorrelation.VersionHash, 16)

	require.NotNil(t, result.Emission)
	assert.True(t, result.Emission.Persisted)
	require.Len(t, store.saved, 1)
	require.Len(t, sink.received, 1)
}

func TestPipelineProcessIngestFailure(t *testing.T) {
	p := newTestPipeline(t, nil, nil)
	payload := manualPayload()
	delete(payload, "ticket_id")

	result := p.Process(context.Background(), schema.ManualSource, payload, nil)

	assert.False(t, result.Succeeded())
	var missingErr *MissingFieldError
	require.ErrorAs(t, result.Err, &missingErr)
	assert.Contains(t, missingErr.Fields, "ticket_id")
	assert.Empty(t, result.StagesCompleted)
	assert.Nil(t, result.Output)
}

func TestPipelineProcessWithoutStore(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	result := p.Process(context.Background(), schema.ManualSource, manualPayload(), nil)

	require.True(t, result.Succeeded())
	assert.False(t, result.Emission.Persisted)
}

func TestPipelineProcessBatch(t *testing.T) {
	store := newMockStore()
	p := newTestPipeline(t, store, nil)

	good1 := manualPayload()
	bad := manualPayload()
	bad["session_id"] = "sess-20260815-002"
	delete(bad, "ticket_id")
	good2 := manualPayload()
	good2["session_id"] = "sess-20260815-003"

	results := p.ProcessBatch(context.Background(), schema.ManualSource,
		[]map[string]any{good1, bad, good2}, nil)
	require.Len(t, results, 3)

	assert.True(t, results[0].Succeeded())
	assert.Equal(t, "sess-20260815-001", results[0].SessionID)

	assert.False(t, results[1].Succeeded())
	var missingErr *MissingFieldError
	require.ErrorAs(t, results[1].Err, &missingErr)
	assert.Equal(t, []string{"ticket_id"}, missingErr.Fields)
	// Identity survives even though ingestion failed.
	assert.Equal(t, "sess-20260815-002", results[1].SessionID)

	assert.True(t, results[2].Succeeded())
	assert.Equal(t, "sess-20260815-003", results[2].SessionID)

	assert.Len(t, store.saved, 2)
}

func TestPipelineProcessBatchEmpty(t *testing.T) {
	p := newTestPipeline(t, nil, nil)
	results := p.ProcessBatch(context.Background(), schema.ManualSource, nil, nil)
	assert.Empty(t, results)
}

func TestPipelineProcessBatchCancelled(t *testing.T) {
	p := newTestPipeline(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := p.ProcessBatch(ctx, schema.ManualSource,
		[]map[string]any{manualPayload(), manualPayload()}, nil)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestPipelineBatchFeedbackBySession(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	boolPtr := func(v bool) *bool { return &v }
	intPtr := func(v int) *int { return &v }

	a := manualPayload()
	b := manualPayload()
	b["session_id"] = "sess-20260815-002"

	feedback := map[string][]schema.FeedbackData{
		"sess-20260815-002": {{
			Type:             schema.PRReviewFeedback,
			PRApproved:       boolPtr(true),
			ReviewComments:   intPtr(0),
			ChangesRequested: boolPtr(false),
		}},
	}

	results := p.ProcessBatch(context.Background(), schema.ManualSource,
		[]map[string]any{a, b}, feedback)
	require.Len(t, results, 2)
	require.True(t, results[0].Succeeded())
	require.True(t, results[1].Succeeded())

	assert.Equal(t, 0.7, results[0].Output.Metrics.DimensionalScores.ReviewQuality)
	assert.Equal(t, 1.0, results[1].Output.Metrics.DimensionalScores.ReviewQuality)
}

func TestPipelineProcessUsesStoredFeedback(t *testing.T) {
	rating := 5.0
	store := newMockStore()
	store.feedbackFor["sess-20260815-001"] = []schema.FeedbackData{{
		Type:   schema.DeveloperSatisfactionFeedback,
		Rating: &rating,
	}}
	p := newTestPipeline(t, store, nil)

	// No caller feedback: the session's stored feedback drives the dimension.
	result := p.Process(context.Background(), schema.ManualSource, manualPayload(), nil)
	require.True(t, result.Succeeded(), "unexpected error: %v", result.Err)
	assert.Equal(t, 1.0, result.Output.Metrics.DimensionalScores.DeveloperSatisfaction)

	// Caller-supplied feedback wins over the stored feedback.
	low := 2.5
	result = p.Process(context.Background(), schema.ManualSource, manualPayload(),
		[]schema.FeedbackData{{Type: schema.DeveloperSatisfactionFeedback, Rating: &low}})
	require.True(t, result.Succeeded())
	assert.Equal(t, 0.5, result.Output.Metrics.DimensionalScores.DeveloperSatisfaction)
}

func TestPipelineBatchUsesStoredFeedback(t *testing.T) {
	rating := 5.0
	store := newMockStore()
	store.feedbackFor["sess-20260815-003"] = []schema.FeedbackData{{
		Type:   schema.DeveloperSatisfactionFeedback,
		Rating: &rating,
	}}
	p := newTestPipeline(t, store, nil)

	a := manualPayload()
	b := manualPayload()
	b["session_id"] = "sess-20260815-003"

	results := p.ProcessBatch(context.Background(), schema.ManualSource,
		[]map[string]any{a, b}, nil)
	require.Len(t, results, 2)
	require.True(t, results[0].Succeeded())
	require.True(t, results[1].Succeeded())

	// No stored feedback for the first session: neutral satisfaction.
	assert.Equal(t, 0.6, results[0].Output.Metrics.DimensionalScores.DeveloperSatisfaction)
	assert.Equal(t, 1.0, results[1].Output.Metrics.DimensionalScores.DeveloperSatisfaction)
}

func TestPipelineHealthTracking(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	// Fresh pipeline with no traffic reports healthy.
	health := p.Health()
	assert.Equal(t, schema.HealthyStatus, health.Status)
	require.Len(t, health.Stages, len(schema.PipelineStages))

	for range 20 {
		p.Process(context.Background(), schema.ManualSource, manualPayload(), nil)
	}
	health = p.Health()
	assert.Equal(t, schema.HealthyStatus, health.Status)
	for _, stage := range health.Stages {
		assert.Equal(t, int64(20), stage.Processed, string(stage.Stage))
		assert.Equal(t, 1.0, stage.SuccessRate)
	}
}

func TestPipelineHealthDegrades(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	bad := manualPayload()
	delete(bad, "ticket_id")

	// 1 failure in 20 requests: ingest success rate 0.95 exactly, healthy.
	for range 19 {
		p.Process(context.Background(), schema.ManualSource, manualPayload(), nil)
	}
	p.Process(context.Background(), schema.ManualSource, bad, nil)

	health := p.Health()
	assert.Equal(t, schema.HealthyStatus, health.Status)

	// 3 failures in 22: 0.8636, unhealthy.
	p.Process(context.Background(), schema.ManualSource, bad, nil)
	p.Process(context.Background(), schema.ManualSource, bad, nil)
	health = p.Health()
	assert.Equal(t, schema.UnhealthyStatus, health.Status)

	p.ResetMetrics()
	health = p.Health()
	assert.Equal(t, schema.HealthyStatus, health.Status)
	for _, stage := range health.Stages {
		assert.Zero(t, stage.Processed)
	}
}

func TestPipelineHealthWarningBand(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	bad := manualPayload()
	delete(bad, "ticket_id")

	// 2 failures in 30: rate 0.9333, inside the warning band.
	for range 28 {
		p.Process(context.Background(), schema.ManualSource, manualPayload(), nil)
	}
	p.Process(context.Background(), schema.ManualSource, bad, nil)
	p.Process(context.Background(), schema.ManualSource, bad, nil)

	health := p.Health()
	assert.Equal(t, schema.WarningStatus, health.Status)
}
