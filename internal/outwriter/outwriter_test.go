package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

func testConfig() *contract.Config {
	return &contract.Config{
		Precision:    1,
		Output:       schema.TextOut,
		Workers:      2,
		Width:        200,
		LookbackDays: 7,
		StoreBackend: schema.SQLiteBackend,
	}
}

func sampleResult(sessionID string, score float64) schema.PipelineResult {
	return schema.PipelineResult{
		SessionID:  sessionID,
		ScoringID:  "score_" + sessionID,
		Source:     schema.ManualSource,
		FinalScore: score,
		Output: &schema.ScoringOutput{
			ScoringID: "score_" + sessionID,
			SessionID: sessionID,
			Metrics: schema.ScoringMetrics{
				FinalScore: score,
				DimensionalScores: schema.DimensionalScores{
					Clarity:               0.9,
					Coverage:              0.8,
					RetryPenalty:          1.0,
					EditPenalty:           1.0,
					ComplexityHandling:    0.5,
					PerformanceImpact:     0.8,
					ReviewQuality:         0.7,
					DeveloperSatisfaction: 0.6,
				},
			},
			TemplateCorrelation: schema.TemplateCorrelation{
				TemplateName:    "feature_default",
				TemplateVersion: "1.2.0",
				VersionHash:     "a1b2c3d4e5f60718",
			},
			ConfidenceScore: 0.95,
			DataQuality:     1.0,
		},
		StagesCompleted: schema.PipelineStages,
	}
}

func TestWriteScoreTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.Detail = true

	results := []schema.PipelineResult{
		sampleResult("sess-1", 82.5),
		{SessionID: "sess-2", Err: assert.AnError},
	}
	fmtFloat, _ := createFormatters(cfg.Precision)

	require.NoError(t, writeScoreTable(results, cfg, fmtFloat, 150*time.Millisecond, &buf))

	out := buf.String()
	assert.Contains(t, out, "sess-1")
	assert.Contains(t, out, "82.5")
	assert.Contains(t, out, "Excellent")
	assert.Contains(t, out, "a1b2c3d4e5f60718")
	assert.Contains(t, out, "Failed")
	assert.Contains(t, out, "Scored 2 sessions (1 failed)")
	assert.Contains(t, out, "Store backend: sqlite")
}

func TestWriteScoreResultsCSVToFile(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "scores.csv")

	results := []schema.PipelineResult{sampleResult("sess-1", 82.5)}
	require.NoError(t, WriteScoreResults(results, cfg, time.Millisecond))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "rank,session_id,scoring_id,score,label")
	assert.Contains(t, out, "1,sess-1,score_sess-1,82.5,Excellent")
}

func TestWriteScoreResultsJSON(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "scores.json")

	results := []schema.PipelineResult{sampleResult("sess-1", 82.5)}
	require.NoError(t, WriteScoreResults(results, cfg, time.Millisecond))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, float64(1), decoded[0]["rank"])
	assert.Equal(t, "Excellent", decoded[0]["label"])
	assert.Equal(t, "sess-1", decoded[0]["session_id"])
}

func TestWriteTemplateTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	fmtFloat, _ := createFormatters(cfg.Precision)

	templates := []schema.TemplateRecord{
		{
			TemplateName:    "bugfix_default",
			TemplateVersion: "2.0.0",
			UsageCount:      4,
			AverageScore:    45.0,
			DimensionalAverages: map[schema.Dimension]float64{
				schema.ClarityDim:      0.8,
				schema.RetryPenaltyDim: 0.3,
			},
			Underperforming: true,
		},
		{
			TemplateName:    "feature_default",
			TemplateVersion: "1.2.0",
			UsageCount:      10,
			AverageScore:    85.0,
		},
	}

	require.NoError(t, writeTemplateTable(templates, cfg, fmtFloat, &buf))

	out := buf.String()
	assert.Contains(t, out, "bugfix_default")
	assert.Contains(t, out, "UNDERPERFORMING")
	assert.Contains(t, out, "retry_penalty")
	assert.Contains(t, out, "Showing 2 templates over the last 7 days (1 underperforming)")
}

func TestWriteRecentTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	fmtFloat, _ := createFormatters(cfg.Precision)

	scores := []schema.ScoreRecord{
		{
			SessionID:    "sess-1",
			ScoringID:    "score-1",
			FinalScore:   72.0,
			TemplateName: "feature_default",
			VersionHash:  "a1b2c3d4e5f60718",
			CreatedAt:    time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC),
		},
	}

	require.NoError(t, writeRecentTable(scores, cfg, fmtFloat, &buf))

	out := buf.String()
	assert.Contains(t, out, "sess-1")
	assert.Contains(t, out, "72.0")
	assert.Contains(t, out, "Good")
	assert.Contains(t, out, "2026-08-15 10:30")
	assert.Contains(t, out, "Showing 1 scores from the last 7 days")
}

func TestWriteHealthTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()

	health := schema.PipelineHealth{
		Status: schema.WarningStatus,
		Stages: []schema.StageMetrics{
			{Stage: schema.IngestStage, Processed: 30, Failed: 2, SuccessRate: 0.9333, AvgLatency: 4 * time.Millisecond},
			{Stage: schema.EmitStage, Processed: 28, Failed: 0, SuccessRate: 1.0, AvgLatency: 12 * time.Millisecond},
		},
	}

	require.NoError(t, writeHealthTable(health, cfg, &buf))

	out := buf.String()
	assert.Contains(t, out, "ingestor")
	assert.Contains(t, out, "93.33%")
	assert.Contains(t, out, "100.00%")
	assert.Contains(t, out, "Pipeline status: warning")
}

func TestWriteSessionSummary(t *testing.T) {
	cfg := testConfig()
	cfg.OutputFile = filepath.Join(t.TempDir(), "session.txt")

	rec := &schema.SessionRecord{
		SessionID:       "sess-20260815-001",
		TicketID:        "CART-123",
		TaskType:        schema.FeatureTask,
		TemplateName:    "feature_default",
		TemplateVersion: "1.2.0",
		TotalScores:     3,
		BestScore:       91,
		WorstScore:      64,
		AverageScore:    80,
		CreatedAt:       time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2026, 8, 15, 11, 0, 0, 0, time.UTC),
	}

	require.NoError(t, WriteSessionSummary(rec, cfg))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "Session: sess-20260815-001")
	assert.Contains(t, out, "Ticket: CART-123")
	assert.Contains(t, out, "Average: 80.0 (Excellent)")
	assert.Contains(t, out, "Total Scores: 3")
}

func TestFormatWeakDimensions(t *testing.T) {
	strong := schema.DimensionalScores{
		Clarity: 1, Coverage: 1, RetryPenalty: 1, EditPenalty: 1,
		ComplexityHandling: 1, PerformanceImpact: 1, ReviewQuality: 1, DeveloperSatisfaction: 1,
	}
	assert.Equal(t, "None", formatWeakDimensions(strong))

	mixed := strong
	mixed.RetryPenalty = 0.1
	mixed.EditPenalty = 0.3
	mixed.Coverage = 0.5
	mixed.ReviewQuality = 0.65
	// Lowest first, capped at three
	assert.Equal(t, "retry_penalty < edit_penalty < coverage", formatWeakDimensions(mixed))
}

func TestWeakestDimension(t *testing.T) {
	assert.Equal(t, "-", weakestDimension(nil))
	assert.Equal(t, "edit_penalty", weakestDimension(map[schema.Dimension]float64{
		schema.ClarityDim:     0.9,
		schema.EditPenaltyDim: 0.2,
		schema.CoverageDim:    0.5,
	}))
}

func TestGetMaxTableSessionWidth(t *testing.T) {
	cfg := testConfig()

	cfg.Width = 70
	assert.Equal(t, 12, getMaxTableSessionWidth(cfg))

	cfg.Width = 500
	assert.Equal(t, 50, getMaxTableSessionWidth(cfg))

	cfg.Width = 100
	got := getMaxTableSessionWidth(cfg)
	assert.GreaterOrEqual(t, got, 12)
	assert.LessOrEqual(t, got, 50)
}
