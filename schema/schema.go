// Package schema has the data model, enums and shared helpers for all parts of the
// PESS scoring pipeline.
package schema

import (
	"maps"
	"slices"
	"time"
)

// ScoringInput is the canonical input for one scoring request after source-specific
// field mapping. The pipeline treats a ScoringInput as immutable once built; the
// normalizer returns a fresh copy rather than editing the ingested value so the raw
// input survives for auditing.
type ScoringInput struct {
	SessionID       string   `json:"session_id"`
	TicketID        string   `json:"ticket_id"`
	TaskType        TaskType `json:"task_type"`
	TemplateName    string   `json:"template_name"`
	TemplateVersion string   `json:"template_version"`
	PromptHash      string   `json:"prompt_hash"`

	// Metrics collected over the session lifetime.
	RetryCount      int     `json:"retry_count"`
	EditSimilarity  float64 `json:"edit_similarity"`
	ComplexityScore float64 `json:"complexity_score"`
	PerfBefore      float64 `json:"perf_before"`
	PerfAfter       float64 `json:"perf_after"`
	TestCoverage    float64 `json:"test_coverage"`

	// Context referenced while generating the prompt.
	FilesReferenced []string `json:"files_referenced"`

	// Timing in seconds.
	GenerationTime float64 `json:"generation_time"`
	ExecutionTime  float64 `json:"execution_time"`

	// Metadata is an open side-channel for caller-specific context. It is never
	// spread into named fields.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the input.
func (in *ScoringInput) Clone() *ScoringInput {
	out := *in
	out.FilesReferenced = slices.Clone(in.FilesReferenced)
	if in.Metadata != nil {
		out.Metadata = make(map[string]any, len(in.Metadata))
		maps.Copy(out.Metadata, in.Metadata)
	}
	return &out
}

// MetaString returns the string value stored under key in the metadata
// side-channel, or "" when absent or not a string.
func (in *ScoringInput) MetaString(key string) string {
	if in.Metadata == nil {
		return ""
	}
	s, _ := in.Metadata[key].(string)
	return s
}

// DimensionalScores holds the eight independent quality signals, each in [0,1].
type DimensionalScores struct {
	Clarity               float64 `json:"clarity"`
	Coverage              float64 `json:"coverage"`
	RetryPenalty          float64 `json:"retry_penalty"`
	EditPenalty           float64 `json:"edit_penalty"`
	ComplexityHandling    float64 `json:"complexity_handling"`
	PerformanceImpact     float64 `json:"performance_impact"`
	ReviewQuality         float64 `json:"review_quality"`
	DeveloperSatisfaction float64 `json:"developer_satisfaction"`
}

// Get returns the value of the named dimension.
func (d DimensionalScores) Get(dim Dimension) float64 {
	switch dim {
	case ClarityDim:
		return d.Clarity
	case CoverageDim:
		return d.Coverage
	case RetryPenaltyDim:
		return d.RetryPenalty
	case EditPenaltyDim:
		return d.EditPenalty
	case ComplexityHandlingDim:
		return d.ComplexityHandling
	case PerformanceImpactDim:
		return d.PerformanceImpact
	case ReviewQualityDim:
		return d.ReviewQuality
	case DeveloperSatisfactionDim:
		return d.DeveloperSatisfaction
	default:
		return 0
	}
}

// AsMap returns the dimensions keyed by their canonical names.
func (d DimensionalScores) AsMap() map[Dimension]float64 {
	m := make(map[Dimension]float64, len(AllDimensions))
	for _, dim := range AllDimensions {
		m[dim] = d.Get(dim)
	}
	return m
}

// ScoringMetrics is the full output of the scoring algorithm: the final 0-100 score
// plus the per-dimension values and the named adjustments that explain how the final
// number was reached.
type ScoringMetrics struct {
	BaseScore         float64            `json:"base_score"`
	FinalScore        float64            `json:"final_score"`
	DimensionalScores DimensionalScores  `json:"dimensional_scores"`
	Adjustments       map[string]float64 `json:"adjustments,omitempty"`
	Penalties         map[string]float64 `json:"penalties,omitempty"`
	Bonuses           map[string]float64 `json:"bonuses,omitempty"`
}

// TemplateCorrelation binds a scored output to the exact template, version and
// prompt that produced it. VersionHash is filled in by the versioner.
type TemplateCorrelation struct {
	TemplateName    string   `json:"template_name"`
	TemplateVersion string   `json:"template_version"`
	PromptHash      string   `json:"prompt_hash"`
	TaskType        TaskType `json:"task_type"`
	VersionHash     string   `json:"version_hash,omitempty"`
}

// ScoringOutput is the result of scoring one session. It is created by the evaluator
// and enriched as it moves through the versioner and emitter; after emission the
// record is append-only.
type ScoringOutput struct {
	ScoringID string    `json:"scoring_id"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`

	Metrics ScoringMetrics `json:"metrics"`

	PipelineStage  Stage         `json:"pipeline_stage"`
	ProcessingTime time.Duration `json:"processing_time"`

	TemplateCorrelation TemplateCorrelation `json:"template_correlation"`
	ScoreVersion        string              `json:"score_version"`

	ConfidenceScore float64     `json:"confidence_score"`
	DataQuality     float64     `json:"data_quality"`
	QualityTier     QualityTier `json:"quality_tier"`

	Recommendations []string `json:"recommendations"`
	Alerts          []string `json:"alerts"`
}

// Clone returns a deep copy of the output.
func (o *ScoringOutput) Clone() *ScoringOutput {
	out := *o
	out.Recommendations = slices.Clone(o.Recommendations)
	out.Alerts = slices.Clone(o.Alerts)
	out.Metrics.Adjustments = maps.Clone(o.Metrics.Adjustments)
	out.Metrics.Penalties = maps.Clone(o.Metrics.Penalties)
	out.Metrics.Bonuses = maps.Clone(o.Metrics.Bonuses)
	return &out
}

// FeedbackData is feedback submitted any time after a session was scored. It lives
// on an independent lifecycle from ScoringOutput and is linked by ScoringID.
// Optional fields use pointers so "not provided" is distinguishable from zero.
type FeedbackData struct {
	FeedbackID string       `json:"feedback_id"`
	ScoringID  string       `json:"scoring_id"`
	SessionID  string       `json:"session_id"`
	Type       FeedbackType `json:"feedback_type"`
	Timestamp  time.Time    `json:"timestamp"`

	Rating  *float64 `json:"rating,omitempty"`
	Comment string   `json:"comment,omitempty"`

	// PR review signals.
	PRApproved       *bool `json:"pr_approved,omitempty"`
	ReviewComments   *int  `json:"review_comments,omitempty"`
	ChangesRequested *bool `json:"changes_requested,omitempty"`

	// Developer satisfaction signals.
	SatisfactionScore *float64 `json:"satisfaction_score,omitempty"`
	WouldRecommend    *bool    `json:"would_recommend,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// VersionEntry is one row of the versioner's in-memory history indices.
type VersionEntry struct {
	SessionID    string    `json:"session_id"`
	TemplateName string    `json:"template_name"`
	Version      string    `json:"version"`
	Hash         string    `json:"hash"`
	Score        float64   `json:"score"`
	Timestamp    time.Time `json:"timestamp"`
}

// Notification is the payload posted to each enabled downstream sink after a score
// has been emitted.
type Notification struct {
	SessionID         string              `json:"session_id"`
	ScoringID         string              `json:"scoring_id"`
	FinalScore        float64             `json:"final_score"`
	DimensionalScores DimensionalScores   `json:"dimensional_scores"`
	TemplateInfo      TemplateCorrelation `json:"template_info"`
	Alerts            []string            `json:"alerts"`
	Recommendations   []string            `json:"recommendations"`
	Timestamp         time.Time           `json:"timestamp"`
}
