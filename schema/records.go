package schema

import "time"

// ScoreRecord is the persisted, flattened form of one ScoringOutput. Structured
// sub-objects (dimensional scores, adjustment maps, correlation, lists) are stored
// as JSON columns so the analytics queries can keep evolving without migrations.
type ScoreRecord struct {
	ScoringID string   `json:"scoring_id"`
	SessionID string   `json:"session_id"`
	TicketID  string   `json:"ticket_id"`
	TaskType  TaskType `json:"task_type"`

	TemplateName    string `json:"template_name"`
	TemplateVersion string `json:"template_version"`
	PromptHash      string `json:"prompt_hash"`

	BaseScore         float64            `json:"base_score"`
	FinalScore        float64            `json:"final_score"`
	DimensionalScores DimensionalScores  `json:"dimensional_scores"`
	Adjustments       map[string]float64 `json:"adjustments"`
	Penalties         map[string]float64 `json:"penalties"`
	Bonuses           map[string]float64 `json:"bonuses"`

	PipelineStage  Stage         `json:"pipeline_stage"`
	ProcessingTime time.Duration `json:"processing_time"`
	ScoreVersion   string        `json:"score_version"`
	VersionHash    string        `json:"version_hash"`

	ConfidenceScore float64 `json:"confidence_score"`
	DataQuality     float64 `json:"data_quality"`

	RetryCount      int     `json:"retry_count"`
	EditSimilarity  float64 `json:"edit_similarity"`
	ComplexityScore float64 `json:"complexity_score"`
	TestCoverage    float64 `json:"test_coverage"`
	PerfBefore      float64 `json:"perf_before"`
	PerfAfter       float64 `json:"perf_after"`
	GenerationTime  float64 `json:"generation_time"`
	ExecutionTime   float64 `json:"execution_time"`

	FilesReferenced []string `json:"files_referenced"`
	Recommendations []string `json:"recommendations"`
	Alerts          []string `json:"alerts"`

	CreatedAt time.Time `json:"created_at"`
}

// SessionRecord is the per-session aggregate, upserted on every emission.
type SessionRecord struct {
	SessionID       string   `json:"session_id"`
	TicketID        string   `json:"ticket_id"`
	TaskType        TaskType `json:"task_type"`
	TemplateName    string   `json:"template_name"`
	TemplateVersion string   `json:"template_version"`

	TotalScores  int     `json:"total_scores"`
	BestScore    float64 `json:"best_score"`
	WorstScore   float64 `json:"worst_score"`
	AverageScore float64 `json:"average_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateRecord is the per-(template, version) aggregate, upserted on every
// emission. DimensionalAverages holds the running mean of each dimension.
type TemplateRecord struct {
	TemplateName    string `json:"template_name"`
	TemplateVersion string `json:"template_version"`

	UsageCount          int                   `json:"usage_count"`
	AverageScore        float64               `json:"average_score"`
	DimensionalAverages map[Dimension]float64 `json:"dimensional_averages"`
	Underperforming     bool                  `json:"underperforming"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotifyResult records the outcome of notifying one downstream sink.
type NotifyResult struct {
	Sink    string `json:"sink"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// EmissionResult summarizes what the emitter did with one ScoringOutput.
// A persistence failure is reported here and never aborts the batch.
type EmissionResult struct {
	ScoringID     string         `json:"scoring_id"`
	SessionID     string         `json:"session_id"`
	Persisted     bool           `json:"persisted"`
	Notifications []NotifyResult `json:"notifications,omitempty"`
	Errors        []error        `json:"-"`
}

// StoreStatus describes the state of the record store for diagnostics.
type StoreStatus struct {
	Backend         DatabaseBackend  `json:"backend"`
	Connected       bool             `json:"connected"`
	TotalScores     int64            `json:"total_scores"`
	LastScoreTime   time.Time        `json:"last_score_time"`
	OldestScoreTime time.Time        `json:"oldest_score_time"`
	TableSizes      map[string]int64 `json:"table_sizes"`
}

// CleanupResult reports what the retention pass deleted.
type CleanupResult struct {
	DeletedScores   int64 `json:"deleted_scores"`
	DeletedSessions int64 `json:"deleted_sessions"`
	DeletedFeedback int64 `json:"deleted_feedback"`
}

// Total returns the total number of deleted rows.
func (c CleanupResult) Total() int64 {
	return c.DeletedScores + c.DeletedSessions + c.DeletedFeedback
}

// StageMetrics is a point-in-time snapshot of one pipeline stage's health counters.
type StageMetrics struct {
	Stage       Stage         `json:"stage"`
	Processed   int64         `json:"processed"`
	Failed      int64         `json:"failed"`
	SuccessRate float64       `json:"success_rate"`
	AvgLatency  time.Duration `json:"avg_latency"`
}

// PipelineHealth aggregates stage metrics into one health snapshot.
type PipelineHealth struct {
	Status HealthStatus   `json:"status"`
	Stages []StageMetrics `json:"stages"`
}

// PipelineResult is the per-request outcome returned by the pipeline. Batch
// callers match results back to their requests by SessionID/ScoringID, never by
// position.
type PipelineResult struct {
	SessionID       string          `json:"session_id"`
	ScoringID       string          `json:"scoring_id,omitempty"`
	Source          SourceTag       `json:"source"`
	FinalScore      float64         `json:"final_score"`
	Output          *ScoringOutput  `json:"output,omitempty"`
	Emission        *EmissionResult `json:"emission,omitempty"`
	StagesCompleted []Stage         `json:"stages_completed"`
	ProcessingTime  time.Duration   `json:"processing_time"`
	Err             error           `json:"-"`
}

// Succeeded reports whether the request made it through all five stages.
func (r *PipelineResult) Succeeded() bool {
	return r.Err == nil && r.Output != nil
}
