package schema

// TaskType identifies the kind of development task a session worked on.
type TaskType string

// Supported task types.
const (
	FeatureTask            TaskType = "feature"
	BugfixTask             TaskType = "bugfix"
	RefactorTask           TaskType = "refactor"
	VersionUpgradeTask     TaskType = "version_upgrade"
	ConfigUpdateTask       TaskType = "config_update"
	SchemaChangeTask       TaskType = "schema_change"
	ResolverAdditionTask   TaskType = "resolver_addition"
	DeploymentPipelineTask TaskType = "deployment_pipeline"
	TestGenerationTask     TaskType = "test_generation"
)

// AllTaskTypes lists every supported task type in declaration order.
var AllTaskTypes = []TaskType{
	FeatureTask,
	BugfixTask,
	RefactorTask,
	VersionUpgradeTask,
	ConfigUpdateTask,
	SchemaChangeTask,
	ResolverAdditionTask,
	DeploymentPipelineTask,
	TestGenerationTask,
}

// IsValid reports whether t is one of the supported task types.
func (t TaskType) IsValid() bool {
	for _, known := range AllTaskTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Stage identifies one of the five pipeline stages a scoring request moves through.
type Stage string

// Pipeline stages in execution order, plus the failure terminal.
const (
	IngestStage    Stage = "ingestor"
	NormalizeStage Stage = "normalizer"
	EvaluateStage  Stage = "evaluator"
	VersionStage   Stage = "versioner"
	EmitStage      Stage = "emitter"
	AbortedStage   Stage = "aborted"
)

// PipelineStages lists the five processing stages in execution order.
var PipelineStages = []Stage{IngestStage, NormalizeStage, EvaluateStage, VersionStage, EmitStage}

// SourceTag identifies one of the known callers that submit scoring requests.
type SourceTag string

// Supported scoring request sources.
const (
	PromptBuilderSource SourceTag = "promptbuilder"
	MCPSource           SourceTag = "mcp"
	VSCodeSource        SourceTag = "vscode_extension"
	ManualSource        SourceTag = "manual"
)

// SupportedSources lists every source the ingestor accepts.
var SupportedSources = []SourceTag{PromptBuilderSource, MCPSource, VSCodeSource, ManualSource}

// FeedbackType identifies the kind of feedback submitted for a scored session.
type FeedbackType string

// Supported feedback types.
const (
	DeveloperSatisfactionFeedback FeedbackType = "developer_satisfaction"
	PRReviewFeedback              FeedbackType = "pr_review"
	RetryFeedback                 FeedbackType = "retry_feedback"
	ManualEditFeedback            FeedbackType = "manual_edit"
)

// Dimension names one of the eight quality dimensions of a score.
type Dimension string

// The eight scoring dimensions.
const (
	ClarityDim               Dimension = "clarity"
	CoverageDim              Dimension = "coverage"
	RetryPenaltyDim          Dimension = "retry_penalty"
	EditPenaltyDim           Dimension = "edit_penalty"
	ComplexityHandlingDim    Dimension = "complexity_handling"
	PerformanceImpactDim     Dimension = "performance_impact"
	ReviewQualityDim         Dimension = "review_quality"
	DeveloperSatisfactionDim Dimension = "developer_satisfaction"
)

// AllDimensions lists the eight dimensions in their canonical order.
var AllDimensions = []Dimension{
	ClarityDim,
	CoverageDim,
	RetryPenaltyDim,
	EditPenaltyDim,
	ComplexityHandlingDim,
	PerformanceImpactDim,
	ReviewQualityDim,
	DeveloperSatisfactionDim,
}

// QualityTier buckets a data quality score into a coarse level.
type QualityTier string

// Data quality tiers.
const (
	HighQuality   QualityTier = "high"
	MediumQuality QualityTier = "medium"
	LowQuality    QualityTier = "low"
)

// HealthStatus summarizes pipeline or stage health.
type HealthStatus string

// Health statuses, ordered from best to worst.
const (
	HealthyStatus   HealthStatus = "healthy"
	WarningStatus   HealthStatus = "warning"
	UnhealthyStatus HealthStatus = "unhealthy"
)

// DatabaseBackend identifies which database is used for persistence.
type DatabaseBackend string

// Supported store backends.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidDatabaseBackends is the set of accepted store backends for validation.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// OutputMode selects an output format for CLI results.
type OutputMode string

// Supported output formats.
const (
	TextOut    OutputMode = "text"
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// ValidOutputModes is the set of accepted output formats for validation.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidSources is the set of accepted request sources for validation.
var ValidSources = map[SourceTag]struct{}{
	PromptBuilderSource: {},
	MCPSource:           {},
	VSCodeSource:        {},
	ManualSource:        {},
}

// ValidFeedbackTypes is the set of accepted feedback types for validation.
var ValidFeedbackTypes = map[FeedbackType]struct{}{
	DeveloperSatisfactionFeedback: {},
	PRReviewFeedback:              {},
	RetryFeedback:                 {},
	ManualEditFeedback:            {},
}
