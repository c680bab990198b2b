// Package parquet provides data structures and functions for exporting score
// data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ArnoldoM23/pess/schema"
	"github.com/parquet-go/parquet-go"
)

// Score represents a single persisted score record.
// This struct maps to the pess_scores database table.
type Score struct {
	// ScoringID is the unique identifier for this scoring run
	ScoringID string `parquet:"scoring_id,snappy"`

	// SessionID identifies the coding session that was scored
	SessionID string `parquet:"session_id,snappy"`

	// TicketID is the work item the session addressed (nullable)
	TicketID *string `parquet:"ticket_id,optional,snappy"`

	// TaskType is the kind of task that was scored
	TaskType string `parquet:"task_type,snappy"`

	// TemplateName identifies the prompt template used
	TemplateName string `parquet:"template_name,snappy"`

	// TemplateVersion is the semantic version of the template
	TemplateVersion string `parquet:"template_version,snappy"`

	// PromptHash is the SHA-256 of the rendered prompt
	PromptHash string `parquet:"prompt_hash,snappy"`

	// BaseScore is the 0-100 score before confidence weighting
	BaseScore float64 `parquet:"base_score,snappy"`

	// FinalScore is the 0-100 effectiveness score
	FinalScore float64 `parquet:"final_score,snappy"`

	// DimensionalScores is the JSON-encoded per-dimension breakdown
	DimensionalScores string `parquet:"dimensional_scores,snappy"`

	// Adjustments is the JSON-encoded named adjustments map (nullable)
	Adjustments *string `parquet:"adjustments,optional,snappy"`

	// VersionHash correlates scores produced by the same template lineage
	VersionHash string `parquet:"version_hash,snappy"`

	// ScoreVersion is the algorithm version that produced the score
	ScoreVersion string `parquet:"score_version,snappy"`

	// ConfidenceScore reflects how much of the input was directly measured
	ConfidenceScore float64 `parquet:"confidence_score,snappy"`

	// DataQuality is the 0-1 input quality assessment
	DataQuality float64 `parquet:"data_quality,snappy"`

	// RetryCount is the number of retries observed in the session
	RetryCount int32 `parquet:"retry_count,snappy"`

	// EditSimilarity measures how much generated code survived manual edits
	EditSimilarity float64 `parquet:"edit_similarity,snappy"`

	// ProcessingTimeMs is the pipeline processing time in milliseconds
	ProcessingTimeMs int64 `parquet:"processing_time_ms,snappy"`

	// CreatedAt is when the score was persisted (stored as TIMESTAMP with nanosecond precision)
	CreatedAt time.Time `parquet:"created_at,snappy"`
}

// Feedback represents a single feedback submission linked to a score.
// This struct maps to the pess_feedback database table.
type Feedback struct {
	// FeedbackID is the unique identifier for this submission
	FeedbackID string `parquet:"feedback_id,snappy"`

	// ScoringID references the score the feedback applies to
	ScoringID string `parquet:"scoring_id,snappy"`

	// SessionID identifies the originating coding session
	SessionID string `parquet:"session_id,snappy"`

	// FeedbackType is the kind of feedback submitted
	FeedbackType string `parquet:"feedback_type,snappy"`

	// Rating is an optional 1-5 rating (nullable)
	Rating *float64 `parquet:"rating,optional,snappy"`

	// Comment is free-form reviewer text (nullable)
	Comment *string `parquet:"comment,optional,snappy"`

	// PRApproved reports whether the associated PR was approved (nullable)
	PRApproved *bool `parquet:"pr_approved,optional,snappy"`

	// ReviewComments is the number of review comments left (nullable)
	ReviewComments *int32 `parquet:"review_comments,optional,snappy"`

	// ChangesRequested reports whether changes were requested (nullable)
	ChangesRequested *bool `parquet:"changes_requested,optional,snappy"`

	// SatisfactionScore is an optional 0-1 satisfaction signal (nullable)
	SatisfactionScore *float64 `parquet:"satisfaction_score,optional,snappy"`

	// WouldRecommend reports whether the developer would recommend the template (nullable)
	WouldRecommend *bool `parquet:"would_recommend,optional,snappy"`

	// CreatedAt is when the feedback was submitted (stored as TIMESTAMP with nanosecond precision)
	CreatedAt time.Time `parquet:"created_at,snappy"`
}

// WriteScoresParquet writes a slice of Score structs to a Parquet file.
func WriteScoresParquet(data []Score, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the Score struct tags
	writer := parquet.NewGenericWriter[Score](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteFeedbackParquet writes a slice of Feedback structs to a Parquet file.
func WriteFeedbackParquet(data []Feedback, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the Feedback struct tags
	writer := parquet.NewGenericWriter[Feedback](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertScoreRecords converts schema.ScoreRecord to Score for Parquet export.
func ConvertScoreRecords(records []schema.ScoreRecord) []Score {
	result := make([]Score, len(records))
	for i, record := range records {
		dims, _ := json.Marshal(record.DimensionalScores)

		var adjustments *string
		if len(record.Adjustments) > 0 {
			if data, err := json.Marshal(record.Adjustments); err == nil {
				s := string(data)
				adjustments = &s
			}
		}

		var ticket *string
		if record.TicketID != "" {
			t := record.TicketID
			ticket = &t
		}

		result[i] = Score{
			ScoringID:         record.ScoringID,
			SessionID:         record.SessionID,
			TicketID:          ticket,
			TaskType:          string(record.TaskType),
			TemplateName:      record.TemplateName,
			TemplateVersion:   record.TemplateVersion,
			PromptHash:        record.PromptHash,
			BaseScore:         record.BaseScore,
			FinalScore:        record.FinalScore,
			DimensionalScores: string(dims),
			Adjustments:       adjustments,
			VersionHash:       record.VersionHash,
			ScoreVersion:      record.ScoreVersion,
			ConfidenceScore:   record.ConfidenceScore,
			DataQuality:       record.DataQuality,
			RetryCount:        int32(record.RetryCount),
			EditSimilarity:    record.EditSimilarity,
			ProcessingTimeMs:  record.ProcessingTime.Milliseconds(),
			CreatedAt:         record.CreatedAt,
		}
	}
	return result
}

// ConvertFeedbackRecords converts schema.FeedbackData to Feedback for Parquet export.
func ConvertFeedbackRecords(records []schema.FeedbackData) []Feedback {
	result := make([]Feedback, len(records))
	for i, record := range records {
		var comment *string
		if s := strings.TrimSpace(record.Comment); s != "" {
			comment = &s
		}

		var reviewComments *int32
		if record.ReviewComments != nil {
			n := int32(*record.ReviewComments)
			reviewComments = &n
		}

		result[i] = Feedback{
			FeedbackID:        record.FeedbackID,
			ScoringID:         record.ScoringID,
			SessionID:         record.SessionID,
			FeedbackType:      string(record.Type),
			Rating:            record.Rating,
			Comment:           comment,
			PRApproved:        record.PRApproved,
			ReviewComments:    reviewComments,
			ChangesRequested:  record.ChangesRequested,
			SatisfactionScore: record.SatisfactionScore,
			WouldRecommend:    record.WouldRecommend,
			CreatedAt:         record.Timestamp,
		}
	}
	return result
}
