package scorestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArnoldoM23/pess/internal/parquet"
	"github.com/ArnoldoM23/pess/schema"
)

// exportSource is the full-table access the Parquet export needs. Only the SQL
// store implements it; mocks and no-op stores do not export.
type exportSource interface {
	GetAllScores(ctx context.Context) ([]schema.ScoreRecord, error)
	GetAllFeedback(ctx context.Context) ([]schema.FeedbackData, error)
}

// ExecuteScoreExport performs the actual export of score data to Parquet files.
func ExecuteScoreExport(ctx context.Context, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRecordStore()
	if store == nil {
		return errors.New("score store is not initialized")
	}

	// Check if there's any data to export
	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}

	if status.TotalScores == 0 {
		return errors.New("no score data found to export")
	}

	source, ok := store.(exportSource)
	if !ok {
		return fmt.Errorf("export is not supported for the %s backend", status.Backend)
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total scores: %d\n", status.TotalScores)
	fmt.Printf("Total feedback records: %d\n", status.TableSizes[feedbackTable])

	// Retrieve all score records
	scores, err := source.GetAllScores(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve scores: %w", err)
	}

	// Retrieve all feedback submissions
	feedback, err := source.GetAllFeedback(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve feedback: %w", err)
	}

	// Convert to Parquet format
	parquetScores := parquet.ConvertScoreRecords(scores)
	parquetFeedback := parquet.ConvertFeedbackRecords(feedback)

	// Write scores to Parquet
	scoresFile := outputFile + ".scores.parquet"
	if err := parquet.WriteScoresParquet(parquetScores, scoresFile); err != nil {
		return fmt.Errorf("failed to write scores: %w", err)
	}
	fmt.Printf("Exported %d scores to: %s\n", len(parquetScores), scoresFile)

	// Write feedback to Parquet
	feedbackFile := outputFile + ".feedback.parquet"
	if err := parquet.WriteFeedbackParquet(parquetFeedback, feedbackFile); err != nil {
		return fmt.Errorf("failed to write feedback: %w", err)
	}
	fmt.Printf("Exported %d feedback records to: %s\n", len(parquetFeedback), feedbackFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
