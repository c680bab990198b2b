package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteScoreResults outputs pipeline scoring results, dispatching based on the
// output format configured.
func WriteScoreResults(results []schema.PipelineResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeScoreJSONResults(results, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeScoreCSVResults(results, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoreTable(results, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeScoreJSONResults handles opening the file and calling the JSON writer.
func writeScoreJSONResults(results []schema.PipelineResult, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForScores(w, results)
	}, "Wrote JSON")
}

// writeScoreCSVResults handles opening the file and calling the CSV writer.
func writeScoreCSVResults(results []schema.PipelineResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{
			"rank",
			"session_id",
			"scoring_id",
			"score",
			"label",
			"confidence",
			"data_quality",
			"version_hash",
			"template",
			"template_version",
			"alerts",
			"error",
		}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			return writeCSVResultsForScores(csvWriter, results, fmtFloat)
		})
	}, "Wrote CSV")
}

// writeScoreTable generates and writes the human-readable table.
func writeScoreTable(results []schema.PipelineResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Rank", "Session", "Score", "Label", "Confidence"}
	if cfg.Detail {
		headers = append(headers, "Quality", "Hash", "Weak Dimensions")
	}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	var data [][]string
	failed := 0
	for i, r := range results {
		if !r.Succeeded() {
			failed++
			row := []string{
				strconv.Itoa(i + 1),
				contract.TruncatePath(r.SessionID, getMaxTableSessionWidth(cfg)),
				"-",
				"Failed",
				"-",
			}
			if cfg.Detail {
				row = append(row, "-", "-", formatErrOrDash(r.Err))
			}
			data = append(data, row)
			continue
		}

		label := contract.GetPlainLabel(r.FinalScore)
		if cfg.UseColors {
			label = contract.GetColorLabel(r.FinalScore)
		}
		row := []string{
			strconv.Itoa(i + 1), // Rank
			contract.TruncatePath(r.SessionID, getMaxTableSessionWidth(cfg)), // Session
			fmtFloat(r.FinalScore), // Score
			label,                  // Label
			fmtFloat(r.Output.ConfidenceScore), // Confidence
		}
		if cfg.Detail {
			row = append(
				row,
				fmtFloat(r.Output.DataQuality),                              // Quality
				r.Output.TemplateCorrelation.VersionHash,                    // Hash
				formatWeakDimensions(r.Output.Metrics.DimensionalScores),    // Weak Dimensions
			)
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Compute summary stats
	if _, err := fmt.Fprintf(writer, "Scored %d sessions (%d failed)\n", len(results), failed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Scoring completed in %v with %d workers. Store backend: %s\n", duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForScores writes the scoring results in CSV format.
func writeCSVResultsForScores(w *csv.Writer, results []schema.PipelineResult, fmtFloat func(float64) string) error {
	for i, r := range results {
		rec := []string{
			strconv.Itoa(i + 1),
			r.SessionID,
			r.ScoringID,
		}
		if r.Succeeded() {
			rec = append(rec,
				fmtFloat(r.FinalScore),
				contract.GetPlainLabel(r.FinalScore),
				fmtFloat(r.Output.ConfidenceScore),
				fmtFloat(r.Output.DataQuality),
				r.Output.TemplateCorrelation.VersionHash,
				r.Output.TemplateCorrelation.TemplateName,
				r.Output.TemplateCorrelation.TemplateVersion,
				strconv.Itoa(len(r.Output.Alerts)),
				"",
			)
		} else {
			rec = append(rec, "", "", "", "", "", "", "", "", formatErrOrDash(r.Err))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONResultsForScores writes the scoring results in JSON format.
func writeJSONResultsForScores(w io.Writer, results []schema.PipelineResult) error {
	// 1. Prepare the data structure for JSON with rank and label added
	type JSONScoreResult struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		Error string `json:"error,omitempty"`
		schema.PipelineResult
	}

	output := make([]JSONScoreResult, len(results))
	for i, r := range results {
		entry := JSONScoreResult{
			Rank:           i + 1,
			PipelineResult: r,
		}
		if r.Succeeded() {
			entry.Label = contract.GetPlainLabel(r.FinalScore)
		} else {
			entry.Label = "Failed"
			entry.Error = formatErrOrDash(r.Err)
		}
		output[i] = entry
	}

	// 2. Use the generic JSON writer
	return writeJSON(w, output)
}
