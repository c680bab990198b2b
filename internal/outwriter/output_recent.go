package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRecentScores outputs recently persisted score records, newest first,
// dispatching based on the output format configured.
func WriteRecentScores(scores []schema.ScoreRecord, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForRecent(w, scores)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{
				"rank", "session_id", "scoring_id", "score", "label",
				"template", "template_version", "version_hash", "task_type", "created_at",
			}
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				return writeCSVResultsForRecent(csvWriter, scores, fmtFloat)
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecentTable(scores, cfg, fmtFloat, w)
		}, "Wrote table")
	}
}

func writeRecentTable(scores []schema.ScoreRecord, cfg *contract.Config, fmtFloat func(float64) string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Rank", "Session", "Score", "Label", "Template", "Hash", "Created"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, s := range scores {
		label := contract.GetPlainLabel(s.FinalScore)
		if cfg.UseColors {
			label = contract.GetColorLabel(s.FinalScore)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(s.SessionID, getMaxTableSessionWidth(cfg)),
			fmtFloat(s.FinalScore),
			label,
			s.TemplateName,
			s.VersionHash,
			s.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(writer, "Showing %d scores from the last %d days\n", len(scores), cfg.LookbackDays)
	return err
}

func writeCSVResultsForRecent(w *csv.Writer, scores []schema.ScoreRecord, fmtFloat func(float64) string) error {
	for i, s := range scores {
		rec := []string{
			strconv.Itoa(i + 1),
			s.SessionID,
			s.ScoringID,
			fmtFloat(s.FinalScore),
			contract.GetPlainLabel(s.FinalScore),
			s.TemplateName,
			s.TemplateVersion,
			s.VersionHash,
			string(s.TaskType),
			s.CreatedAt.Format(contract.DateTimeFormat),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONResultsForRecent(w io.Writer, scores []schema.ScoreRecord) error {
	type JSONRecentResult struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.ScoreRecord
	}

	output := make([]JSONRecentResult, len(scores))
	for i, s := range scores {
		output[i] = JSONRecentResult{
			Rank:        i + 1,
			Label:       contract.GetPlainLabel(s.FinalScore),
			ScoreRecord: s,
		}
	}
	return writeJSON(w, output)
}
