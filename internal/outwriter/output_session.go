package outwriter

import (
	"fmt"
	"io"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

// WriteSessionSummary outputs one session aggregate. The table format is a
// simple key/value print since a single session doesn't warrant columns.
func WriteSessionSummary(rec *schema.SessionRecord, cfg *contract.Config) error {
	if rec == nil {
		fmt.Println("No scores recorded for this session.")
		return nil
	}

	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rec)
		}, "Wrote JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			label := contract.GetPlainLabel(rec.AverageScore)
			if cfg.UseColors {
				label = contract.GetColorLabel(rec.AverageScore)
			}
			fmt.Fprintf(w, "Session: %s\n", rec.SessionID)
			if rec.TicketID != "" {
				fmt.Fprintf(w, "Ticket: %s\n", rec.TicketID)
			}
			fmt.Fprintf(w, "Task Type: %s\n", rec.TaskType)
			fmt.Fprintf(w, "Template: %s@%s\n", rec.TemplateName, rec.TemplateVersion)
			fmt.Fprintf(w, "Total Scores: %d\n", rec.TotalScores)
			fmt.Fprintf(w, "Average: %s (%s)\n", fmtFloat(rec.AverageScore), label)
			fmt.Fprintf(w, "Best: %s\n", fmtFloat(rec.BestScore))
			fmt.Fprintf(w, "Worst: %s\n", fmtFloat(rec.WorstScore))
			fmt.Fprintf(w, "First Scored: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Last Scored: %s\n", rec.UpdatedAt.Format("2006-01-02 15:04:05"))
			return nil
		}, "Wrote summary")
	}
}
