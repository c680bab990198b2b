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

// WriteTemplateAnalytics outputs per-template aggregates, dispatching based on
// the output format configured. Templates arrive worst average first, so the
// ones needing attention are at the top.
func WriteTemplateAnalytics(templates []schema.TemplateRecord, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForTemplates(w, templates)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"template", "version", "usage_count", "average_score", "label", "underperforming", "weakest_dimension"}
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				return writeCSVResultsForTemplates(csvWriter, templates, fmtFloat)
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTemplateTable(templates, cfg, fmtFloat, w)
		}, "Wrote table")
	}
}

// weakestDimension returns the lowest running dimension average for a template.
func weakestDimension(averages map[schema.Dimension]float64) string {
	name := ""
	lowest := 2.0
	for _, dim := range schema.AllDimensions {
		if v, ok := averages[dim]; ok && v < lowest {
			lowest = v
			name = string(dim)
		}
	}
	if name == "" {
		return "-"
	}
	return name
}

func writeTemplateTable(templates []schema.TemplateRecord, cfg *contract.Config, fmtFloat func(float64) string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Template", "Version", "Uses", "Avg Score", "Label", "Weakest Dim", "Flag"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	underperforming := 0
	var data [][]string
	for _, t := range templates {
		label := contract.GetPlainLabel(t.AverageScore)
		if cfg.UseColors {
			label = contract.GetColorLabel(t.AverageScore)
		}
		flag := "-"
		if t.Underperforming {
			flag = "UNDERPERFORMING"
			underperforming++
		}
		data = append(data, []string{
			t.TemplateName,
			t.TemplateVersion,
			strconv.Itoa(t.UsageCount),
			fmtFloat(t.AverageScore),
			label,
			weakestDimension(t.DimensionalAverages),
			flag,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(writer, "Showing %d templates over the last %d days (%d underperforming)\n",
		len(templates), cfg.LookbackDays, underperforming)
	return err
}

func writeCSVResultsForTemplates(w *csv.Writer, templates []schema.TemplateRecord, fmtFloat func(float64) string) error {
	for _, t := range templates {
		rec := []string{
			t.TemplateName,
			t.TemplateVersion,
			strconv.Itoa(t.UsageCount),
			fmtFloat(t.AverageScore),
			contract.GetPlainLabel(t.AverageScore),
			strconv.FormatBool(t.Underperforming),
			weakestDimension(t.DimensionalAverages),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONResultsForTemplates(w io.Writer, templates []schema.TemplateRecord) error {
	type JSONTemplateResult struct {
		Label string `json:"label"`
		schema.TemplateRecord
	}

	output := make([]JSONTemplateResult, len(templates))
	for i, t := range templates {
		output[i] = JSONTemplateResult{
			Label:          contract.GetPlainLabel(t.AverageScore),
			TemplateRecord: t,
		}
	}
	return writeJSON(w, output)
}
