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

// WritePipelineHealth outputs per-stage health metrics, dispatching based on
// the output format configured.
func WritePipelineHealth(health schema.PipelineHealth, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, health)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"stage", "processed", "failed", "success_rate", "avg_latency"}
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				return writeCSVResultsForHealth(csvWriter, health)
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHealthTable(health, cfg, w)
		}, "Wrote table")
	}
}

// healthLabel renders the overall status, colored when enabled.
func healthLabel(status schema.HealthStatus, useColors bool) string {
	if !useColors {
		return string(status)
	}
	switch status {
	case schema.HealthyStatus:
		return contract.ExcellentColor.Sprint(string(status))
	case schema.WarningStatus:
		return contract.FairColor.Sprint(string(status))
	default:
		return contract.PoorColor.Sprint(string(status))
	}
}

func writeHealthTable(health schema.PipelineHealth, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Stage", "Processed", "Failed", "Success Rate", "Avg Latency"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, s := range health.Stages {
		data = append(data, []string{
			string(s.Stage),
			strconv.FormatInt(s.Processed, 10),
			strconv.FormatInt(s.Failed, 10),
			fmt.Sprintf("%.2f%%", s.SuccessRate*100),
			s.AvgLatency.String(),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(writer, "Pipeline status: %s\n", healthLabel(health.Status, cfg.UseColors))
	return err
}

func writeCSVResultsForHealth(w *csv.Writer, health schema.PipelineHealth) error {
	for _, s := range health.Stages {
		rec := []string{
			string(s.Stage),
			strconv.FormatInt(s.Processed, 10),
			strconv.FormatInt(s.Failed, 10),
			fmt.Sprintf("%.4f", s.SuccessRate),
			s.AvgLatency.String(),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
