package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// dimensionValue holds one dimension and its score for sorting.
type dimensionValue struct {
	Name  string
	Value float64
}

const (
	weakDimensionCeiling = 0.7
	topNDimensions       = 3
)

// formatWeakDimensions names the weakest dimensions dragging a score down,
// lowest first. It answers "what should I fix" at a glance in table output.
func formatWeakDimensions(dims schema.DimensionalScores) string {
	var weak []dimensionValue
	for name, v := range dims.AsMap() {
		if v < weakDimensionCeiling {
			weak = append(weak, dimensionValue{Name: string(name), Value: v})
		}
	}

	if len(weak) == 0 {
		return "None"
	}

	sort.Slice(weak, func(i, j int) bool {
		return weak[i].Value < weak[j].Value
	})

	var parts []string
	limit := min(len(weak), topNDimensions)
	for i := range limit {
		parts = append(parts, weak[i].Name)
	}
	return strings.Join(parts, " < ")
}

// formatErrOrDash renders a per-item error cell.
func formatErrOrDash(err error) string {
	if err == nil {
		return "-"
	}
	return err.Error()
}
