package cmd

import (
	"github.com/ArnoldoM23/pess/core"
	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/spf13/cobra"
)

// batchCmd scores a batch of prompt sessions.
var batchCmd = &cobra.Command{
	Use:   "batch [payload-file]",
	Short: "Score a batch of prompt sessions with a bounded worker pool.",
	Long: `Score many sessions in one run. The payload is a JSON array of request
objects read from the given file, or from stdin when no file is given.

Each stage runs across the whole batch before the next stage starts, with
--workers concurrent workers per stage. Items are independent: a failed item
is reported with its error and never blocks the rest of the batch. Results
carry their session and scoring IDs so they can be matched by identity.

Examples:
  # Score a nightly export with 8 workers
  pess batch sessions.json --workers 8

  # Write per-item results to CSV for spreadsheets
  pess batch sessions.json --output csv --output-file scores.csv

  # Batch-score VS Code extension payloads piped from stdin
  cat dump.json | pess batch --source vscode_extension`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScoreBatch(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot score batch", err)
		}
	},
}
