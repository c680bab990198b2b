package cmd

import (
	"github.com/ArnoldoM23/pess/core"
	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/spf13/cobra"
)

// scoreCmd scores a single prompt session.
var scoreCmd = &cobra.Command{
	Use:   "score [payload-file]",
	Short: "Score one prompt session and print its 0-100 effectiveness score.",
	Long: `Run one scoring request through the full five-stage pipeline:
ingest, normalize, evaluate, version, emit.

The payload is a JSON object read from the given file, or from stdin when no
file is given. Its shape depends on --source: promptbuilder, mcp,
vscode_extension, or manual (canonical field names).

The result includes the final score, a per-dimension breakdown, a data quality
assessment, and the template correlation hash. With persistence enabled the
score is saved and the session and template aggregates are updated in the same
transaction.

Examples:
  # Score a session from a file
  pess score session.json

  # Score a payload piped from another tool
  prompt-builder dump | pess score --source promptbuilder

  # Show dimensional detail and post to a webhook
  pess score session.json --detail --webhook-url https://hooks.internal/pess

  # Score without persistence
  pess score session.json --store-backend none`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScoreSession(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot score session", err)
		}
	},
}
