package cmd

import (
	"github.com/ArnoldoM23/pess/core"
	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/spf13/cobra"
)

// healthCmd reports per-stage pipeline health.
var healthCmd = &cobra.Command{
	Use:   "health [payload-file]",
	Short: "Report per-stage pipeline throughput, failures, and latency.",
	Long: `Print health metrics for each of the five pipeline stages: processed
count, failure count, success rate, and average latency, plus the aggregate
healthy/warning/unhealthy status.

When a payload file (JSON array) is given, its batch is scored first so the
metrics reflect real traffic; without one the snapshot shows an idle pipeline.

Status thresholds:
  healthy   - every stage at or above 95% success
  warning   - some stage below 95%
  unhealthy - some stage below 90%

Examples:
  # Score a probe batch and report stage health
  pess health probe-sessions.json

  # Health as JSON for monitoring
  pess health probe-sessions.json --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScoreHealth(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot report pipeline health", err)
		}
	},
}
