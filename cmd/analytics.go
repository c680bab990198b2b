package cmd

import (
	"github.com/ArnoldoM23/pess/core"
	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/spf13/cobra"
)

// analyticsCmd groups read-only queries over persisted score data.
var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Query persisted score data: templates, recent scores, sessions",
	Long: `Query the record store for scoring trends and aggregates.

Subcommands:
  templates - per-template usage, average score, and underperforming flag
  recent    - recently emitted scores, newest first
  session   - aggregate summary for one session

All queries honor --lookback-days and require a persistence backend.

Examples:
  # Which templates are dragging the average down?
  pess analytics templates --lookback-days 14

  # What got scored this week?
  pess analytics recent --lookback-days 7 --limit 50

  # How has one session performed over time?
  pess analytics session sess-2041`,
}

// analyticsTemplatesCmd shows per-template performance aggregates.
var analyticsTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Show per-template score aggregates and underperforming flags",
	Long: `List templates used within the lookback window, worst average first.

For each template: usage count, running average score, the weakest scoring
dimension, and an UNDERPERFORMING flag when the average sits below the alert
threshold. Use --template to narrow to a single template name.

Examples:
  # Full template leaderboard over the default window
  pess analytics templates

  # One template, JSON for dashboards
  pess analytics templates --template bugfix_task --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTemplateAnalytics(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot query template analytics", err)
		}
	},
}

// analyticsRecentCmd lists recently persisted scores.
var analyticsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently emitted scores, newest first",
	Long: `Show scores persisted within the lookback window, newest first,
capped at --limit rows.

Each row carries the session, score, label, template, and correlation hash so
a score can be traced back to the exact prompt template version it used.

Examples:
  # Last week's scores
  pess analytics recent --lookback-days 7

  # Export the last 500 scores to CSV
  pess analytics recent --limit 500 --output csv --output-file recent.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRecentScores(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot query recent scores", err)
		}
	},
}

// analyticsSessionCmd shows one session's aggregate summary.
var analyticsSessionCmd = &cobra.Command{
	Use:   "session [session-id]",
	Short: "Show the aggregate score summary for one session",
	Long: `Print the stored aggregate for a single session: total scores, running
average with label, best and worst scores, and first/last scored timestamps.

The session ID can be given as a positional argument or via --session.

Examples:
  # Summarize one session
  pess analytics session sess-2041

  # Same, as JSON
  pess analytics session sess-2041 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if len(args) == 1 {
			cfg.SessionFilter = args[0]
		}
		if err := core.ExecuteSessionSummary(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot query session summary", err)
		}
	},
}
