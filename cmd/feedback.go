package cmd

import (
	"github.com/ArnoldoM23/pess/core"
	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// feedbackCmd attaches post-hoc feedback to a scored session.
var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Attach feedback to a previously scored session.",
	Long: `Record feedback for a score that was already emitted. Feedback lives on
its own lifecycle, linked to the score by --scoring-id, and influences the
review quality and developer satisfaction dimensions of later evaluations.

Feedback types:
  developer_satisfaction - how satisfied the developer was with the result
  pr_review              - signals from the eventual pull request review
  retry_feedback         - the prompt had to be retried or reworked
  manual_edit            - the generated output needed manual editing

Requires a persistence backend (sqlite, mysql, or postgresql).

Examples:
  # Rate a scored session
  pess feedback --scoring-id score_01J... --feedback-type developer_satisfaction --rating 4

  # Record a PR review outcome with a comment
  pess feedback --scoring-id score_01J... --feedback-type pr_review --rating 3 --comment "needed two fixup commits"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		fb := &schema.FeedbackData{
			ScoringID: viper.GetString("scoring-id"),
			Type:      schema.FeedbackType(viper.GetString("feedback-type")),
			Comment:   viper.GetString("comment"),
		}
		if rating := viper.GetFloat64("rating"); rating >= 0 {
			fb.Rating = &rating
		}
		if err := core.ExecuteSubmitFeedback(rootCtx, cfg, storeManager, fb); err != nil {
			contract.LogFatal("Cannot submit feedback", err)
		}
	},
}
