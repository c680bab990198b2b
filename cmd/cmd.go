// Package cmd defines the command-line interface for pess.
package cmd

import (
	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the analytics subcommands to the parent analytics command
	analyticsCmd.AddCommand(analyticsTemplatesCmd)
	analyticsCmd.AddCommand(analyticsRecentCmd)
	analyticsCmd.AddCommand(analyticsSessionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeCleanupCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("source", "s", string(schema.ManualSource), "Payload source: promptbuilder, mcp, vscode_extension or manual")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers for batch scoring")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().Bool("detail", false, "Print dimensional detail columns (quality, hash, weak dimensions)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("score-version", contract.DefaultScoreVersion, "Pipeline score version stamped on every output (vMAJOR.MINOR.PATCH)")
	rootCmd.PersistentFlags().Int("lookback-days", contract.DefaultLookbackDays, "Lookback window in days for analytics queries")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scoreCmd to Viper
	scoreCmd.Flags().String("webhook-url", "", "Webhook URL to notify after each emitted score")
	scoreCmd.Flags().String("notify-log", "", "Log a one-line summary for each emitted score (yes/no)")
	scoreCmd.Flags().String("notify-timeout", "", "Per-sink notification timeout (e.g., 5s)")
	scoreCmd.Flags().String("persist-timeout", "", "Per-record persistence timeout (e.g., 10s)")
	if err := viper.BindPFlags(scoreCmd.Flags()); err != nil {
		contract.LogFatal("Error binding score flags", err)
	}

	// batchCmd shares the notification flags with scoreCmd
	batchCmd.Flags().AddFlagSet(scoreCmd.Flags())

	// Bind all flags of feedbackCmd to Viper
	feedbackCmd.Flags().String("scoring-id", "", "Scoring ID the feedback refers to")
	feedbackCmd.Flags().String("feedback-type", "", "Feedback type: developer_satisfaction, pr_review, retry_feedback or manual_edit")
	feedbackCmd.Flags().Float64("rating", -1, "Rating on a 0-5 scale")
	feedbackCmd.Flags().String("comment", "", "Free-form comment")
	if err := viper.BindPFlags(feedbackCmd.Flags()); err != nil {
		contract.LogFatal("Error binding feedback flags", err)
	}

	// Bind all flags of analyticsCmd to Viper
	analyticsCmd.PersistentFlags().String("template", "", "Filter analytics to one template name")
	analyticsCmd.PersistentFlags().String("session", "", "Session ID for the session summary")
	if err := viper.BindPFlags(analyticsCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding analytics flags", err)
	}

	// Bind all flags of storeCleanupCmd to Viper
	storeCleanupCmd.Flags().Int("retention-days", contract.DefaultRetentionDays, "Delete records older than this many days")
	if err := viper.BindPFlags(storeCleanupCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store cleanup flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
