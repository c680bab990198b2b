package cmd

import (
	"fmt"
	"time"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/internal/scorestore"
	"github.com/ArnoldoM23/pess/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	outputFile := viper.GetString("output-file")

	// Initialize the store with the loaded config
	if err := scorestore.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = outputFile

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create
// tables, allowing migrations to run on a fresh database.
func storeMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = scorestore.GetDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeMigrateSetupWrapper wraps storeMigrateSetup to provide PreRunE for the migrate command.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeMigrateSetup()
}

// storeCmd focused on score store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by scoring commands. This avoids payload parsing
// and pipeline config processing for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage persisted score data (status, cleanup, export, migrations)",
	Long: `Manage the record store that holds scores, session aggregates, template
aggregates, and feedback.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove all persisted score data
  cleanup - Delete records older than the retention horizon
  migrate - Run database schema migrations
  export  - Export data to Parquet for analytics

Examples:
  # Check store status
  pess store status

  # Delete records past the retention horizon
  pess store cleanup --retention-days 365`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show detailed information about the score record store.

Displays:
- Backend type and connection status
- Total number of persisted scores
- Last and oldest score timestamps
- Per-table row counts

Examples:
  # Check store status
  pess store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := scorestore.Manager.GetRecordStore()
		if store == nil {
			fmt.Println("Store backend: none (persistence disabled)")
			return
		}
		status, err := store.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		scorestore.PrintStoreStatus(status)
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all persisted score data",
	Long: `Delete all persisted scores, session aggregates, template aggregates,
and feedback from the configured backend.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the score tables

Examples:
  # Export before clearing
  pess store export --output-file backup
  pess store clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := scorestore.ClearStore(cfg.StoreBackend, scorestore.GetDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeCleanupCmd deletes records older than the retention horizon.
var storeCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete score, feedback, and session records past the retention horizon",
	Long: `Delete persisted records older than --retention-days (default 730).

Scores and feedback are deleted by creation time; session aggregates by their
last update. Template aggregates are kept, since they summarize all-time
template performance.

Examples:
  # Apply the default two-year retention
  pess store cleanup

  # Keep only the last quarter
  pess store cleanup --retention-days 90`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := scorestore.Manager.GetRecordStore()
		if store == nil {
			contract.LogFatal("Failed to run cleanup", fmt.Errorf("no store backend configured"))
		}
		retentionDays := viper.GetInt("retention-days")
		if retentionDays <= 0 {
			retentionDays = contract.DefaultRetentionDays
		}
		result, err := store.Cleanup(rootCtx, time.Duration(retentionDays)*24*time.Hour)
		if err != nil {
			contract.LogFatal("Failed to run cleanup", err)
		}
		fmt.Printf("Cleanup complete: %d scores, %d feedback, %d sessions removed (%d total).\n",
			result.DeletedScores, result.DeletedFeedback, result.DeletedSessions, result.Total())
	},
}

// storeMigrateCmd runs database migrations for the record store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the score record store.

By default, migrates to the latest version. Use --target-version for specific
versions; 0 rolls back to the initial (empty) state.

Examples:
  # Migrate to latest version (default)
  pess store migrate

  # Rollback to the initial state
  pess store migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := scorestore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// storeExportCmd exports score data to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export persisted scores and feedback to Parquet for analytics",
	Long: `Export all persisted score and feedback data to Parquet format.

Two files are written: <output-file>.scores.parquet and
<output-file>.feedback.parquet. Parquet enables fast querying with DuckDB,
Apache Spark, and pandas, with efficient columnar compression.

Requires: --output-file parameter

Examples:
  # Export all data
  pess store export --output-file pess-data

  # Query with DuckDB
  duckdb -c "SELECT template_name, avg(final_score) FROM read_parquet('pess-data.scores.parquet') GROUP BY 1"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := scorestore.ExecuteScoreExport(rootCtx, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export score data", err)
		}
	},
}
