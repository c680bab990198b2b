package contract

import (
	"fmt"
	"maps"
	"runtime"
	"strings"
	"time"

	"github.com/ArnoldoM23/pess/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit    = 25
	MaxResultLimit        = 1000
	DefaultPrecision      = 1
	DefaultRetentionDays  = 730
	DefaultNotifyTimeout  = 5 * time.Second
	DefaultPersistTimeout = 10 * time.Second
	DefaultLookbackDays   = 30
	DefaultScoreVersion   = "v1.0.0"
	UnderperformThreshold = 60.0
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DimensionWeightsRaw holds custom weights for the eight scoring dimensions.
// Use float64 pointers so absent fields fall back to defaults.
type DimensionWeightsRaw struct {
	Clarity               *float64 `mapstructure:"clarity"`
	Coverage              *float64 `mapstructure:"coverage"`
	RetryPenalty          *float64 `mapstructure:"retry_penalty"`
	EditPenalty           *float64 `mapstructure:"edit_penalty"`
	ComplexityHandling    *float64 `mapstructure:"complexity_handling"`
	PerformanceImpact     *float64 `mapstructure:"performance_impact"`
	ReviewQuality         *float64 `mapstructure:"review_quality"`
	DeveloperSatisfaction *float64 `mapstructure:"developer_satisfaction"`
}

// Config holds the runtime configuration for the scoring pipeline.
// This struct remains the "final, validated" config.
type Config struct {
	Source      schema.SourceTag
	InputFile   string
	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int  // Terminal width override (0 = auto-detect)
	Detail      bool // Show dimensional detail columns in table output

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	ScoreVersion  string
	LookbackDays  int
	RetentionDays int

	WebhookURL     string
	NotifyLog      bool
	NotifyTimeout  time.Duration
	PersistTimeout time.Duration

	TemplateFilter string
	SessionFilter  string

	// ComputedWeights is the final dimension weights map, computed from
	// defaults + custom overrides. Always sums to 1.0 after validation.
	ComputedWeights map[schema.Dimension]float64

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputFileStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Source         string `mapstructure:"source"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Limit          int    `mapstructure:"limit"`
	Workers        int    `mapstructure:"workers"`
	Precision      int    `mapstructure:"precision"`
	Width          int    `mapstructure:"width"`
	Detail         bool   `mapstructure:"detail"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Emoji          string `mapstructure:"emoji"`
	Color          string `mapstructure:"color"`

	// --- Fields from scoreCmd / batchCmd flags ---
	ScoreVersion   string `mapstructure:"score-version"`
	WebhookURL     string `mapstructure:"webhook-url"`
	NotifyLog      string `mapstructure:"notify-log"`
	NotifyTimeout  string `mapstructure:"notify-timeout"`
	PersistTimeout string `mapstructure:"persist-timeout"`

	// --- Fields from analyticsCmd / store cleanup flags ---
	Template      string `mapstructure:"template"`
	Session       string `mapstructure:"session"`
	LookbackDays  int    `mapstructure:"lookback-days"`
	RetentionDays int    `mapstructure:"retention-days"`

	// --- Custom weights from config file ---
	Weights DimensionWeightsRaw `mapstructure:"weights"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.ComputedWeights != nil {
		clone.ComputedWeights = make(map[schema.Dimension]float64)
		maps.Copy(clone.ComputedWeights, c.ComputedWeights)
	}
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := processNotifyConfig(cfg, input); err != nil {
		return err
	}
	if err := processCustomWeights(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.InputFile = input.InputFileStr
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Detail = input.Detail
	cfg.TemplateFilter = strings.TrimSpace(input.Template)
	cfg.SessionFilter = strings.TrimSpace(input.Session)

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Source Validation ---
	cfg.Source = schema.SourceTag(strings.ToLower(input.Source))
	if _, ok := schema.ValidSources[cfg.Source]; !ok {
		return fmt.Errorf("invalid source '%s'. must be promptbuilder, mcp, vscode_extension, manual", input.Source)
	}

	// --- 2. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 3. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 4. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	// --- 5. Version and Retention Validation ---
	cfg.ScoreVersion = strings.TrimSpace(input.ScoreVersion)
	if cfg.ScoreVersion == "" {
		cfg.ScoreVersion = DefaultScoreVersion
	}
	if !strings.HasPrefix(cfg.ScoreVersion, "v") {
		return fmt.Errorf("score version must start with 'v' (received %q)", cfg.ScoreVersion)
	}

	cfg.LookbackDays = input.LookbackDays
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = DefaultLookbackDays
	}

	cfg.RetentionDays = input.RetentionDays
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}

	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfig validates the record store backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// processNotifyConfig parses the downstream notification settings.
func processNotifyConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.WebhookURL = strings.TrimSpace(input.WebhookURL)
	if cfg.WebhookURL != "" && !strings.HasPrefix(cfg.WebhookURL, "http://") && !strings.HasPrefix(cfg.WebhookURL, "https://") {
		return fmt.Errorf("webhook URL must start with http:// or https:// (received %q)", cfg.WebhookURL)
	}

	if input.NotifyLog != "" {
		notifyLog, err := ParseBoolString(input.NotifyLog)
		if err != nil {
			return fmt.Errorf("invalid --notify-log value: %w", err)
		}
		cfg.NotifyLog = notifyLog
	}

	cfg.NotifyTimeout = DefaultNotifyTimeout
	if input.NotifyTimeout != "" {
		timeout, err := time.ParseDuration(input.NotifyTimeout)
		if err != nil {
			return fmt.Errorf("invalid --notify-timeout value: %w", err)
		}
		if timeout <= 0 {
			return fmt.Errorf("notify timeout must be positive (received %s)", timeout)
		}
		cfg.NotifyTimeout = timeout
	}

	cfg.PersistTimeout = DefaultPersistTimeout
	if input.PersistTimeout != "" {
		timeout, err := time.ParseDuration(input.PersistTimeout)
		if err != nil {
			return fmt.Errorf("invalid --persist-timeout value: %w", err)
		}
		if timeout <= 0 {
			return fmt.Errorf("persist timeout must be positive (received %s)", timeout)
		}
		cfg.PersistTimeout = timeout
	}

	return nil
}

// ProcessWeightsRawInput converts DimensionWeightsRaw into a weights map.
// If validateSum is true, it validates that the provided weights sum to 1.0.
func ProcessWeightsRawInput(raw DimensionWeightsRaw, validateSum bool) (map[schema.Dimension]float64, error) {
	overrides := map[schema.Dimension]*float64{
		schema.ClarityDim:               raw.Clarity,
		schema.CoverageDim:              raw.Coverage,
		schema.RetryPenaltyDim:          raw.RetryPenalty,
		schema.EditPenaltyDim:           raw.EditPenalty,
		schema.ComplexityHandlingDim:    raw.ComplexityHandling,
		schema.PerformanceImpactDim:     raw.PerformanceImpact,
		schema.ReviewQualityDim:         raw.ReviewQuality,
		schema.DeveloperSatisfactionDim: raw.DeveloperSatisfaction,
	}

	result := make(map[schema.Dimension]float64)
	sum := 0.0
	for dim, ptr := range overrides {
		if ptr == nil {
			continue
		}
		if *ptr < 0 {
			return nil, fmt.Errorf("weight for dimension %s must be non-negative (received %.3f)", dim, *ptr)
		}
		result[dim] = *ptr
		sum += *ptr
	}

	if len(result) > 0 && validateSum {
		// A partial override inherits the defaults for the rest; only a full
		// set of eight must sum to 1.0.
		if len(result) == len(schema.AllDimensions) && (sum < 0.999 || sum > 1.001) {
			return nil, fmt.Errorf("custom dimension weights must sum to 1.0, got %.3f", sum)
		}
	}

	return result, nil
}

// processCustomWeights computes the final ComputedWeights from defaults + overrides.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	overrides, err := ProcessWeightsRawInput(input.Weights, true)
	if err != nil {
		return err
	}

	weights := schema.GetDefaultWeights()
	maps.Copy(weights, overrides)
	cfg.ComputedWeights = weights
	return nil
}
