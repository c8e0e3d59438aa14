// Package constants provides shared constants for the strategy-compare application.
package constants

// Comparison policy defaults
const (
	// MaxKeyDifferences is the maximum number of ranked differences in a summary
	MaxKeyDifferences = 4

	// DefaultProbabilityScale multiplies rate and probability deltas before
	// they are ranked against currency deltas
	DefaultProbabilityScale = 100.0

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Metric keys used in configuration, JSON payloads and rule tables
const (
	MetricFinalValue            = "finalValue"
	MetricSuccessRate           = "successRate"
	MetricMarginCallProbability = "marginCallProbability"
	MetricCAGR                  = "cagr"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "STRATEGY_COMPARE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML comparisons (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
