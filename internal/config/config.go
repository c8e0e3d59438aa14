// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/strategy-compare/internal/tradeoff"
	"github.com/iwvelando/strategy-compare/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for strategy-compare.
type Configuration struct {
	Logging    LoggingConfig      `yaml:"logging,omitempty"`
	Output     OutputConfig       `yaml:"output,omitempty"`
	Ranking    RankingConfig      `yaml:"ranking,omitempty"`
	Weights    map[string]float64 `yaml:"weights,omitempty"`
	Metrics    []MetricRule       `yaml:"metrics,omitempty"`
	Comparison Comparison         `yaml:"comparison,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format  string `yaml:"format,omitempty"` // pretty, csv, json
	NoColor bool   `yaml:"noColor,omitempty"`
}

// RankingConfig tunes how key differences are ranked.
type RankingConfig struct {
	ProbabilityScale float64 `yaml:"probabilityScale,omitempty"`
	MaxDifferences   int     `yaml:"maxDifferences,omitempty"`
}

// MetricRule declares an additional scored metric.
type MetricRule struct {
	Key      string  `yaml:"key"`
	Label    string  `yaml:"label,omitempty"`
	Weight   float64 `yaml:"weight"`
	UpFavors string  `yaml:"upFavors,omitempty"` // previous, current
	Unit     string  `yaml:"unit,omitempty"`     // currency, fraction
}

// Comparison names the two runs being compared.
type Comparison struct {
	Previous Strategy `yaml:"previous"`
	Current  Strategy `yaml:"current"`
}

// Strategy is one named simulation run. Results is nil when the run has not
// happened yet.
type Strategy struct {
	Name    string           `yaml:"name"`
	Results *tradeoff.Result `yaml:"results,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("ranking.probabilityScale", constants.DefaultProbabilityScale)
	v.SetDefault("ranking.maxDifferences", constants.MaxKeyDifferences)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// EngineOptions maps ranking, weight and metric settings onto engine options.
func (c *Configuration) EngineOptions() ([]tradeoff.Option, error) {
	opts := []tradeoff.Option{
		tradeoff.WithProbabilityScale(c.Ranking.ProbabilityScale),
		tradeoff.WithMaxDifferences(c.Ranking.MaxDifferences),
	}

	var rules []tradeoff.Rule
	for _, m := range c.Metrics {
		if strings.TrimSpace(m.Key) == "" {
			return nil, fmt.Errorf("metric rule is missing a key")
		}
		side, err := tradeoff.ParseSide(m.UpFavors)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", m.Key, err)
		}
		unit, err := tradeoff.ParseUnit(m.Unit)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", m.Key, err)
		}
		rules = append(rules, tradeoff.Rule{
			Key:      m.Key,
			Label:    m.Label,
			Weight:   m.Weight,
			UpFavors: side,
			Unit:     unit,
		})
	}
	if len(rules) > 0 {
		opts = append(opts, tradeoff.WithRules(rules...))
	}

	if len(c.Weights) > 0 {
		opts = append(opts, tradeoff.WithWeights(c.canonicalWeights(rules)))
	}

	return opts, nil
}

// canonicalWeights restores rule-key casing, since viper lowercases map keys.
func (c *Configuration) canonicalWeights(extra []tradeoff.Rule) map[string]float64 {
	known := make([]string, 0, 4+len(extra))
	for _, r := range tradeoff.DefaultRules() {
		known = append(known, r.Key)
	}
	for _, r := range extra {
		known = append(known, r.Key)
	}

	weights := make(map[string]float64, len(c.Weights))
	for key, w := range c.Weights {
		canonical := key
		for _, k := range known {
			if strings.EqualFold(k, key) {
				canonical = k
				break
			}
		}
		weights[canonical] = w
	}
	return weights
}

// ComparisonMetrics builds the delta bundle for the configured comparison.
// It returns nil when either run has no results yet.
func (c *Configuration) ComparisonMetrics() *tradeoff.Metrics {
	prev, cur := c.Comparison.Previous.Results, c.Comparison.Current.Results
	if prev == nil || cur == nil {
		return nil
	}
	return tradeoff.Compare(*prev, *cur)
}
