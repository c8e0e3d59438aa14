package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/strategy-compare/internal/tradeoff"
	"github.com/iwvelando/strategy-compare/pkg/constants"
	"go.uber.org/zap"
)

func testConfigPath() string {
	return filepath.Join("..", "..", "test", "test_config.yaml")
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test fixture",
			configPath: testConfigPath(),
			wantError:  false,
		},
		{
			name:       "Example config",
			configPath: filepath.Join("..", "..", constants.ExampleConfigFile),
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationFields(t *testing.T) {
	conf, err := LoadConfiguration(testConfigPath())
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Logging.Format != "console" {
		t.Errorf("expected console logging, got %q", conf.Logging.Format)
	}
	if conf.Comparison.Previous.Name != "Baseline" || conf.Comparison.Current.Name != "Leveraged" {
		t.Errorf("unexpected strategy names %q / %q", conf.Comparison.Previous.Name, conf.Comparison.Current.Name)
	}

	prev := conf.Comparison.Previous.Results
	cur := conf.Comparison.Current.Results
	if prev == nil || cur == nil {
		t.Fatal("expected results for both strategies")
	}
	if prev.FinalValue != 1000000 || cur.FinalValue != 1200000 {
		t.Errorf("unexpected final values %v / %v", prev.FinalValue, cur.FinalValue)
	}
	if prev.MarginCallProbability != nil {
		t.Errorf("expected previous margin call probability to be absent")
	}
	if cur.MarginCallProbability == nil || *cur.MarginCallProbability != 0.05 {
		t.Errorf("expected current margin call probability 0.05")
	}
	if cur.CAGR == nil || *cur.CAGR != 0.071 {
		t.Errorf("expected current CAGR 0.071")
	}
	if len(conf.Metrics) != 1 || conf.Metrics[0].Key != "sharpe" {
		t.Errorf("expected sharpe metric rule, got %+v", conf.Metrics)
	}
}

func TestLoadConfigurationFromReaderDefaults(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("comparison:\n  previous:\n    name: A\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if conf.Ranking.ProbabilityScale != constants.DefaultProbabilityScale {
		t.Errorf("expected default probability scale, got %v", conf.Ranking.ProbabilityScale)
	}
	if conf.Ranking.MaxDifferences != constants.MaxKeyDifferences {
		t.Errorf("expected default max differences, got %v", conf.Ranking.MaxDifferences)
	}
	if conf.Output.Format != constants.OutputFormatPretty {
		t.Errorf("expected default output format, got %q", conf.Output.Format)
	}
	if conf.ComparisonMetrics() != nil {
		t.Error("expected nil metrics when results are missing")
	}
}

func TestLoadConfigurationFromReaderInvalid(t *testing.T) {
	if _, err := LoadConfigurationFromReader(strings.NewReader("comparison: [unclosed")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	t.Setenv("STRATEGY_COMPARE_OUTPUT_FORMAT", "csv")

	conf, err := LoadConfiguration(testConfigPath())
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Output.Format != "csv" {
		t.Errorf("expected env override to csv, got %q", conf.Output.Format)
	}
}

func TestConfiguredEngineSummary(t *testing.T) {
	conf, err := LoadConfiguration(testConfigPath())
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	opts, err := conf.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions() error = %v", err)
	}

	engine := tradeoff.NewEngine(zap.NewNop(), opts...)
	summary := engine.GenerateSummary(conf.ComparisonMetrics(), conf.Comparison.Previous.Name, conf.Comparison.Current.Name)

	if summary.Assessment != tradeoff.CurrentBetter {
		t.Errorf("expected current-better, got %s", summary.Assessment)
	}
	if summary.CurrentScore != 5 {
		t.Errorf("expected current score 5 (finalValue, successRate, cagr, sharpe), got %v", summary.CurrentScore)
	}
	if summary.Headline != "Leveraged strategy outperforms" {
		t.Errorf("unexpected headline %q", summary.Headline)
	}
	if len(summary.KeyDifferences) != 4 {
		t.Errorf("expected 4 key differences, got %d", len(summary.KeyDifferences))
	}
}

func TestEngineOptionsWeightsAreCaseInsensitive(t *testing.T) {
	conf := &Configuration{
		Weights: map[string]float64{"successrate": 5},
	}
	opts, err := conf.EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions() error = %v", err)
	}

	for _, r := range tradeoff.NewEngine(nil, opts...).Rules() {
		if r.Key == constants.MetricSuccessRate && r.Weight != 5 {
			t.Errorf("expected successRate weight 5, got %v", r.Weight)
		}
	}
}

func TestEngineOptionsRejectsBadRules(t *testing.T) {
	tests := []struct {
		name string
		rule MetricRule
	}{
		{"Missing key", MetricRule{Weight: 1}},
		{"Bad side", MetricRule{Key: "x", UpFavors: "sideways"}},
		{"Bad unit", MetricRule{Key: "x", Unit: "furlongs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &Configuration{Metrics: []MetricRule{tt.rule}}
			if _, err := conf.EngineOptions(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfigurationTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: json\n"), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Output.Format != "json" {
		t.Errorf("expected json, got %q", conf.Output.Format)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the config file in %s, found %d entries", dir, len(entries))
	}
}
