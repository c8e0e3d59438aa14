package server

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/strategy-compare/pkg/constants"
)

func writeServerConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Fatalf("expected default max upload size, got %d", cfg.UploadSizeBytes())
	}
	if cfg.HeaderTimeout() != defaultReadHeaderTimeout {
		t.Fatalf("expected default header timeout, got %s", cfg.HeaderTimeout())
	}
	if cfg.DisableMetrics {
		t.Fatal("expected metrics enabled by default")
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Address == "" {
		t.Fatal("expected default address")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeServerConfig(t, `address: 127.0.0.1:9000
maxUploadSize: 2M
readHeaderTimeout: 3s
disableMetrics: true
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
ranking:
  probabilityScale: 10
  maxDifferences: 2
weights:
  successRate: 4
metrics:
  - key: sharpe
    weight: 1
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 2*1024*1024 {
		t.Fatalf("expected max upload override, got %d", cfg.UploadSizeBytes())
	}
	if cfg.HeaderTimeout() != 3*time.Second {
		t.Fatalf("expected header timeout override, got %s", cfg.HeaderTimeout())
	}
	if !cfg.DisableMetrics {
		t.Fatal("expected metrics disabled")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" || cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Ranking.ProbabilityScale != 10 || cfg.Ranking.MaxDifferences != 2 {
		t.Fatalf("unexpected ranking config %+v", cfg.Ranking)
	}
	if cfg.Weights["successRate"] != 4 {
		t.Fatalf("expected successRate weight 4, got %v", cfg.Weights)
	}

	opts, err := cfg.Comparison().EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions() error = %v", err)
	}
	if len(opts) != 4 {
		t.Fatalf("expected ranking, rule and weight options, got %d", len(opts))
	}
}

func TestLoadConfigInvalidYaml(t *testing.T) {
	path := writeServerConfig(t, "maxUploadSize: invalid")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid size but got nil")
	}
}

func TestLoadConfigInvalidTimeout(t *testing.T) {
	path := writeServerConfig(t, "readHeaderTimeout: soon")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid timeout but got nil")
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxUploadSizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	if _, err := ParseSize("1G"); err == nil {
		t.Fatal("expected error for unsupported unit")
	}
	if _, err := ParseSize("abc"); err == nil {
		t.Fatal("expected error for invalid number")
	}
}

func TestParseSizeBounds(t *testing.T) {
	got, err := ParseSize("9223372036854775807")
	if err != nil {
		t.Fatalf("ParseSize(max int64) returned error: %v", err)
	}
	if got != math.MaxInt64 {
		t.Fatalf("ParseSize(max int64) = %d", got)
	}

	got, err = ParseSize("8796093022207M")
	if err != nil {
		t.Fatalf("ParseSize(largest M) returned error: %v", err)
	}
	if got != 8796093022207*1024*1024 {
		t.Fatalf("ParseSize(largest M) = %d", got)
	}

	for _, input := range []string{
		"8796093022208M",
		"9007199254740993K",
		"9007199254740993M",
		"-1",
		"-4K",
	} {
		if _, err := ParseSize(input); err == nil {
			t.Errorf("ParseSize(%q) expected error but got none", input)
		}
	}
}

func TestLoadConfigExample(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "server-config.yaml.example"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Address != ":8080" {
		t.Fatalf("expected example address, got %q", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 256*1024 {
		t.Fatalf("expected 256K upload size, got %d", cfg.UploadSizeBytes())
	}
	if cfg.HeaderTimeout() != 10*time.Second {
		t.Fatalf("expected 10s header timeout, got %s", cfg.HeaderTimeout())
	}
}
