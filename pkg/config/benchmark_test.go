package config

import (
	"os"
	"path/filepath"
	"testing"
)

// BenchmarkLoadConfig benchmarks loading a typical configuration file.
// Target: <10ms p99 latency
func BenchmarkLoadConfig(b *testing.B) {
	// Create a temporary config file
	tmpDir := b.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "127.0.0.1"
  port: 8085
  read_timeout: "30s"
  write_timeout: "30s"
  idle_timeout: "120s"

intake:
  max_bytes: 16777216
  fetch_timeout: "15s"

upstreams:
  - name: "guard"
    endpoint: "https://api.example.com/v1/detect"
    api_key: "test-key"
    timeout: "10s"
    max_retries: 2

  - name: "voiceprint"
    endpoint: "https://voiceprint.example.com/v2/analyze"
    api_key: "test-key"
    payload_style: "base64-json"
    extraction: "probability"

sink:
  enabled: true
  kind: "log"

storage:
  enabled: true
  path: "./reports.db"
  retention_days: 90

logging:
  level: "info"
  format: "json"

metrics:
  enabled: true
  path: "/metrics"

tracing:
  enabled: false
  sample_ratio: 1.0
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		b.Fatalf("failed to write config file: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := LoadConfig(configPath)
		if err != nil {
			b.Fatalf("failed to load config: %v", err)
		}
	}
}

// BenchmarkLoadConfigWithEnvOverrides benchmarks loading with environment variable overrides.
func BenchmarkLoadConfigWithEnvOverrides(b *testing.B) {
	tmpDir := b.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  host: "127.0.0.1"
  port: 8085

upstreams:
  - name: "guard"
    endpoint: "https://api.example.com/v1/detect"
    api_key: "test-key"

logging:
  level: "info"
  format: "json"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		b.Fatalf("failed to write config file: %v", err)
	}

	// Set some environment variables
	os.Setenv("CLARION_SERVER_HOST", "0.0.0.0")
	os.Setenv("CLARION_UPSTREAMS_GUARD_API_KEY", "env-key")
	defer func() {
		os.Unsetenv("CLARION_SERVER_HOST")
		os.Unsetenv("CLARION_UPSTREAMS_GUARD_API_KEY")
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := LoadConfigWithEnvOverrides(configPath)
		if err != nil {
			b.Fatalf("failed to load config: %v", err)
		}
	}
}

// BenchmarkValidate benchmarks configuration validation.
// Target: <1ms for full validation
func BenchmarkValidate(b *testing.B) {
	cfg := NewTestConfig().Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := Validate(cfg)
		if err != nil {
			b.Fatalf("validation failed: %v", err)
		}
	}
}

// BenchmarkApplyDefaults benchmarks applying default values.
func BenchmarkApplyDefaults(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cfg := Config{}
		ApplyDefaults(&cfg)
	}
}

// BenchmarkGetConfig benchmarks singleton config access.
// Target: <1µs (simple pointer return)
func BenchmarkGetConfig(b *testing.B) {
	// Set up config
	SetConfig(MinimalConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetConfig()
	}
}

// BenchmarkConfigBuilder benchmarks building config programmatically.
func BenchmarkConfigBuilder(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewTestConfig().
			WithHost("0.0.0.0").
			WithStoragePath("./reports.db").
			WithLoggingLevel("debug").
			Build()
	}
}
