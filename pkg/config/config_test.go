package config

import (
	"testing"
	"time"
)

func TestNewTestConfig(t *testing.T) {
	cfg := NewTestConfig().Build()

	// Verify defaults are applied
	if cfg.Server.Host != DefaultServerHost {
		t.Errorf("expected host %q, got %q", DefaultServerHost, cfg.Server.Host)
	}

	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("expected port %d, got %d", DefaultServerPort, cfg.Server.Port)
	}

	if cfg.Analysis.Stride != DefaultAnalysisStride {
		t.Errorf("expected stride %d, got %d", DefaultAnalysisStride, cfg.Analysis.Stride)
	}

	// Verify test upstream is added
	if len(cfg.Upstreams) == 0 {
		t.Fatal("expected at least one upstream, got none")
	}

	guard := cfg.Upstreams[0]
	if guard.Name != "guard" {
		t.Errorf("expected upstream name %q, got %q", "guard", guard.Name)
	}
	if guard.Endpoint == "" {
		t.Error("expected guard endpoint to be set")
	}
}

func TestServerConfigAddr(t *testing.T) {
	cfg := ServerConfig{Host: "0.0.0.0", Port: 9090}

	if got := cfg.Addr(); got != "0.0.0.0:9090" {
		t.Errorf("expected addr %q, got %q", "0.0.0.0:9090", got)
	}
}

func TestConfigBuilder_WithHostPort(t *testing.T) {
	cfg := NewTestConfig().
		WithHost("0.0.0.0").
		WithPort(9090).
		Build()

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host %q, got %q", "0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port %d, got %d", 9090, cfg.Server.Port)
	}
}

func TestConfigBuilder_WithUpstream(t *testing.T) {
	voiceprint := UpstreamConfig{
		Name:       "voiceprint",
		Endpoint:   "https://voiceprint.example.com/v2/analyze",
		APIKey:     "test-voiceprint-key",
		Extraction: "probability",
		Timeout:    30 * time.Second,
		MaxRetries: 5,
	}

	cfg := NewTestConfig().
		WithUpstream(voiceprint).
		Build()

	var found *UpstreamConfig
	for i := range cfg.Upstreams {
		if cfg.Upstreams[i].Name == "voiceprint" {
			found = &cfg.Upstreams[i]
		}
	}
	if found == nil {
		t.Fatal("expected voiceprint upstream, got none")
	}

	if found.Endpoint != voiceprint.Endpoint {
		t.Errorf("expected endpoint %q, got %q", voiceprint.Endpoint, found.Endpoint)
	}
	if found.APIKey != voiceprint.APIKey {
		t.Errorf("expected API key %q, got %q", voiceprint.APIKey, found.APIKey)
	}
	if found.Timeout != voiceprint.Timeout {
		t.Errorf("expected timeout %v, got %v", voiceprint.Timeout, found.Timeout)
	}
}

func TestConfigBuilder_WithUpstreamReplacesByName(t *testing.T) {
	cfg := NewTestConfig().
		WithUpstream(UpstreamConfig{
			Name:     "guard",
			Endpoint: "https://guard.internal/v1/detect",
			APIKey:   "rotated-key",
		}).
		Build()

	if len(cfg.Upstreams) != 1 {
		t.Fatalf("expected 1 upstream, got %d", len(cfg.Upstreams))
	}
	if cfg.Upstreams[0].Endpoint != "https://guard.internal/v1/detect" {
		t.Errorf("expected replaced endpoint, got %q", cfg.Upstreams[0].Endpoint)
	}
}

func TestConfigBuilder_WithoutUpstreams(t *testing.T) {
	cfg := NewTestConfig().
		WithoutUpstreams().
		Build()

	if len(cfg.Upstreams) != 0 {
		t.Errorf("expected no upstreams, got %d", len(cfg.Upstreams))
	}

	// An empty upstream list is still a valid configuration
	if err := Validate(cfg); err != nil {
		t.Errorf("config without upstreams should be valid, got error: %v", err)
	}
}

func TestConfigBuilder_WithSinkKinds(t *testing.T) {
	tests := []struct {
		name    string
		builder func() *ConfigBuilder
		want    string
	}{
		{
			name: "log",
			builder: func() *ConfigBuilder {
				return NewTestConfig().WithSink("log", "")
			},
			want: "log",
		},
		{
			name: "webhook",
			builder: func() *ConfigBuilder {
				return NewTestConfig().WithSink("webhook", "https://hooks.example.com/reports")
			},
			want: "webhook",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.builder().Build()
			if !cfg.Sink.Enabled {
				t.Error("expected sink to be enabled")
			}
			if cfg.Sink.Kind != tt.want {
				t.Errorf("expected kind %q, got %q", tt.want, cfg.Sink.Kind)
			}
		})
	}
}

func TestConfigBuilder_WithTLS(t *testing.T) {
	cfg := NewTestConfig().
		WithTLS("/path/to/cert.pem", "/path/to/key.pem").
		Build()

	if !cfg.Server.TLS.Enabled {
		t.Error("expected TLS to be enabled")
	}
	if cfg.Server.TLS.CertFile != "/path/to/cert.pem" {
		t.Errorf("expected cert file %q, got %q", "/path/to/cert.pem", cfg.Server.TLS.CertFile)
	}
	if cfg.Server.TLS.KeyFile != "/path/to/key.pem" {
		t.Errorf("expected key file %q, got %q", "/path/to/key.pem", cfg.Server.TLS.KeyFile)
	}
}

func TestConfigBuilder_WithQuota(t *testing.T) {
	cfg := NewTestConfig().
		WithLimits("block").
		WithQuota("batch-runner", QuotaLimits{
			DailyRequests:   1000,
			MonthlyRequests: 20000,
		}).
		Build()

	if !cfg.Limits.Enabled {
		t.Error("expected limits to be enabled")
	}
	if cfg.Limits.Action != "block" {
		t.Errorf("expected action %q, got %q", "block", cfg.Limits.Action)
	}

	quota, exists := cfg.Limits.ByKey["batch-runner"]
	if !exists {
		t.Fatal("expected batch-runner quota, got none")
	}
	if quota.DailyRequests != 1000 {
		t.Errorf("expected daily requests %d, got %d", 1000, quota.DailyRequests)
	}
}

func TestConfigBuilder_ChainedCalls(t *testing.T) {
	cfg := NewTestConfig().
		WithHost("0.0.0.0").
		WithIntakeMaxBytes(8 << 20).
		WithLoggingLevel("debug").
		WithMetricsEnabled(true).
		Build()

	if cfg.Server.Host != "0.0.0.0" {
		t.Error("chained WithHost failed")
	}
	if cfg.Intake.MaxBytes != 8<<20 {
		t.Error("chained WithIntakeMaxBytes failed")
	}
	if cfg.Logging.Level != "debug" {
		t.Error("chained WithLoggingLevel failed")
	}
	if !cfg.Metrics.Enabled {
		t.Error("chained WithMetricsEnabled failed")
	}
}

func TestMinimalConfig(t *testing.T) {
	cfg := MinimalConfig()

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	// Verify it's a valid config that would pass validation
	if err := Validate(cfg); err != nil {
		t.Errorf("minimal config should be valid, got error: %v", err)
	}
}
