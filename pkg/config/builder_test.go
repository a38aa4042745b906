package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{}
	ApplyDefaults(&cfg)

	// Add a default upstream for tests
	cfg.Upstreams = []UpstreamConfig{
		{
			Name:         "guard",
			Endpoint:     "https://api.example.com/v1/detect",
			APIKey:       "test-key",
			PayloadStyle: DefaultUpstreamPayloadStyle,
			Extraction:   DefaultUpstreamExtraction,
			Timeout:      DefaultUpstreamTimeout,
			MaxRetries:   DefaultUpstreamMaxRetries,
		},
	}

	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithHost sets the server host.
func (b *ConfigBuilder) WithHost(host string) *ConfigBuilder {
	b.cfg.Server.Host = host
	return b
}

// WithPort sets the server port.
func (b *ConfigBuilder) WithPort(port int) *ConfigBuilder {
	b.cfg.Server.Port = port
	return b
}

// WithRequestTimeout sets the per-request timeout.
func (b *ConfigBuilder) WithRequestTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Server.RequestTimeout = d
	return b
}

// WithUpstream adds or updates an upstream configuration, matched by name.
func (b *ConfigBuilder) WithUpstream(upstream UpstreamConfig) *ConfigBuilder {
	for i := range b.cfg.Upstreams {
		if b.cfg.Upstreams[i].Name == upstream.Name {
			b.cfg.Upstreams[i] = upstream
			return b
		}
	}
	b.cfg.Upstreams = append(b.cfg.Upstreams, upstream)
	return b
}

// WithoutUpstreams clears the upstream list. Scoring then relies on
// heuristics alone.
func (b *ConfigBuilder) WithoutUpstreams() *ConfigBuilder {
	b.cfg.Upstreams = nil
	return b
}

// WithWeights sets the scoring weights.
func (b *ConfigBuilder) WithWeights(w WeightsConfig) *ConfigBuilder {
	b.cfg.Scoring.Weights = w
	return b
}

// WithIntakeMaxBytes sets the intake size cap.
func (b *ConfigBuilder) WithIntakeMaxBytes(n int64) *ConfigBuilder {
	b.cfg.Intake.MaxBytes = n
	return b
}

// WithSink enables the report sink with the given kind and URL.
func (b *ConfigBuilder) WithSink(kind, url string) *ConfigBuilder {
	b.cfg.Sink.Enabled = true
	b.cfg.Sink.Kind = kind
	b.cfg.Sink.URL = url
	return b
}

// WithStoragePath enables report storage at the given SQLite path.
func (b *ConfigBuilder) WithStoragePath(path string) *ConfigBuilder {
	b.cfg.Storage.Enabled = true
	b.cfg.Storage.Path = path
	return b
}

// WithLimits enables quota enforcement with the given action.
func (b *ConfigBuilder) WithLimits(action string) *ConfigBuilder {
	b.cfg.Limits.Enabled = true
	b.cfg.Limits.Action = action
	return b
}

// WithQuota sets quota limits for a named API key.
func (b *ConfigBuilder) WithQuota(name string, limits QuotaLimits) *ConfigBuilder {
	if b.cfg.Limits.ByKey == nil {
		b.cfg.Limits.ByKey = make(map[string]QuotaLimits)
	}
	b.cfg.Limits.ByKey[name] = limits
	return b
}

// WithAuthKey enables authentication and adds a named API key.
func (b *ConfigBuilder) WithAuthKey(name, key string) *ConfigBuilder {
	b.cfg.Auth.Enabled = true
	b.cfg.Auth.Keys = append(b.cfg.Auth.Keys, APIKeyConfig{Name: name, Key: key})
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Logging.Format = format
	return b
}

// WithMetricsEnabled sets whether metrics are enabled.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Metrics.Enabled = enabled
	return b
}

// WithTracingEnabled sets whether tracing is enabled.
func (b *ConfigBuilder) WithTracingEnabled(enabled bool, endpoint string) *ConfigBuilder {
	b.cfg.Tracing.Enabled = enabled
	b.cfg.Tracing.Endpoint = endpoint
	if b.cfg.Tracing.SampleRatio == 0 {
		b.cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	return b
}

// WithTLS sets TLS configuration.
func (b *ConfigBuilder) WithTLS(certFile, keyFile string) *ConfigBuilder {
	b.cfg.Server.TLS.Enabled = true
	b.cfg.Server.TLS.CertFile = certFile
	b.cfg.Server.TLS.KeyFile = keyFile
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
// This is useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
