// Package config provides configuration management for Clarion.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration structure for Clarion. It contains every
// section of the service configuration and is immutable after startup.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Intake contains artifact intake configuration.
	Intake IntakeConfig `yaml:"intake"`

	// Analysis contains feature-extraction tuning.
	Analysis AnalysisConfig `yaml:"analysis"`

	// Upstreams lists the external classifier services consulted per
	// analysis. An empty list is valid; scoring falls back to heuristics.
	Upstreams []UpstreamConfig `yaml:"upstreams"`

	// Scoring contains composite score weighting.
	Scoring ScoringConfig `yaml:"scoring"`

	// Sink contains report forwarding configuration.
	Sink SinkConfig `yaml:"sink"`

	// Storage contains the report archive configuration.
	Storage StorageConfig `yaml:"storage"`

	// Limits contains per-key usage quota configuration.
	Limits LimitsConfig `yaml:"limits"`

	// Auth contains API key authentication configuration.
	Auth AuthConfig `yaml:"auth"`

	// Secrets contains secret reference resolution configuration.
	// Sensitive fields may hold ${secret:name} references instead of
	// literal values; they are resolved at startup.
	Secrets SecretsConfig `yaml:"secrets"`

	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// Host is the interface the server binds to.
	// Default: "127.0.0.1"
	Host string `yaml:"host"`

	// Port is the TCP port the server listens on.
	// Default: 8085
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading a request body.
	// A full-size upload over a slow link needs headroom here.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing the response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum duration to wait for the next request
	// on a keep-alive connection.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds one analysis request end to end, including
	// remote fetch and upstream fan-out.
	// Default: 60s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes is the maximum size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// TLS contains TLS configuration for the server.
	TLS TLSConfig `yaml:"tls"`

	// CORS contains CORS configuration for browser clients.
	CORS CORSConfig `yaml:"cors"`
}

// Addr returns the host:port the server binds to.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TLSConfig contains TLS configuration.
type TLSConfig struct {
	// Enabled controls whether TLS is enabled for the server.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the TLS certificate file.
	// Required when Enabled is true.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the TLS private key file.
	// Required when Enabled is true.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept.
	// Options: "1.2", "1.3"
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`

	// CipherSuites restricts the TLS 1.2 cipher suites by name. TLS 1.3
	// suites are fixed by the protocol. An empty list uses Go's defaults.
	CipherSuites []string `yaml:"cipher_suites"`

	// ReloadInterval is how often the certificate pair is checked for
	// changes on disk, so renewed certificates are picked up without a
	// restart.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"cert_reload_interval"`

	// MTLS contains mutual TLS (client certificate) configuration.
	MTLS MTLSConfig `yaml:"mtls"`
}

// MTLSConfig contains mutual TLS configuration. Client certificates gate
// the transport only; caller identity still comes from API keys.
type MTLSConfig struct {
	// Enabled controls whether client certificates are requested.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ClientCAFile is the path to the CA bundle that client certificates
	// are verified against.
	// Required when Enabled is true.
	ClientCAFile string `yaml:"client_ca_file"`

	// ClientAuthType controls how a missing client certificate is handled.
	// Options: "require", "request", "verify_if_given"
	// Default: "require"
	ClientAuthType string `yaml:"client_auth_type"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are sent.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of origins allowed to make requests.
	// Use ["*"] to allow all origins.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of HTTP methods allowed for CORS requests.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of request headers clients may send.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of response headers exposed to clients.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is how long (in seconds) preflight results may be cached.
	// Default: 3600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// IntakeConfig contains configuration for artifact intake.
type IntakeConfig struct {
	// MaxBytes is the artifact size ceiling in bytes. It applies to all
	// three intake modes after decoding.
	// Default: 16777216 (16 MiB)
	MaxBytes int64 `yaml:"max_bytes"`

	// FetchTimeout bounds one remote artifact fetch.
	// Default: 15s
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// UserAgent identifies Clarion to remote artifact hosts.
	// Default: "clarion-fetch/1.0"
	UserAgent string `yaml:"user_agent"`
}

// AnalysisConfig tunes the feature-extraction heuristics. A zero value on
// any numeric field selects the built-in default.
type AnalysisConfig struct {
	// Stride is the sampling interval of the silence scan in bytes.
	// Default: 4
	Stride int `yaml:"stride"`

	// RunThreshold is the number of consecutive flat samples that counts
	// as one silence segment.
	// Default: 64
	RunThreshold int `yaml:"run_threshold"`

	// SegmentThreshold is the segment count above which the artifact is
	// flagged for digital silence.
	// Default: 3
	SegmentThreshold int `yaml:"segment_threshold"`

	// DynamicRangeFloor is the byte-value range below which the artifact
	// is flagged as over-compressed.
	// Default: 30
	DynamicRangeFloor int `yaml:"dynamic_range_floor"`

	// Heuristics toggles the silence and dynamic-range heuristics.
	// Options: "on", "off"
	// Default: "on"
	Heuristics string `yaml:"heuristics"`
}

// UpstreamConfig describes one external classifier service.
type UpstreamConfig struct {
	// Name identifies the upstream in signals, logs, and metrics.
	// Names must be unique across the upstreams list.
	Name string `yaml:"name"`

	// Endpoint is the full URL the artifact is posted to.
	// Example: "https://detector.example.com/v1/classify"
	Endpoint string `yaml:"endpoint"`

	// APIKey is sent as a bearer token when non-empty.
	// This should typically be loaded from an environment variable.
	APIKey string `yaml:"api_key"`

	// AuthHeader overrides the Authorization header name (some services
	// use X-API-Key).
	// Default: "" (standard Authorization header)
	AuthHeader string `yaml:"auth_header"`

	// PayloadStyle selects how the artifact is carried to the upstream.
	// Options: "binary", "base64-json"
	// Default: "binary"
	PayloadStyle string `yaml:"payload_style"`

	// Extraction names the response-shape rule used to pull a score.
	// Options: "score", "probability", "labels", "text"
	// Default: "score"
	Extraction string `yaml:"extraction"`

	// Timeout bounds one upstream call including retries.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the retry budget for transient upstream errors.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`
}

// ScoringConfig contains composite score configuration.
type ScoringConfig struct {
	// Weights controls how much each component contributes to the
	// composite score.
	Weights WeightsConfig `yaml:"weights"`
}

// WeightsConfig contains the component weights of the composite score.
// Weights are plain multipliers; the composite is clamped to [0,1] after
// summation. Leaving every weight at zero selects the stock weighting.
type WeightsConfig struct {
	// External weights the best score reported by upstream classifiers.
	// Default: 0.65
	External float64 `yaml:"external"`

	// Entropy weights the normalized Shannon entropy of the payload.
	// Default: 0.25
	Entropy float64 `yaml:"entropy"`

	// SilenceDynamics weights the digital-silence and dynamic-range
	// heuristics.
	// Default: 0.25
	SilenceDynamics float64 `yaml:"silence_dynamics"`

	// EncoderFingerprint weights the presence of a known encoder trace.
	// Default: 0.15
	EncoderFingerprint float64 `yaml:"encoder_fingerprint"`

	// SizeFactor weights payload size relative to the intake ceiling.
	// Default: 0.10
	SizeFactor float64 `yaml:"size_factor"`
}

// SinkConfig contains configuration for report forwarding.
type SinkConfig struct {
	// Enabled controls whether completed reports are forwarded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Kind selects the sink implementation.
	// Options: "log", "webhook"
	// Default: "log"
	Kind string `yaml:"kind"`

	// URL is the webhook delivery endpoint.
	// Required when Kind is "webhook".
	URL string `yaml:"url"`

	// Headers are extra HTTP headers sent with each webhook delivery.
	Headers map[string]string `yaml:"headers"`

	// Timeout bounds one delivery attempt.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`

	// Buffer is the size of the delivery queue. Reports are dropped,
	// never blocked on, when the queue is full.
	// Default: 1000
	Buffer int `yaml:"buffer"`

	// Workers is the number of delivery workers.
	// Default: 1
	Workers int `yaml:"workers"`
}

// StorageConfig contains configuration for the report archive.
type StorageConfig struct {
	// Enabled controls whether completed reports are archived.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	// Default: "data/reports.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// RetentionDays is the number of days to retain archived reports.
	// 0 means keep reports forever.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords is the maximum number of reports to keep.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// LimitsConfig contains per-key usage quota configuration.
type LimitsConfig struct {
	// Enabled controls whether quota tracking is enforced.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Action is taken when a key exceeds a quota.
	// Options: "warn" (log and allow), "block" (reject with 429)
	// Default: "warn"
	Action string `yaml:"action"`

	// StoragePath is the SQLite file quota counters are snapshotted to,
	// so restarts keep window totals.
	// Default: "data/limits.db"
	StoragePath string `yaml:"storage_path"`

	// SnapshotInterval is how often counters are flushed to storage.
	// Default: 5m
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`

	// ByKey contains per-key quotas, keyed by API key name.
	ByKey map[string]QuotaLimits `yaml:"by_key"`
}

// QuotaLimits contains usage quotas for one API key over rolling windows.
// A zero value means no limit on that dimension.
type QuotaLimits struct {
	// DailyRequests limits analysis requests per rolling 24-hour window.
	DailyRequests int64 `yaml:"daily_requests"`

	// MonthlyRequests limits analysis requests per rolling 30-day window.
	MonthlyRequests int64 `yaml:"monthly_requests"`

	// DailyBytes limits bytes analyzed per rolling 24-hour window.
	DailyBytes int64 `yaml:"daily_bytes"`

	// MonthlyBytes limits bytes analyzed per rolling 30-day window.
	MonthlyBytes int64 `yaml:"monthly_bytes"`
}

// AuthConfig contains API key authentication configuration.
type AuthConfig struct {
	// Enabled controls whether API key authentication is enforced.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Keys is the list of valid API keys.
	Keys []APIKeyConfig `yaml:"keys"`
}

// APIKeyConfig contains configuration for a single API key.
type APIKeyConfig struct {
	// Name is the operator-assigned label for this key. It appears in
	// logs, metrics, and quota records; the secret never does.
	Name string `yaml:"name"`

	// Key is the API key value.
	// Should be cryptographically random (min 16 characters enforced).
	Key string `yaml:"key"`

	// Disabled takes the key out of rotation without deleting it.
	// Default: false
	Disabled bool `yaml:"disabled,omitempty"`
}

// SecretsConfig contains secret reference resolution configuration.
// References are tried against the environment first, then the secrets
// directory when one is configured.
type SecretsConfig struct {
	// EnvPrefix is the environment variable prefix for secrets. The
	// reference ${secret:guard-api-key} resolves to the variable
	// CLARION_SECRET_GUARD_API_KEY under the default prefix.
	// Default: "CLARION_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir is a directory holding one secret per file, as mounted by
	// Kubernetes secret volumes. Empty disables the file source.
	Dir string `yaml:"dir"`

	// Cache contains secret caching configuration.
	Cache SecretsCacheConfig `yaml:"cache"`
}

// SecretsCacheConfig contains configuration for secret caching.
type SecretsCacheConfig struct {
	// Enabled controls whether resolved secrets are cached.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// TTL is the time-to-live for cached secrets.
	// Default: 5m
	TTL time.Duration `yaml:"ttl"`

	// MaxSize is the maximum number of secrets to cache.
	// Default: 1000
	MaxSize int `yaml:"max_size"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Redaction toggles automatic secret redaction in log output.
	// Options: "on", "off"
	// Default: "on"
	Redaction string `yaml:"redaction"`

	// BufferSize is the number of recent log lines retained in memory
	// for the diagnostics endpoint.
	// Default: 1000
	BufferSize int `yaml:"buffer_size"`

	// RedactPatterns contains custom redaction patterns applied in
	// addition to the built-in secret patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Port is an optional separate port for metrics (0 = use server port).
	// Default: 0
	Port int `yaml:"port"`

	// Namespace is the metric name prefix.
	// Default: "clarion"
	Namespace string `yaml:"namespace"`

	// RequestDurationBuckets defines histogram buckets for request
	// duration (seconds). Empty selects the collector defaults.
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`

	// PayloadSizeBuckets defines histogram buckets for artifact sizes
	// (bytes). Empty selects the collector defaults.
	PayloadSizeBuckets []float64 `yaml:"payload_size_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter to use.
	// Options: "otlp", "jaeger", "zipkin"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the trace collector endpoint.
	// Example: "localhost:4317" (OTLP)
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "clarion"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`

	// Jaeger contains Jaeger exporter specific configuration.
	Jaeger JaegerConfig `yaml:"jaeger"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection. Set this when the
	// collector listens in plaintext (the common local setup).
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// JaegerConfig contains Jaeger exporter configuration.
type JaegerConfig struct {
	// AgentHost is the Jaeger agent hostname.
	// Default: "localhost"
	AgentHost string `yaml:"agent_host"`

	// AgentPort is the Jaeger agent port.
	// Default: 6831
	AgentPort int `yaml:"agent_port"`
}
