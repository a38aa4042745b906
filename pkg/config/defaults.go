package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultServerHost      = "127.0.0.1"
	DefaultServerPort      = 8085
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 60 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// TLS defaults
	DefaultTLSMinVersion      = "1.3"
	DefaultTLSReloadInterval  = 5 * time.Minute
	DefaultMTLSClientAuthType = "require"

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Intake defaults
	DefaultIntakeMaxBytes     = int64(16 << 20) // 16 MiB
	DefaultIntakeFetchTimeout = 15 * time.Second
	DefaultIntakeUserAgent    = "clarion-fetch/1.0"

	// Analysis defaults, mirroring the extractor's built-in parameters
	DefaultAnalysisStride            = 4
	DefaultAnalysisRunThreshold      = 64
	DefaultAnalysisSegmentThreshold  = 3
	DefaultAnalysisDynamicRangeFloor = 30

	// Upstream defaults
	DefaultUpstreamPayloadStyle = "binary"
	DefaultUpstreamExtraction   = "score"
	DefaultUpstreamTimeout      = 10 * time.Second
	DefaultUpstreamMaxRetries   = 2

	// Scoring defaults, mirroring the scorer's stock weighting
	DefaultWeightExternal           = 0.65
	DefaultWeightEntropy            = 0.25
	DefaultWeightSilenceDynamics    = 0.25
	DefaultWeightEncoderFingerprint = 0.15
	DefaultWeightSizeFactor         = 0.10

	// Sink defaults
	DefaultSinkKind    = "log"
	DefaultSinkTimeout = 5 * time.Second
	DefaultSinkBuffer  = 1000
	DefaultSinkWorkers = 1

	// Storage defaults
	DefaultStoragePath          = "data/reports.db"
	DefaultStorageMaxOpenConns  = 10
	DefaultStorageMaxIdleConns  = 5
	DefaultStorageBusyTimeout   = 5 * time.Second
	DefaultStorageRetentionDays = 90
	DefaultStoragePruneSchedule = "0 3 * * *"
	DefaultStorageMaxRecords    = int64(0)

	// Limits defaults
	DefaultLimitsAction           = "warn"
	DefaultLimitsStoragePath      = "data/limits.db"
	DefaultLimitsSnapshotInterval = 5 * time.Minute

	// Secrets defaults
	DefaultSecretsEnvPrefix    = "CLARION_SECRET_"
	DefaultSecretsCacheTTL     = 5 * time.Minute
	DefaultSecretsCacheMaxSize = 1000

	// Logging defaults
	DefaultLoggingLevel      = "info"
	DefaultLoggingFormat     = "json"
	DefaultLoggingRedaction  = "on"
	DefaultLoggingBufferSize = 1000

	// Metrics defaults
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "clarion"

	// Tracing defaults
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingExporter    = "otlp"
	DefaultTracingServiceName = "clarion"
	DefaultTracingOTLPTimeout = 10 * time.Second
	DefaultJaegerAgentHost    = "localhost"
	DefaultJaegerAgentPort    = 6831

	// Toggle values shared by analysis.heuristics and logging.redaction
	ToggleOn  = "on"
	ToggleOff = "off"
)

// ApplyDefaults applies default values to a Config struct. It sets defaults
// for any fields that have zero values. This function is idempotent and
// safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Server.TLS.ReloadInterval == 0 {
		cfg.Server.TLS.ReloadInterval = DefaultTLSReloadInterval
	}
	if cfg.Server.TLS.MTLS.ClientAuthType == "" {
		cfg.Server.TLS.MTLS.ClientAuthType = DefaultMTLSClientAuthType
	}

	// CORS defaults
	applyCORSDefaults(&cfg.Server.CORS)

	// Intake defaults
	if cfg.Intake.MaxBytes == 0 {
		cfg.Intake.MaxBytes = DefaultIntakeMaxBytes
	}
	if cfg.Intake.FetchTimeout == 0 {
		cfg.Intake.FetchTimeout = DefaultIntakeFetchTimeout
	}
	if cfg.Intake.UserAgent == "" {
		cfg.Intake.UserAgent = DefaultIntakeUserAgent
	}

	// Analysis defaults
	if cfg.Analysis.Stride == 0 {
		cfg.Analysis.Stride = DefaultAnalysisStride
	}
	if cfg.Analysis.RunThreshold == 0 {
		cfg.Analysis.RunThreshold = DefaultAnalysisRunThreshold
	}
	if cfg.Analysis.SegmentThreshold == 0 {
		cfg.Analysis.SegmentThreshold = DefaultAnalysisSegmentThreshold
	}
	if cfg.Analysis.DynamicRangeFloor == 0 {
		cfg.Analysis.DynamicRangeFloor = DefaultAnalysisDynamicRangeFloor
	}
	if cfg.Analysis.Heuristics == "" {
		cfg.Analysis.Heuristics = ToggleOn
	}

	// Upstream defaults, applied to each entry
	for i := range cfg.Upstreams {
		u := &cfg.Upstreams[i]
		if u.PayloadStyle == "" {
			u.PayloadStyle = DefaultUpstreamPayloadStyle
		}
		if u.Extraction == "" {
			u.Extraction = DefaultUpstreamExtraction
		}
		if u.Timeout == 0 {
			u.Timeout = DefaultUpstreamTimeout
		}
		if u.MaxRetries == 0 {
			u.MaxRetries = DefaultUpstreamMaxRetries
		}
	}

	// Scoring defaults. A fully zero weight set means the section was not
	// configured; a partially set one is the operator's full intent, so a
	// deliberate single-component weighting stays possible.
	applyWeightDefaults(&cfg.Scoring.Weights)

	// Sink defaults
	if cfg.Sink.Kind == "" {
		cfg.Sink.Kind = DefaultSinkKind
	}
	if cfg.Sink.Timeout == 0 {
		cfg.Sink.Timeout = DefaultSinkTimeout
	}
	if cfg.Sink.Buffer == 0 {
		cfg.Sink.Buffer = DefaultSinkBuffer
	}
	if cfg.Sink.Workers == 0 {
		cfg.Sink.Workers = DefaultSinkWorkers
	}

	// Storage defaults
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Storage.MaxOpenConns == 0 {
		cfg.Storage.MaxOpenConns = DefaultStorageMaxOpenConns
	}
	if cfg.Storage.MaxIdleConns == 0 {
		cfg.Storage.MaxIdleConns = DefaultStorageMaxIdleConns
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = DefaultStorageBusyTimeout
	}
	if cfg.Storage.RetentionDays == 0 {
		cfg.Storage.RetentionDays = DefaultStorageRetentionDays
	}
	if cfg.Storage.PruneSchedule == "" {
		cfg.Storage.PruneSchedule = DefaultStoragePruneSchedule
	}

	// Limits defaults
	if cfg.Limits.Action == "" {
		cfg.Limits.Action = DefaultLimitsAction
	}
	if cfg.Limits.StoragePath == "" {
		cfg.Limits.StoragePath = DefaultLimitsStoragePath
	}
	if cfg.Limits.SnapshotInterval == 0 {
		cfg.Limits.SnapshotInterval = DefaultLimitsSnapshotInterval
	}

	// Secrets defaults
	applySecretsDefaults(&cfg.Secrets)

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Logging.Redaction == "" {
		cfg.Logging.Redaction = DefaultLoggingRedaction
	}
	if cfg.Logging.BufferSize == 0 {
		cfg.Logging.BufferSize = DefaultLoggingBufferSize
	}

	// Metrics defaults
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Tracing defaults
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.OTLP.Timeout == 0 {
		cfg.Tracing.OTLP.Timeout = DefaultTracingOTLPTimeout
	}
	if cfg.Tracing.Jaeger.AgentHost == "" {
		cfg.Tracing.Jaeger.AgentHost = DefaultJaegerAgentHost
	}
	if cfg.Tracing.Jaeger.AgentPort == 0 {
		cfg.Tracing.Jaeger.AgentPort = DefaultJaegerAgentPort
	}
}

// applyCORSDefaults applies default values to CORS configuration.
func applyCORSDefaults(cors *CORSConfig) {
	// Enabled defaults to true, but a bool zero value cannot distinguish
	// "unset" from "explicitly false". Treat an otherwise empty section
	// as unset.
	if !cors.Enabled {
		hasAnyConfig := len(cors.AllowedOrigins) > 0 ||
			len(cors.AllowedMethods) > 0 ||
			len(cors.AllowedHeaders) > 0 ||
			len(cors.ExposedHeaders) > 0 ||
			cors.MaxAge > 0

		if !hasAnyConfig {
			cors.Enabled = DefaultCORSEnabled
		}
	}

	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}

	// AllowCredentials defaults to false (zero value), which is correct
}

// applySecretsDefaults applies default values to secrets configuration.
func applySecretsDefaults(s *SecretsConfig) {
	if s.EnvPrefix == "" {
		s.EnvPrefix = DefaultSecretsEnvPrefix
	}

	// Cache enabled defaults to true; an otherwise empty cache section is
	// treated as unset, the same way the CORS section is.
	if !s.Cache.Enabled && s.Cache.TTL == 0 && s.Cache.MaxSize == 0 {
		s.Cache.Enabled = true
	}
	if s.Cache.TTL == 0 {
		s.Cache.TTL = DefaultSecretsCacheTTL
	}
	if s.Cache.MaxSize == 0 {
		s.Cache.MaxSize = DefaultSecretsCacheMaxSize
	}
}

// applyWeightDefaults fills the stock weighting when no weight was set.
// A partially specified weight set is left untouched.
func applyWeightDefaults(w *WeightsConfig) {
	if w.External != 0 || w.Entropy != 0 || w.SilenceDynamics != 0 ||
		w.EncoderFingerprint != 0 || w.SizeFactor != 0 {
		return
	}
	w.External = DefaultWeightExternal
	w.Entropy = DefaultWeightEntropy
	w.SilenceDynamics = DefaultWeightSilenceDynamics
	w.EncoderFingerprint = DefaultWeightEncoderFingerprint
	w.SizeFactor = DefaultWeightSizeFactor
}
