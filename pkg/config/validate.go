package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.port").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateIntake(&cfg.Intake)...)
	errs = append(errs, validateAnalysis(&cfg.Analysis)...)
	errs = append(errs, validateUpstreams(cfg.Upstreams)...)
	errs = append(errs, validateScoring(&cfg.Scoring)...)
	errs = append(errs, validateSink(&cfg.Sink)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateLimits(&cfg.Limits)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateSecrets(&cfg.Secrets)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateTracing(&cfg.Tracing)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateToggle checks an on/off string knob.
func validateToggle(field, value string) []FieldError {
	if value == "" || value == ToggleOn || value == ToggleOff {
		return nil
	}
	return []FieldError{{
		Field:   field,
		Message: fmt.Sprintf("invalid value %q: must be 'on' or 'off'", value),
	}}
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.Host == "" {
		errs = append(errs, FieldError{
			Field:   "server.host",
			Message: "host is required",
		})
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "server.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.request_timeout",
			Message: "request timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	// TLS
	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.cert_file",
				Message: "TLS certificate file is required when TLS is enabled",
			})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.key_file",
				Message: "TLS key file is required when TLS is enabled",
			})
		}
	}
	switch cfg.TLS.MinVersion {
	case "", "1.2", "1.3":
	default:
		errs = append(errs, FieldError{
			Field:   "server.tls.min_version",
			Message: fmt.Sprintf("invalid TLS version %q: must be '1.2' or '1.3'", cfg.TLS.MinVersion),
		})
	}
	if cfg.TLS.ReloadInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "server.tls.cert_reload_interval",
			Message: "certificate reload interval must be positive",
		})
	}

	// Mutual TLS
	if cfg.TLS.MTLS.Enabled {
		if !cfg.TLS.Enabled {
			errs = append(errs, FieldError{
				Field:   "server.tls.mtls.enabled",
				Message: "mutual TLS requires TLS to be enabled",
			})
		}
		if cfg.TLS.MTLS.ClientCAFile == "" {
			errs = append(errs, FieldError{
				Field:   "server.tls.mtls.client_ca_file",
				Message: "client CA file is required when mutual TLS is enabled",
			})
		}
	}
	switch cfg.TLS.MTLS.ClientAuthType {
	case "", "require", "request", "verify_if_given":
	default:
		errs = append(errs, FieldError{
			Field:   "server.tls.mtls.client_auth_type",
			Message: fmt.Sprintf("invalid client auth type %q: must be 'require', 'request', or 'verify_if_given'", cfg.TLS.MTLS.ClientAuthType),
		})
	}

	return errs
}

// validateIntake validates intake configuration.
func validateIntake(cfg *IntakeConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "intake.max_bytes",
			Message: "max bytes must be non-negative",
		})
	}
	if cfg.MaxBytes > 512<<20 { // 512 MiB is excessive for an audio artifact
		errs = append(errs, FieldError{
			Field:   "intake.max_bytes",
			Message: "max bytes exceeds reasonable limit (512 MiB)",
		})
	}
	if cfg.FetchTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "intake.fetch_timeout",
			Message: "fetch timeout must be positive",
		})
	}
	if cfg.FetchTimeout > 5*time.Minute {
		errs = append(errs, FieldError{
			Field:   "intake.fetch_timeout",
			Message: "fetch timeout exceeds reasonable limit (5m)",
		})
	}

	return errs
}

// validateAnalysis validates analysis configuration.
func validateAnalysis(cfg *AnalysisConfig) []FieldError {
	var errs []FieldError

	if cfg.Stride < 0 {
		errs = append(errs, FieldError{
			Field:   "analysis.stride",
			Message: "stride must be non-negative",
		})
	}
	if cfg.RunThreshold < 0 {
		errs = append(errs, FieldError{
			Field:   "analysis.run_threshold",
			Message: "run threshold must be non-negative",
		})
	}
	if cfg.SegmentThreshold < 0 {
		errs = append(errs, FieldError{
			Field:   "analysis.segment_threshold",
			Message: "segment threshold must be non-negative",
		})
	}
	if cfg.DynamicRangeFloor < 0 || cfg.DynamicRangeFloor > 255 {
		errs = append(errs, FieldError{
			Field:   "analysis.dynamic_range_floor",
			Message: "dynamic range floor must be between 0 and 255",
		})
	}
	errs = append(errs, validateToggle("analysis.heuristics", cfg.Heuristics)...)

	return errs
}

// validateUpstreams validates the upstream classifier list. An empty list is
// valid; analysis then scores on heuristics alone.
func validateUpstreams(upstreams []UpstreamConfig) []FieldError {
	var errs []FieldError

	seen := make(map[string]bool, len(upstreams))
	for i, u := range upstreams {
		prefix := fmt.Sprintf("upstreams[%d]", i)
		if u.Name != "" {
			prefix = fmt.Sprintf("upstreams.%s", u.Name)
		}

		if u.Name == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: "name is required",
			})
		} else if seen[u.Name] {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("duplicate upstream name %q", u.Name),
			})
		}
		seen[u.Name] = true

		if u.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".endpoint",
				Message: "endpoint is required",
			})
		} else {
			parsed, err := url.Parse(u.Endpoint)
			if err != nil {
				errs = append(errs, FieldError{
					Field:   prefix + ".endpoint",
					Message: fmt.Sprintf("invalid URL format: %v", err),
				})
			} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
				errs = append(errs, FieldError{
					Field:   prefix + ".endpoint",
					Message: fmt.Sprintf("unsupported scheme %q: must be http or https", parsed.Scheme),
				})
			}
		}

		switch u.PayloadStyle {
		case "", "binary", "base64-json":
		default:
			errs = append(errs, FieldError{
				Field:   prefix + ".payload_style",
				Message: fmt.Sprintf("invalid payload style %q: must be 'binary' or 'base64-json'", u.PayloadStyle),
			})
		}

		switch u.Extraction {
		case "", "score", "probability", "labels", "text":
		default:
			errs = append(errs, FieldError{
				Field:   prefix + ".extraction",
				Message: fmt.Sprintf("invalid extraction %q: must be 'score', 'probability', 'labels', or 'text'", u.Extraction),
			})
		}

		if u.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".timeout",
				Message: "timeout must be positive",
			})
		}
		if u.Timeout > 2*time.Minute {
			errs = append(errs, FieldError{
				Field:   prefix + ".timeout",
				Message: "timeout exceeds reasonable limit (2m)",
			})
		}

		if u.MaxRetries < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".max_retries",
				Message: "max retries must be non-negative",
			})
		}
		if u.MaxRetries > 10 {
			errs = append(errs, FieldError{
				Field:   prefix + ".max_retries",
				Message: "max retries exceeds reasonable limit (10)",
			})
		}
	}

	return errs
}

// validateScoring validates scoring configuration.
func validateScoring(cfg *ScoringConfig) []FieldError {
	var errs []FieldError

	w := cfg.Weights
	fields := []struct {
		name  string
		value float64
	}{
		{"external", w.External},
		{"entropy", w.Entropy},
		{"silence_dynamics", w.SilenceDynamics},
		{"encoder_fingerprint", w.EncoderFingerprint},
		{"size_factor", w.SizeFactor},
	}

	sum := 0.0
	for _, f := range fields {
		if f.value < 0 {
			errs = append(errs, FieldError{
				Field:   "scoring.weights." + f.name,
				Message: "weight must be non-negative",
			})
		}
		sum += f.value
	}
	if len(errs) == 0 && sum == 0 {
		errs = append(errs, FieldError{
			Field:   "scoring.weights",
			Message: "at least one weight must be positive",
		})
	}

	return errs
}

// validateSink validates sink configuration.
func validateSink(cfg *SinkConfig) []FieldError {
	var errs []FieldError

	// If the sink is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	switch cfg.Kind {
	case "log":
	case "webhook":
		if cfg.URL == "" {
			errs = append(errs, FieldError{
				Field:   "sink.url",
				Message: "URL is required when kind is 'webhook'",
			})
		} else if _, err := url.Parse(cfg.URL); err != nil {
			errs = append(errs, FieldError{
				Field:   "sink.url",
				Message: fmt.Sprintf("invalid URL format: %v", err),
			})
		}
	case "":
		errs = append(errs, FieldError{
			Field:   "sink.kind",
			Message: "kind is required when the sink is enabled",
		})
	default:
		errs = append(errs, FieldError{
			Field:   "sink.kind",
			Message: fmt.Sprintf("invalid kind %q: must be 'log' or 'webhook'", cfg.Kind),
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "sink.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.Buffer < 0 {
		errs = append(errs, FieldError{
			Field:   "sink.buffer",
			Message: "buffer must be non-negative",
		})
	}
	if cfg.Workers < 0 {
		errs = append(errs, FieldError{
			Field:   "sink.workers",
			Message: "workers must be non-negative",
		})
	}
	if cfg.Workers > 64 {
		errs = append(errs, FieldError{
			Field:   "sink.workers",
			Message: "workers exceeds reasonable limit (64)",
		})
	}

	return errs
}

// validateStorage validates the report archive configuration.
func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	// If the archive is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "storage.path",
			Message: "path is required when storage is enabled",
		})
	}
	if cfg.MaxOpenConns < 0 {
		errs = append(errs, FieldError{
			Field:   "storage.max_open_conns",
			Message: "max open conns must be non-negative",
		})
	}
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   "storage.max_idle_conns",
			Message: "max idle conns must be non-negative",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "storage.busy_timeout",
			Message: "busy timeout must be positive",
		})
	}

	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "storage.retention_days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.RetentionDays > 3650 { // 10 years is excessive
		errs = append(errs, FieldError{
			Field:   "storage.retention_days",
			Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
		})
	}
	if cfg.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "storage.max_records",
			Message: "max records must be non-negative",
		})
	}

	return errs
}

// validateLimits validates quota configuration.
func validateLimits(cfg *LimitsConfig) []FieldError {
	var errs []FieldError

	// If quotas are disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	switch cfg.Action {
	case "warn", "block":
	case "":
		errs = append(errs, FieldError{
			Field:   "limits.action",
			Message: "action is required when limits are enabled",
		})
	default:
		errs = append(errs, FieldError{
			Field:   "limits.action",
			Message: fmt.Sprintf("invalid action %q: must be 'warn' or 'block'", cfg.Action),
		})
	}

	if cfg.StoragePath == "" {
		errs = append(errs, FieldError{
			Field:   "limits.storage_path",
			Message: "storage path is required when limits are enabled",
		})
	}
	if cfg.SnapshotInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "limits.snapshot_interval",
			Message: "snapshot interval must be positive",
		})
	}

	for name, limits := range cfg.ByKey {
		prefix := fmt.Sprintf("limits.by_key.%s", name)
		errs = append(errs, validateQuotaLimits(prefix, &limits)...)
	}

	return errs
}

// validateQuotaLimits validates quota values for one key.
func validateQuotaLimits(prefix string, limits *QuotaLimits) []FieldError {
	var errs []FieldError

	if limits.DailyRequests < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + ".daily_requests",
			Message: "daily requests must be non-negative",
		})
	}
	if limits.MonthlyRequests < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + ".monthly_requests",
			Message: "monthly requests must be non-negative",
		})
	}
	if limits.DailyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + ".daily_bytes",
			Message: "daily bytes must be non-negative",
		})
	}
	if limits.MonthlyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   prefix + ".monthly_bytes",
			Message: "monthly bytes must be non-negative",
		})
	}

	// A smaller window must not exceed a larger one
	if limits.DailyRequests > 0 && limits.MonthlyRequests > 0 && limits.DailyRequests > limits.MonthlyRequests {
		errs = append(errs, FieldError{
			Field:   prefix + ".daily_requests",
			Message: "daily requests cannot exceed monthly requests",
		})
	}
	if limits.DailyBytes > 0 && limits.MonthlyBytes > 0 && limits.DailyBytes > limits.MonthlyBytes {
		errs = append(errs, FieldError{
			Field:   prefix + ".daily_bytes",
			Message: "daily bytes cannot exceed monthly bytes",
		})
	}

	return errs
}

// validateAuth validates authentication configuration.
func validateAuth(cfg *AuthConfig) []FieldError {
	var errs []FieldError

	// If authentication is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	if len(cfg.Keys) == 0 {
		errs = append(errs, FieldError{
			Field:   "auth.keys",
			Message: "at least one key must be configured when auth is enabled",
		})
		return errs
	}

	names := make(map[string]bool, len(cfg.Keys))
	for i, key := range cfg.Keys {
		prefix := fmt.Sprintf("auth.keys[%d]", i)
		if key.Name != "" {
			prefix = fmt.Sprintf("auth.keys.%s", key.Name)
		}

		if key.Name == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: "name is required",
			})
		} else if names[key.Name] {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("duplicate key name %q", key.Name),
			})
		}
		names[key.Name] = true

		if key.Key == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".key",
				Message: "key is required",
			})
		} else if len(key.Key) < 16 && !strings.Contains(key.Key, "${secret:") {
			// Secret references resolve after validation; the length
			// floor applies to literal keys only.
			errs = append(errs, FieldError{
				Field:   prefix + ".key",
				Message: "key must be at least 16 characters",
			})
		}
	}

	return errs
}

// validateSecrets validates secret resolution configuration. Whether the
// secrets directory exists is checked when the resolver is built, not here.
func validateSecrets(cfg *SecretsConfig) []FieldError {
	var errs []FieldError

	if cfg.Cache.TTL < 0 {
		errs = append(errs, FieldError{
			Field:   "secrets.cache.ttl",
			Message: "cache TTL must be positive",
		})
	}
	if cfg.Cache.MaxSize < 0 {
		errs = append(errs, FieldError{
			Field:   "secrets.cache.max_size",
			Message: "cache max size must be non-negative",
		})
	}

	return errs
}

// validateLogging validates logging configuration.
func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Level == "" {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Level] {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Format == "" {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Format),
		})
	}

	errs = append(errs, validateToggle("logging.redaction", cfg.Redaction)...)

	if cfg.BufferSize < 0 {
		errs = append(errs, FieldError{
			Field:   "logging.buffer_size",
			Message: "buffer size must be non-negative",
		})
	}

	for i, p := range cfg.RedactPatterns {
		prefix := fmt.Sprintf("logging.redact_patterns[%d]", i)
		if p.Name != "" {
			prefix = fmt.Sprintf("logging.redact_patterns.%s", p.Name)
		}
		if p.Name == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: "name is required",
			})
		}
		if p.Pattern == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".pattern",
				Message: "pattern is required",
			})
		} else if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   prefix + ".pattern",
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	return errs
}

// validateMetrics validates metrics configuration.
func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "metrics.path",
			Message: "metrics path is required when metrics are enabled",
		})
	}
	if cfg.Path != "" && cfg.Path[0] != '/' {
		errs = append(errs, FieldError{
			Field:   "metrics.path",
			Message: "metrics path must start with /",
		})
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "metrics.port",
			Message: "port must be between 0 and 65535",
		})
	}

	return errs
}

// validateTracing validates tracing configuration.
func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}

	switch cfg.Sampler {
	case "", "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Sampler),
		})
	}

	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	switch cfg.Exporter {
	case "", "otlp", "jaeger", "zipkin":
	default:
		errs = append(errs, FieldError{
			Field:   "tracing.exporter",
			Message: fmt.Sprintf("invalid exporter %q: must be 'otlp', 'jaeger', or 'zipkin'", cfg.Exporter),
		})
	}

	return errs
}
