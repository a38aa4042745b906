package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the given path.
// It applies defaults for missing fields and validates the result.
// Returns an error if the file cannot be read, parsed, or validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables take precedence over
// file values. The configuration is re-validated after overrides are applied.
//
// Supported environment variables use the CLARION_ prefix followed by the
// section and field name, for example CLARION_SERVER_PORT or
// CLARION_LOGGING_LEVEL. Upstream overrides embed the upstream name:
// CLARION_UPSTREAMS_GUARD_API_KEY sets the API key of the upstream named
// "guard".
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Values that fail to parse are ignored and the file value is kept.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if v := os.Getenv("CLARION_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CLARION_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CLARION_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("CLARION_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if v := os.Getenv("CLARION_SERVER_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if v := os.Getenv("CLARION_SERVER_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.RequestTimeout = d
		}
	}

	// Intake overrides
	if v := os.Getenv("CLARION_INTAKE_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Intake.MaxBytes = n
		}
	}
	if v := os.Getenv("CLARION_INTAKE_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Intake.FetchTimeout = d
		}
	}
	if v := os.Getenv("CLARION_INTAKE_USER_AGENT"); v != "" {
		cfg.Intake.UserAgent = v
	}

	// Analysis overrides
	if v := os.Getenv("CLARION_ANALYSIS_HEURISTICS"); v != "" {
		cfg.Analysis.Heuristics = v
	}

	applyUpstreamEnvOverrides(cfg)

	// Sink overrides
	if v := os.Getenv("CLARION_SINK_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Sink.Enabled = enabled
		}
	}
	if v := os.Getenv("CLARION_SINK_KIND"); v != "" {
		cfg.Sink.Kind = v
	}
	if v := os.Getenv("CLARION_SINK_URL"); v != "" {
		cfg.Sink.URL = v
	}

	// Storage overrides
	if v := os.Getenv("CLARION_STORAGE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Storage.Enabled = enabled
		}
	}
	if v := os.Getenv("CLARION_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("CLARION_STORAGE_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Storage.RetentionDays = days
		}
	}

	// Limits overrides
	if v := os.Getenv("CLARION_LIMITS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Limits.Enabled = enabled
		}
	}
	if v := os.Getenv("CLARION_LIMITS_ACTION"); v != "" {
		cfg.Limits.Action = v
	}

	// Auth overrides
	if v := os.Getenv("CLARION_AUTH_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Auth.Enabled = enabled
		}
	}

	// Secrets overrides
	if v := os.Getenv("CLARION_SECRETS_DIR"); v != "" {
		cfg.Secrets.Dir = v
	}

	// Logging overrides
	if v := os.Getenv("CLARION_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CLARION_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CLARION_LOGGING_REDACTION"); v != "" {
		cfg.Logging.Redaction = v
	}

	// Metrics overrides
	if v := os.Getenv("CLARION_METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = enabled
		}
	}
	if v := os.Getenv("CLARION_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}

	// Tracing overrides
	if v := os.Getenv("CLARION_TRACING_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tracing.Enabled = enabled
		}
	}
	if v := os.Getenv("CLARION_TRACING_ENDPOINT"); v != "" {
		cfg.Tracing.Endpoint = v
	}
	if v := os.Getenv("CLARION_TRACING_SAMPLE_RATIO"); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Tracing.SampleRatio = ratio
		}
	}
	if v := os.Getenv("CLARION_TRACING_INSECURE"); v != "" {
		if insecure, err := strconv.ParseBool(v); err == nil {
			cfg.Tracing.OTLP.Insecure = insecure
		}
	}
}

// applyUpstreamEnvOverrides applies per-upstream environment overrides. Only
// upstreams already present in the configuration can be overridden; the
// environment cannot introduce new ones. The variable name embeds the upstream
// name uppercased with dashes mapped to underscores.
func applyUpstreamEnvOverrides(cfg *Config) {
	for i := range cfg.Upstreams {
		u := &cfg.Upstreams[i]
		prefix := "CLARION_UPSTREAMS_" + envSegment(u.Name) + "_"

		if v := os.Getenv(prefix + "ENDPOINT"); v != "" {
			u.Endpoint = v
		}
		if v := os.Getenv(prefix + "API_KEY"); v != "" {
			u.APIKey = v
		}
		if v := os.Getenv(prefix + "TIMEOUT"); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				u.Timeout = d
			}
		}
		if v := os.Getenv(prefix + "MAX_RETRIES"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				u.MaxRetries = n
			}
		}
	}
}

// envSegment converts an upstream name to its environment variable segment.
func envSegment(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
