// Package config provides configuration management for Clarion.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CLARION_SECTION_FIELD.
// For example:
//
//   - CLARION_SERVER_PORT overrides server.port
//   - CLARION_UPSTREAMS_GUARD_API_KEY overrides the api_key of the upstream
//     named "guard"
//   - CLARION_LOGGING_LEVEL overrides logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.Addr())
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Required field checks (e.g., upstream endpoints, key names)
//   - Range validation (e.g., ports must be 1-65535)
//   - Format validation (e.g., valid URL format, compilable redaction patterns)
//   - Logical validation (e.g., a webhook sink requires a URL)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - upstreams.guard.endpoint: endpoint is required
//	  - auth.keys.ci.key: key must be at least 16 characters
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  host: "127.0.0.1"
//	  port: 8085
//
//	upstreams:
//	  - name: "guard"
//	    endpoint: "https://api.example.com/v1/detect"
//	    api_key: "${GUARD_API_KEY}"
//
//	storage:
//	  enabled: true
//	  path: "data/reports.db"
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses read-write
// locks to allow concurrent reads while protecting against concurrent writes during
// reload operations.
package config
