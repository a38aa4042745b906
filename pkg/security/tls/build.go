package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
)

// Options describes how to build the server-side TLS configuration.
// It mirrors the tls section of the server configuration but carries no
// YAML concerns, so this package stays independent of config loading.
type Options struct {
	// CertFile is the path to the PEM-encoded certificate file.
	CertFile string

	// KeyFile is the path to the PEM-encoded private key file.
	KeyFile string

	// MinVersion is the minimum TLS version to accept ("1.2" or "1.3").
	// Default: "1.3". TLS 1.0 and 1.1 are never accepted.
	MinVersion string

	// CipherSuites lists enabled cipher suites by name. Empty means
	// Go's secure defaults. Only TLS 1.2 suites are configurable;
	// TLS 1.3 suites are always enabled and cannot be disabled.
	CipherSuites []string

	// MTLS contains mutual TLS configuration.
	MTLS MTLSOptions
}

// MTLSOptions configures client certificate authentication.
type MTLSOptions struct {
	// Enabled indicates whether client certificates are requested.
	Enabled bool

	// ClientCAFile is the path to the PEM-encoded CA bundle used to
	// verify client certificates.
	ClientCAFile string

	// ClientAuthType specifies how to handle client certificates:
	//   - "require": client certificate required, reject if missing
	//   - "request": request client certificate, but allow if missing
	//   - "verify_if_given": verify client cert if provided, allow if not
	// Default: "require"
	ClientAuthType string
}

// Build constructs a crypto/tls server configuration from opts.
// The certificate pair is loaded and validated eagerly so a broken
// deployment fails at startup rather than on the first handshake.
func Build(opts Options) (*tls.Config, error) {
	if opts.CertFile == "" {
		return nil, fmt.Errorf("cert_file is required when TLS is enabled")
	}
	if opts.KeyFile == "" {
		return nil, fmt.Errorf("key_file is required when TLS is enabled")
	}

	if _, err := os.Stat(opts.CertFile); err != nil {
		return nil, fmt.Errorf("certificate file not found: %s: %w", opts.CertFile, err)
	}
	if _, err := os.Stat(opts.KeyFile); err != nil {
		return nil, fmt.Errorf("key file not found: %s: %w", opts.KeyFile, err)
	}

	cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}

	if err := ValidateCertificate(&cert); err != nil {
		return nil, fmt.Errorf("certificate validation failed: %w", err)
	}

	// #nosec G402 - MinVersion is configurable and validated (TLS 1.0/1.1 rejected)
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minVersion(opts.MinVersion),
		CipherSuites: cipherSuites(opts.CipherSuites),
	}

	if opts.MTLS.Enabled {
		if err := configureClientAuth(cfg, opts.MTLS); err != nil {
			return nil, fmt.Errorf("failed to configure mTLS: %w", err)
		}
	}

	return cfg, nil
}

// minVersion converts a version string to a tls version constant.
// Unknown values fall back to TLS 1.3.
func minVersion(v string) uint16 {
	switch v {
	case "1.2":
		return tls.VersionTLS12
	case "1.3", "":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS13
	}
}

// cipherSuites converts cipher suite names to tls constants.
// Unknown names are skipped with a warning rather than failing the
// build, so a typo degrades to Go's defaults instead of downtime.
func cipherSuites(names []string) []uint16 {
	if len(names) == 0 {
		return nil // Go's secure defaults
	}

	var suites []uint16
	for _, name := range names {
		id, ok := cipherSuiteMap[name]
		if !ok {
			slog.Warn("ignoring unknown cipher suite", "name", name)
			continue
		}
		suites = append(suites, id)
	}

	return suites
}

// cipherSuiteMap maps cipher suite names to their tls package constants.
// Only secure cipher suites are included.
var cipherSuiteMap = map[string]uint16{
	// TLS 1.3 cipher suites (always enabled, listed for completeness)
	"TLS_AES_128_GCM_SHA256":       tls.TLS_AES_128_GCM_SHA256,
	"TLS_AES_256_GCM_SHA384":       tls.TLS_AES_256_GCM_SHA384,
	"TLS_CHACHA20_POLY1305_SHA256": tls.TLS_CHACHA20_POLY1305_SHA256,

	// TLS 1.2 cipher suites (secure options only)
	"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256":   tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384":   tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256": tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384": tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305":    tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
	"TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305":  tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
}

// configureClientAuth sets up mutual TLS on the provided tls.Config.
// Client certificates gate the transport only; caller identity still
// comes from API keys.
func configureClientAuth(cfg *tls.Config, opts MTLSOptions) error {
	if opts.ClientCAFile == "" {
		return fmt.Errorf("client_ca_file is required when mTLS is enabled")
	}

	caCert, err := os.ReadFile(opts.ClientCAFile)
	if err != nil {
		return fmt.Errorf("failed to read client CA: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return fmt.Errorf("failed to parse client CA certificate")
	}

	cfg.ClientCAs = pool
	cfg.ClientAuth = clientAuthType(opts.ClientAuthType)

	return nil
}

// clientAuthType converts the ClientAuthType string to a tls constant.
// Unknown values fall back to requiring and verifying client certificates.
func clientAuthType(v string) tls.ClientAuthType {
	switch v {
	case "require":
		return tls.RequireAndVerifyClientCert
	case "request":
		return tls.RequestClientCert
	case "verify_if_given":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
