// Package secrets resolves secret references in configuration.
//
// Sensitive configuration fields may hold ${secret:name} references
// instead of literal values. A Manager resolves them at startup against
// an ordered chain of providers, so API keys and webhook credentials
// stay out of config files entirely.
package secrets

import "context"

// Provider retrieves secrets from one backend.
type Provider interface {
	// GetSecret retrieves a secret by name. Returns an error if the
	// secret is not found or cannot be read.
	GetSecret(ctx context.Context, name string) (string, error)

	// ListSecrets returns the secret names this provider can serve.
	// Values are never included.
	ListSecrets(ctx context.Context) ([]string, error)

	// Name returns the provider name ("env", "file").
	Name() string

	// Supports reports whether this provider may hold the named secret.
	// The manager skips providers that report false.
	Supports(name string) bool
}

// Refreshable is implemented by providers that can reload their secrets
// without a restart, such as the file provider after a volume rotation.
type Refreshable interface {
	Provider

	// Refresh discards any provider-held state so the next read sees
	// current values.
	Refresh(ctx context.Context) error
}
