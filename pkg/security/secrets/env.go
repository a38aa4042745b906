package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider reads secrets from environment variables. The secret name
// is uppercased, dashes become underscores, and the configured prefix is
// prepended: with prefix "CLARION_SECRET_", the secret "guard-api-key"
// reads the variable CLARION_SECRET_GUARD_API_KEY.
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates an environment variable secret provider with the
// given variable prefix.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

// GetSecret reads the secret from its environment variable. An unset or
// empty variable is a miss.
func (p *EnvProvider) GetSecret(ctx context.Context, name string) (string, error) {
	envVar := p.envVar(name)
	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("secret %q not set in environment (%s)", name, envVar)
	}
	return value, nil
}

// ListSecrets returns the secret names of all environment variables
// carrying the configured prefix.
func (p *EnvProvider) ListSecrets(ctx context.Context) ([]string, error) {
	var names []string
	for _, entry := range os.Environ() {
		if !strings.HasPrefix(entry, p.prefix) {
			continue
		}
		key, _, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		names = append(names, p.secretName(key))
	}
	return names, nil
}

// Name returns the provider name.
func (p *EnvProvider) Name() string {
	return "env"
}

// Supports always returns true: any secret can come from the
// environment, which makes this provider a universal fallback.
func (p *EnvProvider) Supports(name string) bool {
	return true
}

func (p *EnvProvider) envVar(name string) string {
	return p.prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func (p *EnvProvider) secretName(envVar string) string {
	name := strings.TrimPrefix(envVar, p.prefix)
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}
