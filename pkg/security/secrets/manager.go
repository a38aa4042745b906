package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// refPattern matches ${secret:name} references in configuration values.
var refPattern = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Manager resolves secrets through an ordered provider chain. The first
// provider that supports a name and returns a value wins. Resolved
// values are cached.
type Manager struct {
	providers []Provider
	cache     *Cache
}

// NewManager creates a manager over the given providers. Providers are
// consulted in order.
func NewManager(providers []Provider, cache CacheConfig) *Manager {
	return &Manager{
		providers: providers,
		cache:     NewCache(cache),
	}
}

// GetSecret resolves one secret by name. The cache is checked first,
// then each provider in order. Returns an error when no provider holds
// the secret.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	if value, ok := m.cache.Get(name); ok {
		return value, nil
	}

	var lastErr error
	for _, provider := range m.providers {
		if !provider.Supports(name) {
			continue
		}

		value, err := provider.GetSecret(ctx, name)
		if err != nil {
			lastErr = err
			slog.Debug("secret provider miss",
				"provider", provider.Name(),
				"name", redactName(name),
				"error", err,
			)
			continue
		}

		m.cache.Set(name, value)
		slog.Debug("secret resolved",
			"provider", provider.Name(),
			"name", redactName(name),
		)
		return value, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", name, lastErr)
	}
	return "", fmt.Errorf("secret not found: %q (no provider holds it)", name)
}

// ResolveReferences replaces every ${secret:name} reference in input with
// its resolved value. Input without references passes through unchanged.
// A reference that fails to resolve is kept as-is and reported in the
// returned error.
func (m *Manager) ResolveReferences(ctx context.Context, input string) (string, error) {
	var failures []string

	output := refPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := refPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			failures = append(failures, fmt.Sprintf("malformed reference %s", match))
			return match
		}

		value, err := m.GetSecret(ctx, groups[1])
		if err != nil {
			failures = append(failures, fmt.Sprintf("failed to resolve secret %q: %v", groups[1], err))
			return match
		}
		return value
	})

	if len(failures) > 0 {
		return output, fmt.Errorf("failed to resolve secret references: %s", strings.Join(failures, "; "))
	}
	return output, nil
}

// Refresh reloads every refreshable provider and clears the cache, so
// subsequent reads see rotated values.
func (m *Manager) Refresh(ctx context.Context) error {
	var failures []string
	for _, provider := range m.providers {
		refreshable, ok := provider.(Refreshable)
		if !ok {
			continue
		}
		if err := refreshable.Refresh(ctx); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", provider.Name(), err))
		}
	}

	m.cache.Clear()

	if len(failures) > 0 {
		return fmt.Errorf("failed to refresh providers: %s", strings.Join(failures, "; "))
	}
	return nil
}

// ListSecrets returns the union of secret names across all providers.
// Values are never included.
func (m *Manager) ListSecrets(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	for _, provider := range m.providers {
		names, err := provider.ListSecrets(ctx)
		if err != nil {
			slog.Warn("failed to list secrets",
				"provider", provider.Name(),
				"error", err,
			)
			continue
		}
		for _, name := range names {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names, nil
}

// redactName shortens a secret name for logging. Short names are fully
// masked.
func redactName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
