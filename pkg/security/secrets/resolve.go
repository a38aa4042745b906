package secrets

import (
	"context"
	"fmt"

	"veristone-hq/clarion/pkg/config"
)

// FromConfig builds a Manager from the secrets section of the service
// configuration. The environment provider is always in the chain; the
// file provider joins it when a secrets directory is configured.
func FromConfig(cfg config.SecretsConfig) (*Manager, error) {
	providers := []Provider{NewEnvProvider(cfg.EnvPrefix)}

	if cfg.Dir != "" {
		fileProvider, err := NewFileProvider(cfg.Dir, false)
		if err != nil {
			return nil, fmt.Errorf("secrets directory: %w", err)
		}
		providers = append(providers, fileProvider)
	}

	return NewManager(providers, CacheConfig{
		Enabled: cfg.Cache.Enabled,
		TTL:     cfg.Cache.TTL,
		MaxSize: cfg.Cache.MaxSize,
	}), nil
}

// ResolveConfig resolves ${secret:name} references in the sensitive
// fields of the configuration: upstream API keys, auth keys, and sink
// delivery settings. The configuration is modified in place; fields
// without references pass through untouched. Returns the number of
// references resolved so callers can report it.
func ResolveConfig(ctx context.Context, m *Manager, cfg *config.Config) (int, error) {
	var resolved int

	apply := func(field string, target *string) error {
		refs := refPattern.FindAllString(*target, -1)
		if len(refs) == 0 {
			return nil
		}
		value, err := m.ResolveReferences(ctx, *target)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		*target = value
		resolved += len(refs)
		return nil
	}

	for i := range cfg.Upstreams {
		u := &cfg.Upstreams[i]
		if err := apply(fmt.Sprintf("upstreams.%s.api_key", u.Name), &u.APIKey); err != nil {
			return resolved, err
		}
	}

	for i := range cfg.Auth.Keys {
		k := &cfg.Auth.Keys[i]
		if err := apply(fmt.Sprintf("auth.keys.%s.key", k.Name), &k.Key); err != nil {
			return resolved, err
		}
	}

	if err := apply("sink.url", &cfg.Sink.URL); err != nil {
		return resolved, err
	}

	for name := range cfg.Sink.Headers {
		header := cfg.Sink.Headers[name]
		if err := apply(fmt.Sprintf("sink.headers.%s", name), &header); err != nil {
			return resolved, err
		}
		cfg.Sink.Headers[name] = header
	}

	return resolved, nil
}
