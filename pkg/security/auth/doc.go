/*
Package auth provides the API key boundary gate for the analysis service.

The gate is deliberately minimal: a request either presents a valid,
enabled key or is answered 401 with the uniform error envelope. Keys carry
no roles, scopes, or rate classes; per-key quotas are enforced separately
by pkg/limits using the key name this package places in the context.

# Basic Usage

	validator := auth.NewAPIKeyValidator(cfg.Auth.Keys)
	gate := auth.NewAPIKeyMiddleware(validator, nil)

	http.Handle("/v1/analyze", gate.Handle(analyzeHandler))

# Key Sources

By default the middleware checks, in order:

 1. Authorization header with Bearer scheme:
    Authorization: Bearer ck-9f8e7d6c5b4a3210

 2. Bare header:
    X-API-Key: ck-9f8e7d6c5b4a3210

Query parameters are not supported; secrets in URLs leak into access logs.

# Downstream Identity

Handlers and middleware read the authenticated identity from the context:

	if name := auth.KeyNameFromContext(r.Context()); name != "" {
		// name is the configured label, never the secret
	}

# Security Considerations

  - Key secrets are never logged; only the configured key name is.
  - Validation compares in constant time across the whole key set.
  - Configuration requires at least 16 characters per key.
  - Disabled keys stay configured but fail validation, so a key can be
    pulled from rotation without editing quota or log tooling.
*/
package auth
