/*
Package security provides transport security (TLS/mTLS), secret
resolution, and authentication for Clarion.

# TLS Configuration

Build the listener TLS settings for the analysis server:

	tlsConfig, err := tls.Build(tls.Options{
		CertFile:   "/etc/clarion/certs/server.crt",
		KeyFile:    "/etc/clarion/certs/server.key",
		MinVersion: "1.3",
	})
	if err != nil {
		log.Fatal(err)
	}

# Secret Resolution

Sensitive configuration fields may hold ${secret:name} references
instead of literal values. At startup the references are resolved
against the configured providers:

	manager, err := secrets.FromConfig(cfg.Secrets)
	if err != nil {
		log.Fatal(err)
	}

	if _, err := secrets.ResolveConfig(ctx, manager, cfg); err != nil {
		log.Fatal(err)
	}

# API Key Authentication

Validate API keys in HTTP middleware:

	validator := auth.NewAPIKeyValidator(apiKeys)
	middleware := auth.NewAPIKeyMiddleware(validator, auth.DefaultSources())

	http.Handle("/", middleware.Handle(handler))
*/
package security
