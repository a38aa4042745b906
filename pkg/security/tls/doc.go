/*
Package tls builds the TLS and mTLS configuration for the Clarion
analysis server.

# Server TLS

Enable TLS 1.3 for the HTTP API:

	tlsConfig, err := tls.Build(tls.Options{
		CertFile:   "/etc/clarion/certs/server.crt",
		KeyFile:    "/etc/clarion/certs/server.key",
		MinVersion: "1.3",
	})
	if err != nil {
		log.Fatal(err)
	}

# Mutual TLS

Require client certificates at the transport layer. API-key
authentication still decides caller identity; mTLS only gates who can
open a connection:

	tlsConfig, err := tls.Build(tls.Options{
		CertFile: "/etc/clarion/certs/server.crt",
		KeyFile:  "/etc/clarion/certs/server.key",
		MTLS: tls.MTLSOptions{
			Enabled:        true,
			ClientCAFile:   "/etc/clarion/certs/client-ca.pem",
			ClientAuthType: "require",
		},
	})

# Certificate Auto-Reload

Pick up renewed certificates without restarting the server:

	reloader := tls.NewReloader(certFile, keyFile, 5*time.Minute)
	if err := reloader.Start(ctx); err != nil {
		log.Fatal(err)
	}

	tlsConfig.GetCertificate = reloader.GetCertificateFunc()
*/
package tls
