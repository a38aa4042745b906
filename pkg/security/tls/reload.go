package tls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Reloader watches a certificate pair on disk and reloads it when the
// files change. This allows certificate renewal (e.g. Let's Encrypt)
// without restarting the analysis server.
type Reloader struct {
	certFile string
	keyFile  string
	interval time.Duration

	mu       sync.RWMutex
	cert     *tls.Certificate
	certTime time.Time
	keyTime  time.Time
}

// NewReloader creates a certificate reloader. interval specifies how
// often to check the files for changes.
func NewReloader(certFile, keyFile string, interval time.Duration) *Reloader {
	return &Reloader{
		certFile: certFile,
		keyFile:  keyFile,
		interval: interval,
	}
}

// Start loads the initial certificate and begins watching the files in
// a background goroutine. The goroutine exits when ctx is cancelled.
func (r *Reloader) Start(ctx context.Context) error {
	if err := r.reload(); err != nil {
		return err
	}

	r.logCertificateInfo()

	go r.reloadLoop(ctx)

	return nil
}

// reloadLoop periodically checks for certificate changes and reloads if
// needed. A failed reload keeps serving the previous certificate.
func (r *Reloader) reloadLoop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !r.needsReload() {
				continue
			}
			if err := r.reload(); err != nil {
				slog.Error("failed to reload certificate",
					"error", err,
					"cert_file", r.certFile,
					"key_file", r.keyFile,
				)
				continue
			}
			slog.Info("certificate reloaded", "cert_file", r.certFile)
			r.logCertificateInfo()

		case <-ctx.Done():
			return
		}
	}
}

// needsReload checks if either file has been modified since last load.
func (r *Reloader) needsReload() bool {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return false
	}

	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return certInfo.ModTime().After(r.certTime) || keyInfo.ModTime().After(r.keyTime)
}

// reload loads and validates the certificate pair from disk.
func (r *Reloader) reload() error {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return err
	}

	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return err
	}

	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return err
	}

	if err := ValidateCertificate(&cert); err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &cert
	r.certTime = certInfo.ModTime()
	r.keyTime = keyInfo.ModTime()
	r.mu.Unlock()

	return nil
}

// GetCertificate returns the currently loaded certificate.
func (r *Reloader) GetCertificate() *tls.Certificate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert
}

// GetCertificateFunc returns a function compatible with
// tls.Config.GetCertificate, so handshakes always see the latest pair.
func (r *Reloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		return r.GetCertificate(), nil
	}
}

// logCertificateInfo logs details of the currently loaded certificate.
func (r *Reloader) logCertificateInfo() {
	cert := r.GetCertificate()
	if cert == nil || len(cert.Certificate) == 0 {
		return
	}

	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return
	}

	daysUntilExpiry, warning := CheckCertificateExpiration(x509Cert)

	if warning != "" {
		slog.Warn("certificate expiring soon",
			"subject", x509Cert.Subject.CommonName,
			"expires_in_days", daysUntilExpiry,
			"expires_at", x509Cert.NotAfter.Format(time.RFC3339),
		)
		return
	}

	slog.Info("certificate loaded",
		"subject", x509Cert.Subject.CommonName,
		"issuer", x509Cert.Issuer.CommonName,
		"expires_in_days", daysUntilExpiry,
		"expires_at", x509Cert.NotAfter.Format(time.RFC3339),
	)
}
