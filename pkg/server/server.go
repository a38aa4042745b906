package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"veristone-hq/clarion/pkg/api/handlers"
	"veristone-hq/clarion/pkg/api/middleware"
	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/config"
	"veristone-hq/clarion/pkg/intake"
	"veristone-hq/clarion/pkg/limits"
	"veristone-hq/clarion/pkg/report"
	"veristone-hq/clarion/pkg/security/auth"
	securityTLS "veristone-hq/clarion/pkg/security/tls"
	"veristone-hq/clarion/pkg/telemetry/health"
	"veristone-hq/clarion/pkg/telemetry/metrics"
)

// probeRateLimit caps /healthz and /readyz at this many requests per
// second; readiness probes touch the archive.
const probeRateLimit = 20

// Pipeline is the analysis engine the server fronts. *pipeline.Pipeline
// implements it.
type Pipeline interface {
	Run(ctx context.Context, artifact *intake.Artifact) (*report.TrustReport, error)
	HealthSnapshot() map[string]classify.HealthStatus
}

// Server is the HTTP front of the analysis pipeline. It owns the listener
// lifecycle; the subsystems it serves (pipeline, archive, quotas) are
// constructed by the caller and attached before Start.
type Server struct {
	config   *config.Config
	pipeline Pipeline

	storage   report.Storage
	validator auth.KeyValidator
	enforcer  *limits.Enforcer
	collector *metrics.Collector
	logSource handlers.LogSource
	checker   *health.Checker

	version   string
	commit    string
	buildTime string

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server for the given pipeline. Optional subsystems
// are attached through the With methods before Start.
func NewServer(cfg *config.Config, pipe Pipeline) *Server {
	s := &Server{
		config:       cfg,
		pipeline:     pipe,
		checker:      health.NewChecker(0),
		shutdownChan: make(chan struct{}),
	}
	s.registerChecks()
	return s
}

// WithStorage attaches the report archive and its readiness probe.
func (s *Server) WithStorage(storage report.Storage) *Server {
	s.storage = storage
	if storage != nil {
		s.checker.Register("storage", func(ctx context.Context) error {
			_, err := storage.Count(ctx, &report.Query{})
			return err
		})
	}
	return s
}

// WithAuth attaches API key validation for the analyze endpoints.
func (s *Server) WithAuth(validator auth.KeyValidator) *Server {
	s.validator = validator
	return s
}

// WithLimits attaches per-key quota admission for the analyze endpoints.
func (s *Server) WithLimits(enforcer *limits.Enforcer) *Server {
	s.enforcer = enforcer
	return s
}

// WithTelemetry attaches the metrics collector. The collector observes
// every handler and, when metrics are enabled, serves the scrape
// endpoint.
func (s *Server) WithTelemetry(collector *metrics.Collector) *Server {
	s.collector = collector
	return s
}

// WithDiagnostics attaches the recent-log source behind the diagnostics
// endpoint. A nil source leaves the endpoint unregistered.
func (s *Server) WithDiagnostics(source handlers.LogSource) *Server {
	s.logSource = source
	return s
}

// WithVersion sets the build information served on /version.
func (s *Server) WithVersion(version, commit, buildTime string) *Server {
	s.version = version
	s.commit = commit
	s.buildTime = buildTime
	return s
}

// registerChecks wires the readiness probes that exist from construction.
func (s *Server) registerChecks() {
	// Upstream readiness: configured upstreams must not all be down.
	// A heuristics-only deployment with no upstreams is ready.
	s.checker.Register("upstreams", func(ctx context.Context) error {
		snapshot := s.pipeline.HealthSnapshot()
		if len(snapshot) == 0 {
			return nil
		}
		for _, status := range snapshot {
			if status.IsHealthy {
				return nil
			}
		}
		return fmt.Errorf("all %d upstreams unhealthy", len(snapshot))
	})
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.Addr(),
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	if s.config.Server.TLS.Enabled {
		if err := s.configureTLS(ctx); err != nil {
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting analysis server",
			"address", s.config.Server.Addr(),
			"tls_enabled", s.config.Server.TLS.Enabled,
			"auth_enabled", s.validator != nil,
			"limits_enabled", s.enforcer != nil,
		)

		var err error
		if s.config.Server.TLS.Enabled {
			// Certificates come from TLSConfig through the reloader.
			err = s.httpServer.ListenAndServeTLS("", "")
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("analysis server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	logger := slog.Default()
	intakeLimits := intake.Limits{
		MaxBytes:     s.config.Intake.MaxBytes,
		FetchTimeout: s.config.Intake.FetchTimeout,
	}
	fetcher := intake.NewFetcher(intakeLimits, s.config.Intake.UserAgent)

	// Avoid boxing a nil *metrics.Collector into a non-nil Observer interface.
	var observer handlers.Observer
	if s.collector != nil {
		observer = s.collector
	}

	analyzeHandler := handlers.NewAnalyzeHandler(s.pipeline, fetcher, intakeLimits, logger).
		WithObserver(observer)
	rawHandler := handlers.NewRawAnalyzeHandler(s.pipeline, intakeLimits, logger).
		WithObserver(observer)

	// Analyze endpoints sit behind the auth and quota gates.
	mux.Handle("/v1/analyze", s.guard(analyzeHandler))
	mux.Handle("/v1/analyze/raw", s.guard(rawHandler))

	reportsHandler := handlers.NewReportsHandler(s.storage, logger).WithObserver(observer)
	mux.Handle("/v1/reports", reportsHandler)
	mux.Handle("/v1/reports/", reportsHandler)

	mux.Handle("/v1/upstreams/health", handlers.NewUpstreamHealthHandler(s.pipeline))

	if s.logSource != nil {
		mux.Handle("/v1/diagnostics/logs", handlers.NewDiagnosticsHandler(s.logSource))
	}

	mux.HandleFunc("/healthz", health.RateLimited(s.checker.LivenessHandler(), probeRateLimit))
	mux.HandleFunc("/readyz", health.RateLimited(s.checker.ReadinessHandler(), probeRateLimit))
	mux.HandleFunc("/version", health.VersionHandler(s.version, s.commit, s.buildTime))

	if s.collector != nil && s.config.Metrics.Enabled && s.config.Metrics.Port == 0 {
		path := s.config.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.collector.Handler())
	}

	var handler http.Handler = mux

	handler = middleware.TimeoutMiddleware(s.config.Server.RequestTimeout)(handler)
	handler = middleware.CORSMiddleware(&s.config.Server.CORS)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// guard wraps an analyze handler with API key authentication and quota
// admission. Auth runs first so quota usage lands on the named key.
func (s *Server) guard(next http.Handler) http.Handler {
	if s.enforcer != nil {
		next = middleware.QuotaMiddleware(s.enforcer)(next)
	}
	if s.validator != nil {
		next = auth.NewAPIKeyMiddleware(s.validator, auth.DefaultSources()).Handle(next)
	}
	return next
}

// configureTLS builds the TLS listener settings and starts the
// certificate reloader so renewed certificates are served without a
// restart. The reloader goroutine exits when ctx is cancelled.
func (s *Server) configureTLS(ctx context.Context) error {
	tlsCfg := s.config.Server.TLS

	cfg, err := securityTLS.Build(securityTLS.Options{
		CertFile:     tlsCfg.CertFile,
		KeyFile:      tlsCfg.KeyFile,
		MinVersion:   tlsCfg.MinVersion,
		CipherSuites: tlsCfg.CipherSuites,
		MTLS: securityTLS.MTLSOptions{
			Enabled:        tlsCfg.MTLS.Enabled,
			ClientCAFile:   tlsCfg.MTLS.ClientCAFile,
			ClientAuthType: tlsCfg.MTLS.ClientAuthType,
		},
	})
	if err != nil {
		return err
	}

	reloader := securityTLS.NewReloader(tlsCfg.CertFile, tlsCfg.KeyFile, tlsCfg.ReloadInterval)
	if err := reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start certificate reloader: %w", err)
	}
	cfg.GetCertificate = reloader.GetCertificateFunc()

	s.httpServer.TLSConfig = cfg
	return nil
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the fully configured HTTP handler, used by tests and
// by callers embedding the server elsewhere.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Checker exposes the readiness checker so callers can register
// additional dependency probes before Start.
func (s *Server) Checker() *health.Checker {
	return s.checker
}
