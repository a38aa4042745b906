package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/cli"
	"veristone-hq/clarion/pkg/config"
	"veristone-hq/clarion/pkg/limits"
	"veristone-hq/clarion/pkg/pipeline"
	"veristone-hq/clarion/pkg/report"
	"veristone-hq/clarion/pkg/report/retention"
	"veristone-hq/clarion/pkg/report/sink"
	"veristone-hq/clarion/pkg/report/storage"
	"veristone-hq/clarion/pkg/security/auth"
	"veristone-hq/clarion/pkg/security/secrets"
	"veristone-hq/clarion/pkg/server"
	"veristone-hq/clarion/pkg/telemetry/logging"
	"veristone-hq/clarion/pkg/telemetry/metrics"
	"veristone-hq/clarion/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Clarion analysis server",
	Long: `Start the Clarion analysis server with the specified configuration.

The server listens on the configured address and runs submitted audio
artifacts through feature extraction, upstream classification, and composite
scoring, returning one trust report per artifact.

Examples:
  # Start with default config
  clarion run

  # Start with custom config
  clarion run --config /etc/clarion/config.yaml

  # Override listen address
  clarion run --listen 0.0.0.0:8085

  # Validate config without starting server
  clarion run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address (host:port)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		host, portStr, err := net.SplitHostPort(runFlags.listenAddress)
		if err != nil {
			return cli.NewConfigError("listen", fmt.Sprintf("invalid listen address: %v", err))
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return cli.NewConfigError("listen", fmt.Sprintf("invalid listen port: %v", err))
		}
		cfg.Server.Host = host
		cfg.Server.Port = port
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}

	// Initialize logging based on config
	logger, err := logging.New(logging.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		AddSource:      cfg.Logging.AddSource,
		RedactSecrets:  cfg.Logging.Redaction != config.ToggleOff,
		BufferSize:     cfg.Logging.BufferSize,
		RedactPatterns: cfg.Logging.RedactPatterns,
	})
	if err != nil {
		return cli.NewConfigError("logging", fmt.Sprintf("failed to initialize logging: %v", err))
	}
	slog.SetDefault(logger.Slog())

	// Resolve ${secret:name} references before any component reads the
	// sensitive fields.
	resolvedSecrets, err := resolveSecrets(cfg)
	if err != nil {
		return cli.NewConfigError("secrets", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	// Print startup banner
	printBanner(cfg)

	if resolvedSecrets > 0 {
		fmt.Printf("✓ Secret references resolved (%d)\n", resolvedSecrets)
	}

	// Metrics collector, optionally on its own listener
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Metrics, nil)
		if cfg.Metrics.Port != 0 {
			go serveMetrics(collector, &cfg.Metrics)
		}
		fmt.Println("✓ Metrics collector initialized")
	}

	// Tracing (noop when disabled)
	tracer, err := tracing.New(&cfg.Tracing)
	if err != nil {
		return cli.NewConfigError("tracing", fmt.Sprintf("failed to initialize tracing: %v", err))
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	// Upstream classifiers
	slog.Info("initializing upstream classifiers", "count", len(cfg.Upstreams))
	classifiers, err := classify.BuildClassifiers(pipeline.UpstreamConfigs(cfg))
	if err != nil {
		return cli.NewConfigError("upstreams", fmt.Sprintf("failed to build classifiers: %v", err))
	}
	fmt.Printf("✓ Upstream classifiers initialized (%d upstreams)\n", len(classifiers))

	// Report forwarding (if enabled)
	var forwarder report.Forwarder
	if cfg.Sink.Enabled {
		sinks, err := buildSinks(cfg)
		if err != nil {
			return cli.NewConfigError("sink", fmt.Sprintf("failed to build sink: %v", err))
		}

		var observer sink.Observer
		if collector != nil {
			observer = collector
		}
		emitter := sink.NewEmitter(sink.EmitterConfig{
			QueueSize: cfg.Sink.Buffer,
			Workers:   cfg.Sink.Workers,
			Observer:  observer,
		}, sinks)
		defer emitter.Close(context.Background())
		forwarder = emitter

		fmt.Printf("✓ Report forwarding enabled (%s sink)\n", cfg.Sink.Kind)
	}

	// Report archive (if enabled)
	var archive report.Storage
	var pruner *retention.Pruner
	if cfg.Storage.Enabled {
		slog.Info("initializing report archive", "path", cfg.Storage.Path)

		store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Storage.Path,
			MaxOpenConns: cfg.Storage.MaxOpenConns,
			MaxIdleConns: cfg.Storage.MaxIdleConns,
			WALMode:      true,
			BusyTimeout:  cfg.Storage.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to create report archive: %w", err)
		}
		defer store.Close()
		archive = store

		// Start retention pruner if schedule is configured
		if cfg.Storage.PruneSchedule != "" {
			pruner = retention.NewPruner(store, &retention.Config{
				RetentionDays: cfg.Storage.RetentionDays,
				PruneSchedule: cfg.Storage.PruneSchedule,
				MaxRecords:    cfg.Storage.MaxRecords,
			})
			if err := pruner.Start(context.Background()); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					slog.Debug("report retention scheduler started", "next_pruning", next)
				}
			}
		}

		fmt.Println("✓ Report archive initialized")
	}

	// Usage quotas (if enabled)
	var enforcer *limits.Enforcer
	if cfg.Limits.Enabled {
		manager, err := limits.NewManager(cfg.Limits)
		if err != nil {
			return fmt.Errorf("failed to initialize usage quotas: %w", err)
		}
		if collector != nil {
			manager.WithObserver(collector)
		}
		defer manager.Close()
		enforcer = manager.Enforcer()

		fmt.Printf("✓ Usage quotas active (%d keys, action: %s)\n", len(cfg.Limits.ByKey), cfg.Limits.Action)
	}

	// API key authentication (if enabled)
	var validator auth.KeyValidator
	if cfg.Auth.Enabled {
		validator = auth.NewAPIKeyValidator(cfg.Auth.Keys)
		fmt.Printf("✓ API key authentication enforced (%d keys)\n", len(cfg.Auth.Keys))
	}

	// Analysis pipeline
	pipe := pipeline.New(cfg, classifiers, forwarder, archive).
		WithTelemetry(collector, tracer)
	defer pipe.Close()

	// HTTP server
	slog.Info("creating analysis server")
	srv := server.NewServer(cfg, pipe).
		WithDiagnostics(logger.Buffer()).
		WithVersion(Version, GitCommit, BuildDate)
	if archive != nil {
		srv.WithStorage(archive)
	}
	if validator != nil {
		srv.WithAuth(validator)
	}
	if enforcer != nil {
		srv.WithLimits(enforcer)
	}
	if collector != nil {
		srv.WithTelemetry(collector)
	}

	// Start server in background goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Give the listener a moment to bind before printing endpoints
	time.Sleep(100 * time.Millisecond)

	addr := cfg.Server.Addr()
	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", addr)
	fmt.Printf("✓ Analyze endpoint: http://%s/v1/analyze\n", addr)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", addr)
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port != 0 {
			fmt.Printf("✓ Metrics endpoint: http://%s%s\n",
				net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Metrics.Port)), cfg.Metrics.Path)
		} else {
			fmt.Printf("✓ Metrics endpoint: http://%s%s\n", addr, cfg.Metrics.Path)
		}
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or server error
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}

// resolveSecrets replaces ${secret:name} references in the loaded
// configuration with values from the configured secret providers.
func resolveSecrets(cfg *config.Config) (int, error) {
	manager, err := secrets.FromConfig(cfg.Secrets)
	if err != nil {
		return 0, err
	}
	return secrets.ResolveConfig(context.Background(), manager, cfg)
}

// buildSinks constructs the configured report sinks.
func buildSinks(cfg *config.Config) ([]sink.Sink, error) {
	switch cfg.Sink.Kind {
	case "log", "":
		return []sink.Sink{sink.NewLogSink(slog.Default())}, nil
	case "webhook":
		webhook, err := sink.NewWebhookSink(cfg.Sink.URL, cfg.Sink.Headers, cfg.Sink.Timeout)
		if err != nil {
			return nil, err
		}
		return []sink.Sink{webhook}, nil
	default:
		return nil, fmt.Errorf("unsupported sink kind: %s", cfg.Sink.Kind)
	}
}

// serveMetrics exposes the Prometheus registry on its own listener.
func serveMetrics(collector *metrics.Collector, cfg *config.MetricsConfig) {
	mux := http.NewServeMux()
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux.Handle(path, collector.Handler())

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("starting metrics listener", "address", addr, "path", path)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics listener failed", "error", err)
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Clarion v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Upstream info
	if len(cfg.Upstreams) > 0 {
		slog.Debug("upstreams configured", "count", len(cfg.Upstreams))
	} else {
		slog.Debug("no upstreams configured, scoring falls back to heuristics")
	}

	// Archive info
	if cfg.Storage.Enabled {
		slog.Debug("report archive enabled", "path", cfg.Storage.Path)
	}

	// Sink info
	if cfg.Sink.Enabled {
		slog.Debug("report forwarding enabled", "kind", cfg.Sink.Kind)
	}
}
