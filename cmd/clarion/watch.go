package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/cli"
	"veristone-hq/clarion/pkg/config"
	"veristone-hq/clarion/pkg/intake"
	"veristone-hq/clarion/pkg/pipeline"
	"veristone-hq/clarion/pkg/report"
	"veristone-hq/clarion/pkg/report/sink"
	"veristone-hq/clarion/pkg/report/storage"
	"veristone-hq/clarion/pkg/spool"
	"veristone-hq/clarion/pkg/telemetry/logging"
)

var watchFlags struct {
	settle time.Duration
	outDir string
	noScan bool
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a spool directory for audio files",
	Long: `Watch a spool directory and analyze every audio file dropped into it.

Each settled file is analyzed and its trust report written as
<name>.report.json beside the file (or into --out-dir). Files already in
the spool are processed on startup unless --no-scan is given. When the
report archive is enabled in the configuration, reports are archived too.

Examples:
  # Watch a spool directory
  clarion watch /var/spool/clarion

  # Collect reports in one place
  clarion watch /var/spool/clarion --out-dir /var/lib/clarion/reports

  # Wait longer for slow copies to finish
  clarion watch /var/spool/clarion --settle 2s`,
	Args: cobra.ExactArgs(1),
	RunE: watchSpool,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchFlags.settle, "settle", 0, "quiet period before a file is analyzed (default 500ms)")
	watchCmd.Flags().StringVar(&watchFlags.outDir, "out-dir", "", "directory for report files (default: beside each audio file)")
	watchCmd.Flags().BoolVar(&watchFlags.noScan, "no-scan", false, "skip files already in the spool at startup")
}

func watchSpool(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

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

	// Secret references must be resolved before classifiers and sinks
	// read their credentials.
	if _, err := resolveSecrets(cfg); err != nil {
		return cli.NewConfigError("secrets", err.Error())
	}

	// Upstream classifiers
	classifiers, err := classify.BuildClassifiers(pipeline.UpstreamConfigs(cfg))
	if err != nil {
		return cli.NewConfigError("upstreams", fmt.Sprintf("failed to build classifiers: %v", err))
	}

	// Report forwarding (if enabled)
	var forwarder report.Forwarder
	if cfg.Sink.Enabled {
		sinks, err := buildSinks(cfg)
		if err != nil {
			return cli.NewConfigError("sink", fmt.Sprintf("failed to build sink: %v", err))
		}
		emitter := sink.NewEmitter(sink.EmitterConfig{
			QueueSize: cfg.Sink.Buffer,
			Workers:   cfg.Sink.Workers,
		}, sinks)
		defer emitter.Close(context.Background())
		forwarder = emitter
	}

	// Report archive (if enabled)
	var archive report.Storage
	if cfg.Storage.Enabled {
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
	}

	pipe := pipeline.New(cfg, classifiers, forwarder, archive)
	defer pipe.Close()

	limits := intake.Limits{
		MaxBytes:     cfg.Intake.MaxBytes,
		FetchTimeout: cfg.Intake.FetchTimeout,
	}

	spoolConfig := spool.DefaultConfig()
	spoolConfig.Dir = args[0]
	spoolConfig.ScanOnStart = !watchFlags.noScan
	if watchFlags.settle > 0 {
		spoolConfig.SettleInterval = watchFlags.settle
	}

	watcher, err := spool.NewWatcher(spoolConfig, slog.Default())
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	ctx := cli.SetupSignalHandler()

	fmt.Printf("Clarion v%s\n", Version)
	fmt.Printf("✓ Watching spool: %s\n", args[0])
	fmt.Printf("✓ Upstream classifiers: %d\n", len(classifiers))
	if cfg.Storage.Enabled {
		fmt.Printf("✓ Report archive: %s\n", cfg.Storage.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	onFile := func(path string) {
		// Settle timers may fire during shutdown.
		if ctx.Err() != nil {
			return
		}

		artifact, err := artifactFromFile(path, limits)
		if err != nil {
			slog.Warn("spool file unreadable, skipping", "path", path, "error", err)
			return
		}

		trustReport, err := pipe.Run(ctx, artifact)
		if err != nil {
			slog.Error("spool analysis failed", "path", path, "error", err)
			return
		}

		dest := reportPathFor(path, watchFlags.outDir)
		if err := writeReportFile(dest, trustReport); err != nil {
			slog.Error("failed to write report file", "path", dest, "error", err)
			return
		}

		slog.Info("spool file analyzed",
			"path", path,
			"report", dest,
			"composite_score", trustReport.CompositeScore,
			"method", trustReport.Method,
		)
	}

	if err := watcher.Watch(ctx, onFile); err != nil {
		return cli.NewCommandError("watch", err)
	}

	fmt.Println("✓ Watcher stopped")
	return nil
}

// reportPathFor places the report beside the audio file, or in outDir when
// set. "take.wav" becomes "take.wav.report.json".
func reportPathFor(path, outDir string) string {
	name := filepath.Base(path) + ".report.json"
	if outDir != "" {
		return filepath.Join(outDir, name)
	}
	return filepath.Join(filepath.Dir(path), name)
}

// writeReportFile writes one report as indented JSON.
func writeReportFile(path string, r *report.TrustReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
