package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/cli"
	"veristone-hq/clarion/pkg/config"
	"veristone-hq/clarion/pkg/intake"
	"veristone-hq/clarion/pkg/pipeline"
	"veristone-hq/clarion/pkg/report"
	"veristone-hq/clarion/pkg/telemetry/logging"
)

var analyzeFlags struct {
	format    string
	output    string
	failBelow float64
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Analyze local audio files",
	Long: `Analyze one or more local audio files and print their trust reports.

Each file runs through the same analysis sequence as an HTTP submission:
feature extraction, upstream classification (when upstreams are configured),
and composite scoring. No server is required.

Examples:
  # Analyze a single file
  clarion analyze recording.wav

  # JSON output for scripting
  clarion analyze recording.wav --format json

  # Batch with an exit-code gate: non-zero exit when any file
  # scores below 0.5
  clarion analyze clips/*.wav --fail-below 0.5

  # Write reports to a file
  clarion analyze recording.wav --format json --output report.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: analyzeFiles,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFlags.format, "format", "text", "output format: text, json")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.output, "output", "o", "", "output file (default: stdout)")
	analyzeCmd.Flags().Float64Var(&analyzeFlags.failBelow, "fail-below", 0, "exit non-zero when a composite score falls below this threshold")
}

func analyzeFiles(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Logs go to stderr so piped report output stays clean.
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:         level,
		Format:        cfg.Logging.Format,
		RedactSecrets: cfg.Logging.Redaction != config.ToggleOff,
		Writer:        os.Stderr,
	})
	if err != nil {
		return cli.NewConfigError("logging", fmt.Sprintf("failed to initialize logging: %v", err))
	}
	slog.SetDefault(logger.Slog())

	// Upstream credentials may be secret references.
	if _, err := resolveSecrets(cfg); err != nil {
		return cli.NewConfigError("secrets", err.Error())
	}

	// Build the analysis pipeline without forwarding or archival.
	classifiers, err := classify.BuildClassifiers(pipeline.UpstreamConfigs(cfg))
	if err != nil {
		return cli.NewConfigError("upstreams", fmt.Sprintf("failed to build classifiers: %v", err))
	}
	pipe := pipeline.New(cfg, classifiers, nil, nil)
	defer pipe.Close()

	limits := intake.Limits{
		MaxBytes:     cfg.Intake.MaxBytes,
		FetchTimeout: cfg.Intake.FetchTimeout,
	}

	// Cancel cleanly on Ctrl+C mid-batch.
	ctx := cli.SetupSignalHandler()

	var progress cli.ProgressReporter
	if len(args) > 1 {
		progress = cli.NewProgressReporter(os.Stderr)
		progress.Start(int64(len(args)))
	}

	reports := make([]*report.TrustReport, 0, len(args))
	var thresholdErr *cli.ScoreThresholdError

	for i, path := range args {
		artifact, err := artifactFromFile(path, limits)
		if err != nil {
			if progress != nil {
				progress.Error(err)
			}
			return cli.NewCommandError("analyze", fmt.Errorf("%s: %w", path, err))
		}

		trustReport, err := pipe.Run(ctx, artifact)
		if err != nil {
			if progress != nil {
				progress.Error(err)
			}
			return cli.NewCommandError("analyze", fmt.Errorf("%s: %w", path, err))
		}
		reports = append(reports, trustReport)

		// Remember the first breach but keep analyzing; every file still
		// gets its report.
		if analyzeFlags.failBelow > 0 && trustReport.CompositeScore < analyzeFlags.failBelow && thresholdErr == nil {
			thresholdErr = cli.NewScoreThresholdError(path, trustReport.CompositeScore, analyzeFlags.failBelow)
		}

		if progress != nil {
			progress.Update(int64(i + 1))
		}
	}

	if progress != nil {
		progress.Finish()
	}

	out := os.Stdout
	if analyzeFlags.output != "" {
		f, err := os.Create(analyzeFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch analyzeFlags.format {
	case "json":
		formatter := cli.NewFormatter(cli.FormatJSON)
		if len(reports) == 1 {
			if err := formatter.FormatTo(out, reports[0]); err != nil {
				return err
			}
		} else {
			envelope := map[string]interface{}{
				"count":   len(reports),
				"reports": reports,
			}
			if err := formatter.FormatTo(out, envelope); err != nil {
				return err
			}
		}
	default:
		for i, trustReport := range reports {
			if i > 0 {
				fmt.Fprintln(out)
			}
			renderReportText(out, args[i], trustReport)
		}
	}

	if thresholdErr != nil {
		return thresholdErr
	}
	return nil
}

// artifactFromFile materializes one local file as a stream artifact under
// the configured intake limits.
func artifactFromFile(path string, limits intake.Limits) (*intake.Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return intake.FromReader(f, "", filepath.Base(path), limits)
}

// renderReportText writes one human-readable trust report.
func renderReportText(out *os.File, path string, r *report.TrustReport) {
	fmt.Fprintf(out, "File: %s\n", path)
	fmt.Fprintf(out, "Report ID: %s\n", r.ID)
	fmt.Fprintf(out, "Digest: %s\n", r.Metadata.Digest)
	fmt.Fprintf(out, "Format: %s (%s, %d bytes)\n", r.Features.Format, r.Metadata.MIMEType, r.Metadata.SizeBytes)
	fmt.Fprintf(out, "Composite Score: %.3f\n", r.CompositeScore)
	fmt.Fprintf(out, "Method: %s\n", r.Method)

	if len(r.Signals) > 0 {
		fmt.Fprintln(out, "Signals:")
		for _, signal := range r.Signals {
			if signal.Succeeded && signal.Score != nil {
				fmt.Fprintf(out, "  %s: %.3f (%d ms)\n", signal.Source, *signal.Score, signal.LatencyMs)
			} else {
				fmt.Fprintf(out, "  %s: failed (%s)\n", signal.Source, signal.Error)
			}
		}
	}

	if len(r.Breakdown) > 0 {
		components := make([]string, 0, len(r.Breakdown))
		for component := range r.Breakdown {
			components = append(components, component)
		}
		sort.Strings(components)

		fmt.Fprintln(out, "Breakdown:")
		for _, component := range components {
			fmt.Fprintf(out, "  %s: %.3f\n", component, r.Breakdown[component])
		}
	}

	fmt.Fprintf(out, "Processed: %s\n", r.ProcessedAt.Format(time.RFC3339))
}
