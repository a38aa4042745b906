package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"veristone-hq/clarion/pkg/cli"
	"veristone-hq/clarion/pkg/config"
	"veristone-hq/clarion/pkg/report"
	"veristone-hq/clarion/pkg/report/retention"
	"veristone-hq/clarion/pkg/report/storage"
)

var reportsFlags struct {
	db         string
	timeRange  string
	digest     string
	method     string
	container  string
	source     string
	minScore   float64
	maxScore   float64
	limit      int
	offset     int
	sortBy     string
	sortOrder  string
	format     string
	output     string
	days       int
	maxRecords int64
	dryRun     bool
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Query the report archive",
	Long: `Query, inspect, and prune archived trust reports.

The reports command provides access to the report archive for
querying, exporting, and summarizing completed analyses.

Subcommands:
  list     - List reports with filters
  show     - Show a single report by ID
  summary  - Summarize archived reports with statistics
  prune    - Remove reports past the retention window

Examples:
  # List the last 24 hours
  clarion reports list --time-range "2026-08-23T00:00:00Z/2026-08-24T00:00:00Z"

  # Find an artifact's reports by digest
  clarion reports list --digest 9f86d08...

  # Export to CSV
  clarion reports list --format csv --output reports.csv`,
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived reports",
	Long: `List archived reports with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-23T00:00:00Z/2026-08-24T00:00:00Z"

Examples:
  # List a specific time range
  clarion reports list --time-range "2026-08-23T00:00:00Z/2026-08-24T00:00:00Z"

  # Filter by container format and score
  clarion reports list --container wav --max-score 0.4

  # Lowest scores first
  clarion reports list --sort-by composite_score --sort-order asc

  # Export to JSON
  clarion reports list --format json --output reports.json`,
	RunE: listReports,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single report",
	Long:  `Show one archived report in full, by report ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  showReport,
}

var reportsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize archived reports",
	Long:  `Summarize archived reports with score statistics and breakdowns.`,
	RunE:  summarizeReports,
}

var reportsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune old reports",
	Long: `Remove archived reports past the retention window.

Uses the retention settings from the configuration file unless
overridden by flags.

Examples:
  # Prune using configured retention
  clarion reports prune

  # Keep only the last 30 days
  clarion reports prune --days 30

  # Preview without deleting
  clarion reports prune --days 30 --dry-run`,
	RunE: pruneReports,
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd, reportsSummaryCmd, reportsPruneCmd)

	reportsCmd.PersistentFlags().StringVar(&reportsFlags.db, "db", "", "report archive database path (uses config if not specified)")

	// Flags for list command
	reportsListCmd.Flags().StringVar(&reportsFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	reportsListCmd.Flags().StringVar(&reportsFlags.digest, "digest", "", "filter by content digest")
	reportsListCmd.Flags().StringVar(&reportsFlags.method, "method", "", "filter by scoring method")
	reportsListCmd.Flags().StringVar(&reportsFlags.container, "container", "", "filter by container format (wav, mp3, flac, unknown)")
	reportsListCmd.Flags().StringVar(&reportsFlags.source, "source", "", "filter by intake source (base64, url, stream)")
	reportsListCmd.Flags().Float64Var(&reportsFlags.minScore, "min-score", -1, "minimum composite score")
	reportsListCmd.Flags().Float64Var(&reportsFlags.maxScore, "max-score", -1, "maximum composite score")
	reportsListCmd.Flags().IntVar(&reportsFlags.limit, "limit", 100, "max results")
	reportsListCmd.Flags().IntVar(&reportsFlags.offset, "offset", 0, "pagination offset")
	reportsListCmd.Flags().StringVar(&reportsFlags.sortBy, "sort-by", "", "sort field: processed_at, composite_score")
	reportsListCmd.Flags().StringVar(&reportsFlags.sortOrder, "sort-order", "", "sort order: asc, desc")
	reportsListCmd.Flags().StringVar(&reportsFlags.format, "format", "text", "output format: text, json, csv")
	reportsListCmd.Flags().StringVarP(&reportsFlags.output, "output", "o", "", "output file (default: stdout)")

	// Flags for summary command
	reportsSummaryCmd.Flags().StringVar(&reportsFlags.timeRange, "time-range", "", "time range (RFC3339 interval)")
	reportsSummaryCmd.Flags().StringVarP(&reportsFlags.output, "output", "o", "", "output file")

	// Flags for prune command
	reportsPruneCmd.Flags().IntVar(&reportsFlags.days, "days", 0, "retention window in days (uses config if not specified)")
	reportsPruneCmd.Flags().Int64Var(&reportsFlags.maxRecords, "max-records", 0, "maximum reports to keep (uses config if not specified)")
	reportsPruneCmd.Flags().BoolVar(&reportsFlags.dryRun, "dry-run", false, "report what would be removed without deleting")
}

// openReportArchive opens the SQLite archive named by --db or the
// configuration. The caller closes it.
func openReportArchive(cfg *config.Config) (report.Storage, error) {
	path := reportsFlags.db
	if path == "" {
		if !cfg.Storage.Enabled {
			return nil, fmt.Errorf("report archive is disabled (enable storage in config or pass --db)")
		}
		path = cfg.Storage.Path
	}

	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:         path,
		MaxOpenConns: cfg.Storage.MaxOpenConns,
		MaxIdleConns: cfg.Storage.MaxIdleConns,
		WALMode:      true,
		BusyTimeout:  cfg.Storage.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open report archive: %w", err)
	}
	return store, nil
}

// parseTimeRange parses an RFC3339 interval of the form "start/end".
func parseTimeRange(s string) (*time.Time, *time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid time range format (expected: start/end)")
	}

	startTime, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start time: %w", err)
	}

	endTime, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid end time: %w", err)
	}

	return &startTime, &endTime, nil
}

func listReports(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	store, err := openReportArchive(cfg)
	if err != nil {
		return cli.NewCommandError("reports", err)
	}
	defer store.Close()

	// Build query
	query := &report.Query{
		Digest:    reportsFlags.digest,
		Method:    reportsFlags.method,
		Format:    reportsFlags.container,
		Source:    reportsFlags.source,
		Limit:     reportsFlags.limit,
		Offset:    reportsFlags.offset,
		SortBy:    reportsFlags.sortBy,
		SortOrder: reportsFlags.sortOrder,
	}

	if reportsFlags.timeRange != "" {
		start, end, err := parseTimeRange(reportsFlags.timeRange)
		if err != nil {
			return err
		}
		query.StartTime = start
		query.EndTime = end
	}

	if reportsFlags.minScore >= 0 {
		query.MinScore = &reportsFlags.minScore
	}
	if reportsFlags.maxScore >= 0 {
		query.MaxScore = &reportsFlags.maxScore
	}

	ctx := context.Background()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("reports", fmt.Errorf("query failed: %w", err))
	}

	output := os.Stdout
	if reportsFlags.output != "" {
		output, err = os.Create(reportsFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	switch reportsFlags.format {
	case "json":
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(output, map[string]interface{}{
			"count":   len(records),
			"reports": records,
		})
	case "csv":
		formatter := cli.NewFormatter(cli.FormatCSV)
		return formatter.FormatTo(output, reportRows(records))
	default:
		return outputReportsText(output, records, query)
	}
}

func outputReportsText(output *os.File, records []*report.TrustReport, query *report.Query) error {
	if query.StartTime != nil && query.EndTime != nil {
		fmt.Fprintf(output, "Time range: %s to %s\n",
			query.StartTime.Format(time.RFC3339),
			query.EndTime.Format(time.RFC3339))
	}
	fmt.Fprintf(output, "Total reports: %d\n", len(records))
	fmt.Fprintln(output)

	if len(records) == 0 {
		fmt.Fprintln(output, "No reports found.")
		return nil
	}

	for i, r := range records {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Report ID: %s\n", r.ID)
		fmt.Fprintf(output, "Processed: %s\n", r.ProcessedAt.Format(time.RFC3339))
		fmt.Fprintf(output, "Digest: %s\n", r.Metadata.Digest)
		if r.Metadata.Filename != "" {
			fmt.Fprintf(output, "Filename: %s\n", r.Metadata.Filename)
		}
		fmt.Fprintf(output, "Format: %s (%d bytes, %s)\n",
			r.Features.Format, r.Metadata.SizeBytes, r.Metadata.Source)
		fmt.Fprintf(output, "Composite Score: %.3f (%s)\n", r.CompositeScore, r.Method)

		// Show limited output for large result sets
		if i >= 9 && len(records) > 10 {
			remaining := len(records) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more reports\n", remaining)
			fmt.Fprintf(output, "Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}

// reportRows adapts archived reports to CSV output.
type reportRows []*report.TrustReport

func (r reportRows) CSVHeader() []string {
	return []string{"id", "digest", "filename", "format", "size_bytes", "source", "composite_score", "method", "processed_at"}
}

func (r reportRows) CSVRecords() [][]string {
	records := make([][]string, 0, len(r))
	for _, tr := range r {
		records = append(records, []string{
			tr.ID,
			tr.Metadata.Digest,
			tr.Metadata.Filename,
			string(tr.Features.Format),
			strconv.FormatInt(tr.Metadata.SizeBytes, 10),
			tr.Metadata.Source,
			strconv.FormatFloat(tr.CompositeScore, 'f', 3, 64),
			tr.Method,
			tr.ProcessedAt.Format(time.RFC3339),
		})
	}
	return records
}

func showReport(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	store, err := openReportArchive(cfg)
	if err != nil {
		return cli.NewCommandError("reports", err)
	}
	defer store.Close()

	trustReport, err := store.Get(context.Background(), args[0])
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			return cli.NewCommandError("reports", fmt.Errorf("no report with ID %s", args[0]))
		}
		return cli.NewCommandError("reports", err)
	}

	formatter := cli.NewFormatter(cli.FormatJSON)
	return formatter.FormatTo(os.Stdout, trustReport)
}

func summarizeReports(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	store, err := openReportArchive(cfg)
	if err != nil {
		return cli.NewCommandError("reports", err)
	}
	defer store.Close()

	query := &report.Query{}
	if reportsFlags.timeRange != "" {
		start, end, err := parseTimeRange(reportsFlags.timeRange)
		if err != nil {
			return err
		}
		query.StartTime = start
		query.EndTime = end
	}

	records, err := store.Query(context.Background(), query)
	if err != nil {
		return cli.NewCommandError("reports", fmt.Errorf("query failed: %w", err))
	}

	output := os.Stdout
	if reportsFlags.output != "" {
		output, err = os.Create(reportsFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	return writeReportSummary(output, records, query)
}

func writeReportSummary(output *os.File, records []*report.TrustReport, query *report.Query) error {
	fmt.Fprintln(output, "Report Archive Summary")
	fmt.Fprintln(output, "======================")

	if query.StartTime != nil && query.EndTime != nil {
		fmt.Fprintf(output, "Time Range: %s to %s\n",
			query.StartTime.Format("2006-01-02"),
			query.EndTime.Format("2006-01-02"))
	}
	fmt.Fprintf(output, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintln(output)

	if len(records) == 0 {
		fmt.Fprintln(output, "No reports found.")
		return nil
	}

	var scoreSum float64
	minScore, maxScore := records[0].CompositeScore, records[0].CompositeScore
	methodCounts := make(map[string]int)
	formatCounts := make(map[string]int)
	sourceCounts := make(map[string]int)
	lowTrust := 0

	for _, r := range records {
		scoreSum += r.CompositeScore
		if r.CompositeScore < minScore {
			minScore = r.CompositeScore
		}
		if r.CompositeScore > maxScore {
			maxScore = r.CompositeScore
		}
		if r.CompositeScore < 0.5 {
			lowTrust++
		}
		methodCounts[r.Method]++
		formatCounts[string(r.Features.Format)]++
		sourceCounts[r.Metadata.Source]++
	}

	fmt.Fprintln(output, "Summary:")
	fmt.Fprintln(output, "--------")
	fmt.Fprintf(output, "Total Reports: %d\n", len(records))
	fmt.Fprintf(output, "Mean Score: %.3f\n", scoreSum/float64(len(records)))
	fmt.Fprintf(output, "Score Range: %.3f to %.3f\n", minScore, maxScore)
	fmt.Fprintf(output, "Below 0.5: %d (%.0f%%)\n", lowTrust,
		float64(lowTrust)/float64(len(records))*100)
	fmt.Fprintln(output)

	writeCountSection(output, "By Method:", methodCounts, len(records))
	writeCountSection(output, "By Format:", formatCounts, len(records))
	writeCountSection(output, "By Source:", sourceCounts, len(records))

	return nil
}

func writeCountSection(output *os.File, title string, counts map[string]int, total int) {
	fmt.Fprintln(output, title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pct := float64(counts[k]) / float64(total) * 100
		fmt.Fprintf(output, "  %s: %d reports (%.0f%%)\n", k, counts[k], pct)
	}
	fmt.Fprintln(output)
}

func pruneReports(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	store, err := openReportArchive(cfg)
	if err != nil {
		return cli.NewCommandError("reports", err)
	}
	defer store.Close()

	retCfg := retention.DefaultConfig()
	if cfg.Storage.RetentionDays > 0 {
		retCfg.RetentionDays = cfg.Storage.RetentionDays
	}
	if cfg.Storage.MaxRecords > 0 {
		retCfg.MaxRecords = cfg.Storage.MaxRecords
	}
	if reportsFlags.days > 0 {
		retCfg.RetentionDays = reportsFlags.days
	}
	if reportsFlags.maxRecords > 0 {
		retCfg.MaxRecords = reportsFlags.maxRecords
	}

	ctx := context.Background()

	if reportsFlags.dryRun {
		cutoff := time.Now().AddDate(0, 0, -retCfg.RetentionDays)
		count, err := store.Count(ctx, &report.Query{EndTime: &cutoff})
		if err != nil {
			return cli.NewCommandError("reports", fmt.Errorf("count failed: %w", err))
		}
		fmt.Printf("Would remove %d reports older than %s\n",
			count, cutoff.Format(time.RFC3339))
		return nil
	}

	pruner := retention.NewPruner(store, retCfg)
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		return cli.NewCommandError("reports", fmt.Errorf("prune failed: %w", err))
	}

	fmt.Printf("✓ Removed %d reports\n", deleted)
	fmt.Printf("  Retention window: %d days\n", retCfg.RetentionDays)
	if retCfg.MaxRecords > 0 {
		fmt.Printf("  Max records: %d\n", retCfg.MaxRecords)
	}
	return nil
}
