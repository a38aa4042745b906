package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"veristone-hq/clarion/pkg/report"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain trust reports.
	// 0 means keep reports forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// MaxRecords is the maximum number of reports to keep.
	// 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
		MaxRecords:    0,
	}
}

// Pruner enforces retention policies on stored trust reports.
type Pruner struct {
	storage   report.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(storage report.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "report.retention"),
	}
	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune deletes trust reports older than the retention period
// or exceeding the max record count.
//
// Pruning happens in two phases:
//  1. Age-based: delete reports older than retention_days
//  2. Count-based: if total reports > max_records, delete oldest
//
// Both can run together (e.g., delete old reports AND limit total count).
// Returns the total number of reports deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	// Phase 1: Prune by retention period
	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned reports by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	// Phase 2: Prune by max record count
	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned reports by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	if totalDeleted == 0 {
		p.logger.Debug("no reports pruned",
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("report pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes reports older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	deleted, err := p.storage.Delete(ctx, &report.Query{EndTime: &cutoff})
	if err != nil {
		return 0, report.NewRetentionError(p.config.RetentionDays, err)
	}

	return deleted, nil
}

// pruneByCount deletes the oldest reports if the total count exceeds
// max_records.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &report.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}

	if count <= p.config.MaxRecords {
		p.logger.Debug("report count within limit",
			"current", count,
			"max", p.config.MaxRecords,
		)
		return 0, nil
	}

	toDelete := count - p.config.MaxRecords

	p.logger.Info("report count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"to_delete", toDelete,
	)

	// The last report in the oldest-first page marks the deletion cutoff.
	oldest, err := p.storage.Query(ctx, &report.Query{
		SortBy:    "processed_at",
		SortOrder: "asc",
		Limit:     int(toDelete),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to query oldest reports: %w", err)
	}

	if len(oldest) == 0 {
		p.logger.Debug("no reports found to delete")
		return 0, nil
	}

	cutoff := oldest[len(oldest)-1].ProcessedAt

	p.logger.Debug("calculated cutoff time for count-based pruning",
		"cutoff_time", cutoff,
		"reports_to_delete", len(oldest),
	)

	deleted, err := p.storage.Delete(ctx, &report.Query{EndTime: &cutoff})
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}

	return deleted, nil
}

// Start starts the automatic pruning scheduler.
// Call this when starting the application.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
// Call this during graceful shutdown.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
