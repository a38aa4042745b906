// Package retention provides retention policy enforcement for stored
// trust reports.
//
// # Retention Policy
//
// The retention package automatically prunes old reports based on age
// and total count:
//
//   - Configurable retention period (days)
//   - Scheduled pruning (cron expression)
//   - Configurable max record count
//
// # Basic Usage
//
//	// Create retention pruner
//	pruner := retention.NewPruner(storage, &retention.Config{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *", // Daily at 3 AM
//	    MaxRecords:    100000,
//	})
//
//	// Start background pruning
//	if err := pruner.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pruner.Stop()
//
//	// Check next scheduled pruning time
//	if next := pruner.NextPruning(); next != nil {
//	    log.Printf("Next pruning scheduled for: %s", next)
//	}
//
// # Manual Pruning
//
// You can also trigger pruning manually:
//
//	deleted, err := pruner.Prune(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("Deleted %d old trust reports", deleted)
//
// # Retention Period
//
// The retention period is specified in days:
//
//   - 0 days: Keep reports forever (no pruning)
//   - 30 days: Delete reports older than 30 days
//   - 90 days: Delete reports older than 90 days (default)
//
// # Scheduling
//
// The pruner runs on a cron schedule:
//
//   - "0 3 * * *": Daily at 3 AM (default)
//   - "0 0 * * 0": Weekly on Sunday at midnight
//   - "0 */6 * * *": Every 6 hours
//   - "*/1 * * * *": Every minute (testing only)
//
// If no schedule is configured (empty PruneSchedule), the scheduler
// does nothing and Start() returns immediately without error.
package retention
