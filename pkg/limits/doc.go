// Package limits tracks and enforces per-key usage quotas over rolling
// time windows.
//
// # Overview
//
// Usage is measured at the API boundary: one request plus the wire bytes
// it carried, attributed to the authenticated key name (or the shared
// anonymous bucket). Two rolling windows are kept per key:
//
//   - daily: 24 hours in 1-hour buckets
//   - monthly: 30 days in 1-day buckets
//
// Windows roll continuously; there is no midnight reset. Usage expires in
// bucket-size steps as old buckets leave the window.
//
// # Components
//
//   - Tracker: pure bookkeeping of per-key window state
//   - Enforcer: admission decisions against configured quotas
//   - SnapshotStore: SQLite persistence so windows survive restarts
//   - Manager: assembles the three and runs the periodic snapshot loop
//
// # Enforcement
//
// The configured action decides what a quota violation means: under
// "warn" the request is admitted and the violation logged, under "block"
// it is rejected with 429 and a Retry-After hint derived from when the
// violated window next frees space. Keys without a configured quota are
// tracked but never limited. Quota enforcement is disabled by default.
//
// # Usage
//
//	manager, err := limits.NewManager(cfg.Limits)
//	if err != nil {
//	    return err
//	}
//	defer manager.Close()
//
//	handler = middleware.QuotaMiddleware(manager.Enforcer())(handler)
package limits
