// Package health provides liveness and readiness probing for clarion.
//
// # Overview
//
// The package backs the /healthz and /readyz endpoints. Liveness is a
// constant-time "the process is up" answer; readiness runs registered
// dependency probes (report archive, upstream classifiers, quota store)
// concurrently and degrades to 503 when any of them fails. Each probe is
// bounded by its own timeout so a stuck dependency cannot stall the
// endpoint.
//
// # Usage
//
//	checker := health.NewChecker(5 * time.Second)
//	checker.Register("storage", func(ctx context.Context) error {
//	    _, err := archive.Count(ctx, &report.Query{})
//	    return err
//	})
//	checker.Register("upstreams", func(ctx context.Context) error {
//	    return upstreamsReady(pipe.HealthSnapshot())
//	})
//
//	mux.HandleFunc("/healthz", checker.LivenessHandler())
//	mux.HandleFunc("/readyz", checker.ReadinessHandler())
//
// Probe handlers can be wrapped with RateLimited to keep aggressive
// orchestrator probing from generating load against the dependencies.
package health
