package health

import (
	"context"
	"sync"
	"time"
)

// CheckFunc probes one dependency. A nil return means the dependency can
// serve traffic.
type CheckFunc func(ctx context.Context) error

// Probe status vocabulary, shared by liveness and readiness responses.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckResult is the outcome of probing a single dependency.
type CheckResult struct {
	// Status is "ok" or "unhealthy".
	Status string `json:"status"`

	// Message carries the probe error, present only when unhealthy.
	Message string `json:"message,omitempty"`

	// DurationMs is how long the probe took, in milliseconds.
	DurationMs int64 `json:"duration_ms"`
}

// Snapshot is the aggregate probe response served on the health endpoints.
type Snapshot struct {
	// Status is "ok" for liveness, "ready" or "degraded" for readiness.
	Status string `json:"status"`

	// Checks holds per-dependency results, readiness only.
	Checks map[string]CheckResult `json:"checks,omitempty"`

	// Timestamp is when the probes ran.
	Timestamp time.Time `json:"timestamp"`
}

// Checker runs registered dependency probes for the readiness endpoint.
//
// Liveness never consults the probes: a process that can answer the
// request is alive. Readiness runs every registered probe concurrently,
// each under its own timeout, and degrades when any of them fails.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc

	checkTimeout time.Duration
}

// defaultCheckTimeout bounds a single probe when none is configured.
const defaultCheckTimeout = 5 * time.Second

// NewChecker creates a checker. A zero timeout selects the default
// per-probe timeout of 5 seconds.
func NewChecker(checkTimeout time.Duration) *Checker {
	if checkTimeout <= 0 {
		checkTimeout = defaultCheckTimeout
	}

	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// Register adds a named dependency probe, replacing any previous probe
// with the same name.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checks[name] = check
}

// Names returns the registered probe names.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	return names
}

// Liveness reports that the process is up. It runs no probes.
func (c *Checker) Liveness() Snapshot {
	return Snapshot{
		Status:    StatusOK,
		Timestamp: time.Now(),
	}
}

// Readiness runs every registered probe concurrently and aggregates the
// results. The status is "ready" when all probes pass and "degraded" when
// any fails; a checker without probes is ready by definition.
func (c *Checker) Readiness(ctx context.Context) Snapshot {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	if len(checks) == 0 {
		return Snapshot{
			Status:    StatusReady,
			Checks:    make(map[string]CheckResult),
			Timestamp: time.Now(),
		}
	}

	results := make(map[string]CheckResult, len(checks))
	var resultMu sync.Mutex
	var wg sync.WaitGroup

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			result := c.runCheck(ctx, check)

			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}(name, check)
	}

	wg.Wait()

	status := StatusReady
	for _, result := range results {
		if result.Status == StatusUnhealthy {
			status = StatusDegraded
		}
	}

	return Snapshot{
		Status:    status,
		Checks:    results,
		Timestamp: time.Now(),
	}
}

// runCheck executes one probe under the per-probe timeout.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()

	errChan := make(chan error, 1)
	go func() {
		errChan <- check(checkCtx)
	}()

	select {
	case err := <-errChan:
		duration := time.Since(start)
		if err != nil {
			return CheckResult{
				Status:     StatusUnhealthy,
				Message:    err.Error(),
				DurationMs: duration.Milliseconds(),
			}
		}
		return CheckResult{
			Status:     StatusOK,
			DurationMs: duration.Milliseconds(),
		}

	case <-checkCtx.Done():
		return CheckResult{
			Status:     StatusUnhealthy,
			Message:    "probe timed out",
			DurationMs: time.Since(start).Milliseconds(),
		}
	}
}
