package classify

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"veristone-hq/clarion/pkg/intake"
)

// Aggregator fans one artifact out to every configured upstream and
// collects the settled signals. It is the only concurrency point inside a
// pipeline invocation.
type Aggregator struct {
	classifiers []Classifier
}

// NewAggregator creates an Aggregator over the given classifiers. An
// empty set is a normal, fully supported mode: Collect returns an empty
// slice immediately.
func NewAggregator(classifiers []Classifier) *Aggregator {
	return &Aggregator{classifiers: classifiers}
}

// Upstreams returns the classifiers in configuration order.
func (a *Aggregator) Upstreams() []Classifier {
	return a.classifiers
}

// Collect dispatches one concurrent call per upstream and waits for every
// call to settle (success, error, or timeout) before returning, so
// callers never observe partial aggregation. A timeout or transport error
// on one upstream degrades that signal only and never aborts siblings.
// Signals are returned in configuration order regardless of completion
// order. Cancelling ctx propagates into every in-flight call.
func (a *Aggregator) Collect(ctx context.Context, artifact *intake.Artifact) []Signal {
	if len(a.classifiers) == 0 {
		return []Signal{}
	}

	signals := make([]Signal, len(a.classifiers))

	// Workers always return nil: per-upstream failures become degraded
	// signals, so the group context is never cancelled early.
	g, gctx := errgroup.WithContext(ctx)
	for i, classifier := range a.classifiers {
		g.Go(func() error {
			signals[i] = collectOne(gctx, classifier, artifact)
			return nil
		})
	}
	_ = g.Wait()

	return signals
}

// collectOne runs a single upstream call and converts any failure into a
// degraded signal.
func collectOne(ctx context.Context, classifier Classifier, artifact *intake.Artifact) Signal {
	start := time.Now()

	signal, err := classifier.Classify(ctx, artifact)
	if err != nil {
		latency := time.Since(start)
		slog.WarnContext(ctx, "upstream signal degraded",
			"upstream", classifier.Name(),
			"latency_ms", latency.Milliseconds(),
			"error", err,
		)
		return Signal{
			Source:    classifier.Name(),
			Succeeded: false,
			LatencyMs: latency.Milliseconds(),
			Error:     err.Error(),
		}
	}
	return *signal
}

// HealthSnapshot returns per-upstream health keyed by upstream name.
func (a *Aggregator) HealthSnapshot() map[string]HealthStatus {
	snapshot := make(map[string]HealthStatus, len(a.classifiers))
	for _, c := range a.classifiers {
		snapshot[c.Name()] = c.GetHealth()
	}
	return snapshot
}

// Close closes every classifier, returning the first error.
func (a *Aggregator) Close() error {
	var firstErr error
	for _, c := range a.classifiers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
