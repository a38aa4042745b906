// Package classify implements the external-signal half of the trust
// pipeline: bounded, concurrent calls to configured upstream audio
// classification services.
//
// # Overview
//
// The package is organized into several layers:
//
//  1. Classifier Interface - The contract every upstream adapter implements
//  2. HTTP Classifier - Common HTTP client logic (connection pooling, retries, timeouts, health)
//  3. Score Extraction - Per-upstream normalization of heterogeneous response shapes
//  4. Aggregator - Fan-out/fan-in across all configured upstreams
//  5. Factory - Builds classifiers from configuration
//
// # Failure discipline
//
// Upstream presence is determined entirely by configuration; zero upstreams
// is a normal, fully supported mode. A timeout, transport error, or
// unextractable response on one upstream never aborts its siblings or the
// request: it degrades to a Signal with Succeeded=false and no score. The
// aggregator waits for every call to settle before returning, so callers
// never observe partial aggregation.
//
// # Usage
//
//	classifiers, err := classify.BuildClassifiers(configs)
//	if err != nil {
//	    return err
//	}
//	aggregator := classify.NewAggregator(classifiers)
//	signals := aggregator.Collect(ctx, artifact)
package classify
