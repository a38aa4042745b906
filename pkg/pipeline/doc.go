// Package pipeline sequences one artifact through feature extraction,
// upstream signal aggregation, composite scoring, and report assembly.
//
// The pipeline owns no transport and no request state: it is constructed
// once at startup from configuration and shared by every caller (HTTP
// handlers, the CLI, the spool watcher). Collaborators degrade to nil
// cleanly, so a pipeline without storage, without a forwarder, or without
// a single configured upstream is still a complete analyzer running on
// local heuristics alone.
//
// # Usage
//
//	classifiers, err := classify.BuildClassifiers(pipeline.UpstreamConfigs(cfg))
//	if err != nil {
//	    return err
//	}
//	pipe := pipeline.New(cfg, classifiers, emitter, archive).
//	    WithTelemetry(collector, tracer)
//	defer pipe.Close()
//
//	trustReport, err := pipe.Run(ctx, artifact)
//
// Run either returns a complete trust report or no report at all; degraded
// upstreams are recorded inside the report, never surfaced as errors.
package pipeline
