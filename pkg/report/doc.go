// Package report assembles and distributes trust reports, the immutable
// outcome of one artifact analysis.
//
// # Architecture
//
// The report system consists of three layers:
//
//  1. Assembler - Builds the immutable TrustReport from pipeline outputs
//  2. Sinks - Forward finished reports to external destinations (webhook, log)
//  3. Storage Backend - Optional archive of reports (SQLite, in-memory)
//
// # Trust Reports
//
// Each report captures:
//   - Content identity (SHA-256 digest over the exact artifact bytes)
//   - Artifact metadata (size, declared MIME type, filename, source)
//   - The extracted feature set (entropy, silence, format, encoder trace)
//   - Every upstream signal, including failed ones
//   - The composite score, its per-component breakdown, and the method tag
//
// The digest is the stable identity of the content: the same bytes always
// hash to the same digest no matter how they arrived or what they were
// named. Reports are never mutated after assembly.
//
// # Forwarding
//
// Forwarding is fire-and-forget: the assembler hands the finished report to
// a Forwarder (see the sink subpackage) and returns without waiting for
// delivery. A slow or failing destination never blocks or fails the
// analysis request.
//
// # Basic Usage
//
//	emitter := sink.NewEmitter(sink.EmitterConfig{}, []sink.Sink{
//	    sink.NewLogSink(nil),
//	})
//	defer emitter.Close(context.Background())
//
//	assembler := report.NewAssembler(emitter)
//	trustReport := assembler.Assemble(ctx, artifact, features, signals, result)
//
// # Archive
//
// When an archive is configured, reports are additionally persisted through
// the Storage interface (see the storage subpackage) and pruned on a
// schedule (see the retention subpackage). Archive failures are logged and
// never affect the request path.
package report
