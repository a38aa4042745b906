package sink

import (
	"context"
	"log/slog"

	"veristone-hq/clarion/pkg/report"
)

// LogSink writes one structured log line per trust report. It is the
// default destination when no webhook is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log sink. A nil logger uses the process default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "report.sink.log")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(ctx context.Context, r *report.TrustReport) error {
	if r == nil {
		return nil
	}
	s.logger.InfoContext(ctx, "trust report",
		"report_id", r.ID,
		"digest", r.Metadata.Digest,
		"source", r.Metadata.Source,
		"size_bytes", r.Metadata.SizeBytes,
		"format", r.Features.Format,
		"composite_score", r.CompositeScore,
		"method", r.Method,
		"signals", len(r.Signals),
	)
	return nil
}

func (s *LogSink) Close(context.Context) error { return nil }
