package handlers

import (
	"context"
	"net/http"
	"time"

	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/intake"
	"veristone-hq/clarion/pkg/report"
)

// Analyzer runs one artifact through the full analysis pipeline. It is
// implemented by *pipeline.Pipeline.
type Analyzer interface {
	Run(ctx context.Context, artifact *intake.Artifact) (*report.TrustReport, error)
}

// HealthSource reports per-upstream classifier health. It is implemented by
// *pipeline.Pipeline.
type HealthSource interface {
	HealthSnapshot() map[string]classify.HealthStatus
}

// Observer records request-level metrics. *metrics.Collector satisfies it;
// a nil Observer disables recording.
type Observer interface {
	RecordRequest(endpoint, status string, duration time.Duration)
	RecordPayload(source string, sizeBytes int)
}

// statusLabel maps an HTTP status code onto the metrics status vocabulary.
func statusLabel(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "error"
	case status >= http.StatusBadRequest:
		return "rejected"
	default:
		return "success"
	}
}

// observeRequest records a completed request when metrics are enabled.
func observeRequest(observer Observer, endpoint string, status int, start time.Time) {
	if observer == nil {
		return
	}
	observer.RecordRequest(endpoint, statusLabel(status), time.Since(start))
}

// observePayload records the size of an accepted artifact.
func observePayload(observer Observer, artifact *intake.Artifact) {
	if observer == nil {
		return
	}
	observer.RecordPayload(string(artifact.Source), int(artifact.Size))
}
