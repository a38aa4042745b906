package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// UpstreamHealthHandler serves GET /v1/upstreams/health with per-upstream
// classifier detail. An empty upstream set is a normal response, not an
// error.
type UpstreamHealthHandler struct {
	source HealthSource
}

// NewUpstreamHealthHandler creates the upstream health handler.
func NewUpstreamHealthHandler(source HealthSource) *UpstreamHealthHandler {
	return &UpstreamHealthHandler{source: source}
}

// ServeHTTP implements http.Handler.
func (h *UpstreamHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.source.HealthSnapshot()

	upstreams := make(map[string]interface{}, len(snapshot))
	for name, status := range snapshot {
		var lastError interface{}
		if status.LastError != nil {
			lastError = status.LastError.Error()
		}

		upstreams[name] = map[string]interface{}{
			"healthy":              status.IsHealthy,
			"last_check":           status.LastCheck.Unix(),
			"consecutive_failures": status.ConsecutiveFailures,
			"total_calls":          status.TotalCalls,
			"failed_calls":         status.FailedCalls,
			"last_error":           lastError,
		}
	}

	response := map[string]interface{}{
		"upstreams": upstreams,
		"timestamp": time.Now().Unix(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
