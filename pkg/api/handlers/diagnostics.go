package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// Diagnostics line limits. The buffer itself is bounded, the cap just
// keeps single responses reasonable.
const (
	defaultDiagnosticsLines = 100
	maxDiagnosticsLines     = 1000
)

// LogSource provides recent log lines. *logging.LogBuffer satisfies it.
type LogSource interface {
	Recent(n int) []string
}

// DiagnosticsHandler serves GET /v1/diagnostics/logs: the most recent
// structured log lines, oldest first, for debugging without shell access
// to the host.
type DiagnosticsHandler struct {
	source LogSource
}

// NewDiagnosticsHandler creates the diagnostics handler.
func NewDiagnosticsHandler(source LogSource) *DiagnosticsHandler {
	return &DiagnosticsHandler{source: source}
}

// ServeHTTP implements http.Handler. The optional n query parameter
// bounds the number of returned lines (default 100, cap 1000).
func (h *DiagnosticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	n := defaultDiagnosticsLines
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"ok":     false,
				"error":  "invalid query parameter",
				"detail": "n must be a positive integer",
			})
			return
		}
		n = parsed
	}
	if n > maxDiagnosticsLines {
		n = maxDiagnosticsLines
	}

	lines := h.source.Recent(n)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":        true,
		"count":     len(lines),
		"lines":     lines,
		"timestamp": time.Now().Unix(),
	})
}
