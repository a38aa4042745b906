package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// stubLogSource records the requested line count and returns fixed lines.
type stubLogSource struct {
	lines     []string
	requested int
}

func (s *stubLogSource) Recent(n int) []string {
	s.requested = n
	if n > len(s.lines) {
		n = len(s.lines)
	}
	return s.lines[len(s.lines)-n:]
}

func TestDiagnosticsHandler(t *testing.T) {
	source := &stubLogSource{lines: []string{"line one", "line two", "line three"}}
	handler := NewDiagnosticsHandler(source)

	req := httptest.NewRequest(http.MethodGet, "/v1/diagnostics/logs", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		OK    bool     `json:"ok"`
		Count int      `json:"count"`
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}

	if !body.OK {
		t.Error("ok = false, want true")
	}
	if body.Count != 3 {
		t.Errorf("count = %d, want 3", body.Count)
	}
	if source.requested != defaultDiagnosticsLines {
		t.Errorf("requested %d lines, want default %d", source.requested, defaultDiagnosticsLines)
	}
}

func TestDiagnosticsHandlerExplicitCount(t *testing.T) {
	source := &stubLogSource{lines: []string{"a", "b", "c", "d", "e"}}
	handler := NewDiagnosticsHandler(source)

	req := httptest.NewRequest(http.MethodGet, "/v1/diagnostics/logs?n=2", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var body struct {
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}

	if len(body.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(body.Lines))
	}
	// Most recent lines, oldest first.
	if body.Lines[0] != "d" || body.Lines[1] != "e" {
		t.Errorf("lines = %v, want [d e]", body.Lines)
	}
}

func TestDiagnosticsHandlerCapsCount(t *testing.T) {
	source := &stubLogSource{lines: []string{"a"}}
	handler := NewDiagnosticsHandler(source)

	req := httptest.NewRequest(http.MethodGet, "/v1/diagnostics/logs?n=100000", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if source.requested != maxDiagnosticsLines {
		t.Errorf("requested %d lines, want cap %d", source.requested, maxDiagnosticsLines)
	}
}

func TestDiagnosticsHandlerRejectsBadCount(t *testing.T) {
	for _, bad := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/diagnostics/logs?n="+bad, nil)
		rec := httptest.NewRecorder()

		NewDiagnosticsHandler(&stubLogSource{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("n=%s: status = %d, want %d", bad, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestDiagnosticsHandlerMethodNotAllowed(t *testing.T) {
	handler := NewDiagnosticsHandler(&stubLogSource{})

	req := httptest.NewRequest(http.MethodPost, "/v1/diagnostics/logs", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
