package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"veristone-hq/clarion/pkg/api"
)

func TestRecoveryMiddlewarePanic(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went terribly wrong")
	})

	wrapped := RecoveryMiddleware(handler)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", nil)
	rec := httptest.NewRecorder()

	// Must not propagate the panic.
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var envelope api.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if envelope.OK {
		t.Error("envelope.OK = true, want false")
	}
	if envelope.Error != "internal error" {
		t.Errorf("envelope.Error = %q, want %q", envelope.Error, "internal error")
	}
	// The panic value must never reach the client.
	if envelope.Detail != "" {
		t.Errorf("envelope.Detail = %q, want empty", envelope.Detail)
	}
}

func TestRecoveryMiddlewarePanicWithError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m map[string]string
		m["boom"] = "nil map write" // deliberate nil map panic
	})

	wrapped := RecoveryMiddleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestRecoveryMiddlewareNoPanic(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	wrapped := RecoveryMiddleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d (normal responses pass through)", rec.Code, http.StatusAccepted)
	}
}
