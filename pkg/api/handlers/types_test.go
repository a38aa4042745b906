package handlers

import (
	"net/http"
	"testing"
	"time"

	"veristone-hq/clarion/pkg/intake"
)

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusOK, "success"},
		{http.StatusCreated, "success"},
		{http.StatusBadRequest, "rejected"},
		{http.StatusNotFound, "rejected"},
		{http.StatusRequestEntityTooLarge, "rejected"},
		{http.StatusInternalServerError, "error"},
		{http.StatusBadGateway, "error"},
	}

	for _, tt := range tests {
		if got := statusLabel(tt.status); got != tt.want {
			t.Errorf("statusLabel(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

// recordingObserver captures observed requests and payloads.
type recordingObserver struct {
	endpoints []string
	statuses  []string
	payloads  []int
}

func (r *recordingObserver) RecordRequest(endpoint, status string, duration time.Duration) {
	r.endpoints = append(r.endpoints, endpoint)
	r.statuses = append(r.statuses, status)
}

func (r *recordingObserver) RecordPayload(source string, sizeBytes int) {
	r.payloads = append(r.payloads, sizeBytes)
}

func TestObserveRequestNilObserver(t *testing.T) {
	// Must not panic.
	observeRequest(nil, "analyze", http.StatusOK, time.Now())
	observePayload(nil, &intake.Artifact{Size: 10})
}

func TestObserveRequest(t *testing.T) {
	observer := &recordingObserver{}

	observeRequest(observer, "analyze", http.StatusOK, time.Now())
	observeRequest(observer, "analyze", http.StatusBadRequest, time.Now())

	if len(observer.endpoints) != 2 {
		t.Fatalf("recorded %d requests, want 2", len(observer.endpoints))
	}
	if observer.statuses[0] != "success" || observer.statuses[1] != "rejected" {
		t.Errorf("statuses = %v, want [success rejected]", observer.statuses)
	}
}

func TestObservePayload(t *testing.T) {
	observer := &recordingObserver{}

	observePayload(observer, &intake.Artifact{Source: intake.SourceBase64, Size: 2048})

	if len(observer.payloads) != 1 || observer.payloads[0] != 2048 {
		t.Errorf("payloads = %v, want [2048]", observer.payloads)
	}
}
