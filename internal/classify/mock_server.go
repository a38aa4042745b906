package classify

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer is a mock HTTP server for testing upstream classifier
// adapters. It simulates the response shapes and failure modes of real
// classification services.
type MockServer struct {
	server    *httptest.Server
	responses map[string]MockResponse
	requests  []ReceivedRequest
	mu        sync.Mutex
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode int
	Body       interface{}
	Delay      time.Duration
	Headers    map[string]string
}

// ReceivedRequest captures one inbound request for later assertions.
type ReceivedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets a mock response for a specific endpoint.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.responses[path] = response
}

// RequestCount returns the number of requests received.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return len(ms.requests)
}

// Requests returns a copy of every captured request.
func (ms *MockServer) Requests() []ReceivedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	out := make([]ReceivedRequest, len(ms.requests))
	copy(out, ms.requests)
	return out
}

// Reset clears captured requests.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.requests = nil
}

// handler handles incoming HTTP requests.
func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requests = append(ms.requests, ReceivedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	// Apply delay, bailing out when the client gives up so slow mocks do
	// not hold the server open past the test.
	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(response.StatusCode)

	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// MockScoreResponse creates a {"score": x} response.
func MockScoreResponse(score float64) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       map[string]interface{}{"score": score, "model": "audio-guard-v2"},
	}
}

// MockProbabilityResponse creates a {"probability": x} response.
func MockProbabilityResponse(probability float64) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       map[string]interface{}{"probability": probability},
	}
}

// MockLabelResponse creates a labeled-score array response.
func MockLabelResponse(labels map[string]float64) MockResponse {
	var entries []map[string]interface{}
	for label, score := range labels {
		entries = append(entries, map[string]interface{}{
			"label": label,
			"score": score,
		})
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       map[string]interface{}{"labels": entries},
	}
}

// MockTextResponse creates a free-text response.
func MockTextResponse(text string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       text,
		Headers:    map[string]string{"Content-Type": "text/plain"},
	}
}

// MockSlowResponse wraps a response with a delivery delay to simulate a
// slow or timing-out upstream.
func MockSlowResponse(delay time.Duration, inner MockResponse) MockResponse {
	inner.Delay = delay
	return inner
}

// MockErrorResponse creates an error response with the given status.
func MockErrorResponse(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
				"code":    statusCode,
			},
		},
	}
}

// MockAuthError creates a 401 authentication error response.
func MockAuthError() MockResponse {
	return MockErrorResponse(http.StatusUnauthorized, "invalid api key")
}

// MockRateLimitError creates a 429 rate limit error response.
func MockRateLimitError(retryAfter int) MockResponse {
	response := MockErrorResponse(http.StatusTooManyRequests, "rate limit exceeded")
	response.Headers = map[string]string{
		"Retry-After": fmt.Sprintf("%d", retryAfter),
	}
	return response
}

// MockServerError creates a 500 internal server error response.
func MockServerError() MockResponse {
	return MockErrorResponse(http.StatusInternalServerError, "internal server error")
}
