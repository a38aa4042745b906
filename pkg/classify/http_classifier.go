package classify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"veristone-hq/clarion/pkg/intake"
)

// Connection pool tuning and response bounds.
const (
	maxIdleConns        = 100
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 90 * time.Second

	// maxResponseBytes caps how much of an upstream response body is read.
	maxResponseBytes = 1 << 20

	// unhealthyThreshold is the consecutive-failure count after which an
	// upstream is marked unhealthy.
	unhealthyThreshold = 3
)

// HTTPClassifier is the HTTP adapter for upstream classification services.
// It provides connection pooling, retry logic with exponential backoff,
// timeout handling, and health monitoring.
type HTTPClassifier struct {
	// config contains the upstream configuration
	config UpstreamConfig

	// client is the HTTP client with connection pooling
	client *http.Client

	// health tracks the upstream's health status
	health HealthStatus

	// healthMu protects concurrent access to health status
	healthMu sync.RWMutex
}

// NewHTTPClassifier creates a classifier for one configured upstream,
// filling zero-valued bounds with defaults.
func NewHTTPClassifier(config UpstreamConfig) (*HTTPClassifier, error) {
	if config.Name == "" {
		return nil, &ConfigError{Upstream: config.Name, Field: "name", Message: "must not be empty"}
	}
	if config.Endpoint == "" {
		return nil, &ConfigError{Upstream: config.Name, Field: "endpoint", Message: "must not be empty"}
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.PayloadStyle == "" {
		config.PayloadStyle = PayloadBinary
	}
	if config.Extraction == "" {
		config.Extraction = ExtractScore
	}

	transport := &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	now := time.Now()
	return &HTTPClassifier{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		health: HealthStatus{
			IsHealthy:   true, // Start optimistic
			LastCheck:   now,
			LastSuccess: now,
		},
	}, nil
}

// Name returns the configured upstream name.
func (c *HTTPClassifier) Name() string {
	return c.config.Name
}

// IsHealthy returns the current health flag.
func (c *HTTPClassifier) IsHealthy() bool {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health.IsHealthy
}

// GetHealth returns detailed health information.
func (c *HTTPClassifier) GetHealth() HealthStatus {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health
}

// updateHealth updates health status after a call or probe.
func (c *HTTPClassifier) updateHealth(success bool, err error) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	c.health.LastCheck = time.Now()

	if success {
		c.health.IsHealthy = true
		c.health.ConsecutiveFailures = 0
		c.health.LastError = nil
		c.health.LastSuccess = time.Now()
		return
	}

	c.health.ConsecutiveFailures++
	c.health.LastError = err

	if c.health.ConsecutiveFailures >= unhealthyThreshold {
		c.health.IsHealthy = false
		slog.Warn("upstream marked unhealthy",
			"upstream", c.config.Name,
			"consecutive_failures", c.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// recordCall records call counters.
func (c *HTTPClassifier) recordCall(success bool) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	c.health.TotalCalls++
	if !success {
		c.health.FailedCalls++
	}
}

// Classify posts the artifact to the upstream and extracts its score.
// The call is bounded by the configured timeout; transient failures are
// retried inside that bound.
func (c *HTTPClassifier) Classify(ctx context.Context, artifact *intake.Artifact) (*Signal, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, contentType, err := buildPayload(c.config.PayloadStyle, artifact)
	if err != nil {
		return nil, &UpstreamError{Upstream: c.config.Name, Message: "building payload", Cause: err}
	}

	resp, err := c.doRequest(ctx, body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.updateHealth(false, err)
		return nil, &UpstreamError{Upstream: c.config.Name, Message: "reading response", Cause: err}
	}

	score, err := extractScore(c.config.Name, c.config.Extraction, raw)
	if err != nil {
		return nil, err
	}

	return &Signal{
		Source:     c.config.Name,
		Succeeded:  true,
		Score:      &score,
		RawPayload: raw,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// doRequest performs the POST with retry logic. It automatically retries
// transport errors and 5xx responses with exponential backoff, bounded by
// the call context.
func (c *HTTPClassifier) doRequest(ctx context.Context, body []byte, contentType string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			slog.Debug("retrying upstream call",
				"upstream", c.config.Name,
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)

			select {
			case <-ctx.Done():
				return nil, &TimeoutError{Upstream: c.config.Name, Timeout: c.config.Timeout}
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		c.setAuth(req)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			c.recordCall(false)

			if ctx.Err() != nil {
				// Context cancelled or deadline hit - don't retry
				c.updateHealth(false, err)
				return nil, &TimeoutError{Upstream: c.config.Name, Timeout: c.config.Timeout}
			}

			slog.Warn("upstream call failed, will retry",
				"upstream", c.config.Name,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			c.recordCall(true)
			c.updateHealth(true, nil)
			return resp, nil
		}

		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			// Authentication error - don't retry
			c.recordCall(false)
			c.updateHealth(false, fmt.Errorf("authentication failed"))
			return nil, &AuthError{Upstream: c.config.Name, Message: string(errorBody)}

		case http.StatusTooManyRequests:
			// Rate limit - don't retry within this call
			c.recordCall(false)
			return nil, &RateLimitError{
				Upstream:   c.config.Name,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(errorBody),
			}

		case http.StatusBadRequest:
			// Bad request - don't retry
			c.recordCall(false)
			return nil, &UpstreamError{
				Upstream:   c.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}

		default:
			// Server error (5xx) or other status - retry
			lastErr = &UpstreamError{
				Upstream:   c.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}
			c.recordCall(false)

			slog.Warn("upstream returned error status, will retry",
				"upstream", c.config.Name,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	c.updateHealth(false, lastErr)
	return nil, lastErr
}

// setAuth attaches the configured credential.
func (c *HTTPClassifier) setAuth(req *http.Request) {
	if c.config.APIKey == "" {
		return
	}
	if c.config.AuthHeader != "" {
		req.Header.Set(c.config.AuthHeader, c.config.APIKey)
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
}

// HealthCheck probes the upstream endpoint with a HEAD request. Any
// response short of a server error counts as reachable.
func (c *HTTPClassifier) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.config.Endpoint, nil)
	if err != nil {
		return err
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		c.updateHealth(false, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		err := &UpstreamError{Upstream: c.config.Name, StatusCode: resp.StatusCode, Message: "health probe failed"}
		c.updateHealth(false, err)
		return err
	}

	c.updateHealth(true, nil)
	return nil
}

// Close releases idle connections.
func (c *HTTPClassifier) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// classifyEnvelope is the base64-json payload shape.
type classifyEnvelope struct {
	Filename string `json:"filename,omitempty"`
	MIMEType string `json:"mime_type"`
	Content  string `json:"content"`
}

// buildPayload renders the artifact in the upstream's transport style.
func buildPayload(style PayloadStyle, artifact *intake.Artifact) (body []byte, contentType string, err error) {
	switch style {
	case PayloadBase64JSON:
		body, err = json.Marshal(classifyEnvelope{
			Filename: artifact.Filename,
			MIMEType: artifact.MIMEType,
			Content:  base64.StdEncoding.EncodeToString(artifact.Data),
		})
		if err != nil {
			return nil, "", err
		}
		return body, "application/json", nil

	default:
		return artifact.Data, artifact.MIMEType, nil
	}
}

// parseRetryAfter parses the Retry-After header value. It supports both
// delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	// Try parsing as seconds
	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	// Try parsing as HTTP date
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
