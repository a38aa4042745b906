package intake

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Connection pool tuning for the fetch client.
const (
	fetchMaxIdleConns        = 100
	fetchMaxIdleConnsPerHost = 10
	fetchIdleConnTimeout     = 90 * time.Second
)

// defaultUserAgent identifies clarion to remote artifact hosts.
const defaultUserAgent = "clarion-fetch/1.0"

// Fetcher retrieves remote artifacts over HTTP. Transfers are bounded by
// the configured fetch timeout and read through an incremental byte
// ceiling that aborts mid-stream once the ceiling is crossed.
type Fetcher struct {
	// limits bounds transfer size and duration
	limits Limits

	// client is the HTTP client with connection pooling
	client *http.Client

	// userAgent is sent on every fetch request
	userAgent string
}

// NewFetcher creates a Fetcher with connection pooling.
func NewFetcher(limits Limits, userAgent string) *Fetcher {
	limits = limits.withDefaults()
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	transport := &http.Transport{
		MaxIdleConns:        fetchMaxIdleConns,
		MaxIdleConnsPerHost: fetchMaxIdleConnsPerHost,
		IdleConnTimeout:     fetchIdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Fetcher{
		limits: limits,
		client: &http.Client{
			Transport: transport,
			Timeout:   limits.FetchTimeout,
		},
		userAgent: userAgent,
	}
}

// Fetch downloads the artifact at url. The fetch is this request's sole
// data source, so every failure mode is an InputError that aborts the
// request: transport errors and non-2xx statuses as "remote fetch failed",
// a transfer crossing the byte ceiling as "remote payload too large".
// Cancelling ctx aborts the transfer.
func (f *Fetcher) Fetch(ctx context.Context, url, filename string) (*Artifact, error) {
	ctx, cancel := context.WithTimeout(ctx, f.limits.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &InputError{Reason: ReasonFetchFailed, Detail: "invalid url", Cause: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "audio/*, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		detail := "request failed"
		if ctx.Err() == context.DeadlineExceeded {
			detail = fmt.Sprintf("timeout after %s", f.limits.FetchTimeout)
		}
		return nil, &InputError{Reason: ReasonFetchFailed, Detail: detail, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &InputError{
			Reason: ReasonFetchFailed,
			Detail: fmt.Sprintf("status %d", resp.StatusCode),
		}
	}

	data, exceeded, err := readCapped(resp.Body, f.limits.MaxBytes)
	if err != nil {
		return nil, &InputError{Reason: ReasonFetchFailed, Detail: "read failed", Cause: err}
	}
	if exceeded {
		return nil, &InputError{
			Reason: ReasonRemoteTooLarge,
			Detail: fmt.Sprintf("exceeds %d bytes", f.limits.MaxBytes),
		}
	}
	if len(data) == 0 {
		return nil, &InputError{Reason: ReasonEmptyPayload}
	}

	return &Artifact{
		Data:     data,
		MIMEType: resolveMIME(contentType(resp), data),
		Filename: filename,
		Size:     int64(len(data)),
		Source:   SourceURL,
	}, nil
}

// contentType extracts the media type from the response, dropping
// parameters like charset.
func contentType(resp *http.Response) string {
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	if media, _, found := strings.Cut(ct, ";"); found {
		return strings.TrimSpace(media)
	}
	return strings.TrimSpace(ct)
}
