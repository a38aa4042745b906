package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"veristone-hq/clarion/pkg/api"
	"veristone-hq/clarion/pkg/intake"
)

// AnalyzeHandler handles POST /v1/analyze: a JSON body naming exactly one
// data source (base64 blob or remote URL), answered with a trust report
// envelope.
type AnalyzeHandler struct {
	analyzer Analyzer
	fetcher  *intake.Fetcher
	limits   intake.Limits
	logger   *slog.Logger
	observer Observer
}

// NewAnalyzeHandler creates the structured-analysis handler.
func NewAnalyzeHandler(analyzer Analyzer, fetcher *intake.Fetcher, limits intake.Limits, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		fetcher:  fetcher,
		limits:   limits,
		logger:   logger,
	}
}

// WithObserver attaches request metrics recording.
func (h *AnalyzeHandler) WithObserver(observer Observer) *AnalyzeHandler {
	h.observer = observer
	return h
}

// ServeHTTP implements http.Handler.
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteMethodNotAllowed(w)
		return
	}

	start := time.Now()
	ctx := r.Context()

	req, err := api.ParseAnalyzeRequest(r, h.limits.MaxBytes)
	if err != nil {
		h.fail(w, "analyze", start, err)
		return
	}

	var artifact *intake.Artifact
	if req.Blob != "" {
		artifact, err = intake.FromBase64(req.Blob, req.Filename, req.MIMEType, h.limits)
	} else {
		artifact, err = h.fetcher.Fetch(ctx, req.URL, req.Filename)
	}
	if err != nil {
		h.fail(w, "analyze", start, err)
		return
	}

	observePayload(h.observer, artifact)

	rep, err := h.analyzer.Run(ctx, artifact)
	if err != nil {
		h.fail(w, "analyze", start, err)
		return
	}

	if err := api.WriteReport(w, rep); err != nil {
		h.logger.Error("Failed to write analysis response",
			slog.String("error", err.Error()))
	}
	observeRequest(h.observer, "analyze", http.StatusOK, start)

	h.logger.Debug("Analysis completed",
		slog.String("report_id", rep.ID),
		slog.String("digest", rep.Metadata.Digest),
		slog.Float64("composite_score", rep.CompositeScore),
		slog.String("method", rep.Method))
}

// fail writes the error envelope, logs, and records metrics.
func (h *AnalyzeHandler) fail(w http.ResponseWriter, endpoint string, start time.Time, err error) {
	status := api.WriteErrorResponse(w, err)
	logFailure(h.logger, endpoint, status, err)
	observeRequest(h.observer, endpoint, status, start)
}

// RawAnalyzeHandler handles POST /v1/analyze/raw: the request body is the
// artifact itself, with Content-Type as the declared MIME type and an
// optional X-Filename header.
type RawAnalyzeHandler struct {
	analyzer Analyzer
	limits   intake.Limits
	logger   *slog.Logger
	observer Observer
}

// NewRawAnalyzeHandler creates the raw-stream handler.
func NewRawAnalyzeHandler(analyzer Analyzer, limits intake.Limits, logger *slog.Logger) *RawAnalyzeHandler {
	return &RawAnalyzeHandler{
		analyzer: analyzer,
		limits:   limits,
		logger:   logger,
	}
}

// WithObserver attaches request metrics recording.
func (h *RawAnalyzeHandler) WithObserver(observer Observer) *RawAnalyzeHandler {
	h.observer = observer
	return h
}

// ServeHTTP implements http.Handler.
func (h *RawAnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteMethodNotAllowed(w)
		return
	}

	start := time.Now()
	ctx := r.Context()

	declaredType := api.DeclaredMIMEType(r)
	filename := r.Header.Get(api.FilenameHeader)

	artifact, err := intake.FromReader(r.Body, declaredType, filename, h.limits)
	if err != nil {
		h.fail(w, start, err)
		return
	}

	observePayload(h.observer, artifact)

	rep, err := h.analyzer.Run(ctx, artifact)
	if err != nil {
		h.fail(w, start, err)
		return
	}

	if err := api.WriteReport(w, rep); err != nil {
		h.logger.Error("Failed to write analysis response",
			slog.String("error", err.Error()))
	}
	observeRequest(h.observer, "analyze_raw", http.StatusOK, start)
}

func (h *RawAnalyzeHandler) fail(w http.ResponseWriter, start time.Time, err error) {
	status := api.WriteErrorResponse(w, err)
	logFailure(h.logger, "analyze_raw", status, err)
	observeRequest(h.observer, "analyze_raw", status, start)
}

// logFailure logs a failed request at a level matching the status class.
func logFailure(logger *slog.Logger, endpoint string, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			slog.String("endpoint", endpoint),
			slog.Int("status", status),
			slog.String("error", err.Error()))
		return
	}
	logger.Warn("Request rejected",
		slog.String("endpoint", endpoint),
		slog.Int("status", status),
		slog.String("error", err.Error()))
}
