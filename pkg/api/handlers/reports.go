package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"veristone-hq/clarion/pkg/api"
	"veristone-hq/clarion/pkg/report"
)

const (
	// defaultReportLimit caps unpaginated archive listings.
	defaultReportLimit = 50

	// maxReportLimit is the hard ceiling on one listing page.
	maxReportLimit = 500
)

// ReportsHandler serves the report archive: GET /v1/reports for filtered
// listings and GET /v1/reports/{id} for a single report. Both answer 404
// when the archive is disabled.
type ReportsHandler struct {
	storage  report.Storage
	logger   *slog.Logger
	observer Observer
}

// NewReportsHandler creates the archive handler. A nil storage marks the
// archive as disabled.
func NewReportsHandler(storage report.Storage, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{
		storage: storage,
		logger:  logger,
	}
}

// WithObserver attaches request metrics recording.
func (h *ReportsHandler) WithObserver(observer Observer) *ReportsHandler {
	h.observer = observer
	return h
}

// ServeHTTP implements http.Handler.
func (h *ReportsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteMethodNotAllowed(w)
		return
	}

	start := time.Now()

	if h.storage == nil {
		_ = api.WriteJSONResponse(w, http.StatusNotFound,
			api.NewErrorEnvelope("report archive disabled", ""))
		observeRequest(h.observer, "reports", http.StatusNotFound, start)
		return
	}

	id := reportID(r.URL.Path)
	if id == "" {
		h.list(w, r, start)
		return
	}
	h.get(w, r, id, start)
}

// list answers a filtered archive listing.
func (h *ReportsHandler) list(w http.ResponseWriter, r *http.Request, start time.Time) {
	query, err := parseReportQuery(r.URL.Query())
	if err != nil {
		_ = api.WriteJSONResponse(w, http.StatusBadRequest,
			api.NewErrorEnvelope("invalid query", err.Error()))
		observeRequest(h.observer, "reports", http.StatusBadRequest, start)
		return
	}

	reports, err := h.storage.Query(r.Context(), query)
	if err != nil {
		status := api.WriteErrorResponse(w, err)
		logFailure(h.logger, "reports", status, err)
		observeRequest(h.observer, "reports", status, start)
		return
	}

	_ = api.WriteReportList(w, reports)
	observeRequest(h.observer, "reports", http.StatusOK, start)
}

// get answers a single report lookup by ID.
func (h *ReportsHandler) get(w http.ResponseWriter, r *http.Request, id string, start time.Time) {
	rep, err := h.storage.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			_ = api.WriteJSONResponse(w, http.StatusNotFound,
				api.NewErrorEnvelope("report not found", id))
			observeRequest(h.observer, "reports", http.StatusNotFound, start)
			return
		}
		status := api.WriteErrorResponse(w, err)
		logFailure(h.logger, "reports", status, err)
		observeRequest(h.observer, "reports", status, start)
		return
	}

	_ = api.WriteReport(w, rep)
	observeRequest(h.observer, "reports", http.StatusOK, start)
}

// reportID extracts the trailing ID segment from /v1/reports/{id}. An
// empty result means a listing request.
func reportID(path string) string {
	rest := strings.TrimPrefix(path, "/v1/reports")
	rest = strings.Trim(rest, "/")
	return rest
}

// parseReportQuery converts URL query parameters into an archive query.
// Unparseable values are caller errors, not silently ignored.
func parseReportQuery(values url.Values) (*report.Query, error) {
	query := &report.Query{
		Digest: values.Get("digest"),
		Method: values.Get("method"),
		Format: values.Get("format"),
		Source: values.Get("source"),
		Limit:  defaultReportLimit,
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return nil, queryParamError("limit", raw)
		}
		if limit > maxReportLimit {
			limit = maxReportLimit
		}
		query.Limit = limit
	}

	if raw := values.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return nil, queryParamError("offset", raw)
		}
		query.Offset = offset
	}

	if raw := values.Get("min_score"); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, queryParamError("min_score", raw)
		}
		query.MinScore = &score
	}

	if raw := values.Get("max_score"); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, queryParamError("max_score", raw)
		}
		query.MaxScore = &score
	}

	if raw := values.Get("since"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, queryParamError("since", raw)
		}
		query.StartTime = &ts
	}

	if raw := values.Get("until"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, queryParamError("until", raw)
		}
		query.EndTime = &ts
	}

	query.SortBy = values.Get("sort_by")
	query.SortOrder = values.Get("sort_order")

	return query, nil
}

// queryParamError builds the 400 detail for an unparseable query parameter.
func queryParamError(param, value string) error {
	return fmt.Errorf("parameter %s rejects value %q", param, value)
}
