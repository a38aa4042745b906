package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"veristone-hq/clarion/pkg/report"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the content-type header before writing the status line.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteReport writes the success envelope around a completed trust report.
func WriteReport(w http.ResponseWriter, rep *report.TrustReport) error {
	return WriteJSONResponse(w, http.StatusOK, &ReportEnvelope{OK: true, Report: rep})
}

// WriteReportList writes the success envelope around an archive listing.
func WriteReportList(w http.ResponseWriter, reports []*report.TrustReport) error {
	return WriteJSONResponse(w, http.StatusOK, &ReportListEnvelope{
		OK:      true,
		Count:   len(reports),
		Reports: reports,
	})
}

// WriteMethodNotAllowed writes the uniform 405 envelope.
func WriteMethodNotAllowed(w http.ResponseWriter) {
	_ = WriteJSONResponse(w, http.StatusMethodNotAllowed,
		NewErrorEnvelope("method not allowed", ""))
}
