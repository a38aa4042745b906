package api

import (
	"errors"
	"fmt"
	"net/http"

	"veristone-hq/clarion/pkg/intake"
	"veristone-hq/clarion/pkg/report"
)

// HandleError converts an error into the HTTP status code and error
// envelope returned to the caller.
//
// Mapping:
//   - InputError            -> 400, envelope error is the stable reason
//   - PayloadTooLargeError  -> 413
//   - StorageError          -> 500 (archive queries)
//   - anything else         -> 500 with a generic message
//
// Upstream classifier failures never reach this mapper; the aggregator
// degrades them into failed signals inside the pipeline.
func HandleError(err error) (int, *ErrorEnvelope) {
	var inputErr *intake.InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest, NewErrorEnvelope(inputErr.Reason, inputErr.Detail)
	}

	var tooLarge *intake.PayloadTooLargeError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, NewErrorEnvelope(
			"payload too large",
			fmt.Sprintf("%d bytes exceeds limit of %d", tooLarge.Size, tooLarge.Limit),
		)
	}

	var storageErr *report.StorageError
	if errors.As(err, &storageErr) {
		return http.StatusInternalServerError, NewErrorEnvelope("report archive unavailable", "")
	}

	// Unknown failure. Detail stays in the logs, never in the response.
	return http.StatusInternalServerError, NewErrorEnvelope("internal error", "")
}

// WriteErrorResponse maps err onto the error envelope and writes it. It
// returns the status code used so callers can record it.
func WriteErrorResponse(w http.ResponseWriter, err error) int {
	status, envelope := HandleError(err)
	_ = WriteJSONResponse(w, status, envelope)
	return status
}
