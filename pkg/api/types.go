package api

import (
	"veristone-hq/clarion/pkg/intake"
	"veristone-hq/clarion/pkg/report"
)

// AnalyzeRequest is the JSON body accepted by POST /v1/analyze. Exactly one
// of Blob or URL must be set.
type AnalyzeRequest struct {
	// Blob is a standard base64 encoding of the artifact bytes.
	Blob string `json:"blob,omitempty"`

	// URL is a remote location to fetch the artifact from.
	URL string `json:"url,omitempty"`

	// Filename is an optional caller-supplied name, echoed into the report.
	Filename string `json:"filename,omitempty"`

	// MIMEType is the declared content type. When empty the type is
	// inferred from leading magic bytes.
	MIMEType string `json:"mimetype,omitempty"`
}

// Validate checks that the request names exactly one data source.
func (req *AnalyzeRequest) Validate() error {
	if req.Blob == "" && req.URL == "" {
		return &intake.InputError{
			Reason: intake.ReasonNoSource,
			Detail: "provide exactly one of blob or url",
		}
	}
	if req.Blob != "" && req.URL != "" {
		return &intake.InputError{
			Reason: intake.ReasonNoSource,
			Detail: "blob and url are mutually exclusive",
		}
	}
	return nil
}

// ReportEnvelope wraps a successful analysis or archive lookup.
type ReportEnvelope struct {
	OK     bool                `json:"ok"`
	Report *report.TrustReport `json:"report"`
}

// ReportListEnvelope wraps an archive listing.
type ReportListEnvelope struct {
	OK      bool                  `json:"ok"`
	Count   int                   `json:"count"`
	Reports []*report.TrustReport `json:"reports"`
}

// ErrorEnvelope is the uniform failure shape returned by every endpoint.
type ErrorEnvelope struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// NewErrorEnvelope creates an error envelope with the given message and
// optional detail.
func NewErrorEnvelope(message, detail string) *ErrorEnvelope {
	return &ErrorEnvelope{
		OK:     false,
		Error:  message,
		Detail: detail,
	}
}
