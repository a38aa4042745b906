package intake

import (
	"encoding/base64"
	"io"

	"veristone-hq/clarion/pkg/analysis"
)

// FromBase64 decodes a base64-encoded blob into an Artifact. Malformed
// encoding and empty payloads are InputErrors; a decoded payload over the
// size ceiling is a PayloadTooLargeError.
func FromBase64(blob, filename, mimeType string, limits Limits) (*Artifact, error) {
	limits = limits.withDefaults()

	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, &InputError{Reason: ReasonInvalidEncoding, Cause: err}
	}
	if len(data) == 0 {
		return nil, &InputError{Reason: ReasonEmptyPayload}
	}
	if int64(len(data)) > limits.MaxBytes {
		return nil, &PayloadTooLargeError{Size: int64(len(data)), Limit: limits.MaxBytes}
	}

	return &Artifact{
		Data:     data,
		MIMEType: resolveMIME(mimeType, data),
		Filename: filename,
		Size:     int64(len(data)),
		Source:   SourceBase64,
	}, nil
}

// FromReader materializes an Artifact from a raw byte stream, reading
// through the incremental size ceiling so an oversized body is rejected
// without buffering past the limit.
func FromReader(r io.Reader, declaredType, filename string, limits Limits) (*Artifact, error) {
	limits = limits.withDefaults()

	data, exceeded, err := readCapped(r, limits.MaxBytes)
	if err != nil {
		return nil, &InputError{Reason: ReasonUnreadable, Cause: err}
	}
	if exceeded {
		return nil, &PayloadTooLargeError{Size: int64(len(data)), Limit: limits.MaxBytes}
	}
	if len(data) == 0 {
		return nil, &InputError{Reason: ReasonEmptyPayload}
	}

	return &Artifact{
		Data:     data,
		MIMEType: resolveMIME(declaredType, data),
		Filename: filename,
		Size:     int64(len(data)),
		Source:   SourceStream,
	}, nil
}

// readCapped reads r up to max bytes. exceeded reports that the stream
// held more than max; the transfer stops immediately at that point, so at
// most max+1 bytes are ever buffered.
func readCapped(r io.Reader, max int64) (data []byte, exceeded bool, err error) {
	data, err = io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, false, err
	}
	return data, int64(len(data)) > max, nil
}

// resolveMIME prefers the declared content type and falls back to
// magic-byte sniffing so the MIME type is never left unset.
func resolveMIME(declared string, data []byte) string {
	if declared != "" {
		return declared
	}
	return sniffMIME(data)
}

// sniffMIME maps the container fingerprint onto a MIME type.
func sniffMIME(data []byte) string {
	switch analysis.DetectFormat(data) {
	case analysis.FormatWAV:
		return "audio/wav"
	case analysis.FormatMP3:
		return "audio/mpeg"
	case analysis.FormatFLAC:
		return "audio/flac"
	default:
		return "application/octet-stream"
	}
}
