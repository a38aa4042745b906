// Package intake normalizes the supported transport encodings of a
// submitted audio payload into a single in-memory Artifact.
//
// # Overview
//
// Callers hand the pipeline one of three input shapes:
//
//  1. A base64-encoded blob carried in a structured request (FromBase64)
//  2. A remote URL to fetch (Fetcher.Fetch)
//  3. A raw byte stream tagged with a content type (FromReader)
//
// Every path produces the same Artifact: the exact payload bytes, a MIME
// type (declared, or sniffed from leading magic bytes, never unset), the
// optional filename, and the source tag. The Artifact is owned exclusively
// by one pipeline invocation and discarded at request end.
//
// # Size discipline
//
// Remote fetches and raw streams are read through an incremental byte
// ceiling that aborts the transfer the moment the configured maximum is
// exceeded; a fully materialized artifact is checked against the maximum
// exactly once. An artifact exactly at the ceiling is accepted.
//
// # Errors
//
// Malformed or missing input yields an InputError with a stable reason
// string; an oversized materialized payload yields PayloadTooLargeError.
// Both map onto HTTP statuses at the API boundary (400 and 413).
package intake
