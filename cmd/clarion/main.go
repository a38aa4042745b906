// Clarion is an audio trust analysis service.
//
// It accepts audio artifacts over HTTP or from a spool directory and
// produces signed-off trust reports, providing:
//   - Transport normalization (base64, remote URL, raw stream)
//   - Deterministic audio feature extraction
//   - Parallel external classifier aggregation
//   - Weighted composite trust scoring
//   - Report archival, forwarding, and retention
//
// Usage:
//
//	# Start server with default configuration
//	clarion run
//
//	# Start with custom configuration file
//	clarion run --config /path/to/config.yaml
//
//	# Analyze local files without a server
//	clarion analyze recording.wav
//
//	# Watch a spool directory
//	clarion watch /var/spool/clarion
//
//	# Query the report archive
//	clarion reports list --time-range "2026-08-01T00:00:00Z/2026-08-24T00:00:00Z"
//
//	# Show version information
//	clarion version
//
// For complete documentation, see: https://github.com/veristone-hq/clarion
package main

func main() {
	Execute()
}
