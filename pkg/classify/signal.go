package classify

import "encoding/json"

// Signal is the settled outcome of one upstream classification call. A
// failed or unreachable upstream yields Succeeded=false with a nil Score,
// never a crash and never a fabricated zero masquerading as "clean".
type Signal struct {
	// Source is the configured upstream name.
	Source string `json:"source"`

	// Succeeded reports whether the call completed and a score was
	// extracted.
	Succeeded bool `json:"succeeded"`

	// Score is the normalized risk score in [0,1]; nil when the call
	// failed or the response shape yielded no numeric score.
	Score *float64 `json:"score,omitempty"`

	// RawPayload is the upstream response body, kept for diagnostics and
	// evidence; omitted for failed calls.
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`

	// LatencyMs is the wall time of the call in milliseconds, including
	// timed-out calls.
	LatencyMs int64 `json:"latency_ms"`

	// Error is a diagnostic message for failed calls.
	Error string `json:"error,omitempty"`
}

// BestScore returns the strongest score among succeeded signals, or 0 and
// false when none succeeded.
func BestScore(signals []Signal) (float64, bool) {
	best := 0.0
	found := false
	for _, s := range signals {
		if !s.Succeeded || s.Score == nil {
			continue
		}
		if !found || *s.Score > best {
			best = *s.Score
		}
		found = true
	}
	return best, found
}
