package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Extraction names the rule used to normalize one upstream's response
// shape into a score. Upstreams return wildly different shapes (a score
// field, a probability field, a labeled array, free text); the extraction
// rule keeps the aggregator itself shape-agnostic.
type Extraction string

// Supported extraction rules.
const (
	// ExtractScore reads a top-level "score" field.
	ExtractScore Extraction = "score"

	// ExtractProbability reads a top-level "probability" field.
	ExtractProbability Extraction = "probability"

	// ExtractLabels reads a labeled-score array and resolves the
	// synthetic-audio likelihood from it.
	ExtractLabels Extraction = "labels"

	// ExtractText pulls the first numeric token from a free-text body.
	ExtractText Extraction = "text"
)

// Label vocabularies for the labels rule. A synthetic-family label scores
// directly; a genuine-family label scores as its complement.
var (
	syntheticLabels = map[string]bool{
		"synthetic": true,
		"fake":      true,
		"deepfake":  true,
		"generated": true,
		"spoof":     true,
		"cloned":    true,
	}
	genuineLabels = map[string]bool{
		"real":      true,
		"genuine":   true,
		"human":     true,
		"bonafide":  true,
		"authentic": true,
	}
)

// numberPattern matches the first decimal number in a free-text response.
var numberPattern = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// scoredLabel is one entry of a labeled-score array.
type scoredLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// extractScore normalizes an upstream response body into a score in [0,1]
// using the configured rule. Inability to extract a numeric score is an
// ExtractionError, treated identically to a failed call; it is never
// silently reported as zero.
func extractScore(upstream string, rule Extraction, raw []byte) (float64, error) {
	switch rule {
	case ExtractProbability:
		return extractField(upstream, rule, raw, "probability")

	case ExtractLabels:
		return extractFromLabels(upstream, raw)

	case ExtractText:
		return extractFromText(upstream, raw)

	default:
		return extractField(upstream, ExtractScore, raw, "score")
	}
}

// extractField reads a single top-level numeric field.
func extractField(upstream string, rule Extraction, raw []byte, field string) (float64, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, &ExtractionError{Upstream: upstream, Extraction: rule, Detail: "response is not a JSON object"}
	}

	value, ok := payload[field]
	if !ok {
		return 0, &ExtractionError{Upstream: upstream, Extraction: rule, Detail: fmt.Sprintf("missing %q field", field)}
	}

	var score float64
	if err := json.Unmarshal(value, &score); err != nil {
		return 0, &ExtractionError{Upstream: upstream, Extraction: rule, Detail: fmt.Sprintf("%q field is not numeric", field)}
	}
	return normalizeScore(upstream, rule, score)
}

// extractFromLabels resolves a labeled-score array. The array may be bare
// or wrapped in a "labels" field. The strongest synthetic-family label
// wins; with only genuine-family labels the complement of the strongest
// is used.
func extractFromLabels(upstream string, raw []byte) (float64, error) {
	var labels []scoredLabel

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &labels); err != nil {
			return 0, &ExtractionError{Upstream: upstream, Extraction: ExtractLabels, Detail: "malformed label array"}
		}
	} else {
		var wrapper struct {
			Labels []scoredLabel `json:"labels"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil || wrapper.Labels == nil {
			return 0, &ExtractionError{Upstream: upstream, Extraction: ExtractLabels, Detail: "missing label array"}
		}
		labels = wrapper.Labels
	}

	synthetic, genuine := -1.0, -1.0
	for _, l := range labels {
		name := strings.ToLower(l.Label)
		if syntheticLabels[name] && l.Score > synthetic {
			synthetic = l.Score
		}
		if genuineLabels[name] && l.Score > genuine {
			genuine = l.Score
		}
	}

	switch {
	case synthetic >= 0:
		return normalizeScore(upstream, ExtractLabels, synthetic)
	case genuine >= 0:
		normalized, err := normalizeScore(upstream, ExtractLabels, genuine)
		if err != nil {
			return 0, err
		}
		return 1 - normalized, nil
	default:
		return 0, &ExtractionError{Upstream: upstream, Extraction: ExtractLabels, Detail: "no recognized label"}
	}
}

// extractFromText pulls the first numeric token from a free-text body.
func extractFromText(upstream string, raw []byte) (float64, error) {
	match := numberPattern.FindString(string(raw))
	if match == "" {
		return 0, &ExtractionError{Upstream: upstream, Extraction: ExtractText, Detail: "no numeric token in response"}
	}

	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, &ExtractionError{Upstream: upstream, Extraction: ExtractText, Detail: "unparseable numeric token"}
	}
	return normalizeScore(upstream, ExtractText, score)
}

// normalizeScore validates a raw score and maps the percent convention
// (values in (1,100]) down to [0,1]. Negative, non-finite, or absurd
// values are extraction failures, never clamped into a fake score.
func normalizeScore(upstream string, rule Extraction, v float64) (float64, error) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0, &ExtractionError{Upstream: upstream, Extraction: rule, Detail: "score is not a finite number"}
	case v < 0:
		return 0, &ExtractionError{Upstream: upstream, Extraction: rule, Detail: fmt.Sprintf("negative score %v", v)}
	case v > 100:
		return 0, &ExtractionError{Upstream: upstream, Extraction: rule, Detail: fmt.Sprintf("score %v outside any known range", v)}
	case v > 1:
		return v / 100, nil
	default:
		return v, nil
	}
}
