package scoring

import (
	"math"

	"veristone-hq/clarion/pkg/analysis"
	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/intake"
)

// Method names identify which signal family decided a composite score.
const (
	MethodExternal    = "external-classifier"
	MethodHeuristics  = "signal-heuristics"
	MethodFingerprint = "encoder-fingerprint"
)

// Breakdown keys, one per scored component.
const (
	ComponentExternal    = "external"
	ComponentEntropy     = "entropy"
	ComponentSilence     = "silence_dynamics"
	ComponentFingerprint = "encoder_fingerprint"
	ComponentSize        = "size_factor"
)

// Risk assigned by the silence-dynamics heuristic. Sustained digital
// silence weighs more than a compressed dynamic range; both together cap
// at 1.
const (
	silenceRisk      = 0.6
	dynamicRangeRisk = 0.4
)

// Result is the outcome of scoring one artifact.
type Result struct {
	// CompositeScore is the clamped weighted sum, in [0, 1].
	CompositeScore float64 `json:"composite_score"`

	// Method names the signal family with the largest contribution.
	Method string `json:"method"`

	// Breakdown maps each component to its weighted contribution.
	Breakdown map[string]float64 `json:"breakdown"`
}

// Scorer computes composite trust scores. It is stateless and safe for
// concurrent use.
type Scorer struct {
	weights  Weights
	maxBytes int64
}

// NewScorer creates a scorer with the given weights. maxBytes is the intake
// ceiling used to normalize the size component; zero or negative falls back
// to the intake default.
func NewScorer(weights Weights, maxBytes int64) *Scorer {
	if maxBytes <= 0 {
		maxBytes = intake.DefaultMaxBytes
	}
	return &Scorer{weights: weights, maxBytes: maxBytes}
}

// Score folds the extracted features, the upstream signals, and the payload
// size into one composite score. It is deterministic: the same inputs
// always produce the same Result.
func (s *Scorer) Score(features analysis.FeatureSet, signals []classify.Signal, size int64) Result {
	external, hasExternal := classify.BestScore(signals)

	silence := 0.0
	if features.DigitalSilence {
		silence += silenceRisk
	}
	if features.LowDynamicRange {
		silence += dynamicRangeRisk
	}
	if silence > 1 {
		silence = 1
	}

	fingerprint := 0.0
	if features.EncoderSignature != "" {
		fingerprint = 1
	}

	sizeFactor := 0.0
	if size > 0 {
		sizeFactor = math.Min(float64(size)/float64(s.maxBytes), 1)
	}

	breakdown := map[string]float64{
		ComponentExternal:    s.weights.External * sanitize(external),
		ComponentEntropy:     s.weights.Entropy * sanitize(features.Entropy),
		ComponentSilence:     s.weights.SilenceDynamics * silence,
		ComponentFingerprint: s.weights.EncoderFingerprint * fingerprint,
		ComponentSize:        s.weights.SizeFactor * sizeFactor,
	}

	// Sum in a fixed order. Ranging over the map would make the composite
	// depend on iteration order in the low bits.
	composite := clamp01(breakdown[ComponentExternal] +
		breakdown[ComponentEntropy] +
		breakdown[ComponentSilence] +
		breakdown[ComponentFingerprint] +
		breakdown[ComponentSize])

	return Result{
		CompositeScore: composite,
		Method:         s.method(hasExternal, breakdown),
		Breakdown:      breakdown,
	}
}

// method picks the dominant signal family. The external family only
// competes when at least one upstream actually answered; ties resolve
// external, then heuristics, then fingerprint.
func (s *Scorer) method(hasExternal bool, breakdown map[string]float64) string {
	externalPart := breakdown[ComponentExternal]
	heuristicPart := breakdown[ComponentEntropy] + breakdown[ComponentSilence]
	fingerprintPart := breakdown[ComponentFingerprint]

	switch {
	case hasExternal && externalPart >= heuristicPart && externalPart >= fingerprintPart:
		return MethodExternal
	case heuristicPart >= fingerprintPart:
		return MethodHeuristics
	default:
		return MethodFingerprint
	}
}

// sanitize maps NaN and infinities to 0 so a single bad component cannot
// poison the composite.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
