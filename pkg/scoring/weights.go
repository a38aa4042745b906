package scoring

import (
	"fmt"
	"math"
)

// Weights control how much each component contributes to the composite
// score. They are plain multipliers, not percentages; the composite is
// clamped after summation, so weights may legitimately sum past 1.
type Weights struct {
	// External weights the best score reported by upstream classifiers.
	External float64

	// Entropy weights the normalized Shannon entropy of the payload.
	Entropy float64

	// SilenceDynamics weights the digital-silence and dynamic-range
	// heuristics.
	SilenceDynamics float64

	// EncoderFingerprint weights the presence of a known encoder trace.
	EncoderFingerprint float64

	// SizeFactor weights payload size relative to the intake ceiling.
	SizeFactor float64
}

// DefaultWeights returns the stock weighting: external classifiers dominate
// when available, heuristics carry the fallback.
func DefaultWeights() Weights {
	return Weights{
		External:           0.65,
		Entropy:            0.25,
		SilenceDynamics:    0.25,
		EncoderFingerprint: 0.15,
		SizeFactor:         0.10,
	}
}

// Validate rejects weight sets the scorer cannot use. Each weight must be a
// finite non-negative number and at least one must be positive, otherwise
// every composite score would collapse to zero.
func (w Weights) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"external", w.External},
		{"entropy", w.Entropy},
		{"silence", w.SilenceDynamics},
		{"fingerprint", w.EncoderFingerprint},
		{"size", w.SizeFactor},
	}

	sum := 0.0
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("weight %s must be a finite number", f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("weight %s must not be negative, got %v", f.name, f.value)
		}
		sum += f.value
	}
	if sum == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	return nil
}
