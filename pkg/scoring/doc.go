// Package scoring folds heuristic features and external classifier signals
// into a single composite trust score in [0, 1].
//
// The scorer is a pure function of its inputs: no I/O, no clock, no
// randomness. Component contributions are weighted by configuration and the
// weighted sum is clamped to [0, 1]. Alongside the score it reports which
// signal family dominated the verdict (external classifiers, local
// heuristics, or an encoder fingerprint) and a per-component breakdown so
// callers can explain the number they got.
//
// Weights come from configuration and are validated at startup; the scorer
// itself never hard-codes them.
package scoring
