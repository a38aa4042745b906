// Package analysis computes deterministic, CPU-only heuristics over the raw
// bytes of an audio artifact.
//
// # Overview
//
// The extractor is a pure function: identical input bytes always produce a
// bit-identical FeatureSet, it performs no I/O, and it holds no shared state.
// The heuristics it derives are the local half of the trust pipeline:
//
//  1. Shannon entropy over the byte-value histogram, normalized to [0,1]
//  2. Zero-byte ratio
//  3. Digital-silence run detection (strided scan for flat PCM samples)
//  4. Dynamic range of the sampled byte values
//  5. Container fingerprint from leading magic bytes (wav, mp3, flac)
//  6. Encoder-tool signatures left behind by software transcoders
//  7. Structured WAV header fields (channels, sample rate, byte rate, duration)
//
// # Usage
//
//	extractor := analysis.NewExtractor(analysis.DefaultParams())
//	features := extractor.Extract(data)
//
// The scan thresholds (stride, run length, segment count, dynamic-range
// floor) are tunable through Params; the defaults match the reference
// deployment. Malformed or truncated WAV headers degrade to a bare format
// guess with the structured fields omitted, never an error.
package analysis
