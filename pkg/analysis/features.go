package analysis

// Format identifies the container format guessed from leading magic bytes.
type Format string

// Known container formats.
const (
	// FormatWAV is a RIFF/WAVE container.
	FormatWAV Format = "wav"

	// FormatMP3 is an MPEG audio stream (ID3-tagged or bare frame sync).
	FormatMP3 Format = "mp3"

	// FormatFLAC is a native FLAC stream.
	FormatFLAC Format = "flac"

	// FormatUnknown is returned when no magic sequence matches.
	FormatUnknown Format = "unknown"
)

// FeatureSet holds every heuristic derived from an artifact's bytes.
// It is computed once per artifact and never mutated afterward.
type FeatureSet struct {
	// Entropy is the normalized Shannon entropy of the byte histogram,
	// in [0,1], rounded to three decimal places.
	Entropy float64 `json:"entropy"`

	// ZeroByteRatio is the fraction of bytes equal to zero, in [0,1],
	// rounded to three decimal places.
	ZeroByteRatio float64 `json:"zero_byte_ratio"`

	// DigitalSilence reports whether the artifact contains repeated runs of
	// perfectly flat samples. Real microphone capture carries a noise floor;
	// synthetic speech frequently does not.
	DigitalSilence bool `json:"digital_silence"`

	// SilenceSegments counts the flat runs that crossed the run threshold.
	SilenceSegments int `json:"silence_segments"`

	// DynamicRange is max(byte)-min(byte) over the sampled values.
	DynamicRange int `json:"dynamic_range"`

	// LowDynamicRange reports a dynamic range below the configured floor,
	// an over-compression indicator.
	LowDynamicRange bool `json:"low_dynamic_range"`

	// Format is the container guess from leading magic bytes.
	Format Format `json:"format"`

	// EncoderSignature is the first software-transcoder trace found in the
	// leading bytes, or empty when none is present.
	EncoderSignature string `json:"encoder_signature,omitempty"`

	// WAV carries structured header fields when Format is wav and the
	// header passed sanity checks; nil otherwise.
	WAV *WAVInfo `json:"wav,omitempty"`
}

// WAVInfo holds the fixed-offset header fields of a RIFF/WAVE artifact.
type WAVInfo struct {
	// Channels is the channel count from the fmt chunk.
	Channels int `json:"channels"`

	// SampleRate is the sample rate in Hz.
	SampleRate int `json:"sample_rate"`

	// ByteRate is the average byte rate in bytes per second.
	ByteRate int `json:"byte_rate"`

	// DurationSeconds is the data-chunk size divided by the byte rate.
	DurationSeconds float64 `json:"duration_seconds"`
}
