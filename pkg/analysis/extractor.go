package analysis

import "math"

// Default scan parameters, matching the reference deployment.
const (
	// DefaultStride is the sampling interval of the silence scan.
	DefaultStride = 4

	// DefaultRunThreshold is the number of consecutive flat samples that
	// counts as one silence segment.
	DefaultRunThreshold = 64

	// DefaultSegmentThreshold is the segment count above which the artifact
	// is flagged as containing digital silence.
	DefaultSegmentThreshold = 3

	// DefaultDynamicRangeFloor is the dynamic range below which the
	// artifact is flagged as over-compressed.
	DefaultDynamicRangeFloor = 30
)

// flatHigh is the silence midpoint of unsigned 8-bit PCM; byte zero covers
// the signed convention.
const flatHigh = 128

// Params tunes the sampled-byte heuristics. The zero value of any field is
// replaced by its default.
type Params struct {
	// Stride is the sampling interval in bytes.
	Stride int

	// RunThreshold is the consecutive-flat-sample count per segment.
	RunThreshold int

	// SegmentThreshold is the segment count that triggers the silence flag.
	SegmentThreshold int

	// DynamicRangeFloor is the range below which compression is flagged.
	DynamicRangeFloor int
}

// DefaultParams returns the reference scan parameters.
func DefaultParams() Params {
	return Params{
		Stride:            DefaultStride,
		RunThreshold:      DefaultRunThreshold,
		SegmentThreshold:  DefaultSegmentThreshold,
		DynamicRangeFloor: DefaultDynamicRangeFloor,
	}
}

// Extractor derives a FeatureSet from artifact bytes. It is stateless and
// safe for concurrent use.
type Extractor struct {
	params Params
}

// NewExtractor creates an Extractor, filling zero-valued params with
// defaults.
func NewExtractor(params Params) *Extractor {
	def := DefaultParams()
	if params.Stride <= 0 {
		params.Stride = def.Stride
	}
	if params.RunThreshold <= 0 {
		params.RunThreshold = def.RunThreshold
	}
	if params.SegmentThreshold <= 0 {
		params.SegmentThreshold = def.SegmentThreshold
	}
	if params.DynamicRangeFloor <= 0 {
		params.DynamicRangeFloor = def.DynamicRangeFloor
	}
	return &Extractor{params: params}
}

// Extract computes the full FeatureSet for data. It is a pure function:
// identical input yields bit-identical output.
func (e *Extractor) Extract(data []byte) FeatureSet {
	fs := FeatureSet{
		Entropy:       entropy(data),
		ZeroByteRatio: zeroByteRatio(data),
		Format:        DetectFormat(data),
	}

	fs.SilenceSegments, fs.DynamicRange = e.scanSamples(data)
	fs.DigitalSilence = fs.SilenceSegments > e.params.SegmentThreshold
	fs.LowDynamicRange = len(data) > 0 && fs.DynamicRange < e.params.DynamicRangeFloor
	fs.EncoderSignature = detectEncoder(data)

	if fs.Format == FormatWAV {
		fs.WAV = parseWAVHeader(data)
	}
	return fs
}

// entropy returns the Shannon entropy of the byte-value histogram divided
// by 8 (the per-byte maximum), rounded to three decimals. Empty input is
// defined as zero entropy.
func entropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}

	var hist [256]int
	for _, b := range data {
		hist[b]++
	}

	total := float64(len(data))
	var h float64
	for _, count := range hist {
		if count == 0 {
			continue
		}
		p := float64(count) / total
		h -= p * math.Log2(p)
	}
	return round3(h / 8)
}

// zeroByteRatio returns the fraction of zero bytes, rounded to three
// decimals.
func zeroByteRatio(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}

	zeros := 0
	for _, b := range data {
		if b == 0 {
			zeros++
		}
	}
	return round3(float64(zeros) / float64(len(data)))
}

// scanSamples walks data at the configured stride, counting silence
// segments and tracking the min/max of the sampled values. A silence
// segment is a run of RunThreshold consecutive flat samples (byte 128 for
// unsigned PCM, 0 for signed); the run counter resets after each segment
// so long stretches of silence count proportionally.
func (e *Extractor) scanSamples(data []byte) (segments, dynamicRange int) {
	if len(data) == 0 {
		return 0, 0
	}

	run := 0
	minVal, maxVal := data[0], data[0]
	for i := 0; i < len(data); i += e.params.Stride {
		b := data[i]
		if b < minVal {
			minVal = b
		}
		if b > maxVal {
			maxVal = b
		}

		if b == 0 || b == flatHigh {
			run++
			if run >= e.params.RunThreshold {
				segments++
				run = 0
			}
		} else {
			run = 0
		}
	}
	return segments, int(maxVal) - int(minVal)
}

// round3 rounds to three decimal places so repeated extractions are
// bit-identical across platforms.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
