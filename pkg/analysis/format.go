package analysis

import (
	"bytes"
	"encoding/binary"
)

// encoderScanWindow bounds the leading-byte scan for transcoder traces.
const encoderScanWindow = 512

// encoderSignatures are textual traces left by common software muxers and
// encoders, checked in fixed order. Their presence indicates the artifact
// passed through a generic transcoding tool rather than a hardware capture
// pipeline.
var encoderSignatures = []string{
	"Lavf",
	"Lavc",
	"LAME",
	"FFmpeg",
	"SoX",
	"iTunes",
}

// DetectFormat inspects the leading bytes of data for known container
// magic: "RIFF" with "WAVE" at offset 8, a leading "ID3" tag or an MPEG
// frame-sync pattern, or a leading "fLaC" marker. Anything else is
// FormatUnknown.
func DetectFormat(data []byte) Format {
	switch {
	case len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV

	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return FormatMP3

	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("fLaC")):
		return FormatFLAC

	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// Bare MPEG audio frame sync: eleven set bits.
		return FormatMP3

	default:
		return FormatUnknown
	}
}

// detectEncoder scans the first encoderScanWindow bytes for a known
// transcoder signature and returns the first match, or empty.
func detectEncoder(data []byte) string {
	window := data
	if len(window) > encoderScanWindow {
		window = window[:encoderScanWindow]
	}
	for _, sig := range encoderSignatures {
		if bytes.Contains(window, []byte(sig)) {
			return sig
		}
	}
	return ""
}

// WAV header field offsets for the canonical 44-byte RIFF/WAVE layout.
// Fields are read directly from these fixed positions rather than walking
// the chunk list; non-canonical layouts fail the sanity checks and degrade
// to a bare format guess.
const (
	wavHeaderSize     = 44
	wavChannelsOffset = 22
	wavRateOffset     = 24
	wavByteRateOffset = 28
	wavDataSizeOffset = 40
)

// Sanity bounds for decoded WAV header fields.
const (
	wavMaxChannels   = 32
	wavMinSampleRate = 1000
	wavMaxSampleRate = 1_000_000
)

// parseWAVHeader decodes the fixed-offset header fields of a RIFF/WAVE
// artifact. Truncated headers or fields outside the sanity bounds return
// nil; the caller keeps the bare format guess.
func parseWAVHeader(data []byte) *WAVInfo {
	if len(data) < wavHeaderSize {
		return nil
	}

	channels := int(binary.LittleEndian.Uint16(data[wavChannelsOffset : wavChannelsOffset+2]))
	sampleRate := int(binary.LittleEndian.Uint32(data[wavRateOffset : wavRateOffset+4]))
	byteRate := int(binary.LittleEndian.Uint32(data[wavByteRateOffset : wavByteRateOffset+4]))
	dataSize := int(binary.LittleEndian.Uint32(data[wavDataSizeOffset : wavDataSizeOffset+4]))

	if channels < 1 || channels > wavMaxChannels {
		return nil
	}
	if sampleRate < wavMinSampleRate || sampleRate > wavMaxSampleRate {
		return nil
	}
	if byteRate <= 0 {
		return nil
	}

	return &WAVInfo{
		Channels:        channels,
		SampleRate:      sampleRate,
		ByteRate:        byteRate,
		DurationSeconds: float64(dataSize) / float64(byteRate),
	}
}
