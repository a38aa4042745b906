package analysis

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// buildWAV assembles a canonical 44-byte RIFF/WAVE header followed by
// dataSize payload bytes.
func buildWAV(channels uint16, sampleRate, byteRate, dataSize uint32) []byte {
	buf := make([]byte, wavHeaderSize+int(dataSize))
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], 36+dataSize)
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], channels)
	binary.LittleEndian.PutUint32(buf[24:28], sampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], byteRate)
	binary.LittleEndian.PutUint16(buf[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], dataSize)
	return buf
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{
			name: "riff wave header",
			data: buildWAV(2, 44100, 176400, 0),
			want: FormatWAV,
		},
		{
			name: "id3 tagged mp3",
			data: append([]byte("ID3"), make([]byte, 20)...),
			want: FormatMP3,
		},
		{
			name: "bare mpeg frame sync",
			data: []byte{0xFF, 0xFB, 0x90, 0x00},
			want: FormatMP3,
		},
		{
			name: "flac stream marker",
			data: append([]byte("fLaC"), make([]byte, 20)...),
			want: FormatFLAC,
		},
		{
			name: "arbitrary bytes",
			data: []byte("hello world, definitely not audio"),
			want: FormatUnknown,
		},
		{
			name: "riff without wave",
			data: append([]byte("RIFF\x00\x00\x00\x00AVI "), make([]byte, 20)...),
			want: FormatUnknown,
		},
		{
			name: "truncated riff",
			data: []byte("RIFF"),
			want: FormatUnknown,
		},
		{name: "empty", data: nil, want: FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.data); got != tt.want {
				t.Errorf("DetectFormat = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectEncoder(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "ffmpeg muxer trace",
			data: append([]byte("ID3\x04\x00"), []byte("Lavf58.76.100")...),
			want: "Lavf",
		},
		{
			name: "lame encoder trace",
			data: append(make([]byte, 100), []byte("LAME3.100")...),
			want: "LAME",
		},
		{
			name: "trace beyond scan window",
			data: append(make([]byte, encoderScanWindow), []byte("Lavf58.76.100")...),
			want: "",
		},
		{name: "clean capture", data: bytes.Repeat([]byte{0x17}, 600), want: ""},
		{name: "empty", data: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectEncoder(tt.data); got != tt.want {
				t.Errorf("detectEncoder = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseWAVHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want *WAVInfo
	}{
		{
			name: "stereo cd quality",
			data: buildWAV(2, 44100, 176400, 176400),
			want: &WAVInfo{
				Channels:        2,
				SampleRate:      44100,
				ByteRate:        176400,
				DurationSeconds: 1,
			},
		},
		{
			name: "mono telephony",
			data: buildWAV(1, 8000, 16000, 32000),
			want: &WAVInfo{
				Channels:        1,
				SampleRate:      8000,
				ByteRate:        16000,
				DurationSeconds: 2,
			},
		},
		{
			name: "truncated header",
			data: buildWAV(2, 44100, 176400, 0)[:30],
			want: nil,
		},
		{
			name: "zero byte rate",
			data: buildWAV(2, 44100, 0, 100),
			want: nil,
		},
		{
			name: "implausible channel count",
			data: buildWAV(999, 44100, 176400, 100),
			want: nil,
		},
		{
			name: "implausible sample rate",
			data: buildWAV(2, 5, 176400, 100),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseWAVHeader(tt.data)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseWAVHeader mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractor_WAVFieldsDegradeGracefully(t *testing.T) {
	extractor := NewExtractor(DefaultParams())

	// A RIFF/WAVE prefix with garbage header fields still classifies as wav.
	data := buildWAV(0, 0, 0, 0)
	fs := extractor.Extract(data)

	if fs.Format != FormatWAV {
		t.Fatalf("Format = %q, want %q", fs.Format, FormatWAV)
	}
	if fs.WAV != nil {
		t.Errorf("WAV = %+v, want nil for insane header fields", fs.WAV)
	}
}
