package classify

import (
	"time"

	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/intake"
)

// TestUpstreamConfig returns an upstream configuration pointed at the
// given endpoint with fast test-friendly bounds.
func TestUpstreamConfig(name, endpoint string) classify.UpstreamConfig {
	return classify.UpstreamConfig{
		Name:         name,
		Endpoint:     endpoint,
		APIKey:       "test-key",
		PayloadStyle: classify.PayloadBinary,
		Extraction:   classify.ExtractScore,
		Timeout:      2 * time.Second,
		MaxRetries:   0,
	}
}

// TestArtifact returns a small artifact for classifier tests.
func TestArtifact(data []byte) *intake.Artifact {
	if data == nil {
		data = []byte("RIFF\x24\x00\x00\x00WAVEtest-artifact-bytes")
	}
	return &intake.Artifact{
		Data:     data,
		MIMEType: "audio/wav",
		Filename: "test.wav",
		Size:     int64(len(data)),
		Source:   intake.SourceStream,
	}
}
