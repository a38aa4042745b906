package report

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"veristone-hq/clarion/pkg/analysis"
	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/intake"
	"veristone-hq/clarion/pkg/scoring"
)

type captureForwarder struct {
	reports []*TrustReport
}

func (f *captureForwarder) Emit(_ context.Context, report *TrustReport) {
	f.reports = append(f.reports, report)
}

func testArtifact(data []byte) *intake.Artifact {
	return &intake.Artifact{
		Data:     data,
		MIMEType: "audio/wav",
		Filename: "sample.wav",
		Size:     int64(len(data)),
		Source:   intake.SourceBase64,
	}
}

func testResult() scoring.Result {
	return scoring.Result{
		CompositeScore: 0.42,
		Method:         scoring.MethodHeuristics,
		Breakdown: map[string]float64{
			scoring.ComponentEntropy:  0.2,
			scoring.ComponentExternal: 0,
		},
	}
}

func TestAssembler_Assemble(t *testing.T) {
	forwarder := &captureForwarder{}
	assembler := NewAssembler(forwarder)

	artifact := testArtifact([]byte("pcm bytes under test"))
	features := analysis.FeatureSet{Entropy: 0.8, Format: analysis.FormatWAV}
	signals := []classify.Signal{{Source: "guard", Succeeded: false, Error: "timeout"}}

	trustReport := assembler.Assemble(context.Background(), artifact, features, signals, testResult())

	if _, err := uuid.Parse(trustReport.ID); err != nil {
		t.Errorf("report ID %q is not a valid UUID: %v", trustReport.ID, err)
	}
	if trustReport.Metadata.Digest != Digest(artifact.Data) {
		t.Errorf("digest = %s, want digest of artifact bytes", trustReport.Metadata.Digest)
	}
	if trustReport.Metadata.SizeBytes != artifact.Size {
		t.Errorf("size = %d, want %d", trustReport.Metadata.SizeBytes, artifact.Size)
	}
	if trustReport.Metadata.Source != string(intake.SourceBase64) {
		t.Errorf("source = %q, want %q", trustReport.Metadata.Source, intake.SourceBase64)
	}
	if trustReport.CompositeScore != 0.42 {
		t.Errorf("composite score = %v, want 0.42", trustReport.CompositeScore)
	}
	if trustReport.Method != scoring.MethodHeuristics {
		t.Errorf("method = %q, want %q", trustReport.Method, scoring.MethodHeuristics)
	}
	if diff := cmp.Diff(features, trustReport.Features); diff != "" {
		t.Errorf("features mismatch (-want +got):\n%s", diff)
	}
	if trustReport.ProcessedAt.IsZero() {
		t.Error("ProcessedAt not set")
	}
	if loc := trustReport.ProcessedAt.Location(); loc != nil && loc.String() != "UTC" {
		t.Errorf("ProcessedAt location = %s, want UTC", loc)
	}

	if len(forwarder.reports) != 1 || forwarder.reports[0] != trustReport {
		t.Error("report was not handed to the forwarder")
	}
}

// Identical content analyzed twice must agree on everything derived from the
// bytes; only the run identity and timestamp may differ.
func TestAssembler_Assemble_Idempotent(t *testing.T) {
	assembler := NewAssembler(nil)
	features := analysis.FeatureSet{Entropy: 0.55, ZeroByteRatio: 0.1}

	first := assembler.Assemble(context.Background(), testArtifact([]byte("identical content")), features, nil, testResult())
	second := assembler.Assemble(context.Background(), testArtifact([]byte("identical content")), features, nil, testResult())

	if first.Metadata.Digest != second.Metadata.Digest {
		t.Errorf("digests differ for identical content: %s vs %s", first.Metadata.Digest, second.Metadata.Digest)
	}
	if diff := cmp.Diff(first.Features, second.Features); diff != "" {
		t.Errorf("features differ for identical content (-first +second):\n%s", diff)
	}
	if first.CompositeScore != second.CompositeScore {
		t.Errorf("scores differ for identical content: %v vs %v", first.CompositeScore, second.CompositeScore)
	}
	if first.ID == second.ID {
		t.Error("separate runs share a report ID")
	}
}

func TestAssembler_Assemble_CopiesInputs(t *testing.T) {
	assembler := NewAssembler(nil)
	signals := []classify.Signal{{Source: "guard", Succeeded: true}}
	result := testResult()

	trustReport := assembler.Assemble(context.Background(), testArtifact([]byte("x")), analysis.FeatureSet{}, signals, result)

	signals[0].Source = "mutated"
	result.Breakdown[scoring.ComponentEntropy] = 99

	if trustReport.Signals[0].Source != "guard" {
		t.Error("report signals alias the caller's slice")
	}
	if trustReport.Breakdown[scoring.ComponentEntropy] != 0.2 {
		t.Error("report breakdown aliases the caller's map")
	}
}

func TestAssembler_Assemble_NilForwarder(t *testing.T) {
	assembler := NewAssembler(nil)

	trustReport := assembler.Assemble(context.Background(), testArtifact([]byte("x")), analysis.FeatureSet{}, nil, testResult())
	if trustReport == nil {
		t.Fatal("Assemble returned nil")
	}
	if trustReport.Signals == nil {
		t.Error("signals slice is nil, want empty slice")
	}
}
