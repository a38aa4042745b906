package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"veristone-hq/clarion/pkg/analysis"
	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/intake"
	"veristone-hq/clarion/pkg/report"
)

func TestArtifactFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "take.wav")

	// Minimal RIFF/WAVE header plus padding.
	data := append([]byte("RIFF\x24\x00\x00\x00WAVE"), make([]byte, 64)...)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	artifact, err := artifactFromFile(path, intake.Limits{MaxBytes: 1 << 20})
	if err != nil {
		t.Fatalf("artifactFromFile() returned error: %v", err)
	}

	if artifact.Filename != "take.wav" {
		t.Errorf("Filename = %q, want %q", artifact.Filename, "take.wav")
	}
	if artifact.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", artifact.Size, len(data))
	}
	if artifact.Source != intake.SourceStream {
		t.Errorf("Source = %q, want %q", artifact.Source, intake.SourceStream)
	}
}

func TestArtifactFromFileNotFound(t *testing.T) {
	_, err := artifactFromFile(filepath.Join(t.TempDir(), "missing.wav"), intake.Limits{})
	if err == nil {
		t.Error("artifactFromFile() with missing file should return error")
	}
}

func TestArtifactFromFileTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.wav")
	if err := os.WriteFile(path, make([]byte, 128), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := artifactFromFile(path, intake.Limits{MaxBytes: 16})
	if err == nil {
		t.Fatal("artifactFromFile() over the byte limit should return error")
	}

	var tooLarge *intake.PayloadTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Errorf("error = %v, want PayloadTooLargeError", err)
	}
}

func TestRenderReportText(t *testing.T) {
	out, err := os.CreateTemp(t.TempDir(), "report-*.txt")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer out.Close()

	score := 0.91
	trustReport := &report.TrustReport{
		ID: "report-1",
		Metadata: report.Metadata{
			Digest:    "abc123",
			MIMEType:  "audio/wav",
			SizeBytes: 2048,
		},
		Features: analysis.FeatureSet{Format: analysis.FormatWAV},
		Signals: []classify.Signal{
			{Source: "acme", Succeeded: true, Score: &score, LatencyMs: 120},
			{Source: "flaky", Succeeded: false, Error: "connection refused"},
		},
		CompositeScore: 0.842,
		Method:         "external",
		Breakdown:      map[string]float64{"external": 0.55, "entropy": 0.29},
		ProcessedAt:    time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
	}

	renderReportText(out, "take.wav", trustReport)

	data, err := os.ReadFile(out.Name())
	if err != nil {
		t.Fatalf("failed to read rendered output: %v", err)
	}
	got := string(data)

	for _, want := range []string{
		"File: take.wav",
		"Report ID: report-1",
		"Digest: abc123",
		"Format: wav (audio/wav, 2048 bytes)",
		"Composite Score: 0.842",
		"Method: external",
		"acme: 0.910 (120 ms)",
		"flaky: failed (connection refused)",
		"2026-08-24T12:00:00Z",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered output missing %q\n---\n%s", want, got)
		}
	}
}
