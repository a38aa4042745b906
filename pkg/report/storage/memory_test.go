package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"veristone-hq/clarion/pkg/analysis"
	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/report"
)

var testBase = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// sampleReport builds a report n minutes after the test base time, with a
// score derived from n so tests can target individual records.
func sampleReport(n int) *report.TrustReport {
	score := float64(n%10) / 10
	return &report.TrustReport{
		ID: fmt.Sprintf("report-%04d", n),
		Metadata: report.Metadata{
			Digest:    fmt.Sprintf("digest-%04d", n),
			Filename:  "clip.wav",
			MIMEType:  "audio/wav",
			SizeBytes: int64(1000 + n),
			Source:    "base64",
		},
		Features: analysis.FeatureSet{
			Entropy: 0.5,
			Format:  analysis.FormatWAV,
		},
		Signals:        []classify.Signal{{Source: "guard", Succeeded: true}},
		CompositeScore: score,
		Method:         "signal-heuristics",
		Breakdown:      map[string]float64{"entropy": score},
		ProcessedAt:    testBase.Add(time.Duration(n) * time.Minute),
	}
}

func mustStore(t *testing.T, s report.Storage, reports ...*report.TrustReport) {
	t.Helper()
	for _, r := range reports {
		if err := s.Store(context.Background(), r); err != nil {
			t.Fatalf("storing %s: %v", r.ID, err)
		}
	}
}

func TestMemoryStorage_StoreAndGet(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	original := sampleReport(1)
	mustStore(t, s, original)

	got, err := s.Get(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != original.ID {
		t.Errorf("ID = %s, want %s", got.ID, original.ID)
	}
	if got.Metadata.Digest != original.Metadata.Digest {
		t.Errorf("digest = %s, want %s", got.Metadata.Digest, original.Metadata.Digest)
	}
	if got.CompositeScore != original.CompositeScore {
		t.Errorf("score = %v, want %v", got.CompositeScore, original.CompositeScore)
	}
}

func TestMemoryStorage_GetUnknownID(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	_, err := s.Get(context.Background(), "no-such-id")
	if !errors.Is(err, report.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStorage_QueryFilters(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	a := sampleReport(1)
	a.Method = "external-classifier"
	b := sampleReport(2)
	b.Metadata.Source = "url"
	c := sampleReport(3)
	c.CompositeScore = 0.95
	mustStore(t, s, a, b, c)

	tests := []struct {
		name  string
		query *report.Query
		want  int
	}{
		{name: "no filters", query: &report.Query{}, want: 3},
		{name: "by method", query: &report.Query{Method: "external-classifier"}, want: 1},
		{name: "by source", query: &report.Query{Source: "url"}, want: 1},
		{name: "by digest", query: &report.Query{Digest: a.Metadata.Digest}, want: 1},
		{name: "by format", query: &report.Query{Format: "wav"}, want: 3},
		{name: "min score", query: &report.Query{MinScore: scoreRef(0.9)}, want: 1},
		{name: "time window excludes later", query: &report.Query{EndTime: timeRef(testBase.Add(90 * time.Second))}, want: 1},
		{name: "nothing matches", query: &report.Query{Method: "never"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Query(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(results) != tt.want {
				t.Errorf("results = %d, want %d", len(results), tt.want)
			}
		})
	}
}

func TestMemoryStorage_QuerySortAndPaginate(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	for i := 1; i <= 5; i++ {
		mustStore(t, s, sampleReport(i))
	}

	// Default ordering is newest first.
	results, err := s.Query(context.Background(), &report.Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("results = %d, want 5", len(results))
	}
	if results[0].ID != "report-0005" {
		t.Errorf("first result = %s, want newest (report-0005)", results[0].ID)
	}

	// Ascending with limit and offset walks from the oldest.
	page, err := s.Query(context.Background(), &report.Query{
		SortBy:    "processed_at",
		SortOrder: "asc",
		Limit:     2,
		Offset:    1,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(page) != 2 || page[0].ID != "report-0002" || page[1].ID != "report-0003" {
		t.Errorf("page = %v, want [report-0002 report-0003]", ids(page))
	}
}

func TestMemoryStorage_CountAndDelete(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	for i := 1; i <= 4; i++ {
		mustStore(t, s, sampleReport(i))
	}

	count, err := s.Count(context.Background(), &report.Query{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}

	cutoff := testBase.Add(2*time.Minute + 30*time.Second)
	deleted, err := s.Delete(context.Background(), &report.Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
	if s.Size() != 2 {
		t.Errorf("remaining = %d, want 2", s.Size())
	}
}

func TestMemoryStorage_CopiesOnStore(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	original := sampleReport(1)
	mustStore(t, s, original)

	original.Method = "mutated"

	got, err := s.Get(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Method != "signal-heuristics" {
		t.Errorf("stored report changed with the caller's copy: method = %s", got.Method)
	}
}

func scoreRef(v float64) *float64 {
	return &v
}

func timeRef(t time.Time) *time.Time {
	return &t
}

func ids(reports []*report.TrustReport) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.ID
	}
	return out
}
