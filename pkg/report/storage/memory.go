package storage

import (
	"context"
	"sort"
	"sync"

	"veristone-hq/clarion/pkg/report"
)

// MemoryStorage implements the report.Storage interface using an in-memory
// map. It backs tests and short-lived one-shot runs; nothing survives a
// restart.
type MemoryStorage struct {
	records map[string]*report.TrustReport
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory archive backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*report.TrustReport),
	}
}

// Store persists a report to memory.
func (s *MemoryStorage) Store(ctx context.Context, r *report.TrustReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *r
	s.records[r.ID] = &recordCopy
	return nil
}

// Get retrieves a single report by ID.
func (s *MemoryStorage) Get(ctx context.Context, id string) (*report.TrustReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, report.ErrNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

// Query retrieves reports matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *report.Query) ([]*report.TrustReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*report.TrustReport{}
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sortReports(results, query)

	start := query.Offset
	if start > len(results) {
		return []*report.TrustReport{}, nil
	}
	results = results[start:]
	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}

	return results, nil
}

// Count returns the number of reports matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *report.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}
	return count, nil
}

// Delete removes reports matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *report.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	toDelete := []string{}
	for id, record := range s.records {
		if matchesQuery(record, query) {
			toDelete = append(toDelete, id)
		}
	}
	for _, id := range toDelete {
		delete(s.records, id)
	}
	return int64(len(toDelete)), nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*report.TrustReport)
	return nil
}

// Size returns the number of stored reports (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// matchesQuery checks if a report matches the query filters.
func matchesQuery(r *report.TrustReport, query *report.Query) bool {
	if query.StartTime != nil && r.ProcessedAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && r.ProcessedAt.After(*query.EndTime) {
		return false
	}

	if query.Digest != "" && r.Metadata.Digest != query.Digest {
		return false
	}
	if query.Method != "" && r.Method != query.Method {
		return false
	}
	if query.Format != "" && string(r.Features.Format) != query.Format {
		return false
	}
	if query.Source != "" && r.Metadata.Source != query.Source {
		return false
	}

	if query.MinScore != nil && r.CompositeScore < *query.MinScore {
		return false
	}
	if query.MaxScore != nil && r.CompositeScore > *query.MaxScore {
		return false
	}

	return true
}

// sortReports orders results the same way the SQLite backend does: by
// processed_at or composite_score, newest/highest first unless asked
// otherwise.
func sortReports(results []*report.TrustReport, query *report.Query) {
	ascending := query.SortOrder == "asc"

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !ascending {
			a, b = b, a
		}
		if query.SortBy == "composite_score" {
			return a.CompositeScore < b.CompositeScore
		}
		return a.ProcessedAt.Before(b.ProcessedAt)
	})
}
