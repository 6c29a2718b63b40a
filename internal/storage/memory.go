package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"memtopo/internal/eval"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]eval.Report
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]eval.Report)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, report eval.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	if report.RunID == "" {
		return errors.New("run id is required")
	}
	s.runs[report.RunID] = report
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (eval.Report, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.runs[id]
	return report, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]RunSummary, 0, len(s.runs))
	for _, report := range s.runs {
		summaries = append(summaries, summarize(report))
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries, nil
}
