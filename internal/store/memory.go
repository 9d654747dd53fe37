package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joelkehle/ideascope/internal/feasibility"
)

type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]feasibility.FeasibilityReport
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: map[string]feasibility.FeasibilityReport{}}
}

func (s *MemoryStore) Create(_ context.Context, r feasibility.FeasibilityReport) error {
	if err := validateNew(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reports[r.ID]; exists {
		return fmt.Errorf("report %s already exists", r.ID)
	}
	s.reports[r.ID] = cloneReport(r)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (feasibility.FeasibilityReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return feasibility.FeasibilityReport{}, ErrNotFound
	}
	return cloneReport(r), nil
}

func (s *MemoryStore) List(_ context.Context) ([]feasibility.FeasibilityReport, error) {
	s.mu.RLock()
	out := make([]feasibility.FeasibilityReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, cloneReport(r))
	}
	s.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return ErrNotFound
	}
	delete(s.reports, id)
	return nil
}

func (s *MemoryStore) SetNarrative(_ context.Context, id string, mode feasibility.Mode, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setNarrativeLocked(id, mode, text)
}

func (s *MemoryStore) setNarrativeLocked(id string, mode feasibility.Mode, text string) error {
	r, ok := s.reports[id]
	if !ok {
		return ErrNotFound
	}
	res, ok := r.ResultsByMode[mode]
	if !ok {
		return fmt.Errorf("report %s mode %s: %w", id, mode, ErrNotFound)
	}
	res.Narrative = &text
	r.ResultsByMode[mode] = res
	return nil
}

func (s *MemoryStore) MissingNarratives(_ context.Context, cutoff time.Time) ([]feasibility.FeasibilityReport, error) {
	s.mu.RLock()
	var out []feasibility.FeasibilityReport
	for _, r := range s.reports {
		if r.CreatedAt.Before(cutoff) && len(r.MissingNarratives()) > 0 {
			out = append(out, cloneReport(r))
		}
	}
	s.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
