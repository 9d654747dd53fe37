package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joelkehle/ideascope/internal/feasibility"
)

type fileSnapshot struct {
	Reports map[string]feasibility.FeasibilityReport `json:"reports"`
}

// FileStore keeps reports in memory and rewrites a JSON snapshot after every
// mutation.
type FileStore struct {
	mem  *MemoryStore
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	snap, err := loadSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	mem := NewMemoryStore()
	mem.reports = snap.Reports
	return &FileStore{mem: mem, path: path}, nil
}

func loadSnapshot(path string) (fileSnapshot, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSnapshot{Reports: map[string]feasibility.FeasibilityReport{}}, nil
		}
		return fileSnapshot{}, err
	}
	var snap fileSnapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return fileSnapshot{}, err
	}
	if snap.Reports == nil {
		snap.Reports = map[string]feasibility.FeasibilityReport{}
	}
	return snap, nil
}

// saveLocked must run with mem.mu held.
func (s *FileStore) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	blob, err := json.MarshalIndent(fileSnapshot{Reports: s.mem.reports}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Create(_ context.Context, r feasibility.FeasibilityReport) error {
	if err := validateNew(r); err != nil {
		return err
	}
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	if _, exists := s.mem.reports[r.ID]; exists {
		return fmt.Errorf("report %s already exists", r.ID)
	}
	s.mem.reports[r.ID] = cloneReport(r)
	if err := s.saveLocked(); err != nil {
		delete(s.mem.reports, r.ID)
		return fmt.Errorf("persist report: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (feasibility.FeasibilityReport, error) {
	return s.mem.Get(ctx, id)
}

func (s *FileStore) List(ctx context.Context) ([]feasibility.FeasibilityReport, error) {
	return s.mem.List(ctx)
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	r, ok := s.mem.reports[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.mem.reports, id)
	if err := s.saveLocked(); err != nil {
		s.mem.reports[id] = r
		return fmt.Errorf("persist delete: %w", err)
	}
	return nil
}

func (s *FileStore) SetNarrative(_ context.Context, id string, mode feasibility.Mode, text string) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	var prev *string
	if r, ok := s.mem.reports[id]; ok {
		prev = r.ResultsByMode[mode].Narrative
	}
	if err := s.mem.setNarrativeLocked(id, mode, text); err != nil {
		return err
	}
	if err := s.saveLocked(); err != nil {
		res := s.mem.reports[id].ResultsByMode[mode]
		res.Narrative = prev
		s.mem.reports[id].ResultsByMode[mode] = res
		return fmt.Errorf("persist narrative: %w", err)
	}
	return nil
}

func (s *FileStore) MissingNarratives(ctx context.Context, cutoff time.Time) ([]feasibility.FeasibilityReport, error) {
	return s.mem.MissingNarratives(ctx, cutoff)
}

func (s *FileStore) Close() error { return nil }
