package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/joelkehle/ideascope/internal/feasibility"
)

var ErrNotFound = errors.New("report not found")

// Store persists feasibility reports. Narratives are the only field that
// changes after Create, one (report, mode) pair at a time.
type Store interface {
	Create(ctx context.Context, r feasibility.FeasibilityReport) error
	Get(ctx context.Context, id string) (feasibility.FeasibilityReport, error)
	// List returns every report, newest first.
	List(ctx context.Context) ([]feasibility.FeasibilityReport, error)
	Delete(ctx context.Context, id string) error
	SetNarrative(ctx context.Context, id string, mode feasibility.Mode, text string) error
	// MissingNarratives returns reports created before cutoff that still lack
	// at least one narrative.
	MissingNarratives(ctx context.Context, cutoff time.Time) ([]feasibility.FeasibilityReport, error)
	Close() error
}

const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

type Config struct {
	Driver     string `yaml:"driver" default:"memory" validate:"oneof=memory file sqlite"`
	FilePath   string `yaml:"file_path" default:"data/reports.json"`
	SQLitePath string `yaml:"sqlite_path" default:"data/ideascope.db"`
}

func Open(cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile:
		return NewFileStore(cfg.FilePath)
	case DriverSQLite:
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func cloneReport(r feasibility.FeasibilityReport) feasibility.FeasibilityReport {
	out := r
	out.Tags = slices.Clone(r.Tags)
	out.ResultsByMode = maps.Clone(r.ResultsByMode)
	for m, res := range out.ResultsByMode {
		if res.Narrative != nil {
			text := *res.Narrative
			res.Narrative = &text
			out.ResultsByMode[m] = res
		}
	}
	return out
}

func sortNewestFirst(reports []feasibility.FeasibilityReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].ID < reports[j].ID
	})
}

func validateNew(r feasibility.FeasibilityReport) error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("report id is required")
	}
	return nil
}
