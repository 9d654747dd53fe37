package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joelkehle/ideascope/internal/feasibility"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS reports (
	id                 TEXT PRIMARY KEY,
	idea               TEXT NOT NULL,
	created_at         TEXT NOT NULL,
	created_unix_ns    INTEGER NOT NULL,
	tags               TEXT NOT NULL DEFAULT '[]',
	risk               INTEGER NOT NULL,
	time_value         REAL NOT NULL,
	roi_time           REAL NOT NULL,
	length_time_factor REAL NOT NULL,
	interest_rate      REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS mode_results (
	report_id         TEXT NOT NULL,
	mode              TEXT NOT NULL,
	score             INTEGER NOT NULL,
	verdict           TEXT NOT NULL,
	pv_factor         REAL NOT NULL,
	combined_rate     REAL NOT NULL,
	risk_penalty      REAL NOT NULL,
	timeline_penalty  REAL NOT NULL,
	rate_penalty      REAL NOT NULL,
	feasible_cutoff   REAL NOT NULL,
	borderline_cutoff REAL NOT NULL,
	narrative         TEXT,
	PRIMARY KEY (report_id, mode)
);
`

type SQLiteStore struct {
	db *sqlx.DB
}

type reportRow struct {
	ID               string  `db:"id"`
	Idea             string  `db:"idea"`
	CreatedAt        string  `db:"created_at"`
	CreatedUnixNs    int64   `db:"created_unix_ns"`
	Tags             string  `db:"tags"`
	Risk             int     `db:"risk"`
	TimeValue        float64 `db:"time_value"`
	ROITime          float64 `db:"roi_time"`
	LengthTimeFactor float64 `db:"length_time_factor"`
	InterestRate     float64 `db:"interest_rate"`
}

type modeRow struct {
	ReportID         string         `db:"report_id"`
	Mode             string         `db:"mode"`
	Score            int            `db:"score"`
	Verdict          string         `db:"verdict"`
	PVFactor         float64        `db:"pv_factor"`
	CombinedRate     float64        `db:"combined_rate"`
	RiskPenalty      float64        `db:"risk_penalty"`
	TimelinePenalty  float64        `db:"timeline_penalty"`
	RatePenalty      float64        `db:"rate_penalty"`
	FeasibleCutoff   float64        `db:"feasible_cutoff"`
	BorderlineCutoff float64        `db:"borderline_cutoff"`
	Narrative        sql.NullString `db:"narrative"`
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, r feasibility.FeasibilityReport) error {
	if err := validateNew(r); err != nil {
		return err
	}
	tags, err := json.Marshal(r.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	created := r.CreatedAt.UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `INSERT INTO reports
		(id, idea, created_at, created_unix_ns, tags, risk, time_value, roi_time, length_time_factor, interest_rate)
		VALUES (:id, :idea, :created_at, :created_unix_ns, :tags, :risk, :time_value, :roi_time, :length_time_factor, :interest_rate)`,
		reportRow{
			ID:               r.ID,
			Idea:             r.Idea,
			CreatedAt:        created.Format(time.RFC3339Nano),
			CreatedUnixNs:    created.UnixNano(),
			Tags:             string(tags),
			Risk:             r.DerivedInputs.Risk,
			TimeValue:        r.DerivedInputs.TimeValue,
			ROITime:          r.DerivedInputs.ROITime,
			LengthTimeFactor: r.DerivedInputs.LengthTimeFactor,
			InterestRate:     r.DerivedInputs.InterestRate,
		})
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	for mode, res := range r.ResultsByMode {
		row := modeRow{
			ReportID:         r.ID,
			Mode:             string(mode),
			Score:            res.Score,
			Verdict:          string(res.Verdict),
			PVFactor:         res.PVFactor,
			CombinedRate:     res.CombinedRate,
			RiskPenalty:      res.Details.RiskPenalty,
			TimelinePenalty:  res.Details.TimelinePenalty,
			RatePenalty:      res.Details.RatePenalty,
			FeasibleCutoff:   res.Details.FeasibleCutoff,
			BorderlineCutoff: res.Details.BorderlineCutoff,
		}
		if res.Narrative != nil {
			row.Narrative = sql.NullString{String: *res.Narrative, Valid: true}
		}
		_, err := tx.NamedExecContext(ctx, `INSERT INTO mode_results
			(report_id, mode, score, verdict, pv_factor, combined_rate, risk_penalty, timeline_penalty, rate_penalty, feasible_cutoff, borderline_cutoff, narrative)
			VALUES (:report_id, :mode, :score, :verdict, :pv_factor, :combined_rate, :risk_penalty, :timeline_penalty, :rate_penalty, :feasible_cutoff, :borderline_cutoff, :narrative)`,
			row)
		if err != nil {
			return fmt.Errorf("insert %s result: %w", mode, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (feasibility.FeasibilityReport, error) {
	var row reportRow
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM reports WHERE id = ?`, id); err != nil {
		if err == sql.ErrNoRows {
			return feasibility.FeasibilityReport{}, ErrNotFound
		}
		return feasibility.FeasibilityReport{}, fmt.Errorf("get report: %w", err)
	}
	var modes []modeRow
	if err := s.db.SelectContext(ctx, &modes, `SELECT * FROM mode_results WHERE report_id = ?`, id); err != nil {
		return feasibility.FeasibilityReport{}, fmt.Errorf("get mode results: %w", err)
	}
	return assemble(row, modes)
}

func (s *SQLiteStore) List(ctx context.Context) ([]feasibility.FeasibilityReport, error) {
	var rows []reportRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM reports ORDER BY created_unix_ns DESC, id ASC`); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return s.withModes(ctx, rows)
}

func (s *SQLiteStore) MissingNarratives(ctx context.Context, cutoff time.Time) ([]feasibility.FeasibilityReport, error) {
	var rows []reportRow
	err := s.db.SelectContext(ctx, &rows, `SELECT r.* FROM reports r
		WHERE r.created_unix_ns < ?
		AND EXISTS (SELECT 1 FROM mode_results m WHERE m.report_id = r.id AND (m.narrative IS NULL OR m.narrative = ''))
		ORDER BY r.created_unix_ns DESC, r.id ASC`, cutoff.UTC().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("list missing narratives: %w", err)
	}
	return s.withModes(ctx, rows)
}

func (s *SQLiteStore) withModes(ctx context.Context, rows []reportRow) ([]feasibility.FeasibilityReport, error) {
	out := make([]feasibility.FeasibilityReport, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	query, args, err := sqlx.In(`SELECT * FROM mode_results WHERE report_id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var modes []modeRow
	if err := s.db.SelectContext(ctx, &modes, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list mode results: %w", err)
	}
	byReport := map[string][]modeRow{}
	for _, m := range modes {
		byReport[m.ReportID] = append(byReport[m.ReportID], m)
	}
	for _, r := range rows {
		rep, err := assemble(r, byReport[r.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM mode_results WHERE report_id = ?`, id); err != nil {
		return fmt.Errorf("delete mode results: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) SetNarrative(ctx context.Context, id string, mode feasibility.Mode, text string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE mode_results SET narrative = ? WHERE report_id = ? AND mode = ?`, text, id, string(mode))
	if err != nil {
		return fmt.Errorf("set narrative: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("report %s mode %s: %w", id, mode, ErrNotFound)
	}
	return nil
}

func assemble(row reportRow, modes []modeRow) (feasibility.FeasibilityReport, error) {
	created, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return feasibility.FeasibilityReport{}, fmt.Errorf("parse created_at: %w", err)
	}
	var tags []string
	if strings.TrimSpace(row.Tags) != "" {
		if err := json.Unmarshal([]byte(row.Tags), &tags); err != nil {
			return feasibility.FeasibilityReport{}, fmt.Errorf("decode tags: %w", err)
		}
	}
	r := feasibility.FeasibilityReport{
		ID:        row.ID,
		Idea:      row.Idea,
		CreatedAt: created,
		Tags:      tags,
		DerivedInputs: feasibility.DerivedInputs{
			Risk:             row.Risk,
			TimeValue:        row.TimeValue,
			ROITime:          row.ROITime,
			LengthTimeFactor: row.LengthTimeFactor,
			InterestRate:     row.InterestRate,
		},
		ResultsByMode: make(map[feasibility.Mode]feasibility.ModeResult, len(modes)),
	}
	for _, m := range modes {
		res := feasibility.ModeResult{
			Mode:         feasibility.Mode(m.Mode),
			Score:        m.Score,
			Verdict:      feasibility.Verdict(m.Verdict),
			PVFactor:     m.PVFactor,
			CombinedRate: m.CombinedRate,
			Details: feasibility.ScoreDetails{
				RiskPenalty:      m.RiskPenalty,
				TimelinePenalty:  m.TimelinePenalty,
				RatePenalty:      m.RatePenalty,
				FeasibleCutoff:   m.FeasibleCutoff,
				BorderlineCutoff: m.BorderlineCutoff,
			},
		}
		if m.Narrative.Valid {
			text := m.Narrative.String
			res.Narrative = &text
		}
		r.ResultsByMode[res.Mode] = res
	}
	return r, nil
}
