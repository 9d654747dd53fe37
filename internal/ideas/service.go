package ideas

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joelkehle/ideascope/internal/events"
	"github.com/joelkehle/ideascope/internal/feasibility"
	"github.com/joelkehle/ideascope/internal/narrative"
	"github.com/joelkehle/ideascope/internal/store"
	"github.com/joelkehle/ideascope/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

var ErrEmptyIdea = errors.New("idea text is required")

// Recorder is the slice of the metrics recorder the service reports into.
type Recorder interface {
	ReportCreated()
	ScoreObserved(mode, verdict string, score int)
}

type nopRecorder struct{}

func (nopRecorder) ReportCreated() {}

func (nopRecorder) ScoreObserved(string, string, int) {}

// Service owns the report lifecycle: score, persist, then enrich each mode
// with a narrative as it arrives.
type Service struct {
	analyzer   *feasibility.Analyzer
	store      store.Store
	dispatcher *narrative.Dispatcher
	publisher  events.Publisher
	rec        Recorder
	log        zerolog.Logger
	now        func() time.Time
}

type Option func(*Service)

func WithDispatcher(d *narrative.Dispatcher) Option { return func(s *Service) { s.dispatcher = d } }
func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.publisher = p } }
func WithRecorder(r Recorder) Option { return func(s *Service) { s.rec = r } }
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(analyzer *feasibility.Analyzer, st store.Store, opts ...Option) *Service {
	if analyzer == nil {
		analyzer = feasibility.NewAnalyzer(nil, nil)
	}
	s := &Service{
		analyzer:  analyzer,
		store:     st,
		publisher: events.NoopPublisher{},
		rec:       nopRecorder{},
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit scores the idea under every mode, stores the report and fires the
// narrative requests. It returns before any narrative arrives.
func (s *Service) Submit(ctx context.Context, idea string) (feasibility.FeasibilityReport, error) {
	if strings.TrimSpace(idea) == "" {
		return feasibility.FeasibilityReport{}, ErrEmptyIdea
	}
	ctx, span := telemetry.StartSpan(ctx, "ideas.submit")
	defer span.End()

	report := s.analyzer.Analyze(idea)
	span.SetAttributes(attribute.String("report_id", report.ID))
	if err := s.store.Create(ctx, report); err != nil {
		span.RecordError(err)
		return feasibility.FeasibilityReport{}, fmt.Errorf("store report: %w", err)
	}

	s.rec.ReportCreated()
	verdicts := map[string]any{}
	for _, m := range feasibility.AllModes() {
		res := report.ResultsByMode[m]
		s.rec.ScoreObserved(string(m), string(res.Verdict), res.Score)
		verdicts[string(m)] = string(res.Verdict)
	}
	s.publish(ctx, events.Event{Type: events.TypeReportCreated, ReportID: report.ID, Payload: verdicts})

	started := s.dispatcher.Dispatch(report, feasibility.AllModes(), s.narrativeSink)
	s.log.Info().
		Str("report_id", report.ID).
		Strs("tags", report.Tags).
		Int("narratives_requested", started).
		Msg("report created")
	return report, nil
}

func (s *Service) Get(ctx context.Context, id string) (feasibility.FeasibilityReport, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return feasibility.FeasibilityReport{}, fmt.Errorf("get report %s: %w", id, err)
	}
	return r, nil
}

func (s *Service) List(ctx context.Context) ([]feasibility.FeasibilityReport, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	s.publish(ctx, events.Event{Type: events.TypeReportDeleted, ReportID: id})
	s.log.Info().Str("report_id", id).Msg("report deleted")
	return nil
}

// ApplyNarrative writes one narrative into its (report, mode) slot.
func (s *Service) ApplyNarrative(ctx context.Context, ev narrative.Event) error {
	if err := s.store.SetNarrative(ctx, ev.ReportID, ev.Mode, ev.Text); err != nil {
		return fmt.Errorf("apply narrative %s/%s: %w", ev.ReportID, ev.Mode, err)
	}
	s.publish(ctx, events.Event{Type: events.TypeNarrativeCompleted, ReportID: ev.ReportID, Mode: string(ev.Mode)})
	return nil
}

func (s *Service) narrativeSink(ctx context.Context, ev narrative.Event) {
	if err := s.ApplyNarrative(ctx, ev); err != nil {
		// The report may have been deleted while the request was in flight.
		s.log.Warn().Err(err).Str("report_id", ev.ReportID).Str("mode", string(ev.Mode)).Msg("narrative dropped")
	}
}

// BackfillNarratives re-requests narratives still missing on reports older
// than olderThan and returns how many requests were started.
func (s *Service) BackfillNarratives(ctx context.Context, olderThan time.Duration) (int, error) {
	if !s.dispatcher.Enabled() {
		return 0, nil
	}
	pending, err := s.store.MissingNarratives(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("list missing narratives: %w", err)
	}
	started := 0
	for _, r := range pending {
		started += s.dispatcher.Dispatch(r, r.MissingNarratives(), s.narrativeSink)
	}
	if started > 0 {
		s.log.Info().Int("reports", len(pending)).Int("requests", started).Msg("narrative backfill dispatched")
	}
	return started, nil
}

// Wait blocks until in-flight narrative requests finish.
func (s *Service) Wait() {
	s.dispatcher.Wait()
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if ev.At.IsZero() {
		ev.At = s.now().UTC()
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("report_id", ev.ReportID).Str("event", ev.Type).Msg("event publish failed")
	}
}
