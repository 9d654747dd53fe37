package narrative

import (
	"context"
	"sync"
	"time"

	"github.com/joelkehle/ideascope/internal/feasibility"
	"github.com/joelkehle/ideascope/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Recorder counts narrative outcomes per provider.
type Recorder interface {
	NarrativeRequest(provider, status string)
}

// Sink receives each completed narrative.
type Sink func(ctx context.Context, ev Event)

type inflightKey struct {
	reportID string
	mode     feasibility.Mode
}

// Dispatcher runs one generation per (report, mode) in the background and
// hands every success to a sink. Failures are logged and counted only.
type Dispatcher struct {
	gen      Generator
	provider string
	timeout  time.Duration
	log      zerolog.Logger
	rec      Recorder
	base     context.Context

	mu       sync.Mutex
	inflight map[inflightKey]struct{}
	wg       sync.WaitGroup
}

type Option func(*Dispatcher)

func WithProvider(name string) Option { return func(d *Dispatcher) { d.provider = name } }
func WithTimeout(t time.Duration) Option { return func(d *Dispatcher) { d.timeout = t } }
func WithLogger(l zerolog.Logger) Option { return func(d *Dispatcher) { d.log = l } }
func WithRecorder(r Recorder) Option { return func(d *Dispatcher) { d.rec = r } }

// NewDispatcher binds background work to base; cancelling it aborts pending
// generations. A nil gen yields a dispatcher that drops every request.
func NewDispatcher(base context.Context, gen Generator, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		gen:      gen,
		provider: "unknown",
		timeout:  45 * time.Second,
		log:      zerolog.Nop(),
		base:     base,
		inflight: map[inflightKey]struct{}{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Enabled() bool { return d != nil && d.gen != nil }

// Dispatch starts a generation for each listed mode that is not already
// running and returns how many were started. It never blocks on the provider.
func (d *Dispatcher) Dispatch(report feasibility.FeasibilityReport, modes []feasibility.Mode, sink Sink) int {
	if !d.Enabled() {
		return 0
	}
	started := 0
	for _, mode := range modes {
		res, ok := report.ResultsByMode[mode]
		if !ok {
			continue
		}
		key := inflightKey{reportID: report.ID, mode: mode}
		d.mu.Lock()
		if _, busy := d.inflight[key]; busy {
			d.mu.Unlock()
			continue
		}
		d.inflight[key] = struct{}{}
		d.mu.Unlock()

		req := Request{
			ReportID: report.ID,
			IdeaText: report.Idea,
			Mode:     mode,
			Result:   res,
			Inputs:   report.DerivedInputs,
		}
		d.wg.Add(1)
		started++
		go d.run(key, req, sink)
	}
	return started
}

func (d *Dispatcher) run(key inflightKey, req Request, sink Sink) {
	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		delete(d.inflight, key)
		d.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(d.base, d.timeout)
	defer cancel()
	ctx, span := telemetry.StartSpan(ctx, "narrative.generate",
		attribute.String("report_id", req.ReportID),
		attribute.String("mode", string(req.Mode)),
		attribute.String("provider", d.provider))
	defer span.End()

	log := d.log.With().Str("report_id", req.ReportID).Str("mode", string(req.Mode)).Str("provider", d.provider).Logger()
	started := time.Now()
	text, err := d.gen.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.record("error")
		log.Warn().Err(err).Dur("elapsed", time.Since(started)).Msg("narrative generation failed")
		return
	}
	d.record("ok")
	log.Debug().Dur("elapsed", time.Since(started)).Msg("narrative generated")
	if sink != nil {
		sink(d.base, Event{ReportID: req.ReportID, Mode: req.Mode, Text: text})
	}
}

func (d *Dispatcher) record(status string) {
	if d.rec != nil {
		d.rec.NarrativeRequest(d.provider, status)
	}
}

// Wait blocks until every started generation has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
