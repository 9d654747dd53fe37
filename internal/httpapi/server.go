package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joelkehle/ideascope/internal/feasibility"
	"github.com/joelkehle/ideascope/internal/ideas"
	"github.com/joelkehle/ideascope/internal/metrics"
	"github.com/rs/zerolog"
)

type Options struct {
	Extractor    *feasibility.Extractor
	Coefficients feasibility.CoefficientTable
	Metrics      *metrics.Recorder
	Logger       zerolog.Logger
	MaxBodyBytes int64
}

type Server struct {
	reports      *ideas.Service
	extractor    *feasibility.Extractor
	coefficients feasibility.CoefficientTable
	metrics      *metrics.Recorder
	log          zerolog.Logger
	maxBody      int64
}

func NewServer(reports *ideas.Service, opts Options) http.Handler {
	s := &Server{
		reports:      reports,
		extractor:    opts.Extractor,
		coefficients: opts.Coefficients,
		metrics:      opts.Metrics,
		log:          opts.Logger,
		maxBody:      opts.MaxBodyBytes,
	}
	if s.extractor == nil {
		s.extractor = feasibility.NewExtractor(feasibility.DefaultExtractorConfig())
	}
	if s.coefficients == nil {
		s.coefficients = feasibility.DefaultCoefficients
	}
	if s.maxBody <= 0 {
		s.maxBody = 1 << 20
	}

	mux := http.NewServeMux()
	s.handle(mux, "/v1/ideas", s.handleIdeas)
	s.handle(mux, "/v1/ideas/", s.handleIdea)
	s.handle(mux, "/v1/extract", s.handleExtract)
	s.handle(mux, "/v1/feasibility", s.handleFeasibility)
	s.handle(mux, "/v1/modes", s.handleModes)
	s.handle(mux, "/v1/projections", s.handleProjections)
	s.handle(mux, "/v1/scenarios/defaults", s.handleDefaultScenarios)
	s.handle(mux, "/v1/health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handle(mux *http.ServeMux, route string, h http.HandlerFunc) {
	mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		elapsed := time.Since(started)
		if s.metrics != nil {
			s.metrics.HTTPRequest(route, r.Method, rec.status, elapsed)
		}
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", elapsed).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	ae := classify(err)
	if ae.Status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	body := map[string]any{
		"code":    ae.Code,
		"message": ae.Message,
	}
	if len(ae.Details) > 0 {
		body["details"] = ae.Details
	}
	writeJSON(w, ae.Status, map[string]any{"ok": false, "error": body})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, newError(CodeTooLarge, "request body too large")
		}
		return nil, validationError("read body: " + err.Error())
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	blob, err := s.readBody(w, r)
	if err == nil {
		err = decodeAndValidate(blob, req)
	}
	if err != nil {
		s.writeError(w, err)
		return false
	}
	return true
}

func methodOnly(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	w.WriteHeader(http.StatusMethodNotAllowed)
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
