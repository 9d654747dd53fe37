package httpapi

import (
	"net/http"

	"github.com/joelkehle/ideascope/internal/feasibility"
	"github.com/joelkehle/ideascope/internal/projection"
	"github.com/joelkehle/ideascope/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Tags          []string                  `json:"tags"`
	DerivedInputs feasibility.DerivedInputs `json:"derived_inputs"`
	LargeScale    bool                      `json:"large_scale"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req extractRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, extractResponse{
		Tags:          s.extractor.ExtractKeywords(req.Text),
		DerivedInputs: s.extractor.DeriveInputs(req.Text),
		LargeScale:    s.extractor.IsLargeScale(req.Text),
	})
}

type feasibilityRequest struct {
	Inputs feasibility.DerivedInputs `json:"inputs"`
	Mode   string                    `json:"mode" validate:"omitempty,oneof=conservative safe wild"`
}

type feasibilityResponse struct {
	Results     map[feasibility.Mode]feasibility.ModeResult          `json:"results"`
	Sensitivity map[feasibility.Mode][]feasibility.SensitivityDriver `json:"sensitivity"`
}

func (s *Server) handleFeasibility(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req feasibilityRequest
	if !s.decode(w, r, &req) {
		return
	}
	modes := feasibility.AllModes()
	if req.Mode != "" {
		modes = []feasibility.Mode{feasibility.Mode(req.Mode)}
	}
	resp := feasibilityResponse{
		Results:     make(map[feasibility.Mode]feasibility.ModeResult, len(modes)),
		Sensitivity: make(map[feasibility.Mode][]feasibility.SensitivityDriver, len(modes)),
	}
	for _, m := range modes {
		c := s.coefficients.For(m)
		resp.Results[m] = feasibility.ComputeFeasibility(m, req.Inputs, c)
		resp.Sensitivity[m] = feasibility.Sensitivity(m, req.Inputs, c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"modes": s.coefficients})
}

type projectionRequest struct {
	BaseRevenue float64                     `json:"base_revenue" validate:"gte=0"`
	Months      int                         `json:"months" default:"12" validate:"gte=1,lte=120"`
	Scenarios   []projection.ScenarioParams `json:"scenarios" validate:"unique=Name,dive"`
}

func (s *Server) handleProjections(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req projectionRequest
	if !s.decode(w, r, &req) {
		return
	}
	_, span := telemetry.StartSpan(r.Context(), "projection.evaluate",
		attribute.Int("scenarios", len(req.Scenarios)),
		attribute.Int("months", req.Months))
	defer span.End()

	ws := projection.Workspace{}.WithBaseRevenue(req.BaseRevenue).WithMonths(req.Months)
	for _, sc := range req.Scenarios {
		ws = ws.Append(sc)
	}
	analysis, err := ws.Evaluate()
	if err != nil {
		span.RecordError(err)
		s.writeError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ProjectionComputed()
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleDefaultScenarios(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"base_revenue": projection.DefaultBaseRevenue,
		"months":       projection.DefaultMonths,
		"scenarios":    projection.DefaultScenarios(),
	})
}
