package httpapi

import (
	"net/http"
	"strings"

	"github.com/joelkehle/ideascope/internal/feasibility"
)

type submitIdeaRequest struct {
	Idea string `json:"idea" validate:"required"`
}

func (s *Server) handleIdeas(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req submitIdeaRequest
		if !s.decode(w, r, &req) {
			return
		}
		report, err := s.reports.Submit(r.Context(), req.Idea)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, report)
	case http.MethodGet:
		reports, err := s.reports.List(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		if reports == nil {
			reports = []feasibility.FeasibilityReport{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
	default:
		methodOnly(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleIdea serves /v1/ideas/{id} and /v1/ideas/{id}/report.
func (s *Server) handleIdea(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/ideas/"), "/")
	parts := strings.Split(rest, "/")
	if rest == "" || len(parts) > 2 || (len(parts) == 2 && parts[1] != "report") {
		s.writeError(w, newError(CodeNotFound, "unknown path "+r.URL.Path))
		return
	}
	id := parts[0]
	if len(parts) == 2 {
		s.handleIdeaReport(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		report, err := s.reports.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	case http.MethodDelete:
		if err := s.reports.Delete(r.Context(), id); err != nil {
			s.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodOnly(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (s *Server) handleIdeaReport(w http.ResponseWriter, r *http.Request, id string) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format != "" && format != "markdown" && format != "html" {
		s.writeError(w, validationError("format must be one of: markdown, html"))
		return
	}
	report, err := s.reports.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	md := feasibility.BuildMarkdown(report)
	if format == "html" {
		body, err := feasibility.RenderHTML(md)
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(md))
}
