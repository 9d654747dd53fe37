package main

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joelkehle/ideascope/internal/feasibility"
	"github.com/joelkehle/ideascope/internal/httpapi"
	"github.com/joelkehle/ideascope/internal/ideas"
	"github.com/joelkehle/ideascope/internal/store"
)

func TestRenderFormats(t *testing.T) {
	report := feasibility.NewAnalyzer(nil, nil).Analyze("Subscription bakery with loyal customers, 8% loan, 18 months")

	md, err := render(report, "markdown")
	if err != nil || !strings.Contains(md, "# Feasibility Report") {
		t.Fatalf("markdown err=%v body=%q", err, md)
	}
	html, err := render(report, "HTML")
	if err != nil || !strings.Contains(html, "<h1>Feasibility Report</h1>") {
		t.Fatalf("html err=%v body=%q", err, html)
	}
	js, err := render(report, "json")
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded feasibility.FeasibilityReport
	if err := json.Unmarshal([]byte(js), &decoded); err != nil || decoded.ID != report.ID {
		t.Fatalf("decode err=%v id=%q", err, decoded.ID)
	}
	if _, err := render(report, "pdf"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestRemoteReportWithoutWait(t *testing.T) {
	svc := ideas.NewService(nil, store.NewMemoryStore())
	srv := httptest.NewServer(httpapi.NewServer(svc, httpapi.Options{}))
	defer srv.Close()

	report, err := remoteReport(srv.URL, "Recurring subscription service, 8% loan, 18 months", 0)
	if err != nil {
		t.Fatalf("remote report: %v", err)
	}
	if report.ID == "" || report.DerivedInputs.Risk != 25 {
		t.Fatalf("report=%+v", report)
	}
	if got := len(report.MissingNarratives()); got != len(feasibility.AllModes()) {
		t.Fatalf("missing narratives=%d", got)
	}

	if _, err := remoteReport(srv.URL, "   ", 0); err == nil {
		t.Fatalf("expected validation error for blank idea")
	}
}
