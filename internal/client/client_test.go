package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joelkehle/ideascope/internal/feasibility"
	"github.com/joelkehle/ideascope/internal/httpapi"
	"github.com/joelkehle/ideascope/internal/ideas"
	"github.com/joelkehle/ideascope/internal/metrics"
	"github.com/joelkehle/ideascope/internal/narrative"
	"github.com/joelkehle/ideascope/internal/projection"
	"github.com/joelkehle/ideascope/internal/store"
)

type slowGenerator struct{ delay time.Duration }

func (g slowGenerator) Generate(ctx context.Context, req narrative.Request) (string, error) {
	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return req.Mode.Label() + " posture: " + string(req.Result.Verdict), nil
}

func newStack(t *testing.T) (*Client, *ideas.Service) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "ideascope.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	d := narrative.NewDispatcher(context.Background(), slowGenerator{delay: 20 * time.Millisecond})
	svc := ideas.NewService(nil, st, ideas.WithDispatcher(d))
	srv := httptest.NewServer(httpapi.NewServer(svc, httpapi.Options{Metrics: metrics.New()}))
	t.Cleanup(func() {
		srv.Close()
		svc.Wait()
	})
	return New(srv.URL + "/"), svc
}

func TestEndToEndIdeaFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, _ := newStack(t)

	created, err := c.SubmitIdea(ctx, "Regulated telehealth platform for rural hospitals, 10% loan, ROI in 30 months")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.DerivedInputs.Risk != 50 || created.DerivedInputs.InterestRate != 10 || created.DerivedInputs.ROITime != 30 {
		t.Fatalf("inputs=%+v", created.DerivedInputs)
	}

	done, err := c.WaitForNarratives(ctx, created.ID, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("wait for narratives: %v", err)
	}
	for _, m := range feasibility.AllModes() {
		res := done.ResultsByMode[m]
		if !res.HasNarrative() || !strings.HasPrefix(*res.Narrative, m.Label()) {
			t.Fatalf("mode %s narrative=%v", m, res.Narrative)
		}
		if res.Score != created.ResultsByMode[m].Score {
			t.Fatalf("mode %s score drifted", m)
		}
	}

	md, err := c.RenderReport(ctx, created.ID, "")
	if err != nil {
		t.Fatalf("render markdown: %v", err)
	}
	if strings.Contains(md, "_Narrative pending._") {
		t.Fatalf("markdown still shows pending narratives")
	}

	list, err := c.ListReports(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list=%d err=%v", len(list), err)
	}

	if err := c.DeleteReport(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = c.GetReport(ctx, created.ID)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Code != "not_found" {
		t.Fatalf("expected not_found APIError, got %v", err)
	}
}

func TestEndToEndProjection(t *testing.T) {
	ctx := context.Background()
	c, _ := newStack(t)

	a, err := c.Project(ctx, ProjectionRequest{
		BaseRevenue: projection.DefaultBaseRevenue,
		Scenarios:   projection.DefaultScenarios(),
	})
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if a.Months != projection.DefaultMonths || len(a.Table) != projection.DefaultMonths+1 {
		t.Fatalf("months=%d rows=%d", a.Months, len(a.Table))
	}
	if a.Outlook.ConfidenceLevel != 100 {
		t.Fatalf("confidence=%v want=100", a.Outlook.ConfidenceLevel)
	}
	if len(a.Table[0].Values) != 3 {
		t.Fatalf("row values=%v", a.Table[0].Values)
	}

	bad := projection.DefaultScenarios()
	bad[0].AvgPrice = 0
	_, err = c.Project(ctx, ProjectionRequest{BaseRevenue: 1000, Scenarios: bad})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest || apiErr.Code != "validation" {
		t.Fatalf("expected validation APIError, got %v", err)
	}
}
