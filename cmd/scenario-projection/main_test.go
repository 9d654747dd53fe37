package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWorkspaceAndRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	body := `
base_revenue: 50000
months: 6
scenarios:
  - id: base
    name: Base Case
    customer_acquisition: 5
    churn_rate: 2
    avg_price: 100
    probability: 100
  - name: Flat
    customer_acquisition: 0
    churn_rate: 0
    avg_price: 50
    probability: 0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ws, err := loadWorkspace(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ws.Months != 6 || len(ws.Scenarios) != 2 || ws.Scenarios[1].ID != "scenario-2" {
		t.Fatalf("workspace=%+v", ws)
	}

	a, err := ws.Evaluate()
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	out := renderTable(a)
	for _, want := range []string{"Base revenue $50,000 over 6 months", "$51,500", "Base Case", "Flat", "probability total 100.0%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLoadWorkspaceMissingMonthsUsesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	if err := os.WriteFile(path, []byte("scenarios:\n  - name: Only\n    avg_price: 10\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ws, err := loadWorkspace(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ws.Months != 12 || ws.BaseRevenue != 50000 {
		t.Fatalf("workspace=%+v", ws)
	}
}

func TestLoadWorkspaceKeepsSharedIDsAndRejectsSharedNames(t *testing.T) {
	dir := t.TempDir()
	shared := filepath.Join(dir, "shared-id.yaml")
	body := `
scenarios:
  - {id: x, name: A, avg_price: 10, probability: 60}
  - {id: x, name: B, avg_price: 10, probability: 40}
`
	if err := os.WriteFile(shared, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ws, err := loadWorkspace(shared)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a, err := ws.Evaluate()
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(a.Series) != 2 || a.Outlook.ConfidenceLevel != 100 {
		t.Fatalf("series=%d confidence=%v", len(a.Series), a.Outlook.ConfidenceLevel)
	}

	dupName := filepath.Join(dir, "dup-name.yaml")
	body = `
scenarios:
  - {id: a, name: Same, avg_price: 10}
  - {id: b, name: Same, avg_price: 20}
`
	if err := os.WriteFile(dupName, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadWorkspace(dupName); err == nil || !strings.Contains(err.Error(), "Same") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}
