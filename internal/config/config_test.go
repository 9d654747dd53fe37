package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joelkehle/ideascope/internal/feasibility"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Store.Driver != "memory" || cfg.Log.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Narrative.Provider != "anthropic" || cfg.Narrative.Timeout != 45*time.Second {
		t.Fatalf("unexpected narrative defaults: %+v", cfg.Narrative)
	}
	if cfg.Scheduler.BackfillCron != "@every 10m" {
		t.Fatalf("backfill cron=%q", cfg.Scheduler.BackfillCron)
	}
	if cfg.Extractor.DefaultInterestRate != 8 || cfg.Extractor.LargeScaleLengthFactor != 48 {
		t.Fatalf("unexpected extractor defaults: %+v", cfg.Extractor)
	}
	if cfg.Modes[feasibility.ModeSafe] != feasibility.DefaultCoefficients[feasibility.ModeSafe] {
		t.Fatalf("safe row=%+v", cfg.Modes[feasibility.ModeSafe])
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":9000"
store:
  driver: sqlite
  sqlite_path: /tmp/a.db
narrative:
  provider: openai
  timeout: 10s
modes:
  wild:
    risk_weight: 0.1
    time_weight: 0.2
    rate_weight: 0.1
    feasible_cutoff: 40
    borderline_cutoff: 25
`)
	t.Setenv("IDEASCOPE_SQLITE_PATH", "/tmp/b.db")
	t.Setenv("IDEASCOPE_KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Store.Driver != "sqlite" || cfg.Store.SQLitePath != "/tmp/b.db" {
		t.Fatalf("unexpected store/server: %+v %+v", cfg.Server, cfg.Store)
	}
	if cfg.Narrative.Provider != "openai" || cfg.Narrative.Timeout != 10*time.Second || cfg.Narrative.MaxAttempts != 3 {
		t.Fatalf("unexpected narrative: %+v", cfg.Narrative)
	}
	if len(cfg.Events.Brokers) != 2 || cfg.Events.Brokers[1] != "k2:9092" {
		t.Fatalf("brokers=%v", cfg.Events.Brokers)
	}
	if cfg.Modes[feasibility.ModeWild].FeasibleCutoff != 40 {
		t.Fatalf("wild row not loaded: %+v", cfg.Modes[feasibility.ModeWild])
	}
	if cfg.Modes[feasibility.ModeConservative] != feasibility.DefaultCoefficients[feasibility.ModeConservative] {
		t.Fatalf("conservative row not filled from defaults")
	}
}

func TestLoadRejectsInvertedModes(t *testing.T) {
	path := writeFile(t, `
modes:
  wild:
    risk_weight: 0.9
    time_weight: 0.3
    rate_weight: 0.15
    feasible_cutoff: 45
    borderline_cutoff: 30
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "penalty weights") {
		t.Fatalf("expected ordering error, got %v", err)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("IDEASCOPE_STORE_DRIVER", "postgres")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	if _, err := Load(writeFile(t, "server: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}
