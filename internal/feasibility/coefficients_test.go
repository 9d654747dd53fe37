package feasibility

import "testing"

func TestDefaultCoefficientsValidity(t *testing.T) {
	if err := DefaultCoefficients.Validate(); err != nil {
		t.Fatalf("default coefficients invalid: %v", err)
	}
	for _, m := range AllModes() {
		if _, ok := DefaultCoefficients[m]; !ok {
			t.Fatalf("%s: missing from default table", m)
		}
	}
}

func TestCoefficientTableValidateRejectsInvertedOrdering(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(CoefficientTable)
	}{
		{"wild risk above safe", func(t CoefficientTable) {
			c := t[ModeWild]
			c.RiskWeight = 0.9
			t[ModeWild] = c
		}},
		{"safe cutoff above conservative", func(t CoefficientTable) {
			c := t[ModeSafe]
			c.FeasibleCutoff = 80
			t[ModeSafe] = c
		}},
		{"borderline above feasible", func(t CoefficientTable) {
			c := t[ModeConservative]
			c.BorderlineCutoff = 75
			t[ModeConservative] = c
		}},
		{"negative weight", func(t CoefficientTable) {
			c := t[ModeWild]
			c.RateWeight = -1
			t[ModeWild] = c
		}},
		{"missing mode", func(t CoefficientTable) {
			delete(t, ModeSafe)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := CoefficientTable{}
			for k, v := range DefaultCoefficients {
				table[k] = v
			}
			tc.mutate(table)
			if err := table.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCoefficientTableForFallsBackToSafe(t *testing.T) {
	got := DefaultCoefficients.For(Mode("reckless"))
	if got != DefaultCoefficients[ModeSafe] {
		t.Fatalf("expected safe fallback, got %+v", got)
	}
	empty := CoefficientTable{}
	if empty.For(ModeWild) != DefaultCoefficients[ModeSafe] {
		t.Fatal("expected built-in safe row for empty table")
	}
}
