package scoring

import (
	"math"
	"testing"

	"triage/internal/evidence"
)

var locatorStates = []evidence.LocatorState{evidence.LocatorFound, evidence.LocatorNotFound, evidence.LocatorUnknown}

func TestBaseScore_EveryRowSumsToOne(t *testing.T) {
	tbl := DefaultTable()
	for k := 0; k < evidence.NumKinds; k++ {
		for _, env := range []bool{true, false} {
			for _, loc := range locatorStates {
				got := tbl.BaseScore(evidence.SignatureKind(k), env, loc)
				if !got.IsNormalized() {
					t.Errorf("BaseScore(%s, %v, %s) = %s, sum %.12f", evidence.SignatureKind(k), env, loc, got, got.Sum())
				}
			}
		}
	}
}

func TestBaseScore_TotalOnOutOfRangeInputs(t *testing.T) {
	got := BaseScore(evidence.SignatureKind(99), true, evidence.LocatorState(-4))
	if got != NeutralRow {
		t.Errorf("out-of-range lookup: got %s want neutral %s", got, NeutralRow)
	}
}

func TestBaseScore_Deterministic(t *testing.T) {
	a := BaseScore(evidence.KindAssertion, false, evidence.LocatorUnknown)
	b := BaseScore(evidence.KindAssertion, false, evidence.LocatorUnknown)
	if a != b {
		t.Errorf("same inputs gave %s and %s", a, b)
	}
}

// BDD: Given a locator failure in a healthy env with the locator found, Then the base row is automation-leaning.
func TestBaseScore_LocatorFoundHealthy(t *testing.T) {
	got := BaseScore(evidence.KindLocatorNotFound, true, evidence.LocatorFound)
	want := evidence.Triple(0.30, 0.60, 0.10)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("got %s want %s", got, want)
		}
	}
	if got.Argmax() != evidence.Automation {
		t.Errorf("Argmax: got %s want automation", got.Argmax())
	}
}

func TestBaseScore_UnknownKindUsesNeutralRow(t *testing.T) {
	for _, env := range []bool{true, false} {
		for _, loc := range locatorStates {
			if got := BaseScore(evidence.KindUnknown, env, loc); got != NeutralRow {
				t.Errorf("unknown(%v, %s): got %s want %s", env, loc, got, NeutralRow)
			}
		}
	}
}

func TestNewTable_CustomNeutralRow(t *testing.T) {
	tbl, err := NewTable(evidence.Triple(0.25, 0.25, 0.5))
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if got := tbl.BaseScore(evidence.KindUnknown, true, evidence.LocatorFound); got[evidence.Infrastructure] != 0.5 {
		t.Errorf("custom neutral not used: %s", got)
	}
	if got := tbl.BaseScore(evidence.KindTimeout, true, evidence.LocatorFound); got[evidence.Automation] != 0.70 {
		t.Errorf("custom neutral leaked into timeout row: %s", got)
	}
	if _, err := NewTable(evidence.Triple(0.5, 0.5, 0.5)); err == nil {
		t.Error("NewTable accepted a row summing to 1.5")
	}
}
