package schema

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"triage/internal/evidence"
)

func TestNames(t *testing.T) {
	if diff := cmp.Diff([]string{Bundle, Run}, Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	if _, err := Raw("nope"); err == nil {
		t.Error("Raw(nope): want error")
	}
}

func TestValidateJSON_Bundle(t *testing.T) {
	good := `{"failures":[{"id":"1","error_text":"boom","repository":{"locator_found":null}}]}`
	if err := ValidateJSON(Bundle, []byte(good)); err != nil {
		t.Errorf("good bundle: %v", err)
	}
	cases := map[string]string{
		"no failures":      `{"failures":[]}`,
		"missing failures": `{"run_id":"x"}`,
		"bad health score": `{"failures":[{"environment":{"healthy":true,"accessible":true,"health_score":2}}]}`,
		"string locator":   `{"failures":[{"repository":{"locator_found":"maybe"}}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateJSON(Bundle, []byte(doc))
			if err == nil || !strings.Contains(err.Error(), "bundle schema") {
				t.Errorf("got %v want a bundle schema error", err)
			}
		})
	}
}

func TestValidate_Run(t *testing.T) {
	loc := "#save"
	run := evidence.Run{
		ID:        "r1",
		CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Records: []evidence.EvidenceRecord{{
			ID:              "f1",
			Signature:       evidence.FailureSignature{Kind: evidence.KindLocatorNotFound, Locator: &loc},
			BaseScores:      evidence.Triple(0.3, 0.6, 0.1),
			Factors:         []evidence.AppliedFactor{{Name: "flaky_history", Into: evidence.Automation, Delta: 0.1}},
			Classification:  evidence.ClassificationResult{Category: evidence.CategoryAutomation, Scores: evidence.Triple(0.3, 0.6, 0.1), Path: evidence.PathDecisionTable},
			Confidence:      evidence.ConfidenceResult{Value: 0.6, Level: evidence.LevelMedium},
			TimelineStatus:  evidence.TimelineNotConfigured,
			Corrections:     []evidence.Correction{},
			Flags:           []evidence.Correction{},
			FinalCategory:   evidence.CategoryAutomation,
			FinalConfidence: 0.6,
		}},
		Summary: evidence.RunSummary{
			Total:             1,
			Counts:            map[evidence.Category]int{evidence.CategoryAutomation: 1},
			OverallCategory:   evidence.CategoryAutomation,
			OverallConfidence: 0.6,
		},
	}
	if err := Validate(Run, run); err != nil {
		t.Errorf("run: %v", err)
	}

	run.Records[0].FinalCategory = "unsure"
	if err := Validate(Run, run); err == nil {
		t.Error("unknown category: want error")
	}
	if err := Validate("nope", run); err == nil {
		t.Error("unknown schema: want error")
	}
}
