package validate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"triage/internal/evidence"
)

func tableCall(c evidence.Category) evidence.ClassificationResult {
	return evidence.ClassificationResult{Category: c, Path: evidence.PathDecisionTable}
}

func healthyFacts() evidence.Facts {
	return evidence.Facts{EnvKnown: true, EnvHealthy: true, EnvAccessible: true, HealthScore: 1}
}

// BDD: Given the table blamed automation, When the console shows server errors, Then the call becomes product with one correction.
func TestValidate_ServerErrorOverride(t *testing.T) {
	f := healthyFacts()
	f.ConsoleKnown, f.ServerErrors = true, true
	got := Validate(tableCall(evidence.CategoryAutomation), f)

	if got.Classification.Category != evidence.CategoryProduct {
		t.Errorf("category: got %s want product", got.Classification.Category)
	}
	if got.Classification.Path != evidence.PathValidatorCorrected {
		t.Errorf("path: got %s want validator_corrected", got.Classification.Path)
	}
	want := []evidence.Correction{{
		Rule: "server_error_override", Kind: evidence.KindOverride,
		From: evidence.CategoryAutomation, To: evidence.CategoryProduct,
		Reason: "automation blamed but the console shows server errors", ConfidenceDelta: 0.10,
	}}
	if diff := cmp.Diff(want, got.Corrections); diff != "" {
		t.Errorf("corrections (-want +got):\n%s", diff)
	}
}

func TestValidate_ProductWithServerErrorsIsLeftAlone(t *testing.T) {
	f := healthyFacts()
	f.ServerErrors = true
	got := Validate(tableCall(evidence.CategoryProduct), f)
	if len(got.Corrections) != 0 || got.Classification.Category != evidence.CategoryProduct {
		t.Errorf("got %s with corrections %v", got.Classification.Category, got.Corrections)
	}
}

func TestValidate_AtMostOneOverride(t *testing.T) {
	f := evidence.Facts{EnvKnown: true, EnvHealthy: false, ServerErrors: true, ExpectedChange: true}
	got := Validate(tableCall(evidence.CategoryAutomation), f)
	if len(got.Corrections) != 1 {
		t.Fatalf("corrections: got %d want 1 (%v)", len(got.Corrections), got.Corrections)
	}
	if got.Corrections[0].Rule != "expected_change" {
		t.Errorf("first match: got %s want expected_change", got.Corrections[0].Rule)
	}
}

func TestValidate_EnvironmentOverride(t *testing.T) {
	f := evidence.Facts{EnvKnown: true, EnvHealthy: true, EnvAccessible: false}
	got := Validate(tableCall(evidence.CategoryAutomation), f)
	if got.Classification.Category != evidence.CategoryInfrastructure {
		t.Errorf("category: got %s want infrastructure", got.Classification.Category)
	}
}

func TestValidate_FlakyRetryPass(t *testing.T) {
	f := healthyFacts()
	f.FlakyHistory, f.PassedOnRetry = true, true
	got := Validate(tableCall(evidence.CategoryInfrastructure), f)
	if got.Classification.Category != evidence.CategoryFlaky {
		t.Errorf("category: got %s want flaky", got.Classification.Category)
	}
}

func TestValidate_TimelineCallIsNotOverridden(t *testing.T) {
	f := evidence.Facts{EnvKnown: true, EnvHealthy: false, ServerErrors: true}
	c := evidence.ClassificationResult{Category: evidence.CategoryAutomation, Path: evidence.PathTimelineOverride}
	got := Validate(c, f)
	if got.Classification != c {
		t.Errorf("timeline call changed: %+v", got.Classification)
	}
	if len(got.Corrections) != 0 {
		t.Errorf("corrections: got %v want none", got.Corrections)
	}
}

func TestValidate_SoftFlagsAllRecorded(t *testing.T) {
	f := healthyFacts()
	f.Kind = evidence.KindTimeout
	got := Validate(tableCall(evidence.CategoryInfrastructure), f)
	var rules []string
	for _, fl := range got.Flags {
		rules = append(rules, fl.Rule)
	}
	want := []string{"infrastructure_in_healthy_env", "timeout_in_healthy_env"}
	if diff := cmp.Diff(want, rules); diff != "" {
		t.Errorf("flags (-want +got):\n%s", diff)
	}
	if got.Classification.Category != evidence.CategoryInfrastructure {
		t.Errorf("flags must not change the category, got %s", got.Classification.Category)
	}
	if d := got.Delta(); d > -0.249 || d < -0.251 {
		t.Errorf("Delta: got %v want -0.25", d)
	}
}

func TestValidate_FlagsOnProductWithRecentChange(t *testing.T) {
	f := healthyFacts()
	f.RecentlyChanged = true
	got := Validate(tableCall(evidence.CategoryProduct), f)
	if len(got.Flags) != 1 || got.Flags[0].Rule != "product_with_recent_locator_change" {
		t.Fatalf("flags: %+v", got.Flags)
	}
	if got.Flags[0].To != evidence.CategoryAutomation {
		t.Errorf("suggestion: got %s want automation", got.Flags[0].To)
	}
}

func TestValidate_TimelineDisagreement(t *testing.T) {
	f := healthyFacts()
	f.Timeline = &evidence.TimelineVerdict{Category: evidence.CategoryProduct, Confidence: 0.72}
	got := Validate(tableCall(evidence.CategoryAutomation), f)
	if len(got.Flags) != 1 || got.Flags[0].Rule != "timeline_disagrees" {
		t.Errorf("flags: %+v", got.Flags)
	}
}

// allFacts enumerates the fact space the rules read.
func allFacts() []evidence.Facts {
	kinds := []evidence.SignatureKind{evidence.KindTimeout, evidence.KindLocatorNotFound, evidence.KindServerError}
	locs := []evidence.LocatorState{evidence.LocatorUnknown, evidence.LocatorFound, evidence.LocatorNotFound}
	timelines := []*evidence.TimelineVerdict{
		nil,
		{Category: evidence.CategoryAutomation, Confidence: 0.75},
		{Category: evidence.CategoryProduct, Confidence: 0.70},
	}
	var out []evidence.Facts
	for mask := 0; mask < 1<<9; mask++ {
		bit := func(i int) bool { return mask&(1<<i) != 0 }
		for _, k := range kinds {
			for _, l := range locs {
				for _, tl := range timelines {
					out = append(out, evidence.Facts{
						Kind:            k,
						FlakyHistory:    bit(0),
						PassedOnRetry:   bit(1),
						ExpectedChange:  bit(2),
						ServerErrors:    bit(3),
						EnvKnown:        bit(4),
						EnvHealthy:      bit(5),
						EnvAccessible:   bit(6),
						NetworkErrors:   bit(7),
						RecentlyChanged: bit(8),
						LocatorFound:    l,
						Timeline:        tl,
					})
				}
			}
		}
	}
	return out
}

func TestValidate_Idempotent(t *testing.T) {
	paths := []evidence.Path{evidence.PathDecisionTable, evidence.PathTimelineOverride, evidence.PathValidatorCorrected}
	checked := 0
	for _, f := range allFacts() {
		for _, cat := range evidence.Categories {
			for _, p := range paths {
				in := evidence.ClassificationResult{Category: cat, Path: p}
				once := Validate(in, f)
				twice := Validate(once.Classification, f)
				if twice.Classification.Category != once.Classification.Category {
					t.Fatalf("not idempotent for %+v on %s/%s: %s then %s",
						f, cat, p, once.Classification.Category, twice.Classification.Category)
				}
				if len(twice.Corrections) != 0 {
					t.Fatalf("second pass fired %v for %+v on %s/%s", twice.Corrections, f, cat, p)
				}
				if len(once.Corrections) > 1 {
					t.Fatalf("more than one override fired: %v", once.Corrections)
				}
				checked++
			}
		}
	}
	t.Logf("checked %d combinations", checked)
}
