package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"triage/internal/evidence"
)

func sampleRecord() evidence.EvidenceRecord {
	return evidence.EvidenceRecord{
		ID:             "f-1",
		Classification: evidence.ClassificationResult{Category: evidence.CategoryProduct, Path: evidence.PathValidatorCorrected},
		Corrections: []evidence.Correction{
			{Rule: "server_error_override", Kind: evidence.KindOverride},
		},
		Flags:           []evidence.Correction{{Rule: "timeline_disagrees", Kind: evidence.KindFlag}},
		TimelineStatus:  evidence.TimelineNotApplicable,
		FinalCategory:   evidence.CategoryProduct,
		FinalConfidence: 0.71,
	}
}

func TestMetrics_ObserveRecord(t *testing.T) {
	m := New()
	m.ObserveRecord(sampleRecord(), 3*time.Millisecond)
	m.ObserveRecord(sampleRecord(), time.Millisecond)

	if got := testutil.ToFloat64(m.records.WithLabelValues("product", "validator_corrected")); got != 2 {
		t.Errorf("records: got %v want 2", got)
	}
	if got := testutil.ToFloat64(m.corrections.WithLabelValues("server_error_override", "override")); got != 2 {
		t.Errorf("overrides: got %v want 2", got)
	}
	if got := testutil.CollectAndCount(m.confidence); got != 1 {
		t.Errorf("confidence histogram series: got %d want 1", got)
	}
}

func TestMetrics_HandlerExposesRunCounter(t *testing.T) {
	m := New()
	m.ObserveRun(evidence.RunSummary{OverallCategory: evidence.CategoryMixed})

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `triage_runs_total{category="mixed"} 1`) {
		t.Errorf("exposition missing run counter:\n%s", rr.Body.String())
	}
}

func TestNop_SatisfiesRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.ObserveRecord(sampleRecord(), 0)
	r.ObserveRun(evidence.RunSummary{})
}
