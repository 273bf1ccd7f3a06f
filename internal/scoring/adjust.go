package scoring

import (
	"fmt"

	"triage/internal/evidence"
)

// Factor is one named additive nudge applied when its trigger holds.
type Factor struct {
	Name    string
	Into    evidence.Cause
	Delta   float64
	Applies func(evidence.Facts) bool
}

// Factors is the fixed application order. Deltas are summed first, then
// every component is clamped to [0,1], then the triple is renormalised once,
// so the order only matters for the recorded audit trail.
var Factors = []Factor{
	{
		Name: "server_error_present", Into: evidence.Product, Delta: 0.15,
		Applies: func(f evidence.Facts) bool { return f.ServerErrors },
	},
	{
		Name: "network_errors_present", Into: evidence.Infrastructure, Delta: 0.10,
		Applies: func(f evidence.Facts) bool { return f.NetworkErrors },
	},
	{
		Name: "locator_recently_changed", Into: evidence.Automation, Delta: 0.15,
		Applies: func(f evidence.Facts) bool { return f.RecentlyChanged },
	},
	{
		Name: "environment_inaccessible", Into: evidence.Infrastructure, Delta: 0.20,
		Applies: func(f evidence.Facts) bool { return f.EnvKnown && !f.EnvAccessible },
	},
	{
		Name: "environment_degraded", Into: evidence.Infrastructure, Delta: 0.10,
		Applies: func(f evidence.Facts) bool { return f.EnvKnown && f.EnvAccessible && f.HealthScore < 0.5 },
	},
	{
		Name: "flaky_history", Into: evidence.Automation, Delta: 0.10,
		Applies: func(f evidence.Facts) bool { return f.FlakyHistory },
	},
}

// Adjust applies every triggered factor to base and returns the renormalised
// triple with the factors that fired. It panics if the result breaks the
// sum-to-one invariant, which can only happen through a bad factor table.
func Adjust(base evidence.ScoreTriple, facts evidence.Facts) (evidence.ScoreTriple, []evidence.AppliedFactor) {
	out := base
	var applied []evidence.AppliedFactor
	for _, f := range Factors {
		if !f.Applies(facts) {
			continue
		}
		out[f.Into] += f.Delta
		applied = append(applied, evidence.AppliedFactor{Name: f.Name, Into: f.Into, Delta: f.Delta})
	}
	for i := range out {
		out[i] = clamp01(out[i])
	}
	out = out.Normalize()
	mustNormalized("Adjust", out)
	return out, applied
}

func mustNormalized(op string, s evidence.ScoreTriple) {
	if !s.IsNormalized() {
		panic(fmt.Sprintf("scoring: %s produced %s (sum %.12f)", op, s, s.Sum()))
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
