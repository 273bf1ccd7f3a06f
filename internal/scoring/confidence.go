package scoring

import (
	"math"

	"triage/internal/evidence"
)

// Weight names one confidence sub-score and its share of the total.
type Weight struct {
	Name  string
	Value float64
}

// Weights is the constant weighting of the five sub-scores. The values sum to 1.0.
var Weights = [5]Weight{
	{"separation", 0.30},
	{"completeness", 0.25},
	{"agreement", 0.20},
	{"certainty", 0.15},
	{"history", 0.10},
}

// Warning thresholds on the sub-scores.
const (
	warnSeparation   = 0.30
	warnCompleteness = 0.40
	warnAgreement    = 0.50
	warnCertainty    = 0.40
	warnFinal        = 0.50
)

// Signals are the non-score inputs to Confidence, each already in [0,1].
type Signals struct {
	Completeness float64
	Agreement    float64
	Certainty    float64
	History      float64
}

// Confidence combines the separation of scores with the four signals.
func Confidence(scores evidence.ScoreTriple, s Signals) evidence.ConfidenceResult {
	r := evidence.ConfidenceResult{
		Separation:   clamp01(scores.Separation()),
		Completeness: clamp01(s.Completeness),
		Agreement:    clamp01(s.Agreement),
		Certainty:    clamp01(s.Certainty),
		History:      clamp01(s.History),
	}
	parts := [5]float64{r.Separation, r.Completeness, r.Agreement, r.Certainty, r.History}
	var v float64
	for i, w := range Weights {
		v += w.Value * parts[i]
	}
	r.Value = clamp01(round(v))
	r.Level = evidence.LevelFor(r.Value)
	r.Warnings = warnings(r)
	return r
}

func warnings(r evidence.ConfidenceResult) []string {
	var out []string
	if r.Separation < warnSeparation {
		out = append(out, "scores are close; classification is not clear-cut")
	}
	if r.Completeness < warnCompleteness {
		out = append(out, "limited evidence available")
	}
	if r.Agreement < warnAgreement {
		out = append(out, "evidence sources disagree")
	}
	if r.Certainty < warnCertainty {
		out = append(out, "locator status could not be determined")
	}
	if r.Value < warnFinal {
		out = append(out, "low overall confidence; manual review recommended")
	}
	return out
}

// round trims float noise so equal inputs print identically.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Completeness is the fraction of expected evidence present. Locator-related
// fields are only expected when the failure involves a locator.
func Completeness(in evidence.FailureInput, sig evidence.FailureSignature) float64 {
	present := []bool{
		in.ErrorText != "",
		in.StackTrace != "",
		sig.HasLocation(),
		in.Environment != nil,
		in.Console != nil,
	}
	if sig.Kind == evidence.KindLocatorNotFound || sig.Locator != nil {
		repo := in.Repository
		present = append(present,
			sig.Locator != nil,
			repo != nil && repo.LocatorFound.Known(),
			repo != nil && (repo.DaysSinceChange != nil || repo.RecentlyChanged),
		)
	}
	n := 0
	for _, ok := range present {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(present))
}

// Votes collects the cause each independent source points at. Sources with no
// opinion do not vote. timeline is a below-threshold verdict, or nil.
func Votes(f evidence.Facts, timeline *evidence.TimelineVerdict) []evidence.Cause {
	var votes []evidence.Cause
	switch f.Kind {
	case evidence.KindServerError, evidence.KindAssertion:
		votes = append(votes, evidence.Product)
	case evidence.KindNetwork:
		votes = append(votes, evidence.Infrastructure)
	}
	if f.EnvKnown && !f.EnvUsable() {
		votes = append(votes, evidence.Infrastructure)
	}
	if f.ConsoleKnown {
		switch {
		case f.ServerErrors:
			votes = append(votes, evidence.Product)
		case f.NetworkErrors:
			votes = append(votes, evidence.Infrastructure)
		}
	}
	if f.RepoKnown {
		switch {
		case f.RecentlyChanged:
			votes = append(votes, evidence.Automation)
		case f.LocatorFound == evidence.LocatorNotFound:
			votes = append(votes, evidence.Product)
		}
	}
	if f.FlakyHistory {
		votes = append(votes, evidence.Automation)
	}
	if timeline != nil {
		if c, ok := timeline.Category.Cause(); ok {
			votes = append(votes, c)
		}
	}
	return votes
}

// Agreement is the share of votes for chosen. With fewer than two votes there
// is nothing to compare and the result is neutral.
func Agreement(chosen evidence.Cause, votes []evidence.Cause) float64 {
	if len(votes) < 2 {
		return 0.5
	}
	n := 0
	for _, v := range votes {
		if v == chosen {
			n++
		}
	}
	return float64(n) / float64(len(votes))
}

// LocatorCertainty is how sure the evidence is about the locator's status.
// recentlyChanged is nil when the change history is unknown.
func LocatorCertainty(state evidence.LocatorState, recentlyChanged *bool) float64 {
	switch state {
	case evidence.LocatorFound:
		switch {
		case recentlyChanged == nil:
			return 0.7
		case *recentlyChanged:
			return 0.9
		default:
			return 0.85
		}
	case evidence.LocatorNotFound:
		return 0.8
	}
	return 0.3
}

// HistorySignal is how much change history backs the call. supports is nil
// when no timeline comparison ran.
func HistorySignal(supports *bool, recentlyChanged bool) float64 {
	if supports == nil && !recentlyChanged {
		return 0.5
	}
	s := 0.5
	if supports != nil {
		if *supports {
			s += 0.3
		} else {
			s -= 0.2
		}
	}
	if recentlyChanged {
		s += 0.2
	}
	return clamp01(s)
}

// ChangeKnown returns the recently-changed flag, or nil when no history was gathered.
func ChangeKnown(f evidence.Facts) *bool {
	if !f.RepoKnown || (!f.RecentlyChanged && f.DaysSinceChange == nil) {
		return nil
	}
	v := f.RecentlyChanged
	return &v
}
