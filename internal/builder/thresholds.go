package builder

import (
	"fmt"
	"runtime"
	"time"

	"triage/internal/timeline"
)

// Thresholds holds the tunable cut-offs used when resolving and aggregating verdicts.
type Thresholds struct {
	TimelinePreempt      float64       // timeline confidence that replaces the table call (default 0.80)
	RecentChangeDays     int           // a locator change within this many days is recent (default 30)
	InsufficientEvidence float64       // final confidence below this becomes insufficient_evidence (default 0.30)
	MixedGap             float64       // top two scores closer than this are a near-tie (default 0.10)
	MixedFloor           float64       // both near-tie scores must reach this to call mixed (default 0.35)
	MinorityShare        float64       // run share a category needs to count towards a mixed run (default 0.25)
	Workers              int           // parallel record builders (default GOMAXPROCS)
	LookupTimeout        time.Duration // per history lookup (default 10s)
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TimelinePreempt:      timeline.PreemptThreshold,
		RecentChangeDays:     30,
		InsufficientEvidence: 0.30,
		MixedGap:             0.10,
		MixedFloor:           0.35,
		MinorityShare:        0.25,
		Workers:              runtime.GOMAXPROCS(0),
		LookupTimeout:        10 * time.Second,
	}
}

// Validate rejects thresholds outside their meaningful ranges.
func (th Thresholds) Validate() error {
	for name, v := range map[string]float64{
		"timeline_preempt":      th.TimelinePreempt,
		"insufficient_evidence": th.InsufficientEvidence,
		"mixed_gap":             th.MixedGap,
		"mixed_floor":           th.MixedFloor,
		"minority_share":        th.MinorityShare,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("threshold %s=%v outside [0,1]", name, v)
		}
	}
	if th.RecentChangeDays < 0 {
		return fmt.Errorf("recent_change_days=%d is negative", th.RecentChangeDays)
	}
	if th.Workers < 1 {
		return fmt.Errorf("workers=%d must be at least 1", th.Workers)
	}
	return nil
}
