package builder

import (
	"fmt"
	"math"

	"triage/internal/evidence"
)

// Summarize aggregates records into a RunSummary. An empty run is
// insufficient_evidence at zero confidence.
func Summarize(records []evidence.EvidenceRecord, th Thresholds) evidence.RunSummary {
	sum := evidence.RunSummary{
		Total:  len(records),
		Counts: make(map[evidence.Category]int),
	}
	if len(records) == 0 {
		sum.OverallCategory = evidence.CategoryInsufficientEvidence
		return sum
	}

	var weighted, weights, plain float64
	timeouts := 0
	envUnhealthy := false
	for _, r := range records {
		sum.Counts[r.FinalCategory]++
		sum.Overrides += len(r.Corrections)
		sum.Flags += len(r.Flags)
		if r.Classification.Path == evidence.PathTimelineOverride {
			sum.TimelineOverrides++
		}
		if r.Signature.Kind == evidence.KindTimeout {
			timeouts++
		}
		if r.Environment != nil && !r.Environment.Healthy {
			envUnhealthy = true
		}
		w := r.Confidence.Completeness
		weighted += w * r.FinalConfidence
		weights += w
		plain += r.FinalConfidence
	}

	if weights > 0 {
		sum.OverallConfidence = weighted / weights
	} else {
		sum.OverallConfidence = plain / float64(len(records))
	}
	sum.OverallConfidence = math.Round(sum.OverallConfidence*1e6) / 1e6
	sum.OverallCategory = overall(sum.Counts, len(records), th.MinorityShare)

	if note := timeoutPattern(timeouts, len(records), envUnhealthy); note != "" {
		sum.Notes = append(sum.Notes, note)
	}
	if sum.TimelineOverrides > 0 {
		sum.Notes = append(sum.Notes, fmt.Sprintf("%d verdicts decided by change history", sum.TimelineOverrides))
	}
	return sum
}

// timeoutPattern reads the run's timeouts together: many of them, or any of
// them on a sick environment, point at infrastructure, while a lone timeout
// among other failures points at the element it waited for.
func timeoutPattern(timeouts, total int, envUnhealthy bool) string {
	switch {
	case timeouts >= 2 && float64(timeouts)/float64(total) >= 0.5:
		return fmt.Sprintf("%d of %d failures are timeouts; a shared infrastructure cause is likely", timeouts, total)
	case envUnhealthy && timeouts >= 1:
		return fmt.Sprintf("environment is unhealthy and %d failure(s) timed out; infrastructure is the likely cause", timeouts)
	case timeouts == 1 && total > 1:
		return fmt.Sprintf("only 1 of %d failures timed out; likely element-specific rather than infrastructure", total)
	}
	return ""
}

// overall is mixed when two or more categories each hold more than minority
// of the run; otherwise the most frequent category, ties broken by the
// evidence.Categories order.
func overall(counts map[evidence.Category]int, total int, minority float64) evidence.Category {
	significant := 0
	for _, n := range counts {
		if float64(n)/float64(total) > minority {
			significant++
		}
	}
	if significant >= 2 {
		return evidence.CategoryMixed
	}
	best, bestN := evidence.CategoryInsufficientEvidence, 0
	for _, c := range evidence.Categories {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}
