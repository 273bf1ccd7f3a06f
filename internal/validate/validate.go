// Package validate cross-checks a classification against the raw evidence.
package validate

import "triage/internal/evidence"

// Result is the validated classification and every rule that fired.
type Result struct {
	Classification evidence.ClassificationResult
	Corrections    []evidence.Correction
	Flags          []evidence.Correction
}

// Validate applies the first matching override, then records every matching
// flag. Calls made by the timeline path are never overridden. Running Validate
// again on its own output with the same facts leaves the category unchanged.
func Validate(c evidence.ClassificationResult, f evidence.Facts) Result {
	r := Result{Classification: c, Corrections: []evidence.Correction{}, Flags: []evidence.Correction{}}
	if c.Path != evidence.PathTimelineOverride {
		for _, o := range Overrides {
			if !o.Match(c.Category, f) {
				continue
			}
			r.Corrections = append(r.Corrections, evidence.Correction{
				Rule:            o.Name,
				Kind:            evidence.KindOverride,
				From:            c.Category,
				To:              o.To,
				Reason:          o.Reason,
				ConfidenceDelta: o.Delta,
			})
			r.Classification.Category = o.To
			r.Classification.Path = evidence.PathValidatorCorrected
			break
		}
	}
	for _, fl := range Flags {
		if !fl.Match(r.Classification, f) {
			continue
		}
		to := fl.Suggest
		if to == "" {
			to = r.Classification.Category
		}
		r.Flags = append(r.Flags, evidence.Correction{
			Rule:            fl.Name,
			Kind:            evidence.KindFlag,
			From:            r.Classification.Category,
			To:              to,
			Reason:          fl.Reason,
			ConfidenceDelta: fl.Delta,
		})
	}
	return r
}

// Delta sums the confidence adjustments of every fired rule.
func (r Result) Delta() float64 {
	var d float64
	for _, c := range r.Corrections {
		d += c.ConfidenceDelta
	}
	for _, c := range r.Flags {
		d += c.ConfidenceDelta
	}
	return d
}
