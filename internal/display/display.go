// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output, markdown reports and logs.
// Keep raw codes for JSON fields, map keys, and equality comparisons.
package display

import (
	"strings"

	"triage/internal/evidence"
)

// --- Categories ---

var categories = map[evidence.Category]string{
	evidence.CategoryProduct:              "Product Bug",
	evidence.CategoryAutomation:           "Automation Bug",
	evidence.CategoryInfrastructure:       "Infrastructure Issue",
	evidence.CategoryMixed:                "Mixed Causes",
	evidence.CategoryFlaky:                "Flaky Test",
	evidence.CategoryExpectedChange:       "Expected Change",
	evidence.CategoryInsufficientEvidence: "Insufficient Evidence",
}

// Category returns the human-readable name for a category code.
// Unknown codes are returned as-is.
func Category(c evidence.Category) string {
	if name, ok := categories[c]; ok {
		return name
	}
	return string(c)
}

// CategoryWithCode returns "Product Bug (product)" format.
func CategoryWithCode(c evidence.Category) string {
	if name, ok := categories[c]; ok {
		return name + " (" + string(c) + ")"
	}
	return string(c)
}

// --- Signature kinds ---

var kinds = map[evidence.SignatureKind]string{
	evidence.KindUnknown:         "Unrecognised",
	evidence.KindTimeout:         "Timeout",
	evidence.KindLocatorNotFound: "Element Not Found",
	evidence.KindNetwork:         "Network Error",
	evidence.KindAssertion:       "Assertion Failure",
	evidence.KindServerError:     "Server Error",
	evidence.KindAuthError:       "Auth Error",
	evidence.KindNotFound:        "Resource Not Found",
}

// Kind returns the human-readable name for a signature kind.
func Kind(k evidence.SignatureKind) string {
	if name, ok := kinds[k]; ok {
		return name
	}
	return k.String()
}

// --- Classification paths ---

var paths = map[evidence.Path]string{
	evidence.PathDecisionTable:      "Decision Table",
	evidence.PathTimelineOverride:   "Change History",
	evidence.PathValidatorCorrected: "Evidence Cross-Check",
}

// Path returns the human-readable name for the component that made the call.
func Path(p evidence.Path) string {
	if name, ok := paths[p]; ok {
		return name
	}
	return string(p)
}

// --- Timeline ---

var reasons = map[evidence.ReasonCode]string{
	evidence.ReasonNeverExisted:                  "element never existed in product",
	evidence.ReasonRemovedStillReferenced:        "element removed from product, test still uses it",
	evidence.ReasonProductChangedAfterAutomation: "product changed after the test was last updated",
	evidence.ReasonAutomationChangedAfterProduct: "test changed after the product",
}

// Reason returns a short sentence for a timeline reason code.
func Reason(r evidence.ReasonCode) string {
	if s, ok := reasons[r]; ok {
		return s
	}
	return string(r)
}

var statuses = map[evidence.TimelineStatus]string{
	evidence.TimelineNotApplicable: "n/a",
	evidence.TimelineNotConfigured: "not configured",
	evidence.TimelineUnavailable:   "unavailable",
	evidence.TimelineCorroborating: "corroborating",
	evidence.TimelinePreempted:     "decisive",
}

// TimelineStatus returns a short label for a timeline status.
func TimelineStatus(s evidence.TimelineStatus) string {
	if name, ok := statuses[s]; ok {
		return name
	}
	return string(s)
}

// --- Rules ---

// Rule turns a snake_case rule or factor name into words:
// "server_error_override" -> "server error override".
func Rule(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// RuleList joins rule names for a table cell; empty input gives "-".
func RuleList(cs []evidence.Correction) string {
	if len(cs) == 0 {
		return "-"
	}
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = Rule(c.Rule)
	}
	return strings.Join(names, ", ")
}
