package validate

import "triage/internal/evidence"

// Override is a hard rule that replaces the category when it matches.
type Override struct {
	Name   string
	To     evidence.Category
	Delta  float64
	Reason string
	Match  func(c evidence.Category, f evidence.Facts) bool
}

// Flag is a soft rule that annotates the call for review.
type Flag struct {
	Name    string
	Suggest evidence.Category
	Delta   float64
	Reason  string
	Match   func(c evidence.ClassificationResult, f evidence.Facts) bool
}

// Overrides are tried in order and at most one fires. Every rule that could
// match a later rule's output sits earlier in the list, so a second pass over
// a corrected call never fires again.
var Overrides = []Override{
	{
		Name:   "flaky_retry_pass",
		To:     evidence.CategoryFlaky,
		Reason: "test has a flaky history and passed on retry",
		Match: func(c evidence.Category, f evidence.Facts) bool {
			return c.IsPrimary() && f.FlakyHistory && f.PassedOnRetry
		},
	},
	{
		Name:   "expected_change",
		To:     evidence.CategoryExpectedChange,
		Reason: "failure lines up with an intentional product change",
		Match: func(c evidence.Category, f evidence.Facts) bool {
			return (c == evidence.CategoryAutomation || c == evidence.CategoryProduct) && f.ExpectedChange
		},
	},
	{
		Name:   "server_error_override",
		To:     evidence.CategoryProduct,
		Delta:  0.10,
		Reason: "automation blamed but the console shows server errors",
		Match: func(c evidence.Category, f evidence.Facts) bool {
			return c == evidence.CategoryAutomation && f.ServerErrors
		},
	},
	{
		Name:   "environment_override",
		To:     evidence.CategoryInfrastructure,
		Delta:  0.15,
		Reason: "automation blamed but the environment is unhealthy or unreachable",
		Match: func(c evidence.Category, f evidence.Facts) bool {
			return c == evidence.CategoryAutomation && f.EnvKnown && !f.EnvUsable()
		},
	},
}

// Flags are all evaluated against the corrected call.
var Flags = []Flag{
	{
		Name:    "product_with_recent_locator_change",
		Suggest: evidence.CategoryAutomation,
		Delta:   -0.10,
		Reason:  "product blamed but the locator changed recently; may be a stale locator",
		Match: func(c evidence.ClassificationResult, f evidence.Facts) bool {
			return c.Category == evidence.CategoryProduct && f.RecentlyChanged
		},
	},
	{
		Name:   "infrastructure_in_healthy_env",
		Delta:  -0.15,
		Reason: "infrastructure blamed but the environment checks passed",
		Match: func(c evidence.ClassificationResult, f evidence.Facts) bool {
			return c.Category == evidence.CategoryInfrastructure && f.EnvKnown && f.EnvUsable()
		},
	},
	{
		Name:    "automation_with_network_errors",
		Suggest: evidence.CategoryInfrastructure,
		Delta:   -0.10,
		Reason:  "automation blamed but the console shows network errors",
		Match: func(c evidence.ClassificationResult, f evidence.Facts) bool {
			return c.Category == evidence.CategoryAutomation && f.NetworkErrors
		},
	},
	{
		Name:   "locator_missing_verify_timeline",
		Delta:  -0.05,
		Reason: "locator is not in the product sources; verify with a timeline comparison",
		Match: func(c evidence.ClassificationResult, f evidence.Facts) bool {
			return f.Kind == evidence.KindLocatorNotFound && f.LocatorFound == evidence.LocatorNotFound &&
				c.Category == evidence.CategoryAutomation && c.Path != evidence.PathTimelineOverride
		},
	},
	{
		Name:    "timeout_in_healthy_env",
		Suggest: evidence.CategoryAutomation,
		Delta:   -0.10,
		Reason:  "timeout in a healthy environment is rarely infrastructure",
		Match: func(c evidence.ClassificationResult, f evidence.Facts) bool {
			return f.Kind == evidence.KindTimeout && f.EnvKnown && f.EnvUsable() &&
				c.Category == evidence.CategoryInfrastructure
		},
	},
	{
		Name:   "timeline_disagrees",
		Delta:  -0.05,
		Reason: "change history points at a different cause",
		Match: func(c evidence.ClassificationResult, f evidence.Facts) bool {
			if f.Timeline == nil || c.Path == evidence.PathTimelineOverride || !c.Category.IsPrimary() {
				return false
			}
			return f.Timeline.Category != c.Category
		},
	},
}
