package evidence

// Category is the final root-cause call for a failure or a run.
type Category string

const (
	CategoryProduct              Category = "product"
	CategoryAutomation           Category = "automation"
	CategoryInfrastructure       Category = "infrastructure"
	CategoryMixed                Category = "mixed"
	CategoryFlaky                Category = "flaky"
	CategoryExpectedChange       Category = "expected_change"
	CategoryInsufficientEvidence Category = "insufficient_evidence"
)

// Categories lists every category. The order is the tie-break priority used
// when aggregating a run.
var Categories = []Category{
	CategoryProduct,
	CategoryAutomation,
	CategoryInfrastructure,
	CategoryMixed,
	CategoryFlaky,
	CategoryExpectedChange,
	CategoryInsufficientEvidence,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// IsPrimary reports whether c is one of the three score-table causes.
func (c Category) IsPrimary() bool {
	_, ok := c.Cause()
	return ok
}

// Cause returns the primary cause for c, if it has one.
func (c Category) Cause() (Cause, bool) {
	switch c {
	case CategoryProduct:
		return Product, true
	case CategoryAutomation:
		return Automation, true
	case CategoryInfrastructure:
		return Infrastructure, true
	}
	return 0, false
}

// Path names the component that made the classification call.
type Path string

const (
	PathDecisionTable      Path = "decision_table"
	PathTimelineOverride   Path = "timeline_override"
	PathValidatorCorrected Path = "validator_corrected"
)

// Level buckets a confidence value for display.
type Level string

const (
	LevelHigh    Level = "HIGH"
	LevelMedium  Level = "MEDIUM"
	LevelLow     Level = "LOW"
	LevelVeryLow Level = "VERY_LOW"
)

// LevelFor maps a confidence value to its level.
func LevelFor(v float64) Level {
	switch {
	case v >= 0.75:
		return LevelHigh
	case v >= 0.50:
		return LevelMedium
	case v >= 0.30:
		return LevelLow
	default:
		return LevelVeryLow
	}
}
