// Package timeline decides who changed last when a test cannot find a locator:
// the test code or the product code.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"triage/internal/evidence"
)

// Verdict confidences.
const (
	NeverExistedConfidence           = 0.92
	RemovedStillReferencedConfidence = 0.90
	ProductChangedBaseConfidence     = 0.70
	ProductChangedMaxConfidence      = 0.95
	AutomationChangedConfidence      = 0.75

	// gapSaturationDays is the gap at which product_changed confidence stops growing.
	gapSaturationDays = 30
)

// PreemptThreshold is the verdict confidence at or above which the timeline
// replaces the decision table's call.
const PreemptThreshold = 0.80

// ErrUndated is returned when the locator still resolves in the product but
// the test side has no change date, so neither side can be called the later
// change.
var ErrUndated = errors.New("no test-side change date to order against the product history")

// Resolve is the pure state machine over the test-side last change and the
// product-side history. ok is false when the histories cannot be ordered.
func Resolve(testDate *time.Time, product History) (v evidence.TimelineVerdict, ok bool) {
	v = evidence.TimelineVerdict{AutomationDate: testDate, ProductDate: product.LastModified}
	switch {
	case !product.ExistsAtAll:
		v.ProductDate = nil
		v.ReasonCode = evidence.ReasonNeverExisted
		v.Category = evidence.CategoryAutomation
		v.Confidence = NeverExistedConfidence
		return v, true

	case !product.PresentAtHead && removedAfter(testDate, product.LastModified):
		v.ReasonCode = evidence.ReasonRemovedStillReferenced
		v.Category = evidence.CategoryAutomation
		v.Confidence = RemovedStillReferencedConfidence
		v.GapDays = gapDays(testDate, product.LastModified)
		return v, true

	case testDate == nil:
		return evidence.TimelineVerdict{}, false

	case product.LastModified != nil && product.LastModified.After(*testDate):
		v.ReasonCode = evidence.ReasonProductChangedAfterAutomation
		v.Category = evidence.CategoryProduct
		v.GapDays = gapDays(testDate, product.LastModified)
		scale := math.Min(float64(v.GapDays), gapSaturationDays) / gapSaturationDays
		v.Confidence = math.Min(ProductChangedMaxConfidence, ProductChangedBaseConfidence+0.25*scale)
		return v, true
	}

	v.ReasonCode = evidence.ReasonAutomationChangedAfterProduct
	v.Category = evidence.CategoryAutomation
	v.Confidence = AutomationChangedConfidence
	v.GapDays = gapDays(product.LastModified, testDate)
	return v, true
}

// removedAfter reports whether a product-side removal at removed can have
// happened after the test last referenced the locator. Missing dates cannot
// rule it out.
func removedAfter(testDate, removed *time.Time) bool {
	return testDate == nil || removed == nil || removed.After(*testDate)
}

func gapDays(from, to *time.Time) int {
	if from == nil || to == nil {
		return 0
	}
	d := int(to.Sub(*from).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

// Preempts reports whether v is strong enough to replace the table's call.
func Preempts(v evidence.TimelineVerdict) bool {
	return v.Confidence >= PreemptThreshold
}

// Comparator queries the two repositories and resolves a verdict.
type Comparator struct {
	Test    HistoryLookup
	Product HistoryLookup
	// ElementID maps a test-side locator to the identifier product code carries.
	ElementID func(string) string
}

// Compare looks the locator up on both sides. Any lookup failure means there
// is no verdict; the error says why and callers fall back to the table.
// ref, when set, names the revision of the test code that failed and is
// handed to the test-side lookup via WithRef.
func (c *Comparator) Compare(ctx context.Context, locator, ref string) (evidence.TimelineVerdict, error) {
	if c == nil || c.Test == nil || c.Product == nil {
		return evidence.TimelineVerdict{}, fmt.Errorf("%w: no repositories configured", ErrUnavailable)
	}
	testSide, err := c.Test.LastModified(WithRef(ctx, ref), locator)
	if err != nil {
		return evidence.TimelineVerdict{}, fmt.Errorf("test history for %q: %w", locator, err)
	}
	id := locator
	if c.ElementID != nil {
		id = c.ElementID(locator)
	}
	productSide, err := c.Product.LastModified(ctx, id)
	if err != nil {
		return evidence.TimelineVerdict{}, fmt.Errorf("product history for %q: %w", id, err)
	}
	v, ok := Resolve(testSide.LastModified, productSide)
	if !ok {
		return evidence.TimelineVerdict{}, fmt.Errorf("%q: %w", locator, ErrUndated)
	}
	return v, nil
}

// NewComparator wires both lookups through a per-call timeout and a shared
// populate-once cache. elementID may be nil.
func NewComparator(test, product HistoryLookup, timeout time.Duration, elementID func(string) string) *Comparator {
	return &Comparator{
		Test:      Cached(Bounded(test, timeout)),
		Product:   Cached(Bounded(product, timeout)),
		ElementID: elementID,
	}
}
