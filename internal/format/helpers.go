package format

import (
	"fmt"
	"time"
)

// FmtPercent formats a [0,1] value as a whole percentage.
func FmtPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// FmtConfidence formats a confidence with two decimals.
func FmtConfidence(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FmtDelta formats a signed confidence delta: "+0.10", "-0.05".
func FmtDelta(v float64) string {
	return fmt.Sprintf("%+.2f", v)
}

// FmtTime formats a timestamp for tables in UTC, minute precision.
func FmtTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// Truncate shortens s to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
