// Package signature turns raw failure text into a structured FailureSignature.
package signature

import (
	"regexp"
	"strings"

	"triage/internal/evidence"
)

// Parse builds a FailureSignature from error text and an optional stack trace.
// The kind comes from the error text, or from the stack trace's error line
// when the error text is empty. Parse never panics; unmatched input
// yields KindUnknown with no location.
func Parse(errorText, stackTrace string) evidence.FailureSignature {
	text := strings.TrimSpace(errorText)
	if text == "" {
		text = errorLine(stackTrace)
	}
	sig := evidence.FailureSignature{Kind: classify(strings.ToLower(text))}
	if sig.Kind == evidence.KindUnknown {
		return sig
	}
	if f, ok := OffendingFrame(ParseFrames(stackTrace)); ok {
		sig.File, sig.Line = f.File, f.Line
	}
	loc := ExtractLocator(text)
	if loc == "" {
		loc = ExtractLocator(stackTrace)
	}
	if loc != "" {
		sig.Locator = &loc
	}
	return sig
}

var errorLinePattern = regexp.MustCompile(`^[\w.]*(Error|Exception)\b`)

// errorLine returns the first "XxxError: ..." line of a trace, or its first
// non-blank line.
func errorLine(s string) string {
	first := ""
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if errorLinePattern.MatchString(line) {
			return line
		}
		if first == "" {
			first = line
		}
	}
	return first
}
