package signature

import (
	"regexp"
	"strings"
)

// Locator patterns, most specific first. Group 1 is the locator.
var locatorPatterns = []*regexp.Regexp{
	regexp.MustCompile("Expected to find element:\\s*[`'\"]([^`'\"]+)[`'\"]"),
	regexp.MustCompile("Expected to find element:\\s*([^\\s,]+)"),
	regexp.MustCompile("\\b(?:cy\\.)?(?:get|find|contains|select|locator|querySelector(?:All)?|findElement|findByTestId|getByTestId|locate)\\(\\s*[`'\"]([^`'\"]+)[`'\"]"),
	regexp.MustCompile("(?i)\\b(?:find|finding|select|selecting|locate|locating|query|querying)\\b[^`'\"\\[\\n]{0,40}[`'\"]([^`'\"]+)[`'\"]"),
	regexp.MustCompile("(?i)\\b(?:find|select|locate)\\b[^\\[\\n]{0,40}(\\[[^\\]]+\\])"),
	regexp.MustCompile("Element[^:\\n]*:\\s*[`'\"]?([#.][^`'\">\\s]+)"),
	regexp.MustCompile("(?i)selector[^:\\n]*:\\s*[`'\"]?([^`'\"\\s]+)"),
	regexp.MustCompile("[`'\"]([#.][a-zA-Z][a-zA-Z0-9_-]*)[`'\"]"),
	regexp.MustCompile("[`'\"](\\[data-[^\\]]+\\])[`'\"]"),
}

// ExtractLocator returns the locator token a failure message refers to, or "".
func ExtractLocator(text string) string {
	for _, re := range locatorPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if loc := strings.TrimSpace(m[1]); looksLikeLocator(loc) {
			return loc
		}
	}
	return ""
}

func looksLikeLocator(s string) bool {
	if s == "" || len(s) > 200 || strings.ContainsAny(s, "\n") {
		return false
	}
	switch s[0] {
	case '#', '.', '[', '/':
		return true
	}
	if strings.Contains(s, "data-") || strings.Contains(s, "=") {
		return true
	}
	// bare ids such as "submit-button" from getByTestId("submit-button")
	return !strings.ContainsAny(s, " \t")
}

var (
	attrValue  = regexp.MustCompile(`\[[\w-]+[~|^$*]?=['"]?([^'"\]]+)['"]?\]`)
	dataAttr   = regexp.MustCompile(`data-[\w-]+=['"]?([^'"\]\s]+)['"]?`)
	idSelector = regexp.MustCompile(`^#([\w-]+)`)
)

// ElementID reduces a locator to the bare identifier product code would carry:
// "#save" -> "save", "[data-testid='save']" -> "save", "data-cy=save" -> "save".
func ElementID(locator string) string {
	locator = strings.TrimSpace(locator)
	if m := idSelector.FindStringSubmatch(locator); m != nil {
		return m[1]
	}
	if m := attrValue.FindStringSubmatch(locator); m != nil {
		return m[1]
	}
	if m := dataAttr.FindStringSubmatch(locator); m != nil {
		return m[1]
	}
	return strings.Trim(locator, "#.[]")
}
