package signature

import (
	"regexp"
	"strconv"
	"strings"
)

// Frame is one parsed stack frame.
type Frame struct {
	File     string
	Line     int
	Function string
}

type framePattern struct {
	re *regexp.Regexp
	// outermostFirst marks formats that print the innermost call last.
	outermostFirst bool
}

// Formats are tried in order per line; the first match wins.
var framePatterns = []framePattern{
	{re: regexp.MustCompile(`webpack://[^/]*/\.?/?(?P<file>[^:\s)]+):(?P<line>\d+)(?::\d+)?`)},
	{re: regexp.MustCompile(`at\s+async\s+(?P<func>[^\s(]+)\s+\((?P<file>[^()]+?):(?P<line>\d+)(?::\d+)?\)`)},
	{re: regexp.MustCompile(`at\s+(?P<func>Object\.<anonymous>|<anonymous>)\s+\((?P<file>[^()]+?):(?P<line>\d+)(?::\d+)?\)`)},
	{re: regexp.MustCompile(`at\s+(?P<func>[^\s(]+)\s+\((?P<file>[^()]+?):(?P<line>\d+)(?::\d+)?\)`)},
	{re: regexp.MustCompile(`at\s+(?P<file>(?:/|[A-Za-z]:\\|\.{1,2}/)[^:\s]+):(?P<line>\d+)(?::\d+)?`)},
	{re: regexp.MustCompile(`From Your Spec Code:.*?(?P<file>[^\s:]+):(?P<line>\d+)`)},
	{re: regexp.MustCompile(`\((?P<file>cypress/[^:]+):(?P<line>\d+)(?::\d+)?\)`)},
	{re: regexp.MustCompile(`File "(?P<file>[^"]+)", line (?P<line>\d+)(?:, in (?P<func>\S+))?`), outermostFirst: true},
	{re: regexp.MustCompile(`^\s*(?P<file>\S+\.go):(?P<line>\d+)`)},
}

var (
	webpackPrefix = regexp.MustCompile(`^webpack://[^/]*/\.?/?`)
	leadingDot    = regexp.MustCompile(`^\./`)
	queryString   = regexp.MustCompile(`\?.*$`)
)

// ParseFrames extracts frames from a stack trace, innermost first.
// Duplicate file:line pairs are dropped.
func ParseFrames(stack string) []Frame {
	var frames []Frame
	reversed := false
	seen := map[string]bool{}
	for _, line := range strings.Split(stack, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		f, outer, ok := parseLine(line)
		if !ok {
			continue
		}
		key := f.File + ":" + strconv.Itoa(f.Line)
		if seen[key] {
			continue
		}
		seen[key] = true
		reversed = reversed || outer
		frames = append(frames, f)
	}
	if reversed {
		for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
			frames[i], frames[j] = frames[j], frames[i]
		}
	}
	return frames
}

func parseLine(line string) (Frame, bool, bool) {
	for _, p := range framePatterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		var f Frame
		for i, name := range p.re.SubexpNames() {
			switch name {
			case "file":
				f.File = normalizePath(m[i])
			case "line":
				n, err := strconv.Atoi(m[i])
				if err != nil {
					continue
				}
				f.Line = n
			case "func":
				f.Function = cleanFunction(m[i])
			}
		}
		if f.File == "" || f.Line <= 0 {
			continue
		}
		return f, p.outermostFirst, true
	}
	return Frame{}, false, false
}

func normalizePath(p string) string {
	p = webpackPrefix.ReplaceAllString(p, "")
	p = leadingDot.ReplaceAllString(p, "")
	p = queryString.ReplaceAllString(p, "")
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.TrimSpace(p)
}

func cleanFunction(name string) string {
	name = strings.TrimPrefix(name, "async ")
	if strings.Contains(name, "<anonymous>") {
		return "<anonymous>"
	}
	return strings.TrimSpace(name)
}

var (
	frameworkMarkers = []string{
		"node_modules/", "cypress_runner", "__cypress", "/runner/", "bluebird",
		"node:internal", "internal/process", "site-packages/", "dist-packages/",
		"<frozen ", "/usr/local/go/src/", "/usr/lib/go", "src/runtime/", "src/testing/",
	}
	testMarkers = []string{
		"/tests/", "/test/", "/spec/", "/specs/", "/e2e/", "cypress/",
		".spec.", ".test.", ".cy.", "_spec.", "_test.", "test_",
	}
	supportMarkers = []string{
		"/support/", "/commands", "/helpers/", "/utils/", "/views/", "/pages/", "/fixtures/",
	}
)

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// IsFramework reports whether the frame belongs to a test runner or library.
func (f Frame) IsFramework() bool {
	return containsAny(strings.ToLower(f.File), frameworkMarkers)
}

// IsTest reports whether the frame is in test or test-support code.
func (f Frame) IsTest() bool {
	lower := "/" + strings.ToLower(f.File)
	return containsAny(lower, testMarkers) || containsAny(lower, supportMarkers)
}

// OffendingFrame picks the innermost frame in test code, falling back to the
// innermost non-framework frame. It reports false when only framework frames
// are present.
func OffendingFrame(frames []Frame) (Frame, bool) {
	for _, f := range frames {
		if !f.IsFramework() && f.IsTest() {
			return f, true
		}
	}
	for _, f := range frames {
		if !f.IsFramework() {
			return f, true
		}
	}
	return Frame{}, false
}
