package signature

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"triage/internal/evidence"
)

func TestParse_KindFamilies(t *testing.T) {
	cases := []struct {
		name string
		text string
		want evidence.SignatureKind
	}{
		{"plain timeout", "TimeoutError: page.goto: Timeout 30000ms exceeded", evidence.KindTimeout},
		{"timeout wins over 500", "Timed out after 500ms waiting for response", evidence.KindTimeout},
		{"timeout wins over locator", "Timed out retrying after 4000ms: Expected to find element: `#save`, but never found it.", evidence.KindTimeout},
		{"locator", "Expected to find element: `#google`, but never found it.", evidence.KindLocatorNotFound},
		{"selenium locator", "NoSuchElementException: Unable to locate element: {\"method\":\"css selector\"}", evidence.KindLocatorNotFound},
		{"network", "Error: connect ECONNREFUSED 10.0.0.1:443", evidence.KindNetwork},
		{"assertion", "AssertionError: expected 'Ready' to equal 'Running'", evidence.KindAssertion},
		{"server error", "Request failed with status code 500", evidence.KindServerError},
		{"bad gateway", "upstream returned Bad Gateway", evidence.KindServerError},
		{"auth", "Request failed with status code 403", evidence.KindAuthError},
		{"not found", "GET /api/v1/clusters/foo returned 404", evidence.KindNotFound},
		{"no such", "open /tmp/kubeconfig: no such file or directory", evidence.KindNotFound},
		{"unmatched", "something odd happened", evidence.KindUnknown},
		{"empty", "", evidence.KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.text, "")
			if got.Kind != tc.want {
				t.Errorf("Parse(%q).Kind: got %s want %s", tc.text, got.Kind, tc.want)
			}
		})
	}
}

func TestParse_FamilyOrderIsFixed(t *testing.T) {
	want := []evidence.SignatureKind{
		evidence.KindTimeout, evidence.KindLocatorNotFound, evidence.KindNetwork,
		evidence.KindAssertion, evidence.KindServerError, evidence.KindAuthError,
		evidence.KindNotFound, evidence.KindUnknown,
	}
	if diff := cmp.Diff(want, Families()); diff != "" {
		t.Errorf("family order (-want +got):\n%s", diff)
	}
}

func TestParse_FallsBackToStackErrorLine(t *testing.T) {
	stack := "\n  Error: connect ECONNREFUSED 127.0.0.1:8443\n    at TCPConnectWrap.afterConnect (node:net:1555:16)"
	got := Parse("", stack)
	if got.Kind != evidence.KindNetwork {
		t.Errorf("Kind: got %s want network", got.Kind)
	}
}

func TestParse_CypressFrameAndLocator(t *testing.T) {
	errText := "Expected to find element: `#managedClusterSet-radio`, but never found it."
	stack := `CypressError: Expected to find element
    at cypressErr (https://console.example.com/__cypress/runner/cypress_runner.js:17251:10)
    at Context.eval (webpack://app/./cypress/views/clusterset.js:88:12)
    at Context.eval (webpack://app/./cypress/tests/clusters/clusterset.spec.js:41:7)`
	got := Parse(errText, stack)
	want := evidence.FailureSignature{
		Kind:    evidence.KindLocatorNotFound,
		File:    "cypress/views/clusterset.js",
		Line:    88,
		Locator: strPtr("#managedClusterSet-radio"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse (-want +got):\n%s", diff)
	}
}

func TestParse_NodeFrames(t *testing.T) {
	stack := `AssertionError: expected 2 to equal 3
    at Object.<anonymous> (/repo/node_modules/chai/lib/assert.js:10:3)
    at async runCase (/repo/tests/api/clusters.test.ts:57:5)
    at processTicksAndRejections (node:internal/process/task_queues:95:5)`
	got := Parse("AssertionError: expected 2 to equal 3", stack)
	if got.File != "/repo/tests/api/clusters.test.ts" || got.Line != 57 {
		t.Errorf("frame: got %s:%d want /repo/tests/api/clusters.test.ts:57", got.File, got.Line)
	}
	if got.Locator != nil {
		t.Errorf("locator: got %q want nil", *got.Locator)
	}
}

func TestParse_PythonTracebackIsInnermostLast(t *testing.T) {
	stack := `Traceback (most recent call last):
  File "/usr/lib/python3.11/site-packages/pytest/runner.py", line 12, in call
  File "/src/tests/test_login.py", line 30, in test_login
  File "/src/tests/helpers/session.py", line 77, in open_session
TimeoutError: timed out`
	got := Parse("", stack)
	if got.Kind != evidence.KindTimeout {
		t.Fatalf("Kind: got %s want timeout", got.Kind)
	}
	if got.File != "/src/tests/helpers/session.py" || got.Line != 77 {
		t.Errorf("frame: got %s:%d want /src/tests/helpers/session.py:77", got.File, got.Line)
	}
}

func TestParse_GoTestFrame(t *testing.T) {
	stack := "goroutine 7 [running]:\ntesting.tRunner(0xc000)\n\t/usr/local/go/src/testing/testing.go:1690 +0xf4\n\t/work/e2e/cluster_test.go:112 +0x55"
	got := Parse("context deadline exceeded", stack)
	if got.File != "/work/e2e/cluster_test.go" || got.Line != 112 {
		t.Errorf("frame: got %s:%d want /work/e2e/cluster_test.go:112", got.File, got.Line)
	}
}

func TestParse_OnlyFrameworkFramesLeavesLocationEmpty(t *testing.T) {
	stack := "    at next (/repo/node_modules/express/lib/router/index.js:280:10)"
	got := Parse("Request failed with status code 502", stack)
	if got.HasLocation() {
		t.Errorf("expected no location, got %s:%d", got.File, got.Line)
	}
}

func TestParse_NeverPanicsOnGarbage(t *testing.T) {
	inputs := []string{"\x00\xff\xfe", "at (:0:)", "File \"\", line", "(((((", "webpack://", "#"}
	for _, in := range inputs {
		sig := Parse(in, in)
		if sig.Kind != evidence.KindUnknown && sig.Kind != evidence.KindNotFound {
			t.Logf("Parse(%q) = %s", in, sig.Kind)
		}
	}
}

func TestExtractLocator(t *testing.T) {
	cases := map[string]string{
		"Timed out retrying: cy.get('#cluster-name')":            "#cluster-name",
		"Expected to find element: [data-testid='create-btn']":   "[data-testid='create-btn']",
		`locator.click: could not find "button.submit" on page`:  "button.submit",
		"unable to select [data-cy=policy-row] in table":         "[data-cy=policy-row]",
		`page.getByTestId("save-policy") resolved to 0 elements`: "save-policy",
		"assertion failed without any selector":                  "",
	}
	for in, want := range cases {
		if got := ExtractLocator(in); got != want {
			t.Errorf("ExtractLocator(%q): got %q want %q", in, got, want)
		}
	}
}

func TestElementID(t *testing.T) {
	cases := map[string]string{
		"#google":                "google",
		"#my-element .child":     "my-element",
		"[data-testid='google']": "google",
		`[id="save"]`:            "save",
		"data-cy=policy-row":     "policy-row",
		".plain-class":           "plain-class",
	}
	for in, want := range cases {
		if got := ElementID(in); got != want {
			t.Errorf("ElementID(%q): got %q want %q", in, got, want)
		}
	}
}

func strPtr(s string) *string { return &s }
