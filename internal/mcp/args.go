package mcp

import (
	"triage/internal/evidence"
)

// Tool argument types mirror evidence.FailureInput with every field optional,
// so clients may send only what they gathered.

type environmentArgs struct {
	Healthy     bool    `json:"healthy,omitempty" jsonschema:"environment health checks passed"`
	Accessible  bool    `json:"accessible,omitempty" jsonschema:"environment reachable from the test runner"`
	HealthScore float64 `json:"health_score,omitempty" jsonschema:"health score in [0,1]"`
}

type repositoryArgs struct {
	LocatorFound    *bool `json:"locator_found,omitempty" jsonschema:"locator present in product sources; omit when unknown"`
	RecentlyChanged bool  `json:"recently_changed,omitempty" jsonschema:"locator changed recently in the test repo"`
	DaysSinceChange *int  `json:"days_since_change,omitempty" jsonschema:"days since the locator last changed"`
	ExpectedChange  bool  `json:"expected_change,omitempty" jsonschema:"failure matches an intentional product change"`
}

type consoleArgs struct {
	HasServerErrors  bool `json:"has_server_errors,omitempty" jsonschema:"CI console shows 5xx responses"`
	HasNetworkErrors bool `json:"has_network_errors,omitempty" jsonschema:"CI console shows connection or DNS errors"`
	HasAuthErrors    bool `json:"has_auth_errors,omitempty" jsonschema:"CI console shows 401/403 responses"`
}

type flakinessArgs struct {
	FlakyHistory  bool `json:"flaky_history,omitempty" jsonschema:"test failed intermittently before"`
	PassedOnRetry bool `json:"passed_on_retry,omitempty" jsonschema:"test passed when retried"`
}

type failureArgs struct {
	ID          string           `json:"id,omitempty" jsonschema:"failure id, unique within a run"`
	TestName    string           `json:"test_name,omitempty" jsonschema:"test title"`
	ErrorText   string           `json:"error_text,omitempty" jsonschema:"raw error message"`
	StackTrace  string           `json:"stack_trace,omitempty" jsonschema:"raw stack trace"`
	Environment *environmentArgs `json:"environment,omitempty" jsonschema:"environment evidence"`
	Repository  *repositoryArgs  `json:"repository,omitempty" jsonschema:"source search evidence"`
	Console     *consoleArgs     `json:"console,omitempty" jsonschema:"CI console evidence"`
	Flakiness   *flakinessArgs   `json:"flakiness,omitempty" jsonschema:"pass/fail history"`
}

func (a failureArgs) input() evidence.FailureInput {
	in := evidence.FailureInput{
		ID:         a.ID,
		TestName:   a.TestName,
		ErrorText:  a.ErrorText,
		StackTrace: a.StackTrace,
	}
	if e := a.Environment; e != nil {
		in.Environment = &evidence.EnvironmentEvidence{Healthy: e.Healthy, Accessible: e.Accessible, HealthScore: e.HealthScore}
	}
	if r := a.Repository; r != nil {
		state := evidence.LocatorUnknown
		if r.LocatorFound != nil {
			state = evidence.LocatorNotFound
			if *r.LocatorFound {
				state = evidence.LocatorFound
			}
		}
		in.Repository = &evidence.RepositoryEvidence{
			LocatorFound:    state,
			RecentlyChanged: r.RecentlyChanged,
			DaysSinceChange: r.DaysSinceChange,
			ExpectedChange:  r.ExpectedChange,
		}
	}
	if c := a.Console; c != nil {
		in.Console = &evidence.ConsoleEvidence{
			HasServerErrors: c.HasServerErrors, HasNetworkErrors: c.HasNetworkErrors, HasAuthErrors: c.HasAuthErrors,
		}
	}
	if f := a.Flakiness; f != nil {
		in.Flakiness = &evidence.FlakinessEvidence{FlakyHistory: f.FlakyHistory, PassedOnRetry: f.PassedOnRetry}
	}
	return in
}
