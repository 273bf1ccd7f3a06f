package evidence

// EnvironmentEvidence is the cluster or environment health seen at failure time.
type EnvironmentEvidence struct {
	Healthy     bool    `json:"healthy" yaml:"healthy"`
	Accessible  bool    `json:"accessible" yaml:"accessible"`
	HealthScore float64 `json:"health_score" yaml:"health_score"`
}

// RepositoryEvidence is what a source search found about the failing locator.
type RepositoryEvidence struct {
	LocatorFound    LocatorState `json:"locator_found" yaml:"locator_found"`
	RecentlyChanged bool         `json:"recently_changed" yaml:"recently_changed"`
	DaysSinceChange *int         `json:"days_since_change,omitempty" yaml:"days_since_change,omitempty"`
	// ExpectedChange marks a failure that lines up with an intentional product change.
	ExpectedChange bool `json:"expected_change,omitempty" yaml:"expected_change,omitempty"`
}

// ConsoleEvidence is what the CI console log showed around the failure.
type ConsoleEvidence struct {
	HasServerErrors  bool `json:"has_server_errors" yaml:"has_server_errors"`
	HasNetworkErrors bool `json:"has_network_errors" yaml:"has_network_errors"`
	HasAuthErrors    bool `json:"has_auth_errors" yaml:"has_auth_errors"`
}

// FlakinessEvidence is the test's recent pass/fail behaviour.
type FlakinessEvidence struct {
	FlakyHistory  bool `json:"flaky_history" yaml:"flaky_history"`
	PassedOnRetry bool `json:"passed_on_retry" yaml:"passed_on_retry"`
}

// FailureInput is one failed test as handed over by the data-gathering side.
// Nil evidence blocks mean the collaborator could not gather them.
type FailureInput struct {
	ID          string               `json:"id" yaml:"id"`
	TestName    string               `json:"test_name" yaml:"test_name"`
	ErrorText   string               `json:"error_text" yaml:"error_text"`
	StackTrace  string               `json:"stack_trace,omitempty" yaml:"stack_trace,omitempty"`
	Environment *EnvironmentEvidence `json:"environment,omitempty" yaml:"environment,omitempty"`
	Repository  *RepositoryEvidence  `json:"repository,omitempty" yaml:"repository,omitempty"`
	Console     *ConsoleEvidence     `json:"console,omitempty" yaml:"console,omitempty"`
	Flakiness   *FlakinessEvidence   `json:"flakiness,omitempty" yaml:"flakiness,omitempty"`
	// HistoryRef is an opaque pointer for the history lookup (branch, commit or path).
	HistoryRef string `json:"history_ref,omitempty" yaml:"history_ref,omitempty"`
}

// Days returns a pointer to n, for building RepositoryEvidence literals.
func Days(n int) *int { return &n }
