// Package intake reads failure bundles handed over by the data-gathering side.
package intake

import (
	"errors"
	"fmt"

	"triage/internal/evidence"
)

// ErrNoFailures is returned for a bundle with an empty failure list.
var ErrNoFailures = errors.New("bundle has no failures")

// Defaults are evidence blocks shared by every failure in a bundle. A
// failure's own block, when present, wins.
type Defaults struct {
	Environment *evidence.EnvironmentEvidence `json:"environment,omitempty" yaml:"environment,omitempty"`
	Console     *evidence.ConsoleEvidence     `json:"console,omitempty" yaml:"console,omitempty"`
	Repository  *evidence.RepositoryEvidence  `json:"repository,omitempty" yaml:"repository,omitempty"`
}

// Bundle is one CI run's failures plus run metadata.
type Bundle struct {
	RunID    string                  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Name     string                  `json:"name,omitempty" yaml:"name,omitempty"`
	Source   string                  `json:"source,omitempty" yaml:"source,omitempty"` // CI job URL or launch reference
	Branch   string                  `json:"branch,omitempty" yaml:"branch,omitempty"`
	Defaults Defaults                `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Failures []evidence.FailureInput `json:"failures" yaml:"failures"`
}

// Inputs returns the failures with defaults applied and missing ids filled
// as "<n>" (1-based position). Evidence blocks are copied so callers may not
// alias the shared defaults.
func (b *Bundle) Inputs() ([]evidence.FailureInput, error) {
	if b == nil || len(b.Failures) == 0 {
		return nil, ErrNoFailures
	}
	out := make([]evidence.FailureInput, len(b.Failures))
	seen := make(map[string]bool, len(b.Failures))
	for i, f := range b.Failures {
		if f.ID == "" {
			f.ID = fmt.Sprintf("%d", i+1)
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("failure %d: duplicate id %q", i+1, f.ID)
		}
		seen[f.ID] = true
		if f.Environment == nil && b.Defaults.Environment != nil {
			env := *b.Defaults.Environment
			f.Environment = &env
		}
		if f.Console == nil && b.Defaults.Console != nil {
			c := *b.Defaults.Console
			f.Console = &c
		}
		if f.Repository == nil && b.Defaults.Repository != nil {
			r := *b.Defaults.Repository
			f.Repository = &r
		}
		if f.HistoryRef == "" {
			f.HistoryRef = b.Branch
		}
		out[i] = f
	}
	return out, nil
}
