package history

import (
	"fmt"

	"triage/internal/timeline"
	"triage/internal/workspace"
)

// FromWorkspace returns the automation and product lookups a workspace
// describes. A recorded history file wins over git. ok is false when the
// workspace cannot drive a timeline comparison.
func FromWorkspace(w *workspace.Workspace) (test, product timeline.HistoryLookup, ok bool, err error) {
	if !w.Timeline() {
		return nil, nil, false, nil
	}
	if w.History != "" {
		rec, err := LoadRecorded(w.Resolve(w.History))
		if err != nil {
			return nil, nil, false, fmt.Errorf("workspace history: %w", err)
		}
		return RecordedLookup(rec.Automation), RecordedLookup(rec.Product), true, nil
	}
	a, _ := w.Repo(workspace.RoleAutomation)
	p, _ := w.Repo(workspace.RoleProduct)
	return NewGitLookup(w, a), NewGitLookup(w, p), true, nil
}
