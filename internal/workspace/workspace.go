// Package workspace describes the repositories a triage run may search for
// change history.
package workspace

import (
	"fmt"
	"path/filepath"
)

// Role is what a repository holds.
type Role string

const (
	RoleAutomation Role = "automation" // test code
	RoleProduct    Role = "product"    // system under test
)

// Repo is one local checkout used for history lookups.
type Repo struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Role   Role   `json:"role" yaml:"role"`
	Path   string `json:"path" yaml:"path"`                         // absolute or relative to the workspace file
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"` // empty = HEAD
	// SearchPaths limits git grep/log to these pathspecs (e.g. "src/", "cypress/").
	SearchPaths []string `json:"search_paths,omitempty" yaml:"search_paths,omitempty"`
}

// Workspace lists the automation and product repositories plus an optional
// recorded history file used instead of git.
type Workspace struct {
	Repos   []Repo `json:"repos" yaml:"repos"`
	History string `json:"history,omitempty" yaml:"history,omitempty"`

	// Dir is the directory of the file the workspace was loaded from.
	Dir string `json:"-" yaml:"-"`
}

// Repo returns the first repository with role r.
func (w *Workspace) Repo(r Role) (Repo, bool) {
	if w == nil {
		return Repo{}, false
	}
	for _, repo := range w.Repos {
		if repo.Role == r {
			return repo, true
		}
	}
	return Repo{}, false
}

// Resolve makes p absolute against the workspace directory.
func (w *Workspace) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || w == nil || w.Dir == "" {
		return p
	}
	return filepath.Join(w.Dir, p)
}

// Validate checks roles and that no role is claimed twice. A workspace with
// neither a recorded history nor both repositories can still be used; the
// timeline comparison is then not configured.
func (w *Workspace) Validate() error {
	seen := map[Role]bool{}
	for i, r := range w.Repos {
		switch r.Role {
		case RoleAutomation, RoleProduct:
		default:
			return fmt.Errorf("repo %d (%s): unknown role %q", i, r.Name, r.Role)
		}
		if r.Path == "" {
			return fmt.Errorf("repo %d (%s): path is required", i, r.Name)
		}
		if seen[r.Role] {
			return fmt.Errorf("repo %d (%s): role %s already assigned", i, r.Name, r.Role)
		}
		seen[r.Role] = true
	}
	return nil
}

// Timeline reports whether the workspace can drive a timeline comparison.
func (w *Workspace) Timeline() bool {
	if w == nil {
		return false
	}
	if w.History != "" {
		return true
	}
	_, a := w.Repo(RoleAutomation)
	_, p := w.Repo(RoleProduct)
	return a && p
}
