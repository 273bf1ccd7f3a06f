// Package history answers "when did this locator last change" from git or
// from a recorded fixture.
package history

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"triage/internal/timeline"
	"triage/internal/workspace"
)

// Runner runs git with args inside dir and returns stdout.
type Runner func(ctx context.Context, dir string, args ...string) ([]byte, error)

// ExecGit runs the git binary.
func ExecGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.Output()
}

// GitLookup searches one checkout. Presence at head comes from git grep; the
// last change date from the pickaxe (git log -S), which also tells whether the
// string ever existed.
type GitLookup struct {
	Dir         string
	Branch      string
	SearchPaths []string
	Run         Runner
}

// NewGitLookup builds a lookup for a workspace repository.
func NewGitLookup(w *workspace.Workspace, r workspace.Repo) *GitLookup {
	return &GitLookup{
		Dir:         w.Resolve(r.Path),
		Branch:      r.Branch,
		SearchPaths: r.SearchPaths,
		Run:         ExecGit,
	}
}

// LastModified implements timeline.HistoryLookup.
func (g *GitLookup) LastModified(ctx context.Context, locator string) (timeline.History, error) {
	if locator == "" {
		return timeline.History{}, fmt.Errorf("%w: empty locator", timeline.ErrUnavailable)
	}
	run := g.Run
	if run == nil {
		run = ExecGit
	}

	grep, err := g.git(ctx, run, "grep", "-l", "-F", "-e", locator)
	if err != nil {
		return timeline.History{}, err
	}
	log, err := g.git(ctx, run, "log", "-1", "--format=%H|%cI|%s", "-S", locator)
	if err != nil {
		return timeline.History{}, err
	}

	h := timeline.History{PresentAtHead: strings.TrimSpace(grep) != ""}
	if c, ok := parseCommit(log); ok {
		h.LastModified = &c.When
		h.ExistsAtAll = true
	}
	if h.PresentAtHead {
		h.ExistsAtAll = true
	}
	return h, nil
}

// git runs a search subcommand against the ref carried by ctx, falling back
// to the configured branch. Exit status 1 means "no match" for grep and is
// not an error.
func (g *GitLookup) git(ctx context.Context, run Runner, sub string, args ...string) (string, error) {
	full := append([]string{sub}, args...)
	ref := timeline.RefFrom(ctx)
	if ref == "" {
		ref = g.Branch
	}
	if ref != "" {
		full = append(full, ref)
	}
	full = append(full, "--")
	full = append(full, g.SearchPaths...)

	out, err := run(ctx, g.Dir, full...)
	if err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) && exit.ExitCode() == 1 {
			return "", nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: git %s: %v", timeline.ErrUnavailable, sub, ctx.Err())
		}
		return "", fmt.Errorf("%w: git %s in %s: %v", timeline.ErrUnavailable, sub, g.Dir, err)
	}
	return string(out), nil
}

// Commit is one parsed git log line.
type Commit struct {
	Hash    string
	When    time.Time
	Subject string
}

func parseCommit(out string) (Commit, bool) {
	line := strings.TrimSpace(out)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	parts := strings.SplitN(line, "|", 3)
	if len(parts) < 2 {
		return Commit{}, false
	}
	when, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return Commit{}, false
	}
	c := Commit{Hash: parts[0], When: when.UTC()}
	if len(parts) == 3 {
		c.Subject = parts[2]
	}
	return c, true
}
