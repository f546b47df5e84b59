// Package gitio wraps the git binary. We keep it small and focused on the
// three reads the drafting flow needs; everything above this package consumes
// plain string data.
package gitio

import (
	"context"
	"os/exec"
	"strings"

	"github.com/reldraft/reldraft/internal/errors"
)

// Repo is the version-control surface the drafting flow depends on. Ops and
// tests inject tag lists and log lines as plain data through this interface.
type Repo interface {
	// Tags returns all tag names in the repository.
	Tags(ctx context.Context) ([]string, error)

	// LogSince returns the commit subject lines reachable since ref,
	// most-recent-first (git log order). Blank subjects are preserved so
	// callers can detect the "no changes" condition.
	LogSince(ctx context.Context, ref string) ([]string, error)

	// IsClean reports whether the working tree has no uncommitted changes.
	IsClean(ctx context.Context) (bool, error)
}

// Git runs the git binary against a repository path.
type Git struct {
	RepoPath string
}

var _ Repo = Git{}

// Tags lists all tag names.
func (g Git) Tags(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "tag", "--list")
	if err != nil {
		return nil, errors.NewGit("tag --list", err)
	}
	return splitLines(out), nil
}

// LogSince returns commit subjects in the range ref..HEAD.
func (g Git) LogSince(ctx context.Context, ref string) ([]string, error) {
	rangeSpec := ref + "..HEAD"
	out, err := g.run(ctx, "log", "--pretty=format:%s", rangeSpec)
	if err != nil {
		return nil, errors.NewGit("log "+rangeSpec, err)
	}
	return splitLines(out), nil
}

// IsClean checks `git status --porcelain` for any output.
func (g Git) IsClean(ctx context.Context) (bool, error) {
	out, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, errors.NewGit("status", err)
	}
	return strings.TrimSpace(out) == "", nil
}

func (g Git) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", g.RepoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// splitLines splits command output into lines without trimming the lines
// themselves. A fully empty output yields no lines.
func splitLines(out string) []string {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
