package ops

import (
	"context"
	"strings"

	"github.com/reldraft/reldraft/internal/changelog"
	"github.com/reldraft/reldraft/internal/config"
	"github.com/reldraft/reldraft/internal/errors"
	"github.com/reldraft/reldraft/internal/gitio"
)

// ChangelogInput contains parameters for the Changelog operation.
type ChangelogInput struct {
	Ref string // reference tag or revision; entries are collected since it
}

// ChangelogOutput contains the result of the Changelog operation.
type ChangelogOutput struct {
	Ref       string   `json:"ref"`
	Entries   []string `json:"entries"`
	NoChanges bool     `json:"no_changes"`
}

// Changelog formats the entries introduced since a reference point, without
// touching version numbers. Useful for previewing what a draft would include.
func Changelog(ctx context.Context, cfg *config.Config, repo gitio.Repo, input ChangelogInput) (*ChangelogOutput, error) {
	ref := strings.TrimSpace(input.Ref)
	if ref == "" {
		return nil, errors.NewInvalidRequest("ref is required")
	}

	lines, err := repo.LogSince(ctx, ref)
	if err != nil {
		return nil, err
	}

	entries, err := changelog.ToEntries(lines, !cfg.LenientLog)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []string{}
	}

	return &ChangelogOutput{
		Ref:       ref,
		Entries:   entries,
		NoChanges: changelog.AllBlank(lines),
	}, nil
}
