package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/reldraft/reldraft/internal/changelog"
	"github.com/reldraft/reldraft/internal/config"
	"github.com/reldraft/reldraft/internal/db"
	"github.com/reldraft/reldraft/internal/errors"
	"github.com/reldraft/reldraft/internal/gitio"
	"github.com/reldraft/reldraft/internal/release"
)

// DraftInput contains parameters for the Draft operation.
type DraftInput struct {
	Channel  string // required: production, beta, or test
	RepoPath string // repository being drafted
}

// DraftOutput contains the result of the Draft operation.
type DraftOutput struct {
	ID              string   `json:"id"`
	Channel         string   `json:"channel"`
	PreviousVersion string   `json:"previous_version"`
	NextVersion     string   `json:"next_version"`
	Entries         []string `json:"entries"`
	NoChanges       bool     `json:"no_changes"`
	Steps           []string `json:"steps"`
}

// Draft runs the end-to-end drafting flow: channel validation, clean-tree
// check, latest-release resolution, next-version computation, and changelog
// extraction. The channel token is validated before any repository state is
// read. On success the draft is recorded in the local history store; on any
// failure nothing is emitted or recorded.
func Draft(ctx context.Context, database *sql.DB, cfg *config.Config, repo gitio.Repo, input DraftInput) (*DraftOutput, error) {
	ch, err := release.ParseChannel(input.Channel)
	if err != nil {
		return nil, err
	}

	clean, err := repo.IsClean(ctx)
	if err != nil {
		return nil, err
	}
	if !clean {
		return nil, errors.NewUncommittedChanges()
	}

	tags, err := repo.Tags(ctx)
	if err != nil {
		return nil, err
	}

	prev, err := tagFilter(cfg).LatestRelease(tags, ch == release.Production)
	if err != nil {
		return nil, err
	}

	next, err := release.NextVersion(prev, ch)
	if err != nil {
		return nil, err
	}

	refTag := effectivePrefix(cfg) + prev.String()
	lines, err := repo.LogSince(ctx, refTag)
	if err != nil {
		return nil, err
	}

	noChanges := changelog.AllBlank(lines)
	entries, err := changelog.ToEntries(lines, !cfg.LenientLog)
	if err != nil {
		return nil, err
	}

	// Production drafts fold in every note already published under the
	// intervening beta releases, so nothing is listed twice.
	if ch == release.Production {
		recorded, err := changelog.RecordedSince(changelogPath(cfg, input.RepoPath), prev)
		if err != nil {
			return nil, err
		}
		entries = changelog.Subtract(entries, recorded)
	}
	if entries == nil {
		entries = []string{}
	}

	output := &DraftOutput{
		Channel:         string(ch),
		PreviousVersion: prev.String(),
		NextVersion:     next.String(),
		Entries:         entries,
		NoChanges:       noChanges,
		Steps:           buildSteps(cfg, next.String(), refTag, entries, noChanges),
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	output.ID = id

	record := db.Draft{
		ID:              id,
		Channel:         output.Channel,
		PreviousVersion: output.PreviousVersion,
		NextVersion:     output.NextVersion,
		Entries:         entries,
		EntryCount:      len(entries),
		NoChanges:       noChanges,
		RepoPath:        input.RepoPath,
		CreatedAt:       time.Now().Unix(),
	}
	if err := db.InsertDraft(database, &record); err != nil {
		return nil, err
	}

	return output, nil
}

// buildSteps renders the numbered instructions the operator follows to finish
// the release by hand.
func buildSteps(cfg *config.Config, next, refTag string, entries []string, noChanges bool) []string {
	var steps []string

	if noChanges {
		steps = append(steps,
			fmt.Sprintf("No commits since %s; no changelog included.", refTag))
	} else if len(entries) == 0 {
		steps = append(steps,
			fmt.Sprintf("No user-facing changes since %s; no changelog included.", refTag))
	} else {
		steps = append(steps,
			fmt.Sprintf("Record the %d entries above in %s under version %s.", len(entries), cfg.ChangelogPath, next))
	}

	steps = append(steps,
		fmt.Sprintf("Update the application version to %s.", next),
		fmt.Sprintf("Commit the release metadata and tag the commit %s%s.", effectivePrefix(cfg), next),
		"Push the commit and the tag, then run the platform build as usual.",
	)
	return steps
}

func effectivePrefix(cfg *config.Config) string {
	if cfg.TagPrefix != "" {
		return cfg.TagPrefix
	}
	return release.DefaultTagPrefix
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
