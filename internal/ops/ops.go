package ops

import (
	"path/filepath"

	"github.com/reldraft/reldraft/internal/config"
	"github.com/reldraft/reldraft/internal/release"
)

// Pagination limits
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// tagFilter builds the release-tag filter from config.
func tagFilter(cfg *config.Config) release.TagFilter {
	return release.TagFilter{
		Prefix:          cfg.TagPrefix,
		PlatformMarkers: cfg.PlatformMarkers,
		Strict:          !cfg.LenientTags,
	}
}

// changelogPath resolves the recorded changelog document for a repository.
func changelogPath(cfg *config.Config, repoPath string) string {
	if filepath.IsAbs(cfg.ChangelogPath) {
		return cfg.ChangelogPath
	}
	return filepath.Join(repoPath, cfg.ChangelogPath)
}
