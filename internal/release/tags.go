package release

import (
	"slices"
	"strings"

	"github.com/reldraft/reldraft/internal/errors"
	"github.com/reldraft/reldraft/internal/semver"
)

// DefaultTagPrefix is the namespace release tags live under.
const DefaultTagPrefix = "release-"

// TagFilter selects genuine release tags out of the full tag set.
type TagFilter struct {
	Prefix          string   // release tag namespace, e.g. "release-"
	PlatformMarkers []string // qualifier labels marking platform builds, e.g. "linux"
	Strict          bool     // fail on a malformed version suffix instead of skipping it
}

// LatestRelease resolves the latest shippable version from a tag set.
//
// Tags outside the release prefix are ignored. Platform-marked and test-marked
// tags are dropped unconditionally; beta-marked tags are dropped when
// excludeBeta is set (production drafting). Qualifier labels the filter does
// not recognize as a channel are treated like platform markers and dropped.
// The surviving versions are ordered by precedence and the maximum returned.
func (f TagFilter) LatestRelease(tags []string, excludeBeta bool) (semver.Version, error) {
	prefix := f.Prefix
	if prefix == "" {
		prefix = DefaultTagPrefix
	}

	var best semver.Version
	found := false

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		raw, ok := strings.CutPrefix(tag, prefix)
		if !ok {
			continue
		}

		v, err := semver.Parse(raw)
		if err != nil {
			if f.Strict {
				return semver.Version{}, errors.NewMalformedTag(tag)
			}
			continue
		}

		label, _ := v.PreParts()
		switch label {
		case "":
			// Final release, always shippable.
		case betaLabel:
			if excludeBeta {
				continue
			}
		case testLabel:
			continue
		default:
			// Platform builds never compete. A qualifier that is neither a
			// channel nor a known platform marker is unrecognized data: strict
			// mode surfaces it, lenient mode drops it.
			if f.Strict && !slices.Contains(f.PlatformMarkers, label) {
				return semver.Version{}, errors.NewMalformedTag(tag)
			}
			continue
		}

		if !found || best.Less(v) {
			best = v
			found = true
		}
	}

	if !found {
		return semver.Version{}, errors.NewNoReleasesFound(excludeBeta)
	}
	return best, nil
}
