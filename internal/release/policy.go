package release

import (
	"fmt"

	"github.com/reldraft/reldraft/internal/errors"
	"github.com/reldraft/reldraft/internal/semver"
)

// NextVersion computes the version a new draft should carry, given the latest
// released version and the requested channel. It is a pure single-shot
// computation over a finite case table:
//
//	production  final prev     → bump patch
//	production  beta prev      → promote: drop the qualifier, keep the triple
//	beta        final prev     → bump minor, reset patch, start at beta1
//	beta        beta prev      → increment the beta iteration
//	test        final prev     → bump patch, start at test1
//	test        beta prev      → keep the triple, test1 (orders after any betaN)
//	test        test prev      → increment the test iteration
//
// Test versions never establish a lineage: production and beta rules refuse a
// test-qualified previous version. Every transition yields a version strictly
// greater than the previous one by precedence.
func NextVersion(prev semver.Version, channel Channel) (semver.Version, error) {
	prevChannel := ChannelOf(prev)

	switch channel {
	case Production:
		switch prevChannel {
		case Production:
			return semver.Version{Major: prev.Major, Minor: prev.Minor, Patch: prev.Patch + 1}, nil
		case Beta:
			return semver.Version{Major: prev.Major, Minor: prev.Minor, Patch: prev.Patch}, nil
		default:
			return semver.Version{}, errors.NewInvalidPreviousVersion(prev.String(), string(channel))
		}

	case Beta:
		switch prevChannel {
		case Production:
			return semver.Version{
				Major: prev.Major,
				Minor: prev.Minor + 1,
				Pre:   betaQualifier(1),
			}, nil
		case Beta:
			_, iter := prev.PreParts()
			next := prev
			next.Pre = betaQualifier(iter + 1)
			return next, nil
		default:
			return semver.Version{}, errors.NewInvalidPreviousVersion(prev.String(), string(channel))
		}

	case Test:
		switch prevChannel {
		case Production:
			return semver.Version{
				Major: prev.Major,
				Minor: prev.Minor,
				Patch: prev.Patch + 1,
				Pre:   testQualifier(1),
			}, nil
		case Beta:
			next := prev
			next.Pre = testQualifier(1)
			return next, nil
		default:
			_, iter := prev.PreParts()
			next := prev
			next.Pre = testQualifier(iter + 1)
			return next, nil
		}

	default:
		return semver.Version{}, errors.NewUnsupportedChannel(string(channel))
	}
}

func betaQualifier(iter int) string {
	return fmt.Sprintf("%s%d", betaLabel, iter)
}

func testQualifier(iter int) string {
	return fmt.Sprintf("%s%d", testLabel, iter)
}
