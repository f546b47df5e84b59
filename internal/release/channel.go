// Package release holds the channel-aware version progression policy and the
// release-tag resolution logic. Everything here is pure: callers feed in tag
// lists and versions as plain data, which keeps the policy testable without a
// git binary.
package release

import (
	"strings"

	"github.com/reldraft/reldraft/internal/errors"
	"github.com/reldraft/reldraft/internal/semver"
)

// Channel is a release track. Channels are ordered by stability: production is
// the most stable, test the least.
type Channel string

const (
	Production Channel = "production"
	Beta       Channel = "beta"
	Test       Channel = "test"
)

// Pre-release qualifier labels per channel. Production releases carry none.
const (
	betaLabel = "beta"
	testLabel = "test"
)

// ParseChannel validates a user-supplied channel token. Unknown tokens fail
// with INVALID_CHANNEL_ARGUMENT before any git state is read.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case Production:
		return Production, nil
	case Beta:
		return Beta, nil
	case Test:
		return Test, nil
	default:
		return "", errors.NewInvalidChannelArgument(s)
	}
}

// ChannelOf infers the channel a version was drafted under from its
// pre-release qualifier.
func ChannelOf(v semver.Version) Channel {
	label, _ := v.PreParts()
	switch label {
	case betaLabel:
		return Beta
	case testLabel:
		return Test
	default:
		return Production
	}
}
