package ops

import (
	"context"

	"github.com/reldraft/reldraft/internal/config"
	"github.com/reldraft/reldraft/internal/gitio"
	"github.com/reldraft/reldraft/internal/release"
)

// LatestInput contains parameters for the Latest operation.
type LatestInput struct {
	Channel string // required: production, beta, or test
}

// LatestOutput contains the result of the Latest operation.
type LatestOutput struct {
	Channel string `json:"channel"`
	Version string `json:"version"`
	Tag     string `json:"tag"`
}

// Latest resolves the latest shippable release for a channel's tag filter.
func Latest(ctx context.Context, cfg *config.Config, repo gitio.Repo, input LatestInput) (*LatestOutput, error) {
	ch, err := release.ParseChannel(input.Channel)
	if err != nil {
		return nil, err
	}

	tags, err := repo.Tags(ctx)
	if err != nil {
		return nil, err
	}

	v, err := tagFilter(cfg).LatestRelease(tags, ch == release.Production)
	if err != nil {
		return nil, err
	}

	return &LatestOutput{
		Channel: string(ch),
		Version: v.String(),
		Tag:     effectivePrefix(cfg) + v.String(),
	}, nil
}
