package ops

import (
	"database/sql"
	"strings"

	"github.com/reldraft/reldraft/internal/db"
	"github.com/reldraft/reldraft/internal/release"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	Channel string // optional filter
	Limit   int    // default: 20, max: 100
	Offset  int    // default: 0
}

// HistoryOutput contains the result of the History operation.
type HistoryOutput struct {
	Items      []db.Draft `json:"items"`
	Pagination Pagination `json:"pagination"`
	Sort       string     `json:"sort"`
}

// History lists previously recorded drafts, newest first.
func History(database *sql.DB, input HistoryInput) (*HistoryOutput, error) {
	channel := ""
	if strings.TrimSpace(input.Channel) != "" {
		ch, err := release.ParseChannel(input.Channel)
		if err != nil {
			return nil, err
		}
		channel = string(ch)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	offset := max(input.Offset, 0)

	items, total, err := db.ListDrafts(database, channel, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []db.Draft{}
	}

	hasMore := offset+len(items) < total

	return &HistoryOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: hasMore,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}
