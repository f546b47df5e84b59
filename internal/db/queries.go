package db

import (
	"database/sql"
	"encoding/json"

	"github.com/reldraft/reldraft/internal/errors"
)

// Draft is one recorded drafting run.
type Draft struct {
	ID              string   `json:"id"`
	Channel         string   `json:"channel"`
	PreviousVersion string   `json:"previous_version"`
	NextVersion     string   `json:"next_version"`
	Entries         []string `json:"entries"`
	EntryCount      int      `json:"entry_count"`
	NoChanges       bool     `json:"no_changes"`
	RepoPath        string   `json:"repo_path,omitempty"`
	CreatedAt       int64    `json:"created_at"` // unix seconds
}

// InsertDraft stores a recorded draft.
func InsertDraft(db *sql.DB, d *Draft) error {
	var entriesJSON sql.NullString
	if len(d.Entries) > 0 {
		data, err := json.Marshal(d.Entries)
		if err != nil {
			return errors.NewInternal(err)
		}
		entriesJSON = sql.NullString{String: string(data), Valid: true}
	}

	repoPath := sql.NullString{String: d.RepoPath, Valid: d.RepoPath != ""}

	query := `
		INSERT INTO drafts (
			id, channel, previous_version, next_version,
			entries_json, entry_count, no_changes, repo_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		d.ID, d.Channel, d.PreviousVersion, d.NextVersion,
		entriesJSON, d.EntryCount, boolToInt(d.NoChanges), repoPath, d.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// ListDrafts returns drafts newest-first with pagination, optionally filtered
// by channel, plus the total matching count.
func ListDrafts(db *sql.DB, channel string, limit, offset int) ([]Draft, int, error) {
	countQuery := "SELECT COUNT(*) FROM drafts"
	listQuery := `
		SELECT id, channel, previous_version, next_version,
			entries_json, entry_count, no_changes, repo_path, created_at
		FROM drafts
	`
	var args []any
	if channel != "" {
		countQuery += " WHERE channel = ?"
		listQuery += " WHERE channel = ?"
		args = append(args, channel)
	}
	listQuery += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"

	var total int
	if err := db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := db.Query(listQuery, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	drafts, err := scanDrafts(rows)
	if err != nil {
		return nil, 0, err
	}
	return drafts, total, nil
}

// AllDrafts returns every recorded draft newest-first, for export.
func AllDrafts(db *sql.DB) ([]Draft, error) {
	rows, err := db.Query(`
		SELECT id, channel, previous_version, next_version,
			entries_json, entry_count, no_changes, repo_path, created_at
		FROM drafts
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	return scanDrafts(rows)
}

func scanDrafts(rows *sql.Rows) ([]Draft, error) {
	var drafts []Draft
	for rows.Next() {
		var d Draft
		var entriesJSON, repoPath sql.NullString
		var noChanges int

		if err := rows.Scan(
			&d.ID, &d.Channel, &d.PreviousVersion, &d.NextVersion,
			&entriesJSON, &d.EntryCount, &noChanges, &repoPath, &d.CreatedAt,
		); err != nil {
			return nil, errors.NewInternal(err)
		}

		if entriesJSON.Valid {
			if err := json.Unmarshal([]byte(entriesJSON.String), &d.Entries); err != nil {
				return nil, errors.NewInternal(err)
			}
		}
		d.NoChanges = noChanges != 0
		d.RepoPath = repoPath.String

		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return drafts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
