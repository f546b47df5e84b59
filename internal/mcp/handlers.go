package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reldraft/reldraft/internal/config"
	"github.com/reldraft/reldraft/internal/errors"
	"github.com/reldraft/reldraft/internal/gitio"
	"github.com/reldraft/reldraft/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config

	// newRepo builds the git collaborator for a repository path. Tests
	// substitute a stub here.
	newRepo func(path string) gitio.Repo
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{
		db:      db,
		cfg:     cfg,
		newRepo: func(path string) gitio.Repo { return gitio.Git{RepoPath: path} },
	}
}

// Request types for each tool

// DraftRequest represents the arguments for release_draft.
type DraftRequest struct {
	Channel  string `json:"channel"`
	RepoPath string `json:"repo_path,omitempty"`
}

// LatestRequest represents the arguments for release_latest.
type LatestRequest struct {
	Channel  string `json:"channel"`
	RepoPath string `json:"repo_path,omitempty"`
}

// ChangelogRequest represents the arguments for changelog_since.
type ChangelogRequest struct {
	Ref      string `json:"ref"`
	RepoPath string `json:"repo_path,omitempty"`
}

// HistoryRequest represents the arguments for draft_history.
type HistoryRequest struct {
	Channel string `json:"channel,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// ExportRequest represents the arguments for draft_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// Handler implementations

// HandleDraft handles the release_draft tool call.
func (h *Handlers) HandleDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DraftRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	repoPath := defaultPath(input.RepoPath)
	result, err := ops.Draft(ctx, h.db, h.cfg, h.newRepo(repoPath), ops.DraftInput{
		Channel:  input.Channel,
		RepoPath: repoPath,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleLatest handles the release_latest tool call.
func (h *Handlers) HandleLatest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LatestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Latest(ctx, h.cfg, h.newRepo(defaultPath(input.RepoPath)), ops.LatestInput{
		Channel: input.Channel,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleChangelog handles the changelog_since tool call.
func (h *Handlers) HandleChangelog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ChangelogRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Changelog(ctx, h.cfg, h.newRepo(defaultPath(input.RepoPath)), ops.ChangelogInput{
		Ref: input.Ref,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistory handles the draft_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.History(h.db, ops.HistoryInput{
		Channel: input.Channel,
		Limit:   input.Limit,
		Offset:  input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the draft_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(h.db, h.cfg, ops.ExportInput{
		Path: input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

func defaultPath(path string) string {
	if path == "" {
		return "."
	}
	return path
}

// errorResult formats a structured error payload for MCP clients.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if dErr, ok := err.(*errors.DraftError); ok {
		errorObj := map[string]any{
			"code":    dErr.Code,
			"message": dErr.Message,
			"status":  dErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if dErr.Code != errors.ErrInternal && dErr.Details != nil {
			errorObj["details"] = dErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
