package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reldraft/reldraft/internal/config"
	"github.com/reldraft/reldraft/internal/db"
	"github.com/reldraft/reldraft/internal/gitio"
)

// stubRepo implements gitio.Repo over injected data.
type stubRepo struct {
	tags  []string
	lines []string
	clean bool
}

func (s *stubRepo) Tags(_ context.Context) ([]string, error) { return s.tags, nil }

func (s *stubRepo) LogSince(_ context.Context, _ string) ([]string, error) { return s.lines, nil }

func (s *stubRepo) IsClean(_ context.Context) (bool, error) { return s.clean, nil }

// testSetup creates a temporary database, config, and stubbed handlers.
func testSetup(t *testing.T, repo *stubRepo) (*Handlers, *sql.DB) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	h := NewHandlers(database, cfg)
	h.newRepo = func(string) gitio.Repo { return repo }
	return h, database
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// resultText extracts the text payload from a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func TestHandleDraft_HappyPath(t *testing.T) {
	repo := &stubRepo{
		clean: true,
		tags:  []string{"release-1.2.0"},
		lines: []string{"feat: offline mode"},
	}
	h, _ := testSetup(t, repo)

	result, err := h.HandleDraft(context.Background(), makeRequest(map[string]any{
		"channel": "beta",
	}))
	if err != nil {
		t.Fatalf("HandleDraft failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	var out struct {
		NextVersion string   `json:"next_version"`
		Entries     []string `json:"entries"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if out.NextVersion != "1.3.0-beta1" {
		t.Errorf("next_version = %s, want 1.3.0-beta1", out.NextVersion)
	}
	if len(out.Entries) != 1 {
		t.Errorf("entries = %v, want one entry", out.Entries)
	}
}

func TestHandleDraft_InvalidChannel(t *testing.T) {
	h, _ := testSetup(t, &stubRepo{clean: true})

	result, err := h.HandleDraft(context.Background(), makeRequest(map[string]any{
		"channel": "canary",
	}))
	if err != nil {
		t.Fatalf("HandleDraft failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(resultText(t, result), "INVALID_CHANNEL_ARGUMENT") {
		t.Errorf("payload = %s, want INVALID_CHANNEL_ARGUMENT", resultText(t, result))
	}
}

func TestHandleDraft_DirtyTree(t *testing.T) {
	h, _ := testSetup(t, &stubRepo{clean: false, tags: []string{"release-1.2.0"}})

	result, err := h.HandleDraft(context.Background(), makeRequest(map[string]any{
		"channel": "production",
	}))
	if err != nil {
		t.Fatalf("HandleDraft failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(resultText(t, result), "UNCOMMITTED_CHANGES") {
		t.Errorf("payload = %s, want UNCOMMITTED_CHANGES", resultText(t, result))
	}
}

func TestHandleLatest(t *testing.T) {
	repo := &stubRepo{
		clean: true,
		tags:  []string{"release-1.2.0", "release-1.3.0-beta1"},
	}
	h, _ := testSetup(t, repo)

	result, err := h.HandleLatest(context.Background(), makeRequest(map[string]any{
		"channel": "production",
	}))
	if err != nil {
		t.Fatalf("HandleLatest failed: %v", err)
	}

	var out struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if out.Version != "1.2.0" {
		t.Errorf("version = %s, want 1.2.0", out.Version)
	}
}

func TestHandleChangelog_MissingRef(t *testing.T) {
	h, _ := testSetup(t, &stubRepo{clean: true})

	result, err := h.HandleChangelog(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleChangelog failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
}

func TestHandleHistory_RecordsDraft(t *testing.T) {
	repo := &stubRepo{
		clean: true,
		tags:  []string{"release-1.2.0"},
		lines: []string{"fix: broken tray icon"},
	}
	h, _ := testSetup(t, repo)

	if _, err := h.HandleDraft(context.Background(), makeRequest(map[string]any{
		"channel": "test",
	})); err != nil {
		t.Fatalf("HandleDraft failed: %v", err)
	}

	result, err := h.HandleHistory(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleHistory failed: %v", err)
	}

	var out struct {
		Items []struct {
			Channel     string `json:"channel"`
			NextVersion string `json:"next_version"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(out.Items) != 1 {
		t.Fatalf("items = %v, want one recorded draft", out.Items)
	}
	if out.Items[0].NextVersion != "1.2.1-test1" {
		t.Errorf("next_version = %s, want 1.2.1-test1", out.Items[0].NextVersion)
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"release_draft", "bogus_tool"})
	if len(unknown) != 1 || unknown[0] != "bogus_tool" {
		t.Errorf("unknown = %v, want [bogus_tool]", unknown)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Errorf("len = %d, want %d", len(names), len(toolRegistry))
	}
}
