package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reldraft/reldraft/internal/config"
	"github.com/reldraft/reldraft/internal/db"
	"github.com/reldraft/reldraft/internal/ops"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	cleanup := func() {
		database.Close()
	}
	return database, cleanup
}

// seedDraft inserts a recorded draft directly into the history store.
func seedDraft(t *testing.T, database *sql.DB, id, channel, next string) {
	t.Helper()
	record := db.Draft{
		ID:              id,
		Channel:         channel,
		PreviousVersion: "1.2.0",
		NextVersion:     next,
		Entries:         []string{"feat: offline mode"},
		EntryCount:      1,
		RepoPath:        "/tmp/app",
		CreatedAt:       time.Now().Unix(),
	}
	if err := db.InsertDraft(database, &record); err != nil {
		t.Fatalf("failed to seed draft: %v", err)
	}
}

// captureStdout runs fn and returns what it wrote to stdout.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), runErr
}

// TestCLIHistory tests the history command.
func TestCLIHistory(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	seedDraft(t, database, "01AAAAAAAAAAAAAAAAAAAAAAAA", "beta", "1.3.0-beta1")
	seedDraft(t, database, "01BBBBBBBBBBBBBBBBBBBBBBBB", "production", "1.3.0")

	app := newCLIApp(database, cfg)

	stdout, err := captureStdout(t, func() error {
		return app.Run([]string{"reldraft", "history"})
	})
	if err != nil {
		t.Fatalf("history command failed: %v", err)
	}

	var output ops.HistoryOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, stdout)
	}

	if len(output.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(output.Items))
	}
	if output.Pagination.Total != 2 {
		t.Errorf("expected total=2, got %d", output.Pagination.Total)
	}
}

// TestCLIHistoryChannelFilter tests the history command with a channel filter.
func TestCLIHistoryChannelFilter(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	seedDraft(t, database, "01AAAAAAAAAAAAAAAAAAAAAAAA", "beta", "1.3.0-beta1")
	seedDraft(t, database, "01BBBBBBBBBBBBBBBBBBBBBBBB", "production", "1.3.0")

	app := newCLIApp(database, cfg)

	stdout, err := captureStdout(t, func() error {
		return app.Run([]string{"reldraft", "history", "--channel=beta"})
	})
	if err != nil {
		t.Fatalf("history command failed: %v", err)
	}

	var output ops.HistoryOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if len(output.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(output.Items))
	}
	if output.Items[0].Channel != "beta" {
		t.Errorf("expected channel=beta, got %s", output.Items[0].Channel)
	}
}

// TestCLIExport tests the export command.
func TestCLIExport(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()

	cfg := config.DefaultConfig()
	exportDir := t.TempDir()
	cfg.AllowedPaths = []string{exportDir}

	seedDraft(t, database, "01AAAAAAAAAAAAAAAAAAAAAAAA", "beta", "1.3.0-beta1")

	app := newCLIApp(database, cfg)
	exportPath := filepath.Join(exportDir, "drafts.jsonl")

	stdout, err := captureStdout(t, func() error {
		return app.Run([]string{"reldraft", "export", "--path=" + exportPath})
	})
	if err != nil {
		t.Fatalf("export command failed: %v", err)
	}

	var output ops.ExportOutput
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Count != 1 {
		t.Errorf("expected count=1, got %d", output.Count)
	}
	if output.Path != exportPath {
		t.Errorf("expected path=%s, got %s", exportPath, output.Path)
	}
	if _, err := os.Stat(exportPath); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

// TestCLIErrorHandling tests error handling in CLI commands.
func TestCLIErrorHandling(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	cfg := config.DefaultConfig()

	app := newCLIApp(database, cfg)

	t.Run("draft without channel returns error", func(t *testing.T) {
		_, err := captureStdout(t, func() error {
			return app.Run([]string{"reldraft", "draft"})
		})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("latest without channel returns error", func(t *testing.T) {
		_, err := captureStdout(t, func() error {
			return app.Run([]string{"reldraft", "latest"})
		})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("changelog without ref returns error", func(t *testing.T) {
		_, err := captureStdout(t, func() error {
			return app.Run([]string{"reldraft", "changelog"})
		})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("history with invalid channel returns error", func(t *testing.T) {
		_, err := captureStdout(t, func() error {
			return app.Run([]string{"reldraft", "history", "--channel=canary"})
		})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("export outside allowed dirs returns error", func(t *testing.T) {
		_, err := captureStdout(t, func() error {
			return app.Run([]string{"reldraft", "export", "--path=" + filepath.Join(t.TempDir(), "out.jsonl")})
		})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})
}

// TestPrintDraft tests the human-oriented draft rendering.
func TestPrintDraft(t *testing.T) {
	output := &ops.DraftOutput{
		Channel:         "beta",
		PreviousVersion: "1.2.0",
		NextVersion:     "1.3.0-beta1",
		Entries:         []string{"feat: offline mode"},
		Steps: []string{
			"Record the 1 entries above in CHANGELOG.md under version 1.3.0-beta1.",
			"Update the application version to 1.3.0-beta1.",
		},
	}

	stdout, _ := captureStdout(t, func() error {
		printDraft(output)
		return nil
	})

	for _, want := range []string{
		"1.2.0 -> 1.3.0-beta1 (beta)",
		"- feat: offline mode",
		"1. Record the 1 entries",
		"2. Update the application version",
	} {
		if !bytes.Contains([]byte(stdout), []byte(want)) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

// TestIsCLIMode tests the isCLIMode function.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "no args",
			args:     []string{"reldraft"},
			expected: false,
		},
		{
			name:     "draft command",
			args:     []string{"reldraft", "draft"},
			expected: true,
		},
		{
			name:     "latest command",
			args:     []string{"reldraft", "latest"},
			expected: true,
		},
		{
			name:     "help flag",
			args:     []string{"reldraft", "--help"},
			expected: true,
		},
		{
			name:     "version flag",
			args:     []string{"reldraft", "--version"},
			expected: true,
		},
		{
			name:     "short help flag",
			args:     []string{"reldraft", "-h"},
			expected: true,
		},
		{
			name:     "short version flag",
			args:     []string{"reldraft", "-v"},
			expected: true,
		},
		{
			name:     "unknown arg defaults to MCP",
			args:     []string{"reldraft", "--unknown"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save and restore os.Args
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isCLIMode()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "no args",
			args:     []string{"reldraft"},
			expected: false,
		},
		{
			name:     "help flag",
			args:     []string{"reldraft", "--help"},
			expected: true,
		},
		{
			name:     "help subcommand",
			args:     []string{"reldraft", "help"},
			expected: true,
		},
		{
			name:     "version flag",
			args:     []string{"reldraft", "--version"},
			expected: true,
		},
		{
			name:     "draft command is not help",
			args:     []string{"reldraft", "draft"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isHelpOrVersion()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}
