package ops

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/reldraft/reldraft/internal/config"
	"github.com/reldraft/reldraft/internal/db"
	"github.com/reldraft/reldraft/internal/errors"
)

func TestExport_WritesHeaderAndRecords(t *testing.T) {
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	defer database.Close()

	d := db.Draft{
		ID:              "01EXPORT",
		Channel:         "beta",
		PreviousVersion: "1.2.0",
		NextVersion:     "1.3.0-beta1",
		Entries:         []string{"feat: offline mode"},
		EntryCount:      1,
		CreatedAt:       100,
	}
	if err := db.InsertDraft(database, &d); err != nil {
		t.Fatalf("InsertDraft failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // temp dirs in tests

	path := filepath.Join(t.TempDir(), "history.jsonl")
	out, err := Export(database, cfg, ExportInput{Path: path})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 1 {
		t.Errorf("Count = %d, want 1", out.Count)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		t.Fatal("export file is empty")
	}
	var header ExportHeader
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if !header.ReldraftExport {
		t.Error("header marker missing")
	}

	if !scanner.Scan() {
		t.Fatal("export file has no record line")
	}
	var record db.Draft
	if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if record.ID != "01EXPORT" || record.NextVersion != "1.3.0-beta1" {
		t.Errorf("record = %+v, want exported draft", record)
	}
}

func TestExport_RejectsTraversal(t *testing.T) {
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	defer database.Close()

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	_, err = Export(database, cfg, ExportInput{Path: "../escape.jsonl"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestExport_RequiresJSONLExtension(t *testing.T) {
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	defer database.Close()

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	_, err = Export(database, cfg, ExportInput{Path: filepath.Join(t.TempDir(), "out.txt")})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestExport_RejectsUnlistedDirectory(t *testing.T) {
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	defer database.Close()

	cfg := config.DefaultConfig() // no allowlist, unsafe paths off

	_, err = Export(database, cfg, ExportInput{Path: filepath.Join(t.TempDir(), "out.jsonl")})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestExport_AllowlistedDirectory(t *testing.T) {
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	defer database.Close()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{dir}

	out, err := Export(database, cfg, ExportInput{Path: filepath.Join(dir, "out.jsonl")})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 0 {
		t.Errorf("Count = %d, want 0", out.Count)
	}
}
