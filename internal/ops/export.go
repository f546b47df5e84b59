package ops

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/reldraft/reldraft/internal/config"
	"github.com/reldraft/reldraft/internal/db"
	"github.com/reldraft/reldraft/internal/errors"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: ~/.reldraft/exports/drafts-<timestamp>.jsonl
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader represents the header line in a JSONL export file.
type ExportHeader struct {
	ReldraftExport bool   `json:"_reldraft_export"`
	SchemaVersion  string `json:"schema_version"`
	ExportedAt     int64  `json:"exported_at"`
}

// Export writes the draft history to a JSONL file: one header line followed by
// one line per recorded draft, newest first.
func Export(database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(now)
		if err != nil {
			return nil, err
		}
	}

	// Validate all paths, including the default, before touching the disk.
	if err := validateExportPath(exportPath, cfg); err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	drafts, err := db.AllDrafts(database)
	if err != nil {
		return nil, err
	}

	// Write to a temp file first, then rename, so a failure preserves any
	// existing export at the destination.
	tempPath := fmt.Sprintf("%s.%d.tmp", exportPath, now.UnixNano())
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	enc := json.NewEncoder(file)
	header := ExportHeader{
		ReldraftExport: true,
		SchemaVersion:  "1.0",
		ExportedAt:     now.Unix(),
	}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}
	for i := range drafts {
		if err := enc.Encode(&drafts[i]); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	if err := os.Rename(tempPath, exportPath); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export file: %w", err))
	}
	success = true

	return &ExportOutput{
		Path:       exportPath,
		Count:      len(drafts),
		ExportedAt: now.Unix(),
	}, nil
}

// defaultExportPath places exports under ~/.reldraft/exports.
func defaultExportPath(now time.Time) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	name := fmt.Sprintf("drafts-%s.jsonl", now.Format("20060102-150405"))
	return filepath.Join(homeDir, ".reldraft", "exports", name), nil
}

// validateExportPath checks traversal, extension, and directory restrictions.
// With allow_unsafe_paths set, only traversal and extension checks apply.
func validateExportPath(path string, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ".jsonl" {
		return errors.NewInvalidRequest("path must have .jsonl extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if cfg != nil && cfg.AllowUnsafePaths {
		return nil
	}

	allowedDirs, err := allowedExportDirs(cfg)
	if err != nil {
		return err
	}

	parentDir := filepath.Dir(absPath)
	for _, dir := range allowedDirs {
		if parentDir == dir {
			return nil
		}
	}
	return errors.NewInvalidRequest(
		fmt.Sprintf("file must be directly in an allowed directory; allowed: %v", allowedDirs))
}

// allowedExportDirs returns ~/.reldraft/exports plus any configured allowlist
// entries (absolute paths only).
func allowedExportDirs(cfg *config.Config) ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}

	dirs := []string{filepath.Join(homeDir, ".reldraft", "exports")}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}
	return dirs, nil
}

// containsTraversal reports whether any path element is "..".
func containsTraversal(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
