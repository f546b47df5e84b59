package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// TagPrefix is the namespace release tags live under.
	TagPrefix string `json:"tag_prefix,omitempty"`

	// PlatformMarkers lists pre-release qualifier labels that mark
	// platform-specific builds (excluded from latest-release resolution).
	PlatformMarkers []string `json:"platform_markers,omitempty"`

	// LenientTags skips malformed release tags instead of failing on them.
	LenientTags bool `json:"lenient_tags,omitempty"`

	// LenientLog skips commit subjects that do not match the changelog
	// convention instead of failing on them.
	LenientLog bool `json:"lenient_log,omitempty"`

	// ChangelogPath is the path of the recorded changelog document, relative
	// to the repository being drafted.
	ChangelogPath string `json:"changelog_path,omitempty"`

	// AllowedPaths is an allowlist of directories for export operations.
	// Paths outside ~/.reldraft/exports require either being in this list or
	// AllowUnsafePaths=true. Paths should be absolute.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		TagPrefix:       "release-",
		PlatformMarkers: []string{"linux", "mac", "windows"},
		ChangelogPath:   "CHANGELOG.md",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.reldraft.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.reldraft) and
// repo-local (.reldraft) directories. Repo config is found by walking upward
// from startDir to the nearest .reldraft/config.json and takes precedence for
// scalar values; arrays are merged and deduplicated.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .reldraft/config.json. Returns empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".reldraft", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and
// deduplicated. Booleans are or-ed: leniency enabled anywhere stays enabled.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.TagPrefix = overlay.TagPrefix
	if result.TagPrefix == "" {
		result.TagPrefix = base.TagPrefix
	}

	result.ChangelogPath = overlay.ChangelogPath
	if result.ChangelogPath == "" {
		result.ChangelogPath = base.ChangelogPath
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.LenientTags = base.LenientTags || overlay.LenientTags
	result.LenientLog = base.LenientLog || overlay.LenientLog
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.PlatformMarkers = mergeStringSlice(base.PlatformMarkers, overlay.PlatformMarkers)
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
