// Package changelog turns raw commit subjects into deduplicated, human-readable
// changelog entries, and looks up entries already recorded in the repository's
// CHANGELOG.md so production drafts do not repeat notes published under
// intervening beta releases.
package changelog

import (
	"regexp"
	"sort"
	"strings"

	"github.com/reldraft/reldraft/internal/errors"
)

// subjectPattern matches a conventional commit subject:
// type(scope)!: description. The scope and the breaking-change marker are
// optional.
var subjectPattern = regexp.MustCompile(`^([a-z]+)(\([^)]*\))?(!)?:\s+(\S.*)$`)

// mergePrefixes mark merge-commit subjects, which are never changelog material.
var mergePrefixes = []string{"Merge ", "Merged "}

// ToEntries parses raw log lines into a deduplicated, lexicographically sorted
// entry list.
//
// Blank lines and merge subjects are skipped. A line matching the conventional
// commit shape becomes an entry in normalized form (single space after the
// colon, trailing whitespace trimmed), which makes ToEntries a fixed point on
// its own output. Any other line is skipped in lenient mode and fails with
// UNPARSABLE_LOG_LINE in strict mode. The function is total: it terminates on
// any finite input.
func ToEntries(lines []string, strict bool) ([]string, error) {
	seen := make(map[string]bool)
	entries := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || isMergeSubject(line) {
			continue
		}

		m := subjectPattern.FindStringSubmatch(line)
		if m == nil {
			if strict {
				return nil, errors.NewUnparsableLogLine(line)
			}
			continue
		}

		entry := m[1] + m[2] + m[3] + ": " + strings.TrimRight(m[4], " \t")
		if seen[entry] {
			continue
		}
		seen[entry] = true
		entries = append(entries, entry)
	}

	sort.Strings(entries)
	return entries, nil
}

// AllBlank reports whether every line is empty or whitespace-only. An all-blank
// sequence is the collector's signal that nothing was committed since the
// reference point.
func AllBlank(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

// Subtract returns the entries of fresh that are not present in recorded,
// preserving order. Matching is by exact entry text, the same identity used
// for deduplication.
func Subtract(fresh, recorded []string) []string {
	drop := make(map[string]bool, len(recorded))
	for _, e := range recorded {
		drop[e] = true
	}

	kept := make([]string, 0, len(fresh))
	for _, e := range fresh {
		if !drop[e] {
			kept = append(kept, e)
		}
	}
	return kept
}

func isMergeSubject(line string) bool {
	for _, p := range mergePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
