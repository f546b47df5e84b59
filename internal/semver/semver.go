// Package semver implements the version value type used across reldraft.
//
// Versions are a (major, minor, patch) triple with an optional pre-release
// qualifier of the form <label><iteration> (e.g. "beta4", "test1"). Ordering
// follows semantic-version precedence with one deliberate refinement: the
// iteration part of a qualifier compares numerically, so beta10 orders after
// beta9. Strict SemVer ASCII ordering would invert that and break monotonic
// iteration counters.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is an immutable semantic version value.
type Version struct {
	Major int
	Minor int
	Patch int
	Pre   string // pre-release qualifier, empty for final releases
}

// versionPattern matches "major.minor.patch" with an optional "-qualifier".
var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z][0-9A-Za-z.-]*))?$`)

// Parse converts version text into a Version. It accepts exactly the shape
// produced by String; anything else is an error, never a coerced value.
func Parse(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Version{}, fmt.Errorf("invalid semantic version %q", s)
	}

	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{}, fmt.Errorf("invalid semantic version %q", s)
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Version{}, fmt.Errorf("invalid semantic version %q", s)
	}
	patch, err := strconv.Atoi(m[3])
	if err != nil {
		return Version{}, fmt.Errorf("invalid semantic version %q", s)
	}

	return Version{Major: major, Minor: minor, Patch: patch, Pre: m[4]}, nil
}

// String renders the version in canonical form.
func (v Version) String() string {
	base := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre == "" {
		return base
	}
	return base + "-" + v.Pre
}

// IsFinal reports whether the version carries no pre-release qualifier.
func (v Version) IsFinal() bool {
	return v.Pre == ""
}

// PreParts splits the pre-release qualifier into its label and iteration
// counter ("beta4" → "beta", 4). A qualifier without trailing digits has
// iteration 0. Final versions return ("", 0).
func (v Version) PreParts() (string, int) {
	if v.Pre == "" {
		return "", 0
	}
	i := len(v.Pre)
	for i > 0 && v.Pre[i-1] >= '0' && v.Pre[i-1] <= '9' {
		i--
	}
	label := v.Pre[:i]
	iter := 0
	if i < len(v.Pre) {
		iter, _ = strconv.Atoi(v.Pre[i:])
	}
	return label, iter
}

// Compare returns -1, 0, or 1 ordering v against o by precedence.
// A final version orders after any pre-release of the same triple.
func (v Version) Compare(o Version) int {
	if c := cmpInt(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmpInt(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := cmpInt(v.Patch, o.Patch); c != 0 {
		return c
	}

	// Same triple: no qualifier wins.
	if v.Pre == "" && o.Pre == "" {
		return 0
	}
	if v.Pre == "" {
		return 1
	}
	if o.Pre == "" {
		return -1
	}

	vLabel, vIter := v.PreParts()
	oLabel, oIter := o.PreParts()
	if vLabel != oLabel {
		if vLabel < oLabel {
			return -1
		}
		return 1
	}
	return cmpInt(vIter, oIter)
}

// Less reports whether v orders strictly before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
