package changelog

import (
	"os"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/reldraft/reldraft/internal/errors"
	"github.com/reldraft/reldraft/internal/semver"
)

// RecordedSince reads the repository's changelog document and returns the
// entries recorded under version headings strictly newer than since. The
// document is the persisted changelog store: one `## <version>` heading per
// released version (optionally followed by a date or other trailing text),
// each with a bulleted entry list. reldraft only ever reads it.
//
// A missing document means nothing has been recorded yet and yields an empty
// list. Headings whose first token is not a version are not release headings
// and are skipped along with their lists.
func RecordedSince(path string, since semver.Version) ([]string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewInternal(err)
	}

	doc := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	seen := make(map[string]bool)
	var entries []string
	collecting := false

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level != 2 {
				continue
			}
			collecting = false
			if v, ok := headingVersion(node, src); ok && since.Less(v) {
				collecting = true
			}
		case *ast.List:
			if !collecting {
				continue
			}
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				entry := strings.TrimSpace(nodeText(item, src))
				if entry == "" || seen[entry] {
					continue
				}
				seen[entry] = true
				entries = append(entries, entry)
			}
		}
	}

	sort.Strings(entries)
	return entries, nil
}

// headingVersion parses the first whitespace-separated token of a heading as a
// version.
func headingVersion(h *ast.Heading, src []byte) (semver.Version, bool) {
	fields := strings.Fields(nodeText(h, src))
	if len(fields) == 0 {
		return semver.Version{}, false
	}
	v, err := semver.Parse(fields[0])
	if err != nil {
		return semver.Version{}, false
	}
	return v, true
}

// nodeText concatenates the raw text segments under a node.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
