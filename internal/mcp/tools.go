package mcp

import "github.com/mark3labs/mcp-go/mcp"

var draftToolDef = mcp.NewTool("release_draft",
	mcp.WithDescription("Draft the next release for a channel: resolves the latest shipped version from release tags, computes the next version, and collects changelog entries from commit subjects since the last release. Requires a clean working tree. Nothing in the repository is modified."),
	mcp.WithString("channel", mcp.Required(),
		mcp.Description("Release channel: production, beta, or test")),
	mcp.WithString("repo_path",
		mcp.Description("Path of the git repository to draft from (default: current directory)")),
)

var latestToolDef = mcp.NewTool("release_latest",
	mcp.WithDescription("Resolve the latest shippable release version for a channel from the repository's release tags. Production resolution excludes beta-marked tags; platform and test tags are always excluded."),
	mcp.WithString("channel", mcp.Required(),
		mcp.Description("Release channel: production, beta, or test")),
	mcp.WithString("repo_path",
		mcp.Description("Path of the git repository (default: current directory)")),
)

var changelogToolDef = mcp.NewTool("changelog_since",
	mcp.WithDescription("Format the deduplicated changelog entries introduced since a reference tag, without computing a version."),
	mcp.WithString("ref", mcp.Required(),
		mcp.Description("Reference tag or revision, e.g. release-1.2.0")),
	mcp.WithString("repo_path",
		mcp.Description("Path of the git repository (default: current directory)")),
)

var historyToolDef = mcp.NewTool("draft_history",
	mcp.WithDescription("List previously recorded drafts, newest first."),
	mcp.WithString("channel",
		mcp.Description("Filter by channel: production, beta, or test")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum items to return (default 20, max 100)")),
	mcp.WithNumber("offset",
		mcp.Description("Items to skip")),
)

var exportToolDef = mcp.NewTool("draft_export",
	mcp.WithDescription("Export the draft history to a JSONL file under ~/.reldraft/exports (or an allowlisted directory)."),
	mcp.WithString("path",
		mcp.Description("Export file path (default: ~/.reldraft/exports/drafts-<timestamp>.jsonl)")),
)
