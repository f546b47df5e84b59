package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/reldraft/reldraft/internal/config"
	"github.com/reldraft/reldraft/internal/errors"
	"github.com/reldraft/reldraft/internal/gitio"
	"github.com/reldraft/reldraft/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "reldraft",
		Usage:   "Draft release metadata for channel-based releases",
		Version: Version,
		Commands: []*cli.Command{
			draftCmd(db, cfg),
			latestCmd(cfg),
			changelogCmd(cfg),
			historyCmd(db),
			exportCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// draftCmd creates the draft command.
func draftCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "draft",
		Usage:     "Draft the next release for a channel",
		ArgsUsage: "<channel>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "repo", Aliases: []string{"r"}, Value: ".", Usage: "Path of the git repository"},
			&cli.BoolFlag{Name: "json", Usage: "Emit the full draft as JSON instead of operator steps"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("channel argument is required: production, beta, or test"))
			}

			repoPath := c.String("repo")
			input := ops.DraftInput{
				Channel:  c.Args().First(),
				RepoPath: repoPath,
			}

			output, err := ops.Draft(c.Context, db, cfg, gitio.Git{RepoPath: repoPath}, input)
			if err != nil {
				return outputError(err)
			}

			if c.Bool("json") {
				return outputJSON(output)
			}
			printDraft(output)
			return nil
		},
	}
}

// latestCmd creates the latest command.
func latestCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "latest",
		Usage:     "Resolve the latest shipped release version for a channel",
		ArgsUsage: "<channel>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "repo", Aliases: []string{"r"}, Value: ".", Usage: "Path of the git repository"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("channel argument is required: production, beta, or test"))
			}

			output, err := ops.Latest(c.Context, cfg, gitio.Git{RepoPath: c.String("repo")}, ops.LatestInput{
				Channel: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// changelogCmd creates the changelog command.
func changelogCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "changelog",
		Usage:     "Format changelog entries introduced since a reference tag",
		ArgsUsage: "<ref>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "repo", Aliases: []string{"r"}, Value: ".", Usage: "Path of the git repository"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("ref argument is required, e.g. release-1.2.0"))
			}

			output, err := ops.Changelog(c.Context, cfg, gitio.Git{RepoPath: c.String("repo")}, ops.ChangelogInput{
				Ref: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List previously recorded drafts, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "channel", Aliases: []string{"c"}, Usage: "Filter by channel: production, beta, or test"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.History(db, ops.HistoryInput{
				Channel: c.String("channel"),
				Limit:   c.Int("limit"),
				Offset:  c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the draft history to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.reldraft/exports/drafts-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(db, cfg, ops.ExportInput{
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// Helper functions

// printDraft renders the human-oriented draft view: the version-to-entries
// mapping followed by the numbered operator steps.
func printDraft(output *ops.DraftOutput) {
	fmt.Printf("%s -> %s (%s)\n\n", output.PreviousVersion, output.NextVersion, output.Channel)

	if len(output.Entries) > 0 {
		fmt.Printf("%s:\n", output.NextVersion)
		for _, entry := range output.Entries {
			fmt.Printf("  - %s\n", entry)
		}
		fmt.Println()
	}

	for i, step := range output.Steps {
		fmt.Printf("%d. %s\n", i+1, step)
	}
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if dErr, ok := err.(*errors.DraftError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", dErr.Code, dErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
