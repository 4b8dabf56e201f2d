package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/newsdesk/internal/newsdesk"
)

// NewRoot builds the command tree. app is populated by the caller's
// Before hook; commands only dereference it while running.
func NewRoot(flags *Flags, app *newsdesk.App, version string) *cli.Command {
	root := &cli.Command{
		Name:      "newsdesk",
		Usage:     "Read the news and its comment threads from the terminal",
		UsageText: "newsdesk [global options] command [command options]",
		Description: `Newsdesk shows the current stories with their comment threads.
Moderators can delete comments in place.

Run 'newsdesk' with no arguments to open the interactive reader.
Run 'newsdesk serve' to start a local backend with fixture data.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("NEWSDESK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("NEWSDESK_LOG_FILE"),
				Value:       DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("NEWSDESK_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "api-url",
				Usage:       "backend base URL (overrides api.base_url)",
				Sources:     cli.EnvVars("NEWSDESK_API_URL"),
				Destination: &flags.APIURL,
			},
		},
	}

	tuiCmd := NewTuiCmd(flags, app)

	root = NewStoriesCmd(flags, app).Register(root)
	root = NewCommentsCmd(flags, app).Register(root)
	root = NewWhoamiCmd(flags, app).Register(root)
	root = NewServeCmd(flags).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)

	// Register TUI flags on root command
	root.Flags = append(root.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'newsdesk --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	return root
}
