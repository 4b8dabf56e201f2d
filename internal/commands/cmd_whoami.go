package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/newsdesk/internal/core/styles"
	"github.com/colonyops/newsdesk/internal/newsdesk"
)

type WhoamiCmd struct {
	flags  *Flags
	app    *newsdesk.App
	format string
}

// NewWhoamiCmd creates a new whoami command
func NewWhoamiCmd(flags *Flags, app *newsdesk.App) *WhoamiCmd {
	return &WhoamiCmd{flags: flags, app: app}
}

// Register adds the whoami command to the application
func (cmd *WhoamiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "whoami",
		Usage: "Show the current session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (auto, table, json)",
				Value:       formatAuto,
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WhoamiCmd) run(ctx context.Context, c *cli.Command) error {
	w := c.Root().Writer
	format, err := resolveFormat(cmd.format, w)
	if err != nil {
		return err
	}

	s := cmd.app.Sessions.Resolve(ctx)

	if format == formatJSON {
		return writeJSON(w, c.Root().ErrWriter, s)
	}

	if !s.IsAuthenticated() {
		_, _ = fmt.Fprintln(w, styles.MutedStyle.Render("anonymous"))
		_, _ = fmt.Fprintln(w, "log in at "+styles.LinkStyle.Render(cmd.app.Sessions.LoginURL()))
		return nil
	}

	printHeader(w, s.Email)
	_, _ = fmt.Fprintln(w, styles.MutedStyle.Render(s.Status.String()))
	return nil
}
