package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/styles"
	"github.com/colonyops/newsdesk/internal/newsdesk"
	"github.com/colonyops/newsdesk/pkg/iojson"
)

type CommentsCmd struct {
	flags  *Flags
	app    *newsdesk.App
	format string
	draft  iojson.FileReader[comments.Draft]
}

// NewCommentsCmd creates a new comments command
func NewCommentsCmd(flags *Flags, app *newsdesk.App) *CommentsCmd {
	return &CommentsCmd{flags: flags, app: app}
}

// Register adds the comments command to the application
func (cmd *CommentsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "comments",
		Usage: "Read and moderate story comments",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List the comments of a story",
				UsageText: "newsdesk comments list <uri>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (auto, table, json)",
						Value:       formatAuto,
						Destination: &cmd.format,
					},
				},
				Action: cmd.list,
			},
			{
				Name:        "post",
				Usage:       "Post a comment as the current user",
				UsageText:   "newsdesk comments post <uri> [text...]",
				Description: `Posts text as a comment. Without text arguments the comment is read
as JSON ({"text": "..."}) from --file or stdin.`,
				Flags:  []cli.Flag{cmd.draft.Flag()},
				Action: cmd.post,
			},
			{
				Name:        "delete",
				Usage:       "Delete a comment (moderators only)",
				UsageText:   "newsdesk comments delete <uri> <id>",
				Description: "Deletes a comment. The current session must belong to the moderator group.",
				Action:      cmd.delete,
			},
		},
	})

	return app
}

func (cmd *CommentsCmd) list(ctx context.Context, c *cli.Command) error {
	uri := c.Args().First()
	if uri == "" {
		return errors.New("story uri is required")
	}

	w := c.Root().Writer
	format, err := resolveFormat(cmd.format, w)
	if err != nil {
		return err
	}

	if err := cmd.app.Comments.Open(ctx, uri); err != nil {
		return err
	}
	list := cmd.app.Comments.List(uri)

	if format == formatJSON {
		return writeJSON(w, c.Root().ErrWriter, list)
	}

	if len(list) == 0 {
		_, _ = fmt.Fprintln(w, styles.MutedStyle.Render("No comments yet."))
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.DividerStyle).
		Headers("ID", "AUTHOR", "CREATED", "TEXT").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.CommandHeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, cm := range list {
		t.Row(cm.ID, cm.Author, createdLabel(cm), cm.Text)
	}

	_, err = fmt.Fprintln(w, t.String())
	return err
}

func createdLabel(c comments.Comment) string {
	if c.Created.IsZero() {
		return "-"
	}
	return humanize.Time(c.Created)
}

func (cmd *CommentsCmd) post(ctx context.Context, c *cli.Command) error {
	args := c.Args().Slice()
	if len(args) == 0 {
		return errors.New("usage: newsdesk comments post <uri> [text...]")
	}
	uri, text := args[0], strings.Join(args[1:], " ")
	if text == "" {
		d, err := cmd.draft.Read()
		if err != nil {
			return err
		}
		text = d.Text
	}

	if s := cmd.app.Sessions.Resolve(ctx); !s.IsAuthenticated() {
		return fmt.Errorf("log in to comment: %s", cmd.app.Sessions.LoginURL())
	}

	created, err := cmd.app.Coordinator.Post(ctx, uri, text)
	if err != nil {
		return err
	}

	printSuccess(c.Root().Writer, "posted comment %s", created.ID)
	return nil
}

func (cmd *CommentsCmd) delete(ctx context.Context, c *cli.Command) error {
	uri, id := c.Args().Get(0), c.Args().Get(1)
	if uri == "" || id == "" {
		return errors.New("usage: newsdesk comments delete <uri> <id>")
	}

	if s := cmd.app.Sessions.Resolve(ctx); !s.IsModerator() {
		return fmt.Errorf("delete comment: %w (session is %s)", comments.ErrForbidden, s.Status)
	}

	if err := cmd.app.Coordinator.Open(ctx, uri); err != nil {
		return err
	}
	if err := cmd.app.Coordinator.Delete(ctx, uri, id); err != nil {
		return err
	}

	printSuccess(c.Root().Writer, "deleted comment %s", id)
	return nil
}
