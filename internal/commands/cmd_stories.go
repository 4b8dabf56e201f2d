package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/styles"
	"github.com/colonyops/newsdesk/internal/newsdesk"
)

type StoriesCmd struct {
	flags  *Flags
	app    *newsdesk.App
	format string
	raw    bool
}

// NewStoriesCmd creates a new stories command
func NewStoriesCmd(flags *Flags, app *newsdesk.App) *StoriesCmd {
	return &StoriesCmd{flags: flags, app: app}
}

// Register adds the stories command to the application
func (cmd *StoriesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "stories",
		Usage:     "List the current stories",
		UsageText: "newsdesk stories [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (auto, table, json)",
				Value:       formatAuto,
				Destination: &cmd.format,
			},
		},
		Action: cmd.list,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a story with its comments",
				UsageText: "newsdesk stories show <uri>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "raw",
						Usage:       "print markdown without rendering",
						Destination: &cmd.raw,
					},
				},
				Action: cmd.show,
			},
		},
	})

	return app
}

func (cmd *StoriesCmd) list(ctx context.Context, c *cli.Command) error {
	w := c.Root().Writer

	format, err := resolveFormat(cmd.format, w)
	if err != nil {
		return err
	}

	if err := cmd.app.Feed.Load(ctx); err != nil {
		return err
	}
	st := cmd.app.Feed.State()
	if st.Skipped > 0 {
		log.Warn().Int("skipped", st.Skipped).Msg("some stories could not be mapped")
	}

	if format == formatJSON {
		return writeJSON(w, c.Root().ErrWriter, st.Stories)
	}

	if len(st.Stories) == 0 {
		_, _ = fmt.Fprintln(w, styles.MutedStyle.Render("No stories right now."))
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.DividerStyle).
		Headers("HEADLINE", "URI").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.CommandHeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, s := range st.Stories {
		t.Row(s.Headline, s.URI)
	}

	_, err = fmt.Fprintln(w, t.String())
	return err
}

func (cmd *StoriesCmd) show(ctx context.Context, c *cli.Command) error {
	uri := c.Args().First()
	if uri == "" {
		return errors.New("story uri is required")
	}

	if err := cmd.app.Coordinator.Mount(ctx); err != nil {
		return err
	}
	if err := cmd.app.Coordinator.Open(ctx, uri); err != nil {
		return err
	}

	story, ok := cmd.app.Coordinator.State().Story(uri)
	if !ok {
		return fmt.Errorf("story %q not found", uri)
	}

	md := storyMarkdown(story)

	w := c.Root().Writer
	if cmd.raw || !isTerminal(w) {
		_, err := fmt.Fprint(w, md)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(terminalWidth(w, 80), 100)),
	)
	if err != nil {
		log.Debug().Err(err).Msg("failed to create markdown renderer, showing raw content")
		_, err = fmt.Fprint(w, md)
		return err
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		log.Debug().Err(err).Msg("failed to render markdown, showing raw content")
		rendered = md
	}
	_, err = fmt.Fprint(w, rendered)
	return err
}

// storyMarkdown renders a story and its loaded thread as markdown.
func storyMarkdown(story newsdesk.StoryView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", story.Headline)
	if story.Abstract != "" {
		fmt.Fprintf(&b, "%s\n\n", story.Abstract)
	}
	if story.WebURL != "" {
		fmt.Fprintf(&b, "[Read the full story](%s)\n\n", story.WebURL)
	}

	switch story.Thread.State {
	case comments.Failed:
		fmt.Fprintf(&b, "_Could not load comments: %v_\n", story.Thread.Err)
		return b.String()
	case comments.Loaded:
	default:
		return b.String()
	}

	fmt.Fprintf(&b, "## Comments (%d)\n\n", len(story.Thread.Comments))
	if len(story.Thread.Comments) == 0 {
		b.WriteString("_No comments yet._\n")
	}
	for _, c := range story.Thread.Comments {
		fmt.Fprintf(&b, "**%s**", c.Author)
		if !c.Created.IsZero() {
			fmt.Fprintf(&b, " · %s", humanize.Time(c.Created))
		}
		fmt.Fprintf(&b, " `%s`\n\n", c.ID)
		for _, line := range strings.Split(c.Text, "\n") {
			fmt.Fprintf(&b, "> %s\n", line)
		}
		b.WriteString("\n")
	}

	return b.String()
}
