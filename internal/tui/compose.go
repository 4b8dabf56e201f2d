package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

const maxCommentLength = 2000

// composer is the comment form of one story.
type composer struct {
	uri   string
	draft *string
	form  *huh.Form
}

func newComposer(uri, headline string) *composer {
	draft := new(string)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Comment on " + headline).
				Description("enter to post, esc to cancel").
				CharLimit(maxCommentLength).
				Value(draft).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("comment cannot be empty")
					}
					return nil
				}),
		),
	).WithShowHelp(false)

	return &composer{uri: uri, draft: draft, form: form}
}

func (c *composer) completed() bool {
	return c.form.State == huh.StateCompleted
}

func (c *composer) aborted() bool {
	return c.form.State == huh.StateAborted
}

func (c *composer) text() string {
	return strings.TrimSpace(*c.draft)
}
