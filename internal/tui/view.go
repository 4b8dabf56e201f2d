package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/feed"
	"github.com/colonyops/newsdesk/internal/core/styles"
	"github.com/colonyops/newsdesk/internal/newsdesk"
)

// View renders the reader.
func (m Model) View() string {
	header := m.renderHeader()
	status := m.renderStatus()
	footer := m.renderFooter()

	reserved := lipgloss.Height(header) + lipgloss.Height(footer)
	sections := []string{header}
	if status != "" {
		sections = append(sections, status)
		reserved += lipgloss.Height(status)
	}

	body, cursorLine := m.renderBody()
	body = m.window(body, cursorLine, reserved)
	if len(body) > 0 {
		sections = append(sections, strings.Join(body, "\n"))
	}
	sections = append(sections, footer)

	return m.toastView.Attach(lipgloss.JoinVertical(lipgloss.Left, sections...), m.width)
}

func (m Model) renderHeader() string {
	title := styles.MastheadStyle.Render(styles.IconNewspaper + " " + m.masthead)
	date := styles.DateStyle.Render(m.now().Format(m.dateFormat))

	left := title + "  " + date
	account := m.renderAccount()

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(account), 2)
	line := left + strings.Repeat(" ", gap) + account

	width := max(m.width, lipgloss.Width(line))
	return line + "\n" + styles.DividerStyle.Render(strings.Repeat("─", width))
}

// renderAccount shows the login affordance for anonymous sessions and the
// logout affordance otherwise.
func (m Model) renderAccount() string {
	st := m.state
	if !st.SessionResolved {
		return ""
	}

	if !st.Session.IsAuthenticated() {
		return styles.AccountStyle.Render("log in") + " " + styles.LinkStyle.Render(m.svc.LoginURL())
	}

	icon := styles.IconUser
	if st.Session.IsModerator() {
		icon = styles.IconShield
	}
	return styles.AccountStyle.Render(icon+" "+st.Session.Email) +
		styles.MutedStyle.Render(" "+iconDot+" log out (L)")
}

// renderStatus renders the single loading indicator and feed errors.
func (m Model) renderStatus() string {
	st := m.state

	switch {
	case st.Loading:
		return m.spinner.View() + " " + styles.MutedStyle.Render("Loading…")
	case m.threadLoading():
		return m.spinner.View() + " " + styles.MutedStyle.Render("Loading comments…")
	}

	var lines []string
	if st.FeedStatus == feed.StatusFailed && len(st.Stories) == 0 {
		lines = append(lines, styles.ErrorStyle.Render(fmt.Sprintf("Could not load stories: %v", st.FeedErr))+
			styles.MutedStyle.Render(" press r to retry"))
	}
	if st.Skipped > 0 {
		lines = append(lines, styles.MutedStyle.Render(fmt.Sprintf("%d stories could not be shown", st.Skipped)))
	}
	if st.FeedStatus == feed.StatusLoaded && len(st.Stories) == 0 {
		lines = append(lines, styles.MutedStyle.Render("No stories right now."))
	}
	return strings.Join(lines, "\n")
}

func (m Model) threadLoading() bool {
	for _, s := range m.state.Stories {
		if s.Open && s.Thread.State == comments.Loading {
			return true
		}
	}
	return false
}

// renderBody renders stories and open threads line by line. It returns
// the first line of the selected row.
func (m Model) renderBody() ([]string, int) {
	var (
		lines      []string
		cursorLine int
		idx        int
	)

	for _, story := range m.state.Stories {
		if idx == m.cursor {
			cursorLine = len(lines)
		}
		lines = append(lines, m.renderStory(story, idx == m.cursor)...)
		idx++

		if !story.Open {
			continue
		}

		var thread []string
		for _, c := range story.Thread.Comments {
			if idx == m.cursor {
				cursorLine = len(lines) + len(thread)
			}
			thread = append(thread, m.renderComment(c, idx == m.cursor)...)
			idx++
		}
		thread = append(thread, m.renderThreadStatus(story.Thread)...)

		if len(thread) > 0 {
			panel := styles.PanelStyle.Render(strings.Join(thread, "\n"))
			lines = append(lines, strings.Split(panel, "\n")...)
		}
	}

	return lines, cursorLine
}

func (m Model) renderStory(story newsdesk.StoryView, selected bool) []string {
	cursor := " "
	headline := styles.HeadlineStyle
	if selected {
		cursor = styles.CursorStyle.Render(iconCursor)
		headline = styles.HeadlineSelectedStyle
	}

	title := cursor + " " + panelMarker(story.Open) + " " + headline.Render(story.Headline)
	if story.Thread.State == comments.Loaded {
		title += styles.MutedStyle.Render(fmt.Sprintf("  %s %d", styles.IconComment, len(story.Thread.Comments)))
	}

	lines := []string{title}
	if story.Abstract != "" {
		abstract := story.Abstract
		if m.width > commentIndent {
			abstract = ansi.Truncate(abstract, m.width-commentIndent, "…")
		}
		lines = append(lines, strings.Repeat(" ", commentIndent)+styles.AbstractStyle.Render(abstract))
	}
	return lines
}

func (m Model) renderComment(c newsdesk.CommentView, selected bool) []string {
	cursor := " "
	if selected {
		cursor = styles.CursorStyle.Render(iconCursor)
	}

	meta := cursor + " " + styles.CommentAuthorStyle.Render(c.Author)
	if !c.Created.IsZero() {
		meta += " " + styles.CommentTimeStyle.Render(humanize.RelTime(c.Created, m.now(), "ago", "from now"))
	}
	if selected && c.Deletable {
		meta += "  " + styles.DeleteHintStyle.Render("d delete")
	}

	text := styles.CommentTextStyle
	if selected {
		text = styles.CommentSelectedStyle
	}
	if w := m.width - 2*commentIndent; w > 0 {
		text = text.Width(w)
	}

	body := text.Render(c.Text)
	lines := []string{meta}
	for _, l := range strings.Split(body, "\n") {
		lines = append(lines, "  "+l)
	}
	return lines
}

func (m Model) renderThreadStatus(t newsdesk.ThreadView) []string {
	switch t.State {
	case comments.Failed:
		return []string{
			styles.ErrorStyle.Render(fmt.Sprintf("Could not load comments: %v", t.Err)) +
				styles.MutedStyle.Render(" press R to retry"),
		}
	case comments.Loaded:
		if len(t.Comments) == 0 {
			return []string{styles.MutedStyle.Render("No comments yet.")}
		}
	}
	return nil
}

func (m Model) renderFooter() string {
	if m.compose != nil {
		return styles.PanelStyle.Render(m.compose.form.View())
	}
	return m.help.View(m.keys)
}

// window cuts body to the terminal height, keeping cursorLine visible.
func (m Model) window(body []string, cursorLine, reserved int) []string {
	if m.height <= 0 {
		return body
	}

	avail := m.height - reserved - 1
	if avail <= 0 || len(body) <= avail {
		return body
	}

	start := max(cursorLine-avail/3, 0)
	start = min(start, len(body)-avail)
	return body[start : start+avail]
}
