package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog"

	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/eventbus"
	"github.com/colonyops/newsdesk/internal/core/notify"
	"github.com/colonyops/newsdesk/internal/core/styles"
	"github.com/colonyops/newsdesk/internal/newsdesk"
)

// Options configures the TUI.
type Options struct {
	Service Service
	Bus     *eventbus.EventBus // notifications are shown as toasts; may be nil

	Masthead   string
	DateFormat string
	ToastTTL   time.Duration
	Now        func() time.Time
	Logger     zerolog.Logger
}

// Model is the main Bubble Tea model for the reader.
type Model struct {
	ctx context.Context
	svc Service
	log zerolog.Logger

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	toasts        *ToastController
	toastView     *ToastView
	notifications *NotificationBuffer
	changes       changeSignal

	masthead   string
	dateFormat string
	now        func() time.Time

	state   newsdesk.State
	rows    []row
	cursor  int
	compose *composer

	showHelp bool
	width    int
	height   int
}

// New creates a new TUI model. The model stops waiting for background
// updates once ctx is cancelled.
func New(ctx context.Context, opts Options) Model {
	if opts.Masthead == "" {
		opts.Masthead = defaultMasthead
	}
	if opts.DateFormat == "" {
		opts.DateFormat = defaultDateFormat
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	h := help.New()
	h.Styles.ShortKey = styles.HelpStyle
	h.Styles.ShortDesc = styles.HelpStyle
	h.Styles.FullKey = styles.HelpStyle
	h.Styles.FullDesc = styles.HelpStyle

	toasts := NewToastController(opts.ToastTTL)
	notifications := NewNotificationBuffer()
	changes := newChangeSignal()

	opts.Service.OnChange(func(newsdesk.State) { changes.notify() })
	if opts.Bus != nil {
		opts.Bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
			notifications.Push(notify.Notification{Level: p.Level, Message: p.Message})
		})
	}

	m := Model{
		ctx:           ctx,
		svc:           opts.Service,
		log:           opts.Logger,
		keys:          DefaultKeyMap(),
		help:          h,
		spinner:       s,
		toasts:        toasts,
		toastView:     NewToastView(toasts),
		notifications: notifications,
		changes:       changes,
		masthead:      opts.Masthead,
		dateFormat:    opts.DateFormat,
		now:           opts.Now,
	}
	return m.refresh()
}

// Init starts the initial fetches and the background listeners.
func (m Model) Init() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	mount := func() tea.Msg {
		return mountedMsg{err: svc.Mount(ctx)}
	}

	return tea.Batch(
		mount,
		m.spinner.Tick,
		m.changes.wait(m.ctx),
		m.notifications.WaitForSignal(m.ctx),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.compose != nil {
			return m.updateCompose(msg)
		}
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case mountedMsg:
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Msg("mount finished with error")
		}
		return m.refresh(), nil

	case stateChangedMsg:
		return m.refresh(), m.changes.wait(m.ctx)

	case actionDoneMsg:
		m = m.refresh()
		if msg.err == nil || !surfaceError(msg) {
			return m, nil
		}
		m.log.Debug().Err(msg.err).Str("action", msg.action.String()).Msg("action failed")
		m.toasts.Push(notify.Notification{
			Level:     notify.LevelError,
			Message:   fmt.Sprintf("could not %s: %v", msg.action, msg.err),
			CreatedAt: m.now(),
		})
		return m, m.startToastTicker()

	case drainNotificationsMsg:
		for _, n := range m.notifications.Drain() {
			m.toasts.Push(n)
		}
		return m, tea.Batch(m.startToastTicker(), m.notifications.WaitForSignal(m.ctx))

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toasts.SetTicking(false)
		return m, nil
	}

	if m.compose != nil {
		return m.updateCompose(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r, _ := m.selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.Dismiss()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.applyKeys()
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		m.applyKeys()
	case key.Matches(msg, m.keys.Toggle):
		uri := r.uri
		return m, m.run(actionToggle, func(ctx context.Context) error {
			return m.svc.Toggle(ctx, uri)
		})
	case key.Matches(msg, m.keys.Delete):
		uri, id := r.uri, r.comment.ID
		return m, m.run(actionDelete, func(ctx context.Context) error {
			return m.svc.Delete(ctx, uri, id)
		})
	case key.Matches(msg, m.keys.Compose):
		story := m.state.Stories[r.story]
		m.compose = newComposer(story.URI, story.Headline)
		return m, m.compose.form.Init()
	case key.Matches(msg, m.keys.RefreshFeed):
		return m, m.run(actionRefreshFeed, m.svc.RefreshFeed)
	case key.Matches(msg, m.keys.RefreshThread):
		uri := r.uri
		return m, m.run(actionRefreshThread, func(ctx context.Context) error {
			return m.svc.RefreshThread(ctx, uri)
		})
	case key.Matches(msg, m.keys.Logout):
		return m, m.run(actionLogout, m.svc.Logout)
	}

	return m, nil
}

func (m Model) updateCompose(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case k.Type == tea.KeyCtrlC:
			return m, tea.Quit
		case k.Type == tea.KeyEsc:
			m.compose = nil
			return m, nil
		}
	}

	form, cmd := m.compose.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.compose.form = f
	}

	switch {
	case m.compose.completed():
		uri, text := m.compose.uri, m.compose.text()
		m.compose = nil
		return m, tea.Batch(cmd, m.run(actionPost, func(ctx context.Context) error {
			_, err := m.svc.Post(ctx, uri, text)
			return err
		}))
	case m.compose.aborted():
		m.compose = nil
	}
	return m, cmd
}

// run executes fn off the UI loop and reports the result as actionDoneMsg.
func (m Model) run(a action, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: a, err: fn(ctx)}
	}
}

func (m Model) startToastTicker() tea.Cmd {
	if m.toasts.Ticking() || !m.toasts.HasToasts() {
		return nil
	}
	m.toasts.SetTicking(true)
	return scheduleToastTick()
}

// refresh pulls the current state and keeps the cursor on the same row.
func (m Model) refresh() Model {
	prev, hadPrev := m.selected()

	m.state = m.svc.State()
	m.rows = buildRows(m.state)
	if hadPrev {
		m.cursor = relocate(m.rows, prev.key(), prev.uri, m.cursor)
	} else {
		m.cursor = relocate(m.rows, "", "", m.cursor)
	}
	m.applyKeys()
	return m
}

func (m *Model) applyKeys() {
	r, ok := m.selected()
	m.keys.applyState(r, ok, m.state.CanDelete, m.state.CanComment, m.state.Session.IsAuthenticated())
}

func (m Model) selected() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

// surfaceError reports whether a failed action needs its own toast. Feed
// and thread failures render inline, and rolled back deletes are already
// announced through the bus.
func surfaceError(msg actionDoneMsg) bool {
	if errors.Is(msg.err, context.Canceled) {
		return false
	}
	switch msg.action {
	case actionToggle, actionRefreshFeed, actionRefreshThread:
		return false
	case actionDelete:
		return !errors.Is(msg.err, comments.ErrDeleteFailed)
	default:
		return true
	}
}
