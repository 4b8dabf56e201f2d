package newsdesk

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/colonyops/newsdesk/internal/core/capability"
	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/eventbus"
	"github.com/colonyops/newsdesk/internal/core/feed"
	"github.com/colonyops/newsdesk/internal/core/session"
)

// State is the render-ready view of the whole app.
type State struct {
	Session         session.Session
	SessionResolved bool

	FeedStatus feed.Status
	FeedErr    error
	Skipped    int

	// Loading drives the single loading indicator. It tracks the feed
	// only; comment loads are reported per story.
	Loading bool

	CanDelete  bool
	CanComment bool

	Stories []StoryView
}

// StoryView is a story with its panel state.
type StoryView struct {
	feed.Story
	Open   bool
	Thread ThreadView
}

// ThreadView is the comment panel of one story.
type ThreadView struct {
	State    comments.LoadState
	Err      error
	Comments []CommentView
}

// CommentView is a comment with its allowed actions.
type CommentView struct {
	comments.Comment
	Deletable bool
}

// Story returns the view of uri.
func (s State) Story(uri string) (StoryView, bool) {
	for _, st := range s.Stories {
		if st.URI == uri {
			return st, true
		}
	}
	return StoryView{}, false
}

// Coordinator combines the session, feed and comment threads into State
// and dispatches user actions. It never talks to the network itself.
type Coordinator struct {
	sessions *SessionResolver
	feed     *FeedLoader
	comments *CommentStore
	log      zerolog.Logger

	mu        sync.Mutex
	open      map[string]bool
	listeners []func(State)
}

// NewCoordinator creates a coordinator and subscribes it to bus.
func NewCoordinator(
	sessions *SessionResolver,
	feedLoader *FeedLoader,
	store *CommentStore,
	bus *eventbus.EventBus,
	log zerolog.Logger,
) *Coordinator {
	c := &Coordinator{
		sessions: sessions,
		feed:     feedLoader,
		comments: store,
		log:      log,
		open:     make(map[string]bool),
	}

	bus.SubscribeSessionResolved(func(eventbus.SessionResolvedPayload) { c.changed() })
	bus.SubscribeFeedChanged(func(eventbus.FeedChangedPayload) { c.changed() })
	bus.SubscribeThreadChanged(func(eventbus.ThreadChangedPayload) { c.changed() })

	return c
}

// OnChange registers fn to receive the state after every change.
func (c *Coordinator) OnChange(fn func(State)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Coordinator) changed() {
	c.mu.Lock()
	listeners := make([]func(State), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	if len(listeners) == 0 {
		return
	}

	state := c.State()
	for _, fn := range listeners {
		fn(state)
	}
}

// State computes the current view state.
func (c *Coordinator) State() State {
	sess, resolved := c.sessions.Current()
	fs := c.feed.State()
	canDelete := capability.CanDelete(sess)

	c.mu.Lock()
	open := make(map[string]bool, len(c.open))
	for uri := range c.open {
		open[uri] = true
	}
	c.mu.Unlock()

	stories := make([]StoryView, 0, len(fs.Stories))
	for _, story := range fs.Stories {
		snap := c.comments.Snapshot(story.URI)
		views := make([]CommentView, 0, len(snap.Comments))
		for _, cm := range snap.Comments {
			views = append(views, CommentView{Comment: cm, Deletable: canDelete})
		}
		stories = append(stories, StoryView{
			Story: story,
			Open:  open[story.URI],
			Thread: ThreadView{
				State:    snap.State,
				Err:      snap.Err,
				Comments: views,
			},
		})
	}

	return State{
		Session:         sess,
		SessionResolved: resolved,
		FeedStatus:      fs.Status,
		FeedErr:         fs.Err,
		Skipped:         fs.Skipped,
		Loading:         fs.Status == feed.StatusLoading,
		CanDelete:       canDelete,
		CanComment:      capability.CanComment(sess),
		Stories:         stories,
	}
}

// Mount resolves the session and loads the feed concurrently. The two
// are independent: a failure of one does not cancel the other. The
// returned error is the feed error, if any.
func (c *Coordinator) Mount(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		c.sessions.Resolve(ctx)
		return nil
	})
	g.Go(func() error {
		return c.feed.Load(ctx)
	})
	return g.Wait()
}

// Open expands the story panel and loads its comments if needed.
func (c *Coordinator) Open(ctx context.Context, uri string) error {
	c.mu.Lock()
	c.open[uri] = true
	c.mu.Unlock()

	c.changed()
	return c.comments.Open(ctx, uri)
}

// Close collapses the story panel. The loaded thread is kept.
func (c *Coordinator) Close(uri string) {
	c.mu.Lock()
	delete(c.open, uri)
	c.mu.Unlock()

	c.changed()
}

// Toggle opens a closed panel or closes an open one.
func (c *Coordinator) Toggle(ctx context.Context, uri string) error {
	if c.IsOpen(uri) {
		c.Close(uri)
		return nil
	}
	return c.Open(ctx, uri)
}

// IsOpen reports whether the panel of uri is expanded.
func (c *Coordinator) IsOpen(uri string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open[uri]
}

// Delete deletes a comment as the current session.
func (c *Coordinator) Delete(ctx context.Context, uri, id string) error {
	sess, _ := c.sessions.Current()
	if !capability.CanDelete(sess) {
		c.log.Debug().Str("article", uri).Str("comment", id).Msg("delete hidden for session, ignoring")
		return comments.ErrForbidden
	}
	return c.comments.Delete(ctx, uri, id, sess)
}

// Post posts a comment as the current session.
func (c *Coordinator) Post(ctx context.Context, uri, text string) (comments.Comment, error) {
	sess, _ := c.sessions.Current()
	return c.comments.Post(ctx, uri, text, sess)
}

// RefreshFeed reloads the story feed.
func (c *Coordinator) RefreshFeed(ctx context.Context) error {
	return c.feed.Refresh(ctx)
}

// RefreshThread reloads the comments of uri.
func (c *Coordinator) RefreshThread(ctx context.Context, uri string) error {
	return c.comments.Refresh(ctx, uri)
}

// Logout ends the session and resolves it again.
func (c *Coordinator) Logout(ctx context.Context) error {
	_, err := c.sessions.Logout(ctx)
	return err
}

// LoginURL is where the user starts the login flow.
func (c *Coordinator) LoginURL() string {
	return c.sessions.LoginURL()
}
