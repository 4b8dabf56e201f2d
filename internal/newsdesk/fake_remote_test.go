package newsdesk

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/eventbus"
	"github.com/colonyops/newsdesk/internal/core/eventbus/testbus"
	"github.com/colonyops/newsdesk/internal/core/feed"
	"github.com/colonyops/newsdesk/internal/core/session"
)

var errBackend = errors.New("backend unavailable")

// gate blocks a fake call until released. A nil gate never blocks.
type gate chan struct{}

func newGate() gate { return make(gate) }

func (g gate) release() { close(g) }

func (g gate) wait(ctx context.Context) error {
	if g == nil {
		return nil
	}
	select {
	case <-g:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fakeRemote implements AuthRemote, StoriesRemote and CommentsRemote.
type fakeRemote struct {
	mu sync.Mutex

	user    *session.UserInfo // nil answers userErr or errBackend
	userErr error
	docs    []json.RawMessage
	docsErr error
	threads map[string][]comments.Comment
	listErr error
	delErr  error

	userGate   gate
	docsGate   gate
	listGate   gate
	deleteGate gate

	calls map[string]int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		threads: make(map[string][]comments.Comment),
		calls:   make(map[string]int),
	}
}

func (f *fakeRemote) count(key string) {
	f.mu.Lock()
	f.calls[key]++
	f.mu.Unlock()
}

// Calls returns how often key was called. Keys are "userinfo", "logout",
// "stories", "comments <uri>", "delete <uri> <id>" and "post <uri>".
func (f *fakeRemote) Calls(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeRemote) set(fn func(f *fakeRemote)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeRemote) UserInfo(ctx context.Context) (session.UserInfo, error) {
	f.mu.Lock()
	f.calls["userinfo"]++
	g := f.userGate
	user, userErr := f.user, f.userErr
	f.mu.Unlock()

	if err := g.wait(ctx); err != nil {
		return session.UserInfo{}, err
	}
	if user == nil {
		if userErr != nil {
			return session.UserInfo{}, userErr
		}
		return session.UserInfo{}, errBackend
	}
	return *user, nil
}

func (f *fakeRemote) Logout(context.Context) error {
	f.count("logout")
	f.mu.Lock()
	f.user = nil
	f.mu.Unlock()
	return nil
}

func (f *fakeRemote) LoginURL() string { return "http://backend.test/api/auth/login" }

func (f *fakeRemote) Documents(ctx context.Context) ([]json.RawMessage, error) {
	f.count("stories")
	if err := f.docsGate.wait(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docsErr != nil {
		return nil, f.docsErr
	}
	return f.docs, nil
}

func (f *fakeRemote) Comments(ctx context.Context, uri string) ([]comments.Comment, error) {
	f.count("comments " + uri)

	// The response is computed before the gate, like a server that
	// answered while the reply was still in transit.
	f.mu.Lock()
	g := f.listGate
	listErr := f.listErr
	out := make([]comments.Comment, len(f.threads[uri]))
	copy(out, f.threads[uri])
	f.mu.Unlock()

	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	if listErr != nil {
		return nil, listErr
	}
	return out, nil
}

func (f *fakeRemote) DeleteComment(ctx context.Context, uri, id string) error {
	f.count("delete " + uri + " " + id)

	f.mu.Lock()
	g := f.deleteGate
	f.mu.Unlock()
	if err := g.wait(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	list := f.threads[uri]
	for i, c := range list {
		if c.ID == id {
			f.threads[uri] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeRemote) PostComment(_ context.Context, uri string, draft comments.Draft) (comments.Comment, error) {
	f.count("post " + uri)

	f.mu.Lock()
	defer f.mu.Unlock()
	c := comments.Comment{
		ID:     "posted-" + draft.Text,
		Author: draft.Author,
		Text:   draft.Text,
	}
	f.threads[uri] = append(f.threads[uri], c)
	return c, nil
}

func doc(t *testing.T, uri, headline string) json.RawMessage {
	t.Helper()
	bits, err := json.Marshal(map[string]any{
		"uri":      uri,
		"headline": map[string]string{"main": headline},
		"abstract": headline + " abstract",
	})
	if err != nil {
		t.Fatal(err)
	}
	return bits
}

func threadOf(ids ...string) []comments.Comment {
	out := make([]comments.Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, comments.Comment{ID: id, Author: "author " + id, Text: "text " + id})
	}
	return out
}

func ids(list []comments.Comment) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

type harness struct {
	remote   *fakeRemote
	bus      *testbus.Bus
	sessions *SessionResolver
	feed     *FeedLoader
	store    *CommentStore
	coord    *Coordinator
}

func newHarness(t *testing.T, remote *fakeRemote) *harness {
	t.Helper()

	bus := testbus.New(t)
	eventbus.NewNotificationRouter(bus.EventBus).Register()
	log := zerolog.Nop()

	sessions := NewSessionResolver(remote, "", bus.EventBus, log)
	feedLoader := NewFeedLoader(remote, feed.Mapper{}, bus.EventBus, log)
	store := NewCommentStore(remote, bus.EventBus, nil, log)
	coord := NewCoordinator(sessions, feedLoader, store, bus.EventBus, log)

	return &harness{
		remote:   remote,
		bus:      bus,
		sessions: sessions,
		feed:     feedLoader,
		store:    store,
		coord:    coord,
	}
}

func moderatorSession() session.Session {
	return session.FromUserInfo(session.UserInfo{Email: "moderator@example.com", Groups: []string{"moderator"}}, "")
}

func readerSession() session.Session {
	return session.FromUserInfo(session.UserInfo{Email: "user@example.com"}, "")
}
