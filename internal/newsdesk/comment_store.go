package newsdesk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/newsdesk/internal/core/capability"
	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/eventbus"
	"github.com/colonyops/newsdesk/internal/core/logging"
	"github.com/colonyops/newsdesk/internal/core/session"
	"github.com/colonyops/newsdesk/internal/metrics"
)

// Mutation kinds recorded in metrics.
const (
	mutationDelete = "delete"
	mutationPost   = "post"
)

// ThreadSnapshot is a copy of one thread's state.
type ThreadSnapshot struct {
	URI      string
	State    comments.LoadState
	Err      error
	Comments []comments.Comment
}

// CommentStore owns the comment threads of all stories. Threads are
// created lazily and cached for the lifetime of the store.
type CommentStore struct {
	remote  CommentsRemote
	bus     *eventbus.EventBus
	metrics *metrics.Metrics
	log     zerolog.Logger

	mu      sync.Mutex
	threads map[string]*comments.Thread
}

func NewCommentStore(remote CommentsRemote, bus *eventbus.EventBus, m *metrics.Metrics, log zerolog.Logger) *CommentStore {
	return &CommentStore{
		remote:  remote,
		bus:     bus,
		metrics: m,
		log:     log,
		threads: make(map[string]*comments.Thread),
	}
}

// thread returns the thread for uri, creating it. Callers hold s.mu.
func (s *CommentStore) thread(uri string) *comments.Thread {
	t, ok := s.threads[uri]
	if !ok {
		t = comments.NewThread(uri)
		s.threads[uri] = t
	}
	return t
}

// Open loads the thread when it is not loaded yet or its last load failed.
// It does nothing while a load is in flight or once the thread is loaded.
func (s *CommentStore) Open(ctx context.Context, uri string) error {
	return s.load(ctx, uri, false)
}

// Refresh reloads the thread. It does nothing while a load is in flight.
func (s *CommentStore) Refresh(ctx context.Context, uri string) error {
	return s.load(ctx, uri, true)
}

func (s *CommentStore) load(ctx context.Context, uri string, force bool) error {
	s.mu.Lock()
	start := s.thread(uri).BeginLoad(force)
	s.mu.Unlock()
	if !start {
		return nil
	}

	ctx = logging.WithArticle(ctx, uri)
	s.bus.PublishThreadChanged(eventbus.ThreadChangedPayload{URI: uri, State: comments.Loading})

	list, err := s.remote.Comments(ctx, uri)

	s.mu.Lock()
	t := s.thread(uri)
	if err != nil {
		err = fmt.Errorf("load comments: %w", err)
		t.FailLoad(err)
	} else {
		t.CompleteLoad(list)
	}
	state := t.State()
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("comment load failed")
	} else {
		s.log.Debug().Ctx(ctx).Int("comments", len(list)).Msg("comments loaded")
	}
	s.bus.PublishThreadChanged(eventbus.ThreadChangedPayload{URI: uri, State: state})
	return err
}

// List returns the visible comments of uri in server order. It is empty
// for a thread that was never loaded.
func (s *CommentStore) List(uri string) []comments.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[uri]
	if !ok {
		return []comments.Comment{}
	}
	return t.Comments()
}

// Snapshot returns the state of uri's thread.
func (s *CommentStore) Snapshot(uri string) ThreadSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[uri]
	if !ok {
		return ThreadSnapshot{URI: uri, State: comments.NotLoaded, Comments: []comments.Comment{}}
	}
	return ThreadSnapshot{
		URI:      uri,
		State:    t.State(),
		Err:      t.Err(),
		Comments: t.Comments(),
	}
}

// Delete removes a comment optimistically and then asks the backend to
// delete it. A failed request restores the comment at its original
// position and returns a *comments.DeleteError.
//
// Sessions that are not moderators get comments.ErrForbidden without any
// request. A delete of an id that is still in flight returns
// comments.ErrDeleteInFlight.
func (s *CommentStore) Delete(ctx context.Context, uri, id string, sess session.Session) error {
	if !capability.CanDelete(sess) {
		s.metrics.ObserveMutation(mutationDelete, metrics.OutcomeForbidden)
		return comments.ErrForbidden
	}

	ctx = logging.WithArticle(ctx, uri)

	s.mu.Lock()
	var (
		m     *comments.Mutation
		state comments.LoadState
		err   error
	)
	if t, ok := s.threads[uri]; ok {
		m, err = t.BeginDelete(id)
		state = t.State()
	} else {
		err = comments.ErrCommentNotFound
	}
	s.mu.Unlock()

	if err != nil {
		s.metrics.ObserveMutation(mutationDelete, metrics.OutcomeRejected)
		s.log.Debug().Ctx(ctx).Err(err).Str("comment", id).Msg("delete rejected")
		return err
	}

	s.bus.PublishThreadChanged(eventbus.ThreadChangedPayload{URI: uri, State: state})

	remoteErr := s.remote.DeleteComment(ctx, uri, id)

	s.mu.Lock()
	t := s.thread(uri)
	if remoteErr != nil {
		t.Rollback(m)
	} else {
		t.Commit(m)
	}
	state = t.State()
	s.mu.Unlock()

	s.bus.PublishThreadChanged(eventbus.ThreadChangedPayload{URI: uri, State: state})

	if remoteErr != nil {
		s.metrics.ObserveMutation(mutationDelete, metrics.OutcomeRolledBack)
		s.log.Warn().Ctx(ctx).Err(remoteErr).Str("comment", id).Msg("delete failed, restored comment")
		s.bus.PublishCommentDeleteFailed(eventbus.CommentDeleteFailedPayload{URI: uri, CommentID: id, Err: remoteErr})
		return &comments.DeleteError{URI: uri, CommentID: id, Err: remoteErr}
	}

	s.metrics.ObserveMutation(mutationDelete, metrics.OutcomeCommitted)
	s.log.Info().Ctx(ctx).Str("comment", id).Msg("comment deleted")
	s.bus.PublishCommentDeleted(eventbus.CommentDeletedPayload{URI: uri, CommentID: id})
	return nil
}

// Post creates a comment as the session's user. The stored comment is
// appended to the thread when the thread is loaded or loading.
func (s *CommentStore) Post(ctx context.Context, uri, text string, sess session.Session) (comments.Comment, error) {
	if !capability.CanComment(sess) {
		s.metrics.ObserveMutation(mutationPost, metrics.OutcomeForbidden)
		return comments.Comment{}, comments.ErrForbidden
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return comments.Comment{}, comments.ErrEmptyComment
	}

	ctx = logging.WithArticle(ctx, uri)

	created, err := s.remote.PostComment(ctx, uri, comments.Draft{Text: text, Author: sess.Email})
	if err != nil {
		s.metrics.ObserveMutation(mutationPost, metrics.OutcomeRejected)
		return comments.Comment{}, fmt.Errorf("post comment: %w", err)
	}
	if created.ID == "" {
		s.metrics.ObserveMutation(mutationPost, metrics.OutcomeRejected)
		return comments.Comment{}, errors.New("post comment: response has no id")
	}

	s.mu.Lock()
	t := s.thread(uri)
	appended := t.State() == comments.Loaded || t.State() == comments.Loading
	if appended {
		t.Append(created)
	}
	state := t.State()
	s.mu.Unlock()

	s.metrics.ObserveMutation(mutationPost, metrics.OutcomeCommitted)
	s.log.Info().Ctx(ctx).Str("comment", created.ID).Msg("comment posted")
	if appended {
		s.bus.PublishThreadChanged(eventbus.ThreadChangedPayload{URI: uri, State: state})
	}
	s.bus.PublishCommentPosted(eventbus.CommentPostedPayload{URI: uri, Comment: created})
	return created, nil
}
