package newsdesk

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/eventbus"
	"github.com/colonyops/newsdesk/internal/core/session"
)

const articleURI = "test-article"

func loadedStore(t *testing.T, idList ...string) *harness {
	t.Helper()
	remote := newFakeRemote()
	remote.threads[articleURI] = threadOf(idList...)
	h := newHarness(t, remote)
	require.NoError(t, h.store.Open(context.Background(), articleURI))
	return h
}

// waitUntil polls cond until it holds or a second passes.
func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond)
}

func TestCommentStore_ListBeforeOpenIsEmpty(t *testing.T) {
	h := newHarness(t, newFakeRemote())

	assert.Empty(t, h.store.List(articleURI))
	assert.NotNil(t, h.store.List(articleURI))
	assert.Equal(t, comments.NotLoaded, h.store.Snapshot(articleURI).State)
}

func TestCommentStore_OpenTwiceFetchesOnce(t *testing.T) {
	h := loadedStore(t, "comment1")

	require.NoError(t, h.store.Open(context.Background(), articleURI))

	assert.Equal(t, 1, h.remote.Calls("comments "+articleURI))
	assert.Equal(t, []string{"comment1"}, ids(h.store.List(articleURI)))
}

func TestCommentStore_ConcurrentOpenCoalesces(t *testing.T) {
	remote := newFakeRemote()
	remote.threads[articleURI] = threadOf("comment1")
	remote.listGate = newGate()
	h := newHarness(t, remote)

	done := make(chan error, 1)
	go func() { done <- h.store.Open(context.Background(), articleURI) }()
	waitUntil(t, func() bool { return remote.Calls("comments "+articleURI) == 1 })

	require.NoError(t, h.store.Open(context.Background(), articleURI), "second open is a no-op while loading")
	assert.Equal(t, comments.Loading, h.store.Snapshot(articleURI).State)

	remote.listGate.release()
	require.NoError(t, <-done)

	assert.Equal(t, 1, remote.Calls("comments "+articleURI))
	assert.Equal(t, comments.Loaded, h.store.Snapshot(articleURI).State)
}

func TestCommentStore_FailedOpenIsRetriedByReopening(t *testing.T) {
	remote := newFakeRemote()
	remote.threads[articleURI] = threadOf("comment1")
	remote.listErr = errBackend
	h := newHarness(t, remote)

	err := h.store.Open(context.Background(), articleURI)
	require.ErrorIs(t, err, errBackend)

	snap := h.store.Snapshot(articleURI)
	assert.Equal(t, comments.Failed, snap.State)
	require.ErrorIs(t, snap.Err, errBackend)

	remote.set(func(f *fakeRemote) { f.listErr = nil })
	require.NoError(t, h.store.Open(context.Background(), articleURI))

	assert.Equal(t, 2, remote.Calls("comments "+articleURI))
	assert.Equal(t, []string{"comment1"}, ids(h.store.List(articleURI)))
}

func TestCommentStore_ThreadsAreIndependent(t *testing.T) {
	remote := newFakeRemote()
	remote.threads["a"] = threadOf("a1", "a2")
	remote.threads["b"] = threadOf("b1")
	h := newHarness(t, remote)
	ctx := context.Background()

	require.NoError(t, h.store.Open(ctx, "a"))
	require.NoError(t, h.store.Open(ctx, "b"))

	require.NoError(t, h.store.Delete(ctx, "a", "a1", moderatorSession()))

	assert.Equal(t, []string{"a2"}, ids(h.store.List("a")))
	assert.Equal(t, []string{"b1"}, ids(h.store.List("b")))
	assert.Equal(t, 1, remote.Calls("comments b"))
}

func TestCommentStore_DeleteRemovesExactlyTarget(t *testing.T) {
	h := loadedStore(t, "c1", "c2", "c3")

	err := h.store.Delete(context.Background(), articleURI, "c2", moderatorSession())

	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c3"}, ids(h.store.List(articleURI)))
	assert.Equal(t, 1, h.remote.Calls("delete "+articleURI+" c2"))
	h.bus.AssertPublished(t, eventbus.EventCommentDeleted)
}

func TestCommentStore_DeleteForbiddenSendsNothing(t *testing.T) {
	tests := []struct {
		name string
		sess session.Session
	}{
		{name: "anonymous", sess: session.Anonymous()},
		{name: "authenticated", sess: readerSession()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := loadedStore(t, "comment1")

			err := h.store.Delete(context.Background(), articleURI, "comment1", tt.sess)

			require.ErrorIs(t, err, comments.ErrForbidden)
			assert.Equal(t, 0, h.remote.Calls("delete "+articleURI+" comment1"))
			assert.Equal(t, []string{"comment1"}, ids(h.store.List(articleURI)))
		})
	}
}

func TestCommentStore_DeleteUnknown(t *testing.T) {
	h := loadedStore(t, "c1")

	err := h.store.Delete(context.Background(), articleURI, "nope", moderatorSession())
	require.ErrorIs(t, err, comments.ErrCommentNotFound)

	err = h.store.Delete(context.Background(), "never-opened", "c1", moderatorSession())
	require.ErrorIs(t, err, comments.ErrCommentNotFound)

	assert.Equal(t, 0, h.remote.Calls("delete "+articleURI+" nope"))
}

func TestCommentStore_FailedDeleteRestoresList(t *testing.T) {
	h := loadedStore(t, "c1", "c2", "c3")
	before := h.store.List(articleURI)
	h.remote.set(func(f *fakeRemote) { f.delErr = errBackend })

	err := h.store.Delete(context.Background(), articleURI, "c2", moderatorSession())

	require.ErrorIs(t, err, comments.ErrDeleteFailed)
	require.ErrorIs(t, err, errBackend)

	var de *comments.DeleteError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "c2", de.CommentID)
	assert.Equal(t, articleURI, de.URI)

	assert.Equal(t, before, h.store.List(articleURI))
	h.bus.AssertPublished(t, eventbus.EventCommentDeleteFailed)
}

func TestCommentStore_DeleteIsOptimistic(t *testing.T) {
	h := loadedStore(t, "c1", "c2")
	h.remote.set(func(f *fakeRemote) { f.deleteGate = newGate() })

	done := make(chan error, 1)
	go func() { done <- h.store.Delete(context.Background(), articleURI, "c1", moderatorSession()) }()

	waitUntil(t, func() bool { return h.remote.Calls("delete "+articleURI+" c1") == 1 })
	assert.Equal(t, []string{"c2"}, ids(h.store.List(articleURI)), "hidden before the server answers")

	h.remote.deleteGate.release()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"c2"}, ids(h.store.List(articleURI)))
}

func TestCommentStore_ConcurrentDeleteOfSameIDRejected(t *testing.T) {
	h := loadedStore(t, "c1", "c2")
	h.remote.set(func(f *fakeRemote) { f.deleteGate = newGate() })

	done := make(chan error, 1)
	go func() { done <- h.store.Delete(context.Background(), articleURI, "c1", moderatorSession()) }()
	waitUntil(t, func() bool { return h.remote.Calls("delete "+articleURI+" c1") == 1 })

	err := h.store.Delete(context.Background(), articleURI, "c1", moderatorSession())
	require.ErrorIs(t, err, comments.ErrDeleteInFlight)

	h.remote.deleteGate.release()
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.remote.Calls("delete "+articleURI+" c1"))
}

func TestCommentStore_InterleavedDeletesRollbackKeepsPosition(t *testing.T) {
	h := loadedStore(t, "c1", "c2", "c3", "c4")
	gateFail := newGate()
	h.remote.set(func(f *fakeRemote) { f.deleteGate = gateFail })

	var wg sync.WaitGroup
	var failErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		failErr = h.store.Delete(context.Background(), articleURI, "c2", moderatorSession())
	}()
	waitUntil(t, func() bool { return h.remote.Calls("delete "+articleURI+" c2") == 1 })

	// A second delete of a different comment succeeds while c2 is pending.
	h.remote.set(func(f *fakeRemote) { f.deleteGate = nil })
	require.NoError(t, h.store.Delete(context.Background(), articleURI, "c1", moderatorSession()))
	assert.Equal(t, []string{"c3", "c4"}, ids(h.store.List(articleURI)))

	h.remote.set(func(f *fakeRemote) { f.delErr = errBackend })
	gateFail.release()
	wg.Wait()

	require.ErrorIs(t, failErr, comments.ErrDeleteFailed)
	assert.Equal(t, []string{"c2", "c3", "c4"}, ids(h.store.List(articleURI)))
}

func TestCommentStore_RefreshDuringPendingDelete(t *testing.T) {
	t.Run("rollback restores comment dropped by refresh", func(t *testing.T) {
		h := loadedStore(t, "c1", "c2", "c3")
		g := newGate()
		h.remote.set(func(f *fakeRemote) { f.deleteGate = g })

		done := make(chan error, 1)
		go func() { done <- h.store.Delete(context.Background(), articleURI, "c2", moderatorSession()) }()
		waitUntil(t, func() bool { return h.remote.Calls("delete "+articleURI+" c2") == 1 })

		// The server already lost c2 but the delete will still fail.
		h.remote.set(func(f *fakeRemote) {
			f.threads[articleURI] = threadOf("c1", "c3")
			f.delErr = errBackend
		})
		require.NoError(t, h.store.Refresh(context.Background(), articleURI))
		assert.Equal(t, []string{"c1", "c3"}, ids(h.store.List(articleURI)))

		g.release()
		require.ErrorIs(t, <-done, comments.ErrDeleteFailed)
		assert.Equal(t, []string{"c1", "c2", "c3"}, ids(h.store.List(articleURI)))
	})

	t.Run("refresh does not resurrect pending comment", func(t *testing.T) {
		h := loadedStore(t, "c1", "c2", "c3")
		g := newGate()
		h.remote.set(func(f *fakeRemote) { f.deleteGate = g })

		done := make(chan error, 1)
		go func() { done <- h.store.Delete(context.Background(), articleURI, "c2", moderatorSession()) }()
		waitUntil(t, func() bool { return h.remote.Calls("delete "+articleURI+" c2") == 1 })

		require.NoError(t, h.store.Refresh(context.Background(), articleURI))
		assert.Equal(t, []string{"c1", "c3"}, ids(h.store.List(articleURI)))

		g.release()
		require.NoError(t, <-done)
		assert.Equal(t, []string{"c1", "c3"}, ids(h.store.List(articleURI)))
	})
}

func TestCommentStore_Post(t *testing.T) {
	h := loadedStore(t, "c1")

	created, err := h.store.Post(context.Background(), articleURI, "  hello  ", readerSession())

	require.NoError(t, err)
	assert.Equal(t, "hello", created.Text)
	assert.Equal(t, "user@example.com", created.Author)
	assert.Equal(t, []string{"c1", "posted-hello"}, ids(h.store.List(articleURI)))
	h.bus.AssertPublished(t, eventbus.EventCommentPosted)
}

func TestCommentStore_PostRejected(t *testing.T) {
	h := loadedStore(t, "c1")

	_, err := h.store.Post(context.Background(), articleURI, "hi", session.Anonymous())
	require.ErrorIs(t, err, comments.ErrForbidden)

	_, err = h.store.Post(context.Background(), articleURI, "   ", readerSession())
	require.ErrorIs(t, err, comments.ErrEmptyComment)

	assert.Equal(t, 0, h.remote.Calls("post "+articleURI))
}

func TestCommentStore_MutationsDuringInFlightRefresh(t *testing.T) {
	t.Run("committed delete stays deleted", func(t *testing.T) {
		h := loadedStore(t, "c1", "c2", "c3")
		h.remote.set(func(f *fakeRemote) { f.listGate = newGate() })

		done := make(chan error, 1)
		go func() { done <- h.store.Refresh(context.Background(), articleURI) }()
		waitUntil(t, func() bool { return h.remote.Calls("comments "+articleURI) == 2 })

		require.NoError(t, h.store.Delete(context.Background(), articleURI, "c2", moderatorSession()))
		assert.Equal(t, []string{"c1", "c3"}, ids(h.store.List(articleURI)))

		h.remote.listGate.release()
		require.NoError(t, <-done)
		assert.Equal(t, []string{"c1", "c3"}, ids(h.store.List(articleURI)))
		assert.Equal(t, 1, h.remote.Calls("delete "+articleURI+" c2"))
	})

	t.Run("posted comment survives the stale list", func(t *testing.T) {
		h := loadedStore(t, "c1")
		h.remote.set(func(f *fakeRemote) { f.listGate = newGate() })

		done := make(chan error, 1)
		go func() { done <- h.store.Refresh(context.Background(), articleURI) }()
		waitUntil(t, func() bool { return h.remote.Calls("comments "+articleURI) == 2 })

		created, err := h.store.Post(context.Background(), articleURI, "late", readerSession())
		require.NoError(t, err)

		h.remote.listGate.release()
		require.NoError(t, <-done)
		assert.Equal(t, []string{"c1", created.ID}, ids(h.store.List(articleURI)))
	})
}

func TestCommentStore_PostToUnloadedThreadDoesNotLoad(t *testing.T) {
	h := newHarness(t, newFakeRemote())

	_, err := h.store.Post(context.Background(), articleURI, "first", readerSession())
	require.NoError(t, err)

	assert.Equal(t, comments.NotLoaded, h.store.Snapshot(articleURI).State)
	assert.Empty(t, h.store.List(articleURI))
}

func TestCommentStore_DeleteContextCancelledRollsBack(t *testing.T) {
	h := loadedStore(t, "c1")
	h.remote.set(func(f *fakeRemote) { f.deleteGate = newGate() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.store.Delete(ctx, articleURI, "c1", moderatorSession())

	require.ErrorIs(t, err, comments.ErrDeleteFailed)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"c1"}, ids(h.store.List(articleURI)))
}
