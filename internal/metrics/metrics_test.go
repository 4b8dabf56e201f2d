package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("stories", 200, time.Millisecond)
	m.ObserveMutation("delete", OutcomeCommitted)
	m.ObserveDrop("feed.changed")
}

func TestMetrics_Counts(t *testing.T) {
	m := New()

	m.ObserveRequest("comments.delete", 204, 10*time.Millisecond)
	m.ObserveRequest("comments.delete", 503, 10*time.Millisecond)
	m.ObserveRequest("comments.delete", 503, 10*time.Millisecond)
	m.ObserveMutation("delete", OutcomeRolledBack)
	m.ObserveDrop("thread.changed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("comments.delete", "204")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("comments.delete", "503")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("delete", OutcomeRolledBack)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped.WithLabelValues("thread.changed")))
}

func TestServer_ServesMetrics(t *testing.T) {
	m := New()
	m.ObserveMutation("post", OutcomeCommitted)

	srv := NewServer("127.0.0.1:0", m)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `newsdesk_comment_mutations_total{kind="post",outcome="committed"} 1`)
}

func TestServer_ServesPprof(t *testing.T) {
	srv := NewServer("127.0.0.1:0", New())
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + srv.Addr() + "/debug/pprof/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
