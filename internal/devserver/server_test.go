package devserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/newsdesk/internal/core/session"
)

const davisURI = "nyt://article/davis-farmers-market"

func commentsPath(uri string) string {
	return "/api/articles/" + url.PathEscape(uri) + "/comments"
}

func serve(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func moderator() *session.UserInfo {
	return &session.UserInfo{Email: "editor@example.com", Groups: []string{"moderator"}}
}

func TestUserInfo_LoggedOut(t *testing.T) {
	s := New(DefaultFixtures(), zerolog.Nop())

	rec := serve(t, s, http.MethodGet, "/api/auth/userinfo", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestUserInfo_LoggedIn(t *testing.T) {
	s := New(DefaultFixtures(), zerolog.Nop())
	s.SetUser(moderator())

	rec := serve(t, s, http.MethodGet, "/api/auth/userinfo", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var info session.UserInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "editor@example.com", info.Email)
	assert.Equal(t, []string{"moderator"}, info.Groups)
}

func TestLogoutThenLogin(t *testing.T) {
	s := New(DefaultFixtures(), zerolog.Nop())
	s.SetUser(moderator())

	rec := serve(t, s, http.MethodGet, "/api/auth/logout", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, s, http.MethodGet, "/api/auth/userinfo", "").Code)

	rec = serve(t, s, http.MethodGet, "/api/auth/login", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, http.StatusOK, serve(t, s, http.MethodGet, "/api/auth/userinfo", "").Code)
}

func TestStories(t *testing.T) {
	s := New(DefaultFixtures(), zerolog.Nop())

	rec := serve(t, s, http.MethodGet, "/api/stories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Response struct {
			Docs []struct {
				URI      string `json:"uri"`
				Headline struct {
					Main string `json:"main"`
				} `json:"headline"`
				Multimedia *struct {
					Default struct {
						URL string `json:"url"`
					} `json:"default"`
				} `json:"multimedia"`
			} `json:"docs"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	docs := body.Response.Docs
	require.Len(t, docs, 3)
	assert.Equal(t, davisURI, docs[0].URI)
	assert.Equal(t, "Davis Farmers Market Marks 50 Years", docs[0].Headline.Main)
	require.NotNil(t, docs[0].Multimedia)
	assert.Equal(t, "images/2025/05/01/davis-market.jpg", docs[0].Multimedia.Default.URL)
	assert.Nil(t, docs[1].Multimedia)
}

func TestListComments_EscapedURI(t *testing.T) {
	s := New(DefaultFixtures(), zerolog.Nop())

	rec := serve(t, s, http.MethodGet, commentsPath(davisURI), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0]["id"])
	assert.Equal(t, "Thu, 01 May 2025 09:00:00 GMT", list[0]["created"])
}

func TestListComments_UnknownArticle(t *testing.T) {
	s := New(DefaultFixtures(), zerolog.Nop())

	rec := serve(t, s, http.MethodGet, commentsPath("nyt://article/unknown"), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPostComment(t *testing.T) {
	s := New(DefaultFixtures(), zerolog.Nop())

	rec := serve(t, s, http.MethodPost, commentsPath(davisURI), `{"text":"See you Saturday"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "anonymous", created["author"])
	assert.NotEmpty(t, created["id"])

	stored := s.Comments(davisURI)
	require.Len(t, stored, 3)
	assert.Equal(t, "See you Saturday", stored[2].Text)
}

func TestPostComment_MissingText(t *testing.T) {
	s := New(DefaultFixtures(), zerolog.Nop())

	rec := serve(t, s, http.MethodPost, commentsPath(davisURI), `{"text":"  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, s.Comments(davisURI), 2)
}

func TestDeleteComment(t *testing.T) {
	tests := []struct {
		name     string
		user     *session.UserInfo
		id       string
		wantCode int
		wantLeft int
	}{
		{name: "moderator", user: moderator(), id: "c1", wantCode: http.StatusNoContent, wantLeft: 1},
		{name: "anonymous", user: nil, id: "c1", wantCode: http.StatusUnauthorized, wantLeft: 2},
		{
			name:     "authenticated without group",
			user:     &session.UserInfo{Email: "reader@example.com"},
			id:       "c1",
			wantCode: http.StatusForbidden,
			wantLeft: 2,
		},
		{name: "unknown id", user: moderator(), id: "nope", wantCode: http.StatusNotFound, wantLeft: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(DefaultFixtures(), zerolog.Nop())
			s.SetUser(tt.user)

			rec := serve(t, s, http.MethodDelete, commentsPath(davisURI)+"/"+tt.id, "")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Len(t, s.Comments(davisURI), tt.wantLeft)
		})
	}
}

func TestFailWith(t *testing.T) {
	s := New(DefaultFixtures(), zerolog.Nop())
	s.SetUser(moderator())
	s.FailWith("DELETE /api/articles/:uri/comments/:id", http.StatusInternalServerError)

	rec := serve(t, s, http.MethodDelete, commentsPath(davisURI)+"/c1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, s.Comments(davisURI), 2)

	s.FailWith("DELETE /api/articles/:uri/comments/:id", 0)
	rec = serve(t, s, http.MethodDelete, commentsPath(davisURI)+"/c1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequests_CountsEscapedPath(t *testing.T) {
	s := New(DefaultFixtures(), zerolog.Nop())
	path := commentsPath(davisURI)

	serve(t, s, http.MethodGet, path, "")
	serve(t, s, http.MethodGet, path, "")

	assert.Equal(t, 2, s.Requests(http.MethodGet, path))
	assert.Equal(t, 0, s.Requests(http.MethodDelete, path))
}

func TestLoadFixtures(t *testing.T) {
	path := t.TempDir() + "/fixtures.yaml"
	require.NoError(t, os.WriteFile(path, []byte(`
user:
  email: editor@example.com
  groups: [moderator]
stories:
  - uri: nyt://article/one
    headline: One
comments:
  nyt://article/one:
    - id: a
      author: someone
      text: hello
      created: 2025-05-01T09:00:00Z
`), 0o644))

	fx, err := LoadFixtures(path)
	require.NoError(t, err)

	require.NotNil(t, fx.User)
	assert.Equal(t, "editor@example.com", fx.User.Email)
	require.Len(t, fx.Stories, 1)
	require.Len(t, fx.Comments["nyt://article/one"], 1)
	assert.Equal(t, 2025, fx.Comments["nyt://article/one"][0].Created.Year())
}

func TestLoadFixtures_Missing(t *testing.T) {
	_, err := LoadFixtures(t.TempDir() + "/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read fixtures")
}

func TestLoadFixturesGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(`
stories:
  - uri: one
    headline: One
comments:
  one:
    - id: a
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.yaml"), []byte(`
user:
  email: editor@example.com
stories:
  - uri: two
    headline: Two
comments:
  one:
    - id: b
`), 0o644))

	fx, err := LoadFixturesGlob(filepath.Join(dir, "**", "*.yaml"))
	require.NoError(t, err)

	require.NotNil(t, fx.User)
	assert.Equal(t, "editor@example.com", fx.User.Email)
	require.Len(t, fx.Stories, 2)
	assert.Equal(t, "one", fx.Stories[0].URI)
	assert.Equal(t, "two", fx.Stories[1].URI)
	require.Len(t, fx.Comments["one"], 2)
	assert.Equal(t, "a", fx.Comments["one"][0].ID)
	assert.Equal(t, "b", fx.Comments["one"][1].ID)
}

func TestLoadFixturesGlob_NoMatch(t *testing.T) {
	_, err := LoadFixturesGlob(filepath.Join(t.TempDir(), "*.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fixture files match")
}
