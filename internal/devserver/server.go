// Package devserver is an in-memory implementation of the newsdesk backend
// API, used for local development and as the fake backend in tests.
package devserver

import (
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/session"
)

// Server holds the fake backend state.
type Server struct {
	engine *gin.Engine
	logger zerolog.Logger

	mu             sync.Mutex
	user           *session.UserInfo
	loginUser      *session.UserInfo
	moderatorGroup string
	stories        []StoryFixture
	comments       map[string][]comments.Comment
	failures       map[string]int // "METHOD route" -> status to answer with
	requests       map[string]int // "METHOD path" -> count
}

// New creates a server seeded with fx.
func New(fx Fixtures, logger zerolog.Logger) *Server {
	s := &Server{
		logger:         logger,
		user:           fx.User,
		loginUser:      fx.User,
		moderatorGroup: session.DefaultModeratorGroup,
		stories:        slices.Clone(fx.Stories),
		comments:       make(map[string][]comments.Comment, len(fx.Comments)),
		failures:       make(map[string]int),
		requests:       make(map[string]int),
	}
	for uri, list := range fx.Comments {
		for _, c := range list {
			s.comments[uri] = append(s.comments[uri], c.comment())
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.UseRawPath = true
	engine.UnescapePathValues = true
	engine.Use(gin.Recovery(), s.track)

	api := engine.Group("/api")
	api.GET("/auth/userinfo", s.userInfo)
	api.GET("/auth/login", s.login)
	api.GET("/auth/logout", s.logout)
	api.GET("/stories", s.listStories)
	api.GET("/articles/:uri/comments", s.listComments)
	api.POST("/articles/:uri/comments", s.postComment)
	api.DELETE("/articles/:uri/comments/:id", s.deleteComment)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// SetUser replaces the logged-in user. Nil logs out.
func (s *Server) SetUser(u *session.UserInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	if u != nil {
		s.loginUser = u
	}
}

// FailWith makes every request to route answer status. route is the gin
// route including the method, e.g. "DELETE /api/articles/:uri/comments/:id".
// Status 0 clears the failure.
func (s *Server) FailWith(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = status
}

// Requests returns how many requests were made for method and escaped path.
func (s *Server) Requests(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+path]
}

// Comments returns the stored comments of uri.
func (s *Server) Comments(uri string) []comments.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.comments[uri])
}

func (s *Server) track(c *gin.Context) {
	start := time.Now()
	path := c.Request.URL.EscapedPath()

	s.mu.Lock()
	s.requests[c.Request.Method+" "+path]++
	status, fail := s.failures[c.Request.Method+" "+c.FullPath()]
	s.mu.Unlock()

	if fail {
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
	} else {
		c.Next()
	}

	s.logger.Debug().
		Str("method", c.Request.Method).
		Str("path", path).
		Str("request_id", c.GetHeader("X-Request-ID")).
		Int("status", c.Writer.Status()).
		Dur("elapsed", time.Since(start)).
		Msg("request")
}

func (s *Server) currentUser() *session.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Server) userInfo(c *gin.Context) {
	u := s.currentUser()
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) login(c *gin.Context) {
	s.mu.Lock()
	s.user = s.loginUser
	s.mu.Unlock()
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) logout(c *gin.Context) {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	c.Redirect(http.StatusFound, "/")
}

type headline struct {
	Main string `json:"main"`
}

type multimedia struct {
	Default struct {
		URL string `json:"url"`
	} `json:"default"`
}

type document struct {
	URI        string      `json:"uri"`
	WebURL     string      `json:"web_url,omitempty"`
	Abstract   string      `json:"abstract"`
	Headline   headline    `json:"headline"`
	Multimedia *multimedia `json:"multimedia,omitempty"`
}

func (s *Server) listStories(c *gin.Context) {
	s.mu.Lock()
	docs := make([]document, 0, len(s.stories))
	for _, st := range s.stories {
		d := document{
			URI:      st.URI,
			WebURL:   st.WebURL,
			Abstract: st.Abstract,
			Headline: headline{Main: st.Headline},
		}
		if st.ImageURL != "" {
			d.Multimedia = &multimedia{}
			d.Multimedia.Default.URL = st.ImageURL
		}
		docs = append(docs, d)
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"response": gin.H{"docs": docs}})
}

// wireComment mirrors the backend encoding, which renders dates as RFC 1123.
type wireComment struct {
	ID      string  `json:"id"`
	Author  string  `json:"author"`
	Text    string  `json:"text"`
	Created *string `json:"created"`
}

func toWire(cm comments.Comment) wireComment {
	w := wireComment{ID: cm.ID, Author: cm.Author, Text: cm.Text}
	if !cm.Created.IsZero() {
		created := cm.Created.UTC().Format(http.TimeFormat)
		w.Created = &created
	}
	return w
}

func (s *Server) listComments(c *gin.Context) {
	uri := c.Param("uri")

	s.mu.Lock()
	out := make([]wireComment, 0, len(s.comments[uri]))
	for _, cm := range s.comments[uri] {
		out = append(out, toWire(cm))
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) postComment(c *gin.Context) {
	uri := c.Param("uri")

	var draft comments.Draft
	if err := c.ShouldBindJSON(&draft); err != nil || strings.TrimSpace(draft.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'text' field"})
		return
	}
	if draft.Author == "" {
		draft.Author = "anonymous"
	}

	cm := comments.Comment{
		ID:      uuid.NewString(),
		Author:  draft.Author,
		Text:    draft.Text,
		Created: time.Now().UTC().Truncate(time.Second),
	}

	s.mu.Lock()
	s.comments[uri] = append(s.comments[uri], cm)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, toWire(cm))
}

func (s *Server) deleteComment(c *gin.Context) {
	uri, id := c.Param("uri"), c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{})
		return
	}
	if !session.FromUserInfo(*s.user, s.moderatorGroup).IsModerator() {
		c.JSON(http.StatusForbidden, gin.H{"error": "moderator group required"})
		return
	}

	list := s.comments[uri]
	i := slices.IndexFunc(list, func(cm comments.Comment) bool { return cm.ID == id })
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}

	s.comments[uri] = slices.Delete(list, i, i+1)
	c.Status(http.StatusNoContent)
}
