package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/feed"
	"github.com/colonyops/newsdesk/internal/core/session"
)

// UserInfo fetches the logged-in user. Any non-2xx response is an error;
// callers decide whether that means anonymous.
func (c *Client) UserInfo(ctx context.Context) (session.UserInfo, error) {
	var info session.UserInfo
	err := c.getJSON(ctx, request{
		endpoint: EndpointUserInfo,
		method:   http.MethodGet,
		path:     []string{"api", "auth", "userinfo"},
	}, &info)
	return info, err
}

// Logout ends the server-side session. The backend answers with a redirect,
// which counts as success.
func (c *Client) Logout(ctx context.Context) error {
	return c.discard(ctx, request{
		endpoint: EndpointLogout,
		method:   http.MethodGet,
		path:     []string{"api", "auth", "logout"},
		accept:   func(code int) bool { return code >= 200 && code < 400 },
	})
}

// Documents fetches the raw story documents of the feed.
func (c *Client) Documents(ctx context.Context) ([]json.RawMessage, error) {
	var resp feed.Response
	err := c.getJSON(ctx, request{
		endpoint: EndpointStories,
		method:   http.MethodGet,
		path:     []string{"api", "stories"},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Response.Docs, nil
}

// Comments fetches the comments of one article in server order.
func (c *Client) Comments(ctx context.Context, uri string) ([]comments.Comment, error) {
	var list []comments.Comment
	err := c.getJSON(ctx, request{
		endpoint: EndpointComments,
		method:   http.MethodGet,
		path:     []string{"api", "articles", uri, "comments"},
	}, &list)
	return list, err
}

// DeleteComment deletes one comment.
func (c *Client) DeleteComment(ctx context.Context, uri, id string) error {
	return c.discard(ctx, request{
		endpoint: EndpointDeleteComment,
		method:   http.MethodDelete,
		path:     []string{"api", "articles", uri, "comments", id},
	})
}

// PostComment creates a comment and returns it as stored by the server.
func (c *Client) PostComment(ctx context.Context, uri string, draft comments.Draft) (comments.Comment, error) {
	var created comments.Comment
	err := c.getJSON(ctx, request{
		endpoint: EndpointPostComment,
		method:   http.MethodPost,
		path:     []string{"api", "articles", uri, "comments"},
		body:     draft,
	}, &created)
	return created, err
}
