// Package newsdesk keeps session, feed and comment state in sync with the
// backend and combines them into render-ready view state.
package newsdesk

import (
	"context"
	"encoding/json"

	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/session"
)

// AuthRemote is the backend surface used by SessionResolver.
type AuthRemote interface {
	UserInfo(ctx context.Context) (session.UserInfo, error)
	Logout(ctx context.Context) error
	LoginURL() string
}

// StoriesRemote is the backend surface used by FeedLoader.
type StoriesRemote interface {
	Documents(ctx context.Context) ([]json.RawMessage, error)
}

// CommentsRemote is the backend surface used by CommentStore.
type CommentsRemote interface {
	Comments(ctx context.Context, uri string) ([]comments.Comment, error)
	DeleteComment(ctx context.Context, uri, id string) error
	PostComment(ctx context.Context, uri string, draft comments.Draft) (comments.Comment, error)
}
