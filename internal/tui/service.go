package tui

import (
	"context"

	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/newsdesk"
)

// Service is the state and action surface the TUI Model drives.
type Service interface {
	State() newsdesk.State
	OnChange(fn func(newsdesk.State))

	Mount(ctx context.Context) error
	Toggle(ctx context.Context, uri string) error
	Delete(ctx context.Context, uri, id string) error
	Post(ctx context.Context, uri, text string) (comments.Comment, error)
	RefreshFeed(ctx context.Context) error
	RefreshThread(ctx context.Context, uri string) error
	Logout(ctx context.Context) error
	LoginURL() string
}

// Compile-time check that *newsdesk.Coordinator satisfies Service.
var _ Service = (*newsdesk.Coordinator)(nil)
