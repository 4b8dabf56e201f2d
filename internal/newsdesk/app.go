package newsdesk

import (
	"context"
	"fmt"
	"net/url"

	"github.com/colonyops/newsdesk/internal/api"
	"github.com/colonyops/newsdesk/internal/core/config"
	"github.com/colonyops/newsdesk/internal/core/eventbus"
	"github.com/colonyops/newsdesk/internal/core/feed"
	"github.com/colonyops/newsdesk/internal/core/logging"
	"github.com/colonyops/newsdesk/internal/metrics"
)

// App is the central entry point for all newsdesk operations.
// Commands and the TUI consume App instead of wiring components themselves.
type App struct {
	Config  *config.Config
	Bus     *eventbus.EventBus
	Client  *api.Client
	Metrics *metrics.Metrics

	Sessions    *SessionResolver
	Feed        *FeedLoader
	Comments    *CommentStore
	Coordinator *Coordinator
}

// NewApp builds the backend client and all components from cfg. m may be
// nil to disable metrics.
func NewApp(cfg *config.Config, m *metrics.Metrics) (*App, error) {
	client, err := api.New(api.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		SessionCookie:     cfg.API.SessionCookie,
		SessionCookieName: cfg.API.SessionCookieName,
		Metrics:           m,
		Logger:            logging.Component("api"),
	})
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	var mapper feed.Mapper
	if cfg.Feed.ImageBaseURL != "" {
		base, err := url.Parse(cfg.Feed.ImageBaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse feed.image_base_url: %w", err)
		}
		mapper.ImageBase = base
	}

	bus := eventbus.New(cfg.Events.Buffer)
	eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
	eventbus.NewNotificationRouter(bus).Register()
	bus.OnDrop(func(event eventbus.Event, _ any) { m.ObserveDrop(string(event)) })

	sessions := NewSessionResolver(client, cfg.Auth.ModeratorGroup, bus, logging.Component("session"))
	feedLoader := NewFeedLoader(client, mapper, bus, logging.Component("feed"))
	store := NewCommentStore(client, bus, m, logging.Component("comments"))
	coord := NewCoordinator(sessions, feedLoader, store, bus, logging.Component("coordinator"))

	return &App{
		Config:      cfg,
		Bus:         bus,
		Client:      client,
		Metrics:     m,
		Sessions:    sessions,
		Feed:        feedLoader,
		Comments:    store,
		Coordinator: coord,
	}, nil
}

// Start runs event dispatch until ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	go a.Bus.Start(ctx)
}
