package newsdesk

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/newsdesk/internal/core/eventbus"
	"github.com/colonyops/newsdesk/internal/core/feed"
)

// FeedLoader fetches the story feed.
type FeedLoader struct {
	remote StoriesRemote
	mapper feed.Mapper
	bus    *eventbus.EventBus
	log    zerolog.Logger

	mu    sync.RWMutex
	state feed.State
}

func NewFeedLoader(remote StoriesRemote, mapper feed.Mapper, bus *eventbus.EventBus, log zerolog.Logger) *FeedLoader {
	return &FeedLoader{
		remote: remote,
		mapper: mapper,
		bus:    bus,
		log:    log,
	}
}

// Load fetches the feed once. It does nothing after the loader left Idle;
// use Refresh to fetch again. The returned error is also kept in State.
func (l *FeedLoader) Load(ctx context.Context) error {
	if !l.begin(func(s feed.Status) bool { return s == feed.StatusIdle }) {
		return nil
	}
	return l.fetch(ctx)
}

// Refresh fetches the feed again, keeping the current stories until the
// new result arrives. It does nothing while a fetch is in flight.
func (l *FeedLoader) Refresh(ctx context.Context) error {
	if !l.begin(func(s feed.Status) bool { return s != feed.StatusLoading }) {
		return nil
	}
	return l.fetch(ctx)
}

// State returns a snapshot of the feed.
func (l *FeedLoader) State() feed.State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Clone()
}

func (l *FeedLoader) begin(allowed func(feed.Status) bool) bool {
	l.mu.Lock()
	if !allowed(l.state.Status) {
		l.mu.Unlock()
		return false
	}
	l.state.Status = feed.StatusLoading
	l.state.Err = nil
	stories := len(l.state.Stories)
	l.mu.Unlock()

	l.bus.PublishFeedChanged(eventbus.FeedChangedPayload{Status: feed.StatusLoading, Stories: stories})
	return true
}

func (l *FeedLoader) fetch(ctx context.Context) error {
	docs, err := l.remote.Documents(ctx)
	if err != nil {
		err = fmt.Errorf("load stories: %w", err)

		l.mu.Lock()
		l.state.Status = feed.StatusFailed
		l.state.Err = err
		stories := len(l.state.Stories)
		l.mu.Unlock()

		l.log.Warn().Err(err).Msg("feed load failed")
		l.bus.PublishFeedChanged(eventbus.FeedChangedPayload{Status: feed.StatusFailed, Stories: stories, Err: err})
		return err
	}

	stories, skipped := l.mapper.Map(docs)
	if skipped > 0 {
		l.log.Debug().Int("skipped", skipped).Int("docs", len(docs)).Msg("dropped malformed documents")
	}

	l.mu.Lock()
	l.state = feed.State{
		Status:  feed.StatusLoaded,
		Stories: stories,
		Skipped: skipped,
	}
	l.mu.Unlock()

	l.log.Debug().Int("stories", len(stories)).Msg("feed loaded")
	l.bus.PublishFeedChanged(eventbus.FeedChangedPayload{Status: feed.StatusLoaded, Stories: len(stories)})
	return nil
}
