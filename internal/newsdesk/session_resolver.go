package newsdesk

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/newsdesk/internal/core/eventbus"
	"github.com/colonyops/newsdesk/internal/core/session"
)

// SessionResolver determines who the current user is.
type SessionResolver struct {
	remote         AuthRemote
	moderatorGroup string
	bus            *eventbus.EventBus
	log            zerolog.Logger

	mu       sync.RWMutex
	current  session.Session
	resolved bool
	started  uint64 // resolutions begun
	applied  uint64 // sequence of the resolution in current
}

// NewSessionResolver creates a resolver. An empty moderatorGroup uses
// session.DefaultModeratorGroup.
func NewSessionResolver(remote AuthRemote, moderatorGroup string, bus *eventbus.EventBus, log zerolog.Logger) *SessionResolver {
	return &SessionResolver{
		remote:         remote,
		moderatorGroup: moderatorGroup,
		bus:            bus,
		log:            log,
		current:        session.Anonymous(),
	}
}

// Resolve asks the backend for the logged-in user. It never fails: any
// error downgrades the session to anonymous. A result that arrives after
// a later resolution was applied is discarded and the newer session is
// returned.
func (r *SessionResolver) Resolve(ctx context.Context) session.Session {
	r.mu.Lock()
	r.started++
	seq := r.started
	r.mu.Unlock()

	s := session.Anonymous()

	info, err := r.remote.UserInfo(ctx)
	if err != nil {
		r.log.Debug().Err(err).Msg("userinfo unavailable, continuing anonymous")
	} else {
		s = session.FromUserInfo(info, r.moderatorGroup)
	}

	r.mu.Lock()
	if seq < r.applied {
		current := r.current
		r.mu.Unlock()
		r.log.Debug().Uint64("seq", seq).Msg("discarding stale session resolution")
		return current
	}
	r.current = s
	r.resolved = true
	r.applied = seq
	r.mu.Unlock()

	r.log.Debug().Str("status", s.Status.String()).Msg("session resolved")
	r.bus.PublishSessionResolved(eventbus.SessionResolvedPayload{Session: s})
	return s
}

// Current returns the last resolved session and whether a resolution has
// completed. Before that it reports an anonymous session.
func (r *SessionResolver) Current() (session.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.resolved
}

// Logout ends the backend session and resolves again.
func (r *SessionResolver) Logout(ctx context.Context) (session.Session, error) {
	if err := r.remote.Logout(ctx); err != nil {
		s, _ := r.Current()
		return s, fmt.Errorf("logout: %w", err)
	}
	return r.Resolve(ctx), nil
}

// LoginURL is where the user starts the login flow.
func (r *SessionResolver) LoginURL() string {
	return r.remote.LoginURL()
}
