package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger registers bus hooks that log all event activity at
// debug level, with the article URI attached when the payload carries one.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		e := logger.Debug().Str("event", string(event))
		if uri := payloadURI(payload); uri != "" {
			e = e.Str("article", uri)
		}
		e.Msg("event fired")
	})

	bus.OnDrop(func(event Event, _ any) {
		logger.Warn().Str("event", string(event)).Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

func payloadURI(payload any) string {
	switch p := payload.(type) {
	case ThreadChangedPayload:
		return p.URI
	case CommentDeletedPayload:
		return p.URI
	case CommentDeleteFailedPayload:
		return p.URI
	case CommentPostedPayload:
		return p.URI
	default:
		return ""
	}
}
