package eventbus

import (
	"fmt"

	"github.com/colonyops/newsdesk/internal/core/feed"
	"github.com/colonyops/newsdesk/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeCommentDeleteFailed(func(p CommentDeleteFailedPayload) {
		r.notifyf(notify.LevelError, "could not delete comment, it has been restored")
	})

	r.bus.SubscribeCommentDeleted(func(p CommentDeletedPayload) {
		r.notifyf(notify.LevelInfo, "comment deleted")
	})

	r.bus.SubscribeCommentPosted(func(p CommentPostedPayload) {
		r.notifyf(notify.LevelInfo, "comment posted")
	})

	r.bus.SubscribeFeedChanged(func(p FeedChangedPayload) {
		if p.Status == feed.StatusFailed && p.Stories > 0 {
			r.notifyf(notify.LevelWarning, "refresh failed, showing the previous %d stories", p.Stories)
		}
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
