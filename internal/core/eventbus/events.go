package eventbus

import (
	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/feed"
	"github.com/colonyops/newsdesk/internal/core/notify"
	"github.com/colonyops/newsdesk/internal/core/session"
)

// Keep list sorted A-Z.
const (
	EventCommentDeleteFailed   Event = "comment.delete-failed"
	EventCommentDeleted        Event = "comment.deleted"
	EventCommentPosted         Event = "comment.posted"
	EventFeedChanged           Event = "feed.changed"
	EventNotificationPublished Event = "notification.published"
	EventSessionResolved       Event = "session.resolved"
	EventThreadChanged         Event = "thread.changed"
)

// SessionResolvedPayload is emitted whenever the session is (re)resolved.
type SessionResolvedPayload struct {
	Session session.Session
}

// FeedChangedPayload is emitted on every feed load state transition.
type FeedChangedPayload struct {
	Status  feed.Status
	Stories int
	Err     error
}

// ThreadChangedPayload is emitted when a thread's load state or visible
// comments change.
type ThreadChangedPayload struct {
	URI   string
	State comments.LoadState
}

// CommentDeletedPayload is emitted when the server confirmed a delete.
type CommentDeletedPayload struct {
	URI       string
	CommentID string
}

// CommentDeleteFailedPayload is emitted after a failed delete was rolled back.
type CommentDeleteFailedPayload struct {
	URI       string
	CommentID string
	Err       error
}

// CommentPostedPayload is emitted when a new comment was accepted.
type CommentPostedPayload struct {
	URI     string
	Comment comments.Comment
}

// NotificationPublishedPayload carries a transient user-facing message.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}

func (bus *EventBus) PublishSessionResolved(p SessionResolvedPayload) {
	bus.send(EventSessionResolved, p)
}

func (bus *EventBus) SubscribeSessionResolved(fn func(SessionResolvedPayload)) {
	bus.subscribe(EventSessionResolved, func(p any) { fn(p.(SessionResolvedPayload)) })
}

func (bus *EventBus) PublishFeedChanged(p FeedChangedPayload) {
	bus.send(EventFeedChanged, p)
}

func (bus *EventBus) SubscribeFeedChanged(fn func(FeedChangedPayload)) {
	bus.subscribe(EventFeedChanged, func(p any) { fn(p.(FeedChangedPayload)) })
}

func (bus *EventBus) PublishThreadChanged(p ThreadChangedPayload) {
	bus.send(EventThreadChanged, p)
}

func (bus *EventBus) SubscribeThreadChanged(fn func(ThreadChangedPayload)) {
	bus.subscribe(EventThreadChanged, func(p any) { fn(p.(ThreadChangedPayload)) })
}

func (bus *EventBus) PublishCommentDeleted(p CommentDeletedPayload) {
	bus.send(EventCommentDeleted, p)
}

func (bus *EventBus) SubscribeCommentDeleted(fn func(CommentDeletedPayload)) {
	bus.subscribe(EventCommentDeleted, func(p any) { fn(p.(CommentDeletedPayload)) })
}

func (bus *EventBus) PublishCommentDeleteFailed(p CommentDeleteFailedPayload) {
	bus.send(EventCommentDeleteFailed, p)
}

func (bus *EventBus) SubscribeCommentDeleteFailed(fn func(CommentDeleteFailedPayload)) {
	bus.subscribe(EventCommentDeleteFailed, func(p any) { fn(p.(CommentDeleteFailedPayload)) })
}

func (bus *EventBus) PublishCommentPosted(p CommentPostedPayload) {
	bus.send(EventCommentPosted, p)
}

func (bus *EventBus) SubscribeCommentPosted(fn func(CommentPostedPayload)) {
	bus.subscribe(EventCommentPosted, func(p any) { fn(p.(CommentPostedPayload)) })
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(p any) { fn(p.(NotificationPublishedPayload)) })
}
