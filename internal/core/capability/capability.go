// Package capability maps a session to the actions it may invoke.
// Viewing stories and opening comment panels are available to everyone.
package capability

import "github.com/colonyops/newsdesk/internal/core/session"

// CanDelete reports whether the session may delete comments.
func CanDelete(s session.Session) bool {
	return s.Status == session.StatusModerator
}

// CanComment reports whether the session may post comments.
func CanComment(s session.Session) bool {
	return s.IsAuthenticated()
}
