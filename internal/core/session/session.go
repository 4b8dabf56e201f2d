// Package session defines the visitor session derived from the auth endpoint.
package session

import (
	"slices"
	"strings"
)

// DefaultModeratorGroup is the group name that grants comment moderation.
const DefaultModeratorGroup = "moderator"

// Status represents the authorization level of a session.
type Status int

const (
	StatusAnonymous Status = iota
	StatusAuthenticated
	StatusModerator
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusModerator:
		return "moderator"
	default:
		return "anonymous"
	}
}

// Session represents the visitor for the lifetime of a page session.
//
// A session is derived once from the auth endpoint and is immutable until
// it is re-resolved (login or logout). StatusModerator implies the session
// is authenticated.
type Session struct {
	Status Status   `json:"status"`
	Email  string   `json:"email,omitempty"`
	Groups []string `json:"groups,omitempty"`
}

// Anonymous returns the default, unauthenticated session.
func Anonymous() Session {
	return Session{Status: StatusAnonymous}
}

// IsAuthenticated returns true for authenticated and moderator sessions.
func (s Session) IsAuthenticated() bool {
	return s.Status >= StatusAuthenticated
}

// IsModerator returns true if the session belongs to the moderator group.
func (s Session) IsModerator() bool {
	return s.Status == StatusModerator
}

// UserInfo is the body returned by the userinfo endpoint. Only Email and
// Groups are interpreted; the identity provider may send more claims.
type UserInfo struct {
	Email  string   `json:"email"`
	Name   string   `json:"name,omitempty"`
	Groups []string `json:"groups,omitempty"`
}

// FromUserInfo maps a userinfo body to a Session. A body without an email
// is anonymous. Group matching is case-insensitive and ignores surrounding
// whitespace.
func FromUserInfo(info UserInfo, moderatorGroup string) Session {
	email := strings.TrimSpace(info.Email)
	if email == "" {
		return Anonymous()
	}

	if moderatorGroup == "" {
		moderatorGroup = DefaultModeratorGroup
	}

	s := Session{
		Status: StatusAuthenticated,
		Email:  email,
		Groups: slices.Clone(info.Groups),
	}

	if slices.ContainsFunc(info.Groups, func(g string) bool {
		return strings.EqualFold(strings.TrimSpace(g), moderatorGroup)
	}) {
		s.Status = StatusModerator
	}

	return s
}
