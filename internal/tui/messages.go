package tui

// mountedMsg is sent once the initial session and feed fetches finished.
type mountedMsg struct {
	err error
}

// stateChangedMsg signals that the coordinator state changed.
type stateChangedMsg struct{}

// drainNotificationsMsg signals that notifications are ready to drain.
type drainNotificationsMsg struct{}

// actionDoneMsg reports the result of a user action.
type actionDoneMsg struct {
	action action
	err    error
}

type action int

const (
	actionToggle action = iota
	actionDelete
	actionPost
	actionRefreshFeed
	actionRefreshThread
	actionLogout
)

func (a action) String() string {
	switch a {
	case actionToggle:
		return "open comments"
	case actionDelete:
		return "delete comment"
	case actionPost:
		return "post comment"
	case actionRefreshFeed:
		return "refresh stories"
	case actionRefreshThread:
		return "refresh comments"
	case actionLogout:
		return "log out"
	default:
		return "action"
	}
}
