package comments

// MutationState is the lifecycle of an optimistic delete.
type MutationState int

const (
	MutationPending MutationState = iota
	MutationCommitted
	MutationRolledBack
)

func (s MutationState) String() string {
	switch s {
	case MutationCommitted:
		return "committed"
	case MutationRolledBack:
		return "rolled-back"
	default:
		return "pending"
	}
}

// Mutation tracks one optimistic delete from removal until the server
// answers. Only a pending mutation can transition.
type Mutation struct {
	CommentID string
	Comment   Comment
	State     MutationState

	// index is the position of the comment in the thread when the delete
	// began. It is only used when a refresh dropped the comment.
	index int
}

// Done reports whether the mutation has been committed or rolled back.
func (m *Mutation) Done() bool {
	return m.State != MutationPending
}
