package comments

import (
	"cmp"
	"slices"
)

// LoadState is the fetch state of a thread.
type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "not-loaded"
	}
}

type entry struct {
	comment Comment
	hidden  bool // removed optimistically, delete not yet confirmed
}

// Thread is the ordered comment list of one story.
//
// Comments removed by a pending delete stay in the thread as hidden
// entries until the delete commits, so a rollback restores them at their
// exact position. Mutations that finish while a load is in flight are
// recorded and replayed over the loaded list, since the server may have
// answered before seeing them. Thread is not safe for concurrent use.
type Thread struct {
	URI string

	state   LoadState
	err     error
	loads   int
	entries []entry
	pending map[string]*Mutation

	// Set while Loading; reset by BeginLoad.
	deleted  map[string]struct{}
	appended []Comment
}

// NewThread returns an unloaded thread for uri.
func NewThread(uri string) *Thread {
	return &Thread{
		URI:     uri,
		pending: make(map[string]*Mutation),
	}
}

// State returns the load state.
func (t *Thread) State() LoadState { return t.state }

// Err returns the error of the last failed load.
func (t *Thread) Err() error { return t.err }

// Loads returns the number of successful loads.
func (t *Thread) Loads() int { return t.loads }

// Comments returns the visible comments in server order.
func (t *Thread) Comments() []Comment {
	out := make([]Comment, 0, len(t.entries))
	for _, e := range t.entries {
		if !e.hidden {
			out = append(out, e.comment)
		}
	}
	return out
}

// Pending reports whether a delete for id is in flight.
func (t *Thread) Pending(id string) bool {
	_, ok := t.pending[id]
	return ok
}

// BeginLoad moves the thread to Loading and reports whether the caller
// should fetch. A Loading thread never starts a second fetch; a Loaded
// thread only refetches when force is set.
func (t *Thread) BeginLoad(force bool) bool {
	switch t.state {
	case Loading:
		return false
	case Loaded:
		if !force {
			return false
		}
	}

	t.state = Loading
	t.err = nil
	t.deleted = make(map[string]struct{})
	t.appended = nil
	return true
}

// CompleteLoad replaces the comments with list and marks the thread Loaded.
//
// Comments with a pending delete stay hidden. A pending comment missing
// from list is kept hidden at its old position so that a rollback still
// restores it. Comments deleted while the load was in flight are dropped
// and comments appended meanwhile are kept at the end.
func (t *Thread) CompleteLoad(list []Comment) {
	next := make([]entry, 0, len(list)+len(t.pending)+len(t.appended))
	seen := make(map[string]struct{}, len(list))
	for _, c := range list {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		if _, gone := t.deleted[c.ID]; gone {
			continue
		}
		next = append(next, entry{comment: c, hidden: t.Pending(c.ID)})
	}

	for _, c := range t.appended {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		if _, gone := t.deleted[c.ID]; gone {
			continue
		}
		seen[c.ID] = struct{}{}
		next = append(next, entry{comment: c, hidden: t.Pending(c.ID)})
	}

	var missing []*Mutation
	for id, m := range t.pending {
		if _, ok := seen[id]; !ok {
			missing = append(missing, m)
		}
	}
	slices.SortFunc(missing, func(a, b *Mutation) int { return cmp.Compare(a.index, b.index) })
	for _, m := range missing {
		at := min(m.index, len(next))
		next = slices.Insert(next, at, entry{comment: m.Comment, hidden: true})
	}

	t.entries = next
	t.state = Loaded
	t.err = nil
	t.loads++
	t.deleted = nil
	t.appended = nil
}

// FailLoad marks the thread Failed. Previously loaded comments are kept.
func (t *Thread) FailLoad(err error) {
	t.state = Failed
	t.err = err
	t.deleted = nil
	t.appended = nil
}

// Append adds c at the end of the thread, or replaces the comment with the
// same id.
func (t *Thread) Append(c Comment) {
	if t.state == Loading {
		t.appended = append(t.appended, c)
	}
	if i := t.indexOf(c.ID); i >= 0 {
		t.entries[i].comment = c
		return
	}
	t.entries = append(t.entries, entry{comment: c})
}

// BeginDelete hides the comment and returns its pending mutation.
func (t *Thread) BeginDelete(id string) (*Mutation, error) {
	if t.Pending(id) {
		return nil, ErrDeleteInFlight
	}

	i := t.indexOf(id)
	if i < 0 {
		return nil, ErrCommentNotFound
	}

	t.entries[i].hidden = true
	m := &Mutation{
		CommentID: id,
		Comment:   t.entries[i].comment,
		State:     MutationPending,
		index:     i,
	}
	t.pending[id] = m
	return m, nil
}

// Commit drops the hidden comment for good.
func (t *Thread) Commit(m *Mutation) {
	if m.Done() {
		return
	}

	if i := t.indexOf(m.CommentID); i >= 0 && t.entries[i].hidden {
		t.entries = slices.Delete(t.entries, i, i+1)
	}
	if t.state == Loading {
		t.deleted[m.CommentID] = struct{}{}
	}
	delete(t.pending, m.CommentID)
	m.State = MutationCommitted
}

// Rollback makes the hidden comment visible again at its position.
func (t *Thread) Rollback(m *Mutation) {
	if m.Done() {
		return
	}

	if i := t.indexOf(m.CommentID); i >= 0 {
		t.entries[i].hidden = false
	} else {
		at := min(m.index, len(t.entries))
		t.entries = slices.Insert(t.entries, at, entry{comment: m.Comment})
	}
	delete(t.pending, m.CommentID)
	m.State = MutationRolledBack
}

func (t *Thread) indexOf(id string) int {
	return slices.IndexFunc(t.entries, func(e entry) bool { return e.comment.ID == id })
}
