package tui

import "github.com/colonyops/newsdesk/internal/newsdesk"

type rowKind int

const (
	rowStory rowKind = iota
	rowComment
)

// row is one selectable line of the reader: a story or a comment of an
// open story.
type row struct {
	kind    rowKind
	uri     string
	open    bool
	story   int // index into State.Stories
	comment newsdesk.CommentView
}

// key identifies the row across state changes.
func (r row) key() string {
	if r.kind == rowComment {
		return r.uri + "#" + r.comment.ID
	}
	return r.uri
}

// buildRows flattens the state into the selectable rows in render order.
func buildRows(st newsdesk.State) []row {
	rows := make([]row, 0, len(st.Stories))
	for i, story := range st.Stories {
		rows = append(rows, row{kind: rowStory, uri: story.URI, open: story.Open, story: i})
		if !story.Open {
			continue
		}
		for _, c := range story.Thread.Comments {
			rows = append(rows, row{kind: rowComment, uri: story.URI, open: true, story: i, comment: c})
		}
	}
	return rows
}

// relocate returns the index of the row with key k. When that row is gone
// the cursor stays at fallback, moved back onto the same story if needed.
func relocate(rows []row, k, uri string, fallback int) int {
	if len(rows) == 0 {
		return 0
	}
	for i, r := range rows {
		if r.key() == k {
			return i
		}
	}

	i := min(max(fallback, 0), len(rows)-1)
	if rows[i].uri == uri {
		return i
	}
	for j := i; j >= 0; j-- {
		if rows[j].uri == uri {
			return j
		}
	}
	return i
}
