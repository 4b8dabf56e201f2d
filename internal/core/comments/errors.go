package comments

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is returned when the session may not perform a mutation.
	// No request is sent.
	ErrForbidden = errors.New("forbidden")

	// ErrDeleteInFlight is returned when a delete for the same comment id
	// has not completed yet.
	ErrDeleteInFlight = errors.New("delete already in flight")

	// ErrCommentNotFound is returned when the comment is not part of the
	// loaded thread.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrDeleteFailed matches every *DeleteError.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrEmptyComment is returned when posting blank text.
	ErrEmptyComment = errors.New("comment text is empty")
)

// DeleteError reports a delete whose remote call failed and was rolled back.
type DeleteError struct {
	URI       string
	CommentID string
	Err       error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete comment %s on %s: %v", e.CommentID, e.URI, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDeleteFailed) true for any DeleteError.
func (e *DeleteError) Is(target error) bool {
	return target == ErrDeleteFailed
}
