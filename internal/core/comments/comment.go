// Package comments holds the per-article comment thread and the state
// machine behind optimistic deletes.
package comments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Comment is a single comment. ID is unique within its thread.
type Comment struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Created time.Time `json:"created,omitzero"`
}

// Draft is the body of a new comment.
type Draft struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

// createdLayouts lists the encodings the comments API is known to produce:
// RFC 3339, RFC 1123 (the default JSON date format of the backend) and
// naive ISO-8601 without a zone, which is read as UTC.
var createdLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON accepts any of the known created encodings, including null.
// A created value in any other shape leaves Created zero instead of
// failing the comment, so one odd timestamp cannot fail a whole thread.
func (c *Comment) UnmarshalJSON(data []byte) error {
	type alias Comment
	var raw struct {
		alias
		Created json.RawMessage `json:"created"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Comment(raw.alias)
	c.Created = time.Time{}

	created := bytes.TrimSpace(raw.Created)
	if len(created) == 0 || bytes.Equal(created, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(created, &s); err != nil {
		log.Debug().Str("comment", c.ID).RawJSON("created", created).Msg("ignoring non-string created")
		return nil
	}

	t, err := ParseCreated(s)
	if err != nil {
		log.Debug().Err(err).Str("comment", c.ID).Msg("ignoring created timestamp")
		return nil
	}
	c.Created = t
	return nil
}

// ParseCreated parses a created timestamp. An empty string is the zero time.
func ParseCreated(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
