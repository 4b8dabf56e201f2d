// Package feed defines stories and maps search API documents onto them.
package feed

import (
	"slices"
	"time"
)

// Story is a read-only summary of one article. URI is its identity.
type Story struct {
	URI       string    `json:"uri"`
	Headline  string    `json:"headline"`
	Abstract  string    `json:"abstract"`
	ImageURL  string    `json:"image_url,omitempty"`
	WebURL    string    `json:"web_url,omitempty"`
	Published time.Time `json:"published,omitzero"`
}

// Status is the load state of the feed.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a snapshot of the feed. Stories keeps the last successful
// result while a refresh is loading or after a refresh failed.
type State struct {
	Status  Status
	Stories []Story
	Err     error
	Skipped int // documents dropped from the last response
}

// Clone returns a copy that does not share the stories slice.
func (s State) Clone() State {
	s.Stories = slices.Clone(s.Stories)
	return s
}
