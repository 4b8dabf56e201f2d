package devserver

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/session"
)

// Fixtures seeds the dev server.
type Fixtures struct {
	// User is the logged-in user. Nil starts the server logged out.
	User     *session.UserInfo           `yaml:"user"`
	Stories  []StoryFixture              `yaml:"stories"`
	Comments map[string][]CommentFixture `yaml:"comments"` // keyed by story uri
}

type StoryFixture struct {
	URI      string `yaml:"uri"`
	Headline string `yaml:"headline"`
	Abstract string `yaml:"abstract"`
	ImageURL string `yaml:"image_url"`
	WebURL   string `yaml:"web_url"`
}

type CommentFixture struct {
	ID      string    `yaml:"id"`
	Author  string    `yaml:"author"`
	Text    string    `yaml:"text"`
	Created time.Time `yaml:"created"`
}

func (f CommentFixture) comment() comments.Comment {
	return comments.Comment{ID: f.ID, Author: f.Author, Text: f.Text, Created: f.Created}
}

// LoadFixtures reads fixtures from a YAML file.
func LoadFixtures(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("read fixtures: %w", err)
	}

	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	return fx, nil
}

// LoadFixturesGlob reads and merges every fixture file matching pattern,
// which may use ** to match nested directories. Files are merged in
// lexical order: stories are appended, comment threads of the same story
// are concatenated and the last file that sets a user wins.
func LoadFixturesGlob(pattern string) (Fixtures, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return Fixtures{}, fmt.Errorf("match fixtures %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return Fixtures{}, fmt.Errorf("no fixture files match %q", pattern)
	}
	slices.Sort(paths)

	merged := Fixtures{Comments: make(map[string][]CommentFixture)}
	for _, path := range paths {
		fx, err := LoadFixtures(path)
		if err != nil {
			return Fixtures{}, fmt.Errorf("%s: %w", path, err)
		}
		if fx.User != nil {
			merged.User = fx.User
		}
		merged.Stories = append(merged.Stories, fx.Stories...)
		for uri, list := range fx.Comments {
			merged.Comments[uri] = append(merged.Comments[uri], list...)
		}
	}
	return merged, nil
}

// DefaultFixtures returns a small feed with one commented story.
func DefaultFixtures() Fixtures {
	created := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	return Fixtures{
		Stories: []StoryFixture{
			{
				URI:      "nyt://article/davis-farmers-market",
				Headline: "Davis Farmers Market Marks 50 Years",
				Abstract: "Vendors and regulars gathered in Central Park to celebrate the market's anniversary.",
				ImageURL: "images/2025/05/01/davis-market.jpg",
				WebURL:   "https://www.nytimes.com/2025/05/01/us/davis-farmers-market.html",
			},
			{
				URI:      "nyt://article/sacramento-light-rail",
				Headline: "Sacramento Extends Light Rail Toward the Airport",
				Abstract: "The long-planned extension clears its final funding vote.",
				WebURL:   "https://www.nytimes.com/2025/04/28/us/sacramento-light-rail.html",
			},
			{
				URI:      "nyt://article/uc-davis-research",
				Headline: "UC Davis Researchers Map Valley Groundwater",
				Abstract: "A new survey shows how far aquifers have dropped since the last drought.",
			},
		},
		Comments: map[string][]CommentFixture{
			"nyt://article/davis-farmers-market": {
				{ID: "c1", Author: "aggie@example.com", Text: "Best peaches in the valley.", Created: created},
				{ID: "c2", Author: "reader@example.com", Text: "Fifty years already?", Created: created.Add(time.Hour)},
			},
		},
	}
}
