package commands

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/newsdesk/internal/core/comments"
	"github.com/colonyops/newsdesk/internal/core/config"
	"github.com/colonyops/newsdesk/internal/core/feed"
	"github.com/colonyops/newsdesk/internal/newsdesk"
)

func TestFlags_ApplyOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	f := &Flags{APIURL: "http://127.0.0.1:8000/", MetricsAddr: ":9090"}

	f.ApplyOverrides(&cfg)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.API.BaseURL)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)

	before := config.DefaultConfig()
	(&Flags{}).ApplyOverrides(&before)
	assert.Equal(t, config.DefaultConfig(), before)
}

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer

	got, err := resolveFormat(formatAuto, &buf)
	require.NoError(t, err)
	assert.Equal(t, formatJSON, got, "non-terminal writers get JSON")

	got, err = resolveFormat(formatTable, &buf)
	require.NoError(t, err)
	assert.Equal(t, formatTable, got)

	_, err = resolveFormat("yaml", &buf)
	require.Error(t, err)
}

func TestStoryMarkdown(t *testing.T) {
	story := newsdesk.StoryView{
		Story: feed.Story{
			URI:      "nyt://article/a",
			Headline: "Farmers market reopens",
			Abstract: "Stalls return to the square.",
			WebURL:   "https://example.com/a",
		},
		Open: true,
		Thread: newsdesk.ThreadView{
			State: comments.Loaded,
			Comments: []newsdesk.CommentView{
				{Comment: comments.Comment{ID: "c1", Author: "Ana", Text: "Finally!\nSee you there.", Created: time.Now().Add(-2 * time.Hour)}},
			},
		},
	}

	md := storyMarkdown(story)

	assert.Contains(t, md, "# Farmers market reopens")
	assert.Contains(t, md, "[Read the full story](https://example.com/a)")
	assert.Contains(t, md, "## Comments (1)")
	assert.Contains(t, md, "**Ana** · 2 hours ago `c1`")
	assert.Contains(t, md, "> Finally!\n> See you there.")
}

func TestStoryMarkdown_ThreadStates(t *testing.T) {
	story := newsdesk.StoryView{Story: feed.Story{Headline: "H"}}

	assert.NotContains(t, storyMarkdown(story), "Comments")

	story.Thread = newsdesk.ThreadView{State: comments.Loaded}
	assert.Contains(t, storyMarkdown(story), "_No comments yet._")

	story.Thread = newsdesk.ThreadView{State: comments.Failed, Err: errors.New("boom")}
	assert.Contains(t, storyMarkdown(story), "_Could not load comments: boom_")
}

func TestFieldErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Metrics.Addr = "9090"
	cfg.TUI.Theme = "neon"

	err := cfg.ValidateDeep("")
	require.Error(t, err)

	var fe criterio.FieldErrors
	require.ErrorAs(t, err, &fe)

	out := fieldErrors(err)
	assert.Contains(t, out, "metrics.addr")
	assert.Contains(t, out, "tui.theme")

	plain := fieldErrors(errors.New("broken"))
	assert.Equal(t, map[string]string{"config": "broken"}, plain)
}

func TestNewRoot(t *testing.T) {
	root := NewRoot(&Flags{}, &newsdesk.App{}, "test")

	names := make([]string, 0, len(root.Commands))
	for _, c := range root.Commands {
		names = append(names, c.Name)
	}

	assert.ElementsMatch(t, []string{"stories", "comments", "whoami", "serve", "config"}, names)
	assert.NotNil(t, root.Action)
}
