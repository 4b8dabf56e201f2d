package feed

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// Response is the envelope returned by the stories endpoint. Documents are
// kept raw so that one malformed entry cannot fail the whole response.
type Response struct {
	Response struct {
		Docs []json.RawMessage `json:"docs"`
	} `json:"response"`
}

type document struct {
	ID       string `json:"_id"`
	URI      string `json:"uri"`
	WebURL   string `json:"web_url"`
	Abstract string `json:"abstract"`
	Snippet  string `json:"snippet"`
	PubDate  string `json:"pub_date"`
	Headline struct {
		Main string `json:"main"`
	} `json:"headline"`
	Multimedia json.RawMessage `json:"multimedia"`
}

type mediaURL struct {
	URL string `json:"url"`
}

// Multimedia is either an object with a default rendition (current search
// API) or an array of renditions (legacy search API).
type multimediaObject struct {
	Default mediaURL `json:"default"`
}

// Mapper converts raw documents into stories.
type Mapper struct {
	// ImageBase resolves relative multimedia URLs. Empty leaves them as-is.
	ImageBase *url.URL
}

// Map converts docs in order, skipping documents that do not decode or
// lack a headline. Later duplicates of a URI are dropped.
// It returns the stories and the number of skipped documents.
func (m Mapper) Map(docs []json.RawMessage) ([]Story, int) {
	stories := make([]Story, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	skipped := 0

	for _, raw := range docs {
		story, ok := m.mapOne(raw)
		if !ok {
			skipped++
			continue
		}
		if _, dup := seen[story.URI]; dup {
			skipped++
			continue
		}
		seen[story.URI] = struct{}{}
		stories = append(stories, story)
	}

	return stories, skipped
}

func (m Mapper) mapOne(raw json.RawMessage) (Story, bool) {
	var doc document
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return Story{}, false
	}

	headline := PlainText(doc.Headline.Main)
	if headline == "" {
		return Story{}, false
	}

	uri := identity(doc, headline)

	abstract := PlainText(doc.Abstract)
	if abstract == "" {
		abstract = PlainText(doc.Snippet)
	}

	return Story{
		URI:       uri,
		Headline:  headline,
		Abstract:  abstract,
		ImageURL:  m.resolveImage(firstMediaURL(doc.Multimedia)),
		WebURL:    strings.TrimSpace(doc.WebURL),
		Published: parsePubDate(doc.PubDate),
	}, true
}

// identity is the first of uri, web_url and _id. A document with none of
// them gets a name-based UUID of its headline, stable across refreshes.
func identity(doc document, headline string) string {
	for _, v := range []string{doc.URI, doc.WebURL, doc.ID} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte("headline:"+headline)).String()
}

func firstMediaURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var obj multimediaObject
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Default.URL)
	}

	var list []mediaURL
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, m := range list {
			if u := strings.TrimSpace(m.URL); u != "" {
				return u
			}
		}
	}

	return ""
}

func (m Mapper) resolveImage(raw string) string {
	if raw == "" || m.ImageBase == nil {
		return raw
	}

	ref, err := url.Parse(raw)
	if err != nil || ref.IsAbs() {
		return raw
	}

	return m.ImageBase.ResolveReference(ref).String()
}

var pubDateLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

func parsePubDate(s string) time.Time {
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// PlainText reduces markup and entities in s to whitespace-normalized text.
func PlainText(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
