package reddit

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/excerpt"
	"github.com/hoanghai1803/spillcheck/internal/models"
	"github.com/mmcdole/gofeed"
)

// commentsPathPattern extracts the post ID from a /comments/<id>/ link.
var commentsPathPattern = regexp.MustCompile(`/comments/([a-z0-9]+)`)

// submittedByPattern matches the "submitted by /u/x [link] [comments]" footer
// Reddit appends to every feed entry.
var submittedByPattern = regexp.MustCompile(`(?s)\s*submitted by\s+/u/.*$`)

// selfTextEnd closes the self-text block of a feed entry.
const selfTextEnd = "<!-- SC_ON -->"

// rssBody splits entry content into body html and plain text without the
// feed footer. Link posts have no self text, so only their footer-free text
// is kept.
func rssBody(content string) (bodyHTML, body string) {
	bodyHTML = content
	if i := strings.Index(content, selfTextEnd); i >= 0 {
		bodyHTML = content[:i]
	}

	text := excerpt.PlainText("", bodyHTML)
	if loc := submittedByPattern.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
		bodyHTML = ""
	}
	return bodyHTML, strings.TrimSpace(text)
}

// SearchRSS runs the same search against the RSS endpoint. The feed has no
// vote or comment counts, so those fields are zero.
func (c *Client) SearchRSS(ctx context.Context, p SearchParams) ([]models.RawPost, error) {
	endpoint := c.baseURL + p.path(".rss") + "?" + p.values().Encode()

	resp, err := c.get(ctx, endpoint, "application/atom+xml, application/rss+xml")
	if err != nil {
		return nil, fmt.Errorf("searching rss %q: %w", p.label(), err)
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing rss %q: %w", p.label(), err)
	}

	posts := make([]models.RawPost, 0, len(feed.Items))
	for _, item := range feed.Items {
		m := commentsPathPattern.FindStringSubmatch(item.Link)
		if m == nil || item.Title == "" {
			continue
		}

		var created time.Time
		switch {
		case item.PublishedParsed != nil:
			created = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			created = item.UpdatedParsed.UTC()
		}

		sub := p.Subreddit
		if len(item.Categories) > 0 {
			sub = item.Categories[0]
		}

		var author string
		if item.Author != nil {
			author = item.Author.Name
		}

		bodyHTML, body := rssBody(item.Content)
		posts = append(posts, models.RawPost{
			ID:        m[1],
			Subreddit: sub,
			Title:     item.Title,
			Body:      body,
			BodyHTML:  bodyHTML,
			Permalink: item.Link,
			Author:    author,
			IsSelf:    true,
			CreatedAt: created,
		})
	}
	return posts, nil
}
