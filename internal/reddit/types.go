package reddit

import (
	"encoding/json"
	"html"
	"math"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/models"
)

// listing is the envelope of every Reddit listing response.
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

// thing is a listing child; Data depends on Kind (t1 comment, t3 post).
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID                  string  `json:"id"`
	Subreddit           string  `json:"subreddit"`
	Title               string  `json:"title"`
	Selftext            string  `json:"selftext"`
	SelftextHTML        string  `json:"selftext_html"`
	URL                 string  `json:"url"`
	Permalink           string  `json:"permalink"`
	Author              string  `json:"author"`
	Score               int     `json:"score"`
	NumComments         int     `json:"num_comments"`
	UpvoteRatio         float64 `json:"upvote_ratio"`
	TotalAwardsReceived int     `json:"total_awards_received"`
	IsSelf              bool    `json:"is_self"`
	Over18              bool    `json:"over_18"`
	Stickied            bool    `json:"stickied"`
	CreatedUTC          float64 `json:"created_utc"`
}

func (d postData) toPost() models.RawPost {
	link := d.URL
	if d.IsSelf {
		link = ""
	}
	return models.RawPost{
		ID:          d.ID,
		Subreddit:   d.Subreddit,
		Title:       html.UnescapeString(d.Title),
		Body:        d.Selftext,
		BodyHTML:    html.UnescapeString(d.SelftextHTML),
		URL:         link,
		Permalink:   absolutePermalink(d.Permalink),
		Author:      d.Author,
		Score:       d.Score,
		NumComments: d.NumComments,
		UpvoteRatio: d.UpvoteRatio,
		Awards:      d.TotalAwardsReceived,
		IsSelf:      d.IsSelf,
		Over18:      d.Over18,
		Stickied:    d.Stickied,
		CreatedAt:   fromUnix(d.CreatedUTC),
	}
}

type commentData struct {
	ID               string  `json:"id"`
	Author           string  `json:"author"`
	Body             string  `json:"body"`
	Score            int     `json:"score"`
	Controversiality int     `json:"controversiality"`
	Stickied         bool    `json:"stickied"`
	Distinguished    string  `json:"distinguished"`
	CreatedUTC       float64 `json:"created_utc"`
}

func (d commentData) toComment() models.Comment {
	return models.Comment{
		ID:               d.ID,
		Author:           d.Author,
		Body:             html.UnescapeString(d.Body),
		Score:            d.Score,
		Controversiality: d.Controversiality,
		CreatedAt:        fromUnix(d.CreatedUTC),
	}
}

// absolutePermalink turns "/r/x/comments/..." into a full URL.
func absolutePermalink(p string) string {
	if p == "" || p[0] != '/' {
		return p
	}
	return "https://www.reddit.com" + p
}

func fromUnix(secs float64) time.Time {
	if secs <= 0 {
		return time.Time{}
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
