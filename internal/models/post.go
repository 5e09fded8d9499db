package models

import "time"

// RawPost is a forum submission as returned by the discussion API.
type RawPost struct {
	ID          string    `json:"id"`
	Subreddit   string    `json:"subreddit"`
	Title       string    `json:"title"`
	Body        string    `json:"body,omitempty"`
	BodyHTML    string    `json:"body_html,omitempty"`
	URL         string    `json:"url,omitempty"`
	Permalink   string    `json:"permalink"`
	Author      string    `json:"author,omitempty"`
	Score       int       `json:"score"`
	NumComments int       `json:"num_comments"`
	UpvoteRatio float64   `json:"upvote_ratio,omitempty"`
	Awards      int       `json:"awards,omitempty"`
	IsSelf      bool      `json:"is_self"`
	Over18      bool      `json:"over_18,omitempty"`
	Stickied    bool      `json:"stickied,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoryID is the stable identifier used for seen-story bookkeeping.
func (p RawPost) StoryID() string {
	return "reddit_" + p.ID
}

// Comment is a top-level reply on a post.
type Comment struct {
	ID               string    `json:"id"`
	Author           string    `json:"author,omitempty"`
	Body             string    `json:"body"`
	Score            int       `json:"score"`
	Controversiality int       `json:"controversiality,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// RankedPost is a RawPost with its engagement score and best comments.
type RankedPost struct {
	RawPost
	EngagementScore float64  `json:"engagement_score"`
	TopComments     []string `json:"top_comments"`
}
