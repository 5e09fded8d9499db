package models

import "time"

// Story is one of the two excerpts shown to the player in a round.
type Story struct {
	Content   string `json:"content"`
	IsReal    bool   `json:"isReal"`
	SourceURL string `json:"sourceUrl,omitempty"`
	StoryID   string `json:"storyId"`
}

// SeenStory records a story the player was already shown.
type SeenStory struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// RoundMetadata describes how a round was assembled.
type RoundMetadata struct {
	SubjectMatch    bool     `json:"subjectMatch"`
	EngagementScore float64  `json:"engagementScore"`
	NewStoryIDs     []string `json:"newStoryIds"`
	Topic           string   `json:"topic"`
	Query           string   `json:"query"`
	Subreddit       string   `json:"subreddit,omitempty"`
	FallbackUsed    bool     `json:"fallbackUsed"`
}

// Round is a real/fake pair in presentation order. CorrectIndex points at
// the real story.
type Round struct {
	Stories      [2]Story      `json:"stories"`
	CorrectIndex int           `json:"correctIndex"`
	Metadata     RoundMetadata `json:"metadata"`
}

// RoundRecord is the audit row written for every generated round.
type RoundRecord struct {
	ID              int64     `json:"id"`
	GameID          string    `json:"game_id,omitempty"`
	Topic           string    `json:"topic"`
	Query           string    `json:"query"`
	RealStoryID     string    `json:"real_story_id"`
	Subreddit       string    `json:"subreddit,omitempty"`
	EngagementScore float64   `json:"engagement_score"`
	FallbackUsed    bool      `json:"fallback_used"`
	CreatedAt       time.Time `json:"created_at"`
}

// Fabrication is a cached generated counterpart for a real post.
type Fabrication struct {
	PostID    string    `json:"post_id"`
	Model     string    `json:"model"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
