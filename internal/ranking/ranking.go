// Package ranking filters candidate posts for relevance and orders them by
// engagement.
package ranking

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/excerpt"
	"github.com/hoanghai1803/spillcheck/internal/models"
)

const (
	// minBodyChars marks a post as substantive even without gossip words.
	minBodyChars = 280
	// minDiscussion marks a post as substantive by comment count.
	minDiscussion = 25
	// maxTopComments is how many comment bodies a RankedPost carries.
	maxTopComments = 5
	// controversialRatio is the upvote ratio at or below which a post counts
	// as divisive.
	controversialRatio = 0.75
)

// Weights tunes the engagement score.
type Weights struct {
	Votes                 float64
	Comments              float64
	Controversy           float64
	Award                 float64
	Recency               float64
	HalfLifeHours         float64
	Quality               float64
	CommentScoreThreshold int
	LengthDivisor         float64
}

// DefaultWeights favours discussion over raw votes, since a long argument in
// the comments is what makes a thread read like gossip.
func DefaultWeights() Weights {
	return Weights{
		Votes:                 1,
		Comments:              2,
		Controversy:           150,
		Award:                 25,
		Recency:               200,
		HalfLifeHours:         48,
		Quality:               0.5,
		CommentScoreThreshold: 10,
		LengthDivisor:         20,
	}
}

// Relevant reports whether post mentions at least one topic token and reads
// like gossip: it contains a gossip keyword, has a substantial body, or drew
// a real discussion.
func Relevant(post models.RawPost, tokens, keywords []string) bool {
	body := post.Body
	if strings.TrimSpace(body) == "" && post.BodyHTML != "" {
		body = excerpt.PlainText("", post.BodyHTML)
	}
	text := strings.ToLower(post.Title + " " + body)

	mentioned := false
	for _, tok := range tokens {
		if tok != "" && strings.Contains(text, strings.ToLower(tok)) {
			mentioned = true
			break
		}
	}
	if !mentioned {
		return false
	}

	if len(body) >= minBodyChars || post.NumComments >= minDiscussion {
		return true
	}
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Filter keeps the relevant posts in their original order.
func Filter(posts []models.RawPost, tokens, keywords []string) []models.RawPost {
	var out []models.RawPost
	for _, p := range posts {
		if p.Stickied || !Relevant(p, tokens, keywords) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Score computes the engagement score of post. It depends only on its
// arguments.
func Score(post models.RawPost, comments []models.Comment, now time.Time, w Weights) float64 {
	score := float64(post.Score)*w.Votes + float64(post.NumComments)*w.Comments

	if post.UpvoteRatio > 0 && post.UpvoteRatio <= controversialRatio {
		score += w.Controversy
	}
	for _, c := range comments {
		if c.Controversiality > 0 {
			score += w.Controversy / 2
		}
	}

	score += float64(post.Awards) * w.Award
	score += recency(post.CreatedAt, now, w)
	score += quality(comments, w)
	return score
}

// recency decays exponentially with the post's age. Posts with no time, or
// with a time after now, count as brand new.
func recency(created, now time.Time, w Weights) float64 {
	if w.Recency == 0 {
		return 0
	}
	age := 0.0
	if !created.IsZero() && created.Before(now) {
		age = now.Sub(created).Hours()
	}
	if w.HalfLifeHours <= 0 {
		return w.Recency
	}
	return w.Recency * math.Exp(-age/w.HalfLifeHours*math.Ln2)
}

// quality is the weighted mean of score plus length credit over comments that
// pass the score threshold.
func quality(comments []models.Comment, w Weights) float64 {
	divisor := w.LengthDivisor
	if divisor <= 0 {
		divisor = 1
	}

	var sum float64
	n := 0
	for _, c := range comments {
		if c.Score < w.CommentScoreThreshold {
			continue
		}
		sum += float64(c.Score) + float64(len(c.Body))/divisor
		n++
	}
	if n == 0 {
		return 0
	}
	return w.Quality * sum / float64(n)
}

// Rank scores every post and sorts them best first. Ties keep their input
// order. commentsByID may be nil.
func Rank(posts []models.RawPost, commentsByID map[string][]models.Comment, now time.Time, w Weights) []models.RankedPost {
	ranked := make([]models.RankedPost, len(posts))
	for i, p := range posts {
		comments := commentsByID[p.ID]
		ranked[i] = models.RankedPost{
			RawPost:         p,
			EngagementScore: Score(p, comments, now, w),
			TopComments:     topComments(comments),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EngagementScore > ranked[j].EngagementScore
	})
	return ranked
}

// topComments returns up to maxTopComments bodies, highest scored first.
func topComments(comments []models.Comment) []string {
	sorted := append([]models.Comment(nil), comments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	var out []string
	for _, c := range sorted {
		body := strings.TrimSpace(c.Body)
		if body == "" {
			continue
		}
		out = append(out, body)
		if len(out) == maxTopComments {
			break
		}
	}
	return out
}
