// Package game assembles real-or-fake rounds and runs timed play sessions.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hoanghai1803/spillcheck/internal/ai"
	"github.com/hoanghai1803/spillcheck/internal/discussion"
	"github.com/hoanghai1803/spillcheck/internal/excerpt"
	"github.com/hoanghai1803/spillcheck/internal/fabrication"
	"github.com/hoanghai1803/spillcheck/internal/models"
	"github.com/hoanghai1803/spillcheck/internal/ranking"
	"github.com/hoanghai1803/spillcheck/internal/topic"
)

var (
	// ErrNoStories is returned when no unseen relevant post exists for a topic.
	ErrNoStories = errors.New("no stories found")
	// ErrUpstream is returned when every search against the forum failed.
	ErrUpstream = errors.New("discussion source unavailable")
)

// NoStoriesError carries an alternative topic to suggest. It matches
// ErrNoStories, or ErrUpstream when Upstream is set, with errors.Is.
type NoStoriesError struct {
	Topic      string
	Suggestion string
	Upstream   bool
}

func (e *NoStoriesError) Error() string {
	if e.Upstream {
		return fmt.Sprintf("%s for %q", ErrUpstream, e.Topic)
	}
	return fmt.Sprintf("%s for %q", ErrNoStories, e.Topic)
}

func (e *NoStoriesError) Is(target error) bool {
	if e.Upstream {
		return target == ErrUpstream
	}
	return target == ErrNoStories
}

// Fetcher finds and enriches candidate posts.
type Fetcher interface {
	Search(ctx context.Context, plan topic.Plan) discussion.FetchResult
	Enrich(ctx context.Context, posts []models.RawPost) []discussion.Enriched
}

// Fabricator writes the fake story.
type Fabricator interface {
	Generate(ctx context.Context, req ai.FabricationRequest, postID string) fabrication.Result
}

// Options tunes round assembly.
type Options struct {
	Weights   ranking.Weights
	Excerpt   excerpt.Options
	EnrichTop int // candidates whose comments are loaded before final ranking
}

// Pipeline builds rounds from a topic.
type Pipeline struct {
	resolver   *topic.Resolver
	fetcher    Fetcher
	fabricator Fabricator
	keywords   []string
	opts       Options

	mu  sync.Mutex // guards rng
	rng *rand.Rand

	now   func() time.Time
	newID func() string
}

// NewPipeline creates a Pipeline. keywords are the gossip keywords used for
// relevance and excerpt scoring.
func NewPipeline(resolver *topic.Resolver, fetcher Fetcher, fabricator Fabricator, keywords []string, opts Options) *Pipeline {
	if opts.EnrichTop < 1 {
		opts.EnrichTop = 5
	}
	if opts.Weights == (ranking.Weights{}) {
		opts.Weights = ranking.DefaultWeights()
	}
	opts.Excerpt.Keywords = keywords

	return &Pipeline{
		resolver:   resolver,
		fetcher:    fetcher,
		fabricator: fabricator,
		keywords:   keywords,
		opts:       opts,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// BuildRound finds the most engaging unseen post for rawTopic and pairs it
// with a fabricated one.
func (p *Pipeline) BuildRound(ctx context.Context, rawTopic string, seen []models.SeenStory) (*models.Round, error) {
	q, err := p.resolver.Normalize(rawTopic)
	if err != nil {
		return nil, err
	}

	seenIDs := SeenSet(seen)
	var (
		plan       topic.Plan
		candidates []models.RawPost
		attempts   int
		failures   int
	)
	for _, pl := range p.resolver.Plans(q) {
		res := p.fetcher.Search(ctx, pl)
		attempts += len(pl.Subreddits) + 1
		failures += len(res.Failed)

		for _, post := range ranking.Filter(res.Posts, pl.Tokens, p.keywords) {
			if !seenIDs[post.StoryID()] {
				candidates = append(candidates, post)
			}
		}
		if len(candidates) > 0 {
			plan = pl
			break
		}
		slog.Info("no candidates for plan", "plan", pl.Name, "query", pl.Query, "fetched", len(res.Posts))
	}

	if len(candidates) == 0 {
		return nil, &NoStoriesError{
			Topic:      q.Raw,
			Suggestion: p.resolver.Suggest(ctx, q.Raw),
			Upstream:   attempts > 0 && failures == attempts,
		}
	}

	now := p.now()
	best := p.pick(ctx, candidates, now)

	ex := excerpt.Build(best, plan.Tokens, p.opts.Excerpt)
	fake := p.fabricator.Generate(ctx, ai.FabricationRequest{
		Topic:       q.Raw,
		Reference:   ex.Text,
		TargetWords: ex.WordCount,
		Sentences:   ex.SentenceCount,
	}, best.ID)

	realStory := models.Story{
		Content:   ex.Text,
		SourceURL: best.Permalink,
		StoryID:   best.StoryID(),
	}
	fakeStory := models.Story{
		Content: fake.Text,
		StoryID: "fake_" + p.newID(),
	}

	p.mu.Lock()
	stories, correct := Shuffle(realStory, fakeStory, p.rng)
	p.mu.Unlock()

	slog.Info("built round",
		"topic", q.Raw,
		"plan", plan.Name,
		"post", best.ID,
		"subreddit", best.Subreddit,
		"score", best.EngagementScore,
		"fallback", fake.Fallback,
	)

	return &models.Round{
		Stories:      stories,
		CorrectIndex: correct,
		Metadata: models.RoundMetadata{
			SubjectMatch:    ex.SubjectMatch,
			EngagementScore: best.EngagementScore,
			NewStoryIDs:     []string{realStory.StoryID},
			Topic:           q.Raw,
			Query:           plan.Query,
			Subreddit:       best.Subreddit,
			FallbackUsed:    fake.Fallback,
		},
	}, nil
}

// pick ranks candidates on post data alone, loads comments for the leaders
// and ranks those again with comment quality included.
func (p *Pipeline) pick(ctx context.Context, candidates []models.RawPost, now time.Time) models.RankedPost {
	prelim := ranking.Rank(candidates, nil, now, p.opts.Weights)
	if len(prelim) > p.opts.EnrichTop {
		prelim = prelim[:p.opts.EnrichTop]
	}

	top := make([]models.RawPost, len(prelim))
	for i, r := range prelim {
		top[i] = r.RawPost
	}

	enriched := p.fetcher.Enrich(ctx, top)
	posts := make([]models.RawPost, len(enriched))
	comments := make(map[string][]models.Comment, len(enriched))
	for i, e := range enriched {
		posts[i] = e.Post
		comments[e.Post.ID] = e.Comments
	}

	// Final ties go to the earlier fetched post.
	order := make(map[string]int, len(candidates))
	for i, c := range candidates {
		if _, ok := order[c.ID]; !ok {
			order[c.ID] = i
		}
	}
	sort.SliceStable(posts, func(i, j int) bool { return order[posts[i].ID] < order[posts[j].ID] })

	return ranking.Rank(posts, comments, now, p.opts.Weights)[0]
}
