// Package discussion gathers candidate posts for a topic from the forum API.
package discussion

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/models"
	"github.com/hoanghai1803/spillcheck/internal/reddit"
	"github.com/hoanghai1803/spillcheck/internal/topic"
	"golang.org/x/sync/errgroup"
)

// Source is the forum API the fetcher reads from.
type Source interface {
	Search(ctx context.Context, p reddit.SearchParams) ([]models.RawPost, error)
	SearchRSS(ctx context.Context, p reddit.SearchParams) ([]models.RawPost, error)
	Comments(ctx context.Context, postID string, limit int) ([]models.Comment, error)
}

// defaultExtractTimeout bounds one linked-article fetch.
const defaultExtractTimeout = 10 * time.Second

// Options controls fetch fan-out and sizes.
type Options struct {
	MaxConcurrent  int
	SearchLimit    int
	CommentLimit   int
	TimeWindow     string
	ExtractTimeout time.Duration // per linked article
}

// FailedQuery records a search that could not be completed.
type FailedQuery struct {
	Scope string `json:"scope"`
	Error string `json:"error"`
}

// FetchResult contains the merged posts and any failed searches.
type FetchResult struct {
	Posts  []models.RawPost
	Failed []FailedQuery
}

// Enriched is a post with the comments loaded for ranking.
type Enriched struct {
	Post     models.RawPost
	Comments []models.Comment
}

// Fetcher runs searches with bounded concurrency.
type Fetcher struct {
	source  Source
	opts    Options
	extract Extractor
}

// NewFetcher creates a Fetcher. A nil extract disables article extraction.
func NewFetcher(source Source, opts Options, extract Extractor) *Fetcher {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 6
	}
	if opts.SearchLimit < 1 {
		opts.SearchLimit = 25
	}
	if opts.CommentLimit < 1 {
		opts.CommentLimit = 20
	}
	if opts.TimeWindow == "" {
		opts.TimeWindow = "week"
	}
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = defaultExtractTimeout
	}
	return &Fetcher{source: source, opts: opts, extract: extract}
}

// Search issues one query per subreddit in the plan plus a site-wide query,
// concurrently. Failures are logged and recorded in FetchResult.Failed rather
// than failing the batch. Posts are merged in subreddit order followed by the
// site-wide results, keeping the first occurrence of each post ID.
func (f *Fetcher) Search(ctx context.Context, plan topic.Plan) FetchResult {
	scopes := append(append([]string(nil), plan.Subreddits...), "")
	batches := make([][]models.RawPost, len(scopes))

	var (
		result FetchResult
		mu     sync.Mutex
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.MaxConcurrent)

	for i, sub := range scopes {
		g.Go(func() error {
			p := reddit.SearchParams{
				Query:     plan.Query,
				Subreddit: sub,
				Time:      f.opts.TimeWindow,
				Limit:     f.opts.SearchLimit,
			}

			posts, err := f.searchOne(ctx, p)
			if err != nil {
				slog.Warn("failed to search forum",
					"scope", scopeName(sub),
					"query", plan.Query,
					"error", err,
				)

				mu.Lock()
				result.Failed = append(result.Failed, FailedQuery{
					Scope: scopeName(sub),
					Error: err.Error(),
				})
				mu.Unlock()

				return nil // skip failures, don't fail the batch
			}

			batches[i] = posts
			slog.Debug("searched forum", "scope", scopeName(sub), "posts", len(posts))
			return nil
		})
	}

	_ = g.Wait() // workers never return errors

	seen := make(map[string]bool)
	for _, batch := range batches {
		for _, p := range batch {
			if p.ID == "" || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			result.Posts = append(result.Posts, p)
		}
	}

	slog.Info("fetched candidate posts",
		"query", plan.Query,
		"plan", plan.Name,
		"posts", len(result.Posts),
		"failed", len(result.Failed),
	)
	return result
}

// searchOne runs a JSON search. The site-wide query, and any query the JSON
// API refuses, is retried once against the RSS endpoint.
func (f *Fetcher) searchOne(ctx context.Context, p reddit.SearchParams) ([]models.RawPost, error) {
	posts, err := f.source.Search(ctx, p)
	if err == nil {
		return posts, nil
	}
	if p.Subreddit != "" && !reddit.IsBlocked(err) {
		return nil, err
	}

	slog.Debug("falling back to rss search", "scope", scopeName(p.Subreddit), "error", err)
	rssPosts, rssErr := f.source.SearchRSS(ctx, p)
	if rssErr != nil {
		return nil, err
	}
	return rssPosts, nil
}

// Enrich loads comments for each post concurrently and fills in the body of
// link posts from the linked article. A post whose comments cannot be loaded
// is kept with no comments. Output order matches input order.
func (f *Fetcher) Enrich(ctx context.Context, posts []models.RawPost) []Enriched {
	out := make([]Enriched, len(posts))

	var g errgroup.Group
	g.SetLimit(f.opts.MaxConcurrent)

	for i, p := range posts {
		g.Go(func() error {
			comments, err := f.source.Comments(ctx, p.ID, f.opts.CommentLimit)
			if err != nil {
				slog.Warn("failed to load comments", "post", p.ID, "error", err)
				comments = nil
			}

			if f.extract != nil && !p.IsSelf && strings.TrimSpace(p.Body) == "" && extractable(p.URL) {
				text, err := f.extractArticle(ctx, p.URL)
				if err != nil {
					slog.Debug("article extraction failed", "post", p.ID, "url", p.URL, "error", err)
				} else {
					p.Body = text
				}
			}

			out[i] = Enriched{Post: p, Comments: comments}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// extractArticle runs the extractor bounded by ExtractTimeout.
func (f *Fetcher) extractArticle(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.ExtractTimeout)
	defer cancel()
	return f.extract(ctx, rawURL)
}

func scopeName(sub string) string {
	if sub == "" {
		return "all"
	}
	return "r/" + sub
}
