// Package reddit is a small client for Reddit's public, unauthenticated
// read API.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/models"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://www.reddit.com"
	defaultUserAgent = "spillcheck/1.0"
	httpTimeout      = 20 * time.Second
)

// StatusError is returned for non-200 upstream responses.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// IsBlocked reports whether err is a rate-limit or access-denied response,
// which the RSS endpoints are often not subject to.
func IsBlocked(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusTooManyRequests || se.StatusCode == http.StatusForbidden
}

// Client provides access to the Reddit read API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header. Reddit rejects generic agents.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLimiter replaces the request limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithRateLimit allows requestsPerMinute requests with the given burst.
func WithRateLimit(requestsPerMinute, burst int) Option {
	return func(c *Client) {
		if requestsPerMinute <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

// NewClient creates a Reddit client. By default it allows one request per
// second with a burst of five.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: httpTimeout},
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		limiter:    rate.NewLimiter(rate.Limit(1), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchParams describes one listing search.
type SearchParams struct {
	Query     string
	Subreddit string // empty searches all of Reddit
	Sort      string // relevance, hot, top, new, comments
	Time      string // hour, day, week, month, year, all
	Limit     int
}

func (p SearchParams) values() url.Values {
	v := url.Values{}
	v.Set("q", p.Query)
	sort := p.Sort
	if sort == "" {
		sort = "relevance"
	}
	v.Set("sort", sort)
	if p.Time != "" {
		v.Set("t", p.Time)
	}
	limit := p.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	v.Set("limit", strconv.Itoa(limit))
	if p.Subreddit != "" {
		v.Set("restrict_sr", "1")
	}
	return v
}

func (p SearchParams) path(ext string) string {
	if p.Subreddit == "" {
		return "/search" + ext
	}
	return "/r/" + url.PathEscape(p.Subreddit) + "/search" + ext
}

// Search runs a listing search and returns the matching submissions.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]models.RawPost, error) {
	endpoint := c.baseURL + p.path(".json") + "?" + p.values().Encode()

	var l listing
	if err := c.getJSON(ctx, endpoint, &l); err != nil {
		return nil, fmt.Errorf("searching %q: %w", p.label(), err)
	}

	posts := make([]models.RawPost, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var d postData
		if err := json.Unmarshal(child.Data, &d); err != nil {
			slog.Debug("skipping undecodable post", "error", err)
			continue
		}
		posts = append(posts, d.toPost())
	}
	return posts, nil
}

// Comments returns up to limit top-level comments on the post, best first.
// Removed, deleted and stickied moderator comments are skipped.
func (c *Client) Comments(ctx context.Context, postID string, limit int) ([]models.Comment, error) {
	if limit <= 0 {
		limit = 20
	}
	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("sort", "top")
	v.Set("depth", "1")
	endpoint := c.baseURL + "/comments/" + url.PathEscape(postID) + ".json?" + v.Encode()

	var listings []listing
	if err := c.getJSON(ctx, endpoint, &listings); err != nil {
		return nil, fmt.Errorf("fetching comments for %s: %w", postID, err)
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var comments []models.Comment
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var d commentData
		if err := json.Unmarshal(child.Data, &d); err != nil {
			continue
		}
		if d.Stickied || d.Distinguished == "moderator" {
			continue
		}
		if body := strings.TrimSpace(d.Body); body == "" || body == "[removed]" || body == "[deleted]" {
			continue
		}
		comments = append(comments, d.toComment())
		if len(comments) >= limit {
			break
		}
	}
	return comments, nil
}

// getJSON waits on the rate limiter, performs a GET and decodes the body.
func (c *Client) getJSON(ctx context.Context, endpoint string, dest any) error {
	resp, err := c.get(ctx, endpoint, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint, accept string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	slog.Debug("calling reddit", "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: endpoint}
	}
	return resp, nil
}

func (p SearchParams) label() string {
	if p.Subreddit == "" {
		return p.Query
	}
	return "r/" + p.Subreddit + ": " + p.Query
}
