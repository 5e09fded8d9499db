// Package trends looks up currently trending topics from an RSS feed.
package trends

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	httpTimeout = 15 * time.Second
	maxTopics   = 20
	storeKey    = "trends"
	// retryBackoff spaces out fetches while the feed is failing.
	retryBackoff = time.Minute
)

// Client fetches trending topic titles from an RSS or Atom feed.
type Client struct {
	feedURL string
	client  *http.Client
}

// NewClient creates a Client for the given feed URL.
func NewClient(feedURL string) *Client {
	return &Client{
		feedURL: feedURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// Fetch returns the item titles of the feed, de-duplicated, in feed order.
func (c *Client) Fetch(ctx context.Context) ([]string, error) {
	fp := gofeed.NewParser()
	fp.Client = c.client

	feed, err := fp.ParseURLWithContext(c.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing trends feed %q: %w", c.feedURL, err)
	}

	var topics []string
	seen := make(map[string]bool)
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		key := strings.ToLower(title)
		if title == "" || seen[key] {
			continue
		}
		seen[key] = true
		topics = append(topics, title)
		if len(topics) >= maxTopics {
			break
		}
	}
	return topics, nil
}

// Fetcher is implemented by Client.
type Fetcher interface {
	Fetch(ctx context.Context) ([]string, error)
}

// Store persists the last successful snapshot.
type Store interface {
	GetValue(ctx context.Context, key string, dest any) error
	SetValue(ctx context.Context, key string, value any) error
}

// snapshot is the persisted form of the cache.
type snapshot struct {
	Topics    []string  `json:"topics"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache serves trending topics for up to ttl before fetching again. A fetch
// failure keeps serving the previous list and holds off the next fetch for
// retryBackoff.
type Cache struct {
	fetcher Fetcher
	store   Store
	ttl     time.Duration
	now     func() time.Time

	mu        sync.Mutex
	topics    []string
	fetchedAt time.Time
	retryAt   time.Time // no fetch before this after a failure
	loaded    bool
}

// NewCache creates a Cache. store may be nil.
func NewCache(fetcher Fetcher, store Store, ttl time.Duration) *Cache {
	return &Cache{
		fetcher: fetcher,
		store:   store,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Topics returns the cached topics, refreshing them when stale. It never
// fails; an unavailable feed yields the last known list or nil.
func (c *Cache) Topics(ctx context.Context) []string {
	c.mu.Lock()
	c.loadSnapshot(ctx)
	now := c.now()
	fresh := !c.fetchedAt.IsZero() && now.Sub(c.fetchedAt) < c.ttl
	backingOff := now.Before(c.retryAt)
	topics := c.topics
	c.mu.Unlock()

	if fresh || backingOff {
		return topics
	}

	if err := c.Refresh(ctx); err != nil {
		c.mu.Lock()
		c.retryAt = c.now().Add(retryBackoff)
		c.mu.Unlock()
		slog.Warn("failed to refresh trending topics, serving cached list", "error", err, "cached", len(topics))
		return topics
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topics
}

// Refresh fetches the feed and replaces the cached list.
func (c *Cache) Refresh(ctx context.Context) error {
	topics, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	now := c.now()
	c.mu.Lock()
	c.topics = topics
	c.fetchedAt = now
	c.retryAt = time.Time{}
	c.loaded = true
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SetValue(ctx, storeKey, snapshot{Topics: topics, FetchedAt: now}); err != nil {
			slog.Warn("failed to persist trending topics", "error", err)
		}
	}

	slog.Info("refreshed trending topics", "count", len(topics))
	return nil
}

// loadSnapshot seeds the cache from the store once. Callers hold c.mu.
func (c *Cache) loadSnapshot(ctx context.Context) {
	if c.loaded {
		return
	}
	c.loaded = true
	if c.store == nil {
		return
	}

	var snap snapshot
	if err := c.store.GetValue(ctx, storeKey, &snap); err != nil {
		return
	}
	c.topics = snap.Topics
	c.fetchedAt = snap.FetchedAt
}
