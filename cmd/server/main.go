package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/ai"
	"github.com/hoanghai1803/spillcheck/internal/api"
	"github.com/hoanghai1803/spillcheck/internal/catalog"
	"github.com/hoanghai1803/spillcheck/internal/config"
	"github.com/hoanghai1803/spillcheck/internal/discussion"
	"github.com/hoanghai1803/spillcheck/internal/excerpt"
	"github.com/hoanghai1803/spillcheck/internal/fabrication"
	"github.com/hoanghai1803/spillcheck/internal/game"
	"github.com/hoanghai1803/spillcheck/internal/logging"
	"github.com/hoanghai1803/spillcheck/internal/reddit"
	"github.com/hoanghai1803/spillcheck/internal/scheduler"
	"github.com/hoanghai1803/spillcheck/internal/storage"
	"github.com/hoanghai1803/spillcheck/internal/topic"
	"github.com/hoanghai1803/spillcheck/internal/trends"
)

const (
	// fabricationTTL is how long a generated story is reused for a post.
	fabricationTTL = 7 * 24 * time.Hour
	// gameTTL is how long finished or abandoned games are kept.
	gameTTL = 24 * time.Hour

	jobPurgeSeen     = "purge-seen"
	jobRefreshTrends = "refresh-trends"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	dataDir := flag.String("data-dir", "./data", "path to data directory")
	flag.Parse()

	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}

	// Ensure data directory exists.
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	// Open database with WAL mode and pragmas.
	db, err := storage.OpenDatabase(filepath.Join(*dataDir, "spillcheck.db"))
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run schema migrations.
	if err := storage.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	store := storage.NewStore(db)

	cat, err := catalog.Load()
	if err != nil {
		slog.Error("failed to load topic catalog", "error", err)
		os.Exit(1)
	}

	// Create AI provider (nil if no API key -- every fake story then comes
	// from the fallback template).
	var aiProvider ai.AIProvider
	if cfg.AI.APIKey != "" {
		aiProvider, err = ai.NewProvider(ai.ProviderConfig{
			Provider:  cfg.AI.Provider,
			APIKey:    cfg.AI.APIKey,
			Model:     cfg.AI.Model,
			MaxTokens: cfg.AI.MaxTokens,
		})
		if err != nil {
			slog.Error("failed to create AI provider", "error", err)
			os.Exit(1)
		}
		slog.Info("AI provider configured", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	} else {
		slog.Warn("no AI provider API key configured, fabricated stories will use templates")
	}
	generator := fabrication.NewGenerator(aiProvider, time.Duration(cfg.AI.TimeoutSeconds)*time.Second, store)

	redditClient := reddit.NewClient(
		reddit.WithBaseURL(cfg.Reddit.BaseURL),
		reddit.WithUserAgent(cfg.Reddit.UserAgent),
		reddit.WithRateLimit(cfg.Reddit.RequestsPerMinute, cfg.Reddit.Burst),
	)
	fetcher := discussion.NewFetcher(redditClient, discussion.Options{
		MaxConcurrent:  cfg.Reddit.MaxConcurrent,
		SearchLimit:    cfg.Reddit.SearchLimit,
		CommentLimit:   cfg.Reddit.CommentLimit,
		TimeWindow:     cfg.Reddit.TimeWindow,
		ExtractTimeout: 10 * time.Second,
	}, discussion.ReadabilityExtractor())

	trendCache := trends.NewCache(
		trends.NewClient(cfg.Trends.FeedURL),
		store,
		time.Duration(cfg.Trends.CacheMinutes)*time.Minute,
	)

	pipeline := game.NewPipeline(topic.NewResolver(cat, trendCache), fetcher, generator, cat.GossipKeywords, game.Options{
		Excerpt: excerpt.Options{
			MinSentences: cfg.Game.MinExcerptSentences,
			MaxSentences: cfg.Game.MaxExcerptSentences,
			MaxChars:     cfg.Game.MaxExcerptChars,
		},
	})

	sched, err := newScheduler(store, trendCache, cfg)
	if err != nil {
		slog.Error("failed to schedule maintenance jobs", "error", err)
		os.Exit(1)
	}
	sched.Start()
	for _, name := range []string{jobPurgeSeen, jobRefreshTrends} {
		slog.Info("next scheduled run", "job", name, "at", sched.Next(name))
	}

	// Warm the trending list so the first empty-result suggestion does not
	// wait on the feed.
	go func() {
		if err := sched.RunNow(jobRefreshTrends); err != nil {
			slog.Warn("initial trending refresh failed", "error", err)
		}
	}()

	// Build router with all API routes and static file serving.
	router := api.NewRouter(store, pipeline, trendCache, cfg)

	// Determine server address (localhost only for security).
	addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Auto-open browser after a short delay to let the server start.
	if cfg.Server.AutoOpenBrowser {
		go func() {
			time.Sleep(500 * time.Millisecond)
			openBrowser("http://" + addr)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	sched.Stop(shutdownCtx)
}

// newScheduler registers the periodic cleanup and refresh jobs.
func newScheduler(store *storage.Store, trendCache *trends.Cache, cfg *config.Config) (*scheduler.Scheduler, error) {
	sched := scheduler.New(time.Minute)
	window := time.Duration(cfg.Game.SeenWindowMinutes) * time.Minute

	jobs := []struct {
		spec string
		name string
		job  scheduler.Job
	}{
		{cfg.Game.CleanupInterval, jobPurgeSeen, func(ctx context.Context) error {
			n, err := store.PurgeSeen(ctx, time.Now().Add(-window))
			if err == nil && n > 0 {
				slog.Info("purged seen stories", "count", n)
			}
			return err
		}},
		{cfg.Game.CleanupInterval, "purge-games", func(ctx context.Context) error {
			n, err := store.PurgeGames(ctx, time.Now().Add(-gameTTL))
			if err == nil && n > 0 {
				slog.Info("purged stale games", "count", n)
			}
			return err
		}},
		{"@daily", "purge-fabrications", func(ctx context.Context) error {
			_, err := store.PurgeFabrications(ctx, time.Now().Add(-fabricationTTL))
			return err
		}},
		{fmt.Sprintf("@every %dm", cfg.Trends.CacheMinutes), jobRefreshTrends, trendCache.Refresh},
	}

	for _, j := range jobs {
		if err := sched.Every(j.spec, j.name, j.job); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

// openBrowser opens the given URL in the user's default browser.
// It is a fire-and-forget operation; errors are silently ignored.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
