package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/config"
	"github.com/hoanghai1803/spillcheck/internal/game"
	"github.com/hoanghai1803/spillcheck/internal/models"
	"github.com/hoanghai1803/spillcheck/internal/storage"
)

// RoundBuilder assembles a real/fake round for a topic.
type RoundBuilder interface {
	BuildRound(ctx context.Context, topic string, seen []models.SeenStory) (*models.Round, error)
}

// GetStory handles GET /api/story. It builds a single round for the "topic"
// query parameter, skipping the stories listed in the JSON "seen" parameter.
// The client keeps its own seen list, so the answer is part of the response.
func GetStory(builder RoundBuilder, store *storage.Store, cfg *config.Config) http.HandlerFunc {
	window := seenWindow(cfg)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now()
		q := r.URL.Query()

		seen, err := game.ParseSeen(q.Get("seen"), now)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid seen parameter: expected a JSON array")
			return
		}
		seen = game.Purge(seen, now, window)

		round, err := builder.BuildRound(ctx, q.Get("topic"), seen)
		if err != nil {
			writeGameError(w, err)
			return
		}

		recordRound(ctx, store, "", round, now)
		writeJSON(w, http.StatusOK, round)
	}
}

// recordRound writes the audit row for round. Failures are logged only.
func recordRound(ctx context.Context, store *storage.Store, gameID string, round *models.Round, now time.Time) {
	md := round.Metadata
	rec := &models.RoundRecord{
		GameID:          gameID,
		Topic:           md.Topic,
		Query:           md.Query,
		RealStoryID:     round.Stories[round.CorrectIndex].StoryID,
		Subreddit:       md.Subreddit,
		EngagementScore: md.EngagementScore,
		FallbackUsed:    md.FallbackUsed,
		CreatedAt:       now,
	}
	if _, err := store.RecordRound(ctx, rec); err != nil {
		slog.Warn("failed to record round", "game_id", gameID, "error", err)
	}
}
