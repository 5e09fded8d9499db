package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hoanghai1803/spillcheck/internal/config"
	"github.com/hoanghai1803/spillcheck/internal/game"
	"github.com/hoanghai1803/spillcheck/internal/models"
	"github.com/hoanghai1803/spillcheck/internal/storage"
)

// GuessResult is the reply to a guess.
type GuessResult struct {
	Correct bool      `json:"correct"`
	Game    game.View `json:"game"`
}

// CreateGame handles POST /api/games. It builds the first round for the
// topic and starts the countdown.
func CreateGame(store *storage.Store, builder RoundBuilder, cfg *config.Config) http.HandlerFunc {
	duration := time.Duration(cfg.Game.RoundSeconds) * time.Second

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body struct {
			Topic string `json:"topic"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if strings.TrimSpace(body.Topic) == "" {
			writeError(w, http.StatusBadRequest, "topic is required")
			return
		}

		round, err := builder.BuildRound(ctx, body.Topic, nil)
		if err != nil {
			writeGameError(w, err)
			return
		}

		now := time.Now()
		s := game.NewSession(uuid.NewString(), round.Metadata.Topic, duration, now)
		if err := s.Start(now, round); err != nil {
			writeGameError(w, err)
			return
		}
		if err := persist(ctx, store, s, round, now); err != nil {
			slog.Error("failed to save game", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save game")
			return
		}

		slog.Info("game started", "game_id", s.Game().ID, "topic", s.Game().Topic)
		writeJSON(w, http.StatusCreated, s.View(now))
	}
}

// GetGame handles GET /api/games/{id}. A game past its deadline is ended
// before it is returned.
func GetGame(store *storage.Store, cfg *config.Config) http.HandlerFunc {
	window := seenWindow(cfg)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now()

		s, err := loadSession(ctx, store, chi.URLParam(r, "id"), now, window)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, s.View(now))
	}
}

// GuessGame handles POST /api/games/{id}/guess with body {"index": 0|1}.
func GuessGame(store *storage.Store, cfg *config.Config) http.HandlerFunc {
	window := seenWindow(cfg)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body struct {
			Index *int `json:"index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if body.Index == nil {
			writeError(w, http.StatusBadRequest, "index is required")
			return
		}

		now := time.Now()
		s, err := loadSession(ctx, store, chi.URLParam(r, "id"), now, window)
		if err != nil {
			writeGameError(w, err)
			return
		}

		correct, err := s.Guess(now, *body.Index)
		if err != nil {
			writeGameError(w, err)
			return
		}
		if err := store.SaveGame(ctx, s.Game()); err != nil {
			slog.Error("failed to save game", "game_id", s.Game().ID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save game")
			return
		}

		writeJSON(w, http.StatusOK, GuessResult{Correct: correct, Game: s.View(now)})
	}
}

// NextRound handles POST /api/games/{id}/next. The new round skips every
// story this game has shown within the seen window.
func NextRound(store *storage.Store, builder RoundBuilder, cfg *config.Config) http.HandlerFunc {
	window := seenWindow(cfg)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		s, err := loadSession(ctx, store, id, time.Now(), window)
		if err != nil {
			writeGameError(w, err)
			return
		}
		if err := s.CanAdvance(time.Now()); err != nil {
			writeGameError(w, err)
			return
		}

		round, err := builder.BuildRound(ctx, s.Game().Topic, s.Seen())
		if err != nil {
			writeGameError(w, err)
			return
		}

		// The countdown may have run out while the round was being built.
		now := time.Now()
		if err := s.Next(now, round); err != nil {
			if errors.Is(err, game.ErrGameOver) {
				if serr := store.SaveGame(ctx, s.Game()); serr != nil {
					slog.Error("failed to save expired game", "game_id", id, "error", serr)
				}
			}
			writeGameError(w, err)
			return
		}
		if err := persist(ctx, store, s, round, now); err != nil {
			slog.Error("failed to save game", "game_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save game")
			return
		}

		writeJSON(w, http.StatusOK, s.View(now))
	}
}

// loadSession reads a game and its recent seen stories. A game past its
// deadline is ended and saved.
func loadSession(ctx context.Context, store *storage.Store, id string, now time.Time, window time.Duration) (*game.Session, error) {
	g, err := store.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	seen, err := store.GetSeen(ctx, id, now.Add(-window))
	if err != nil {
		return nil, fmt.Errorf("loading seen stories: %w", err)
	}

	s := game.Resume(g, seen)
	if s.Expire(now) {
		if err := store.SaveGame(ctx, s.Game()); err != nil {
			return nil, fmt.Errorf("saving expired game: %w", err)
		}
		slog.Info("game expired", "game_id", id, "score", g.Score, "attempts", g.Attempts)
	}
	return s, nil
}

// persist saves the game after a new round and remembers its stories.
func persist(ctx context.Context, store *storage.Store, s *game.Session, round *models.Round, now time.Time) error {
	g := s.Game()
	if err := store.SaveGame(ctx, g); err != nil {
		return err
	}
	if err := store.MarkSeen(ctx, g.ID, round.Metadata.NewStoryIDs, now); err != nil {
		return fmt.Errorf("marking stories seen: %w", err)
	}
	recordRound(ctx, store, g.ID, round, now)
	return nil
}

func seenWindow(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Game.SeenWindowMinutes) * time.Minute
}
