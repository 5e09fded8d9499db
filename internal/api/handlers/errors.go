package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/spillcheck/internal/game"
	"github.com/hoanghai1803/spillcheck/internal/storage"
	"github.com/hoanghai1803/spillcheck/internal/topic"
)

// writeGameError maps round and session errors to HTTP responses.
func writeGameError(w http.ResponseWriter, err error) {
	var noStories *game.NoStoriesError
	switch {
	case errors.Is(err, topic.ErrEmptyTopic):
		writeError(w, http.StatusBadRequest, "topic is required")
	case errors.As(err, &noStories) && noStories.Upstream:
		writeSuggestion(w, http.StatusBadGateway, "Reddit is unavailable right now", noStories.Suggestion)
	case errors.As(err, &noStories):
		writeSuggestion(w, http.StatusNotFound, "No juicy stories found for that topic", noStories.Suggestion)
	case errors.Is(err, game.ErrUpstream):
		writeError(w, http.StatusBadGateway, "Reddit is unavailable right now")
	case errors.Is(err, game.ErrNoStories):
		writeError(w, http.StatusNotFound, "No juicy stories found for that topic")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, game.ErrInvalidChoice):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusConflict, "Time is up: the game is over")
	case errors.Is(err, game.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "That move is not allowed right now")
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
	}
}
