package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/spillcheck/internal/storage"
)

// GetRecentRounds handles GET /api/rounds/recent. The optional "limit"
// parameter defaults to 20 and is capped at 100.
func GetRecentRounds(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseLimit(r, "limit", 20, 100)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		rounds, err := store.GetRecentRounds(r.Context(), limit)
		if err != nil {
			slog.Error("failed to get recent rounds", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get recent rounds")
			return
		}

		writeJSON(w, http.StatusOK, rounds)
	}
}

// Health handles GET /api/health. It reports whether the database answers.
func Health(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DB().PingContext(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
