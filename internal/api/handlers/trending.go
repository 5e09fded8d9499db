package handlers

import (
	"net/http"

	"github.com/hoanghai1803/spillcheck/internal/topic"
)

// GetTrending handles GET /api/trending. It returns the cached trending
// topics, or an empty list when the feed is unavailable.
func GetTrending(trends topic.TrendSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics := []string{}
		if trends != nil {
			if t := trends.Topics(r.Context()); len(t) > 0 {
				topics = t
			}
		}
		writeJSON(w, http.StatusOK, map[string][]string{"topics": topics})
	}
}
