package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// writeJSON encodes v as JSON and writes it to the response with the given
// HTTP status code. Content-Type is always set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// At this point headers are already sent; log but cannot change status.
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response with the given HTTP status code.
// The response body is {"error": "message"}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeSuggestion writes an error response that offers another topic to try.
func writeSuggestion(w http.ResponseWriter, status int, message, suggestion string) {
	writeJSON(w, status, errorResponse{Error: message, Suggestion: suggestion})
}

// parseLimit reads a positive integer query parameter, returning def when it
// is absent and capping it at ceiling.
func parseLimit(r *http.Request, param string, def, ceiling int) (int, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %q parameter: %w", param, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid %q parameter: must be positive", param)
	}
	return min(n, ceiling), nil
}
