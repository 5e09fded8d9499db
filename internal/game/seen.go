package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/models"
)

// DefaultSeenWindow is how long a shown story is kept out of new rounds.
const DefaultSeenWindow = time.Hour

// seenEntry is the wire form of a seen story: a millisecond timestamp.
type seenEntry struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

// ParseSeen decodes a client's seen list. It accepts a JSON array of IDs,
// which are stamped with now, or an array of {"id", "timestamp"} objects with
// millisecond timestamps. An empty string yields no entries.
func ParseSeen(raw string, now time.Time) ([]models.SeenStory, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("parsing seen list: %w", err)
	}

	seen := make([]models.SeenStory, 0, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}

		switch item[0] {
		case '"':
			var id string
			if err := json.Unmarshal(item, &id); err != nil {
				return nil, fmt.Errorf("parsing seen entry %d: %w", i, err)
			}
			if id != "" {
				seen = append(seen, models.SeenStory{ID: id, Timestamp: now})
			}
		case '{':
			var e seenEntry
			if err := json.Unmarshal(item, &e); err != nil {
				return nil, fmt.Errorf("parsing seen entry %d: %w", i, err)
			}
			if e.ID == "" {
				continue
			}
			ts := now
			if e.Timestamp > 0 {
				ts = time.UnixMilli(e.Timestamp).UTC()
			}
			seen = append(seen, models.SeenStory{ID: e.ID, Timestamp: ts})
		default:
			return nil, fmt.Errorf("parsing seen entry %d: unexpected value %s", i, item)
		}
	}
	return seen, nil
}

// Purge drops entries older than window. Entries exactly window old are
// dropped too.
func Purge(seen []models.SeenStory, now time.Time, window time.Duration) []models.SeenStory {
	cutoff := now.Add(-window)
	out := make([]models.SeenStory, 0, len(seen))
	for _, s := range seen {
		if s.Timestamp.After(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// SeenSet indexes seen entries by ID.
func SeenSet(seen []models.SeenStory) map[string]bool {
	set := make(map[string]bool, len(seen))
	for _, s := range seen {
		set[s.ID] = true
	}
	return set
}
