package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/models"
)

// MarkSeen records story IDs as seen by a game at the given time. Seeing a
// story again refreshes its timestamp.
func (s *Store) MarkSeen(ctx context.Context, gameID string, storyIDs []string, at time.Time) error {
	if len(storyIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO seen_stories (game_id, story_id, seen_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(game_id, story_id) DO UPDATE SET seen_at = excluded.seen_at`)
	if err != nil {
		return fmt.Errorf("preparing seen insert: %w", err)
	}
	defer stmt.Close()

	ts := formatTime(at)
	for _, id := range storyIDs {
		if _, err := stmt.ExecContext(ctx, gameID, id, ts); err != nil {
			return fmt.Errorf("marking %s seen: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seen stories: %w", err)
	}
	return nil
}

// GetSeen returns the stories a game saw after since, oldest first.
func (s *Store) GetSeen(ctx context.Context, gameID string, since time.Time) ([]models.SeenStory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT story_id, seen_at FROM seen_stories
		 WHERE game_id = ? AND seen_at > ?
		 ORDER BY seen_at, story_id`, gameID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("querying seen stories: %w", err)
	}
	defer rows.Close()

	var seen []models.SeenStory
	for rows.Next() {
		var (
			st     models.SeenStory
			seenAt string
		)
		if err := rows.Scan(&st.ID, &seenAt); err != nil {
			return nil, fmt.Errorf("scanning seen story: %w", err)
		}
		st.Timestamp = parseTime(seenAt)
		seen = append(seen, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating seen stories: %w", err)
	}
	return seen, nil
}

// PurgeSeen deletes seen-story rows recorded at or before cutoff.
func (s *Store) PurgeSeen(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM seen_stories WHERE seen_at <= ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purging seen stories: %w", err)
	}
	return res.RowsAffected()
}
