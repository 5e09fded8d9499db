package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/models"
)

// RecordRound inserts a round audit row and returns its ID. A zero CreatedAt
// is recorded as now.
func (s *Store) RecordRound(ctx context.Context, r *models.RoundRecord) (int64, error) {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	var gameID sql.NullString
	if r.GameID != "" {
		gameID = sql.NullString{String: r.GameID, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds
			(game_id, topic, query, real_story_id, subreddit, engagement_score, fallback_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		gameID, r.Topic, r.Query, r.RealStoryID, r.Subreddit,
		r.EngagementScore, r.FallbackUsed, formatTime(created),
	)
	if err != nil {
		return 0, fmt.Errorf("recording round: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting round id: %w", err)
	}
	return id, nil
}

// GetRecentRounds returns the most recent rounds, newest first.
func (s *Store) GetRecentRounds(ctx context.Context, limit int) ([]models.RoundRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, topic, query, real_story_id, subreddit,
				engagement_score, fallback_used, created_at
		 FROM rounds
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent rounds: %w", err)
	}
	defer rows.Close()

	rounds := []models.RoundRecord{}
	for rows.Next() {
		var (
			r         models.RoundRecord
			gameID    sql.NullString
			createdAt string
		)
		if err := rows.Scan(
			&r.ID, &gameID, &r.Topic, &r.Query, &r.RealStoryID, &r.Subreddit,
			&r.EngagementScore, &r.FallbackUsed, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning round row: %w", err)
		}
		r.GameID = gameID.String
		r.CreatedAt = parseTime(createdAt)
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating round rows: %w", err)
	}
	return rounds, nil
}
