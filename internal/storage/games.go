package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/models"
)

// SaveGame inserts or replaces a game.
func (s *Store) SaveGame(ctx context.Context, g *models.Game) error {
	roundJSON, err := marshalNullable(g.Round)
	if err != nil {
		return fmt.Errorf("marshaling round: %w", err)
	}
	guessJSON, err := marshalNullable(g.LastGuess)
	if err != nil {
		return fmt.Errorf("marshaling guess: %w", err)
	}

	updated := g.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games
			(id, topic, state, score, attempts, started_at, deadline, round_json, guess_json, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			topic      = excluded.topic,
			state      = excluded.state,
			score      = excluded.score,
			attempts   = excluded.attempts,
			started_at = excluded.started_at,
			deadline   = excluded.deadline,
			round_json = excluded.round_json,
			guess_json = excluded.guess_json,
			updated_at = excluded.updated_at`,
		g.ID, g.Topic, string(g.State), g.Score, g.Attempts,
		formatTime(g.StartedAt), formatTime(g.Deadline),
		roundJSON, guessJSON, formatTime(updated),
	)
	if err != nil {
		return fmt.Errorf("saving game %s: %w", g.ID, err)
	}
	return nil
}

// GetGame returns the game with the given ID.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetGame(ctx context.Context, id string) (*models.Game, error) {
	var (
		g                    models.Game
		state                string
		startedAt, deadline  string
		updatedAt            string
		roundJSON, guessJSON sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, topic, state, score, attempts, started_at, deadline,
				round_json, guess_json, updated_at
		 FROM games WHERE id = ?`, id,
	).Scan(&g.ID, &g.Topic, &state, &g.Score, &g.Attempts, &startedAt, &deadline,
		&roundJSON, &guessJSON, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting game %s: %w", id, err)
	}

	g.State = models.GameState(state)
	g.StartedAt = parseTime(startedAt)
	g.Deadline = parseTime(deadline)
	g.UpdatedAt = parseTime(updatedAt)

	if roundJSON.Valid {
		var r models.Round
		if err := json.Unmarshal([]byte(roundJSON.String), &r); err != nil {
			return nil, fmt.Errorf("unmarshaling round for game %s: %w", id, err)
		}
		g.Round = &r
	}
	if guessJSON.Valid {
		var guess models.Guess
		if err := json.Unmarshal([]byte(guessJSON.String), &guess); err != nil {
			return nil, fmt.Errorf("unmarshaling guess for game %s: %w", id, err)
		}
		g.LastGuess = &guess
	}
	return &g, nil
}

// PurgeGames deletes games last updated before cutoff, along with their seen
// stories. Audit rounds are kept with their game reference cleared.
func (s *Store) PurgeGames(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM games WHERE updated_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purging games: %w", err)
	}
	return res.RowsAffected()
}

// marshalNullable encodes v as JSON, mapping a nil pointer to SQL NULL.
func marshalNullable[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
