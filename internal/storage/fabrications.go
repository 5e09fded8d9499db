package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hoanghai1803/spillcheck/internal/models"
)

// UpsertFabrication stores a fabricated story, replacing any existing row for
// the same post and model.
func (s *Store) UpsertFabrication(ctx context.Context, f models.Fabrication) error {
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fabrications (post_id, model, text, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(post_id, model) DO UPDATE SET
			text       = excluded.text,
			created_at = excluded.created_at`,
		f.PostID, f.Model, f.Text, formatTime(created),
	)
	if err != nil {
		return fmt.Errorf("upserting fabrication: %w", err)
	}
	return nil
}

// GetFabrication returns the cached story for the post and model.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetFabrication(ctx context.Context, postID, model string) (*models.Fabrication, error) {
	var (
		f         models.Fabrication
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT post_id, model, text, created_at
		 FROM fabrications WHERE post_id = ? AND model = ?`, postID, model,
	).Scan(&f.PostID, &f.Model, &f.Text, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting fabrication: %w", err)
	}
	f.CreatedAt = parseTime(createdAt)
	return &f, nil
}

// PurgeFabrications deletes cached stories created before cutoff.
func (s *Store) PurgeFabrications(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM fabrications WHERE created_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purging fabrications: %w", err)
	}
	return res.RowsAffected()
}
