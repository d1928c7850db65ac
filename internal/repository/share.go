package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/neighborly/engage/internal/model"
)

type shareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) ShareRepository {
	return &shareRepository{db: db}
}

// Create inserts a share row. Shares are immutable; there is no update.
func (r *shareRepository) Create(ctx context.Context, userID int64, ref model.Ref) (*model.Share, error) {
	query := `
		INSERT INTO shares (sharer_id, target_kind, target_id)
		VALUES ($1, $2, $3)
		RETURNING id, sharer_id, target_kind, target_id, created_at
	`
	var share model.Share
	err := r.db.GetContext(ctx, &share, query, userID, ref.Kind, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("insert share: %w", err)
	}
	return &share, nil
}

// GetByID retrieves a single share.
func (r *shareRepository) GetByID(ctx context.Context, shareID int64) (*model.Share, error) {
	var share model.Share
	err := r.db.GetContext(ctx, &share, `
		SELECT id, sharer_id, target_kind, target_id, created_at
		FROM shares
		WHERE id = $1
	`, shareID)
	if err == sql.ErrNoRows {
		return nil, model.ErrShareNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}
	return &share, nil
}

// Delete removes the feed item. The original target is never touched.
func (r *shareRepository) Delete(ctx context.Context, shareID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shares WHERE id = $1`, shareID)
	if err != nil {
		return fmt.Errorf("delete share: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrShareNotFound
	}
	return nil
}

// ListByUser returns a user's shares, newest first, for feed hydration.
func (r *shareRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Share, error) {
	var shares []model.Share
	err := r.db.SelectContext(ctx, &shares, `
		SELECT id, sharer_id, target_kind, target_id, created_at
		FROM shares
		WHERE sharer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return shares, nil
}

// CountFor returns how many times a target has been shared.
func (r *shareRepository) CountFor(ctx context.Context, ref model.Ref) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM shares WHERE target_kind = $1 AND target_id = $2
	`, ref.Kind, ref.ID)
	if err != nil {
		return 0, fmt.Errorf("count shares: %w", err)
	}
	return count, nil
}
