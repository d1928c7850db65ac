package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/neighborly/engage/internal/model"
)

type reactionRepository struct {
	db *sqlx.DB
}

func NewReactionRepository(db *sqlx.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Toggle flips the user's reaction on a target in a single transaction.
// The unique index on (user_id, target_kind, target_id) serializes two
// concurrent toggles from the same user: ON CONFLICT resolution waits on
// the first writer's commit, so the second call always observes the row
// state the first one left behind. The count is recomputed from the row
// set before commit, so no reader ever sees a drifted counter.
func (r *reactionRepository) Toggle(ctx context.Context, userID int64, ref model.Ref) (bool, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var inserted bool
	err = tx.GetContext(ctx, &inserted, `
		INSERT INTO reactions (user_id, target_kind, target_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, target_kind, target_id) DO NOTHING
		RETURNING TRUE
	`, userID, ref.Kind, ref.ID)
	liked := true
	if err == sql.ErrNoRows {
		// Row already existed: this toggle is an un-like.
		liked = false
		_, err = tx.ExecContext(ctx, `
			DELETE FROM reactions
			WHERE user_id = $1 AND target_kind = $2 AND target_id = $3
		`, userID, ref.Kind, ref.ID)
	}
	if err != nil {
		return false, 0, fmt.Errorf("toggle reaction: %w", err)
	}

	var count int
	err = tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM reactions WHERE target_kind = $1 AND target_id = $2
	`, ref.Kind, ref.ID)
	if err != nil {
		return false, 0, fmt.Errorf("count reactions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit transaction: %w", err)
	}

	return liked, count, nil
}

// Count returns the reaction count for a target, always derived from the
// row set.
func (r *reactionRepository) Count(ctx context.Context, ref model.Ref) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM reactions WHERE target_kind = $1 AND target_id = $2
	`, ref.Kind, ref.ID)
	if err != nil {
		return 0, fmt.Errorf("count reactions: %w", err)
	}
	return count, nil
}

// CheckLiked reports which targets of one kind the user has liked.
// Returns a map of target_id -> liked for every requested id.
func (r *reactionRepository) CheckLiked(ctx context.Context, userID int64, kind model.Kind, ids []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(ids))
	for _, id := range ids {
		result[id] = false
	}
	if len(ids) == 0 {
		return result, nil
	}

	var likedIDs []int64
	err := r.db.SelectContext(ctx, &likedIDs, `
		SELECT target_id FROM reactions
		WHERE user_id = $1 AND target_kind = $2 AND target_id = ANY($3)
	`, userID, kind, pq.Array(ids))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check liked: %w", err)
	}
	for _, id := range likedIDs {
		result[id] = true
	}
	return result, nil
}
