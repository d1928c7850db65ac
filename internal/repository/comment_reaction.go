package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/neighborly/engage/internal/model"
)

type commentReactionRepository struct {
	db *sqlx.DB
}

func NewCommentReactionRepository(db *sqlx.DB) CommentReactionRepository {
	return &commentReactionRepository{db: db}
}

// Toggle flips the (user, comment, emoji) membership and rebuilds the
// comment's whole per-emoji map in the same transaction. Returning the
// full map rather than a delta lets clients replace their rendered state
// wholesale on every response.
func (r *commentReactionRepository) Toggle(ctx context.Context, userID, commentID int64, emoji string) (*model.CommentReactionResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var inserted bool
	err = tx.GetContext(ctx, &inserted, `
		INSERT INTO comment_reactions (user_id, comment_id, emoji)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, comment_id, emoji) DO NOTHING
		RETURNING TRUE
	`, userID, commentID, emoji)
	if err == sql.ErrNoRows {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM comment_reactions
			WHERE user_id = $1 AND comment_id = $2 AND emoji = $3
		`, userID, commentID, emoji)
	}
	if err != nil {
		return nil, fmt.Errorf("toggle comment reaction: %w", err)
	}

	result, err := reactionMap(ctx, tx, commentID, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return result, nil
}

type queryer interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func reactionMap(ctx context.Context, q queryer, commentID, userID int64) (*model.CommentReactionResult, error) {
	type emojiCount struct {
		Emoji string `db:"emoji"`
		Count int    `db:"count"`
	}
	var counts []emojiCount
	err := q.SelectContext(ctx, &counts, `
		SELECT emoji, COUNT(*) AS count
		FROM comment_reactions
		WHERE comment_id = $1
		GROUP BY emoji
	`, commentID)
	if err != nil {
		return nil, fmt.Errorf("aggregate comment reactions: %w", err)
	}

	var mine []string
	err = q.SelectContext(ctx, &mine, `
		SELECT emoji FROM comment_reactions
		WHERE comment_id = $1 AND user_id = $2
		ORDER BY emoji
	`, commentID, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get user reactions: %w", err)
	}

	result := &model.CommentReactionResult{
		Reactions:     make(map[string]int, len(counts)),
		UserReactions: mine,
	}
	if result.UserReactions == nil {
		result.UserReactions = []string{}
	}
	for _, c := range counts {
		result.Reactions[c.Emoji] = c.Count
	}
	return result, nil
}

// MapsFor returns per-emoji counts for many comments at once. When
// viewerID is non-nil the viewer's own emoji sets are returned as well,
// for hydrating thread views.
func (r *commentReactionRepository) MapsFor(ctx context.Context, commentIDs []int64, viewerID *int64) (map[int64]map[string]int, map[int64][]string, error) {
	counts := make(map[int64]map[string]int, len(commentIDs))
	viewer := make(map[int64][]string)
	if len(commentIDs) == 0 {
		return counts, viewer, nil
	}

	type row struct {
		CommentID int64  `db:"comment_id"`
		Emoji     string `db:"emoji"`
		Count     int    `db:"count"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, `
		SELECT comment_id, emoji, COUNT(*) AS count
		FROM comment_reactions
		WHERE comment_id = ANY($1)
		GROUP BY comment_id, emoji
	`, pq.Array(commentIDs))
	if err != nil {
		return nil, nil, fmt.Errorf("aggregate comment reactions: %w", err)
	}
	for _, rw := range rows {
		if counts[rw.CommentID] == nil {
			counts[rw.CommentID] = make(map[string]int)
		}
		counts[rw.CommentID][rw.Emoji] = rw.Count
	}

	if viewerID != nil {
		type mineRow struct {
			CommentID int64  `db:"comment_id"`
			Emoji     string `db:"emoji"`
		}
		var mine []mineRow
		err = r.db.SelectContext(ctx, &mine, `
			SELECT comment_id, emoji FROM comment_reactions
			WHERE user_id = $1 AND comment_id = ANY($2)
			ORDER BY emoji
		`, *viewerID, pq.Array(commentIDs))
		if err != nil && err != sql.ErrNoRows {
			return nil, nil, fmt.Errorf("get viewer reactions: %w", err)
		}
		for _, m := range mine {
			viewer[m.CommentID] = append(viewer[m.CommentID], m.Emoji)
		}
	}

	return counts, viewer, nil
}
