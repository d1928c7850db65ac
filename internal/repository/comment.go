package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/neighborly/engage/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a comment and recomputes the target's comment count in
// the same transaction, so the count returned to the client can never
// disagree with the row set.
func (r *commentRepository) Create(ctx context.Context, ref model.Ref, authorID int64, content string, parentID *int64) (*model.Comment, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO comments (target_kind, target_id, author_id, content, parent_comment_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, target_kind, target_id, author_id, content, parent_comment_id, created_at, edited_at
	`
	var comment model.Comment
	err = tx.GetContext(ctx, &comment, query, ref.Kind, ref.ID, authorID, content, parentID)
	if err != nil {
		return nil, 0, fmt.Errorf("insert comment: %w", err)
	}

	var count int
	err = tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM comments WHERE target_kind = $1 AND target_id = $2
	`, ref.Kind, ref.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit transaction: %w", err)
	}

	return &comment, count, nil
}

// GetByID retrieves a single comment without joins.
func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `
		SELECT id, target_kind, target_id, author_id, content, parent_comment_id, created_at, edited_at
		FROM comments
		WHERE id = $1
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// Update replaces a comment's content and stamps edited_at. Ownership is
// checked by the service so moderators can edit through the same path.
func (r *commentRepository) Update(ctx context.Context, commentID int64, content string) (*model.Comment, error) {
	query := `
		UPDATE comments
		SET content = $1, edited_at = NOW()
		WHERE id = $2
		RETURNING id, target_kind, target_id, author_id, content, parent_comment_id, created_at, edited_at
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, content, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &comment, nil
}

// Delete removes a comment and all its direct replies in one transaction
// and returns the target's remaining comment count from the same commit.
func (r *commentRepository) Delete(ctx context.Context, commentID int64) (model.Ref, int, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Ref{}, 0, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var target struct {
		Kind model.Kind `db:"target_kind"`
		ID   int64      `db:"target_id"`
	}
	err = tx.GetContext(ctx, &target, `
		SELECT target_kind, target_id FROM comments WHERE id = $1
	`, commentID)
	if err == sql.ErrNoRows {
		return model.Ref{}, 0, 0, model.ErrCommentNotFound
	}
	if err != nil {
		return model.Ref{}, 0, 0, fmt.Errorf("get comment: %w", err)
	}
	ref := model.Ref{Kind: target.Kind, ID: target.ID}

	// The comment plus its direct replies. Replies are at most one level
	// deep so this covers the whole subtree.
	result, err := tx.ExecContext(ctx, `
		DELETE FROM comments WHERE id = $1 OR parent_comment_id = $1
	`, commentID)
	if err != nil {
		return model.Ref{}, 0, 0, fmt.Errorf("delete comment: %w", err)
	}
	deleted64, err := result.RowsAffected()
	if err != nil {
		return model.Ref{}, 0, 0, fmt.Errorf("get rows affected: %w", err)
	}

	var remaining int
	err = tx.GetContext(ctx, &remaining, `
		SELECT COUNT(*) FROM comments WHERE target_kind = $1 AND target_id = $2
	`, ref.Kind, ref.ID)
	if err != nil {
		return model.Ref{}, 0, 0, fmt.Errorf("count comments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Ref{}, 0, 0, fmt.Errorf("commit transaction: %w", err)
	}

	return ref, int(deleted64), remaining, nil
}

// commentRow scans a comment joined with its author.
type commentRow struct {
	ID              int64      `db:"id"`
	TargetKind      model.Kind `db:"target_kind"`
	TargetID        int64      `db:"target_id"`
	AuthorID        int64      `db:"author_id"`
	Content         string     `db:"content"`
	ParentCommentID *int64     `db:"parent_comment_id"`
	CreatedAt       time.Time  `db:"created_at"`
	EditedAt        *time.Time `db:"edited_at"`
	AuthorUsername  string     `db:"author_username"`
	AuthorDisplay   *string    `db:"author_display_name"`
	AuthorAvatar    *string    `db:"author_avatar_url"`
}

func (row commentRow) toComment() model.Comment {
	return model.Comment{
		ID:              row.ID,
		TargetKind:      row.TargetKind,
		TargetID:        row.TargetID,
		AuthorID:        row.AuthorID,
		Content:         row.Content,
		ParentCommentID: row.ParentCommentID,
		CreatedAt:       row.CreatedAt,
		EditedAt:        row.EditedAt,
		Author: &model.ActorSummary{
			ID:          row.AuthorID,
			Username:    row.AuthorUsername,
			DisplayName: row.AuthorDisplay,
			AvatarURL:   row.AuthorAvatar,
		},
	}
}

// Thread returns cursor-paginated top-level comments for a target,
// oldest first to preserve conversational order, each with its replies
// attached in the same order. The cursor makes the sequence restartable
// from any page boundary.
func (r *commentRepository) Thread(ctx context.Context, ref model.Ref, cursor *string, limit int) ([]model.Comment, *string, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT c.id, c.target_kind, c.target_id, c.author_id, c.content,
			       c.parent_comment_id, c.created_at, c.edited_at,
			       u.username AS author_username,
			       u.display_name AS author_display_name,
			       u.avatar_url AS author_avatar_url
			FROM comments c
			JOIN users u ON u.id = c.author_id
			WHERE c.target_kind = $1 AND c.target_id = $2 AND c.parent_comment_id IS NULL
			ORDER BY c.created_at ASC, c.id ASC
			LIMIT $3
		`
		args = []interface{}{ref.Kind, ref.ID, limit + 1}
	} else {
		ts, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		query = `
			SELECT c.id, c.target_kind, c.target_id, c.author_id, c.content,
			       c.parent_comment_id, c.created_at, c.edited_at,
			       u.username AS author_username,
			       u.display_name AS author_display_name,
			       u.avatar_url AS author_avatar_url
			FROM comments c
			JOIN users u ON u.id = c.author_id
			WHERE c.target_kind = $1 AND c.target_id = $2 AND c.parent_comment_id IS NULL
			  AND (c.created_at, c.id) > ($3, $4)
			ORDER BY c.created_at ASC, c.id ASC
			LIMIT $5
		`
		args = []interface{}{ref.Kind, ref.ID, ts, id, limit + 1}
	}

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, nil, fmt.Errorf("get thread: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}

	var nextCursor *string
	if len(comments) > limit {
		comments = comments[:limit]
		last := comments[len(comments)-1]
		c := formatCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	if err := r.attachReplies(ctx, comments); err != nil {
		return nil, nil, err
	}

	return comments, nextCursor, nil
}

// attachReplies loads all direct replies for the page's top-level
// comments in one query and groups them in creation order.
func (r *commentRepository) attachReplies(ctx context.Context, parents []model.Comment) error {
	if len(parents) == 0 {
		return nil
	}
	parentIDs := make([]int64, len(parents))
	for i, p := range parents {
		parentIDs[i] = p.ID
	}

	query := `
		SELECT c.id, c.target_kind, c.target_id, c.author_id, c.content,
		       c.parent_comment_id, c.created_at, c.edited_at,
		       u.username AS author_username,
		       u.display_name AS author_display_name,
		       u.avatar_url AS author_avatar_url
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.parent_comment_id = ANY($1)
		ORDER BY c.created_at ASC, c.id ASC
	`
	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(parentIDs)); err != nil {
		return fmt.Errorf("get replies: %w", err)
	}

	byParent := make(map[int64][]model.Comment)
	for _, row := range rows {
		byParent[*row.ParentCommentID] = append(byParent[*row.ParentCommentID], row.toComment())
	}
	for i := range parents {
		parents[i].Replies = byParent[parents[i].ID]
	}
	return nil
}

// CountFor returns the comment count for a target, derived from the set.
func (r *commentRepository) CountFor(ctx context.Context, ref model.Ref) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM comments WHERE target_kind = $1 AND target_id = $2
	`, ref.Kind, ref.ID)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

// Helper: parse compound cursor "id:timestamp". The timestamp is in
// microseconds: the keyset predicate compares (created_at, id) tuples
// against the cursor, so the round-trip must not lose the fractional
// part Postgres stores, or the boundary row repeats on the next page.
func parseCursor(cursor string) (time.Time, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format")
	}
	var id int64
	var ts int64
	if _, err := fmt.Sscanf(parts[0], "%d", &id); err != nil {
		return time.Time{}, 0, err
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &ts); err != nil {
		return time.Time{}, 0, err
	}
	return time.UnixMicro(ts), id, nil
}

// Helper: format compound cursor "id:timestamp"
func formatCursor(t time.Time, id int64) string {
	return fmt.Sprintf("%d:%d", id, t.UnixMicro())
}
