package model

import (
	"errors"
	"time"
)

// Comment is a textual comment attached to a target. A non-nil
// ParentCommentID marks it as a reply; replies never have replies
// themselves (single-level threading).
type Comment struct {
	ID              int64      `db:"id" json:"id"`
	TargetKind      Kind       `db:"target_kind" json:"target_kind"`
	TargetID        int64      `db:"target_id" json:"target_id"`
	AuthorID        int64      `db:"author_id" json:"-"`
	ParentCommentID *int64     `db:"parent_comment_id" json:"parent_comment_id,omitempty"`
	Content         string     `db:"content" json:"content"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	EditedAt        *time.Time `db:"edited_at" json:"edited_at,omitempty"`

	// Joined fields (not in the comments table)
	Author        *ActorSummary  `json:"author,omitempty"`
	Replies       []Comment      `json:"replies,omitempty"`
	Reactions     map[string]int `json:"reactions,omitempty"`
	UserReactions []string       `json:"user_reactions,omitempty"`
}

// Target returns the Ref this comment is attached to.
func (c Comment) Target() Ref {
	return Ref{Kind: c.TargetKind, ID: c.TargetID}
}

// CreateCommentRequest is the body for POST /targets/{kind}/{id}/comments.
type CreateCommentRequest struct {
	Content         string `json:"content" validate:"required"`
	ParentCommentID *int64 `json:"parent_comment_id,omitempty"`
}

// UpdateCommentRequest is the body for PATCH /comments/{id}.
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// CommentResult wraps a comment together with the target's derived
// comment count after the mutation.
type CommentResult struct {
	Comment      *Comment `json:"comment"`
	CommentCount int      `json:"comment_count"`
}

// DeleteCommentResult reports how far a cascade delete reached.
type DeleteCommentResult struct {
	DeletedCount int `json:"deleted_count"`
	CommentCount int `json:"comment_count"`
}

// ThreadResponse is the paginated thread for a target: top-level comments
// oldest first, each carrying its replies in conversational order.
type ThreadResponse struct {
	Comments   []Comment `json:"comments"`
	NextCursor *string   `json:"next_cursor,omitempty"`
	HasMore    bool      `json:"has_more"`
}

// Comment constraints
const (
	MaxCommentLength = 4000
)

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
	ErrContentRequired = errors.New("comment content is required")
	ErrContentTooLong  = errors.New("comment content too long")
	ErrReplyToReply    = errors.New("cannot reply to a reply")
	ErrParentMismatch  = errors.New("parent comment belongs to a different target")
)
