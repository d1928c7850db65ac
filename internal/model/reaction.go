package model

import (
	"errors"
	"time"
)

// Reaction is one user's like on a target. Existence of the row means
// "liked"; there is no boolean column to keep in sync.
type Reaction struct {
	UserID     int64     `db:"user_id" json:"user_id"`
	TargetKind Kind      `db:"target_kind" json:"target_kind"`
	TargetID   int64     `db:"target_id" json:"target_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ReactionResult is the authoritative post-toggle state returned to the
// client. Count is recomputed from the row set inside the toggle
// transaction, never read from a stored counter.
type ReactionResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// LikedResponse answers a batch liked lookup: one entry per requested
// target ID, true where the viewer has a reaction. List views hydrate
// their liked flags from this in a single round trip.
type LikedResponse struct {
	Liked map[int64]bool `json:"liked"`
}

// CommentReactionResult carries the full per-emoji map after an emoji
// toggle. Clients replace their view wholesale rather than patching, so
// repeated optimistic updates cannot compound drift.
type CommentReactionResult struct {
	Reactions     map[string]int `json:"reactions"`
	UserReactions []string       `json:"user_reactions"`
}

// ToggleCommentReactionRequest is the body for POST /comments/{id}/reactions.
type ToggleCommentReactionRequest struct {
	Emoji string `json:"emoji" validate:"required"`
}

// AllowedEmojis is the closed set of emoji a comment reaction may use.
var AllowedEmojis = map[string]bool{
	"👍": true,
	"❤️": true,
	"😂": true,
	"😮": true,
	"😢": true,
	"🎉": true,
}

// MaxLikedBatch caps how many target IDs one liked lookup may carry.
const MaxLikedBatch = 100

// Reaction errors
var (
	ErrInvalidEmoji   = errors.New("unsupported emoji")
	ErrTooManyTargets = errors.New("too many target ids in one request")
)
