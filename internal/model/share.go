package model

import (
	"errors"
	"time"
)

// Share republishes a target into the sharer's own feed as a new content
// item. Immutable once created; deleting it removes only the feed item,
// never the original.
type Share struct {
	ID         int64     `db:"id" json:"id"`
	SharerID   int64     `db:"sharer_id" json:"sharer_id"`
	TargetKind Kind      `db:"target_kind" json:"target_kind"`
	TargetID   int64     `db:"target_id" json:"target_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Target returns the Ref the share points at.
func (s Share) Target() Ref {
	return Ref{Kind: s.TargetKind, ID: s.TargetID}
}

// ShareListResponse is a user's shares for feed hydration.
type ShareListResponse struct {
	Shares []Share `json:"shares"`
}

// Share errors
var (
	ErrShareNotFound = errors.New("share not found")
	ErrNotShareOwner = errors.New("not the owner of this share")
)
