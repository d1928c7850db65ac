package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the type of content a Ref points at.
// The set is closed: adding a new engageable content type means adding a
// constant here and registering its backing table in the content oracle.
type Kind string

const (
	KindListing      Kind = "listing"
	KindEvent        Kind = "event"
	KindPost         Kind = "post"
	KindPoll         Kind = "poll"
	KindVolunteering Kind = "volunteering"
	KindGoal         Kind = "goal"
	KindComment      Kind = "comment"
)

// Kinds lists every registered content kind.
var Kinds = []Kind{
	KindListing,
	KindEvent,
	KindPost,
	KindPoll,
	KindVolunteering,
	KindGoal,
	KindComment,
}

// ParseKind validates a kind string from a request path or body.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Ref addresses the piece of content being engaged with.
// Every engagement record keys off this (kind, id) pair.
type Ref struct {
	Kind Kind  `json:"kind" db:"target_kind"`
	ID   int64 `json:"id" db:"target_id"`
}

// ParseRef builds a Ref from raw path parameters.
func ParseRef(kind, id string) (Ref, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Ref{}, err
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidTargetID, id)
	}
	return Ref{Kind: k, ID: n}, nil
}

// String renders the canonical "kind:id" form used in logs and cursors.
func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// ChannelKey derives the pub/sub channel all viewers of this target
// subscribe to. Deterministic so every viewer lands on the same channel.
func (r Ref) ChannelKey() string {
	return fmt.Sprintf("engage:%s:%d", r.Kind, r.ID)
}

// Target errors
var (
	ErrUnknownKind     = errors.New("unknown content kind")
	ErrInvalidTargetID = errors.New("invalid target id")
	ErrTargetNotFound  = errors.New("target not found")
	ErrForbidden       = errors.New("operation not permitted")
	ErrConflict        = errors.New("concurrent modification, retry")
	ErrUnavailable     = errors.New("engagement store unavailable")
)
