package repository

import (
	"context"

	"github.com/neighborly/engage/internal/model"
)

// ContentOracle answers whether a target exists and is visible to a
// tenant. Every mutating operation consults it before touching the
// engagement tables, so new content kinds plug in without duplicating
// authorization logic.
type ContentOracle interface {
	Visible(ctx context.Context, ref model.Ref, tenantID int64) (bool, error)
}

type UserRepository interface {
	GetSummary(ctx context.Context, userID int64) (*model.ActorSummary, error)
}

type ReactionRepository interface {
	// Toggle flips the (user, target) membership and recomputes the
	// target's reaction count inside the same transaction.
	Toggle(ctx context.Context, userID int64, ref model.Ref) (liked bool, count int, err error)
	Count(ctx context.Context, ref model.Ref) (int, error)
	// CheckLiked reports which of the given targets of one kind the user
	// has liked. Used for batch hydration of list views.
	CheckLiked(ctx context.Context, userID int64, kind model.Kind, ids []int64) (map[int64]bool, error)
}

type CommentReactionRepository interface {
	// Toggle flips the (user, comment, emoji) membership and returns the
	// full per-emoji map plus the user's emoji set, computed in the same
	// transaction.
	Toggle(ctx context.Context, userID, commentID int64, emoji string) (*model.CommentReactionResult, error)
	// MapsFor returns per-emoji counts for many comments at once, plus
	// the viewer's own emoji sets when viewerID is non-nil.
	MapsFor(ctx context.Context, commentIDs []int64, viewerID *int64) (map[int64]map[string]int, map[int64][]string, error)
}

type CommentRepository interface {
	// Create inserts the comment and returns it together with the
	// target's derived comment count from the same transaction.
	Create(ctx context.Context, ref model.Ref, authorID int64, content string, parentID *int64) (*model.Comment, int, error)
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	Update(ctx context.Context, commentID int64, content string) (*model.Comment, error)
	// Delete removes the comment and its direct replies, returning the
	// number of rows deleted and the target's remaining comment count.
	Delete(ctx context.Context, commentID int64) (ref model.Ref, deleted int, remaining int, err error)
	// Thread returns cursor-paginated top-level comments for a target in
	// creation order, each carrying its replies.
	Thread(ctx context.Context, ref model.Ref, cursor *string, limit int) ([]model.Comment, *string, error)
	CountFor(ctx context.Context, ref model.Ref) (int, error)
}

type AttendanceRepository interface {
	// Set applies the exclusive-RSVP transition rule in one transaction:
	// nil or same-as-current cancels, anything else upserts. The derived
	// counts come from the same transaction.
	Set(ctx context.Context, userID, eventID int64, status *model.AttendanceStatus) (*model.AttendanceResult, error)
	Get(ctx context.Context, userID, eventID int64) (*model.Attendance, error)
	// OrganizerID returns the organizer of an event, or ErrEventNotFound.
	OrganizerID(ctx context.Context, eventID int64) (int64, error)
	// CheckIn records a monotonic, idempotent check-in. The first call
	// requires the attendee to currently hold attending status.
	CheckIn(ctx context.Context, eventID, attendeeID, byUserID int64) (*model.CheckInResult, error)
	ListCheckIns(ctx context.Context, eventID int64) ([]model.CheckIn, error)
}

type ShareRepository interface {
	Create(ctx context.Context, userID int64, ref model.Ref) (*model.Share, error)
	GetByID(ctx context.Context, shareID int64) (*model.Share, error)
	Delete(ctx context.Context, shareID int64) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Share, error)
	CountFor(ctx context.Context, ref model.Ref) (int, error)
}
