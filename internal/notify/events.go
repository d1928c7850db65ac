package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/neighborly/engage/internal/model"
)

// Event types for the engagement stream
const (
	EventReactionChanged        = "reaction_changed"
	EventCommentCreated         = "comment_created"
	EventCommentUpdated         = "comment_updated"
	EventCommentDeleted         = "comment_deleted"
	EventCommentReactionChanged = "comment_reaction_changed"
	EventAttendanceChanged      = "attendance_changed"
	EventContentShared          = "content_shared"
	EventAttendeeCheckedIn      = "attendee_checked_in"
)

// Stream names
const (
	StreamEngage = "stream:engage"
)

// Consumer group name for fan-out workers
const (
	ConsumerGroupEngage = "engage_notifiers"
)

// Event is a change notification published after a successful mutation.
// It carries the target reference and the fresh authoritative counts so
// viewers can update without a re-fetch. Delivery is best-effort; a
// failed publish never fails the mutation that produced it.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Target    model.Ref `json:"target"`
	ActorID   int64     `json:"actor_id"`

	// Reaction events
	ReactionCount *int `json:"reaction_count,omitempty"`

	// Comment events
	CommentID    *int64 `json:"comment_id,omitempty"`
	CommentCount *int   `json:"comment_count,omitempty"`

	// Comment reaction events: the full replacement map
	Reactions map[string]int `json:"reactions,omitempty"`

	// Attendance events
	AttendingCount  *int `json:"attending_count,omitempty"`
	InterestedCount *int `json:"interested_count,omitempty"`

	// Share events
	ShareID *int64 `json:"share_id,omitempty"`

	// Check-in events
	AttendeeID *int64 `json:"attendee_id,omitempty"`
}

func newEvent(eventType string, target model.Ref, actorID int64) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Target:    target,
		ActorID:   actorID,
	}
}

// NewReactionChangedEvent announces a toggled reaction with the derived
// count from the mutating transaction.
func NewReactionChangedEvent(target model.Ref, actorID int64, count int) Event {
	e := newEvent(EventReactionChanged, target, actorID)
	e.ReactionCount = &count
	return e
}

// NewCommentCreatedEvent announces a new comment and the target's fresh
// comment count.
func NewCommentCreatedEvent(target model.Ref, actorID, commentID int64, count int) Event {
	e := newEvent(EventCommentCreated, target, actorID)
	e.CommentID = &commentID
	e.CommentCount = &count
	return e
}

// NewCommentUpdatedEvent announces an edited comment.
func NewCommentUpdatedEvent(target model.Ref, actorID, commentID int64) Event {
	e := newEvent(EventCommentUpdated, target, actorID)
	e.CommentID = &commentID
	return e
}

// NewCommentDeletedEvent announces a cascade delete and the remaining
// comment count.
func NewCommentDeletedEvent(target model.Ref, actorID, commentID int64, remaining int) Event {
	e := newEvent(EventCommentDeleted, target, actorID)
	e.CommentID = &commentID
	e.CommentCount = &remaining
	return e
}

// NewCommentReactionChangedEvent carries the full per-emoji map for a
// comment so viewers replace rather than patch.
func NewCommentReactionChangedEvent(commentID, actorID int64, reactions map[string]int) Event {
	e := newEvent(EventCommentReactionChanged, model.Ref{Kind: model.KindComment, ID: commentID}, actorID)
	e.CommentID = &commentID
	e.Reactions = reactions
	return e
}

// NewAttendanceChangedEvent announces an RSVP transition with both
// derived group counts.
func NewAttendanceChangedEvent(eventID, actorID int64, attending, interested int) Event {
	e := newEvent(EventAttendanceChanged, model.Ref{Kind: model.KindEvent, ID: eventID}, actorID)
	e.AttendingCount = &attending
	e.InterestedCount = &interested
	return e
}

// NewContentSharedEvent announces a share of the target.
func NewContentSharedEvent(target model.Ref, actorID, shareID int64) Event {
	e := newEvent(EventContentShared, target, actorID)
	e.ShareID = &shareID
	return e
}

// NewAttendeeCheckedInEvent announces an organizer check-in.
func NewAttendeeCheckedInEvent(eventID, organizerID, attendeeID int64) Event {
	e := newEvent(EventAttendeeCheckedIn, model.Ref{Kind: model.KindEvent, ID: eventID}, organizerID)
	e.AttendeeID = &attendeeID
	return e
}

// ToMap converts the event to a map for Redis XADD. Streams store
// field-value pairs, so the payload is serialized into a "data" field.
func (e Event) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseEvent parses an Event from Redis stream message values.
func ParseEvent(values map[string]interface{}) (Event, error) {
	data, ok := values["data"].(string)
	if !ok {
		return Event{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
