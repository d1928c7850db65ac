package model

import (
	"errors"
	"fmt"
	"time"
)

// AttendanceStatus is the exclusive RSVP state a user holds on an event.
// A user has at most one row per event; absence means no RSVP.
type AttendanceStatus string

const (
	StatusAttending  AttendanceStatus = "attending"
	StatusInterested AttendanceStatus = "interested"
	StatusDeclined   AttendanceStatus = "declined"
)

// ParseAttendanceStatus validates a status string from a request body.
func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	switch AttendanceStatus(s) {
	case StatusAttending, StatusInterested, StatusDeclined:
		return AttendanceStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Attendance is one user's RSVP row on an event.
type Attendance struct {
	UserID    int64            `db:"user_id" json:"user_id"`
	EventID   int64            `db:"event_id" json:"event_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// SetAttendanceRequest is the body for PUT /events/{id}/attendance.
// A null status is an explicit cancellation.
type SetAttendanceRequest struct {
	Status *string `json:"status"`
}

// AttendanceResult is the authoritative state after a status change.
// Counts are derived by status-group cardinality inside the mutating
// transaction; "none" means the user holds no RSVP.
type AttendanceResult struct {
	Status          string `json:"status"`
	AttendingCount  int    `json:"attending_count"`
	InterestedCount int    `json:"interested_count"`
}

// AttendanceStatusResponse is the viewer's own RSVP on an event.
// Status "none" means no row exists; UpdatedAt is omitted in that case.
type AttendanceStatusResponse struct {
	Status    string     `json:"status"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CheckIn records an organizer checking an attendee in at the door.
// Independent of attendance status once written: a later RSVP change
// does not undo it.
type CheckIn struct {
	EventID     int64     `db:"event_id" json:"event_id"`
	AttendeeID  int64     `db:"attendee_id" json:"attendee_id"`
	CheckedInBy int64     `db:"checked_in_by" json:"checked_in_by"`
	CheckedInAt time.Time `db:"checked_in_at" json:"checked_in_at"`

	Attendee *ActorSummary `json:"attendee,omitempty"`
}

// CheckInRequest is the body for POST /events/{id}/checkins.
type CheckInRequest struct {
	AttendeeID int64 `json:"attendee_id" validate:"required,gt=0"`
}

// CheckInResult acknowledges a (possibly repeated) check-in.
type CheckInResult struct {
	CheckedIn   bool      `json:"checked_in"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// CheckInListResponse is the organizer's view of who is in the room.
type CheckInListResponse struct {
	CheckIns []CheckIn `json:"checkins"`
}

// Attendance errors
var (
	ErrInvalidStatus = errors.New("invalid attendance status")
	ErrEventNotFound = errors.New("event not found")
	ErrNotOrganizer  = errors.New("not the organizer of this event")
	ErrNotAttending  = errors.New("attendee does not hold attending status")
)
