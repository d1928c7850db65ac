package service

import (
	"context"
	"fmt"
	"log"

	"github.com/neighborly/engage/internal/database"
	"github.com/neighborly/engage/internal/model"
	"github.com/neighborly/engage/internal/notify"
	"github.com/neighborly/engage/internal/repository"
)

type AttendanceService struct {
	oracle     repository.ContentOracle
	attendance repository.AttendanceRepository
	publisher  notify.Publisher
}

func NewAttendanceService(
	oracle repository.ContentOracle,
	attendance repository.AttendanceRepository,
	publisher notify.Publisher,
) *AttendanceService {
	return &AttendanceService{
		oracle:     oracle,
		attendance: attendance,
		publisher:  publisher,
	}
}

// SetStatus applies an RSVP transition for the actor. A nil status is an
// explicit cancel; requesting the status the actor already holds also
// cancels, mirroring the toggle-off behavior of pressing the same
// button twice. Returns the authoritative status and derived counts.
func (s *AttendanceService) SetStatus(ctx context.Context, actor model.Actor, eventID int64, rawStatus *string) (*model.AttendanceResult, error) {
	var status *model.AttendanceStatus
	if rawStatus != nil {
		parsed, err := model.ParseAttendanceStatus(*rawStatus)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}

	ref := model.Ref{Kind: model.KindEvent, ID: eventID}
	visible, err := s.oracle.Visible(ctx, ref, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return nil, model.ErrEventNotFound
	}

	var result *model.AttendanceResult
	err = database.WithRetry(ctx, func() error {
		var setErr error
		result, setErr = s.attendance.Set(ctx, actor.UserID, eventID, status)
		return setErr
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	log.Printf("[AttendanceService] User %d set event %d status=%s attending=%d interested=%d",
		actor.UserID, eventID, result.Status, result.AttendingCount, result.InterestedCount)

	if s.publisher != nil {
		event := notify.NewAttendanceChangedEvent(eventID, actor.UserID, result.AttendingCount, result.InterestedCount)
		if _, err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("[AttendanceService] Failed to publish AttendanceChanged: event=%d err=%v", eventID, err)
		}
	}

	return result, nil
}

// GetStatus returns the actor's own RSVP on an event, the read
// counterpart of SetStatus. Clients restoring state after a reload use
// this instead of replaying a mutation; "none" means no RSVP exists.
func (s *AttendanceService) GetStatus(ctx context.Context, actor model.Actor, eventID int64) (*model.AttendanceStatusResponse, error) {
	visible, err := s.oracle.Visible(ctx, model.Ref{Kind: model.KindEvent, ID: eventID}, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return nil, model.ErrEventNotFound
	}

	att, err := s.attendance.Get(ctx, actor.UserID, eventID)
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	if att == nil {
		return &model.AttendanceStatusResponse{Status: "none"}, nil
	}
	return &model.AttendanceStatusResponse{
		Status:    string(att.Status),
		UpdatedAt: &att.UpdatedAt,
	}, nil
}

// CheckIn records the organizer checking in an attendee. Only the
// event's organizer may check people in; repeated calls are idempotent
// and a later RSVP change never undoes a recorded check-in.
func (s *AttendanceService) CheckIn(ctx context.Context, actor model.Actor, eventID, attendeeID int64) (*model.CheckInResult, error) {
	visible, err := s.oracle.Visible(ctx, model.Ref{Kind: model.KindEvent, ID: eventID}, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return nil, model.ErrEventNotFound
	}

	organizerID, err := s.attendance.OrganizerID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if organizerID != actor.UserID && !actor.Moderator {
		return nil, model.ErrNotOrganizer
	}

	var result *model.CheckInResult
	err = database.WithRetry(ctx, func() error {
		var ciErr error
		result, ciErr = s.attendance.CheckIn(ctx, eventID, attendeeID, actor.UserID)
		return ciErr
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	log.Printf("[AttendanceService] Organizer %d checked in user %d at event %d", actor.UserID, attendeeID, eventID)

	if s.publisher != nil {
		event := notify.NewAttendeeCheckedInEvent(eventID, actor.UserID, attendeeID)
		if _, err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("[AttendanceService] Failed to publish AttendeeCheckedIn: event=%d err=%v", eventID, err)
		}
	}

	return result, nil
}

// ListCheckIns returns the door list. Organizer (or moderator) only.
func (s *AttendanceService) ListCheckIns(ctx context.Context, actor model.Actor, eventID int64) (*model.CheckInListResponse, error) {
	visible, err := s.oracle.Visible(ctx, model.Ref{Kind: model.KindEvent, ID: eventID}, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return nil, model.ErrEventNotFound
	}

	organizerID, err := s.attendance.OrganizerID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if organizerID != actor.UserID && !actor.Moderator {
		return nil, model.ErrNotOrganizer
	}

	checkins, err := s.attendance.ListCheckIns(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	return &model.CheckInListResponse{CheckIns: checkins}, nil
}
