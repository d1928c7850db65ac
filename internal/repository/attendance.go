package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/neighborly/engage/internal/model"
)

type attendanceRepository struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Set applies the exclusive-RSVP transition in one transaction. The
// current row is read FOR UPDATE so two concurrent calls from the same
// user serialize; the upsert moves the user between status groups in a
// single statement, so a concurrent reader never observes the user
// double-counted or missing. Requesting the status the user already
// holds (or nil) cancels the RSVP.
func (r *attendanceRepository) Set(ctx context.Context, userID, eventID int64, status *model.AttendanceStatus) (*model.AttendanceResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current model.AttendanceStatus
	err = tx.GetContext(ctx, &current, `
		SELECT status FROM event_attendance
		WHERE event_id = $1 AND user_id = $2
		FOR UPDATE
	`, eventID, userID)
	hasRow := true
	if err == sql.ErrNoRows {
		hasRow = false
	} else if err != nil {
		return nil, fmt.Errorf("get current status: %w", err)
	}

	final := "none"
	switch {
	case status == nil, hasRow && current == *status:
		// Explicit cancel, or pressing the same button again.
		if hasRow {
			_, err = tx.ExecContext(ctx, `
				DELETE FROM event_attendance WHERE event_id = $1 AND user_id = $2
			`, eventID, userID)
			if err != nil {
				return nil, fmt.Errorf("delete attendance: %w", err)
			}
		}
	default:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO event_attendance (event_id, user_id, status, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (event_id, user_id)
			DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
		`, eventID, userID, *status)
		if err != nil {
			return nil, fmt.Errorf("upsert attendance: %w", err)
		}
		final = string(*status)
	}

	counts, err := statusCounts(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &model.AttendanceResult{
		Status:          final,
		AttendingCount:  counts[model.StatusAttending],
		InterestedCount: counts[model.StatusInterested],
	}, nil
}

func statusCounts(ctx context.Context, tx *sqlx.Tx, eventID int64) (map[model.AttendanceStatus]int, error) {
	type row struct {
		Status model.AttendanceStatus `db:"status"`
		Count  int                    `db:"count"`
	}
	var rows []row
	err := tx.SelectContext(ctx, &rows, `
		SELECT status, COUNT(*) AS count
		FROM event_attendance
		WHERE event_id = $1
		GROUP BY status
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}
	counts := make(map[model.AttendanceStatus]int, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

// Get returns the user's current RSVP row, or ErrNoRows mapped to nil.
func (r *attendanceRepository) Get(ctx context.Context, userID, eventID int64) (*model.Attendance, error) {
	var att model.Attendance
	err := r.db.GetContext(ctx, &att, `
		SELECT event_id, user_id, status, updated_at
		FROM event_attendance
		WHERE event_id = $1 AND user_id = $2
	`, eventID, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return &att, nil
}

// OrganizerID returns the organizer of an event.
func (r *attendanceRepository) OrganizerID(ctx context.Context, eventID int64) (int64, error) {
	var organizerID int64
	err := r.db.GetContext(ctx, &organizerID, `
		SELECT organizer_id FROM events WHERE id = $1 AND deleted_at IS NULL
	`, eventID)
	if err == sql.ErrNoRows {
		return 0, model.ErrEventNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get organizer: %w", err)
	}
	return organizerID, nil
}

// CheckIn records a check-in. The first call requires the attendee to
// currently hold attending status; repeats return the original row
// untouched, so a later RSVP change never undoes a check-in.
func (r *attendanceRepository) CheckIn(ctx context.Context, eventID, attendeeID, byUserID int64) (*model.CheckInResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing model.CheckIn
	err = tx.GetContext(ctx, &existing, `
		SELECT event_id, attendee_id, checked_in_by, checked_in_at
		FROM event_checkins
		WHERE event_id = $1 AND attendee_id = $2
		FOR UPDATE
	`, eventID, attendeeID)
	if err == nil {
		// Already checked in: idempotent no-op.
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit transaction: %w", err)
		}
		return &model.CheckInResult{CheckedIn: true, CheckedInAt: existing.CheckedInAt}, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get checkin: %w", err)
	}

	var status model.AttendanceStatus
	err = tx.GetContext(ctx, &status, `
		SELECT status FROM event_attendance WHERE event_id = $1 AND user_id = $2
	`, eventID, attendeeID)
	if err == sql.ErrNoRows || (err == nil && status != model.StatusAttending) {
		return nil, model.ErrNotAttending
	}
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}

	var checkin model.CheckIn
	err = tx.GetContext(ctx, &checkin, `
		INSERT INTO event_checkins (event_id, attendee_id, checked_in_by, checked_in_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING event_id, attendee_id, checked_in_by, checked_in_at
	`, eventID, attendeeID, byUserID)
	if err != nil {
		return nil, fmt.Errorf("insert checkin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &model.CheckInResult{CheckedIn: true, CheckedInAt: checkin.CheckedInAt}, nil
}

// ListCheckIns returns everyone checked in to an event, newest first,
// with attendee display info joined.
func (r *attendanceRepository) ListCheckIns(ctx context.Context, eventID int64) ([]model.CheckIn, error) {
	type row struct {
		EventID     int64     `db:"event_id"`
		AttendeeID  int64     `db:"attendee_id"`
		CheckedInBy int64     `db:"checked_in_by"`
		CheckedInAt time.Time `db:"checked_in_at"`
		Username    string    `db:"username"`
		DisplayName *string   `db:"display_name"`
		AvatarURL   *string   `db:"avatar_url"`
	}

	var rows []row
	err := r.db.SelectContext(ctx, &rows, `
		SELECT ci.event_id, ci.attendee_id, ci.checked_in_by, ci.checked_in_at,
		       u.username, u.display_name, u.avatar_url
		FROM event_checkins ci
		JOIN users u ON u.id = ci.attendee_id
		WHERE ci.event_id = $1
		ORDER BY ci.checked_in_at DESC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}

	checkins := make([]model.CheckIn, len(rows))
	for i, rw := range rows {
		checkins[i] = model.CheckIn{
			EventID:     rw.EventID,
			AttendeeID:  rw.AttendeeID,
			CheckedInBy: rw.CheckedInBy,
			CheckedInAt: rw.CheckedInAt,
			Attendee: &model.ActorSummary{
				ID:          rw.AttendeeID,
				Username:    rw.Username,
				DisplayName: rw.DisplayName,
				AvatarURL:   rw.AvatarURL,
			},
		}
	}
	return checkins, nil
}
