package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neighborly/engage/internal/model"
)

func TestAttendanceRepository_Set_NewStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	// No existing row for this (event, user).
	mock.ExpectQuery(`SELECT status FROM event_attendance`).
		WithArgs(int64(10), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectExec(`INSERT INTO event_attendance`).
		WithArgs(int64(10), int64(42), "attending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT status, COUNT\(\*\)`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("attending", 4).
			AddRow("interested", 2))
	mock.ExpectCommit()

	status := model.StatusAttending
	result, err := repo.Set(context.Background(), 42, 10, &status)
	require.NoError(t, err)
	assert.Equal(t, "attending", result.Status)
	assert.Equal(t, 4, result.AttendingCount)
	assert.Equal(t, 2, result.InterestedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_Set_SameStatusCancels(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM event_attendance`).
		WithArgs(int64(10), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("attending"))
	// Pressing the same button again deletes the row.
	mock.ExpectExec(`DELETE FROM event_attendance`).
		WithArgs(int64(10), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT status, COUNT\(\*\)`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("attending", 3))
	mock.ExpectCommit()

	status := model.StatusAttending
	result, err := repo.Set(context.Background(), 42, 10, &status)
	require.NoError(t, err)
	assert.Equal(t, "none", result.Status)
	assert.Equal(t, 3, result.AttendingCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_Set_SwitchStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM event_attendance`).
		WithArgs(int64(10), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("interested"))
	mock.ExpectExec(`INSERT INTO event_attendance`).
		WithArgs(int64(10), int64(42), "attending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT status, COUNT\(\*\)`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("attending", 5).
			AddRow("interested", 1))
	mock.ExpectCommit()

	status := model.StatusAttending
	result, err := repo.Set(context.Background(), 42, 10, &status)
	require.NoError(t, err)
	assert.Equal(t, "attending", result.Status)
	assert.Equal(t, 5, result.AttendingCount)
	assert.Equal(t, 1, result.InterestedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_CheckIn_Idempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)
	when := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	// Already checked in: the original row comes back untouched and no
	// insert runs.
	mock.ExpectQuery(`SELECT event_id, attendee_id, checked_in_by, checked_in_at`).
		WithArgs(int64(10), int64(55)).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "attendee_id", "checked_in_by", "checked_in_at"}).
			AddRow(10, 55, 42, when))
	mock.ExpectCommit()

	result, err := repo.CheckIn(context.Background(), 10, 55, 42)
	require.NoError(t, err)
	assert.True(t, result.CheckedIn)
	assert.True(t, result.CheckedInAt.Equal(when))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_CheckIn_RequiresAttending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT event_id, attendee_id, checked_in_by, checked_in_at`).
		WithArgs(int64(10), int64(55)).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "attendee_id", "checked_in_by", "checked_in_at"}))
	mock.ExpectQuery(`SELECT status FROM event_attendance`).
		WithArgs(int64(10), int64(55)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("interested"))
	mock.ExpectRollback()

	_, err := repo.CheckIn(context.Background(), 10, 55, 42)
	assert.ErrorIs(t, err, model.ErrNotAttending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
