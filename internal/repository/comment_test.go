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

func TestCursorRoundTrip_KeepsSubSecondPrecision(t *testing.T) {
	// Postgres NOW() carries microseconds; a cursor that floors to whole
	// seconds makes the keyset predicate re-match the boundary row.
	created := time.Date(2026, 8, 30, 19, 0, 0, 734000000, time.UTC)

	ts, id, err := parseCursor(formatCursor(created, 42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.True(t, ts.Equal(created), "cursor timestamp = %v, want %v", ts, created)
}

func TestParseCursor_Malformed(t *testing.T) {
	for _, cursor := range []string{"", "42", "42:abc", "abc:1787734800"} {
		if _, _, err := parseCursor(cursor); err == nil {
			t.Errorf("parseCursor(%q) = nil error, want failure", cursor)
		}
	}
}

var threadColumns = []string{
	"id", "target_kind", "target_id", "author_id", "content",
	"parent_comment_id", "created_at", "edited_at",
	"author_username", "author_display_name", "author_avatar_url",
}

func threadRow(rows *sqlmock.Rows, id int64, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(id, "post", int64(10), int64(1), "hello", nil, createdAt, nil, "alice", nil, nil)
}

func TestCommentRepository_Thread_SubSecondPageBoundary(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCommentRepository(db)
	ref := model.Ref{Kind: model.KindPost, ID: 10}

	base := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)
	boundary := base.Add(734 * time.Millisecond) // last row kept on page 1

	// Page 1: limit 2, limit+1 rows come back so a next cursor is cut
	// at the boundary row.
	page1 := sqlmock.NewRows(threadColumns)
	threadRow(page1, 1, base)
	threadRow(page1, 2, boundary)
	threadRow(page1, 3, boundary.Add(100*time.Millisecond))
	mock.ExpectQuery(`FROM comments c`).
		WithArgs("post", int64(10), 3).
		WillReturnRows(page1)
	mock.ExpectQuery(`parent_comment_id = ANY`).
		WillReturnRows(sqlmock.NewRows(threadColumns))

	comments, cursor, err := repo.Thread(context.Background(), ref, nil, 2)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.NotNil(t, cursor)

	// Page 2: the cursor must carry the boundary row's microseconds so
	// the (created_at, id) predicate excludes it instead of repeating it.
	wantTS := time.UnixMicro(boundary.UnixMicro())
	page2 := sqlmock.NewRows(threadColumns)
	threadRow(page2, 3, boundary.Add(100*time.Millisecond))
	mock.ExpectQuery(`FROM comments c`).
		WithArgs("post", int64(10), wantTS, int64(2), 3).
		WillReturnRows(page2)
	mock.ExpectQuery(`parent_comment_id = ANY`).
		WillReturnRows(sqlmock.NewRows(threadColumns))

	next, nextCursor, err := repo.Thread(context.Background(), ref, cursor, 2)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, int64(3), next[0].ID, "page 2 must start after the boundary row")
	assert.Nil(t, nextCursor)
	assert.NoError(t, mock.ExpectationsWereMet())
}
