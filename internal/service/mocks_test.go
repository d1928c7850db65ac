package service

import (
	"context"

	"github.com/neighborly/engage/internal/model"
	"github.com/neighborly/engage/internal/notify"
)

// =============================================================================
// MOCKS
// =============================================================================
//
// Services depend on the repository INTERFACES, so tests swap in mocks
// whose behavior each test defines through function fields.

type mockOracle struct {
	visibleFn func(ctx context.Context, ref model.Ref, tenantID int64) (bool, error)
}

func (m *mockOracle) Visible(ctx context.Context, ref model.Ref, tenantID int64) (bool, error) {
	if m.visibleFn != nil {
		return m.visibleFn(ctx, ref, tenantID)
	}
	return true, nil
}

type mockReactionRepo struct {
	toggleFn     func(ctx context.Context, userID int64, ref model.Ref) (bool, int, error)
	countFn      func(ctx context.Context, ref model.Ref) (int, error)
	checkLikedFn func(ctx context.Context, userID int64, kind model.Kind, ids []int64) (map[int64]bool, error)

	toggleCalls int
}

func (m *mockReactionRepo) Toggle(ctx context.Context, userID int64, ref model.Ref) (bool, int, error) {
	m.toggleCalls++
	if m.toggleFn != nil {
		return m.toggleFn(ctx, userID, ref)
	}
	return true, 1, nil
}

func (m *mockReactionRepo) Count(ctx context.Context, ref model.Ref) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, ref)
	}
	return 0, nil
}

func (m *mockReactionRepo) CheckLiked(ctx context.Context, userID int64, kind model.Kind, ids []int64) (map[int64]bool, error) {
	if m.checkLikedFn != nil {
		return m.checkLikedFn(ctx, userID, kind, ids)
	}
	return map[int64]bool{}, nil
}

type mockCommentReactionRepo struct {
	toggleFn  func(ctx context.Context, userID, commentID int64, emoji string) (*model.CommentReactionResult, error)
	mapsForFn func(ctx context.Context, commentIDs []int64, viewerID *int64) (map[int64]map[string]int, map[int64][]string, error)
}

func (m *mockCommentReactionRepo) Toggle(ctx context.Context, userID, commentID int64, emoji string) (*model.CommentReactionResult, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, userID, commentID, emoji)
	}
	return &model.CommentReactionResult{Reactions: map[string]int{}}, nil
}

func (m *mockCommentReactionRepo) MapsFor(ctx context.Context, commentIDs []int64, viewerID *int64) (map[int64]map[string]int, map[int64][]string, error) {
	if m.mapsForFn != nil {
		return m.mapsForFn(ctx, commentIDs, viewerID)
	}
	return map[int64]map[string]int{}, map[int64][]string{}, nil
}

type mockCommentRepo struct {
	createFn   func(ctx context.Context, ref model.Ref, authorID int64, content string, parentID *int64) (*model.Comment, int, error)
	getByIDFn  func(ctx context.Context, commentID int64) (*model.Comment, error)
	updateFn   func(ctx context.Context, commentID int64, content string) (*model.Comment, error)
	deleteFn   func(ctx context.Context, commentID int64) (model.Ref, int, int, error)
	threadFn   func(ctx context.Context, ref model.Ref, cursor *string, limit int) ([]model.Comment, *string, error)
	countForFn func(ctx context.Context, ref model.Ref) (int, error)

	createCalls int
	deleteCalls int
}

func (m *mockCommentRepo) Create(ctx context.Context, ref model.Ref, authorID int64, content string, parentID *int64) (*model.Comment, int, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, ref, authorID, content, parentID)
	}
	return &model.Comment{ID: 1, TargetKind: ref.Kind, TargetID: ref.ID, AuthorID: authorID, Content: content, ParentCommentID: parentID}, 1, nil
}

func (m *mockCommentRepo) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepo) Update(ctx context.Context, commentID int64, content string) (*model.Comment, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, commentID, content)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepo) Delete(ctx context.Context, commentID int64) (model.Ref, int, int, error) {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, commentID)
	}
	return model.Ref{}, 0, 0, model.ErrCommentNotFound
}

func (m *mockCommentRepo) Thread(ctx context.Context, ref model.Ref, cursor *string, limit int) ([]model.Comment, *string, error) {
	if m.threadFn != nil {
		return m.threadFn(ctx, ref, cursor, limit)
	}
	return nil, nil, nil
}

func (m *mockCommentRepo) CountFor(ctx context.Context, ref model.Ref) (int, error) {
	if m.countForFn != nil {
		return m.countForFn(ctx, ref)
	}
	return 0, nil
}

type mockAttendanceRepo struct {
	setFn          func(ctx context.Context, userID, eventID int64, status *model.AttendanceStatus) (*model.AttendanceResult, error)
	getFn          func(ctx context.Context, userID, eventID int64) (*model.Attendance, error)
	organizerIDFn  func(ctx context.Context, eventID int64) (int64, error)
	checkInFn      func(ctx context.Context, eventID, attendeeID, byUserID int64) (*model.CheckInResult, error)
	listCheckInsFn func(ctx context.Context, eventID int64) ([]model.CheckIn, error)

	checkInCalls int
}

func (m *mockAttendanceRepo) Set(ctx context.Context, userID, eventID int64, status *model.AttendanceStatus) (*model.AttendanceResult, error) {
	if m.setFn != nil {
		return m.setFn(ctx, userID, eventID, status)
	}
	return &model.AttendanceResult{Status: "none"}, nil
}

func (m *mockAttendanceRepo) Get(ctx context.Context, userID, eventID int64) (*model.Attendance, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, eventID)
	}
	return nil, nil
}

func (m *mockAttendanceRepo) OrganizerID(ctx context.Context, eventID int64) (int64, error) {
	if m.organizerIDFn != nil {
		return m.organizerIDFn(ctx, eventID)
	}
	return 0, model.ErrEventNotFound
}

func (m *mockAttendanceRepo) CheckIn(ctx context.Context, eventID, attendeeID, byUserID int64) (*model.CheckInResult, error) {
	m.checkInCalls++
	if m.checkInFn != nil {
		return m.checkInFn(ctx, eventID, attendeeID, byUserID)
	}
	return &model.CheckInResult{CheckedIn: true}, nil
}

func (m *mockAttendanceRepo) ListCheckIns(ctx context.Context, eventID int64) ([]model.CheckIn, error) {
	if m.listCheckInsFn != nil {
		return m.listCheckInsFn(ctx, eventID)
	}
	return nil, nil
}

type mockShareRepo struct {
	createFn     func(ctx context.Context, userID int64, ref model.Ref) (*model.Share, error)
	getByIDFn    func(ctx context.Context, shareID int64) (*model.Share, error)
	deleteFn     func(ctx context.Context, shareID int64) error
	listByUserFn func(ctx context.Context, userID int64, limit int) ([]model.Share, error)
	countForFn   func(ctx context.Context, ref model.Ref) (int, error)

	deleteCalls int
}

func (m *mockShareRepo) Create(ctx context.Context, userID int64, ref model.Ref) (*model.Share, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, ref)
	}
	return &model.Share{ID: 1, SharerID: userID, TargetKind: ref.Kind, TargetID: ref.ID}, nil
}

func (m *mockShareRepo) GetByID(ctx context.Context, shareID int64) (*model.Share, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, shareID)
	}
	return nil, model.ErrShareNotFound
}

func (m *mockShareRepo) Delete(ctx context.Context, shareID int64) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, shareID)
	}
	return nil
}

func (m *mockShareRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Share, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockShareRepo) CountFor(ctx context.Context, ref model.Ref) (int, error) {
	if m.countForFn != nil {
		return m.countForFn(ctx, ref)
	}
	return 0, nil
}

type mockUserRepo struct {
	getSummaryFn func(ctx context.Context, userID int64) (*model.ActorSummary, error)
}

func (m *mockUserRepo) GetSummary(ctx context.Context, userID int64) (*model.ActorSummary, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(ctx, userID)
	}
	return &model.ActorSummary{ID: userID, Username: "user"}, nil
}

type mockPublisher struct {
	publishFn func(ctx context.Context, event notify.Event) (string, error)

	events []notify.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event notify.Event) (string, error) {
	m.events = append(m.events, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, event)
	}
	return "1-0", nil
}

type mockSummaryCache struct {
	getFn        func(ctx context.Context, ref model.Ref) (*model.EngagementSummary, bool, error)
	setFn        func(ctx context.Context, ref model.Ref, summary *model.EngagementSummary) error
	invalidateFn func(ctx context.Context, ref model.Ref) error

	setCalls int
}

func (m *mockSummaryCache) Get(ctx context.Context, ref model.Ref) (*model.EngagementSummary, bool, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ref)
	}
	return nil, false, nil
}

func (m *mockSummaryCache) Set(ctx context.Context, ref model.Ref, summary *model.EngagementSummary) error {
	m.setCalls++
	if m.setFn != nil {
		return m.setFn(ctx, ref, summary)
	}
	return nil
}

func (m *mockSummaryCache) Invalidate(ctx context.Context, ref model.Ref) error {
	if m.invalidateFn != nil {
		return m.invalidateFn(ctx, ref)
	}
	return nil
}
