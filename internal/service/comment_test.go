package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neighborly/engage/internal/model"
	"github.com/neighborly/engage/internal/notify"
)

func newCommentService(oracle *mockOracle, comments *mockCommentRepo, pub *mockPublisher) *CommentService {
	return NewCommentService(oracle, comments, &mockCommentReactionRepo{}, &mockUserRepo{}, pub)
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestCommentService_Create_Success(t *testing.T) {
	comments := &mockCommentRepo{
		createFn: func(ctx context.Context, ref model.Ref, authorID int64, content string, parentID *int64) (*model.Comment, int, error) {
			return &model.Comment{ID: 5, TargetKind: ref.Kind, TargetID: ref.ID, AuthorID: authorID, Content: content}, 3, nil
		},
	}
	pub := &mockPublisher{}
	svc := newCommentService(&mockOracle{}, comments, pub)

	result, err := svc.Create(context.Background(), testActor, model.Ref{Kind: model.KindPost, ID: 10}, model.CreateCommentRequest{Content: "  hello  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Comment.Content != "hello" {
		t.Errorf("content = %q, want trimmed %q", result.Comment.Content, "hello")
	}
	if result.CommentCount != 3 {
		t.Errorf("comment count = %d, want 3", result.CommentCount)
	}
	if result.Comment.Author == nil {
		t.Error("expected author summary attached")
	}
	if len(pub.events) != 1 || pub.events[0].Type != notify.EventCommentCreated {
		t.Errorf("expected one comment_created event, got %v", pub.events)
	}
}

func TestCommentService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty", "", model.ErrContentRequired},
		{"whitespace only", "   \n\t ", model.ErrContentRequired},
		{"too long", strings.Repeat("a", model.MaxCommentLength+1), model.ErrContentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := &mockCommentRepo{}
			svc := newCommentService(&mockOracle{}, comments, &mockPublisher{})

			_, err := svc.Create(context.Background(), testActor, model.Ref{Kind: model.KindPost, ID: 10}, model.CreateCommentRequest{Content: tt.content})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if comments.createCalls != 0 {
				t.Errorf("Create called %d times, want 0", comments.createCalls)
			}
		})
	}
}

func TestCommentService_Create_RejectsCommentTarget(t *testing.T) {
	svc := newCommentService(&mockOracle{}, &mockCommentRepo{}, &mockPublisher{})

	_, err := svc.Create(context.Background(), testActor, model.Ref{Kind: model.KindComment, ID: 1}, model.CreateCommentRequest{Content: "hi"})
	if !errors.Is(err, model.ErrReplyToReply) {
		t.Fatalf("err = %v, want ErrReplyToReply", err)
	}
}

func TestCommentService_Create_RejectsReplyToReply(t *testing.T) {
	// Comment 5 is itself a reply (it has a parent), so replying to it
	// would start a second nesting level.
	grandparent := int64(1)
	comments := &mockCommentRepo{
		getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
			return &model.Comment{ID: 5, TargetKind: model.KindPost, TargetID: 10, ParentCommentID: &grandparent}, nil
		},
	}
	svc := newCommentService(&mockOracle{}, comments, &mockPublisher{})

	parent := int64(5)
	_, err := svc.Create(context.Background(), testActor, model.Ref{Kind: model.KindPost, ID: 10}, model.CreateCommentRequest{Content: "hi", ParentCommentID: &parent})
	if !errors.Is(err, model.ErrReplyToReply) {
		t.Fatalf("err = %v, want ErrReplyToReply", err)
	}
	if comments.createCalls != 0 {
		t.Errorf("Create called %d times, want 0", comments.createCalls)
	}
}

func TestCommentService_Create_RejectsParentOnOtherTarget(t *testing.T) {
	comments := &mockCommentRepo{
		getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
			return &model.Comment{ID: 5, TargetKind: model.KindPost, TargetID: 99}, nil
		},
	}
	svc := newCommentService(&mockOracle{}, comments, &mockPublisher{})

	parent := int64(5)
	_, err := svc.Create(context.Background(), testActor, model.Ref{Kind: model.KindPost, ID: 10}, model.CreateCommentRequest{Content: "hi", ParentCommentID: &parent})
	if !errors.Is(err, model.ErrParentMismatch) {
		t.Fatalf("err = %v, want ErrParentMismatch", err)
	}
}

// =============================================================================
// EDIT TESTS
// =============================================================================

func TestCommentService_Edit_OwnerOnly(t *testing.T) {
	comments := &mockCommentRepo{
		getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
			return &model.Comment{ID: 5, TargetKind: model.KindPost, TargetID: 10, AuthorID: 999}, nil
		},
	}
	svc := newCommentService(&mockOracle{}, comments, &mockPublisher{})

	_, err := svc.Edit(context.Background(), testActor, 5, model.UpdateCommentRequest{Content: "edited"})
	if !errors.Is(err, model.ErrNotCommentOwner) {
		t.Fatalf("err = %v, want ErrNotCommentOwner", err)
	}
}

func TestCommentService_Edit_ModeratorAllowed(t *testing.T) {
	comments := &mockCommentRepo{
		getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
			return &model.Comment{ID: 5, TargetKind: model.KindPost, TargetID: 10, AuthorID: 999}, nil
		},
		updateFn: func(ctx context.Context, commentID int64, content string) (*model.Comment, error) {
			return &model.Comment{ID: commentID, TargetKind: model.KindPost, TargetID: 10, AuthorID: 999, Content: content}, nil
		},
	}
	svc := newCommentService(&mockOracle{}, comments, &mockPublisher{})

	moderator := model.Actor{UserID: 1, TenantID: 7, Moderator: true}
	comment, err := svc.Edit(context.Background(), moderator, 5, model.UpdateCommentRequest{Content: "removed by moderator"})
	if err != nil {
		t.Fatalf("moderator edit: %v", err)
	}
	if comment.Content != "removed by moderator" {
		t.Errorf("content = %q", comment.Content)
	}
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestCommentService_Delete_CascadeCounts(t *testing.T) {
	comments := &mockCommentRepo{
		getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
			return &model.Comment{ID: 5, TargetKind: model.KindPost, TargetID: 10, AuthorID: testActor.UserID}, nil
		},
		deleteFn: func(ctx context.Context, commentID int64) (model.Ref, int, int, error) {
			// The comment plus two replies went away, four remain.
			return model.Ref{Kind: model.KindPost, ID: 10}, 3, 4, nil
		},
	}
	pub := &mockPublisher{}
	svc := newCommentService(&mockOracle{}, comments, pub)

	result, err := svc.Delete(context.Background(), testActor, 5)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.DeletedCount != 3 {
		t.Errorf("deleted count = %d, want 3", result.DeletedCount)
	}
	if result.CommentCount != 4 {
		t.Errorf("comment count = %d, want 4", result.CommentCount)
	}
	if len(pub.events) != 1 || pub.events[0].Type != notify.EventCommentDeleted {
		t.Fatalf("expected one comment_deleted event")
	}
	if pub.events[0].CommentCount == nil || *pub.events[0].CommentCount != 4 {
		t.Errorf("event carries count %v, want 4", pub.events[0].CommentCount)
	}
}

func TestCommentService_Delete_NotOwner(t *testing.T) {
	comments := &mockCommentRepo{
		getByIDFn: func(ctx context.Context, commentID int64) (*model.Comment, error) {
			return &model.Comment{ID: 5, TargetKind: model.KindPost, TargetID: 10, AuthorID: 999}, nil
		},
	}
	svc := newCommentService(&mockOracle{}, comments, &mockPublisher{})

	_, err := svc.Delete(context.Background(), testActor, 5)
	if !errors.Is(err, model.ErrNotCommentOwner) {
		t.Fatalf("err = %v, want ErrNotCommentOwner", err)
	}
	if comments.deleteCalls != 0 {
		t.Errorf("Delete called %d times, want 0", comments.deleteCalls)
	}
}

// =============================================================================
// THREAD TESTS
// =============================================================================

func TestCommentService_Thread_AttachesReactions(t *testing.T) {
	comments := &mockCommentRepo{
		threadFn: func(ctx context.Context, ref model.Ref, cursor *string, limit int) ([]model.Comment, *string, error) {
			return []model.Comment{
				{ID: 1, TargetKind: ref.Kind, TargetID: ref.ID, Replies: []model.Comment{{ID: 2}}},
			}, nil, nil
		},
	}
	reactions := &mockCommentReactionRepo{
		mapsForFn: func(ctx context.Context, commentIDs []int64, viewerID *int64) (map[int64]map[string]int, map[int64][]string, error) {
			if len(commentIDs) != 2 {
				t.Errorf("MapsFor got ids %v, want top-level and reply", commentIDs)
			}
			return map[int64]map[string]int{
					1: {"👍": 2},
					2: {"❤️": 1},
				}, map[int64][]string{
					1: {"👍"},
				}, nil
		},
	}
	svc := NewCommentService(&mockOracle{}, comments, reactions, &mockUserRepo{}, &mockPublisher{})

	thread, err := svc.Thread(context.Background(), testActor, model.Ref{Kind: model.KindPost, ID: 10}, nil, 20)
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if thread.HasMore {
		t.Error("has_more = true, want false")
	}
	if got := thread.Comments[0].Reactions["👍"]; got != 2 {
		t.Errorf("top-level 👍 = %d, want 2", got)
	}
	if got := thread.Comments[0].Replies[0].Reactions["❤️"]; got != 1 {
		t.Errorf("reply ❤️ = %d, want 1", got)
	}
	if len(thread.Comments[0].UserReactions) != 1 {
		t.Errorf("viewer reactions = %v, want [👍]", thread.Comments[0].UserReactions)
	}
}

func TestCommentService_Thread_Pagination(t *testing.T) {
	next := "21:2026-01-02T15:04:05Z"
	comments := &mockCommentRepo{
		threadFn: func(ctx context.Context, ref model.Ref, cursor *string, limit int) ([]model.Comment, *string, error) {
			if limit != 20 {
				t.Errorf("limit = %d, want default 20", limit)
			}
			return []model.Comment{{ID: 1}}, &next, nil
		},
	}
	svc := newCommentService(&mockOracle{}, comments, &mockPublisher{})

	thread, err := svc.Thread(context.Background(), testActor, model.Ref{Kind: model.KindPost, ID: 10}, nil, 0)
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if !thread.HasMore {
		t.Error("has_more = false, want true")
	}
	if thread.NextCursor == nil || *thread.NextCursor != next {
		t.Errorf("next cursor = %v, want %q", thread.NextCursor, next)
	}
}
