package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/neighborly/engage/internal/database"
	"github.com/neighborly/engage/internal/model"
	"github.com/neighborly/engage/internal/notify"
	"github.com/neighborly/engage/internal/repository"
)

type CommentService struct {
	oracle           repository.ContentOracle
	comments         repository.CommentRepository
	commentReactions repository.CommentReactionRepository
	users            repository.UserRepository
	publisher        notify.Publisher
}

func NewCommentService(
	oracle repository.ContentOracle,
	comments repository.CommentRepository,
	commentReactions repository.CommentReactionRepository,
	users repository.UserRepository,
	publisher notify.Publisher,
) *CommentService {
	return &CommentService{
		oracle:           oracle,
		comments:         comments,
		commentReactions: commentReactions,
		users:            users,
		publisher:        publisher,
	}
}

// Create adds a comment (or a single-level reply) to a target and
// returns it with the target's derived comment count.
func (s *CommentService) Create(ctx context.Context, actor model.Actor, ref model.Ref, req model.CreateCommentRequest) (*model.CommentResult, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}
	if ref.Kind == model.KindComment {
		// Discussion on a comment goes through parent_comment_id.
		return nil, model.ErrReplyToReply
	}

	visible, err := s.oracle.Visible(ctx, ref, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return nil, model.ErrTargetNotFound
	}

	if req.ParentCommentID != nil {
		parent, err := s.comments.GetByID(ctx, *req.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.Target() != ref {
			return nil, model.ErrParentMismatch
		}
		if parent.ParentCommentID != nil {
			return nil, model.ErrReplyToReply
		}
	}

	var comment *model.Comment
	var count int
	err = database.WithRetry(ctx, func() error {
		var createErr error
		comment, count, createErr = s.comments.Create(ctx, ref, actor.UserID, content, req.ParentCommentID)
		return createErr
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if author, err := s.users.GetSummary(ctx, actor.UserID); err == nil {
		comment.Author = author
	}

	log.Printf("[CommentService] User %d commented on %s (count=%d)", actor.UserID, ref, count)

	if s.publisher != nil {
		event := notify.NewCommentCreatedEvent(ref, actor.UserID, comment.ID, count)
		if _, err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("[CommentService] Failed to publish CommentCreated: comment=%d err=%v", comment.ID, err)
		}
	}

	return &model.CommentResult{Comment: comment, CommentCount: count}, nil
}

// Edit replaces a comment's content. Only the author or a moderator may
// edit; created_at and reactions are untouched, edited_at is stamped.
func (s *CommentService) Edit(ctx context.Context, actor model.Actor, commentID int64, req model.UpdateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	existing, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	visible, err := s.oracle.Visible(ctx, existing.Target(), actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return nil, model.ErrCommentNotFound
	}
	if existing.AuthorID != actor.UserID && !actor.Moderator {
		return nil, model.ErrNotCommentOwner
	}

	comment, err := s.comments.Update(ctx, commentID, content)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if author, err := s.users.GetSummary(ctx, comment.AuthorID); err == nil {
		comment.Author = author
	}

	log.Printf("[CommentService] User %d edited comment %d", actor.UserID, commentID)

	if s.publisher != nil {
		event := notify.NewCommentUpdatedEvent(comment.Target(), actor.UserID, commentID)
		if _, err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("[CommentService] Failed to publish CommentUpdated: comment=%d err=%v", commentID, err)
		}
	}

	return comment, nil
}

// Delete removes a comment and its direct replies. The returned result
// reports how many rows went away so clients can adjust their count by
// exactly 1 + number of replies.
func (s *CommentService) Delete(ctx context.Context, actor model.Actor, commentID int64) (*model.DeleteCommentResult, error) {
	existing, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	visible, err := s.oracle.Visible(ctx, existing.Target(), actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return nil, model.ErrCommentNotFound
	}
	if existing.AuthorID != actor.UserID && !actor.Moderator {
		return nil, model.ErrNotCommentOwner
	}

	var ref model.Ref
	var deleted, remaining int
	err = database.WithRetry(ctx, func() error {
		var delErr error
		ref, deleted, remaining, delErr = s.comments.Delete(ctx, commentID)
		return delErr
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	log.Printf("[CommentService] User %d deleted comment %d from %s (cascade=%d)", actor.UserID, commentID, ref, deleted)

	if s.publisher != nil {
		event := notify.NewCommentDeletedEvent(ref, actor.UserID, commentID, remaining)
		if _, err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("[CommentService] Failed to publish CommentDeleted: comment=%d err=%v", commentID, err)
		}
	}

	return &model.DeleteCommentResult{DeletedCount: deleted, CommentCount: remaining}, nil
}

// Thread returns the paginated discussion for a target in conversational
// order, with per-comment emoji reaction maps attached.
func (s *CommentService) Thread(ctx context.Context, actor model.Actor, ref model.Ref, cursor *string, limit int) (*model.ThreadResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	visible, err := s.oracle.Visible(ctx, ref, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return nil, model.ErrTargetNotFound
	}

	comments, nextCursor, err := s.comments.Thread(ctx, ref, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}

	if err := s.attachReactions(ctx, actor.UserID, comments); err != nil {
		log.Printf("[CommentService] Failed to attach reactions for %s: %v", ref, err)
	}

	hasMore := nextCursor != nil
	var finalCursor *string
	if hasMore {
		finalCursor = nextCursor
	}

	return &model.ThreadResponse{
		Comments:   comments,
		NextCursor: finalCursor,
		HasMore:    hasMore,
	}, nil
}

func (s *CommentService) attachReactions(ctx context.Context, viewerID int64, comments []model.Comment) error {
	var ids []int64
	for i := range comments {
		ids = append(ids, comments[i].ID)
		for j := range comments[i].Replies {
			ids = append(ids, comments[i].Replies[j].ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	counts, viewer, err := s.commentReactions.MapsFor(ctx, ids, &viewerID)
	if err != nil {
		return err
	}
	for i := range comments {
		comments[i].Reactions = counts[comments[i].ID]
		comments[i].UserReactions = viewer[comments[i].ID]
		for j := range comments[i].Replies {
			reply := &comments[i].Replies[j]
			reply.Reactions = counts[reply.ID]
			reply.UserReactions = viewer[reply.ID]
		}
	}
	return nil
}
