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

type ReactionService struct {
	oracle           repository.ContentOracle
	reactions        repository.ReactionRepository
	commentReactions repository.CommentReactionRepository
	publisher        notify.Publisher
}

func NewReactionService(
	oracle repository.ContentOracle,
	reactions repository.ReactionRepository,
	commentReactions repository.CommentReactionRepository,
	publisher notify.Publisher,
) *ReactionService {
	return &ReactionService{
		oracle:           oracle,
		reactions:        reactions,
		commentReactions: commentReactions,
		publisher:        publisher,
	}
}

// Toggle flips the actor's reaction on a target and returns the
// authoritative state. The server always flips; clients that time out
// must re-fetch before retrying, since a blind retry would flip back.
func (s *ReactionService) Toggle(ctx context.Context, actor model.Actor, ref model.Ref) (*model.ReactionResult, error) {
	visible, err := s.oracle.Visible(ctx, ref, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return nil, model.ErrTargetNotFound
	}

	var liked bool
	var count int
	err = database.WithRetry(ctx, func() error {
		var toggleErr error
		liked, count, toggleErr = s.reactions.Toggle(ctx, actor.UserID, ref)
		return toggleErr
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	log.Printf("[ReactionService] User %d toggled %s liked=%t count=%d", actor.UserID, ref, liked, count)

	// Post-commit, best-effort: a failed publish never fails the toggle.
	if s.publisher != nil {
		event := notify.NewReactionChangedEvent(ref, actor.UserID, count)
		if _, err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("[ReactionService] Failed to publish ReactionChanged: target=%s err=%v", ref, err)
		}
	}

	return &model.ReactionResult{Liked: liked, Count: count}, nil
}

// Liked reports which of the given targets the actor has reacted to.
// Batched so a list view hydrates its liked flags in one query instead
// of one per item.
func (s *ReactionService) Liked(ctx context.Context, actor model.Actor, kind model.Kind, ids []int64) (*model.LikedResponse, error) {
	if len(ids) > model.MaxLikedBatch {
		return nil, model.ErrTooManyTargets
	}

	liked, err := s.reactions.CheckLiked(ctx, actor.UserID, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("check liked: %w", err)
	}
	return &model.LikedResponse{Liked: liked}, nil
}

// ToggleCommentReaction flips one emoji on a comment and returns the
// full per-emoji map plus the actor's own emoji set.
func (s *ReactionService) ToggleCommentReaction(ctx context.Context, actor model.Actor, commentID int64, emoji string) (*model.CommentReactionResult, error) {
	if !model.AllowedEmojis[emoji] {
		return nil, model.ErrInvalidEmoji
	}

	ref := model.Ref{Kind: model.KindComment, ID: commentID}
	visible, err := s.oracle.Visible(ctx, ref, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return nil, model.ErrCommentNotFound
	}

	var result *model.CommentReactionResult
	err = database.WithRetry(ctx, func() error {
		var toggleErr error
		result, toggleErr = s.commentReactions.Toggle(ctx, actor.UserID, commentID, emoji)
		return toggleErr
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	log.Printf("[ReactionService] User %d toggled %q on comment %d", actor.UserID, emoji, commentID)

	if s.publisher != nil {
		event := notify.NewCommentReactionChangedEvent(commentID, actor.UserID, result.Reactions)
		if _, err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("[ReactionService] Failed to publish CommentReactionChanged: comment=%d err=%v", commentID, err)
		}
	}

	return result, nil
}
