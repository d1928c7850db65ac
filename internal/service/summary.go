package service

import (
	"context"
	"fmt"
	"log"

	"github.com/neighborly/engage/internal/cache"
	"github.com/neighborly/engage/internal/model"
	"github.com/neighborly/engage/internal/repository"
)

// SummaryService serves the read-side engagement rollup for a target
// through the invalidate-on-write cache. On a miss the summary is
// recomputed from the row sets, never from stored counters.
type SummaryService struct {
	oracle    repository.ContentOracle
	reactions repository.ReactionRepository
	comments  repository.CommentRepository
	shares    repository.ShareRepository
	cache     cache.SummaryCache
}

func NewSummaryService(
	oracle repository.ContentOracle,
	reactions repository.ReactionRepository,
	comments repository.CommentRepository,
	shares repository.ShareRepository,
	summaryCache cache.SummaryCache,
) *SummaryService {
	return &SummaryService{
		oracle:    oracle,
		reactions: reactions,
		comments:  comments,
		shares:    shares,
		cache:     summaryCache,
	}
}

// Get returns the engagement summary for a target.
func (s *SummaryService) Get(ctx context.Context, actor model.Actor, ref model.Ref) (*model.EngagementSummary, error) {
	visible, err := s.oracle.Visible(ctx, ref, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return nil, model.ErrTargetNotFound
	}

	if s.cache != nil {
		summary, found, err := s.cache.Get(ctx, ref)
		if err != nil {
			log.Printf("[SummaryService] Cache read failed for %s: %v", ref, err)
		} else if found {
			return summary, nil
		}
	}

	reactionCount, err := s.reactions.Count(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}
	commentCount, err := s.comments.CountFor(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	shareCount, err := s.shares.CountFor(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("count shares: %w", err)
	}

	summary := &model.EngagementSummary{
		TargetKind:    ref.Kind,
		TargetID:      ref.ID,
		ReactionCount: reactionCount,
		CommentCount:  commentCount,
		ShareCount:    shareCount,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, ref, summary); err != nil {
			log.Printf("[SummaryService] Cache write failed for %s: %v", ref, err)
		}
	}

	return summary, nil
}
