package service

import (
	"context"
	"errors"
	"testing"

	"github.com/neighborly/engage/internal/model"
)

func TestSummaryService_Get_CacheMissRecomputes(t *testing.T) {
	reactions := &mockReactionRepo{
		countFn: func(ctx context.Context, ref model.Ref) (int, error) { return 5, nil },
	}
	comments := &mockCommentRepo{
		countForFn: func(ctx context.Context, ref model.Ref) (int, error) { return 3, nil },
	}
	shares := &mockShareRepo{
		countForFn: func(ctx context.Context, ref model.Ref) (int, error) { return 2, nil },
	}
	cache := &mockSummaryCache{}
	svc := NewSummaryService(&mockOracle{}, reactions, comments, shares, cache)

	summary, err := svc.Get(context.Background(), testActor, model.Ref{Kind: model.KindPost, ID: 10})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if summary.ReactionCount != 5 || summary.CommentCount != 3 || summary.ShareCount != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if cache.setCalls != 1 {
		t.Errorf("cache Set called %d times, want 1", cache.setCalls)
	}
}

func TestSummaryService_Get_CacheHitSkipsCounts(t *testing.T) {
	cached := &model.EngagementSummary{TargetKind: model.KindPost, TargetID: 10, ReactionCount: 7}
	cache := &mockSummaryCache{
		getFn: func(ctx context.Context, ref model.Ref) (*model.EngagementSummary, bool, error) {
			return cached, true, nil
		},
	}
	reactions := &mockReactionRepo{
		countFn: func(ctx context.Context, ref model.Ref) (int, error) {
			t.Error("Count should not run on cache hit")
			return 0, nil
		},
	}
	svc := NewSummaryService(&mockOracle{}, reactions, &mockCommentRepo{}, &mockShareRepo{}, cache)

	summary, err := svc.Get(context.Background(), testActor, model.Ref{Kind: model.KindPost, ID: 10})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if summary.ReactionCount != 7 {
		t.Errorf("reaction count = %d, want cached 7", summary.ReactionCount)
	}
}

func TestSummaryService_Get_CacheErrorFallsThrough(t *testing.T) {
	cache := &mockSummaryCache{
		getFn: func(ctx context.Context, ref model.Ref) (*model.EngagementSummary, bool, error) {
			return nil, false, errors.New("redis down")
		},
	}
	reactions := &mockReactionRepo{
		countFn: func(ctx context.Context, ref model.Ref) (int, error) { return 1, nil },
	}
	svc := NewSummaryService(&mockOracle{}, reactions, &mockCommentRepo{}, &mockShareRepo{}, cache)

	summary, err := svc.Get(context.Background(), testActor, model.Ref{Kind: model.KindPost, ID: 10})
	if err != nil {
		t.Fatalf("cache error should not fail the read, got: %v", err)
	}
	if summary.ReactionCount != 1 {
		t.Errorf("reaction count = %d, want recomputed 1", summary.ReactionCount)
	}
}

func TestSummaryService_Get_TargetNotVisible(t *testing.T) {
	oracle := &mockOracle{
		visibleFn: func(ctx context.Context, ref model.Ref, tenantID int64) (bool, error) {
			return false, nil
		},
	}
	svc := NewSummaryService(oracle, &mockReactionRepo{}, &mockCommentRepo{}, &mockShareRepo{}, &mockSummaryCache{})

	_, err := svc.Get(context.Background(), testActor, model.Ref{Kind: model.KindPost, ID: 10})
	if !errors.Is(err, model.ErrTargetNotFound) {
		t.Fatalf("err = %v, want ErrTargetNotFound", err)
	}
}
