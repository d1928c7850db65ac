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

type ShareService struct {
	oracle    repository.ContentOracle
	shares    repository.ShareRepository
	publisher notify.Publisher
}

func NewShareService(
	oracle repository.ContentOracle,
	shares repository.ShareRepository,
	publisher notify.Publisher,
) *ShareService {
	return &ShareService{
		oracle:    oracle,
		shares:    shares,
		publisher: publisher,
	}
}

// Share republishes a target into the actor's own feed. Ownership of the
// original is not required; visibility to the actor's tenant is.
func (s *ShareService) Share(ctx context.Context, actor model.Actor, ref model.Ref) (*model.Share, error) {
	visible, err := s.oracle.Visible(ctx, ref, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return nil, model.ErrTargetNotFound
	}

	var share *model.Share
	err = database.WithRetry(ctx, func() error {
		var createErr error
		share, createErr = s.shares.Create(ctx, actor.UserID, ref)
		return createErr
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	log.Printf("[ShareService] User %d shared %s as share %d", actor.UserID, ref, share.ID)

	if s.publisher != nil {
		event := notify.NewContentSharedEvent(ref, actor.UserID, share.ID)
		if _, err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("[ShareService] Failed to publish ContentShared: share=%d err=%v", share.ID, err)
		}
	}

	return share, nil
}

// Delete removes a share from the actor's feed. Shares are immutable, so
// delete is the only mutation after creation; the original target is
// never touched.
func (s *ShareService) Delete(ctx context.Context, actor model.Actor, shareID int64) error {
	share, err := s.shares.GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if share.SharerID != actor.UserID && !actor.Moderator {
		return model.ErrNotShareOwner
	}

	if err := s.shares.Delete(ctx, shareID); err != nil {
		return mapStoreErr(err)
	}

	log.Printf("[ShareService] User %d deleted share %d", actor.UserID, shareID)
	return nil
}

// ListMine returns the actor's shares for feed hydration.
func (s *ShareService) ListMine(ctx context.Context, actor model.Actor, limit int) (*model.ShareListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	shares, err := s.shares.ListByUser(ctx, actor.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return &model.ShareListResponse{Shares: shares}, nil
}
