package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"socialnet/internal/metrics"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// FollowService manages the follow relation. One row represents both the
// follower's "following" entry and the followee's "followers" entry, so each
// operation is a single atomic statement.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	log        logrus.FieldLogger
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	log logrus.FieldLogger,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		log:        log,
	}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followeeID string) error {
	ctx, span := startSpan(ctx, "FollowService.Follow", attribute.String("follower.id", followerID), attribute.String("followee.id", followeeID))
	var err error
	defer func() { endSpan(span, err) }()

	if followerID == followeeID {
		err = model.ErrCannotFollowSelf
		return err
	}

	if _, err = s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}

	var inserted bool
	inserted, err = s.followRepo.Create(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !inserted {
		err = model.ErrAlreadyFollowing
		return err
	}

	metrics.RecordFollowChange("follow")
	s.log.WithFields(logrus.Fields{"follower_id": followerID, "followee_id": followeeID}).Info("user followed")
	return nil
}

// Unfollow is idempotent: unfollowing someone not followed succeeds without changes.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	ctx, span := startSpan(ctx, "FollowService.Unfollow", attribute.String("follower.id", followerID), attribute.String("followee.id", followeeID))
	var err error
	defer func() { endSpan(span, err) }()

	if _, err = s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}

	var deleted bool
	deleted, err = s.followRepo.Delete(ctx, followerID, followeeID)
	if err != nil {
		return err
	}

	if deleted {
		metrics.RecordFollowChange("unfollow")
		s.log.WithFields(logrus.Fields{"follower_id": followerID, "followee_id": followeeID}).Info("user unfollowed")
	}
	return nil
}
