package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/feelnote-core/internal/apperr"
	"github.com/d60-Lab/feelnote-core/internal/metrics"
	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/internal/repository"
)

var ErrFollowSelf = errors.New("cannot follow self")

// RelationshipService manages the follow graph.
type RelationshipService interface {
	// Follow is idempotent; the first follow credits FOLLOW_GAINED to the
	// followed user and notifies them.
	Follow(ctx context.Context, fromUserID, toUserID string) error
	Unfollow(ctx context.Context, fromUserID, toUserID string) error
	ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, error)
	ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]string, error)
	IsConnected(ctx context.Context, a, b string) (bool, error)
}

type relationshipService struct {
	db         *gorm.DB
	followRepo repository.FollowRepository
	ledger     ScoreLedger
	notifier   Notifier
}

func NewRelationshipService(db *gorm.DB, followRepo repository.FollowRepository, ledger ScoreLedger, notifier Notifier) RelationshipService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &relationshipService{db: db, followRepo: followRepo, ledger: ledger, notifier: notifier}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID string) (err error) {
	const op = "relation.follow"
	start := time.Now()
	defer func() { metrics.ObserveOp(op, start, err) }()

	if fromUserID == "" {
		return apperr.Unauthenticated(op)
	}
	toUserID = strings.TrimSpace(toUserID)
	if toUserID == "" {
		return apperr.Validation(op, "user id is required")
	}
	if fromUserID == toUserID {
		return &apperr.Error{Code: apperr.CodeValidation, Op: op, Message: ErrFollowSelf.Error(), Cause: ErrFollowSelf}
	}

	var created bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.followRepo.WithTx(tx)
		exists, err := repo.ProfileExists(ctx, toUserID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound(op, "user not found")
		}
		created, err = repo.Create(ctx, fromUserID, toUserID)
		if err != nil || !created {
			return err
		}
		ref := fromUserID
		return s.ledger.ApplyInTx(ctx, tx, ScoreChange{
			UserID: toUserID, Type: model.ScoreTypeActivity, Action: ActionFollowGained,
			Amount: activityPoints[ActionFollowGained], ReferenceID: &ref,
		})
	})
	if err != nil {
		return apperr.FromStorage(op, err)
	}
	if created {
		s.notifier.Notify(ctx, toUserID, model.NotificationFollow, fromUserID, nil)
	}
	return nil
}

// Unfollow keeps the FOLLOW_GAINED points already granted.
func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID string) (err error) {
	const op = "relation.unfollow"
	start := time.Now()
	defer func() { metrics.ObserveOp(op, start, err) }()

	if fromUserID == "" {
		return apperr.Unauthenticated(op)
	}
	if _, err := s.followRepo.Delete(ctx, fromUserID, strings.TrimSpace(toUserID)); err != nil {
		return apperr.FromStorage(op, err)
	}
	return nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	offset, limit := pageBounds(page, pageSize)
	items, err := s.followRepo.ListFollowings(ctx, userID, offset, limit)
	if err != nil {
		return nil, apperr.FromStorage("relation.list_following", err)
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FollowingID
	}
	return res, nil
}

func (s *relationshipService) ListFollowers(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	offset, limit := pageBounds(page, pageSize)
	items, err := s.followRepo.ListFollowers(ctx, userID, offset, limit)
	if err != nil {
		return nil, apperr.FromStorage("relation.list_followers", err)
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FollowerID
	}
	return res, nil
}

func (s *relationshipService) IsConnected(ctx context.Context, a, b string) (bool, error) {
	ok, err := s.followRepo.IsConnected(ctx, a, b)
	if err != nil {
		return false, apperr.FromStorage("relation.is_connected", err)
	}
	return ok, nil
}
