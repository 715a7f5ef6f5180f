package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feelnote-core/internal/model"
)

type FollowRepository interface {
	// Create is idempotent: a repeat follow returns created=false.
	Create(ctx context.Context, followerID, followingID string) (bool, error)
	Delete(ctx context.Context, followerID, followingID string) (bool, error)
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	// ProfileExists reports whether userID is a registered profile.
	ProfileExists(ctx context.Context, userID string) (bool, error)
	// IsConnected reports a follow edge in either direction.
	IsConnected(ctx context.Context, a, b string) (bool, error)
	ListFollowings(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error)
	ListFollowers(ctx context.Context, followingID string, offset, limit int) ([]*model.Follow, error)
	WithTx(tx *gorm.DB) FollowRepository
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) WithTx(tx *gorm.DB) FollowRepository { return &followRepository{db: tx} }

func (r *followRepository) Create(ctx context.Context, followerID, followingID string) (bool, error) {
	f := &model.Follow{ID: uuid.New().String(), FollowerID: followerID, FollowingID: followingID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	return res.RowsAffected > 0, res.Error
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *followRepository) ProfileExists(ctx context.Context, userID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Count(&cnt).Error
	return cnt > 0, err
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) IsConnected(ctx context.Context, a, b string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)", a, b, b, a).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) ListFollowings(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ?", followerID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *followRepository) ListFollowers(ctx context.Context, followingID string, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Where("following_id = ?", followingID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
