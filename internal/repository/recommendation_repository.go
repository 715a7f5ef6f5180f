package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/feelnote-core/internal/model"
)

type RecommendationRepository interface {
	Create(ctx context.Context, rec *model.Recommendation) error
	Get(ctx context.Context, id string) (*model.Recommendation, error)
	ExistsPending(ctx context.Context, senderID, receiverID, userContentID string) (bool, error)
	// TransitionFromPending is a compare-and-swap on status = pending.
	// ok=false means another writer got there first.
	TransitionFromPending(ctx context.Context, id, receiverID string, to model.RecommendationStatus, at time.Time) (bool, error)
	DeletePending(ctx context.Context, id, senderID string) (bool, error)
	ListByReceiver(ctx context.Context, receiverID string, status model.RecommendationStatus, offset, limit int) ([]*model.Recommendation, error)
	ListBySender(ctx context.Context, senderID string, status model.RecommendationStatus, offset, limit int) ([]*model.Recommendation, error)
	WithTx(tx *gorm.DB) RecommendationRepository
}

type recommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

func (r *recommendationRepository) WithTx(tx *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: tx}
}

func (r *recommendationRepository) Create(ctx context.Context, rec *model.Recommendation) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recommendationRepository) Get(ctx context.Context, id string) (*model.Recommendation, error) {
	var rec model.Recommendation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recommendationRepository) ExistsPending(ctx context.Context, senderID, receiverID, userContentID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Recommendation{}).
		Where("sender_id = ? AND receiver_id = ? AND user_content_id = ? AND status = ?",
			senderID, receiverID, userContentID, model.RecommendationPending).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *recommendationRepository) TransitionFromPending(ctx context.Context, id, receiverID string, to model.RecommendationStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Recommendation{}).
		Where("id = ? AND receiver_id = ? AND status = ?", id, receiverID, model.RecommendationPending).
		Updates(map[string]interface{}{"status": to, "responded_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *recommendationRepository) DeletePending(ctx context.Context, id, senderID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND sender_id = ? AND status = ?", id, senderID, model.RecommendationPending).
		Delete(&model.Recommendation{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *recommendationRepository) ListByReceiver(ctx context.Context, receiverID string, status model.RecommendationStatus, offset, limit int) ([]*model.Recommendation, error) {
	return r.list(ctx, "receiver_id", receiverID, status, offset, limit)
}

func (r *recommendationRepository) ListBySender(ctx context.Context, senderID string, status model.RecommendationStatus, offset, limit int) ([]*model.Recommendation, error) {
	return r.list(ctx, "sender_id", senderID, status, offset, limit)
}

func (r *recommendationRepository) list(ctx context.Context, col, userID string, status model.RecommendationStatus, offset, limit int) ([]*model.Recommendation, error) {
	q := r.db.WithContext(ctx).Where(col+" = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var res []*model.Recommendation
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}
