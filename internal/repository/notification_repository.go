package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/feelnote-core/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	RecordFailure(ctx context.Context, f *model.NotificationFailure) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Notification, error)
}

type notificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) RecordFailure(ctx context.Context, f *model.NotificationFailure) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Notification, error) {
	var res []*model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
