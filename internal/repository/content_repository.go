package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/feelnote-core/internal/model"
)

// UserContentRepository is the read side the recommendation workflow needs.
type UserContentRepository interface {
	Get(ctx context.Context, id string) (*model.UserContent, error)
}

type userContentRepository struct{ db *gorm.DB }

func NewUserContentRepository(db *gorm.DB) UserContentRepository {
	return &userContentRepository{db: db}
}

func (r *userContentRepository) Get(ctx context.Context, id string) (*model.UserContent, error) {
	var uc model.UserContent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&uc).Error; err != nil {
		return nil, err
	}
	return &uc, nil
}
