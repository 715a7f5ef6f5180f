package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/feelnote-core/internal/model"
)

// StatsRepository counts one achievement statistic per call so callers can
// fan the queries out.
type StatsRepository interface {
	Count(ctx context.Context, userID, stat string) (int64, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository { return &statsRepository{db: db} }

func (r *statsRepository) Count(ctx context.Context, userID, stat string) (int64, error) {
	q, err := r.query(ctx, userID, stat)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *statsRepository) query(ctx context.Context, userID, stat string) (*gorm.DB, error) {
	db := r.db.WithContext(ctx)
	uc := func() *gorm.DB { return db.Model(&model.UserContent{}).Where("user_id = ?", userID) }
	byType := func(t model.ContentType) *gorm.DB {
		return db.Model(&model.UserContent{}).
			Joins("JOIN contents ON contents.id = user_contents.content_id").
			Where("user_contents.user_id = ? AND contents.type = ?", userID, t)
	}

	switch stat {
	case "total_contents":
		return uc(), nil
	case "finished_contents":
		return uc().Where("status = ?", model.ContentStatusFinished), nil
	case "total_reviews":
		return uc().Where("review IS NOT NULL AND review <> ''"), nil
	case "total_ratings":
		return uc().Where("rating IS NOT NULL"), nil
	case "follower_count":
		return db.Model(&model.Follow{}).Where("following_id = ?", userID), nil
	case "following_count":
		return db.Model(&model.Follow{}).Where("follower_id = ?", userID), nil
	case "recommendations_sent":
		return db.Model(&model.Recommendation{}).Where("sender_id = ?", userID), nil
	case "recommendations_accepted":
		return db.Model(&model.Recommendation{}).
			Where("sender_id = ? AND status = ?", userID, model.RecommendationAccepted), nil
	case "books":
		return byType(model.ContentTypeBook), nil
	case "videos":
		return byType(model.ContentTypeVideo), nil
	case "games":
		return byType(model.ContentTypeGame), nil
	case "music":
		return byType(model.ContentTypeMusic), nil
	default:
		return nil, fmt.Errorf("unknown stat %q", stat)
	}
}
