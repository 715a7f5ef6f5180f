package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feelnote-core/internal/model"
)

type TitleRepository interface {
	// SyncCatalog upserts catalog rows by id.
	SyncCatalog(ctx context.Context, titles []model.AchievementTitle) error
	UnlockedIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	// Unlock inserts the (user, title) pair once; unlocked=false when it already existed.
	Unlock(ctx context.Context, userID, titleID string, at time.Time) (unlocked bool, err error)
	ListUnlocked(ctx context.Context, userID string) ([]model.UnlockedTitle, error)
	WithTx(tx *gorm.DB) TitleRepository
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository { return &titleRepository{db: db} }

func (r *titleRepository) WithTx(tx *gorm.DB) TitleRepository { return &titleRepository{db: tx} }

func (r *titleRepository) SyncCatalog(ctx context.Context, titles []model.AchievementTitle) error {
	if len(titles) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "category", "grade", "bonus_score",
			"rule_stat", "rule_threshold", "sort_order", "updated_at",
		}),
	}).Create(&titles).Error
}

func (r *titleRepository) UnlockedIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&model.UserTitle{}).
		Where("user_id = ?", userID).
		Pluck("title_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *titleRepository) Unlock(ctx context.Context, userID, titleID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserTitle{UserID: userID, TitleID: titleID, UnlockedAt: at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *titleRepository) ListUnlocked(ctx context.Context, userID string) ([]model.UnlockedTitle, error) {
	var rows []model.UnlockedTitle
	err := r.db.WithContext(ctx).
		Table("user_titles AS ut").
		Select("t.*, ut.unlocked_at AS unlocked_at").
		Joins("JOIN titles AS t ON t.id = ut.title_id").
		Where("ut.user_id = ?", userID).
		Order("ut.unlocked_at ASC, t.sort_order ASC").
		Scan(&rows).Error
	return rows, err
}
