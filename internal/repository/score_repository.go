package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feelnote-core/internal/model"
)

// ScoreRepository owns score_logs and user_scores.
type ScoreRepository interface {
	Append(ctx context.Context, entry *model.ScoreEntry) error
	// Increment upserts user_scores atomically: one statement, no read-modify-write.
	Increment(ctx context.Context, userID string, typ model.ScoreType, amount int, at time.Time) error
	Get(ctx context.Context, userID string) (*model.UserScore, error)
	ListEntries(ctx context.Context, userID string, offset, limit int) ([]*model.ScoreEntry, error)
	SumEntries(ctx context.Context, userID string, typ model.ScoreType) (int64, error)
	Top(ctx context.Context, limit int) ([]*model.UserScore, error)
	WithTx(tx *gorm.DB) ScoreRepository
}

type scoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) ScoreRepository { return &scoreRepository{db: db} }

func (r *scoreRepository) WithTx(tx *gorm.DB) ScoreRepository { return &scoreRepository{db: tx} }

func (r *scoreRepository) Append(ctx context.Context, entry *model.ScoreEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *scoreRepository) Increment(ctx context.Context, userID string, typ model.ScoreType, amount int, at time.Time) error {
	row := &model.UserScore{UserID: userID, TotalScore: amount, UpdatedAt: at}
	col := "activity_score"
	if typ == model.ScoreTypeTitleBonus {
		col = "title_bonus"
		row.TitleBonus = amount
	} else {
		row.ActivityScore = amount
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			col:           gorm.Expr("user_scores."+col+" + ?", amount),
			"total_score": gorm.Expr("user_scores.total_score + ?", amount),
			"updated_at":  at,
		}),
	}).Create(row).Error
}

func (r *scoreRepository) Get(ctx context.Context, userID string) (*model.UserScore, error) {
	var s model.UserScore
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scoreRepository) ListEntries(ctx context.Context, userID string, offset, limit int) ([]*model.ScoreEntry, error) {
	var res []*model.ScoreEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *scoreRepository) SumEntries(ctx context.Context, userID string, typ model.ScoreType) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.ScoreEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ?", userID, typ).
		Scan(&sum).Error
	return sum, err
}

func (r *scoreRepository) Top(ctx context.Context, limit int) ([]*model.UserScore, error) {
	var res []*model.UserScore
	err := r.db.WithContext(ctx).
		Order("total_score DESC, updated_at ASC").
		Limit(limit).
		Find(&res).Error
	return res, err
}
