package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/feelnote-core/internal/model"
)

// CountRepository runs the grouped read queries behind the aggregate counter.
type CountRepository interface {
	CountsByContent(ctx context.Context, contentIDs []string) (map[string]model.ContentCounts, error)
	CelebCountsByTag(ctx context.Context) ([]model.TagCount, error)
}

type countRepository struct {
	db *gorm.DB
}

func NewCountRepository(db *gorm.DB) CountRepository { return &countRepository{db: db} }

// contentCountRow is the raw grouped row; callers only ever see the projected map.
type contentCountRow struct {
	ContentID   string
	ProfileType model.ProfileType
	Cnt         int64
}

func (r *countRepository) CountsByContent(ctx context.Context, contentIDs []string) (map[string]model.ContentCounts, error) {
	var rows []contentCountRow
	err := r.db.WithContext(ctx).
		Table("user_contents AS uc").
		Select("uc.content_id AS content_id, p.profile_type AS profile_type, COUNT(*) AS cnt").
		Joins("JOIN profiles AS p ON p.id = uc.user_id").
		Where("uc.content_id IN ?", contentIDs).
		Group("uc.content_id, p.profile_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return projectContentCounts(rows), nil
}

// projectContentCounts folds (content, profile_type) rows into one entry per
// content. Contents without trackers never appear.
func projectContentCounts(rows []contentCountRow) map[string]model.ContentCounts {
	out := make(map[string]model.ContentCounts, len(rows))
	for _, row := range rows {
		if row.Cnt <= 0 {
			continue
		}
		c := out[row.ContentID]
		if row.ProfileType == model.ProfileTypeCeleb {
			c.CelebCount += row.Cnt
		} else {
			c.UserCount += row.Cnt
		}
		out[row.ContentID] = c
	}
	return out
}

func (r *countRepository) CelebCountsByTag(ctx context.Context) ([]model.TagCount, error) {
	var rows []model.TagCount
	err := r.db.WithContext(ctx).
		Table("celeb_tags AS t").
		Select("t.id AS tag_id, t.name AS name, t.color AS color, t.description AS description, COUNT(a.celeb_id) AS count").
		Joins("JOIN celeb_tag_assignments AS a ON a.tag_id = t.id").
		Joins("JOIN profiles AS p ON p.id = a.celeb_id AND p.profile_type = ?", model.ProfileTypeCeleb).
		Where("t.is_active = ?", true).
		Group("t.id, t.name, t.color, t.description, t.sort_order").
		Having("COUNT(a.celeb_id) > 0").
		Order("t.sort_order ASC, t.name ASC").
		Scan(&rows).Error
	return rows, err
}
