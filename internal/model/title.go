package model

import "time"

// Grade orders titles by rarity.
type Grade string

const (
	GradeCommon    Grade = "common"
	GradeUncommon  Grade = "uncommon"
	GradeRare      Grade = "rare"
	GradeEpic      Grade = "epic"
	GradeLegendary Grade = "legendary"
)

var gradeRank = map[Grade]int{
	GradeCommon:    0,
	GradeUncommon:  1,
	GradeRare:      2,
	GradeEpic:      3,
	GradeLegendary: 4,
}

// Rank returns the severity of g; unknown grades sort last.
func (g Grade) Rank() int {
	if r, ok := gradeRank[g]; ok {
		return r
	}
	return len(gradeRank)
}

// AchievementTitle is a static catalog entry.
type AchievementTitle struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name          string    `json:"name" gorm:"type:varchar(64);not null"`
	Description   string    `json:"description" gorm:"type:varchar(255)"`
	Category      string    `json:"category" gorm:"type:varchar(32)"`
	Grade         Grade     `json:"grade" gorm:"type:varchar(16);not null"`
	BonusScore    int       `json:"bonus_score" gorm:"not null;default:0"`
	RuleStat      string    `json:"rule_stat" gorm:"type:varchar(64);not null"`
	RuleThreshold int       `json:"rule_threshold" gorm:"not null"`
	SortOrder     int       `json:"sort_order" gorm:"not null;default:0"`
	UpdatedAt     time.Time `json:"-"`
}

func (AchievementTitle) TableName() string { return "titles" }

// UserTitle records an unlocked title. Immutable once written.
type UserTitle struct {
	UserID     string    `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	TitleID    string    `json:"title_id" gorm:"primaryKey;type:varchar(64)"`
	UnlockedAt time.Time `json:"unlocked_at" gorm:"not null"`
}

func (UserTitle) TableName() string { return "user_titles" }
