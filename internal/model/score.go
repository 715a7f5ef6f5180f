package model

import "time"

// ScoreType is the source of a score entry.
type ScoreType string

const (
	ScoreTypeActivity   ScoreType = "activity"
	ScoreTypeTitleBonus ScoreType = "title_bonus"
)

// ScoreEntry is one append-only ledger row. Rows are never updated or deleted.
type ScoreEntry struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `json:"user_id" gorm:"type:varchar(36);not null;index:idx_score_log_user_created"`
	Type        ScoreType `json:"type" gorm:"type:varchar(16);not null"`
	Action      string    `json:"action" gorm:"type:varchar(64);not null"`
	Amount      int       `json:"amount" gorm:"not null"`
	ReferenceID *string   `json:"reference_id,omitempty" gorm:"type:varchar(64);index"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;index:idx_score_log_user_created"`
}

func (ScoreEntry) TableName() string { return "score_logs" }

// UserScore is the running per-user aggregate of the ledger.
// TotalScore == ActivityScore + TitleBonus.
type UserScore struct {
	UserID        string    `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	ActivityScore int       `json:"activity_score" gorm:"not null;default:0"`
	TitleBonus    int       `json:"title_bonus" gorm:"not null;default:0"`
	TotalScore    int       `json:"total_score" gorm:"not null;default:0;index"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (UserScore) TableName() string { return "user_scores" }
