package model

import "time"

// ProfileType segments ordinary users from verified public figures.
type ProfileType string

const (
	ProfileTypeUser  ProfileType = "USER"
	ProfileTypeCeleb ProfileType = "CELEB"
)

// User is the minimal profile row the scoring core reads.
type User struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Nickname    string      `json:"nickname" gorm:"type:varchar(64);not null"`
	ProfileType ProfileType `json:"profile_type" gorm:"type:varchar(16);not null;default:USER;index"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (User) TableName() string { return "profiles" }
