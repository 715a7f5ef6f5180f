package model

import "time"

type ContentType string

const (
	ContentTypeBook  ContentType = "BOOK"
	ContentTypeVideo ContentType = "VIDEO"
	ContentTypeGame  ContentType = "GAME"
	ContentTypeMusic ContentType = "MUSIC"
)

type ContentStatus string

const (
	ContentStatusWant     ContentStatus = "WANT"
	ContentStatusWatching ContentStatus = "WATCHING"
	ContentStatusFinished ContentStatus = "FINISHED"
	ContentStatusDropped  ContentStatus = "DROPPED"
)

// Content is a piece of cultural content shared across users.
type Content struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Type      ContentType `json:"type" gorm:"type:varchar(16);not null;index"`
	Title     string      `json:"title" gorm:"type:varchar(255);not null"`
	Creator   string      `json:"creator" gorm:"type:varchar(255)"`
	CreatedAt time.Time   `json:"created_at"`
}

func (Content) TableName() string { return "contents" }

// UserContent is one user's tracking record for a content.
type UserContent struct {
	ID        string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string        `json:"user_id" gorm:"type:varchar(36);not null;index:idx_uc_user;index:idx_uc_pair,unique"`
	ContentID string        `json:"content_id" gorm:"type:varchar(64);not null;index:idx_uc_content;index:idx_uc_pair,unique"`
	Status    ContentStatus `json:"status" gorm:"type:varchar(16);not null;default:WANT"`
	Rating    *float64      `json:"rating,omitempty"`
	Review    *string       `json:"review,omitempty" gorm:"type:text"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (UserContent) TableName() string { return "user_contents" }
