package model

import "time"

type NotificationType string

const (
	NotificationRecommendationReceived NotificationType = "recommendation_received"
	NotificationRecommendationAccepted NotificationType = "recommendation_accepted"
	NotificationRecommendationDeclined NotificationType = "recommendation_declined"
	NotificationTitleUnlocked          NotificationType = "title_unlocked"
	NotificationFollow                 NotificationType = "follow"
)

// Notification is a persisted in-app notification.
type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string           `json:"user_id" gorm:"type:varchar(36);not null;index:idx_notif_user_created"`
	Type      NotificationType `json:"type" gorm:"type:varchar(32);not null"`
	ActorID   *string          `json:"actor_id,omitempty" gorm:"type:varchar(36)"`
	Payload   string           `json:"payload" gorm:"type:text"`
	IsRead    bool             `json:"is_read" gorm:"not null;default:false"`
	CreatedAt time.Time        `json:"created_at" gorm:"index:idx_notif_user_created"`
}

func (Notification) TableName() string { return "notifications" }

// NotificationFailure is the dispatcher's own failure log.
type NotificationFailure struct {
	ID        string           `gorm:"primaryKey;type:varchar(36)"`
	UserID    string           `gorm:"type:varchar(36);not null;index"`
	Type      NotificationType `gorm:"type:varchar(32);not null"`
	Payload   string           `gorm:"type:text"`
	Error     string           `gorm:"type:text"`
	Attempts  int
	CreatedAt time.Time
}

func (NotificationFailure) TableName() string { return "notification_failures" }
