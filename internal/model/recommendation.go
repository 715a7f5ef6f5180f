package model

import "time"

type RecommendationStatus string

const (
	RecommendationPending  RecommendationStatus = "pending"
	RecommendationAccepted RecommendationStatus = "accepted"
	RecommendationDeclined RecommendationStatus = "declined"
)

// Terminal reports whether no further transition is allowed.
func (s RecommendationStatus) Terminal() bool {
	return s == RecommendationAccepted || s == RecommendationDeclined
}

// Recommendation is a user-to-user content recommendation.
type Recommendation struct {
	ID            string               `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SenderID      string               `json:"sender_id" gorm:"type:varchar(36);not null;index:idx_rec_sender"`
	ReceiverID    string               `json:"receiver_id" gorm:"type:varchar(36);not null;index:idx_rec_receiver_status"`
	UserContentID string               `json:"user_content_id" gorm:"type:varchar(36);not null;index"`
	Message       *string              `json:"message,omitempty" gorm:"type:text"`
	Status        RecommendationStatus `json:"status" gorm:"type:varchar(16);not null;default:pending;index:idx_rec_receiver_status"`
	RespondedAt   *time.Time           `json:"responded_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func (Recommendation) TableName() string { return "recommendations" }
