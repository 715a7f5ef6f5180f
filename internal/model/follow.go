package model

import "time"

// Follow is an edge where FollowerID follows FollowingID.
type Follow struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	FollowerID  string `gorm:"type:varchar(36);not null;index:idx_follow_pair,unique"`
	FollowingID string `gorm:"type:varchar(36);not null;index:idx_follow_pair,unique;index:idx_follow_following"`
	// idx_follow_pair = (follower_id, following_id) rejects duplicate follows
	// idx_follow_following serves follower listing
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
