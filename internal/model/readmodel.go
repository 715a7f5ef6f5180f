package model

import "time"

// ContentCounts splits a content's trackers into celebs and ordinary users.
// Computed per request, never persisted.
type ContentCounts struct {
	CelebCount int64 `json:"celeb_count"`
	UserCount  int64 `json:"user_count"`
}

// Total returns celeb + user trackers.
func (c ContentCounts) Total() int64 { return c.CelebCount + c.UserCount }

// TagCount is the number of celebs carrying a tag.
type TagCount struct {
	TagID       string `json:"tag_id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
	Count       int64  `json:"count"`
}

// UnlockedTitle joins a catalog entry with the unlock time.
type UnlockedTitle struct {
	AchievementTitle
	UnlockedAt time.Time `json:"unlocked_at"`
}
