package model

// All lists every table the service migrates.
func All() []any {
	return []any{
		&User{},
		&Content{},
		&UserContent{},
		&Tag{},
		&CelebTagAssignment{},
		&Follow{},
		&ScoreEntry{},
		&UserScore{},
		&Recommendation{},
		&AchievementTitle{},
		&UserTitle{},
		&Notification{},
		&NotificationFailure{},
	}
}
