package achievement

// StatKey names one aggregate user statistic a rule can test.
type StatKey string

const (
	StatTotalContents           StatKey = "total_contents"
	StatFinishedContents        StatKey = "finished_contents"
	StatTotalReviews            StatKey = "total_reviews"
	StatTotalRatings            StatKey = "total_ratings"
	StatFollowerCount           StatKey = "follower_count"
	StatFollowingCount          StatKey = "following_count"
	StatRecommendationsSent     StatKey = "recommendations_sent"
	StatRecommendationsAccepted StatKey = "recommendations_accepted"
	StatBooks                   StatKey = "books"
	StatVideos                  StatKey = "videos"
	StatGames                   StatKey = "games"
	StatMusic                   StatKey = "music"
)

// AllStats lists every key the store can compute.
var AllStats = []StatKey{
	StatTotalContents, StatFinishedContents, StatTotalReviews, StatTotalRatings,
	StatFollowerCount, StatFollowingCount, StatRecommendationsSent, StatRecommendationsAccepted,
	StatBooks, StatVideos, StatGames, StatMusic,
}

// Known reports whether k is a valid stat key.
func Known(k StatKey) bool {
	for _, s := range AllStats {
		if s == k {
			return true
		}
	}
	return false
}

// Stats is a snapshot of a user's statistics. Missing keys read as zero.
type Stats map[StatKey]int64
